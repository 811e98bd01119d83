package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Structural errors: the file itself is unusable and the run aborts.
var (
	ErrEmptyFile       = errors.New("export file is empty")
	ErrInvalidEncoding = errors.New("export file is not valid UTF-8")
	ErrMissingHeader   = errors.New("export file missing header row")
	ErrNoDataRows      = errors.New("export file contains no data rows")
)

// Warning codes for row-level data-quality conditions. These never abort a
// run; the affected order is skipped or flagged and processing continues.
const (
	WarnEmptyPaymentStatus = "EMPTY_PAYMENT_STATUS"
	WarnMissingIdentity    = "MISSING_IDENTITY"
	WarnMissingCountry     = "MISSING_COUNTRY"
	WarnUnknownSize        = "UNKNOWN_SIZE"
	WarnSizeTokenMismatch  = "SIZE_TOKEN_MISMATCH"
	WarnInvalidQuantity    = "INVALID_QUANTITY"
	WarnInvalidAmount      = "INVALID_AMOUNT"
	WarnInvalidLine        = "INVALID_MANIFEST_LINE"
)

// RowError describes a data-quality condition on a specific export row.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface.
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a RowError.
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// ErrorCollection accumulates row-level conditions with a cap, so a
// pathological file cannot balloon the run result.
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates an ErrorCollection keeping at most maxErrors
// entries (100 when maxErrors <= 0).
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors}
}

// Add appends a condition, dropping the detail (but not the count) past the
// cap.
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// Addf formats and appends a condition.
func (ec *ErrorCollection) Addf(row int, column, code, format string, args ...any) {
	ec.Add(NewRowError(row, column, code, fmt.Sprintf(format, args...)))
}

// Errors returns the collected conditions.
func (ec *ErrorCollection) Errors() []RowError { return ec.errors }

// TotalCount returns the total number of conditions, including dropped ones.
func (ec *ErrorCollection) TotalCount() int { return ec.totalCount }

// HasErrors reports whether anything was collected.
func (ec *ErrorCollection) HasErrors() bool { return ec.totalCount > 0 }

// IsTruncated reports whether details were dropped due to the cap.
func (ec *ErrorCollection) IsTruncated() bool { return ec.totalCount > ec.maxErrors }

// String renders the collection for logs.
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d condition(s)", ec.totalCount)
	if ec.IsTruncated() {
		fmt.Fprintf(&sb, " (showing first %d)", ec.maxErrors)
	}
	sb.WriteString(":\n")
	for _, err := range ec.errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}
