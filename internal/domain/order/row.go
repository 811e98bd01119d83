// Package order contains the core order-record model: raw export rows,
// amendment reconciliation, product attribute parsing, and destination
// classification.
package order

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Column names as they appear in the storefront order export.
const (
	ColName             = "Name"
	ColID               = "Id"
	ColFinancialStatus  = "Financial Status"
	ColLineitemName     = "Lineitem name"
	ColLineitemQty      = "Lineitem quantity"
	ColLineitemPrice    = "Lineitem price"
	ColLineitemDiscount = "Lineitem discount"
	ColShippingName     = "Shipping Name"
	ColShippingAddress1 = "Shipping Address1"
	ColShippingAddress2 = "Shipping Address2"
	ColShippingCity     = "Shipping City"
	ColShippingZip      = "Shipping Zip"
	ColShippingProvince = "Shipping Province"
	ColShippingProvName = "Shipping Province Name"
	ColShippingCountry  = "Shipping Country"
	ColShippingPhone    = "Shipping Phone"
)

// RequiredColumns lists the export columns the pipeline cannot run without.
// A missing column is a structural error and aborts the whole run.
var RequiredColumns = []string{
	ColName,
	ColFinancialStatus,
	ColLineitemName,
	ColLineitemQty,
	ColShippingName,
	ColShippingAddress1,
	ColShippingZip,
	ColShippingCountry,
}

// RawRow is one line of the source export. Immutable once read.
//
// Customer and shipping fields are populated only on the first row of a
// multi-row order; amendment rows carry only line-item data.
type RawRow struct {
	LineNumber      int    // source line, for diagnostics
	OrderNumber     string // "Name" column with the leading '#' stripped
	RecordID        string // export row id, used as the carrier sender reference
	FinancialStatus string

	CustomerName string
	Address1     string
	Address2     string
	City         string
	Province     string
	ProvinceName string
	PostalCode   string
	Phone        string
	CountryCode  string

	Description string
	Quantity    int
	Price       decimal.Decimal
	Discount    decimal.Decimal
}

// NormalizeOrderNumber strips the storefront's '#' prefix and surrounding
// whitespace from the Name column.
func NormalizeOrderNumber(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "#"))
}

// State returns the shipping state/province, preferring the spelled-out
// province name over the code when both are present.
func (r RawRow) State() string {
	if r.ProvinceName != "" {
		return r.ProvinceName
	}
	return r.Province
}
