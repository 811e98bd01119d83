// Package export encodes manifest lines into the carrier's CSV intake
// format.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/mittenshop/fulfillment/internal/domain/manifest"
	"github.com/mittenshop/fulfillment/internal/infrastructure/csvimport"
)

// Carrier intake column headers, in file order. The awkward phrasing is the
// carrier's own; their intake matches on the literal header text.
var manifestColumns = []string{
	"Send to business name line 1 (Max 35 characters) - *",
	"Send to business name line 2 (Max 35 characters)",
	"Send to address line 1 (Max 35 characters) - *",
	"Send to address line 2  (Max 35 characters) - *",
	"Send to address line 3 (Max 35 characters)",
	"Send to town (Max 30 characters) (Please spell in full)",
	"Send to state (Max 30 characters) (Please spell in full)",
	"Send to country (Max 2 characters) - *",
	"Send to postcode (Max 10 characters)",
	"Sender VAT/GST number (Max 50 characters)",
	"Sender Reference (Max 20 characters)",
	"Type of article - Please type in either LL (for letter) or AS (for small packet) - (Max 2 characters) - *",
	"Size - Please type in either RG (for Regular), LG (for Large) or NS (for Non-standard) - (Max 2 characters) - *",
	"Category of Shipment- Please type in either D (for Document), G (for Gift), M (for Merchandise), S (for Sample) or O (for others) (Max 1 character) - *",
	`If "Other", please describe (Max 50 characters)`,
	"Total Physical weight (min 1 gm) - *",
	"Item Length (cm)",
	"Item Width (cm)",
	"Item Height (cm)",
	"Service code - Refer to Service List sheet (Max 20 characters)  - *",
	"Currency type - for all item values (3 characters) -*",
	"Item content 1 description (Max 50 characters) - *",
	"Item content 1 quantity",
	"Total content 1 weight (min 1 gm)",
	"Item content 1 total value (in declared currency type)",
	"Item content 1 HS tariff number (Max 6 characters)",
	"Item content 1 Country of origin (Max 2 characters) - *",
	"Item content 2 description (Max 50 characters) - *",
	"Item content 2 quantity",
	"Total content 2 weight (min 1 gm)",
	"Item content 2 total value (in declared currency type)",
	"Item content 2 HS tariff number (Max 6 characters)",
	"Item content 2 Country of origin (Max 2 characters) - *",
	"Item content 3 description (Max 50 characters) - *",
	"Item content 3 quantity",
	"Total content 3 weight (min 1 gm)",
	"Item content 3 total value (in declared currency type)",
	"Item content 3 HS tariff number (Max 6 characters)",
	"Item content 3 Country of origin (Max 2 characters) - *",
}

// ManifestWriter encodes manifest lines as carrier intake CSV and audits
// them against the carrier's field constraints.
type ManifestWriter struct {
	validate *validator.Validate
}

// NewManifestWriter creates a ManifestWriter.
func NewManifestWriter() *ManifestWriter {
	return &ManifestWriter{validate: validator.New()}
}

// Encode writes the manifest as CSV bytes, headers first, one row per line.
// Line order is preserved.
func (w *ManifestWriter) Encode(lines []manifest.Line) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(manifestColumns); err != nil {
		return nil, fmt.Errorf("writing manifest header: %w", err)
	}
	for i, line := range lines {
		if err := cw.Write(record(line)); err != nil {
			return nil, fmt.Errorf("writing manifest row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Audit checks every line against the carrier constraints and returns one
// warning per violating field. Violations do not block encoding; they mirror
// the carrier's own rejection report so the operator can fix the order data.
func (w *ManifestWriter) Audit(lines []manifest.Line) []csvimport.RowError {
	var out []csvimport.RowError
	for i, line := range lines {
		err := w.validate.Struct(line)
		if err == nil {
			continue
		}
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			out = append(out, csvimport.NewRowError(i+1, "", csvimport.WarnInvalidLine, err.Error()))
			continue
		}
		for _, fe := range verrs {
			out = append(out, csvimport.NewRowError(i+1, fe.Field(), csvimport.WarnInvalidLine,
				fmt.Sprintf("order %s: field fails %q constraint", line.OrderNumber, fe.Tag())))
		}
	}
	return out
}

func record(l manifest.Line) []string {
	rec := []string{
		l.RecipientName,
		"", // business name line 2
		l.Address1,
		l.Address2,
		"", // address line 3
		l.City,
		l.State,
		l.CountryCode,
		l.PostalCode,
		"", // VAT/GST
		l.Reference,
		l.ArticleType,
		l.SizeCode,
		l.CategoryCode,
		"", // "other" description
		strconv.Itoa(l.WeightGrams),
		strconv.Itoa(l.WidthCm),
		strconv.Itoa(l.DepthCm),
		strconv.Itoa(l.HeightCm),
		l.ServiceCode,
		l.Currency,
		l.ItemDescription,
		strconv.Itoa(l.Quantity),
		strconv.Itoa(l.WeightGrams),
		l.DeclaredValue.String(),
		l.TariffCode,
		l.OriginCountry,
	}
	// Contents 2 and 3 are always empty; the carrier requires the columns
	// regardless.
	for i := 0; i < 12; i++ {
		rec = append(rec, "")
	}
	return rec
}
