package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mittenshop/fulfillment/internal/domain/manifest"
)

func sampleLine() manifest.Line {
	return manifest.Line{
		OrderNumber:     "1001",
		Reference:       "rec-1001",
		RecipientName:   "Alice Tan",
		Address1:        "1 High Street",
		Address2:        "NA",
		City:            "London",
		State:           "England",
		CountryCode:     "GB",
		PostalCode:      "SW1A 1AA",
		ItemDescription: "Eczema mitten 1M Cotton",
		Quantity:        1,
		DeclaredValue:   decimal.NewFromInt(20),
		Currency:        "SGD",
		WeightGrams:     250,
		HeightCm:        2,
		WidthCm:         20,
		DepthCm:         10,
		TariffCode:      "611692",
		ServiceCode:     "IRAIRA",
		ArticleType:     "AS",
		SizeCode:        "NS",
		CategoryCode:    "M",
		OriginCountry:   "SG",
	}
}

func TestEncode(t *testing.T) {
	w := NewManifestWriter()
	data, err := w.Encode([]manifest.Line{sampleLine()})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header := records[0]
	require.Len(t, header, len(manifestColumns))
	assert.Equal(t, "Send to business name line 1 (Max 35 characters) - *", header[0])
	assert.Equal(t, "Item Length (cm)", header[16])

	row := records[1]
	require.Len(t, row, len(manifestColumns))
	assert.Equal(t, "Alice Tan", row[0])
	assert.Equal(t, "", row[1], "business name line 2 is always blank")
	assert.Equal(t, "1 High Street", row[2])
	assert.Equal(t, "NA", row[3])
	assert.Equal(t, "GB", row[7])
	assert.Equal(t, "rec-1001", row[10])
	assert.Equal(t, "AS", row[11])
	assert.Equal(t, "NS", row[12])
	assert.Equal(t, "M", row[13])
	assert.Equal(t, "250", row[15])
	assert.Equal(t, "20", row[16], "length column carries the 20cm dimension")
	assert.Equal(t, "10", row[17])
	assert.Equal(t, "2", row[18])
	assert.Equal(t, "IRAIRA", row[19])
	assert.Equal(t, "SGD", row[20])
	assert.Equal(t, "Eczema mitten 1M Cotton", row[21])
	assert.Equal(t, "1", row[22])
	assert.Equal(t, "250", row[23])
	assert.Equal(t, "20", row[24])
	assert.Equal(t, "611692", row[25])
	assert.Equal(t, "SG", row[26])

	for i := 27; i < len(row); i++ {
		assert.Empty(t, row[i], "content 2/3 column %d must stay blank", i)
	}
}

func TestEncodeEmpty(t *testing.T) {
	w := NewManifestWriter()
	data, err := w.Encode(nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 1, "header only")
}

func TestAudit(t *testing.T) {
	w := NewManifestWriter()

	t.Run("clean line passes", func(t *testing.T) {
		assert.Empty(t, w.Audit([]manifest.Line{sampleLine()}))
	})

	t.Run("constraint violations are reported per field", func(t *testing.T) {
		bad := sampleLine()
		bad.RecipientName = strings.Repeat("x", 40)
		bad.CountryCode = "GBR"

		warnings := w.Audit([]manifest.Line{sampleLine(), bad})
		require.Len(t, warnings, 2)
		for _, warn := range warnings {
			assert.Equal(t, 2, warn.Row)
			assert.Contains(t, warn.Message, "order 1001")
		}
	})
}
