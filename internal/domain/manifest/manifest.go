// Package manifest assembles the per-destination output records of a
// conversion run: carrier manifest lines, domestic label records, and the
// summary aggregates.
package manifest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mittenshop/fulfillment/internal/domain/customs"
	"github.com/mittenshop/fulfillment/internal/domain/order"
)

// Carrier field length limits, enforced by truncation on intake and checked
// again by the exporter before writing.
const (
	maxNameLen        = 35
	maxAddressLen     = 35
	maxCityLen        = 30
	maxStateLen       = 30
	maxPostalLen      = 10
	maxReferenceLen   = 20
	maxDescriptionLen = 50
)

// Line is one row of a shipping manifest. The validate tags mirror the
// carrier intake constraints and are audited by the exporter.
type Line struct {
	OrderNumber string `validate:"required"`
	Reference   string `validate:"max=20"`

	RecipientName string `validate:"required,max=35"`
	Address1      string `validate:"required,max=35"`
	Address2      string `validate:"max=35"`
	City          string `validate:"max=30"`
	State         string `validate:"max=30"`
	CountryCode   string `validate:"required,len=2"`
	PostalCode    string `validate:"max=10"`

	ItemDescription string          `validate:"required,max=50"`
	Quantity        int             `validate:"min=1"`
	DeclaredValue   decimal.Decimal `validate:"required"`
	Currency        string          `validate:"required,len=3"`
	WeightGrams     int             `validate:"min=1"`
	HeightCm        int             `validate:"min=1"`
	WidthCm         int             `validate:"min=1"`
	DepthCm         int             `validate:"min=1"`
	TariffCode      string          `validate:"required,min=6,max=10"`

	ServiceCode   string `validate:"required"`
	ArticleType   string `validate:"required,len=2"`
	SizeCode      string `validate:"required,len=2"`
	CategoryCode  string `validate:"required,len=1"`
	OriginCountry string `validate:"required,len=2"`
}

// LabelRecord carries the fields the domestic label renderer substitutes
// into its template. Not a manifest row.
type LabelRecord struct {
	OrderNumber   string
	RecipientName string
	Phone         string // local international format, e.g. "+65 9123 4567"
	Address1      string
	Address2      string
	City          string
	PostalCode    string
	Quantity      int // 1 or 2
	SizeLetter    string
	Material      string
}

// PieceKey identifies a product variant in the summary breakdown.
type PieceKey struct {
	Material  order.Material
	SizeClass order.SizeClass
}

// Detail is one order's entry in the report's per-destination listing.
type Detail struct {
	OrderNumber string
	Name        string
	Country     string
	Pieces      int
	Size        string
	Material    order.Material
}

// Summary holds the aggregate counts of a conversion run.
type Summary struct {
	Orders      map[order.DestinationBucket]int
	TotalOrders int
	// TotalPieces counts the pieces that actually ship: the sum over
	// manifest and label rows of 2 for a bundle, 1 for a single. Excluded
	// orders contribute nothing here.
	TotalPieces int
	// Pieces breaks piece counts down by material and size class, per
	// bucket. Bundles count as two pieces, singles as one. The Excluded
	// bucket is tracked too, for the report's EXCLUDED section.
	Pieces map[order.DestinationBucket]map[PieceKey]int
	// PieceOrders counts orders (not pieces) per variant and bucket.
	PieceOrders map[order.DestinationBucket]map[PieceKey]int
	// Details lists every order per bucket, in classification order.
	Details map[order.DestinationBucket][]Detail
}

// Output is the complete, immutable result of the manifest builder.
type Output struct {
	International []Line // standard-currency manifest, classification order
	US            []Line // US-currency manifest, classification order
	Labels        []LabelRecord
	Excluded      int
	Summary       Summary
}

// Build partitions classified orders into manifests, label records, and the
// excluded tally, and computes summary aggregates. Row order is stable with
// respect to the input. Domestic and excluded orders never reach the customs
// resolver.
func Build(orders []order.ClassifiedOrder) (*Output, error) {
	out := &Output{
		Summary: Summary{
			Orders:      make(map[order.DestinationBucket]int),
			Pieces:      make(map[order.DestinationBucket]map[PieceKey]int),
			PieceOrders: make(map[order.DestinationBucket]map[PieceKey]int),
			Details:     make(map[order.DestinationBucket][]Detail),
		},
	}

	for _, c := range orders {
		out.Summary.count(c)

		switch c.Bucket {
		case order.BucketExcluded:
			out.Excluded++
		case order.BucketDomestic:
			out.Labels = append(out.Labels, newLabelRecord(c))
		case order.BucketInternationalStandard, order.BucketUSRestricted:
			line, err := newLine(c)
			if err != nil {
				return nil, err
			}
			if c.Bucket == order.BucketUSRestricted {
				out.US = append(out.US, line)
			} else {
				out.International = append(out.International, line)
			}
		}
	}

	return out, nil
}

func (s *Summary) count(c order.ClassifiedOrder) {
	s.Orders[c.Bucket]++
	s.TotalOrders++
	if c.Bucket != order.BucketExcluded {
		s.TotalPieces += c.Product.Pieces()
	}

	s.Details[c.Bucket] = append(s.Details[c.Bucket], Detail{
		OrderNumber: c.OrderNumber,
		Name:        clip(c.CustomerName, maxNameLen),
		Country:     clip(strings.ToUpper(strings.TrimSpace(c.CountryCode)), 2),
		Pieces:      c.Product.Pieces(),
		Size:        c.Product.SizeClass.Letter(),
		Material:    c.Product.Material,
	})

	key := PieceKey{Material: c.Product.Material, SizeClass: c.Product.SizeClass}
	if s.Pieces[c.Bucket] == nil {
		s.Pieces[c.Bucket] = make(map[PieceKey]int)
		s.PieceOrders[c.Bucket] = make(map[PieceKey]int)
	}
	s.Pieces[c.Bucket][key] += c.Product.Pieces()
	s.PieceOrders[c.Bucket][key]++
}

func newLine(c order.ClassifiedOrder) (Line, error) {
	rate, err := customs.Resolve(c.Product.Material, c.Product.IsBundle, c.Bucket)
	if err != nil {
		return Line{}, err
	}

	address2 := clip(c.Address2, maxAddressLen)
	if strings.TrimSpace(address2) == "" {
		// Carrier intake rejects an empty second address line.
		address2 = "NA"
	}

	return Line{
		OrderNumber: c.OrderNumber,
		Reference:   clip(c.RecordID, maxReferenceLen),

		RecipientName: clip(c.CustomerName, maxNameLen),
		Address1:      clip(c.Address1, maxAddressLen),
		Address2:      address2,
		City:          clip(c.City, maxCityLen),
		State:         clip(c.State(), maxStateLen),
		CountryCode:   clip(strings.ToUpper(strings.TrimSpace(c.CountryCode)), 2),
		PostalCode:    clip(strings.ReplaceAll(c.PostalCode, "'", ""), maxPostalLen),

		ItemDescription: clip(itemDescription(c.Product), maxDescriptionLen),
		Quantity:        max(c.Quantity, 1),
		DeclaredValue:   rate.DeclaredValue,
		Currency:        rate.Currency,
		WeightGrams:     rate.WeightGrams,
		HeightCm:        rate.HeightCm,
		WidthCm:         customs.WidthCm,
		DepthCm:         customs.DepthCm,
		TariffCode:      rate.TariffCode,

		ServiceCode:   customs.ServiceCode,
		ArticleType:   customs.ArticleType,
		SizeCode:      customs.SizeCode,
		CategoryCode:  customs.CategoryCode,
		OriginCountry: customs.OriginCountry,
	}, nil
}

func newLabelRecord(c order.ClassifiedOrder) LabelRecord {
	return LabelRecord{
		OrderNumber:   c.OrderNumber,
		RecipientName: clip(c.CustomerName, maxNameLen),
		Phone:         localPhone(c.Phone),
		Address1:      clip(c.Address1, 50),
		Address2:      clip(c.Address2, 50),
		City:          clip(c.City, maxCityLen),
		PostalCode:    clip(c.PostalCode, maxPostalLen),
		Quantity:      c.Product.Pieces(),
		SizeLetter:    c.Product.SizeClass.Letter(),
		Material:      string(c.Product.Material),
	}
}

// itemDescription builds the simplified customs description, e.g.
// "Eczema mitten 2(100cm) Cotton" or "Eczema mitten 1M Tencel".
func itemDescription(p order.ParsedProduct) string {
	var size string
	switch p.SizeClass {
	case order.SizeKid100, order.SizeKid110, order.SizeKid120, order.SizeKid130:
		size = "(" + p.SizeClass.LowerBound() + "cm)"
	case order.SizeUnknown:
		size = ""
	default:
		size = string(p.SizeClass)
	}
	return strings.TrimSpace(fmt.Sprintf("Eczema mitten %d%s %s", p.Pieces(), size, p.Material))
}

// localPhone normalizes a domestic phone number to the local international
// format. Numbers that already carry a country prefix pass through.
func localPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	switch {
	case phone == "":
		return ""
	case strings.HasPrefix(strings.TrimSpace(phone), "+"):
		return strings.TrimSpace(phone)
	case len(digits) == 10 && strings.HasPrefix(digits, "65"):
		digits = digits[2:]
		fallthrough
	case len(digits) == 8:
		return "+65 " + digits[:4] + " " + digits[4:]
	default:
		return strings.TrimSpace(phone)
	}
}

// clip truncates a value to the carrier's field limit. Truncation is benign
// here; the exporter audits anything that remains invalid.
func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
