package order

import "strings"

// DestinationBucket is the four-way routing classification derived from the
// shipping country. It is the sole fork point for downstream routing.
type DestinationBucket string

const (
	// BucketDomestic ships with local courier labels, no manifest.
	BucketDomestic DestinationBucket = "Domestic"
	// BucketUSRestricted ships on the US-currency manifest with 10-digit
	// tariff codes.
	BucketUSRestricted DestinationBucket = "USRestricted"
	// BucketInternationalStandard ships on the standard-currency manifest.
	BucketInternationalStandard DestinationBucket = "InternationalStandard"
	// BucketExcluded orders are counted and discarded; they never enter a
	// manifest.
	BucketExcluded DestinationBucket = "Excluded"
)

// destinationTable is the single authoritative country routing table.
// Countries not listed here ship as InternationalStandard; an empty country
// cannot ship at all.
var destinationTable = map[string]DestinationBucket{
	"SG": BucketDomestic,
	"US": BucketUSRestricted,
	"CA": BucketExcluded,
}

// Classify maps a shipping-country code to its destination bucket. Total:
// every input maps to exactly one bucket.
func Classify(countryCode string) DestinationBucket {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		return BucketExcluded
	}
	if bucket, ok := destinationTable[code]; ok {
		return bucket
	}
	return BucketInternationalStandard
}

// ClassifiedOrder is a merged order with its parsed product attributes and
// destination bucket attached.
type ClassifiedOrder struct {
	MergedOrder
	Product ParsedProduct
	Bucket  DestinationBucket
}

// ClassifyAll derives product attributes and destination buckets for every
// merged order, preserving input order.
func ClassifyAll(orders []MergedOrder) []ClassifiedOrder {
	classified := make([]ClassifiedOrder, 0, len(orders))
	for _, m := range orders {
		classified = append(classified, ClassifiedOrder{
			MergedOrder: m,
			Product:     ParseProduct(m.Description),
			Bucket:      Classify(m.CountryCode),
		})
	}
	return classified
}
