package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mittenshop/fulfillment/internal/domain/order"
)

// reportBuckets fixes the section order of the text report.
var reportBuckets = []struct {
	bucket order.DestinationBucket
	title  string
}{
	{order.BucketDomestic, "DOMESTIC"},
	{order.BucketUSRestricted, "US"},
	{order.BucketExcluded, "EXCLUDED"},
	{order.BucketInternationalStandard, "INTERNATIONAL"},
}

// RenderReport formats the summary as the human-readable text shown to the
// operator after a run: a per-destination order listing, product counts
// grouped by material, piece totals, and grand totals.
func RenderReport(s Summary) string {
	var b strings.Builder
	b.WriteString("ORDER DETAILS BY DESTINATION:")

	for _, rb := range reportBuckets {
		fmt.Fprintf(&b, "\n\n%s ORDERS:", rb.title)
		details := s.Details[rb.bucket]
		if len(details) == 0 {
			b.WriteString("\nNone")
			continue
		}
		for _, d := range details {
			fmt.Fprintf(&b, "\n%s - %s %s: %d%s %s", d.OrderNumber, d.Name, d.Country, d.Pieces, d.Size, d.Material)
		}
	}

	b.WriteString("\n\nPRODUCT BREAKDOWN BY DESTINATION:")

	for _, rb := range reportBuckets {
		fmt.Fprintf(&b, "\n\n%s:", rb.title)
		pieces := s.Pieces[rb.bucket]
		if len(pieces) == 0 {
			b.WriteString("\nNone")
			continue
		}
		renderMaterial(&b, order.MaterialCotton, rb.bucket, s)
		renderMaterial(&b, order.MaterialTencel, rb.bucket, s)
		fmt.Fprintf(&b, "\n\nTotal %s orders: %d", rb.title, s.Orders[rb.bucket])
		fmt.Fprintf(&b, "\nTotal %s pieces: %d", rb.title, bucketPieces(pieces))
	}

	fmt.Fprintf(&b, "\n\nGRAND TOTAL:\nTotal orders: %d\nTotal pieces: %d\n", s.TotalOrders, s.TotalPieces)
	return b.String()
}

func renderMaterial(b *strings.Builder, m order.Material, bucket order.DestinationBucket, s Summary) {
	keys := make([]PieceKey, 0)
	for k := range s.Pieces[bucket] {
		if k.Material == m {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].SizeClass < keys[j].SizeClass })

	total := 0
	fmt.Fprintf(b, "\n\n%s Products:", m)
	for _, k := range keys {
		pieces := s.Pieces[bucket][k]
		orders := s.PieceOrders[bucket][k]
		total += pieces
		fmt.Fprintf(b, "\n%s: %d %s (%d pieces)", k.SizeClass, orders, plural(orders, "order"), pieces)
	}
	fmt.Fprintf(b, "\nTotal %s pieces: %d", m, total)
}

func bucketPieces(pieces map[PieceKey]int) int {
	total := 0
	for _, n := range pieces {
		total += n
	}
	return total
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
