package order

// MergedOrder is one order after amendment reconciliation: identity and
// shipping fields from the first export row of the group, line-item fields
// from the last.
type MergedOrder struct {
	RawRow

	// Amendments is the number of extra rows that were collapsed into this
	// order (0 for a single-row order).
	Amendments int
}

// Drop reason codes reported by Merge.
const (
	DropReasonUnpaid          = "EMPTY_PAYMENT_STATUS"
	DropReasonMissingIdentity = "MISSING_IDENTITY"
)

// Drop records an order group excluded during merging. Drops are data-quality
// conditions, not errors; the pipeline continues without the order.
type Drop struct {
	OrderNumber string
	LineNumber  int
	Reason      string
}

// Merge collapses the ordered export rows into one MergedOrder per distinct
// order number, preserving first-appearance order.
//
// The first row of a group is the base record; its line-item quantity,
// description, price, and discount are overwritten with the values of the
// LAST row of the group. This is strict last-row-wins: intermediate
// amendments are discarded entirely, never summed or reconciled.
// Customer and shipping fields always come from the base row, because
// amendment rows carry them empty.
//
// A group is dropped when its base row has an empty payment status (unpaid or
// unconfirmed order) or is missing the fields needed to identify a shipment.
func Merge(rows []RawRow) ([]MergedOrder, []Drop) {
	groups := make(map[string]int, len(rows))
	merged := make([]MergedOrder, 0, len(rows))

	for _, row := range rows {
		if idx, seen := groups[row.OrderNumber]; seen && row.OrderNumber != "" {
			m := &merged[idx]
			m.Description = row.Description
			m.Quantity = row.Quantity
			m.Price = row.Price
			m.Discount = row.Discount
			m.Amendments++
			continue
		}
		groups[row.OrderNumber] = len(merged)
		merged = append(merged, MergedOrder{RawRow: row})
	}

	out := merged[:0]
	var drops []Drop
	for _, m := range merged {
		switch {
		case m.OrderNumber == "" || m.CustomerName == "":
			drops = append(drops, Drop{
				OrderNumber: m.OrderNumber,
				LineNumber:  m.LineNumber,
				Reason:      DropReasonMissingIdentity,
			})
		case m.FinancialStatus == "":
			drops = append(drops, Drop{
				OrderNumber: m.OrderNumber,
				LineNumber:  m.LineNumber,
				Reason:      DropReasonUnpaid,
			})
		default:
			out = append(out, m)
		}
	}

	return out, drops
}
