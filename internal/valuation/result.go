package valuation

import "flex-valuation/internal/model"

// Result is the augmented table plus what happened to each row.
type Result struct {
	// Rows is a copy of the input table; Derived is set on every valued row.
	Rows []model.HourlyRecord

	Valued int
	// Tail counts the trailing rows without a full forward window.
	Tail int

	// Skipped rows have no derived fields.
	Skipped []model.UnclassifiableRowError
	// PriceGaps rows were valued but their dynamic savings are missing.
	PriceGaps []model.MissingPriceError
}

// ValuedRows returns only the rows that carry derived fields.
func (r *Result) ValuedRows() []model.HourlyRecord {
	out := make([]model.HourlyRecord, 0, r.Valued)
	for _, row := range r.Rows {
		if row.Derived != nil {
			out = append(out, row)
		}
	}
	return out
}
