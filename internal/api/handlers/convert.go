package handlers

import (
	"database/sql"
	"math"

	"flex-valuation/internal/analysis"
	"flex-valuation/internal/api/models"
	"flex-valuation/internal/model"
)

// JSON has no NaN or Inf; missing and non-finite values become null.

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return optional(v.Float64)
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return model.NullFloat(*v)
}

func toDerived(d *model.Derived) *models.Derived {
	if d == nil {
		return nil
	}
	return &models.Derived{
		Category:       string(d.Category),
		Phase1AvgMoney: fromNull(d.Phase1AvgMoney),
		Phase1Mean:     fromNull(d.Phase1Mean),
		Phase2AvgMoney: fromNull(d.Phase2AvgMoney),
		Phase2Mean:     fromNull(d.Phase2Mean),
		AvgTOut18h:     fromNull(d.AvgTOut18h),
		AvgTOut36h:     fromNull(d.AvgTOut36h),
		AvgDAM18h:      fromNull(d.AvgDAM18h),
		AvgDAM36h:      fromNull(d.AvgDAM36h),
	}
}

func toRows(rows []model.HourlyRecord) []models.Row {
	out := make([]models.Row, len(rows))
	for i, r := range rows {
		out[i] = models.Row{
			Index:    i,
			Time:     r.Time,
			Season:   r.Season,
			DAMPrice: fromNull(r.DAMPrice),
			Temp:     fromNull(r.Temp),
			Derived:  toDerived(r.Derived),
		}
	}
	return out
}

func toGroup(g analysis.Group) models.Group {
	out := models.Group{
		Season:   g.Season,
		Category: string(g.Category),
		Count:    g.Count,
		Priced:   g.Priced,
	}
	if g.Count == 0 {
		return out
	}
	out.MeanPhase1Dynamic = optional(g.MeanPhase1Dynamic)
	out.MeanPhase1Flat = optional(g.MeanPhase1Flat)
	out.MeanPhase2Dynamic = optional(g.MeanPhase2Dynamic)
	out.MeanPhase2Flat = optional(g.MeanPhase2Flat)
	out.MeanPremium = optional(g.MeanPremium)
	out.P05Phase2Dynamic = optional(g.P05Phase2Dynamic)
	out.P95Phase2Dynamic = optional(g.P95Phase2Dynamic)
	out.MeanTemp18h = optional(g.MeanTemp18h)
	return out
}

func toGroups(groups []analysis.Group) []models.Group {
	out := make([]models.Group, len(groups))
	for i, g := range groups {
		out[i] = toGroup(g)
	}
	return out
}

func skipIssue(e model.UnclassifiableRowError) models.RowIssue {
	return models.RowIssue{Kind: "unclassifiable", Index: e.Index, Time: e.Time}
}

func priceIssue(e model.MissingPriceError) models.RowIssue {
	return models.RowIssue{Kind: "missing_price", Index: e.Index, Time: e.Time, Offsets: e.Offsets}
}
