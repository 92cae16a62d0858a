package analysis

import (
	"math"
	"sort"

	"flex-valuation/internal/model"
)

// Group summarises valued rows sharing a season and temperature bucket.
// Dynamic values average only rows whose dynamic savings are defined (Priced);
// flat values average every row in the group.
type Group struct {
	Season   string
	Category model.Bucket

	Count  int
	Priced int

	MeanPhase1Dynamic float64
	MeanPhase1Flat    float64
	MeanPhase2Dynamic float64
	MeanPhase2Flat    float64

	// MeanPremium is the mean of phase-2 dynamic minus phase-2 flat savings over priced rows:
	// what dynamic pricing adds over a flat tariff at the global average price.
	MeanPremium float64

	P05Phase2Dynamic float64
	P95Phase2Dynamic float64

	MeanTemp18h float64
}

// Summary holds one Group per (season, bucket) plus the overall totals.
type Summary struct {
	Groups []Group
	Total  Group
}

// AllSeasons labels the overall group.
const AllSeasons = "all"

type accumulator struct {
	g       Group
	p1dyn   float64
	p2dyn   float64
	p1flat  float64
	p2flat  float64
	premium float64
	temp    float64
	phase1N int
	phase2  []float64
}

func (a *accumulator) add(d *model.Derived) {
	a.g.Count++
	a.p1flat += d.Phase1Mean.Float64
	a.p2flat += d.Phase2Mean.Float64
	a.temp += d.AvgTOut18h.Float64
	if d.Phase1AvgMoney.Valid {
		a.p1dyn += d.Phase1AvgMoney.Float64
		a.phase1N++
	}
	if d.Phase2AvgMoney.Valid {
		a.g.Priced++
		a.p2dyn += d.Phase2AvgMoney.Float64
		a.premium += d.Phase2AvgMoney.Float64 - d.Phase2Mean.Float64
		a.phase2 = append(a.phase2, d.Phase2AvgMoney.Float64)
	}
}

func (a *accumulator) finish() Group {
	g := a.g
	if g.Count == 0 {
		return g
	}
	n := float64(g.Count)
	g.MeanPhase1Flat = a.p1flat / n
	g.MeanPhase2Flat = a.p2flat / n
	g.MeanTemp18h = a.temp / n
	g.MeanPhase1Dynamic = mean(a.p1dyn, a.phase1N)
	g.MeanPhase2Dynamic = mean(a.p2dyn, g.Priced)
	g.MeanPremium = mean(a.premium, g.Priced)

	sorted := append([]float64(nil), a.phase2...)
	sort.Float64s(sorted)
	g.P05Phase2Dynamic = percentileSorted(sorted, 0.05)
	g.P95Phase2Dynamic = percentileSorted(sorted, 0.95)
	return g
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Summarize groups valued rows by season (in order of first appearance) and bucket
// (in temperature order). Rows without derived fields are ignored.
func Summarize(rows []model.HourlyRecord) Summary {
	type key struct {
		season string
		bucket model.Bucket
	}
	groups := map[key]*accumulator{}
	var seasons []string
	seen := map[string]bool{}
	total := &accumulator{g: Group{Season: AllSeasons}}

	for _, r := range rows {
		d := r.Derived
		if d == nil {
			continue
		}
		if !seen[r.Season] {
			seen[r.Season] = true
			seasons = append(seasons, r.Season)
		}
		k := key{r.Season, d.Category}
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{g: Group{Season: r.Season, Category: d.Category}}
			groups[k] = acc
		}
		acc.add(d)
		total.add(d)
	}

	out := Summary{Total: total.finish()}
	for _, s := range seasons {
		for _, b := range model.Buckets {
			if acc, ok := groups[key{s, b}]; ok {
				out.Groups = append(out.Groups, acc.finish())
			}
		}
	}
	return out
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
