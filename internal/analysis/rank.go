package analysis

import "sort"

// RankByPremium returns the groups sorted descending by MeanPremium.
// Groups without priced rows sort last.
func RankByPremium(groups []Group) []Group {
	out := append([]Group(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priced == 0 || b.Priced == 0 {
			return a.Priced > 0 && b.Priced == 0
		}
		return a.MeanPremium > b.MeanPremium
	})
	return out
}
