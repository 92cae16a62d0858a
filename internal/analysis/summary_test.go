package analysis

import (
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flex-valuation/internal/model"
)

func valued(season string, b model.Bucket, p1dyn, p2dyn sql.NullFloat64, p1flat, p2flat, temp float64) model.HourlyRecord {
	return model.HourlyRecord{
		Season: season,
		Derived: &model.Derived{
			Category:       b,
			AvgTOut18h:     model.NullFloat(temp),
			Phase1AvgMoney: p1dyn,
			Phase2AvgMoney: p2dyn,
			Phase1Mean:     model.NullFloat(p1flat),
			Phase2Mean:     model.NullFloat(p2flat),
		},
	}
}

func TestSummarize(t *testing.T) {
	f := model.NullFloat
	rows := []model.HourlyRecord{
		valued("HS1", model.Bucket3To6, f(10), f(30), 8, 20, 4),
		valued("HS1", model.BucketBelow3, f(5), f(12), 4, 10, 1),
		valued("HS1", model.Bucket3To6, f(20), sql.NullFloat64{}, 8, 20, 5),
		{Season: "HS1"}, // tail row
		valued("HS2", model.BucketAbove9, sql.NullFloat64{}, sql.NullFloat64{}, 2, 6, 11),
	}

	s := Summarize(rows)
	require.Len(t, s.Groups, 3)

	assert.Equal(t, "HS1", s.Groups[0].Season)
	assert.Equal(t, model.BucketBelow3, s.Groups[0].Category)
	assert.Equal(t, model.Bucket3To6, s.Groups[1].Category)
	assert.Equal(t, "HS2", s.Groups[2].Season)

	b36 := s.Groups[1]
	assert.Equal(t, 2, b36.Count)
	assert.Equal(t, 1, b36.Priced)
	assert.InDelta(t, 15.0, b36.MeanPhase1Dynamic, 1e-12)
	assert.InDelta(t, 30.0, b36.MeanPhase2Dynamic, 1e-12)
	assert.InDelta(t, 20.0, b36.MeanPhase2Flat, 1e-12)
	assert.InDelta(t, 10.0, b36.MeanPremium, 1e-12)
	assert.InDelta(t, 4.5, b36.MeanTemp18h, 1e-12)
	assert.InDelta(t, 30.0, b36.P05Phase2Dynamic, 1e-12)

	ab9 := s.Groups[2]
	assert.Equal(t, 0, ab9.Priced)
	assert.True(t, math.IsNaN(ab9.MeanPhase2Dynamic))
	assert.True(t, math.IsNaN(ab9.P95Phase2Dynamic))

	assert.Equal(t, AllSeasons, s.Total.Season)
	assert.Equal(t, 4, s.Total.Count)
	assert.Equal(t, 2, s.Total.Priced)
	assert.InDelta(t, (10.0+2.0)/2, s.Total.MeanPremium, 1e-12)
}

func TestPercentileSorted(t *testing.T) {
	vals := []float64{0, 10, 20, 30, 40}
	assert.Equal(t, 0.0, percentileSorted(vals, 0))
	assert.Equal(t, 40.0, percentileSorted(vals, 1))
	assert.InDelta(t, 2.0, percentileSorted(vals, 0.05), 1e-12)
	assert.InDelta(t, 20.0, percentileSorted(vals, 0.5), 1e-12)
}

func TestRankByPremium(t *testing.T) {
	groups := []Group{
		{Category: model.BucketBelow3, Priced: 3, MeanPremium: 1},
		{Category: model.Bucket3To6, Priced: 0, MeanPremium: math.NaN()},
		{Category: model.Bucket6To9, Priced: 2, MeanPremium: 5},
		{Category: model.BucketAbove9, Priced: 1, MeanPremium: -2},
	}
	ranked := RankByPremium(groups)
	got := []model.Bucket{}
	for _, g := range ranked {
		got = append(got, g.Category)
	}
	assert.Equal(t, []model.Bucket{model.Bucket6To9, model.BucketBelow3, model.BucketAbove9, model.Bucket3To6}, got)
	// input order untouched
	assert.Equal(t, model.BucketBelow3, groups[0].Category)
}
