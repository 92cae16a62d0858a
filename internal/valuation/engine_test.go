package valuation

import (
	"bytes"
	"database/sql"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flex-valuation/internal/model"
)

var t0 = time.Date(2022, 11, 14, 0, 0, 0, 0, time.UTC)

func constProfile(v float64) model.Profile {
	raw := map[int]float64{}
	for k := 0; k < HorizonHours; k++ {
		raw[k] = v
	}
	return model.ShiftProfile(raw)
}

func rampProfile(step float64) model.Profile {
	raw := map[int]float64{}
	for k := 0; k < HorizonHours; k++ {
		raw[k] = float64(k+1) * step
	}
	return model.ShiftProfile(raw)
}

func testProfiles() model.ProfileSet {
	return model.ProfileSet{
		model.BucketBelow3: constProfile(0.5),
		model.Bucket3To6:   constProfile(1.0),
		model.Bucket6To9:   rampProfile(0.01),
		model.BucketAbove9: constProfile(0.2),
	}
}

func hourly(n int, temp, price float64) []model.HourlyRecord {
	rows := make([]model.HourlyRecord, n)
	for i := range rows {
		rows[i] = model.HourlyRecord{
			Time:     t0.Add(time.Duration(i) * time.Hour),
			Temp:     model.NullFloat(temp),
			DAMPrice: model.NullFloat(price),
		}
	}
	return rows
}

func TestRun_ConstantProfileExample(t *testing.T) {
	res, err := New().Run(Inputs{
		Records:            hourly(40, 1.0, 100),
		Profiles:           testProfiles(),
		GlobalAveragePrice: 100,
	})
	require.NoError(t, err)

	d := res.Rows[0].Derived
	require.NotNil(t, d)
	assert.Equal(t, model.BucketBelow3, d.Category)
	assert.InDelta(t, 1800.0, d.Phase2AvgMoney.Float64, 1e-9)
	assert.InDelta(t, 1800.0, d.Phase2Mean.Float64, 1e-9)
	assert.InDelta(t, 900.0, d.Phase1AvgMoney.Float64, 1e-9)
	assert.InDelta(t, 900.0, d.Phase1Mean.Float64, 1e-9)
	assert.InDelta(t, 1.0, d.AvgTOut18h.Float64, 1e-12)
	assert.InDelta(t, 100.0, d.AvgDAM36h.Float64, 1e-12)
}

func TestRun_TailRowsHaveNoDerivedFields(t *testing.T) {
	const n = 50
	res, err := New().Run(Inputs{
		Records:            hourly(n, 7.0, 80),
		Profiles:           testProfiles(),
		GlobalAveragePrice: 90,
	})
	require.NoError(t, err)

	assert.Equal(t, n-HorizonHours, res.Valued)
	assert.Equal(t, HorizonHours, res.Tail)
	for i, r := range res.Rows {
		if i < n-HorizonHours {
			assert.NotNil(t, r.Derived, "row %d", i)
		} else {
			assert.Nil(t, r.Derived, "row %d", i)
		}
	}
	assert.Len(t, res.ValuedRows(), n-HorizonHours)
}

func TestRun_ShortTableValuesNothing(t *testing.T) {
	res, err := New().Run(Inputs{
		Records:            hourly(HorizonHours, 7.0, 80),
		Profiles:           testProfiles(),
		GlobalAveragePrice: 90,
	})
	require.NoError(t, err)
	assert.Zero(t, res.Valued)
	assert.Equal(t, HorizonHours, res.Tail)
}

func TestRun_FlatPhaseOneDependsOnlyOnProfile(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rows := hourly(300, 0, 0)
	for i := range rows {
		rows[i].Temp = model.NullFloat(-4 + rng.Float64()*18)
		rows[i].DAMPrice = model.NullFloat(rng.Float64() * 300)
	}
	profiles := testProfiles()
	const avg = 123.4

	res, err := New().Run(Inputs{Records: rows, Profiles: profiles, GlobalAveragePrice: avg})
	require.NoError(t, err)

	for i, r := range res.ValuedRows() {
		d := r.Derived
		p := profiles[d.Category]
		assert.InDelta(t, avg*p.Sum(1, PhaseOneHours), d.Phase1Mean.Float64, 1e-9, "row %d", i)
		assert.InDelta(t, avg*p.Sum(1, HorizonHours), d.Phase2Mean.Float64, 1e-9, "row %d", i)
		// Non-negative prices and potentials: phase 1 is a prefix of phase 2.
		assert.LessOrEqual(t, d.Phase1AvgMoney.Float64, d.Phase2AvgMoney.Float64, "row %d", i)
		assert.LessOrEqual(t, d.Phase1Mean.Float64, d.Phase2Mean.Float64, "row %d", i)
	}
}

func TestValueHour_DecisionHourPriceIsExcluded(t *testing.T) {
	window := hourly(WindowRows, 10, 0)
	window[0].DAMPrice = model.NullFloat(1e6)
	window[HorizonHours].DAMPrice = model.NullFloat(50)

	d, err := ValueHour(window, testProfiles(), 0)
	require.NoError(t, err)
	assert.Equal(t, model.BucketAbove9, d.Category)
	// Only offset 36 carries a price: 50 * 0.2.
	assert.InDelta(t, 10.0, d.Phase2AvgMoney.Float64, 1e-9)
	assert.InDelta(t, 0.0, d.Phase1AvgMoney.Float64, 1e-9)
	// The decision hour still counts in the diagnostic price means.
	assert.Greater(t, d.AvgDAM18h.Float64, 1000.0)
}

func TestValueHour_UsesOffsetWeights(t *testing.T) {
	window := hourly(WindowRows, 7, 0)
	for h := 1; h <= HorizonHours; h++ {
		window[h].DAMPrice = model.NullFloat(float64(h))
	}
	d, err := ValueHour(window, testProfiles(), 1)
	require.NoError(t, err)
	require.Equal(t, model.Bucket6To9, d.Category)

	want1, want2 := 0.0, 0.0
	for h := 1; h <= HorizonHours; h++ {
		v := float64(h) * float64(h) * 0.01
		if h <= PhaseOneHours {
			want1 += v
		}
		want2 += v
	}
	assert.InDelta(t, want1, d.Phase1AvgMoney.Float64, 1e-9)
	assert.InDelta(t, want2, d.Phase2AvgMoney.Float64, 1e-9)
}

func TestValueHour_BoundaryTemperatureGoesToUpperBucket(t *testing.T) {
	d, err := ValueHour(hourly(WindowRows, 3.0, 10), testProfiles(), 10)
	require.NoError(t, err)
	assert.Equal(t, model.Bucket3To6, d.Category)
}

func TestValueHour_ClassifiesOnEighteenHourMean(t *testing.T) {
	window := hourly(WindowRows, 20, 10)
	for i := 0; i < PhaseOneHours; i++ {
		window[i].Temp = model.NullFloat(0)
	}
	d, err := ValueHour(window, testProfiles(), 10)
	require.NoError(t, err)
	assert.Equal(t, model.BucketBelow3, d.Category)
	assert.InDelta(t, 0.0, d.AvgTOut18h.Float64, 1e-12)
	assert.InDelta(t, 10.0, d.AvgTOut36h.Float64, 1e-12)
}

func TestValueHour_MeansSkipMissingValues(t *testing.T) {
	window := hourly(WindowRows, 4, 10)
	window[1].Temp = sql.NullFloat64{}
	window[2].Temp = model.NullFloat(4 + 17*2)

	d, err := ValueHour(window, testProfiles(), 10)
	require.NoError(t, err)
	// 16 values of 4 and one of 38 over 17 present rows.
	assert.InDelta(t, (16*4.0+38.0)/17.0, d.AvgTOut18h.Float64, 1e-12)
}

func TestValueHour_ShortWindow(t *testing.T) {
	_, err := ValueHour(hourly(HorizonHours, 4, 10), testProfiles(), 10)
	assert.Error(t, err)
}

func TestRun_MissingPricePropagates(t *testing.T) {
	rows := hourly(80, 5, 40)
	rows[25].DAMPrice = sql.NullFloat64{}

	res, err := New().Run(Inputs{Records: rows, Profiles: testProfiles(), GlobalAveragePrice: 40})
	require.NoError(t, err)

	// Row 0: gap at offset 25, after phase 1.
	d0 := res.Rows[0].Derived
	require.NotNil(t, d0)
	assert.Equal(t, model.Bucket3To6, d0.Category)
	assert.True(t, d0.Phase1AvgMoney.Valid)
	assert.InDelta(t, 18*40.0, d0.Phase1AvgMoney.Float64, 1e-9)
	assert.False(t, d0.Phase2AvgMoney.Valid)
	assert.True(t, d0.Phase2Mean.Valid)

	// Row 10: gap at offset 15, inside phase 1.
	d10 := res.Rows[10].Derived
	require.NotNil(t, d10)
	assert.False(t, d10.Phase1AvgMoney.Valid)
	assert.False(t, d10.Phase2AvgMoney.Valid)
	assert.True(t, d10.Phase1Mean.Valid)

	// Row 24 has the gap one hour ahead; row 25 itself is excluded from its own sum.
	assert.False(t, res.Rows[24].Derived.Phase1AvgMoney.Valid)
	assert.True(t, res.Rows[25].Derived.Phase2AvgMoney.Valid)

	// Rows 0..24 see the gap.
	require.Len(t, res.PriceGaps, 25)
	assert.Equal(t, 0, res.PriceGaps[0].Index)
	assert.Equal(t, 24, res.PriceGaps[24].Index)
	assert.Equal(t, []int{25}, res.PriceGaps[0].Offsets)
	assert.Equal(t, 80-HorizonHours, res.Valued)
	assert.Contains(t, res.PriceGaps[0].Error(), "offsets [25]")
}

func TestRun_UnclassifiableRowsAreSkipped(t *testing.T) {
	rows := hourly(60, 2, 40)
	for i := 0; i < PhaseOneHours; i++ {
		rows[i].Temp = sql.NullFloat64{}
	}

	res, err := New().Run(Inputs{Records: rows, Profiles: testProfiles(), GlobalAveragePrice: 40})
	require.NoError(t, err)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 0, res.Skipped[0].Index)
	assert.Equal(t, t0, res.Skipped[0].Time)
	assert.Nil(t, res.Rows[0].Derived)

	// Row 1 reaches row 18 and can be classified on that single value.
	require.NotNil(t, res.Rows[1].Derived)
	assert.Equal(t, model.BucketBelow3, res.Rows[1].Derived.Category)
	assert.Equal(t, 60-HorizonHours-1, res.Valued)
}

func TestRun_IncompleteProfileFailsBeforeValuation(t *testing.T) {
	profiles := testProfiles()
	delete(profiles[model.Bucket6To9], 36)

	res, err := New().Run(Inputs{Records: hourly(60, 20, 40), Profiles: profiles, GlobalAveragePrice: 40})
	require.Error(t, err)
	assert.Nil(t, res)

	var ipe *model.IncompleteProfileError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, model.Bucket6To9, ipe.Bucket)
	assert.Equal(t, []int{36}, ipe.Missing)
}

func TestRun_MissingInputs(t *testing.T) {
	_, err := New().Run(Inputs{Profiles: testProfiles(), GlobalAveragePrice: 40})
	var mie *model.MissingInputError
	require.True(t, errors.As(err, &mie))
	assert.True(t, errors.Is(err, model.ErrStructural))
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	rows := hourly(40, 2, 40)
	_, err := New().Run(Inputs{Records: rows, Profiles: testProfiles(), GlobalAveragePrice: 40})
	require.NoError(t, err)
	for _, r := range rows {
		assert.Nil(t, r.Derived)
	}
}

func TestRun_IdempotentAndWorkerIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rows := hourly(500, 0, 0)
	for i := range rows {
		rows[i].Temp = model.NullFloat(-5 + rng.Float64()*20)
		if i%97 != 0 {
			rows[i].DAMPrice = model.NullFloat(rng.Float64() * 250)
		} else {
			rows[i].DAMPrice = sql.NullFloat64{}
		}
	}
	in := Inputs{Records: rows, Profiles: testProfiles(), GlobalAveragePrice: 101.5}

	render := func(e *Engine) []byte {
		res, err := e.Run(in)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, res.Rows))
		return buf.Bytes()
	}

	first := render(New())
	second := render(New())
	parallel := render(&Engine{Workers: 4})

	assert.Equal(t, first, second)
	assert.Equal(t, first, parallel)
}
