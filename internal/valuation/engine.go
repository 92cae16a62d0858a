package valuation

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"flex-valuation/internal/model"
)

const (
	// PhaseOneHours is the length of the first phase of a flexibility event.
	PhaseOneHours = 18
	// HorizonHours is the full projected response window (phase 1 + phase 2).
	HorizonHours = 36
	// WindowRows is the number of rows ValueHour needs: the decision hour plus the horizon.
	WindowRows = HorizonHours + 1
)

// Inputs bundles everything the engine reads. None of it is modified.
type Inputs struct {
	Records            []model.HourlyRecord
	Profiles           model.ProfileSet
	GlobalAveragePrice float64
}

type Engine struct {
	// Workers splits the row range across goroutines. Values < 2 run sequentially.
	Workers int
}

func New() *Engine { return &Engine{} }

// Validate checks the structural preconditions of a run.
func (in Inputs) Validate() error {
	if len(in.Records) == 0 {
		return &model.MissingInputError{Input: "merged hourly table"}
	}
	if math.IsNaN(in.GlobalAveragePrice) || math.IsInf(in.GlobalAveragePrice, 0) {
		return &model.MissingInputError{Input: "global average price"}
	}
	return in.Profiles.Validate(HorizonHours)
}

// Run values every row that has a full forward window.
// Rows in the last HorizonHours positions are returned without derived fields.
func (e *Engine) Run(in Inputs) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rows := make([]model.HourlyRecord, len(in.Records))
	copy(rows, in.Records)
	for i := range rows {
		rows[i].Derived = nil
	}

	n := len(rows) - HorizonHours
	if n < 0 {
		n = 0
	}
	outcomes := make([]rowOutcome, n)

	valueRange := func(from, to int) {
		for i := from; i < to; i++ {
			d, err := ValueHour(in.Records[i:i+WindowRows], in.Profiles, in.GlobalAveragePrice)
			outcomes[i] = rowOutcome{derived: d, err: err}
		}
	}

	workers := e.Workers
	if workers < 2 || n < workers {
		valueRange(0, n)
	} else {
		var wg sync.WaitGroup
		chunk := (n + workers - 1) / workers
		for from := 0; from < n; from += chunk {
			to := from + chunk
			if to > n {
				to = n
			}
			wg.Add(1)
			go func(from, to int) {
				defer wg.Done()
				valueRange(from, to)
			}(from, to)
		}
		wg.Wait()
	}

	res := &Result{Rows: rows, Tail: len(rows) - n}
	for i, o := range outcomes {
		var unclassifiable *model.UnclassifiableRowError
		var gap *model.MissingPriceError
		switch {
		case o.err == nil:
		case errors.As(o.err, &unclassifiable):
			unclassifiable.Index = i
			res.Skipped = append(res.Skipped, *unclassifiable)
			continue
		case errors.As(o.err, &gap):
			gap.Index = i
			res.PriceGaps = append(res.PriceGaps, *gap)
		default:
			return nil, fmt.Errorf("row %d: %w", i, o.err)
		}
		d := o.derived
		rows[i].Derived = &d
		res.Valued++
	}

	if len(res.Skipped) > 0 || len(res.PriceGaps) > 0 {
		log.Printf("[valuation] %d rows valued, %d unclassifiable, %d with forward price gaps, %d tail rows",
			res.Valued, len(res.Skipped), len(res.PriceGaps), res.Tail)
	}
	return res, nil
}

type rowOutcome struct {
	derived model.Derived
	err     error
}

// ValueHour computes the derived fields for window[0] from the rows that follow it.
// window must hold WindowRows rows: the decision hour and the HorizonHours after it.
//
// A *model.UnclassifiableRowError means no derived fields apply.
// A *model.MissingPriceError comes with a usable Derived whose dynamic savings
// are missing from the first gap onward.
func ValueHour(window []model.HourlyRecord, profiles model.ProfileSet, globalAvg float64) (model.Derived, error) {
	if len(window) < WindowRows {
		return model.Derived{}, fmt.Errorf("window has %d rows, need %d", len(window), WindowRows)
	}

	d := model.Derived{
		AvgTOut18h: forwardMean(window[:PhaseOneHours], temp),
		AvgTOut36h: forwardMean(window[:HorizonHours], temp),
		AvgDAM18h:  forwardMean(window[:PhaseOneHours], price),
		AvgDAM36h:  forwardMean(window[:HorizonHours], price),
	}

	if !d.AvgTOut18h.Valid {
		return model.Derived{}, &model.UnclassifiableRowError{Time: window[0].Time}
	}
	bucket, ok := model.Classify(d.AvgTOut18h.Float64)
	if !ok {
		return model.Derived{}, &model.UnclassifiableRowError{Time: window[0].Time}
	}
	potential, ok := profiles[bucket]
	if !ok {
		return model.Derived{}, &model.IncompleteProfileError{Bucket: bucket}
	}
	d.Category = bucket

	dynamic := 0.0
	dynamicValid := true
	flat := 0.0
	var gaps []int
	for h := 1; h <= HorizonHours; h++ {
		w, ok := potential[h]
		if !ok {
			return model.Derived{}, &model.IncompleteProfileError{Bucket: bucket, Missing: []int{h}}
		}
		p := window[h].DAMPrice
		if p.Valid {
			dynamic += p.Float64 * w
		} else {
			dynamicValid = false
			gaps = append(gaps, h)
		}
		flat += globalAvg * w

		// Phase 1 is a snapshot of the running sums, not a separate interval.
		if h == PhaseOneHours {
			d.Phase1AvgMoney = partial(dynamic, dynamicValid)
			d.Phase1Mean = model.NullFloat(flat)
		}
	}
	d.Phase2AvgMoney = partial(dynamic, dynamicValid)
	d.Phase2Mean = model.NullFloat(flat)

	if len(gaps) > 0 {
		return d, &model.MissingPriceError{Time: window[0].Time, Offsets: gaps}
	}
	return d, nil
}

func partial(sum float64, valid bool) sql.NullFloat64 {
	if !valid {
		return sql.NullFloat64{}
	}
	return model.NullFloat(sum)
}

func temp(r model.HourlyRecord) sql.NullFloat64  { return r.Temp }
func price(r model.HourlyRecord) sql.NullFloat64 { return r.DAMPrice }

// forwardMean averages the present, finite values of field over rows.
// The mean is missing when no value is present.
func forwardMean(rows []model.HourlyRecord, field func(model.HourlyRecord) sql.NullFloat64) sql.NullFloat64 {
	sum := 0.0
	n := 0
	for _, r := range rows {
		v := field(r)
		if !v.Valid || math.IsNaN(v.Float64) {
			continue
		}
		sum += v.Float64
		n++
	}
	if n == 0 {
		return sql.NullFloat64{}
	}
	return model.NullFloat(sum / float64(n))
}
