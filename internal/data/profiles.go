package data

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"flex-valuation/internal/model"
)

// LoadProfileCSV reads a raw potential table (columns hour_into_int, avg_hourly_energy_reduction).
// Keys are returned as written; see model.ShiftProfile for the offset convention.
func LoadProfileCSV(path string) (map[int]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.MissingInputError{Input: path}
	}
	defer f.Close()
	return ParseProfile(path, f)
}

// ParseProfile parses a raw potential table. Rows with a missing reduction are left
// out so that profile validation reports the offset. Repeated keys keep the last value.
func ParseProfile(input string, r io.Reader) (map[int]float64, error) {
	t, err := readTable(input, r)
	if err != nil {
		return nil, err
	}
	hourCol, err := t.require("hour_into_int")
	if err != nil {
		return nil, err
	}
	valueCol, err := t.require("avg_hourly_energy_reduction")
	if err != nil {
		return nil, err
	}

	raw := make(map[int]float64, len(t.rows))
	for i, row := range t.rows {
		hour, err := parseNullInt(cell(row, hourCol))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: hour_into_int: %w", input, i+2, err)
		}
		if !hour.Valid {
			continue
		}
		v, err := parseNullFloat(cell(row, valueCol))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: avg_hourly_energy_reduction: %w", input, i+2, err)
		}
		if !v.Valid || math.IsInf(v.Float64, 0) {
			continue
		}
		raw[int(hour.Int64)] = v.Float64
	}
	return raw, nil
}

// LoadProfiles loads one table per bucket, applies the +1 offset shift and
// checks that every profile covers offsets 1..horizon.
func LoadProfiles(paths map[model.Bucket]string, horizon int) (model.ProfileSet, error) {
	set := make(model.ProfileSet, len(model.Buckets))
	for _, b := range model.Buckets {
		path, ok := paths[b]
		if !ok || path == "" {
			return nil, &model.IncompleteProfileError{Bucket: b}
		}
		raw, err := LoadProfileCSV(path)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", b, err)
		}
		set[b] = model.ShiftProfile(raw)
		log.Printf("[data] Loaded profile %s: %d offsets, phase total %.4f", b, len(raw), set[b].Sum(1, horizon))
	}
	if err := set.Validate(horizon); err != nil {
		return nil, err
	}
	return set, nil
}
