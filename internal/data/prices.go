package data

import (
	"fmt"
	"io"
	"log"
	"os"

	"flex-valuation/internal/model"
)

// LoadDAMPricesCSV reads day-ahead prices (columns time, DAM_price).
func LoadDAMPricesCSV(path string) ([]model.PriceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.MissingInputError{Input: path}
	}
	defer f.Close()
	return ParseDAMPrices(path, f)
}

// ParseDAMPrices parses a price table. A blank or NA price is kept as a missing value.
func ParseDAMPrices(input string, r io.Reader) ([]model.PriceRecord, error) {
	t, err := readTable(input, r)
	if err != nil {
		return nil, err
	}
	timeCol, err := t.require("time")
	if err != nil {
		return nil, err
	}
	priceCol, err := t.require("DAM_price")
	if err != nil {
		return nil, err
	}

	out := make([]model.PriceRecord, 0, len(t.rows))
	for i, row := range t.rows {
		ts, err := parseTime(cell(row, timeCol))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", input, i+2, err)
		}
		p, err := parseNullFloat(cell(row, priceCol))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: DAM_price: %w", input, i+2, err)
		}
		out = append(out, model.PriceRecord{Time: ts, DAMPrice: p})
	}
	log.Printf("[data] Loaded %d price records from %s", len(out), input)
	return out, nil
}

// FilterPrices keeps prices inside any season and tags them with the season name.
func FilterPrices(prices []model.PriceRecord, seasons model.Seasons) []model.PriceRecord {
	out := make([]model.PriceRecord, 0, len(prices))
	for _, p := range prices {
		name, ok := seasons.Match(p.Time)
		if !ok {
			continue
		}
		p.Season = name
		out = append(out, p)
	}
	return out
}

// GlobalAveragePrice is the mean of all present prices.
func GlobalAveragePrice(prices []model.PriceRecord) (float64, error) {
	sum := 0.0
	n := 0
	for _, p := range prices {
		if !p.DAMPrice.Valid {
			continue
		}
		sum += p.DAMPrice.Float64
		n++
	}
	if n == 0 {
		return 0, &model.MissingInputError{Input: "day-ahead prices", Column: "DAM_price"}
	}
	return sum / float64(n), nil
}
