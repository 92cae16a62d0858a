package data

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"flex-valuation/internal/model"
)

// table is a parsed CSV file addressed by column name.
type table struct {
	input string
	cols  map[string]int
	rows  [][]string
}

func readTable(input string, r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &model.MissingInputError{Input: input}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", input, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return &table{input: input, cols: cols, rows: rows}, nil
}

// require returns the index of a column or a MissingInputError.
func (t *table) require(name string) (int, error) {
	i, ok := t.cols[name]
	if !ok {
		return 0, &model.MissingInputError{Input: t.input, Column: name}
	}
	return i, nil
}

// optional returns the index of a column or -1.
func (t *table) optional(name string) int {
	if i, ok := t.cols[name]; ok {
		return i
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isMissing(s string) bool {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null", "none":
		return true
	}
	return false
}

// parseNullFloat parses a nullable number. Missing markers yield an invalid value.
func parseNullFloat(s string) (sql.NullFloat64, error) {
	if isMissing(s) {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	if math.IsNaN(v) {
		return sql.NullFloat64{}, nil
	}
	return model.NullFloat(v), nil
}

// parseNullInt accepts integral floats ("1.0") as well as plain integers.
func parseNullInt(s string) (sql.NullInt64, error) {
	f, err := parseNullFloat(s)
	if err != nil || !f.Valid {
		return sql.NullInt64{}, err
	}
	if f.Float64 != math.Trunc(f.Float64) {
		return sql.NullInt64{}, fmt.Errorf("%q is not an integer", s)
	}
	return sql.NullInt64{Int64: int64(f.Float64), Valid: true}, nil
}

// timeLayouts are tried in order. Month names match case-insensitively,
// so "21NOV2022 00:00:00" and "21Nov2022 00:00:00" both parse.
var timeLayouts = []string{
	"02Jan2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime parses a naive timestamp as UTC. Timestamps with an offset are converted to UTC.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
