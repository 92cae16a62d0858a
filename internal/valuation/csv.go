package valuation

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"flex-valuation/internal/model"
)

// TimeLayout is the timestamp format of the output table.
const TimeLayout = "2006-01-02 15:04:05"

// Header lists the output columns: the merged input columns followed by the
// derived fields. Keep the order stable; downstream plotting reads by name.
var Header = []string{
	"time",
	"DAM_price",
	"temp",
	"wind_speed",
	"wind_speed_unit",
	"humidity_relative",
	"cloudiness",
	"sun_duration_24hours",
	"temp_heterogeneity_category",
	"phase1_avg_money",
	"phase1_mean",
	"phase2_avg_money",
	"phase2_mean",
	"avg_t_out_on_18h",
	"avg_t_out_on_36h",
	"avg_dam_on_18h",
	"avg_dam_on_36h",
}

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// WriteFile writes rows to path in the given format, creating the directory if needed.
func WriteFile(path, format string, rows []model.HourlyRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "", FormatCSV:
		return WriteCSVFile(path, rows)
	case FormatXLSX:
		return WriteXLSXFile(path, rows)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func WriteCSVFile(path string, rows []model.HourlyRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, rows); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes one line per row in input order. Missing values are empty cells.
func WriteCSV(out io.Writer, rows []model.HourlyRecord) error {
	w := csv.NewWriter(out)
	if err := w.Write(Header); err != nil {
		return err
	}

	line := make([]string, len(Header))
	for _, r := range rows {
		for i, v := range cells(r) {
			line[i] = formatCell(v)
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// cells returns the typed column values of a row in Header order.
// Missing values are nil.
func cells(r model.HourlyRecord) []any {
	out := []any{
		r.Time.Format(TimeLayout),
		nullable(r.DAMPrice.Float64, r.DAMPrice.Valid),
		nullable(r.Temp.Float64, r.Temp.Valid),
		nullable(r.WindSpeed.Float64, r.WindSpeed.Valid),
		nil,
		nullable(r.HumidityRelative.Float64, r.HumidityRelative.Valid),
		nullable(r.Cloudiness.Float64, r.Cloudiness.Valid),
		nullable(r.SunDuration24h.Float64, r.SunDuration24h.Valid),
	}
	if r.WindSpeedUnit.Valid {
		out[4] = r.WindSpeedUnit.Int64
	}

	d := r.Derived
	if d == nil {
		return append(out, make([]any, len(Header)-len(out))...)
	}
	return append(out,
		string(d.Category),
		nullable(d.Phase1AvgMoney.Float64, d.Phase1AvgMoney.Valid),
		nullable(d.Phase1Mean.Float64, d.Phase1Mean.Valid),
		nullable(d.Phase2AvgMoney.Float64, d.Phase2AvgMoney.Valid),
		nullable(d.Phase2Mean.Float64, d.Phase2Mean.Valid),
		nullable(d.AvgTOut18h.Float64, d.AvgTOut18h.Valid),
		nullable(d.AvgTOut36h.Float64, d.AvgTOut36h.Valid),
		nullable(d.AvgDAM18h.Float64, d.AvgDAM18h.Valid),
		nullable(d.AvgDAM36h.Float64, d.AvgDAM36h.Valid),
	)
}

func nullable(v float64, valid bool) any {
	if !valid {
		return nil
	}
	return v
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmtFloat(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.Format(TimeLayout)
	default:
		return fmt.Sprint(x)
	}
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
