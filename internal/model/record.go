package model

import (
	"database/sql"
	"time"
)

// PriceRecord is one hourly day-ahead market price.
// Price unit follows the source file (EUR/MWh for the Belgian DAM).
type PriceRecord struct {
	Time     time.Time
	Season   string
	DAMPrice sql.NullFloat64
}

// WeatherObservation is one SYNOP observation row.
type WeatherObservation struct {
	StationCode      int
	Time             time.Time
	Season           string
	Temp             sql.NullFloat64
	WindSpeed        sql.NullFloat64
	WindSpeedUnit    sql.NullInt64
	HumidityRelative sql.NullFloat64
	Cloudiness       sql.NullFloat64
	SunDuration24h   sql.NullFloat64
}

// HourlyRecord is one row of the merged price + weather table.
// Derived is nil for rows the engine did not value (tail rows, unclassifiable rows).
type HourlyRecord struct {
	Time   time.Time
	Season string

	DAMPrice sql.NullFloat64
	Temp     sql.NullFloat64

	WindSpeed        sql.NullFloat64
	WindSpeedUnit    sql.NullInt64
	HumidityRelative sql.NullFloat64
	Cloudiness       sql.NullFloat64
	SunDuration24h   sql.NullFloat64

	Derived *Derived
}

// Derived holds the fields the valuation engine adds to a row.
// Money values are price unit × potential unit (EUR/MWh × kWh in the field data).
type Derived struct {
	Category Bucket

	// Forward-looking means, diagnostic only.
	AvgTOut18h sql.NullFloat64
	AvgTOut36h sql.NullFloat64
	AvgDAM18h  sql.NullFloat64
	AvgDAM36h  sql.NullFloat64

	// Phase1* covers forward hours 1..18, Phase2* hours 1..36.
	// *AvgMoney uses the actual price of each hour, *Mean the global average price.
	Phase1AvgMoney sql.NullFloat64
	Phase1Mean     sql.NullFloat64
	Phase2AvgMoney sql.NullFloat64
	Phase2Mean     sql.NullFloat64
}

// NullFloat wraps a present value.
func NullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}
