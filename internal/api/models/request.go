package models

import "time"

// ValuationRequest represents the request body for running a valuation.
// The dataset itself comes from the server configuration.
type ValuationRequest struct {
	Overrides ConfigOverrides  `json:"overrides,omitempty"`
	Options   ValuationOptions `json:"options,omitempty"`
}

// ConfigOverrides are applied over the server configuration for one run.
type ConfigOverrides struct {
	AverageOver    string `json:"average_over,omitempty" binding:"omitempty,oneof=seasons all"`
	StationCode    int    `json:"station_code,omitempty"`
	WindSpeedUnits []int  `json:"wind_speed_units,omitempty"`
	PaddingDays    int    `json:"padding_days,omitempty" binding:"omitempty,min=0"`
}

// ValuationOptions contains optional run parameters
type ValuationOptions struct {
	LimitRows             int      `json:"limit_rows,omitempty" binding:"omitempty,min=0"` // 0 = all
	IncludeRows           bool     `json:"include_rows,omitempty"`                         // default: false
	GlobalAverageOverride *float64 `json:"global_average_override,omitempty"`
}

// WindowRequest values a single decision hour from a client-supplied window:
// the decision hour followed by the 36 forward hours.
type WindowRequest struct {
	Rows               []WindowRow `json:"rows" binding:"required"`
	GlobalAveragePrice *float64    `json:"global_average_price" binding:"required"`
}

// WindowRow is one hour of a WindowRequest. Null values are missing.
type WindowRow struct {
	Time     time.Time `json:"time"`
	DAMPrice *float64  `json:"dam_price"`
	Temp     *float64  `json:"temp"`
}

// RowsQuery pages cached rows.
type RowsQuery struct {
	Offset     int  `form:"offset" binding:"omitempty,min=0"`
	Limit      int  `form:"limit" binding:"omitempty,min=0,max=10000"` // default: 500
	ValuedOnly bool `form:"valued_only"`
}
