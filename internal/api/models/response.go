package models

import "time"

// ValuationResponse represents the response from a valuation run
type ValuationResponse struct {
	ID                 string          `json:"id"`
	Status             string          `json:"status"`
	GlobalAveragePrice float64         `json:"global_average_price"`
	Window             TimeWindow      `json:"window"`
	Stats              RunStats        `json:"stats"`
	Summary            SummaryResponse `json:"summary"`
	Issues             []RowIssue      `json:"issues,omitempty"`
	Rows               []Row           `json:"rows,omitempty"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RunStats counts what happened to the rows of a run
type RunStats struct {
	TotalRows int `json:"total_rows"`
	Valued    int `json:"valued"`
	Skipped   int `json:"skipped"`
	PriceGaps int `json:"price_gaps"`
	Tail      int `json:"tail"`
}

// RowIssue is a row-level problem (unclassifiable row or missing forward price)
type RowIssue struct {
	Kind    string    `json:"kind"` // "unclassifiable", "missing_price"
	Index   int       `json:"index"`
	Time    time.Time `json:"time"`
	Offsets []int     `json:"offsets,omitempty"`
}

// SummaryResponse contains per-season/bucket aggregates
type SummaryResponse struct {
	Groups  []Group `json:"groups"`
	Total   Group   `json:"total"`
	Ranking []Group `json:"ranking"`
}

// Group is one (season, bucket) aggregate. Null means no row contributed.
type Group struct {
	Season            string   `json:"season"`
	Category          string   `json:"category,omitempty"`
	Count             int      `json:"count"`
	Priced            int      `json:"priced"`
	MeanPhase1Dynamic *float64 `json:"mean_phase1_avg_money"`
	MeanPhase1Flat    *float64 `json:"mean_phase1_mean"`
	MeanPhase2Dynamic *float64 `json:"mean_phase2_avg_money"`
	MeanPhase2Flat    *float64 `json:"mean_phase2_mean"`
	MeanPremium       *float64 `json:"mean_premium"`
	P05Phase2Dynamic  *float64 `json:"p05_phase2_avg_money"`
	P95Phase2Dynamic  *float64 `json:"p95_phase2_avg_money"`
	MeanTemp18h       *float64 `json:"mean_avg_t_out_on_18h"`
}

// Row represents one hour of the valued table
type Row struct {
	Index    int       `json:"index"`
	Time     time.Time `json:"time"`
	Season   string    `json:"season,omitempty"`
	DAMPrice *float64  `json:"DAM_price"`
	Temp     *float64  `json:"temp"`
	Derived  *Derived  `json:"derived,omitempty"`
}

// Derived mirrors the derived output columns
type Derived struct {
	Category       string   `json:"temp_heterogeneity_category"`
	Phase1AvgMoney *float64 `json:"phase1_avg_money"`
	Phase1Mean     *float64 `json:"phase1_mean"`
	Phase2AvgMoney *float64 `json:"phase2_avg_money"`
	Phase2Mean     *float64 `json:"phase2_mean"`
	AvgTOut18h     *float64 `json:"avg_t_out_on_18h"`
	AvgTOut36h     *float64 `json:"avg_t_out_on_36h"`
	AvgDAM18h      *float64 `json:"avg_dam_on_18h"`
	AvgDAM36h      *float64 `json:"avg_dam_on_36h"`
}

// RowsPage is a page of cached rows
type RowsPage struct {
	ID     string `json:"id"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Total  int    `json:"total"`
	Rows   []Row  `json:"rows"`
}

// WindowResponse is the result of valuing one posted window
type WindowResponse struct {
	Derived *Derived   `json:"derived,omitempty"`
	Issues  []RowIssue `json:"issues,omitempty"`
}

// ProfileInfo describes one temperature bucket and its potential profile
type ProfileInfo struct {
	Bucket      string   `json:"bucket"`
	LowerC      *float64 `json:"lower_c"` // inclusive; null = unbounded
	UpperC      *float64 `json:"upper_c"` // exclusive; null = unbounded
	Offsets     int      `json:"offsets"`
	Phase1Total float64  `json:"phase1_total"`
	Phase2Total float64  `json:"phase2_total"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
