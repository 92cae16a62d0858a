package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"flex-valuation/internal/analysis"
	"flex-valuation/internal/api/models"
	"flex-valuation/internal/config"
	"flex-valuation/internal/data"
	"flex-valuation/internal/model"
	"flex-valuation/internal/pipeline"
	"flex-valuation/internal/valuation"

	"github.com/gin-gonic/gin"
)

const defaultRowsLimit = 500

// ValuationHandler handles valuation-related requests
type ValuationHandler struct {
	cfg   config.Config
	cache *data.ResultCache
}

// NewValuationHandler creates a new valuation handler for the configured dataset
func NewValuationHandler(cfg config.Config, cache *data.ResultCache) *ValuationHandler {
	return &ValuationHandler{cfg: cfg, cache: cache}
}

// runKey is what identifies a run in the cache
type runKey struct {
	Config  config.Config           `json:"config"`
	Options models.ValuationOptions `json:"options"`
}

// RunValuation handles POST /api/v1/valuation
func (h *ValuationHandler) RunValuation(c *gin.Context) {
	var req models.ValuationRequest
	// An empty body runs the configured dataset as is.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	cfg := h.buildConfig(req.Overrides)
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_CONFIG",
				Message: err.Error(),
			},
		})
		return
	}

	id, err := data.CacheKey(runKey{Config: cfg, Options: req.Options})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	entry, ok := h.cache.Get(id)
	if ok {
		log.Printf("[ValuationHandler] Cache hit for run %s", id)
	} else {
		out, err := pipeline.Run(&cfg, pipeline.Options{
			LimitRows:             req.Options.LimitRows,
			GlobalAverageOverride: req.Options.GlobalAverageOverride,
		})
		if err != nil {
			respondRunError(c, err)
			return
		}
		entry = h.cache.Set(id, out.Result, out.Dataset.GlobalAverage)
	}

	c.JSON(http.StatusOK, buildValuationResponse(entry, req.Options.IncludeRows))
}

// GetRows handles GET /api/v1/valuation/:id/rows
func (h *ValuationHandler) GetRows(c *gin.Context) {
	id := c.Param("id")

	var q models.RowsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultRowsLimit
	}

	entry, ok := h.cache.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "valuation run not found or expired; run POST /api/v1/valuation again",
				Details: map[string]interface{}{"id": id},
			},
		})
		return
	}

	rows := toRows(entry.Result.Rows)
	if q.ValuedOnly {
		valued := rows[:0:0]
		for _, r := range rows {
			if r.Derived != nil {
				valued = append(valued, r)
			}
		}
		rows = valued
	}

	total := len(rows)
	from := min(q.Offset, total)
	to := min(from+q.Limit, total)

	c.JSON(http.StatusOK, models.RowsPage{
		ID:     id,
		Offset: q.Offset,
		Limit:  q.Limit,
		Total:  total,
		Rows:   rows[from:to],
	})
}

// ValueWindow handles POST /api/v1/valuation/window
func (h *ValuationHandler) ValueWindow(c *gin.Context) {
	var req models.WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}
	if len(req.Rows) < valuation.WindowRows {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_WINDOW",
				Message: "window must hold the decision hour and the 36 hours after it",
				Details: map[string]interface{}{
					"rows":     len(req.Rows),
					"required": valuation.WindowRows,
				},
			},
		})
		return
	}

	profiles, err := loadProfiles(h.cfg)
	if err != nil {
		respondRunError(c, err)
		return
	}

	window := make([]model.HourlyRecord, len(req.Rows))
	for i, r := range req.Rows {
		window[i] = model.HourlyRecord{
			Time:     r.Time.UTC(),
			DAMPrice: nullable(r.DAMPrice),
			Temp:     nullable(r.Temp),
		}
	}

	d, err := valuation.ValueHour(window, profiles, *req.GlobalAveragePrice)
	var resp models.WindowResponse
	var unclassifiable *model.UnclassifiableRowError
	var gap *model.MissingPriceError
	switch {
	case err == nil:
		resp.Derived = toDerived(&d)
	case errors.As(err, &gap):
		resp.Derived = toDerived(&d)
		resp.Issues = []models.RowIssue{priceIssue(*gap)}
	case errors.As(err, &unclassifiable):
		resp.Issues = []models.RowIssue{skipIssue(*unclassifiable)}
	default:
		respondRunError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// buildConfig applies request overrides over the server configuration
func (h *ValuationHandler) buildConfig(o models.ConfigOverrides) config.Config {
	override := config.Config{
		Weather: config.WeatherConfig{
			StationCode:    o.StationCode,
			WindSpeedUnits: o.WindSpeedUnits,
		},
		Seasons: config.SeasonsConfig{PaddingDays: o.PaddingDays},
		Pricing: config.PricingConfig{AverageOver: o.AverageOver},
	}
	return config.Merge(h.cfg, override)
}

func loadProfiles(cfg config.Config) (model.ProfileSet, error) {
	paths := make(map[model.Bucket]string, len(cfg.Inputs.Profiles))
	for k, v := range cfg.Inputs.Profiles {
		paths[model.Bucket(k)] = v
	}
	return data.LoadProfiles(paths, valuation.HorizonHours)
}

// respondRunError maps pipeline errors to HTTP responses.
// Structural input problems are the caller's data, not a server fault.
func respondRunError(c *gin.Context, err error) {
	details := map[string]interface{}{}
	var missing *model.MissingInputError
	var incomplete *model.IncompleteProfileError
	if errors.As(err, &missing) {
		details["input"] = missing.Input
		if missing.Column != "" {
			details["column"] = missing.Column
		}
	}
	if errors.As(err, &incomplete) {
		details["bucket"] = string(incomplete.Bucket)
		if len(incomplete.Missing) > 0 {
			details["missing_offsets"] = incomplete.Missing
		}
	}
	if len(details) == 0 {
		details = nil
	}

	if errors.Is(err, model.ErrStructural) {
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "STRUCTURAL_INPUT_ERROR",
				Message: err.Error(),
				Details: details,
			},
		})
		return
	}
	log.Printf("[ValuationHandler] Valuation failed: %v", err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "VALUATION_ERROR",
			Message: err.Error(),
		},
	})
}

func buildValuationResponse(entry *data.CacheEntry, includeRows bool) models.ValuationResponse {
	res := entry.Result
	summary := analysis.Summarize(res.Rows)

	response := models.ValuationResponse{
		ID:                 entry.ID,
		Status:             "completed",
		GlobalAveragePrice: entry.GlobalAverage,
		Stats: models.RunStats{
			TotalRows: len(res.Rows),
			Valued:    res.Valued,
			Skipped:   len(res.Skipped),
			PriceGaps: len(res.PriceGaps),
			Tail:      res.Tail,
		},
		Summary: models.SummaryResponse{
			Groups:  toGroups(summary.Groups),
			Total:   toGroup(summary.Total),
			Ranking: toGroups(analysis.RankByPremium(summary.Groups)),
		},
	}
	if len(res.Rows) > 0 {
		response.Window = models.TimeWindow{
			Start: res.Rows[0].Time,
			End:   res.Rows[len(res.Rows)-1].Time,
		}
	}
	for _, s := range res.Skipped {
		response.Issues = append(response.Issues, skipIssue(s))
	}
	for _, g := range res.PriceGaps {
		response.Issues = append(response.Issues, priceIssue(g))
	}
	if includeRows {
		response.Rows = toRows(res.Rows)
	}
	return response
}
