package handlers

import (
	"math"
	"net/http"

	"flex-valuation/internal/api/models"
	"flex-valuation/internal/config"
	"flex-valuation/internal/model"
	"flex-valuation/internal/valuation"

	"github.com/gin-gonic/gin"
)

// ProfileHandler handles potential-profile requests
type ProfileHandler struct {
	cfg config.Config
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(cfg config.Config) *ProfileHandler {
	return &ProfileHandler{cfg: cfg}
}

// ListProfiles handles GET /api/v1/profiles
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	set, err := loadProfiles(h.cfg)
	if err != nil {
		respondRunError(c, err)
		return
	}

	profiles := make([]models.ProfileInfo, 0, len(model.Buckets))
	for _, b := range model.Buckets {
		p := set[b]
		lo, hi := b.Bounds()
		profiles = append(profiles, models.ProfileInfo{
			Bucket:      string(b),
			LowerC:      bound(lo),
			UpperC:      bound(hi),
			Offsets:     len(p),
			Phase1Total: p.Sum(1, valuation.PhaseOneHours),
			Phase2Total: p.Sum(1, valuation.HorizonHours),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles":        profiles,
		"phase_one_hours": valuation.PhaseOneHours,
		"horizon_hours":   valuation.HorizonHours,
	})
}

func bound(v float64) *float64 {
	if math.IsInf(v, 0) {
		return nil
	}
	return &v
}
