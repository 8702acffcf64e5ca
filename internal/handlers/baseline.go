package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/models"
	"github.com/KofuCodes/ReMind/internal/store"
)

type BaselineHandler struct {
	log      *zap.Logger
	store    store.Store
	profiles *models.BaselineProfiles
}

func NewBaselineHandler(log *zap.Logger, st store.Store, profiles *models.BaselineProfiles) *BaselineHandler {
	return &BaselineHandler{log: log, store: st, profiles: profiles}
}

type baselineRequest struct {
	Profile        string   `json:"profile"`
	ExpectedScore  *float64 `json:"expectedScore"`
	Accuracy       *float64 `json:"accuracy"`
	MeanReactionMs *float64 `json:"meanReactionMs"`
}

// Apply replaces the active baseline. A named profile, explicit fields, or
// both (fields override the profile) are accepted. Only the most recent
// record is rescored; earlier history keeps its scores.
func (h *BaselineHandler) Apply(c *gin.Context) {
	var req baselineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "baseline fields must be numeric"})
		return
	}

	baseline := h.store.Baseline()
	if req.Profile != "" {
		if h.profiles == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no baseline profiles configured"})
			return
		}
		profile, ok := h.profiles.Get(req.Profile)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown baseline profile: " + req.Profile})
			return
		}
		baseline = profile.Baseline
	}
	if req.ExpectedScore != nil {
		baseline.ExpectedScore = *req.ExpectedScore
	}
	if req.Accuracy != nil {
		baseline.Accuracy = *req.Accuracy
	}
	if req.MeanReactionMs != nil {
		baseline.MeanReactionMs = *req.MeanReactionMs
	}

	h.store.ApplyBaseline(baseline)
	h.log.Info("Baseline applied",
		zap.Float64("expected_score", baseline.ExpectedScore),
		zap.String("profile", req.Profile))

	c.JSON(http.StatusOK, gin.H{"status": "ok", "baseline": baseline})
}

// Show returns the currently active baseline.
func (h *BaselineHandler) Show(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"baseline": h.store.Baseline()})
}
