package handlers

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/models"
	"github.com/KofuCodes/ReMind/internal/store"
	"github.com/KofuCodes/ReMind/internal/sync"
)

const (
	defaultRoundsPlayed  = 10
	defaultAvgReactionMs = 2000
)

// ScoreHandler is the device-oriented ingestion endpoint: embedded devices
// report a bare score and whatever round detail they have; the rest is
// defaulted server-side.
type ScoreHandler struct {
	log    *zap.Logger
	store  store.Store
	pusher *sync.Pusher
}

func NewScoreHandler(log *zap.Logger, st store.Store, pusher *sync.Pusher) *ScoreHandler {
	return &ScoreHandler{log: log, store: st, pusher: pusher}
}

type deviceSubmission struct {
	Score         *float64 `json:"score"`
	RoundsPlayed  *int     `json:"roundsPlayed"`
	RoundsCorrect *int     `json:"roundsCorrect"`
	AvgReactionMs *float64 `json:"avgReactionMs"`
	PatientID     string   `json:"patientId"`
}

func (h *ScoreHandler) Submit(c *gin.Context) {
	var sub deviceSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.log.Warn("Rejected malformed device submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be numeric"})
		return
	}
	if sub.Score == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score is required"})
		return
	}

	roundsPlayed := defaultRoundsPlayed
	if sub.RoundsPlayed != nil {
		roundsPlayed = *sub.RoundsPlayed
	}
	roundsCorrect := int(math.Max(0, math.Min(*sub.Score, float64(roundsPlayed))))
	if sub.RoundsCorrect != nil {
		roundsCorrect = *sub.RoundsCorrect
	}
	avgReaction := float64(defaultAvgReactionMs)
	if sub.AvgReactionMs != nil {
		avgReaction = *sub.AvgReactionMs
	}

	rec, err := h.store.Ingest(models.RawResult{
		Source:        models.SourceDevice,
		RoundsPlayed:  roundsPlayed,
		RoundsCorrect: roundsCorrect,
		AvgReactionMs: avgReaction,
		Score:         sub.Score,
		Patient:       models.Patient{ID: sub.PatientID},
	})
	if err != nil {
		respondIngestError(c, h.log, err)
		return
	}

	if h.pusher != nil {
		go h.pusher.Push(rec)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"storedId":       rec.ID,
		"deviationScore": rec.DeviationScore,
		"riskLevel":      rec.RiskLevel,
	})
}

// respondIngestError maps validation failures to 400 and everything else
// to 500.
func respondIngestError(c *gin.Context, log *zap.Logger, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	}
	log.Error("Failed to ingest session", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store session"})
}
