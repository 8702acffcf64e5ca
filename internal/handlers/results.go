package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/models"
	"github.com/KofuCodes/ReMind/internal/store"
	"github.com/KofuCodes/ReMind/internal/sync"
)

type ResultsHandler struct {
	log    *zap.Logger
	store  store.Store
	pusher *sync.Pusher
}

func NewResultsHandler(log *zap.Logger, st store.Store, pusher *sync.Pusher) *ResultsHandler {
	return &ResultsHandler{log: log, store: st, pusher: pusher}
}

// apiSubmission is a full-fidelity web submission. The three required
// numerics are pointers so "absent" and "zero" can be told apart.
type apiSubmission struct {
	SequenceLength int            `json:"sequenceLength"`
	RoundsPlayed   *int           `json:"roundsPlayed"`
	RoundsCorrect  *int           `json:"roundsCorrect"`
	AvgReactionMs  *float64       `json:"avgReactionMs"`
	Score          *float64       `json:"score"`
	Patient        models.Patient `json:"patient"`
}

func (h *ResultsHandler) Submit(c *gin.Context) {
	var sub apiSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.log.Warn("Rejected malformed result submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "roundsPlayed, roundsCorrect and avgReactionMs must be numeric"})
		return
	}
	if sub.RoundsPlayed == nil || sub.RoundsCorrect == nil || sub.AvgReactionMs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roundsPlayed, roundsCorrect and avgReactionMs are required"})
		return
	}

	rec, err := h.store.Ingest(models.RawResult{
		Source:         models.SourceWeb,
		SequenceLength: sub.SequenceLength,
		RoundsPlayed:   *sub.RoundsPlayed,
		RoundsCorrect:  *sub.RoundsCorrect,
		AvgReactionMs:  *sub.AvgReactionMs,
		Score:          sub.Score,
		Patient:        sub.Patient,
	})
	if err != nil {
		respondIngestError(c, h.log, err)
		return
	}

	if h.pusher != nil {
		go h.pusher.Push(rec)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "record": rec})
}

// History returns the full session history, most-recent first.
func (h *ResultsHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.store.All()})
}

// Latest returns the most recent record, or 204 when nothing has been
// ingested yet.
func (h *ResultsHandler) Latest(c *gin.Context) {
	rec, ok := h.store.Latest()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

// Merge accepts a fully enriched record mirrored from a peer instance.
// Duplicate delivery is a no-op.
func (h *ResultsHandler) Merge(c *gin.Context) {
	var rec models.SessionRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record"})
		return
	}
	if rec.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "record id is required"})
		return
	}

	added := h.store.Merge(rec)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "merged": added})
}
