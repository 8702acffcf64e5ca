package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/store"
)

// ArchiveHandler serves the persistent archive when the postgres driver is
// enabled. These routes are only registered when an archive is attached.
type ArchiveHandler struct {
	log     *zap.Logger
	archive *store.Archive
}

func NewArchiveHandler(log *zap.Logger, archive *store.Archive) *ArchiveHandler {
	return &ArchiveHandler{log: log, archive: archive}
}

// List returns archived sessions filtered by risk tier (`?risk=high` or
// `?risk=medium,high`) or by patient (`?patient=...`).
func (h *ArchiveHandler) List(c *gin.Context) {
	if patientID := c.Query("patient"); patientID != "" {
		rows, err := h.archive.ListByPatient(c.Request.Context(), patientID)
		if err != nil {
			h.log.Error("Failed to list archived sessions by patient", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query archive"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": rows})
		return
	}

	levels := []string{"low", "medium", "high"}
	if risk := c.Query("risk"); risk != "" {
		levels = strings.Split(risk, ",")
	}

	rows, err := h.archive.ListByRisk(c.Request.Context(), levels)
	if err != nil {
		h.log.Error("Failed to list archived sessions by risk", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query archive"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": rows})
}
