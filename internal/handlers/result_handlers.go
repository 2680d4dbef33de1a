package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/okabelab/graymeter/internal/database"
	"github.com/okabelab/graymeter/internal/export"
	"github.com/okabelab/graymeter/internal/imageprocessing"
	"github.com/okabelab/graymeter/internal/logging"
)

// ResultHandler serves the result table endpoints
type ResultHandler struct {
	sessions *database.SessionService
	results  *database.ResultService
}

// NewResultHandler creates a result handler backed by the given services
func NewResultHandler(sessions *database.SessionService, results *database.ResultService) *ResultHandler {
	return &ResultHandler{sessions: sessions, results: results}
}

// CreateResultRequest records one measurement for a processed session
type CreateResultRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid"`
	T1        int    `json:"t1" binding:"min=0,max=255"`
	T2        int    `json:"t2" binding:"min=0,max=255"`
}

// Create handles POST /api/results. Counts are recomputed server-side from
// the stored adjusted raster; the client's own numbers are never trusted.
func (h *ResultHandler) Create(c *gin.Context) {
	var req CreateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	session, err := h.sessions.GetSessionByID(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !session.Processed {
		c.JSON(http.StatusConflict, gin.H{"error": "session has not been processed"})
		return
	}

	adjusted, err := decodeStoredPNG(session.AdjustedPNG)
	if err != nil {
		respondError(c, err)
		return
	}
	binT1, err := imageprocessing.Threshold(adjusted, req.T1)
	if err != nil {
		respondError(c, err)
		return
	}
	binT2, err := imageprocessing.Threshold(adjusted, req.T2)
	if err != nil {
		respondError(c, err)
		return
	}

	count1 := imageprocessing.CountEqual(binT1, 255)
	count2 := imageprocessing.CountEqual(binT2, 255)
	diff := count1 - count2
	var ratio float64
	if count1 != 0 {
		ratio = float64(diff) / float64(count1) * 100
	}

	row := &database.ResultRow{
		SessionID:  session.ID,
		Filename:   session.Filename,
		Threshold1: req.T1,
		Threshold2: req.T2,
		Count1:     count1,
		Count2:     count2,
		DiffCount:  diff,
		Ratio:      ratio,
	}
	if err := h.results.CreateResult(row); err != nil {
		respondError(c, err)
		return
	}

	logging.InfoWithComponent(logging.ComponentResults, "result recorded",
		"result_id", row.ID, "session_id", session.ID,
		"t1", req.T1, "t2", req.T2, "count_1", count1, "count_2", count2)

	c.JSON(http.StatusCreated, gin.H{"result": row})
}

// List handles GET /api/results
func (h *ResultHandler) List(c *gin.Context) {
	rows, err := h.results.GetAllResults()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rows})
}

// Delete handles DELETE /api/results/:id
func (h *ResultHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result id"})
		return
	}
	if err := h.results.DeleteResult(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// DeleteAll handles DELETE /api/results
func (h *ResultHandler) DeleteAll(c *gin.Context) {
	if err := h.results.DeleteAllResults(); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export handles GET /api/results/export, serving the table as a CSV
// download.
func (h *ResultHandler) Export(c *gin.Context) {
	rows, err := h.results.GetAllResults()
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := export.BuildCSV(rows)
	if err != nil {
		respondError(c, err)
		return
	}

	logging.InfoWithComponent(logging.ComponentExport, "results exported", "rows", len(rows))

	filename := fmt.Sprintf("results_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
