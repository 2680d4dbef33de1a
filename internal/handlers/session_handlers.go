package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"path/filepath"

	// Decoders for the upload formats accepted by the service.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/okabelab/graymeter/internal/config"
	"github.com/okabelab/graymeter/internal/database"
	"github.com/okabelab/graymeter/internal/imageprocessing"
	"github.com/okabelab/graymeter/internal/logging"
	"gorm.io/datatypes"
)

// SessionHandler serves the image session endpoints
type SessionHandler struct {
	sessions *database.SessionService
	settings config.Settings
}

// NewSessionHandler creates a session handler backed by the given service
func NewSessionHandler(sessions *database.SessionService, settings config.Settings) *SessionHandler {
	return &SessionHandler{sessions: sessions, settings: settings}
}

// Upload handles POST /api/sessions. It accepts a multipart image upload,
// converts it to grayscale and stores it as a new session.
func (h *SessionHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported or corrupt image: %v", err)})
		return
	}

	raster := imageprocessing.FromImage(img)
	originalPNG, err := imageprocessing.EncodeGrayPNG(raster)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := filepath.Base(fileHeader.Filename)
	session, err := h.sessions.CreateSession(filename, raster.Width, raster.Height, originalPNG)
	if err != nil {
		respondError(c, err)
		return
	}

	logging.InfoWithComponent(logging.ComponentUpload, "image uploaded",
		"session_id", session.ID, "filename", filename, "format", format,
		"width", raster.Width, "height", raster.Height)

	preview, err := imageprocessing.EncodeGrayPNG(imageprocessing.Thumbnail(raster, h.settings.PreviewMaxDim))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": session,
		"preview": pngDataURI(preview),
	})
}

// Get handles GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// ProcessRequest selects the crop rectangle and median kernel for a run
type ProcessRequest struct {
	X          int `json:"x" binding:"min=0"`
	Y          int `json:"y" binding:"min=0"`
	Width      int `json:"width" binding:"required,min=1"`
	Height     int `json:"height" binding:"required,min=1"`
	KernelSize int `json:"kernel_size" binding:"required,min=1"`
}

// Process handles POST /api/sessions/:id/process. It crops the stored
// grayscale image, runs the full pipeline and persists the adjusted raster
// so later threshold sweeps skip the filter stage.
func (h *SessionHandler) Process(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	original, err := decodeStoredPNG(session.OriginalPNG)
	if err != nil {
		respondError(c, err)
		return
	}

	cropped, err := original.Crop(imageprocessing.CropRect{
		X: req.X, Y: req.Y, Width: req.Width, Height: req.Height,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := imageprocessing.Run(cropped, req.KernelSize,
		h.settings.DefaultThreshold1, h.settings.DefaultThreshold2)
	if err != nil {
		respondError(c, err)
		return
	}

	adjustedPNG, err := imageprocessing.EncodeGrayPNG(result.Adjusted)
	if err != nil {
		respondError(c, err)
		return
	}
	filteredPNG, err := imageprocessing.EncodeGrayPNG(result.Filtered)
	if err != nil {
		respondError(c, err)
		return
	}

	session.CropX = req.X
	session.CropY = req.Y
	session.CropWidth = req.Width
	session.CropHeight = req.Height
	session.KernelSize = req.KernelSize
	session.AdjustedPNG = adjustedPNG
	session.RawHistogram = histogramJSON(result.RawHistogram)
	session.Histogram = histogramJSON(result.Histogram)
	session.Skewed = result.Analysis.Skewed
	session.MinVal = int(result.Analysis.MinVal)
	session.MaxVal = int(result.Analysis.MaxVal)
	session.Processed = true
	if err := h.sessions.UpdateSession(session); err != nil {
		respondError(c, err)
		return
	}

	logging.InfoWithComponent(logging.ComponentPipeline, "session processed",
		"session_id", session.ID, "kernel_size", req.KernelSize,
		"skewed", result.Analysis.Skewed, "level_adjusted", result.LevelAdjusted)

	c.JSON(http.StatusOK, gin.H{
		"session":        session,
		"filtered":       pngDataURI(filteredPNG),
		"adjusted":       pngDataURI(adjustedPNG),
		"raw_histogram":  result.RawHistogram.Bins(),
		"histogram":      result.Histogram.Bins(),
		"analysis":       result.Analysis,
		"level_adjusted": result.LevelAdjusted,
	})
}

// ThresholdRequest selects the two binarization cutoffs
type ThresholdRequest struct {
	T1 int `json:"t1" binding:"min=0,max=255"`
	T2 int `json:"t2" binding:"min=0,max=255"`
}

// Thresholds handles POST /api/sessions/:id/thresholds. It binarizes the
// stored adjusted raster at both cutoffs and reports counts and the diff
// overlay. The session must have been processed first.
func (h *SessionHandler) Thresholds(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}
	if !session.Processed {
		c.JSON(http.StatusConflict, gin.H{"error": "session has not been processed"})
		return
	}

	var req ThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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
	diffMask, err := imageprocessing.Diff(binT1, binT2)
	if err != nil {
		respondError(c, err)
		return
	}

	binT1PNG, err := imageprocessing.EncodeBinaryPNG(binT1)
	if err != nil {
		respondError(c, err)
		return
	}
	binT2PNG, err := imageprocessing.EncodeBinaryPNG(binT2)
	if err != nil {
		respondError(c, err)
		return
	}
	diffPNG, err := imageprocessing.EncodeDiffPNG(adjusted, binT1, binT2)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"t1":         req.T1,
		"t2":         req.T2,
		"count_1":    imageprocessing.CountEqual(binT1, 255),
		"count_2":    imageprocessing.CountEqual(binT2, 255),
		"binary_t1":  pngDataURI(binT1PNG),
		"binary_t2":  pngDataURI(binT2PNG),
		"diff":       pngDataURI(diffPNG),
		"diff_count": imageprocessing.CountEqual(diffMask, 255),
	})
}

// loadSession resolves the :id parameter to a stored session
func (h *SessionHandler) loadSession(c *gin.Context) (*database.ImageSession, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return nil, false
	}
	session, err := h.sessions.GetSessionByID(id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return session, true
}

// decodeStoredPNG restores a grayscale raster from a stored PNG blob
func decodeStoredPNG(data []byte) (*imageprocessing.Raster, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored image: %w", err)
	}
	return imageprocessing.FromImage(img), nil
}

func histogramJSON(h imageprocessing.Histogram) datatypes.JSON {
	data, _ := json.Marshal(h.Bins())
	return datatypes.JSON(data)
}
