package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okabelab/graymeter/internal/config"
	"github.com/okabelab/graymeter/internal/database"
	"github.com/okabelab/graymeter/internal/imageprocessing"
	"github.com/okabelab/graymeter/internal/version"
	"gorm.io/gorm"
)

// ConfigHandler returns service defaults for the frontend
func ConfigHandler(settings config.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"default_kernel_size":  settings.DefaultKernelSize,
			"kernel_presets":       settings.KernelPresets,
			"default_threshold_t1": settings.DefaultThreshold1,
			"default_threshold_t2": settings.DefaultThreshold2,
			"preview_max_dim":      settings.PreviewMaxDim,
			"max_upload_bytes":     settings.MaxUploadBytes,
		})
	}
}

// VersionHandler returns build metadata
func VersionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// HealthHandler reports process and database liveness
func HealthHandler(c *gin.Context) {
	sqlDB, err := database.GetDB().DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pngDataURI wraps an encoded PNG for inline display
func pngDataURI(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

// respondError maps domain errors onto HTTP statuses. Contract violations
// from the pixel core are client errors; unknown rows are 404.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, imageprocessing.ErrBadKernel),
		errors.Is(err, imageprocessing.ErrBadCutoff),
		errors.Is(err, imageprocessing.ErrBadCrop),
		errors.Is(err, imageprocessing.ErrBadDimensions),
		errors.Is(err, imageprocessing.ErrEmptyHistogram):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
