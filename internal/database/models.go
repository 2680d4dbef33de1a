package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImageSession represents one uploaded image and, once processed, the
// pipeline outputs derived from it. The adjusted grayscale raster is stored
// so threshold sweeps and result rows can be recomputed without re-running
// the filter stage.
type ImageSession struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename string    `gorm:"not null" json:"filename"`
	Width    int       `gorm:"not null" json:"width"`
	Height   int       `gorm:"not null" json:"height"`

	// Original grayscale raster, PNG-encoded.
	OriginalPNG []byte `gorm:"type:blob" json:"-"`

	// Processing parameters from the last process call.
	CropX      int  `json:"crop_x"`
	CropY      int  `json:"crop_y"`
	CropWidth  int  `json:"crop_width"`
	CropHeight int  `json:"crop_height"`
	KernelSize int  `json:"kernel_size"`
	Processed  bool `gorm:"default:false" json:"processed"`

	// Pipeline outputs, populated when Processed is true.
	AdjustedPNG  []byte         `gorm:"type:blob" json:"-"`
	RawHistogram datatypes.JSON `json:"raw_histogram,omitempty"`
	Histogram    datatypes.JSON `json:"histogram,omitempty"`
	Skewed       bool           `json:"skewed"`
	MinVal       int            `json:"min_val"`
	MaxVal       int            `json:"max_val"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID if not already set
func (s *ImageSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ResultRow is one saved measurement: white-pixel counts for a session's
// adjusted raster at two cutoffs, plus the derived diff count and ratio.
type ResultRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Filename  string    `gorm:"not null" json:"filename"`

	Threshold1 int     `gorm:"not null" json:"threshold_1"`
	Threshold2 int     `gorm:"not null" json:"threshold_2"`
	Count1     int     `gorm:"not null" json:"count_1"`
	Count2     int     `gorm:"not null" json:"count_2"`
	DiffCount  int     `gorm:"not null" json:"diff_count"`
	Ratio      float64 `json:"ratio"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Association
	Session ImageSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *ResultRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// GetAllModels returns all models for auto-migration
func GetAllModels() []interface{} {
	return []interface{}{
		&ImageSession{},
		&ResultRow{},
	}
}
