package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResultService handles result row database operations
type ResultService struct {
	db *gorm.DB
}

// NewResultService creates a new result service
func NewResultService(db *gorm.DB) *ResultService {
	return &ResultService{db: db}
}

// CreateResult stores one measured row
func (rs *ResultService) CreateResult(row *ResultRow) error {
	return rs.db.Create(row).Error
}

// GetAllResults returns all result rows, oldest first
func (rs *ResultService) GetAllResults() ([]ResultRow, error) {
	var rows []ResultRow
	err := rs.db.Order("created_at ASC").Find(&rows).Error
	return rows, err
}

// GetResultsBySessionID returns the rows recorded for one session
func (rs *ResultService) GetResultsBySessionID(sessionID uuid.UUID) ([]ResultRow, error) {
	var rows []ResultRow
	err := rs.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

// DeleteResult deletes a single result row
func (rs *ResultService) DeleteResult(resultID uuid.UUID) error {
	result := rs.db.Delete(&ResultRow{}, "id = ?", resultID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAllResults clears the result table
func (rs *ResultService) DeleteAllResults() error {
	return rs.db.Where("1 = 1").Delete(&ResultRow{}).Error
}
