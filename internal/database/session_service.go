package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionService handles image session database operations
type SessionService struct {
	db *gorm.DB
}

// NewSessionService creates a new session service
func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// CreateSession stores a freshly uploaded image
func (s *SessionService) CreateSession(filename string, width, height int, originalPNG []byte) (*ImageSession, error) {
	session := &ImageSession{
		Filename:    filename,
		Width:       width,
		Height:      height,
		OriginalPNG: originalPNG,
	}

	if err := s.db.Create(session).Error; err != nil {
		return nil, err
	}

	return session, nil
}

// GetSessionByID returns a session by its ID
func (s *SessionService) GetSessionByID(sessionID uuid.UUID) (*ImageSession, error) {
	var session ImageSession
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession persists changes to a session
func (s *SessionService) UpdateSession(session *ImageSession) error {
	return s.db.Save(session).Error
}

// DeleteSession deletes a session and its result rows
func (s *SessionService) DeleteSession(sessionID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ResultRow{}, "session_id = ?", sessionID).Error; err != nil {
			return err
		}
		return tx.Delete(&ImageSession{}, "id = ?", sessionID).Error
	})
}

// DeleteSessionsOlderThan removes sessions not updated since the cutoff,
// together with their result rows. Returns the number of sessions removed.
func (s *SessionService) DeleteSessionsOlderThan(cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var stale []ImageSession
		if err := tx.Select("id").Where("updated_at < ?", cutoff).Find(&stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(stale))
		for i, session := range stale {
			ids[i] = session.ID
		}

		if err := tx.Delete(&ResultRow{}, "session_id IN ?", ids).Error; err != nil {
			return err
		}
		result := tx.Delete(&ImageSession{}, "id IN ?", ids)
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}
