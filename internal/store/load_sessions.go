package store

import (
	"context"
	"fmt"

	"github.com/xelth-com/loadboard/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionFilter selects load sessions by exact match. An empty UserID matches only
// sessions without an owner.
type SessionFilter struct {
	Destination string
	Time        string
	UserID      string
}

// LoadSessions is the load_sessions table
type LoadSessions struct {
	db *gorm.DB
}

func NewLoadSessions(db *gorm.DB) *LoadSessions {
	return &LoadSessions{db: db}
}

// Get returns one session or ErrNotFound
func (s *LoadSessions) Get(ctx context.Context, id string) (*models.LoadSession, error) {
	var session models.LoadSession
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// Exists checks for the session without loading its progress
func (s *LoadSessions) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.LoadSession{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Find returns matching sessions, newest first
func (s *LoadSessions) Find(ctx context.Context, f SessionFilter) ([]models.LoadSession, error) {
	q := s.db.WithContext(ctx).Where("destination = ? AND time = ?", f.Destination, f.Time)
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	} else {
		q = q.Where("user_id IS NULL")
	}
	var sessions []models.LoadSession
	if err := q.Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// List returns every session, newest first
func (s *LoadSessions) List(ctx context.Context) ([]models.LoadSession, error) {
	var sessions []models.LoadSession
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Create inserts a session and fills in its id and timestamps
func (s *LoadSessions) Create(ctx context.Context, session *models.LoadSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create load session: %w", err)
	}
	return nil
}

// SaveProgress overwrites the progress of a session. Last writer wins.
// A nil userID leaves the owner as it is.
func (s *LoadSessions) SaveProgress(ctx context.Context, id string, progress map[string]interface{}, userID *string) error {
	changes := map[string]interface{}{"progress": datatypes.JSONMap(progress)}
	if userID != nil {
		changes["user_id"] = *userID
	}
	res := s.db.WithContext(ctx).Model(&models.LoadSession{}).
		Where("id = ?", id).
		Updates(changes)
	if res.Error != nil {
		return fmt.Errorf("failed to save progress: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session
func (s *LoadSessions) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LoadSession{}).Error
}
