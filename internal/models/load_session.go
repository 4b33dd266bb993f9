package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LoadSession is the durable loading progress for one (destination, time, profile) combination.
// Progress keeps the flat legacy shape: "<lineId>" -> packs, "<lineId>_complete" -> bool.
type LoadSession struct {
	ID          string            `gorm:"primaryKey;type:uuid" json:"id"`
	Destination string            `gorm:"not null;index:idx_load_session_key" json:"destination"`
	Time        string            `gorm:"not null;index:idx_load_session_key" json:"time"`
	UserID      *string           `gorm:"column:user_id;type:uuid;index:idx_load_session_key" json:"userId,omitempty"`
	Progress    datatypes.JSONMap `gorm:"type:jsonb" json:"progress"`
	CreatedAt   time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (LoadSession) TableName() string { return "load_sessions" }

func (s *LoadSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Progress == nil {
		s.Progress = datatypes.JSONMap{}
	}
	return nil
}

// HasProgress reports whether anything was ever recorded on the session
func (s LoadSession) HasProgress() bool {
	return len(s.Progress) > 0
}

// OrderKey is the destination/time pair the session belongs to
func (s LoadSession) OrderKey() string {
	return OrderKey(s.Destination, s.Time)
}

// OwnerKey returns the user id or "none", used to group duplicates
func (s LoadSession) OwnerKey() string {
	if s.UserID == nil || *s.UserID == "" {
		return "none"
	}
	return *s.UserID
}

// LiveLoadingState remembers where a client was in the live loading view,
// so a reload resumes the same order, line and session.
type LiveLoadingState struct {
	ClientID  string    `gorm:"primaryKey" json:"clientId"`
	OrderID   string    `json:"orderId"`
	LineID    string    `json:"lineId"`
	SessionID string    `gorm:"index" json:"sessionId"`
	ProfileID string    `json:"profileId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (LiveLoadingState) TableName() string { return "live_loading_states" }
