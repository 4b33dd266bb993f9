package store

import (
	"context"
	"errors"

	"github.com/xelth-com/loadboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientStates remembers each client's place in the live loading view
type ClientStates struct {
	db *gorm.DB
}

func NewClientStates(db *gorm.DB) *ClientStates {
	return &ClientStates{db: db}
}

// Load returns the remembered state; ok is false when nothing is stored
func (c *ClientStates) Load(ctx context.Context, clientID string) (models.LiveLoadingState, bool, error) {
	var state models.LiveLoadingState
	err := c.db.WithContext(ctx).Where("client_id = ?", clientID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LiveLoadingState{}, false, nil
	}
	if err != nil {
		return models.LiveLoadingState{}, false, err
	}
	return state, true, nil
}

// Save upserts the state for its client
func (c *ClientStates) Save(ctx context.Context, state models.LiveLoadingState) error {
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"order_id", "line_id", "session_id", "profile_id", "updated_at"}),
	}).Create(&state).Error
}

func (c *ClientStates) Clear(ctx context.Context, clientID string) error {
	return c.db.WithContext(ctx).Where("client_id = ?", clientID).Delete(&models.LiveLoadingState{}).Error
}

// SessionIDs returns every remembered session id
func (c *ClientStates) SessionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := c.db.WithContext(ctx).Model(&models.LiveLoadingState{}).
		Where("session_id <> ''").
		Pluck("session_id", &ids).Error
	return ids, err
}
