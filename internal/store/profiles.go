package store

import (
	"context"

	"github.com/xelth-com/loadboard/internal/models"
	"gorm.io/gorm"
)

// Profiles is the profiles table
type Profiles struct {
	db *gorm.DB
}

func NewProfiles(db *gorm.DB) *Profiles {
	return &Profiles{db: db}
}

func (p *Profiles) List(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := p.db.WithContext(ctx).Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (p *Profiles) Get(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (p *Profiles) Create(ctx context.Context, profile *models.Profile) error {
	return p.db.WithContext(ctx).Create(profile).Error
}

func (p *Profiles) Update(ctx context.Context, profile *models.Profile) error {
	res := p.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profile.ID).
		Select("name", "color", "is_default").
		Updates(profile)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearDefault unsets the default flag on every profile except keepID
func (p *Profiles) ClearDefault(ctx context.Context, keepID string) error {
	return p.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id <> ? AND is_default = ?", keepID, true).
		Update("is_default", false).Error
}

func (p *Profiles) Delete(ctx context.Context, id string) error {
	res := p.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Profile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
