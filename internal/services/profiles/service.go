// Package profiles manages staff profiles and the default-profile rules.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/store"
	"github.com/xelth-com/loadboard/internal/utils"
)

const (
	DefaultName  = "Default"
	DefaultColor = "#3B82F6"
)

var (
	ErrInvalidProfile = errors.New("invalid profile")
	ErrLastProfile    = errors.New("cannot delete the only profile")
)

// Store persists profiles in creation order
type Store interface {
	List(ctx context.Context) ([]models.Profile, error)
	Get(ctx context.Context, id string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
	Update(ctx context.Context, p *models.Profile) error
	ClearDefault(ctx context.Context, keepID string) error
	Delete(ctx context.Context, id string) error
}

// Update is a partial profile change; nil fields are left alone
type Update struct {
	Name      *string `json:"name"`
	Color     *string `json:"color"`
	IsDefault *bool   `json:"isDefault"`
}

type Service struct {
	store    Store
	validate *validator.Validate
}

func NewService(s Store) *Service {
	return &Service{store: s, validate: utils.NewValidator()}
}

// List returns every profile, creating the default one first if none exist
func (s *Service) List(ctx context.Context) ([]models.Profile, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(list) > 0 {
		return list, nil
	}

	def := &models.Profile{Name: DefaultName, Color: DefaultColor, IsDefault: true}
	if err := s.store.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to create default profile: %w", err)
	}
	log.Printf("🆕 Created default profile %s", def.ID)
	return []models.Profile{*def}, nil
}

// Create adds a profile. A default profile takes the flag from all others.
func (s *Service) Create(ctx context.Context, p *models.Profile) error {
	p.ID = ""
	p.Name = strings.TrimSpace(p.Name)
	if err := s.check(p); err != nil {
		return err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	if p.IsDefault {
		return s.store.ClearDefault(ctx, p.ID)
	}
	return nil
}

// Update applies a partial change
func (s *Service) Update(ctx context.Context, id string, u Update) (*models.Profile, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Color != nil {
		p.Color = *u.Color
	}
	if u.IsDefault != nil {
		p.IsDefault = *u.IsDefault
	}
	if err := s.check(p); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	if p.IsDefault {
		if err := s.store.ClearDefault(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("failed to clear other defaults: %w", err)
		}
	}
	return p, nil
}

// Delete removes a profile. The only profile cannot be deleted, and deleting the
// default one promotes the first remaining profile.
func (s *Service) Delete(ctx context.Context, id string) error {
	list, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	var target *models.Profile
	var next *models.Profile
	for i := range list {
		if list[i].ID == id {
			target = &list[i]
		} else if next == nil {
			next = &list[i]
		}
	}
	if target == nil {
		return store.ErrNotFound
	}
	if next == nil {
		return ErrLastProfile
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if target.IsDefault {
		next.IsDefault = true
		if err := s.store.Update(ctx, next); err != nil {
			return fmt.Errorf("failed to promote %s to default: %w", next.ID, err)
		}
		log.Printf("🔄 Profile %s is now the default", next.Name)
	}
	return nil
}

// Current picks the active profile: the remembered one if it still exists, else the
// default, else the first
func (s *Service) Current(ctx context.Context, rememberedID string) (*models.Profile, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if rememberedID != "" {
		for i := range list {
			if list[i].ID == rememberedID {
				return &list[i], nil
			}
		}
	}
	for i := range list {
		if list[i].IsDefault {
			return &list[i], nil
		}
	}
	return &list[0], nil
}

func (s *Service) check(p *models.Profile) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}
