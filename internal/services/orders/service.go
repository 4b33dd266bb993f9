// Package orders validates and stores delivery orders.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/timeorder"
	"github.com/xelth-com/loadboard/internal/units"
	"github.com/xelth-com/loadboard/internal/utils"
)

// ErrInvalidOrder wraps every validation failure
var ErrInvalidOrder = errors.New("invalid order")

// Store persists orders. Get returns store.ErrNotFound for unknown ids.
type Store interface {
	List(ctx context.Context, profileID string) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store    Store
	validate *validator.Validate
	ordering timeorder.Ordering
}

func NewService(s Store, ordering timeorder.Ordering) *Service {
	return &Service{store: s, validate: utils.NewValidator(), ordering: ordering}
}

// List returns the orders of a profile (all orders for "") in loading order
func (s *Service) List(ctx context.Context, profileID string) ([]models.Order, error) {
	orders, err := s.store.List(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return s.ordering.SortOrders(orders), nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.store.Get(ctx, id)
}

// Create validates and stores a new order under profileID
func (s *Service) Create(ctx context.Context, order *models.Order, profileID string) error {
	normalize(order)
	if profileID != "" {
		order.ProfileID = &profileID
	}
	if err := s.Validate(order); err != nil {
		return err
	}
	order.ID = ""
	return s.store.Create(ctx, order)
}

// Update replaces the editable fields of an existing order
func (s *Service) Update(ctx context.Context, id string, changes *models.Order) (*models.Order, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	normalize(changes)
	existing.Destination = changes.Destination
	existing.Time = changes.Time
	existing.ManifestNumber = changes.ManifestNumber
	existing.TransportCompany = changes.TransportCompany
	existing.TrailerType = changes.TrailerType
	existing.TrailerSize = changes.TrailerSize
	existing.Products = changes.Products

	if err := s.Validate(existing); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Keys returns the destination/time key of every order regardless of profile
func (s *Service) Keys(ctx context.Context) ([]string, error) {
	orders, err := s.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	keys := make([]string, 0, len(orders))
	for _, o := range orders {
		keys = append(keys, o.Key())
	}
	return keys, nil
}

// Validate checks field rules and that every pack count is a whole number >= 0
func (s *Service) Validate(order *models.Order) error {
	if err := s.validate.Struct(order); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidOrder, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	if len(order.Products) == 0 {
		return fmt.Errorf("%w: no products", ErrInvalidOrder)
	}
	for i, line := range order.Products {
		if _, err := units.ParsePacks(line.PacksOrdered); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrInvalidOrder, i+1, err)
		}
	}
	return nil
}

func normalize(order *models.Order) {
	order.Destination = strings.TrimSpace(order.Destination)
	order.Time = strings.TrimSpace(order.Time)
	order.ManifestNumber = strings.TrimSpace(order.ManifestNumber)
	order.TransportCompany = strings.TrimSpace(order.TransportCompany)
	order.TrailerType = strings.TrimSpace(order.TrailerType)
	order.TrailerSize = strings.TrimSpace(order.TrailerSize)
	for i := range order.Products {
		order.Products[i].ProductCode = strings.TrimSpace(order.Products[i].ProductCode)
		order.Products[i].PacksOrdered = strings.TrimSpace(order.Products[i].PacksOrdered)
	}
}
