// Package session keeps one authoritative load session per (destination, time, profile)
// and persists progress to it.
package session

import (
	"context"
	"errors"

	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/store"
)

var (
	// ErrResolution means the store could not be reached while finding or creating a session
	ErrResolution = errors.New("failed to resolve load session")
	// ErrPersistence means a progress write failed after every retry
	ErrPersistence = errors.New("failed to save progress")
	// ErrStaleSession means a remembered session id no longer exists
	ErrStaleSession = errors.New("load session no longer exists")
)

// Store is the persistence the session package needs. Get and SaveProgress
// return store.ErrNotFound for a missing session. Find with an empty UserID matches
// only sessions without an owner, and SaveProgress with a nil userID keeps the owner.
type Store interface {
	Get(ctx context.Context, id string) (*models.LoadSession, error)
	Exists(ctx context.Context, id string) (bool, error)
	Find(ctx context.Context, f store.SessionFilter) ([]models.LoadSession, error)
	List(ctx context.Context) ([]models.LoadSession, error)
	Create(ctx context.Context, s *models.LoadSession) error
	SaveProgress(ctx context.Context, id string, progress map[string]interface{}, userID *string) error
	Delete(ctx context.Context, id string) error
}

// Key scopes a load session. ProfileID is empty when no profile is active.
type Key struct {
	Destination string
	Time        string
	ProfileID   string
}

// KeyFor builds the session key of an order for the active profile
func KeyFor(order models.Order, profileID string) Key {
	return Key{Destination: order.Destination, Time: order.Time, ProfileID: profileID}
}

func (k Key) filter() store.SessionFilter {
	return store.SessionFilter{Destination: k.Destination, Time: k.Time, UserID: k.ProfileID}
}

func (k Key) userID() *string {
	if k.ProfileID == "" {
		return nil
	}
	id := k.ProfileID
	return &id
}
