package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/store"
)

const deleteTimeout = 30 * time.Second

// Resolver finds, creates and garbage-collects load sessions
type Resolver struct {
	store Store
	// async runs best-effort background work; tests replace it to run inline
	async     func(func())
	protected func(ctx context.Context) []string
	wg        sync.WaitGroup
}

func NewResolver(s Store) *Resolver {
	r := &Resolver{store: s}
	r.async = func(f func()) {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			f()
		}()
	}
	return r
}

// Protect sets the source of session ids that duplicate removal must leave alone,
// such as sessions open on other screens.
func (r *Resolver) Protect(ids func(ctx context.Context) []string) {
	r.protected = ids
}

// Wait blocks until background duplicate removal has finished
func (r *Resolver) Wait() {
	r.wg.Wait()
}

// ResolveOrCreate returns the authoritative session for key.
// A remembered id that still exists is reused as is. Otherwise matching sessions are ranked,
// the best one is returned and the rest are deleted in the background. With no match a
// new empty session is created.
func (r *Resolver) ResolveOrCreate(ctx context.Context, key Key, rememberedID string) (*models.LoadSession, error) {
	if rememberedID != "" {
		s, err := r.store.Get(ctx, rememberedID)
		switch {
		case err == nil:
			return s, nil
		case errors.Is(err, store.ErrNotFound):
			log.Printf("🧹 Remembered load session %s is gone, resolving again", rememberedID)
		default:
			return nil, fmt.Errorf("%w: %v", ErrResolution, err)
		}
	}

	found, err := r.store.Find(ctx, key.filter())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}

	if keep, drop, ok := Rank(found, ""); ok {
		if len(drop) > 0 {
			r.async(func() { r.deleteAll(drop, "duplicate") })
		}
		return &keep, nil
	}

	created := &models.LoadSession{
		Destination: key.Destination,
		Time:        key.Time,
		UserID:      key.userID(),
		Progress:    map[string]interface{}{},
	}
	if err := r.store.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	log.Printf("🆕 Created load session %s for %s %s", created.ID, key.Destination, key.Time)
	return created, nil
}

// CleanupStale deletes sessions whose destination/time matches no known order, then
// collapses duplicates per (destination, time, owner). Protected ids are never deleted.
func (r *Resolver) CleanupStale(ctx context.Context, validOrderKeys []string, protected ...string) (int, error) {
	sessions, err := r.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list load sessions: %w", err)
	}

	valid := make(map[string]bool, len(validOrderKeys))
	for _, k := range validOrderKeys {
		valid[k] = true
	}
	isProtected := make(map[string]bool, len(protected))
	for _, id := range protected {
		if id != "" {
			isProtected[id] = true
		}
	}

	doomed := make(map[string]bool)
	for _, s := range sessions {
		if !valid[s.OrderKey()] && !isProtected[s.ID] {
			doomed[s.ID] = true
		}
	}

	for _, group := range duplicateGroups(sessions) {
		if len(group) < 2 {
			continue
		}
		_, drop, _ := Rank(group, protectedIn(group, isProtected))
		for _, s := range drop {
			if !isProtected[s.ID] {
				doomed[s.ID] = true
			}
		}
	}

	deleted := 0
	for _, s := range sessions {
		if !doomed[s.ID] {
			continue
		}
		if err := r.store.Delete(ctx, s.ID); err != nil {
			log.Printf("⚠️ Failed to delete load session %s: %v", s.ID, err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		log.Printf("🧹 Removed %d stale or duplicate load sessions", deleted)
	}
	return deleted, nil
}

func (r *Resolver) deleteAll(sessions []models.LoadSession, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	inUse := make(map[string]bool)
	if r.protected != nil {
		for _, id := range r.protected(ctx) {
			inUse[id] = true
		}
	}

	for _, s := range sessions {
		if inUse[s.ID] {
			log.Printf("⚠️ Keeping %s load session %s, it is in use", reason, s.ID)
			continue
		}
		if err := r.store.Delete(ctx, s.ID); err != nil {
			log.Printf("⚠️ Failed to delete %s load session %s: %v", reason, s.ID, err)
			continue
		}
		log.Printf("🧹 Deleted %s load session %s", reason, s.ID)
	}
}

func protectedIn(group []models.LoadSession, isProtected map[string]bool) string {
	for _, s := range group {
		if isProtected[s.ID] {
			return s.ID
		}
	}
	return ""
}
