package session

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/store"
)

type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]models.LoadSession
	seq      int
	now      time.Time

	creates    int
	saves      int
	failSaves  int // number of upcoming SaveProgress calls that fail
	failFind   bool
	deletedIDs []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]models.LoadSession),
		now:      time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) add(s models.LoadSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
}

func (f *fakeStore) Get(_ context.Context, id string) (*models.LoadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (f *fakeStore) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[id]
	return ok, nil
}

func (f *fakeStore) Find(_ context.Context, flt store.SessionFilter) ([]models.LoadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFind {
		return nil, errors.New("connection refused")
	}
	var out []models.LoadSession
	for _, s := range f.sessions {
		if s.Destination != flt.Destination || s.Time != flt.Time {
			continue
		}
		if s.OwnerKey() != ownerKey(flt.UserID) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) List(_ context.Context) ([]models.LoadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LoadSession
	for _, s := range f.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, s *models.LoadSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.creates++
	f.now = f.now.Add(time.Minute)
	s.ID = "created-" + strconv.Itoa(f.seq)
	s.CreatedAt = f.now
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeStore) SaveProgress(_ context.Context, id string, progress map[string]interface{}, userID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.failSaves > 0 {
		f.failSaves--
		return errors.New("write timeout")
	}
	s, ok := f.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	s.Progress = progress
	if userID != nil {
		s.UserID = userID
	}
	f.sessions[id] = s
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeStore) progressOf(id string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[id].Progress
}

// manualClock fires timers only when the test advances it
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

// Advance moves time forward, running due timers in order
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.f()
	}
}

// armed counts timers that have not fired or been stopped
func (c *manualClock) armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// ownerKey mirrors LoadSession.OwnerKey for a filter value
func ownerKey(userID string) string {
	if userID == "" {
		return "none"
	}
	return userID
}
