package liveload

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/xelth-com/loadboard/internal/catalog"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/session"
	"github.com/xelth-com/loadboard/internal/store"
	"github.com/xelth-com/loadboard/internal/websocket"
)

type sessionStore struct {
	mu        sync.Mutex
	sessions  map[string]models.LoadSession
	seq       int
	now       time.Time
	creates   int
	finds     int
	saves     int
	failSaves int
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[string]models.LoadSession),
		now:      time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
	}
}

func (f *sessionStore) Get(_ context.Context, id string) (*models.LoadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (f *sessionStore) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[id]
	return ok, nil
}

func (f *sessionStore) Find(_ context.Context, flt store.SessionFilter) ([]models.LoadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
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

func (f *sessionStore) List(_ context.Context) ([]models.LoadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LoadSession
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (f *sessionStore) Create(_ context.Context, s *models.LoadSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.creates++
	f.now = f.now.Add(time.Minute)
	s.ID = "sess-" + strconv.Itoa(f.seq)
	s.CreatedAt = f.now
	f.sessions[s.ID] = *s
	return nil
}

func (f *sessionStore) SaveProgress(_ context.Context, id string, progress map[string]interface{}, userID *string) error {
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

func (f *sessionStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *sessionStore) add(s models.LoadSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
}

func (f *sessionStore) packs(sessionID, lineID string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[sessionID].Progress[lineID]
}

func (f *sessionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

type orderSource struct {
	orders map[string]models.Order
}

func (o *orderSource) Get(_ context.Context, id string) (*models.Order, error) {
	order, ok := o.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &order, nil
}

func (o *orderSource) Keys(context.Context) ([]string, error) {
	var keys []string
	for _, order := range o.orders {
		keys = append(keys, order.Key())
	}
	return keys, nil
}

type staticCatalog struct{ idx *catalog.Index }

func (s staticCatalog) Index() *catalog.Index { return s.idx }

type recorder struct {
	mu   sync.Mutex
	msgs []websocket.Message
}

func (r *recorder) SendToClient(clientID string, msg websocket.Message) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ClientID = clientID
	r.msgs = append(r.msgs, msg)
	return 1
}

func (r *recorder) saveStates() []session.SaveState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []session.SaveState
	for _, m := range r.msgs {
		if st, ok := m.Payload.(SaveStatus); ok && m.Type == MsgSaveStatus {
			out = append(out, st.State)
		}
	}
	return out
}

func (r *recorder) lastSave() (SaveStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.msgs) - 1; i >= 0; i-- {
		if st, ok := r.msgs[i].Payload.(SaveStatus); ok && r.msgs[i].Type == MsgSaveStatus {
			return st, true
		}
	}
	return SaveStatus{}, false
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

func (c *manualClock) AfterFunc(d time.Duration, f func()) session.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

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

// ownerKey mirrors LoadSession.OwnerKey for a filter value
func ownerKey(userID string) string {
	if userID == "" {
		return "none"
	}
	return userID
}
