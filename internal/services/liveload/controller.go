package liveload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/xelth-com/loadboard/internal/catalog"
	"github.com/xelth-com/loadboard/internal/loading"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/session"
	"github.com/xelth-com/loadboard/internal/store"
	"github.com/xelth-com/loadboard/internal/websocket"
)

const memoryTimeout = 5 * time.Second

// SaveStatus is the persistence state shown on the loading screen
type SaveStatus struct {
	State       session.SaveState `json:"state"`
	SessionID   string            `json:"sessionId,omitempty"`
	Attempt     int               `json:"attempt,omitempty"`
	MaxAttempts int               `json:"maxAttempts,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// LineView is a line status with its display name
type LineView struct {
	loading.LineStatus
	Name     string `json:"name"`
	Selected bool   `json:"selected,omitempty"`
}

// View is a snapshot of one client's loading screen
type View struct {
	ClientID    string     `json:"clientId"`
	ProfileID   string     `json:"profileId,omitempty"`
	OrderID     string     `json:"orderId,omitempty"`
	Destination string     `json:"destination,omitempty"`
	Time        string     `json:"time,omitempty"`
	SessionID   string     `json:"sessionId,omitempty"`
	LineID      string     `json:"lineId,omitempty"`
	Lines       []LineView `json:"lines"`
	Done        bool       `json:"done"`
	Save        SaveStatus `json:"save"`
}

// Controller drives the loading screen of one client. Methods are safe for
// concurrent use; actions of one client are serialized.
type Controller struct {
	m        *Manager
	clientID string

	mu        sync.Mutex
	profileID string
	order     *models.Order
	machine   *loading.Machine
	sessionID string // empty after a persistence failure until the next action re-resolves
	lineID    string
	saver     *session.Saver
	saverFor  string
	save      SaveStatus
	closed    bool
}

func newController(m *Manager, clientID string) *Controller {
	return &Controller{m: m, clientID: clientID, save: SaveStatus{State: session.SaveIdle}}
}

// Open restores the remembered order, line and session if the order still exists
func (c *Controller) Open(ctx context.Context, profileID string) (View, error) {
	st, remembered, err := c.m.memory.Load(ctx, c.clientID)
	if err != nil {
		log.Printf("⚠️ Loading %s: could not read remembered state: %v", c.clientID, err)
		remembered = false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if profileID == "" && remembered {
		profileID = st.ProfileID
	}
	if c.machine != nil && c.profileID == profileID {
		return c.viewLocked(), nil
	}
	c.profileID = profileID

	if !remembered || st.OrderID == "" {
		return c.viewLocked(), nil
	}

	order, err := c.m.orders.Get(ctx, st.OrderID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("🧹 Loading %s: remembered order %s is gone", c.clientID, st.OrderID)
		c.forget(ctx)
		return c.viewLocked(), nil
	}
	if err != nil {
		return View{}, err
	}

	rememberedSession := ""
	if st.ProfileID == profileID {
		rememberedSession = st.SessionID
	}
	if err := c.selectOrderLocked(ctx, order, rememberedSession); err != nil {
		return View{}, err
	}
	if _, ok := c.machine.Line(st.LineID); ok {
		c.lineID = st.LineID
	}
	c.rememberLocked(ctx)
	return c.viewLocked(), nil
}

// SelectOrder loads an order and the progress of its session. A non-empty profileID
// becomes the active profile; an empty one keeps the profile chosen at Open.
func (c *Controller) SelectOrder(ctx context.Context, orderID, profileID string) (View, error) {
	order, err := c.m.orders.Get(ctx, orderID)
	if err != nil {
		return View{}, err
	}

	c.mu.Lock()
	if profileID == "" {
		profileID = c.profileID
	}
	if c.machine != nil && c.order.ID == order.ID && c.profileID == profileID && c.sessionID != "" {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, nil
	}
	c.profileID = profileID
	if err := c.selectOrderLocked(ctx, order, ""); err != nil {
		c.mu.Unlock()
		return View{}, err
	}
	c.rememberLocked(ctx)
	v := c.viewLocked()
	c.mu.Unlock()

	c.m.notify(c.clientID, websocket.Message{Type: MsgState, Payload: v})
	return v, nil
}

// SelectLine focuses a line of the loaded order
func (c *Controller) SelectLine(ctx context.Context, lineID string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine == nil {
		return View{}, ErrNoOrder
	}
	if _, ok := c.machine.Line(lineID); !ok {
		return View{}, fmt.Errorf("%w: %s", loading.ErrUnknownLine, lineID)
	}
	c.lineID = lineID
	c.rememberLocked(ctx)
	return c.viewLocked(), nil
}

// ApplyDelta adds signed display units to the selected line
func (c *Controller) ApplyDelta(ctx context.Context, units int) (View, error) {
	return c.mutate(ctx, units != 0, func(lineID string) error {
		_, err := c.machine.ApplyDelta(lineID, units)
		return err
	})
}

// ToggleComplete flips the completion flag of the selected line
func (c *Controller) ToggleComplete(ctx context.Context) (View, error) {
	return c.mutate(ctx, true, func(lineID string) error {
		_, err := c.machine.ToggleComplete(lineID)
		return err
	})
}

// ResetLine clears the selected line
func (c *Controller) ResetLine(ctx context.Context) (View, error) {
	return c.mutate(ctx, true, func(lineID string) error {
		_, err := c.machine.ResetLine(lineID)
		return err
	})
}

// Lines returns the status of every line of the loaded order
func (c *Controller) Lines() ([]LineView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine == nil {
		return nil, ErrNoOrder
	}
	return c.linesLocked(), nil
}

// View returns the current screen snapshot
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// SessionID is the session progress is written to, "" while invalidated
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Controller) mutate(ctx context.Context, changes bool, apply func(lineID string) error) (View, error) {
	c.mu.Lock()
	if c.machine == nil {
		c.mu.Unlock()
		return View{}, ErrNoOrder
	}
	if c.lineID == "" {
		c.mu.Unlock()
		return View{}, ErrNoLine
	}
	if !changes {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, nil
	}

	if c.sessionID == "" {
		if err := c.reresolveLocked(ctx); err != nil {
			c.mu.Unlock()
			return View{}, err
		}
	}

	if err := apply(c.lineID); err != nil {
		c.mu.Unlock()
		return View{}, err
	}
	c.scheduleLocked()
	v := c.viewLocked()
	c.mu.Unlock()

	c.m.notify(c.clientID, websocket.Message{Type: MsgState, Payload: v})
	return v, nil
}

func (c *Controller) selectOrderLocked(ctx context.Context, order *models.Order, rememberedSession string) error {
	key := session.KeyFor(*order, c.profileID)
	sess, err := c.m.resolver.ResolveOrCreate(ctx, key, rememberedSession)
	if err != nil {
		return err
	}
	if !belongsTo(sess, key) {
		// the remembered id points at another order's session
		if sess, err = c.m.resolver.ResolveOrCreate(ctx, key, ""); err != nil {
			return err
		}
	}

	machine, err := loading.NewMachine(*order, c.m.catalog.Index(), loading.ParseProgress(sess.Progress))
	if err != nil {
		return err
	}

	c.order = order
	c.machine = machine
	c.lineID = ""
	c.bindSessionLocked(sess.ID)
	c.save = SaveStatus{State: session.SaveIdle}
	log.Printf("✅ Loading %s: order %s (%s %s) on session %s", c.clientID, order.ID, order.Destination, order.Time, sess.ID)
	return nil
}

// reresolveLocked finds or creates a session again after the previous one was dropped.
// Local progress is kept and written to the new session.
func (c *Controller) reresolveLocked(ctx context.Context) error {
	sess, err := c.m.resolver.ResolveOrCreate(ctx, session.KeyFor(*c.order, c.profileID), "")
	if err != nil {
		return err
	}
	log.Printf("🔄 Loading %s: re-resolved session %s", c.clientID, sess.ID)
	c.bindSessionLocked(sess.ID)
	c.rememberLocked(ctx)
	return nil
}

// bindSessionLocked points writes at sessionID. A saver for another session is drained
// in the background: its last snapshot still lands, retries included, and a failure
// is still reported.
func (c *Controller) bindSessionLocked(sessionID string) {
	c.sessionID = sessionID
	c.m.bind(c, sessionID)
	if c.saver != nil && c.saverFor == sessionID {
		return
	}
	if old := c.saver; old != nil {
		go old.Drain()
	}
	var saver *session.Saver
	saver = session.NewSaver(c.m.sessions, c.m.opts.Clock, c.m.opts.Policy, func(ev session.Event) {
		c.onSaveEvent(saver, ev)
	})
	c.saverFor = sessionID
	c.saver = saver
}

// dropSessionLocked forgets the session id so the next action resolves again
func (c *Controller) dropSessionLocked() {
	c.sessionID = ""
	c.m.bind(c, "")
}

func (c *Controller) scheduleLocked() {
	var userID *string
	if c.profileID != "" {
		id := c.profileID
		userID = &id
	}
	c.saver.Schedule(c.sessionID, userID, c.machine.Progress().Flatten())
	c.save = SaveStatus{State: session.SavePending}
}

func (c *Controller) onSaveEvent(saver *session.Saver, ev session.Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if saver != c.saver {
		c.mu.Unlock()
		c.onPreviousSaveEvent(ev)
		return
	}
	if ev.State == session.SaveStale {
		c.recoverStaleLocked(ev.SessionID)
		status := c.save
		c.mu.Unlock()
		c.m.notify(c.clientID, websocket.Message{Type: MsgSaveStatus, Payload: status})
		return
	}

	c.save = SaveStatus{State: ev.State, SessionID: ev.SessionID, Attempt: ev.Attempt, MaxAttempts: ev.MaxAttempts}
	if ev.Err != nil {
		c.save.Error = ev.Err.Error()
	}
	failed := ev.State == session.SaveFailed
	if failed {
		log.Printf("❌ Loading %s: dropping session %s, the next action resolves again", c.clientID, ev.SessionID)
		c.dropSessionLocked()
	}
	status := c.save
	c.mu.Unlock()

	if failed {
		ctx, cancel := context.WithTimeout(context.Background(), memoryTimeout)
		c.forget(ctx)
		cancel()
	}
	c.m.notify(c.clientID, websocket.Message{Type: MsgSaveStatus, Payload: status})
}

// onPreviousSaveEvent reports the outcome of a session the screen already left.
// Only a lost write is worth showing.
func (c *Controller) onPreviousSaveEvent(ev session.Event) {
	if ev.State != session.SaveFailed {
		return
	}
	log.Printf("❌ Loading %s: last changes to previous session %s were not saved", c.clientID, ev.SessionID)
	status := SaveStatus{State: ev.State, SessionID: ev.SessionID, Attempt: ev.Attempt, MaxAttempts: ev.MaxAttempts}
	if ev.Err != nil {
		status.Error = ev.Err.Error()
	}
	c.m.notify(c.clientID, websocket.Message{Type: MsgSaveStatus, Payload: status})
}

// recoverStaleLocked handles a session deleted under the screen: the id is dropped,
// the key is resolved again and the local progress is queued for the new session.
func (c *Controller) recoverStaleLocked(staleID string) {
	c.dropSessionLocked()
	if c.order == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), memoryTimeout)
	defer cancel()
	if err := c.reresolveLocked(ctx); err != nil {
		log.Printf("❌ Loading %s: session %s is gone and resolving again failed: %v", c.clientID, staleID, err)
		c.save = SaveStatus{State: session.SaveFailed, Error: err.Error()}
		return
	}
	c.scheduleLocked()
}

func (c *Controller) rememberLocked(ctx context.Context) {
	if c.order == nil {
		return
	}
	err := c.m.memory.Save(ctx, models.LiveLoadingState{
		ClientID:  c.clientID,
		OrderID:   c.order.ID,
		LineID:    c.lineID,
		SessionID: c.sessionID,
		ProfileID: c.profileID,
	})
	if err != nil {
		log.Printf("⚠️ Loading %s: could not remember state: %v", c.clientID, err)
	}
}

func (c *Controller) forget(ctx context.Context) {
	if err := c.m.memory.Clear(ctx, c.clientID); err != nil {
		log.Printf("⚠️ Loading %s: could not clear remembered state: %v", c.clientID, err)
	}
}

// shutdown stops the controller. Close drops pending writes, stop flushes them first.
func (c *Controller) shutdown() {
	c.mu.Lock()
	c.closed = true
	saver := c.saver
	c.saver = nil
	c.machine = nil
	c.order = nil
	c.dropSessionLocked()
	c.lineID = ""
	c.mu.Unlock()

	if saver != nil {
		saver.Close()
	}
}

func (c *Controller) stop() {
	c.mu.Lock()
	saver := c.saver
	c.closed = true
	c.mu.Unlock()

	if saver != nil {
		saver.Flush()
		saver.Close()
	}
}

func (c *Controller) linesLocked() []LineView {
	idx := c.m.catalog.Index()
	lines := c.machine.Lines()
	out := make([]LineView, len(lines))
	for i, st := range c.machine.Statuses() {
		out[i] = LineView{
			LineStatus: st,
			Name:       catalog.DisplayName(lines[i].Line, idx),
			Selected:   st.LineID == c.lineID,
		}
	}
	return out
}

func (c *Controller) viewLocked() View {
	v := View{
		ClientID:  c.clientID,
		ProfileID: c.profileID,
		SessionID: c.sessionID,
		LineID:    c.lineID,
		Save:      c.save,
		Lines:     []LineView{},
	}
	if c.machine != nil {
		v.OrderID = c.order.ID
		v.Destination = c.order.Destination
		v.Time = c.order.Time
		v.Lines = c.linesLocked()
		v.Done = c.machine.Done()
	}
	return v
}

func belongsTo(s *models.LoadSession, key session.Key) bool {
	owner := ""
	if s.UserID != nil {
		owner = *s.UserID
	}
	return s.Destination == key.Destination && s.Time == key.Time && owner == key.ProfileID
}
