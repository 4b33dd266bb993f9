// Package liveload runs the live loading screen: one controller per client that
// resolves the load session, applies loader actions and persists progress.
package liveload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/xelth-com/loadboard/internal/catalog"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/session"
	"github.com/xelth-com/loadboard/internal/websocket"
)

var (
	ErrNoOrder = errors.New("no order selected")
	ErrNoLine  = errors.New("no line selected")
)

// Message types pushed to clients following a loading screen
const (
	MsgState      = "LOADING_STATE"
	MsgSaveStatus = "SAVE_STATUS"
)

// Orders is the order lookup the loading screen needs
type Orders interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	Keys(ctx context.Context) ([]string, error)
}

// Catalog returns the current catalog index
type Catalog interface {
	Index() *catalog.Index
}

// Notifier pushes messages to the connections following a client
type Notifier interface {
	SendToClient(clientID string, msg websocket.Message) int
}

// sessionLister is implemented by memories that can enumerate remembered sessions
type sessionLister interface {
	SessionIDs(ctx context.Context) ([]string, error)
}

// Options tune persistence timing. Zero values use session.DefaultPolicy and the system clock.
type Options struct {
	Policy session.Policy
	Clock  session.Clock
}

// Manager owns one Controller per client id
type Manager struct {
	orders   Orders
	catalog  Catalog
	sessions session.Store
	resolver *session.Resolver
	memory   session.Memory
	notifier Notifier
	opts     Options

	mu          sync.Mutex
	controllers map[string]*Controller
	bound       map[*Controller]string // session each controller writes to
}

func NewManager(orders Orders, cat Catalog, sessions session.Store, resolver *session.Resolver,
	memory session.Memory, notifier Notifier, opts Options) *Manager {
	if opts.Policy.MaxAttempts == 0 {
		opts.Policy = session.DefaultPolicy()
	}
	if opts.Clock == nil {
		opts.Clock = session.SystemClock
	}
	if memory == nil {
		memory = session.NewInMemory()
	}
	m := &Manager{
		orders:      orders,
		catalog:     cat,
		sessions:    sessions,
		resolver:    resolver,
		memory:      memory,
		notifier:    notifier,
		opts:        opts,
		controllers: make(map[string]*Controller),
		bound:       make(map[*Controller]string),
	}
	resolver.Protect(m.inUse)
	return m
}

// Controller returns the controller of a client, creating an empty one on first use
func (m *Manager) Controller(clientID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[clientID]
	if !ok {
		c = newController(m, clientID)
		m.controllers[clientID] = c
	}
	return c
}

// Lookup returns an existing controller
func (m *Manager) Lookup(clientID string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[clientID]
	return c, ok
}

// Open restores a client's remembered screen
func (m *Manager) Open(ctx context.Context, clientID, profileID string) (View, error) {
	return m.Controller(clientID).Open(ctx, profileID)
}

// Close is navigation away: pending saves are dropped and the remembered state cleared
func (m *Manager) Close(ctx context.Context, clientID string) error {
	m.mu.Lock()
	c, ok := m.controllers[clientID]
	delete(m.controllers, clientID)
	m.mu.Unlock()

	if ok {
		c.shutdown()
	}
	if err := m.memory.Clear(ctx, clientID); err != nil {
		return fmt.Errorf("failed to clear remembered state: %w", err)
	}
	return nil
}

// ActiveSessionIDs returns the session ids in use by open controllers.
// It never takes a controller lock, so it is safe to call while one is held.
func (m *Manager) ActiveSessionIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.bound))
	for _, id := range m.bound {
		ids = append(ids, id)
	}
	return ids
}

// bind records the session a controller writes to; "" releases it
func (m *Manager) bind(c *Controller, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sessionID == "" {
		delete(m.bound, c)
		return
	}
	m.bound[c] = sessionID
}

// protectedIDs are the sessions of open controllers plus every remembered session
func (m *Manager) protectedIDs(ctx context.Context) ([]string, error) {
	protected := m.ActiveSessionIDs()
	if lister, ok := m.memory.(sessionLister); ok {
		remembered, err := lister.SessionIDs(ctx)
		if err != nil {
			return protected, fmt.Errorf("failed to list remembered sessions: %w", err)
		}
		protected = append(protected, remembered...)
	}
	return protected, nil
}

// inUse feeds the resolver's duplicate removal
func (m *Manager) inUse(ctx context.Context) []string {
	ids, err := m.protectedIDs(ctx)
	if err != nil {
		log.Printf("⚠️ %v, protecting open sessions only", err)
	}
	return ids
}

// CleanupStale removes sessions that no order references and collapses duplicates.
// Sessions used by open controllers or remembered by any client are kept.
func (m *Manager) CleanupStale(ctx context.Context) (int, error) {
	keys, err := m.orders.Keys(ctx)
	if err != nil {
		return 0, err
	}

	protected, err := m.protectedIDs(ctx)
	if err != nil {
		return 0, err
	}
	return m.resolver.CleanupStale(ctx, keys, protected...)
}

// Shutdown stops every controller, writing debounced saves that are still pending
func (m *Manager) Shutdown() {
	m.mu.Lock()
	list := m.controllers
	m.controllers = make(map[string]*Controller)
	m.mu.Unlock()

	for _, c := range list {
		c.stop()
	}
	m.resolver.Wait()
	if len(list) > 0 {
		log.Printf("🛑 Stopped %d loading controllers", len(list))
	}
}

func (m *Manager) notify(clientID string, msg websocket.Message) {
	if m.notifier != nil {
		m.notifier.SendToClient(clientID, msg)
	}
}
