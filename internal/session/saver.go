package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/xelth-com/loadboard/internal/store"
)

// SaveState is the state of the write-coalescing queue
type SaveState string

const (
	SaveIdle     SaveState = "idle"
	SavePending  SaveState = "pending"  // debounce timer armed
	SaveWriting  SaveState = "saving"   // write in flight
	SaveRetrying SaveState = "retrying" // backoff timer armed after a failure
	SaveFailed   SaveState = "failed"   // attempts exhausted
	SaveStale    SaveState = "stale"    // session deleted; not retried, the owner resolves again
	SaveSaved    SaveState = "saved"    // reported once per successful write, then idle
)

// Policy controls debounce and retry timing
type Policy struct {
	Debounce    time.Duration
	MaxAttempts int
	RetryBase   time.Duration
}

// DefaultPolicy waits 1s of quiet, then tries three times, backing off 2s and 4s
func DefaultPolicy() Policy {
	return Policy{Debounce: time.Second, MaxAttempts: 3, RetryBase: time.Second}
}

// Backoff is the wait after the given number of consecutive failures
func (p Policy) Backoff(failures int) time.Duration {
	return p.RetryBase * time.Duration(1<<uint(failures))
}

// Event reports a save state change
type Event struct {
	State       SaveState
	SessionID   string
	Attempt     int
	MaxAttempts int
	Err         error
}

// Saver coalesces progress writes for one session.
//
// Idle -> Pending(timer) -> Writing -> Idle, or Writing -> Retrying(timer) -> Writing
// until MaxAttempts, then Failed. A write to a deleted session ends in Stale at once.
// Only the latest snapshot is ever written.
type Saver struct {
	store   Store
	clock   Clock
	policy  Policy
	onEvent func(Event)

	mu        sync.Mutex
	state     SaveState
	sessionID string
	userID    *string
	pending   map[string]interface{}
	dirty     bool // changed while a write was in flight
	failures  int
	timer     Timer
	closed    bool
	draining  bool // close once idle, failed or stale

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSaver builds a saver. onEvent may be nil.
func NewSaver(s Store, clock Clock, policy Policy, onEvent func(Event)) *Saver {
	if clock == nil {
		clock = SystemClock
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Saver{
		store:   s,
		clock:   clock,
		policy:  policy,
		onEvent: onEvent,
		state:   SaveIdle,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Schedule queues the latest progress of a session for writing
func (s *Saver) Schedule(sessionID string, userID *string, progress map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.draining {
		return
	}

	if sessionID != s.sessionID {
		s.failures = 0
	}
	s.sessionID = sessionID
	s.userID = userID
	s.pending = progress

	switch s.state {
	case SaveWriting:
		s.dirty = true
	case SaveRetrying:
		// the armed retry picks up the new snapshot
	default:
		if s.state == SaveFailed || s.state == SaveStale {
			s.failures = 0
		}
		s.arm(s.policy.Debounce)
		s.state = SavePending
	}
}

// State returns the current queue state
func (s *Saver) State() SaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Flush writes a debounced snapshot or an armed retry now instead of waiting for the timer
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.closed || (s.state != SavePending && s.state != SaveRetrying) {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.fire()
}

// Drain stops accepting snapshots, writes a debounced one now and keeps retrying as
// usual. The saver closes itself once the last write landed or gave up, and the
// outcome is still reported through onEvent.
func (s *Saver) Drain() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.draining = true
	switch s.state {
	case SavePending:
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.mu.Unlock()
		s.fire()
	case SaveWriting, SaveRetrying:
		s.mu.Unlock()
	default:
		s.closeLocked()
		s.mu.Unlock()
	}
}

// Close cancels any armed timer and in-flight write. Nothing is written afterwards.
func (s *Saver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Saver) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.cancel()
}

func (s *Saver) arm(d time.Duration) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(d, s.fire)
}

func (s *Saver) fire() {
	s.mu.Lock()
	if s.closed || (s.state != SavePending && s.state != SaveRetrying) {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.state = SaveWriting
	s.dirty = false
	id, userID, snapshot := s.sessionID, s.userID, s.pending
	attempt := s.failures + 1
	s.mu.Unlock()

	s.onEvent(Event{State: SaveWriting, SessionID: id, Attempt: attempt, MaxAttempts: s.policy.MaxAttempts})
	err := s.write(id, userID, snapshot)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if err == nil {
		s.failures = 0
		s.state = SaveIdle
		if s.dirty {
			s.arm(s.policy.Debounce)
			s.state = SavePending
		}
		s.mu.Unlock()
		s.onEvent(Event{State: SaveSaved, SessionID: id, Attempt: attempt, MaxAttempts: s.policy.MaxAttempts})
		s.closeIfDrained()
		return
	}

	if errors.Is(err, ErrStaleSession) {
		s.failures = 0
		s.state = SaveStale
		s.mu.Unlock()
		log.Printf("🧹 Session %s is gone, not retrying the save", id)
		s.onEvent(Event{State: SaveStale, SessionID: id, Attempt: attempt, MaxAttempts: s.policy.MaxAttempts, Err: err})
		s.closeIfDrained()
		return
	}

	s.failures++
	if s.failures < s.policy.MaxAttempts {
		delay := s.policy.Backoff(s.failures)
		s.arm(delay)
		s.state = SaveRetrying
		failures := s.failures
		s.mu.Unlock()
		log.Printf("🔄 Save to session %s failed (attempt %d/%d), retrying in %v: %v", id, failures, s.policy.MaxAttempts, delay, err)
		s.onEvent(Event{State: SaveRetrying, SessionID: id, Attempt: failures, MaxAttempts: s.policy.MaxAttempts, Err: err})
		return
	}

	failures := s.failures
	s.failures = 0
	s.state = SaveFailed
	s.mu.Unlock()
	log.Printf("❌ Save to session %s failed after %d attempts: %v", id, failures, err)
	s.onEvent(Event{
		State:       SaveFailed,
		SessionID:   id,
		Attempt:     failures,
		MaxAttempts: s.policy.MaxAttempts,
		Err:         fmt.Errorf("%w after %d attempts: %v", ErrPersistence, failures, err),
	})
	s.closeIfDrained()
}

func (s *Saver) closeIfDrained() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining && s.state != SavePending && s.state != SaveRetrying && s.state != SaveWriting {
		s.closeLocked()
	}
}

func (s *Saver) write(id string, userID *string, progress map[string]interface{}) error {
	exists, err := s.store.Exists(s.ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrStaleSession, id)
	}
	if err := s.store.SaveProgress(s.ctx, id, progress, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrStaleSession, id)
		}
		return err
	}
	return nil
}
