// Package session provides the concurrent registry of live matches. Each
// session owns one game state machine and one eviction timer; the registry
// serializes access per session while operations on different sessions
// never block one another.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"telegram-minigame-bot/internal/game"
)

// Registry errors.
var (
	// ErrKeyConflict is returned when a session key is already occupied.
	// Under correct key generation this never happens; it is a defensive
	// invariant check, not a retry path.
	ErrKeyConflict = errors.New("session key already in use")
)

// Default inactivity timeouts per game type.
const (
	DefaultRPSTimeout         = 5 * time.Minute
	DefaultTicTacToeTimeout   = 10 * time.Minute
	DefaultHandCricketTimeout = 15 * time.Minute
)

// DefaultTimeouts returns the default eviction timeout table.
func DefaultTimeouts() map[game.Type]time.Duration {
	return map[game.Type]time.Duration{
		game.TypeRPS:         DefaultRPSTimeout,
		game.TypeTicTacToe:   DefaultTicTacToeTimeout,
		game.TypeHandCricket: DefaultHandCricketTimeout,
	}
}

// session is one live match entry. Its mutex serializes all machine access
// and guards gone and timer; the registry map itself is guarded separately.
type session struct {
	key     string
	machine game.Machine

	mu         sync.Mutex
	timer      *time.Timer
	createdAt  time.Time
	lastActive time.Time
	gone       bool
}

// Registry is the concurrent session container. Lock ordering: a session's
// mutex, when held, is acquired before the registry mutex, never after.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	timeouts map[game.Type]time.Duration

	// onEvict is called after a timeout removes a session, outside all
	// locks. onFinish is called whenever a match reaches a terminal state
	// and its session is removed, whether through ApplyAction or because
	// it was already terminal at creation.
	onEvict  func(key string, m game.Machine)
	onFinish func(key string, m game.Machine)
}

// NewRegistry creates a registry with the given timeout table; nil means
// DefaultTimeouts.
func NewRegistry(timeouts map[game.Type]time.Duration) *Registry {
	if timeouts == nil {
		timeouts = DefaultTimeouts()
	}
	return &Registry{
		sessions: make(map[string]*session),
		timeouts: timeouts,
	}
}

// OnEvict registers the timeout-eviction callback. Must be set before any
// session is created.
func (r *Registry) OnEvict(fn func(key string, m game.Machine)) {
	r.onEvict = fn
}

// OnFinish registers the callback for terminal matches. Must be set before
// any session is created.
func (r *Registry) OnFinish(fn func(key string, m game.Machine)) {
	r.onFinish = fn
}

// timeout returns the eviction timeout for a game type.
func (r *Registry) timeout(t game.Type) time.Duration {
	if d, ok := r.timeouts[t]; ok && d > 0 {
		return d
	}
	return DefaultRPSTimeout
}

// Create inserts a machine under the given key, or under a generated UUID
// when key is empty, and arms the eviction timer. If the machine is already
// terminal (bot-vs-bot RPS) the session is still created, so the caller can
// observe it, and resolves on a fresh goroutine rather than inline.
func (r *Registry) Create(key string, m game.Machine) (string, error) {
	if key == "" {
		key = uuid.NewString()
	}

	now := time.Now()
	s := &session{
		key:        key,
		machine:    m,
		createdAt:  now,
		lastActive: now,
	}

	r.mu.Lock()
	if _, exists := r.sessions[key]; exists {
		r.mu.Unlock()
		log.Error().Str("key", key).Str("game", string(m.Type())).Msg("Session key conflict")
		return "", ErrKeyConflict
	}
	// Arm the timer before the session becomes visible, so no other path
	// can ever observe a session without one.
	s.timer = time.AfterFunc(r.timeout(m.Type()), func() { r.evict(key) })
	r.sessions[key] = s
	r.mu.Unlock()

	log.Debug().Str("key", key).Str("game", string(m.Type())).Msg("Session created")

	if m.Over() {
		go r.finish(key)
	}
	return key, nil
}

// lookup returns the session for a key, or nil.
func (r *Registry) lookup(key string) *session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[key]
}

// IsActive reports whether a live session exists for the key.
func (r *Registry) IsActive(key string) bool {
	s := r.lookup(key)
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.gone
}

// Peek returns a display snapshot of the session's current state.
func (r *Registry) Peek(key string) (string, bool) {
	s := r.lookup(key)
	if s == nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return "", false
	}
	return s.machine.View(), true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ApplyAction is the sole mutation entry point. It routes the action to the
// session's machine; when the machine becomes terminal the session is
// removed and its timer cancelled before returning. Every successful Hand
// Cricket action also re-arms the eviction timer, so that game times out on
// per-turn inactivity rather than total match duration.
func (r *Registry) ApplyAction(key string, playerID int64, act game.Action) game.Result {
	s := r.lookup(key)
	if s == nil {
		return game.Result{Status: game.StatusNotFound}
	}

	s.mu.Lock()
	if s.gone {
		s.mu.Unlock()
		return game.Result{Status: game.StatusNotFound}
	}

	res := s.machine.Apply(playerID, act)
	if res.Status != game.StatusSuccess && res.Status != game.StatusGameOver {
		s.mu.Unlock()
		return res
	}

	s.lastActive = time.Now()
	if s.machine.Over() {
		res.Status = game.StatusGameOver
		r.removeLocked(s)
		m := s.machine
		s.mu.Unlock()
		if r.onFinish != nil {
			r.onFinish(key, m)
		}
		return res
	}

	if s.machine.Type() == game.TypeHandCricket {
		s.timer.Stop()
		s.timer = time.AfterFunc(r.timeout(s.machine.Type()), func() { r.evict(key) })
	}
	s.mu.Unlock()
	return res
}

// Inspect runs fn against a session's machine under the session lock.
// fn must only read; it runs while action routing for the session is
// blocked, so it must not call back into the registry.
func (r *Registry) Inspect(key string, fn func(m game.Machine)) bool {
	s := r.lookup(key)
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return false
	}
	fn(s.machine)
	return true
}

// Remove deletes a session by key. Idempotent: removing a key that is
// already gone, or racing with the eviction timer, is a no-op.
func (r *Registry) Remove(key string) {
	s := r.lookup(key)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return
	}
	r.removeLocked(s)
}

// removeLocked removes the session from the map and cancels its timer.
// Caller holds s.mu.
func (r *Registry) removeLocked(s *session) {
	r.mu.Lock()
	delete(r.sessions, s.key)
	r.mu.Unlock()

	s.timer.Stop()
	s.gone = true
	log.Debug().Str("key", s.key).Str("game", string(s.machine.Type())).Msg("Session removed")
}

// evict runs when an eviction timer fires. A timer that lost the race
// against a terminal move or an explicit Remove observes gone and does
// nothing.
func (r *Registry) evict(key string) {
	s := r.lookup(key)
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.gone {
		s.mu.Unlock()
		return
	}
	r.removeLocked(s)
	m := s.machine
	s.mu.Unlock()

	log.Info().Str("key", key).Str("game", string(m.Type())).Msg("Session evicted after inactivity")
	if r.onEvict != nil {
		r.onEvict(key, m)
	}
}

// finish removes a session that was terminal at creation and notifies the
// onFinish callback.
func (r *Registry) finish(key string) {
	s := r.lookup(key)
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.gone {
		s.mu.Unlock()
		return
	}
	r.removeLocked(s)
	m := s.machine
	s.mu.Unlock()

	if r.onFinish != nil {
		r.onFinish(key, m)
	}
}
