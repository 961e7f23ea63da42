// Package manager serialises evaluate() calls per context and caches each
// context's previous layout, the way compositor.Manager serialised FFmpeg
// session lifecycle per session id. There is no subprocess here — each
// "session" is just a mutex guarding one context's evaluate/diff/cache
// cycle — but the shape (a map of per-key state behind an RWMutex, looked up
// by a stable string id) is the same.
package manager

import (
	"fmt"
	"sync"
	"time"

	"github.com/yourflock/roost/layoutengine/internal/layout"
	"github.com/yourflock/roost/layoutengine/pkg/metrics"
)

// contextState holds one context's serialisation lock and cached layout.
// The engine itself (§5) holds no state across calls; this is the state the
// spec asks the *caller* to own.
type contextState struct {
	mu   sync.Mutex
	prev *layout.Layout
}

// Manager owns one contextState per active context id.
type Manager struct {
	mu       sync.RWMutex
	contexts map[string]*contextState
	ids      layout.IDSource
}

// New creates a Manager. ids is the message-id source shared across all
// contexts; pass layout.UUIDSource{} in production and a deterministic
// fake in tests.
func New(ids layout.IDSource) *Manager {
	if ids == nil {
		ids = layout.UUIDSource{}
	}
	return &Manager{
		contexts: make(map[string]*contextState),
		ids:      ids,
	}
}

// Evaluate runs one evaluation for ctx.ID, serialised against any other
// in-flight evaluation for the same context id (§5: "the caller must
// serialise evaluations on the same context"). Concurrent evaluations for
// different contexts proceed independently.
func (m *Manager) Evaluate(ctx *layout.Context, cs *layout.ConstraintSet, comps map[string]*layout.Component) (*layout.Layout, []layout.Message, *layout.Error) {
	if ctx == nil || ctx.ID == "" {
		return nil, nil, &layout.Error{Kind: layout.ErrKindProgrammer, Message: "context id is required"}
	}

	state := m.stateFor(ctx.ID)
	state.mu.Lock()
	defer state.mu.Unlock()

	nowMS := time.Now().UnixMilli()
	newLayout, messages, err := layout.Evaluate(ctx, cs, comps, state.prev, m.ids, nowMS)
	if err != nil {
		return nil, nil, err
	}
	state.prev = newLayout
	return newLayout, messages, nil
}

// PreviousLayout returns the last cached layout for a context, if any.
func (m *Manager) PreviousLayout(contextID string) (*layout.Layout, bool) {
	m.mu.RLock()
	state, ok := m.contexts[contextID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.prev, state.prev != nil
}

// DropContext discards cached state for a context (e.g. the DMApp ended).
func (m *Manager) DropContext(contextID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contexts, contextID)
	metrics.ActiveContexts.Set(float64(len(m.contexts)))
}

// ActiveContexts returns the number of contexts currently tracked.
func (m *Manager) ActiveContexts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contexts)
}

// TryLockAll attempts (non-blocking) to acquire every context's mutex,
// releasing each immediately. Used by the readiness probe as a cheap check
// that no context lock is permanently jammed; it never blocks.
func (m *Manager) TryLockAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, state := range m.contexts {
		if !state.mu.TryLock() {
			return fmt.Errorf("context %s is locked", id)
		}
		state.mu.Unlock()
	}
	return nil
}

func (m *Manager) stateFor(contextID string) *contextState {
	m.mu.RLock()
	state, ok := m.contexts[contextID]
	m.mu.RUnlock()
	if ok {
		return state
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.contexts[contextID]; ok {
		return state
	}
	state = &contextState{}
	m.contexts[contextID] = state
	metrics.ActiveContexts.Set(float64(len(m.contexts)))
	return state
}
