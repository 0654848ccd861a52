package ai

import (
	"log/slog"
	"time"

	"github.com/ojrac/opensimplex-go"

	"github.com/udisondev/horde/internal/event"
	"github.com/udisondev/horde/internal/model"
	"github.com/udisondev/horde/internal/pool"
)

// TickManager runs every registered controller once per frame, in
// registration order, as one batch against the same target snapshot.
//
// Controllers are cached per pool slot and reused when the slot comes
// back with a new generation.
type TickManager struct {
	env *Env

	bySlot map[uint32]*Controller
	active []*Controller

	paused   bool
	peaceful bool
	batches  int
}

// NewTickManager creates a tick manager. A nil env.Noise gets a noise
// source seeded with seed.
func NewTickManager(env *Env, seed int64) *TickManager {
	if env.Noise == nil {
		env.Noise = opensimplex.NewNormalized(seed)
	}
	return &TickManager{
		env:    env,
		bySlot: make(map[uint32]*Controller),
	}
}

// Register binds a controller to the agent at h and starts it.
// Registering a handle twice returns the existing controller.
func (m *TickManager) Register(h pool.Handle, body model.AIControllable) *Controller {
	c, ok := m.bySlot[h.Index]
	if ok && c.running {
		if c.handle == h {
			slog.Warn("AI controller already registered", "handle", h.String())
			return c
		}
		// previous generation was never unregistered
		m.removeActive(c)
	}
	if !ok {
		c = NewController(h, body, m.env)
		m.bySlot[h.Index] = c
	} else {
		c.bind(h, body)
	}

	c.Start()
	m.active = append(m.active, c)

	if IsDebugEnabled() {
		slog.Debug("AI controller registered",
			"handle", h.String(),
			"agent", body.ID(),
			"reused", ok)
	}
	return c
}

// Unregister stops the controller of h. Returns false for unknown or stale handles.
func (m *TickManager) Unregister(h pool.Handle) bool {
	c, ok := m.bySlot[h.Index]
	if !ok || !c.running || c.handle != h {
		return false
	}
	m.removeActive(c)

	if IsDebugEnabled() {
		slog.Debug("AI controller unregistered", "handle", h.String())
	}
	return true
}

func (m *TickManager) removeActive(c *Controller) {
	c.Stop()
	for i, other := range m.active {
		if other == c {
			m.active = append(m.active[:i], m.active[i+1:]...)
			return
		}
	}
}

// Get returns the running controller of h.
func (m *TickManager) Get(h pool.Handle) (*Controller, bool) {
	c, ok := m.bySlot[h.Index]
	if !ok || !c.running || c.handle != h {
		return nil, false
	}
	return c, true
}

// TickAll runs one batch. The target snapshot is pinned first so every
// agent in the batch sees the same candidates.
func (m *TickManager) TickAll(now, dt time.Duration) {
	if m.paused {
		return
	}
	m.env.Targets.BeginTick(now)

	frame := Frame{Now: now, DT: dt, Peaceful: m.peaceful}
	for i := 0; i < len(m.active); i++ {
		m.active[i].Tick(frame)
	}
	m.batches++

	if len(m.active) > 0 && IsDebugEnabled() {
		slog.Debug("AI batch completed", "controllers", len(m.active), "now", now)
	}
}

// SetPaused freezes or resumes ticking.
func (m *TickManager) SetPaused(paused bool) { m.paused = paused }

// Paused reports whether ticking is frozen
func (m *TickManager) Paused() bool { return m.paused }

// SetPeaceful disables or re-enables target acquisition.
func (m *TickManager) SetPeaceful(peaceful bool) { m.peaceful = peaceful }

// Peaceful reports whether agents ignore targets
func (m *TickManager) Peaceful() bool { return m.peaceful }

// OnModeChanged applies a mode.changed notification.
func (m *TickManager) OnModeChanged(e event.ModeChanged) {
	m.paused = e.To == model.ModePaused
	m.peaceful = e.To == model.ModePeaceful
	slog.Info("AI mode applied", "mode", e.To, "paused", m.paused, "peaceful", m.peaceful)
}

// Count returns number of running controllers
func (m *TickManager) Count() int {
	return len(m.active)
}

// Batches returns how many batches ran.
func (m *TickManager) Batches() int {
	return m.batches
}

// StateCounts returns how many running agents are in each state.
func (m *TickManager) StateCounts() map[model.AIState]int {
	counts := make(map[model.AIState]int, len(model.AllStates))
	for _, c := range m.active {
		counts[c.CurrentState()]++
	}
	return counts
}

// Clear stops every controller. Used at teardown.
func (m *TickManager) Clear() {
	for _, c := range m.active {
		c.Stop()
	}
	m.active = m.active[:0]
	slog.Info("AI tick manager cleared")
}
