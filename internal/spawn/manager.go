package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/udisondev/horde/internal/ai"
	"github.com/udisondev/horde/internal/asset"
	"github.com/udisondev/horde/internal/data"
	"github.com/udisondev/horde/internal/event"
	"github.com/udisondev/horde/internal/model"
	"github.com/udisondev/horde/internal/pool"
	"github.com/udisondev/horde/internal/world"
)

// Assets is the part of the asset host the spawner needs.
type Assets interface {
	Resolve(species string) (asset.Handle, bool)
	Attach(id model.EntityID, species string)
	Detach(id model.EntityID)
}

// Manager owns the coordinators of the loaded level and the agent
// lifecycle: acquire, activate, register, and the reverse on despawn.
type Manager struct {
	provider data.Provider
	pool     *pool.AgentPool
	world    *world.World
	ai       *ai.TickManager
	assets   Assets
	rng      *rand.Rand

	level        string
	coordinators []*Coordinator
	byZone       map[string]*Coordinator

	now  time.Duration
	mode model.Mode

	unsubscribe []func()
}

// NewManager creates a spawn manager and subscribes it to death and mode events.
func NewManager(
	provider data.Provider,
	agents *pool.AgentPool,
	w *world.World,
	tm *ai.TickManager,
	assets Assets,
	bus *event.Bus,
	seed uint64,
) *Manager {
	m := &Manager{
		provider: provider,
		pool:     agents,
		world:    w,
		ai:       tm,
		assets:   assets,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		byZone:   make(map[string]*Coordinator),
		mode:     model.ModeNormal,
	}
	m.unsubscribe = append(m.unsubscribe,
		event.On(bus, event.TopicAgentDeath, m.onAgentDeath),
		event.On(bus, event.TopicModeChanged, m.onModeChanged),
	)
	return m
}

// LoadLevel closes the current coordinators and builds one per zone of levelID.
func (m *Manager) LoadLevel(ctx context.Context, levelID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("loading level %q: %w", levelID, err)
	}

	zones := m.provider.ZoneConfigsForLevel(levelID)
	if len(zones) == 0 {
		return fmt.Errorf("loading level %q: no zones: %w", levelID, model.ErrConfigMissing)
	}

	m.closeCoordinators()

	m.level = levelID
	for _, z := range zones {
		if _, dup := m.byZone[z.ID]; dup {
			slog.Warn("duplicate zone in level, skipping", "level", levelID, "zone", z.ID)
			continue
		}
		c := newCoordinator(z, m, m.rng, m.now)
		c.SetSuspended(m.mode != model.ModeNormal)
		m.coordinators = append(m.coordinators, c)
		m.byZone[z.ID] = c
	}

	slog.Info("level loaded",
		"level", levelID,
		"zones", len(m.coordinators))
	return nil
}

// Level returns the loaded level ID.
func (m *Manager) Level() string { return m.level }

// Update advances every coordinator to now.
func (m *Manager) Update(now time.Duration) {
	m.now = now
	for _, c := range m.coordinators {
		c.Update(now)
	}
}

// Coordinators returns the coordinators of the level in zone order.
func (m *Manager) Coordinators() []*Coordinator {
	return m.coordinators
}

// Coordinator returns the coordinator of zoneID.
func (m *Manager) Coordinator(zoneID string) (*Coordinator, bool) {
	c, ok := m.byZone[zoneID]
	return c, ok
}

// ForceSpawnAll fills every zone right away and returns the number spawned.
func (m *Manager) ForceSpawnAll() int {
	n := 0
	for _, c := range m.coordinators {
		n += c.ForceSpawnAll(m.now)
	}
	return n
}

// Clear despawns every zone agent. Coordinators keep their timers.
func (m *Manager) Clear() int {
	n := 0
	for _, c := range m.coordinators {
		n += c.Clear()
	}
	return n
}

// StatusReport concatenates the coordinator reports.
func (m *Manager) StatusReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "level %s mode %s\n", m.level, m.mode)
	for _, c := range m.coordinators {
		b.WriteString(c.StatusReport())
	}
	return b.String()
}

// Status returns the status rows of every zone.
func (m *Manager) Status() []EntryStatus {
	var out []EntryStatus
	for _, c := range m.coordinators {
		out = append(out, c.Status()...)
	}
	return out
}

// Despawn removes the agent at h from every registry and releases its slot.
// Returns false for stale handles.
func (m *Manager) Despawn(h pool.Handle) bool {
	a, ok := m.pool.Get(h)
	if !ok {
		return false
	}
	id := h.EntityID()
	if c, ok := m.byZone[a.Runtime().ZoneID]; ok {
		c.forget(id)
	}

	m.ai.Unregister(h)
	m.world.Remove(id)
	m.assets.Detach(id)
	m.pool.Release(h)

	if ai.IsDebugEnabled() {
		slog.Debug("agent despawned",
			"handle", h.String(),
			"species", a.Species())
	}
	return true
}

// OnDeathAnimationFinished releases a dead agent once its death cue completed.
// Ignored for live agents and stale handles.
func (m *Manager) OnDeathAnimationFinished(h pool.Handle) bool {
	a, ok := m.pool.Get(h)
	if !ok || a.IsAlive() {
		return false
	}
	return m.Despawn(h)
}

// Close cancels every coordinator and unsubscribes from the bus.
func (m *Manager) Close() {
	m.closeCoordinators()
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.unsubscribe = nil
}

func (m *Manager) closeCoordinators() {
	for _, c := range m.coordinators {
		c.Close()
	}
	m.coordinators = nil
	clear(m.byZone)
}

func (m *Manager) onAgentDeath(e event.AgentDeath) {
	if c, ok := m.byZone[e.ZoneID]; ok {
		c.forget(e.ID)
	}
}

func (m *Manager) onModeChanged(e event.ModeChanged) {
	m.mode = e.To
	for _, c := range m.coordinators {
		c.SetSuspended(e.To != model.ModeNormal)
	}
}

// spawnAgent acquires a slot and brings the agent to life at pos.
func (m *Manager) spawnAgent(zone *model.ZoneConfig, e model.SpawnEntry, pos model.Vec) (pool.Handle, error) {
	cfg, ok := m.provider.AgentConfig(e.Species)
	if !ok {
		return pool.Handle{}, fmt.Errorf("spawning %q in zone %q: %w", e.Species, zone.ID, model.ErrConfigMissing)
	}
	h, ok := m.pool.Acquire(e.Species)
	if !ok {
		return pool.Handle{}, fmt.Errorf("spawning %q in zone %q: %w", e.Species, zone.ID, model.ErrPoolExhausted)
	}
	a, _ := m.pool.Get(h)
	id := h.EntityID()
	a.Activate(id, cfg, e.Faction, pos, zone.ID)

	if err := m.world.Add(a); err != nil {
		m.pool.Release(h)
		return pool.Handle{}, fmt.Errorf("adding agent to world: %w", err)
	}

	m.assets.Resolve(e.Species)
	m.assets.Attach(id, e.Species)
	m.ai.Register(h, a)

	if ai.IsDebugEnabled() {
		slog.Debug("agent spawned",
			"handle", h.String(),
			"species", e.Species,
			"zone", zone.ID,
			"faction", e.Faction.String(),
			"x", pos.X,
			"y", pos.Y)
	}
	return h, nil
}

func (m *Manager) alive(h pool.Handle) bool {
	a, ok := m.pool.Get(h)
	return ok && a.IsAlive()
}

func (m *Manager) clamp(p model.Vec) model.Vec {
	return m.world.Clamp(p)
}
