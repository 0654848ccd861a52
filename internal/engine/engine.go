// Package engine wires every runtime component and drives the fixed-order tick.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/udisondev/horde/internal/ai"
	"github.com/udisondev/horde/internal/asset"
	"github.com/udisondev/horde/internal/config"
	"github.com/udisondev/horde/internal/data"
	"github.com/udisondev/horde/internal/event"
	"github.com/udisondev/horde/internal/faction"
	"github.com/udisondev/horde/internal/model"
	"github.com/udisondev/horde/internal/pool"
	"github.com/udisondev/horde/internal/spawn"
	"github.com/udisondev/horde/internal/target"
	"github.com/udisondev/horde/internal/world"
)

// poolSizer is implemented by providers that carry per-species pool sizes.
type poolSizer interface {
	PoolSize(species string) (int, bool)
}

// Engine owns one simulation session. All methods except Run must be
// called from the goroutine that drives Tick.
type Engine struct {
	session  uuid.UUID
	cfg      config.Sim
	provider data.Provider

	bus      *event.Bus
	queue    *event.Queue
	pool     *pool.AgentPool
	factions *faction.Registry
	world    *world.World
	ids      *world.IDGenerator
	players  []*world.Player
	selector *target.Selector
	assets   *asset.Library
	ai       *ai.TickManager
	spawns   *spawn.Manager

	now   time.Duration
	ticks uint64
	mode  model.Mode

	unsubscribe func()
	closed      bool
}

// New builds every component of a session. A nil manifest uses the defaults.
func New(cfg config.Sim, provider data.Provider, manifest *asset.Manifest) *Engine {
	bus := event.NewBus()
	queue := &event.Queue{}
	agents := pool.New(cfg.Pool.DefaultMaxSize)
	for species, n := range cfg.Pool.MaxSizes {
		agents.SetMaxSize(species, n)
	}

	factions := faction.NewDefault(cfg.World.Midline, cfg.World.MidlineDeadZone)
	w := world.New(cfg.World.Bounds())
	sel := target.NewSelector(w, factions, cfg.Targeting.RefreshInterval)
	library := asset.NewLibrary(manifest, queue)

	tm := ai.NewTickManager(&ai.Env{
		Targets:  sel,
		World:    w,
		Animator: library,
		Bus:      bus,
	}, cfg.Seed)

	e := &Engine{
		session:  uuid.New(),
		cfg:      cfg,
		provider: provider,
		bus:      bus,
		queue:    queue,
		pool:     agents,
		factions: factions,
		world:    w,
		ids:      world.NewIDGenerator(),
		selector: sel,
		assets:   library,
		ai:       tm,
		mode:     model.ModeNormal,
	}
	// AI sees the mode before the spawner does
	e.unsubscribe = event.On(bus, event.TopicModeChanged, tm.OnModeChanged)
	e.spawns = spawn.NewManager(provider, agents, w, tm, library, bus, uint64(cfg.Seed))

	for _, pc := range cfg.Players {
		if _, err := e.AddPlayer(pc.Name, model.Vec{X: pc.X, Y: pc.Y}, pc.Health, pc.Speed); err != nil {
			slog.Warn("player skipped", "name", pc.Name, "error", err)
		}
	}

	slog.Info("engine created",
		"session", e.session.String(),
		"tick_rate", cfg.TickRate,
		"bounds", fmt.Sprintf("%.0f,%.0f-%.0f,%.0f", cfg.World.MinX, cfg.World.MinY, cfg.World.MaxX, cfg.World.MaxY),
		"players", len(e.players))
	return e
}

// Session returns the session ID.
func (e *Engine) Session() uuid.UUID { return e.session }

// Now returns the simulation clock.
func (e *Engine) Now() time.Duration { return e.now }

// Ticks returns how many ticks ran.
func (e *Engine) Ticks() uint64 { return e.ticks }

// Mode returns the current game mode.
func (e *Engine) Mode() model.Mode { return e.mode }

// Pool returns the agent pool.
func (e *Engine) Pool() *pool.AgentPool { return e.pool }

// World returns the entity registry.
func (e *Engine) World() *world.World { return e.world }

// AI returns the tick manager.
func (e *Engine) AI() *ai.TickManager { return e.ai }

// Spawns returns the spawn manager.
func (e *Engine) Spawns() *spawn.Manager { return e.spawns }

// Assets returns the asset library. Its Run must be started by the caller.
func (e *Engine) Assets() *asset.Library { return e.assets }

// Bus returns the event bus.
func (e *Engine) Bus() *event.Bus { return e.bus }

// LoadLevel applies content pool sizes and builds the level's spawn zones.
// Sizes from the process config win over content.
func (e *Engine) LoadLevel(ctx context.Context, levelID string) error {
	if sizer, ok := e.provider.(poolSizer); ok {
		for _, z := range e.provider.ZoneConfigsForLevel(levelID) {
			for _, entry := range z.Entries {
				if _, fixed := e.cfg.Pool.MaxSizes[entry.Species]; fixed {
					continue
				}
				if n, ok := sizer.PoolSize(entry.Species); ok {
					e.pool.SetMaxSize(entry.Species, n)
				}
			}
		}
	}
	if err := e.spawns.LoadLevel(ctx, levelID); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// Tick advances the session by dt in fixed phase order.
func (e *Engine) Tick(dt time.Duration) {
	if e.closed {
		return
	}
	e.now += dt
	e.ticks++

	e.bookkeeping()
	e.movePlayers(dt)
	e.ai.TickAll(e.now, dt)
	e.spawns.Update(e.now)
}

// bookkeeping drains asset results and animation completions.
func (e *Engine) bookkeeping() {
	e.assets.Collect()
	e.assets.Advance(e.now)

	for _, msg := range e.queue.Drain() {
		switch msg.Kind {
		case event.AssetReady:
			if ai.IsDebugEnabled() {
				slog.Debug("asset ready", "species", msg.Species)
			}
		case event.AnimationFinished:
			if msg.Cue != model.CueDeath {
				continue
			}
			e.spawns.OnDeathAnimationFinished(pool.HandleFromID(msg.Entity))
		}
	}
}

func (e *Engine) movePlayers(dt time.Duration) {
	if e.mode == model.ModePaused {
		return
	}
	for _, p := range e.players {
		p.ApplyIntent(dt.Seconds(), e.world.Clamp)
	}
}

// Run ticks at the configured rate until ctx is done or the configured
// duration of simulated time has passed.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.cfg.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("tick loop started", "interval", interval, "duration", e.cfg.Duration)

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick loop stopping", "ticks", e.ticks)
			return nil
		case <-ticker.C:
			e.Tick(interval)
			if e.cfg.Duration > 0 && e.now >= e.cfg.Duration {
				slog.Info("simulation duration reached", "ticks", e.ticks, "now", e.now)
				return nil
			}
		}
	}
}

// SetMode switches the game mode and broadcasts mode.changed.
func (e *Engine) SetMode(mode model.Mode) error {
	switch mode {
	case model.ModeNormal, model.ModePaused, model.ModePeaceful:
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if mode == e.mode {
		return nil
	}
	prev := e.mode
	e.mode = mode
	e.bus.Publish(event.TopicModeChanged, event.ModeChanged{From: prev, To: mode})
	return nil
}

// AddPlayer places a new player in the world.
func (e *Engine) AddPlayer(name string, pos model.Vec, maxHP, speed float64) (*world.Player, error) {
	if maxHP <= 0 {
		return nil, fmt.Errorf("player %q: health must be positive", name)
	}
	p := world.NewPlayer(e.ids.NextPlayerID(), name, e.world.Clamp(pos), maxHP, speed)
	if err := e.world.Add(p); err != nil {
		return nil, fmt.Errorf("adding player %q: %w", name, err)
	}
	e.players = append(e.players, p)
	return p, nil
}

// Player returns the player with id.
func (e *Engine) Player(id model.EntityID) (*world.Player, bool) {
	i := slices.IndexFunc(e.players, func(p *world.Player) bool { return p.ID() == id })
	if i < 0 {
		return nil, false
	}
	return e.players[i], true
}

// MovePlayer sets the movement intent of a player. A zero dir stops it.
func (e *Engine) MovePlayer(id model.EntityID, dir model.Vec) error {
	p, ok := e.Player(id)
	if !ok {
		return fmt.Errorf("moving player %d: %w", id, model.ErrInvalidTarget)
	}
	p.SetIntent(dir)
	return nil
}

// StatusReport summarises the session: clock, pools, AI states and zones.
func (e *Engine) StatusReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "session %s tick %d t=%s mode %s\n", e.session.String()[:8], e.ticks, e.now, e.mode)

	for _, s := range e.pool.AllStats() {
		fmt.Fprintf(&b, "pool %-12s active %d/%d created %d\n", s.Species, s.Active, s.MaxSize, s.CreateCount)
	}

	counts := e.ai.StateCounts()
	b.WriteString("ai")
	for _, st := range model.AllStates {
		fmt.Fprintf(&b, " %s=%d", st, counts[st])
	}
	b.WriteString("\n")

	b.WriteString(e.spawns.StatusReport())
	return b.String()
}

// WriteStatsCSV writes one row of pool stats per species.
func (e *Engine) WriteStatsCSV(w io.Writer) error {
	stats := e.pool.AllStats()
	if len(stats) == 0 {
		return nil
	}
	if err := gocsv.Marshal(stats, w); err != nil {
		return fmt.Errorf("writing pool stats: %w", err)
	}
	return nil
}

// WriteZoneCSV writes one row per zone entry of the loaded level.
func (e *Engine) WriteZoneCSV(w io.Writer) error {
	rows := e.spawns.Status()
	if len(rows) == 0 {
		return nil
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing zone status: %w", err)
	}
	return nil
}

// Close tears the session down: spawner, AI, pool, then the bus.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true

	e.spawns.Close()
	e.ai.Clear()
	released := e.pool.Drain()
	e.unsubscribe()
	e.bus.Close()

	slog.Info("engine closed",
		"session", e.session.String(),
		"ticks", e.ticks,
		"released", released)
}
