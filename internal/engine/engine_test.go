package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/horde/internal/agent"
	"github.com/udisondev/horde/internal/config"
	"github.com/udisondev/horde/internal/data"
	"github.com/udisondev/horde/internal/event"
	"github.com/udisondev/horde/internal/model"
	"github.com/udisondev/horde/internal/pool"
	"github.com/udisondev/horde/internal/testutil"
)

const step = 100 * time.Millisecond

func testConfig() config.Sim {
	cfg := config.DefaultSim()
	cfg.TickRate = 10
	cfg.Targeting.RefreshInterval = step
	return cfg
}

func newTestEngine(t *testing.T, cfg config.Sim, zones ...model.ZoneConfig) (*Engine, *data.Live) {
	t.Helper()
	if len(zones) == 0 {
		zones = []model.ZoneConfig{testutil.CampZone("forest")}
	}
	catalog, err := data.NewCatalog([]model.AgentConfig{testutil.GoblinConfig()}, zones, map[string]int{"goblin": 4})
	require.NoError(t, err)

	live := data.NewLive(catalog)
	e := New(cfg, live, nil)
	t.Cleanup(e.Close)

	require.NoError(t, e.LoadLevel(context.Background(), "forest"))
	return e, live
}

func (e *Engine) tickFor(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		e.Tick(step)
	}
}

func activeAgents(e *Engine) []*agent.Agent {
	var out []*agent.Agent
	e.Pool().ForEachActive(func(_ pool.Handle, a *agent.Agent) {
		out = append(out, a)
	})
	return out
}

func TestEngineSpawnsOnFirstTick(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())

	e.Tick(step)
	assert.Equal(t, 2, e.Pool().Stats("goblin").Active)
	assert.Equal(t, 4, e.Pool().Stats("goblin").MaxSize, "content pool size applied")
	assert.Equal(t, 2, e.World().Len())
	assert.Equal(t, 2, e.AI().Count())
}

func TestEngineConfigPoolSizeWins(t *testing.T) {
	cfg := testConfig()
	cfg.Pool.MaxSizes = map[string]int{"goblin": 1}
	e, _ := newTestEngine(t, cfg)

	e.Tick(step)
	assert.Equal(t, 1, e.Pool().Stats("goblin").Active)
	assert.Equal(t, 1, e.Pool().Stats("goblin").MaxSize)
}

func TestEngineAgentsAttackPlayer(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())
	p, err := e.AddPlayer("hero", model.Vec{X: 430, Y: 500}, 100, 120)
	require.NoError(t, err)

	e.tickFor(3 * time.Second)

	assert.Less(t, p.Health(), 100.0)
	assert.Positive(t, e.AI().StateCounts()[model.StateAttacking])
}

func TestEngineDeathReleasesAfterAnimation(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())
	e.Tick(step)

	agents := activeAgents(e)
	require.Len(t, agents, 2)
	victim := agents[0]
	id := victim.ID()
	victim.ApplyDamage(victim.Health())

	e.Tick(step)
	cue, playing := e.Assets().Playing(id)
	require.True(t, playing)
	assert.Equal(t, model.CueDeath, cue)
	assert.Equal(t, 2, e.Pool().Stats("goblin").Active, "corpse holds its slot while the death cue plays")

	e.tickFor(time.Second)
	assert.Equal(t, 1, e.Pool().Stats("goblin").Active)
	_, inWorld := e.World().Get(id)
	assert.False(t, inWorld)
	assert.False(t, e.Pool().Valid(pool.HandleFromID(id)))
}

func TestEngineModes(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())
	p, err := e.AddPlayer("hero", model.Vec{X: 1500, Y: 500}, 100, 100)
	require.NoError(t, err)
	require.NoError(t, e.MovePlayer(p.ID(), model.Vec{X: 1}))

	var seen []event.ModeChanged
	event.On(e.Bus(), event.TopicModeChanged, func(m event.ModeChanged) { seen = append(seen, m) })

	require.NoError(t, e.SetMode(model.ModePaused))
	require.NoError(t, e.SetMode(model.ModePaused))
	e.tickFor(time.Second)

	assert.Zero(t, e.Pool().Stats("goblin").Active, "no spawning while paused")
	assert.Equal(t, 1500.0, p.Position().X, "no input movement while paused")
	assert.True(t, e.AI().Paused())

	require.NoError(t, e.SetMode(model.ModeNormal))
	e.Tick(step)
	assert.Equal(t, 2, e.Pool().Stats("goblin").Active)
	assert.InDelta(t, 1510, p.Position().X, 1e-9)

	assert.Error(t, e.SetMode("chaos"))
	require.Len(t, seen, 2, "repeated mode is not broadcast")
	assert.Equal(t, event.ModeChanged{From: model.ModeNormal, To: model.ModePaused}, seen[0])
	assert.Equal(t, model.ModeNormal, e.Mode())
}

func TestEnginePeacefulDropsTargets(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())
	_, err := e.AddPlayer("hero", model.Vec{X: 430, Y: 500}, 1000, 100)
	require.NoError(t, err)
	e.tickFor(time.Second)

	require.NoError(t, e.SetMode(model.ModePeaceful))
	e.Tick(step)

	for _, a := range activeAgents(e) {
		assert.Equal(t, model.NoEntity, a.Runtime().Target)
		assert.NotEqual(t, model.StateAttacking, a.Runtime().State)
	}
}

func TestEngineMovePlayerUnknown(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())
	assert.ErrorIs(t, e.MovePlayer(12345, model.Vec{X: 1}), model.ErrInvalidTarget)

	_, err := e.AddPlayer("ghost", model.Vec{}, 0, 100)
	assert.Error(t, err)
}

func TestEngineHotReloadAffectsNewSpawnsOnly(t *testing.T) {
	e, live := newTestEngine(t, testConfig())
	e.Tick(step)
	before := activeAgents(e)
	require.Len(t, before, 2)
	oldCfg := before[0].Config()

	tougher := testutil.GoblinConfig()
	tougher.BaseHealth = 250
	catalog, err := data.NewCatalog([]model.AgentConfig{tougher}, []model.ZoneConfig{testutil.CampZone("forest")}, nil)
	require.NoError(t, err)
	live.Swap(catalog)

	assert.Equal(t, 1, e.Spawns().ForceSpawnAll())

	var fresh *agent.Agent
	for _, a := range activeAgents(e) {
		if a.Config() != oldCfg {
			fresh = a
		}
	}
	require.NotNil(t, fresh)
	assert.Equal(t, 250.0, fresh.Health())
	assert.Same(t, oldCfg, before[0].Config())
	assert.Equal(t, 100.0, before[1].Health())
}

func TestEngineReportsAndCSV(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())
	e.Tick(step)

	report := e.StatusReport()
	assert.Contains(t, report, "session "+e.Session().String()[:8])
	assert.Contains(t, report, "pool goblin")
	assert.Contains(t, report, "zone camp")

	var stats bytes.Buffer
	require.NoError(t, e.WriteStatsCSV(&stats))
	lines := strings.Split(strings.TrimSpace(stats.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "species,size,max_size,active,acquire_count,release_count,create_count", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "goblin,2,4,2,"))

	var zones bytes.Buffer
	require.NoError(t, e.WriteZoneCSV(&zones))
	assert.Contains(t, zones.String(), "zone,instance,species,alive,max_alive")
	assert.Contains(t, zones.String(), "camp,")
}

func TestEngineRunStopsAfterDuration(t *testing.T) {
	cfg := testConfig()
	cfg.TickRate = 100
	cfg.Duration = 200 * time.Millisecond
	e, _ := newTestEngine(t, cfg)

	ctx := testutil.ContextWithTimeout(t, 5*time.Second)
	require.NoError(t, e.Run(ctx))
	assert.GreaterOrEqual(t, e.Now(), cfg.Duration)
	assert.EqualValues(t, 20, e.Ticks())
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())
	ctx, cancel := testutil.ContextWithCancel(t)

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestEngineClose(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())
	e.Tick(step)

	e.Close()
	assert.Zero(t, e.Pool().Stats("goblin").Active)
	assert.Zero(t, e.AI().Count())
	assert.Zero(t, e.Bus().Subscribers(event.TopicModeChanged))

	ticks := e.Ticks()
	e.Tick(step)
	assert.Equal(t, ticks, e.Ticks(), "closed engine does not tick")
	e.Close()
}
