package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/horde/internal/agent"
	"github.com/udisondev/horde/internal/event"
	"github.com/udisondev/horde/internal/faction"
	"github.com/udisondev/horde/internal/model"
	"github.com/udisondev/horde/internal/pool"
	"github.com/udisondev/horde/internal/target"
	"github.com/udisondev/horde/internal/world"
)

type cueRecord struct {
	id  model.EntityID
	cue model.Cue
}

type recordingAnimator struct {
	cues []cueRecord
}

func (r *recordingAnimator) PlayAnimation(id model.EntityID, cue model.Cue) {
	r.cues = append(r.cues, cueRecord{id: id, cue: cue})
}

func (r *recordingAnimator) count(cue model.Cue) int {
	n := 0
	for _, c := range r.cues {
		if c.cue == cue {
			n++
		}
	}
	return n
}

type harness struct {
	t     *testing.T
	pool  *pool.AgentPool
	world *world.World
	sel   *target.Selector
	bus   *event.Bus
	anim  *recordingAnimator
	tm    *TickManager
	now   time.Duration
}

func newHarness(t *testing.T, bounds model.Bounds) *harness {
	t.Helper()
	w := world.New(bounds)
	sel := target.NewSelector(w, faction.NewDefault(0, 0), time.Nanosecond)
	bus := event.NewBus()
	anim := &recordingAnimator{}

	env := &Env{Targets: sel, World: w, Animator: anim, Bus: bus}
	return &harness{
		t:     t,
		pool:  pool.New(16),
		world: w,
		sel:   sel,
		bus:   bus,
		anim:  anim,
		tm:    NewTickManager(env, 1),
	}
}

// scenarioConfig: attackRange 60, detection 200, pursuit 300, returnDistance 200.
func scenarioConfig() *model.AgentConfig {
	return &model.AgentConfig{
		Species:              "goblin",
		DetectionRange:       200,
		AttackRange:          60,
		PursuitRange:         300,
		ReturnDistance:       200,
		MoveSpeed:            100,
		ChaseSpeedMultiplier: 1.5,
		AttackInterval:       time.Second,
		BaseHealth:           100,
		AttackDamage:         10,
	}
}

func (h *harness) spawn(cfg *model.AgentConfig, f model.Faction, origin model.Vec) (pool.Handle, *agent.Agent, *Controller) {
	h.t.Helper()
	handle, ok := h.pool.Acquire(cfg.Species)
	require.True(h.t, ok)
	a, ok := h.pool.Get(handle)
	require.True(h.t, ok)

	a.Activate(handle.EntityID(), cfg, f, origin, "test")
	require.NoError(h.t, h.world.Add(a))
	c := h.tm.Register(handle, a)
	return handle, a, c
}

func (h *harness) addPlayer(id model.EntityID, pos model.Vec) *world.Player {
	h.t.Helper()
	p := world.NewPlayer(id, "hero", pos, 100, 100)
	require.NoError(h.t, h.world.Add(p))
	return p
}

func (h *harness) tick(dt time.Duration) {
	h.now += dt
	h.tm.TickAll(h.now, dt)
}
