package ai

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/looplab/fsm"
	"github.com/ojrac/opensimplex-go"

	"github.com/udisondev/horde/internal/event"
	"github.com/udisondev/horde/internal/model"
	"github.com/udisondev/horde/internal/pool"
)

// TargetFinder is the target query side used by controllers.
type TargetFinder interface {
	BeginTick(now time.Duration)
	FindBestTarget(pos model.Vec, mine model.Faction, detectionRange float64) (model.TargetInfo, bool)
	Validate(id model.EntityID, mine model.Faction) (model.Targetable, bool)
}

// Victims resolves damage receivers and keeps movement inside the world.
type Victims interface {
	Damageable(id model.EntityID) (model.Damageable, bool)
	Clamp(p model.Vec) model.Vec
}

// Animator plays fire-and-forget cues.
type Animator interface {
	PlayAnimation(id model.EntityID, cue model.Cue)
}

// Env holds what every controller shares. Animator, Bus and Noise may be nil.
type Env struct {
	Targets  TargetFinder
	World    Victims
	Animator Animator
	Bus      *event.Bus
	Noise    opensimplex.Noise
}

// Frame is the per-batch input of a controller tick.
type Frame struct {
	Now      time.Duration
	DT       time.Duration
	Peaceful bool
}

// arriveEpsilon is how close counts as "arrived" for return and patrol.
const arriveEpsilon = 0.5

// Controller is the state machine of one agent.
// It is bound to a pool slot and rebound when the slot is reused.
type Controller struct {
	handle  pool.Handle
	body    model.AIControllable
	env     *Env
	machine *fsm.FSM

	running     bool
	primed      bool
	now         time.Duration
	transitions int
}

// NewController creates a controller for body.
func NewController(h pool.Handle, body model.AIControllable, env *Env) *Controller {
	c := &Controller{env: env}
	c.machine = newMachine(c.applyEntry)
	c.bind(h, body)
	return c
}

func (c *Controller) bind(h pool.Handle, body model.AIControllable) {
	c.handle = h
	c.body = body
	c.transitions = 0
}

// Handle returns the pool handle the controller drives
func (c *Controller) Handle() pool.Handle { return c.handle }

// Start syncs the machine with the agent runtime and starts ticking.
func (c *Controller) Start() {
	c.machine.SetState(c.body.Runtime().State.String())
	c.running = true
	c.primed = false

	if IsDebugEnabled() {
		slog.Debug("AI controller started",
			"agent", c.body.ID(),
			"state", c.body.Runtime().State)
	}
}

// Stop stops ticking.
func (c *Controller) Stop() {
	c.running = false
}

// Running reports whether the controller is ticking.
func (c *Controller) Running() bool { return c.running }

// CurrentState returns the agent state
func (c *Controller) CurrentState() model.AIState {
	return c.body.Runtime().State
}

// IsAlive reports whether the agent is alive
func (c *Controller) IsAlive() bool {
	return c.body.IsAlive()
}

// Transitions returns how many state changes happened since binding.
func (c *Controller) Transitions() int {
	return c.transitions
}

// SetTarget overrides the held target. NoEntity clears it.
// The reference is re-validated on the next tick.
func (c *Controller) SetTarget(id model.EntityID) {
	c.body.Runtime().Target = id
}

// ForceState puts the agent into s, bypassing the priority order.
// The transition table still applies: nothing leaves Dead.
func (c *Controller) ForceState(s model.AIState) error {
	if err := c.transition(s); err != nil {
		return fmt.Errorf("forcing %s: %w", s, err)
	}
	return nil
}

// Tick runs one decide+execute step.
func (c *Controller) Tick(f Frame) {
	if !c.running {
		return
	}
	c.now = f.Now

	rt := c.body.Runtime()
	if !c.primed {
		rt.StateEntered = f.Now
		c.primed = true
	}
	if rt.State == model.StateDead {
		return
	}

	cfg := c.body.Config()
	if cfg == nil {
		if IsDebugEnabled() {
			slog.Debug("AI tick skipped", "agent", c.body.ID(), "err", model.ErrConfigMissing)
		}
		return
	}

	d := c.decide(f, cfg, rt)
	c.enter(d.state)
	c.execute(f, cfg, rt, d)
}

// decision is the outcome of the priority check.
type decision struct {
	state    model.AIState
	target   model.Targetable
	distance float64
}

// decide evaluates the conditions in priority order; the first satisfied wins.
func (c *Controller) decide(f Frame, cfg *model.AgentConfig, rt *model.AgentRuntime) decision {
	if !c.body.IsAlive() {
		return decision{state: model.StateDead}
	}

	if rt.State == model.StateHurt && rt.TimeInState(f.Now) < cfg.HurtDuration {
		rt.PendingHurt = false
		return decision{state: model.StateHurt}
	}
	if rt.PendingHurt {
		rt.PendingHurt = false
		if cfg.HurtDuration > 0 {
			if rt.State == model.StateHurt {
				rt.StateEntered = f.Now
			}
			return decision{state: model.StateHurt}
		}
	}

	pos := c.body.Position()
	distSpawn := pos.Distance(rt.SpawnOrigin)

	if tgt := c.resolveTarget(f, cfg, rt, pos); tgt != nil {
		dist := pos.Distance(tgt.Position())

		if dist <= cfg.AttackRange &&
			(rt.State == model.StateAttacking || rt.CooldownElapsed(f.Now, cfg.AttackInterval)) {
			return decision{state: model.StateAttacking, target: tgt, distance: dist}
		}
		if dist <= cfg.DetectionRange && distSpawn <= cfg.ReturnDistance {
			return decision{state: model.StateChasing, target: tgt, distance: dist}
		}
		if dist > cfg.PursuitRange {
			rt.Target = model.NoEntity
			return decision{state: model.StateReturning}
		}
	}

	if distSpawn > cfg.ReturnDistance {
		return decision{state: model.StateReturning}
	}

	if rt.State == model.StatePatrol && rt.HasWaypoint {
		return decision{state: model.StatePatrol}
	}
	if rt.State == model.StateIdle && cfg.PatrolRadius > 0 && rt.TimeInState(f.Now) >= cfg.MaxIdleTime {
		return decision{state: model.StatePatrol}
	}
	return decision{state: model.StateIdle}
}

// resolveTarget re-validates the held target or acquires a new one.
// In peaceful mode agents hold no targets.
func (c *Controller) resolveTarget(f Frame, cfg *model.AgentConfig, rt *model.AgentRuntime, pos model.Vec) model.Targetable {
	if f.Peaceful {
		rt.Target = model.NoEntity
		return nil
	}

	mine := c.body.Faction()
	if rt.Target != model.NoEntity {
		if tgt, ok := c.env.Targets.Validate(rt.Target, mine); ok {
			return tgt
		}
		if IsDebugEnabled() {
			slog.Debug("held target dropped",
				"agent", c.body.ID(),
				"target", rt.Target,
				"err", model.ErrInvalidTarget)
		}
		rt.Target = model.NoEntity
	}

	info, ok := c.env.Targets.FindBestTarget(pos, mine, cfg.DetectionRange)
	if !ok {
		return nil
	}
	tgt, ok := c.env.Targets.Validate(info.Ref, mine)
	if !ok {
		return nil
	}
	rt.Target = info.Ref

	if IsDebugEnabled() {
		slog.Debug("target acquired",
			"agent", c.body.ID(),
			"target", info.Ref,
			"distance", info.Distance,
			"score", info.Score)
	}
	return tgt
}

// enter performs the decided transition. A rejected one keeps the current state.
func (c *Controller) enter(next model.AIState) {
	if err := c.transition(next); err != nil {
		slog.Warn("AI transition rejected",
			"agent", c.body.ID(),
			"err", err)
	}
}

// transition fires next on the machine; its enter callback runs applyEntry.
// The machine is resynced from the runtime state first.
func (c *Controller) transition(next model.AIState) error {
	prev := c.body.Runtime().State
	if next == prev {
		return nil
	}
	if c.machine.Current() != prev.String() {
		c.machine.SetState(prev.String())
	}
	return fire(c.machine, prev, next)
}

// applyEntry updates the runtime and emits entry cues.
// Called from the machine's enter_state callback.
func (c *Controller) applyEntry(prev, next model.AIState) {
	rt := c.body.Runtime()
	rt.State = next
	rt.StateEntered = c.now
	c.transitions++

	if prev == model.StatePatrol {
		rt.HasWaypoint = false
	}

	switch next {
	case model.StateIdle:
		c.play(model.CueIdle)
	case model.StatePatrol:
		rt.Waypoint = c.pickWaypoint(rt)
		rt.HasWaypoint = true
		c.play(model.CueWalk)
	case model.StateChasing:
		c.play(model.CueRun)
	case model.StateReturning:
		c.play(model.CueWalk)
	case model.StateHurt:
		c.play(model.CueHurt)
	case model.StateDead:
		rt.Target = model.NoEntity
		rt.PendingHurt = false
		c.play(model.CueDeath)
		c.publishDeath()
	}

	if IsDebugEnabled() {
		slog.Debug("AI state changed",
			"agent", c.body.ID(),
			"from", prev,
			"to", next)
	}
}

func (c *Controller) execute(f Frame, cfg *model.AgentConfig, rt *model.AgentRuntime, d decision) {
	switch d.state {
	case model.StateAttacking:
		c.attack(f, cfg, rt, d)
	case model.StateChasing:
		step := cfg.ChaseSpeed() * f.DT.Seconds()
		c.moveTowards(d.target.Position(), min(step, d.distance-cfg.AttackRange))
	case model.StateReturning:
		c.moveTowards(rt.SpawnOrigin, cfg.MoveSpeed*f.DT.Seconds())
	case model.StatePatrol:
		c.moveTowards(rt.Waypoint, cfg.MoveSpeed*f.DT.Seconds())
		if c.body.Position().Distance(rt.Waypoint) <= arriveEpsilon {
			rt.HasWaypoint = false
		}
	}
}

// attack faces the target and swings when the cooldown allows.
func (c *Controller) attack(f Frame, cfg *model.AgentConfig, rt *model.AgentRuntime, d decision) {
	pos := c.body.Position()
	c.body.SetFacing(model.FacingFor(d.target.Position().Sub(pos), c.body.Facing()))

	if !rt.CooldownElapsed(f.Now, cfg.AttackInterval) {
		return
	}

	victim, ok := c.env.World.Damageable(d.target.ID())
	if !ok {
		rt.Target = model.NoEntity
		return
	}

	killed := victim.ApplyDamage(cfg.AttackDamage)
	rt.LastAttack = f.Now
	rt.HasAttacked = true
	c.play(cfg.AttackCue(d.distance))

	if c.env.Bus != nil {
		c.env.Bus.Publish(event.TopicDamageApplied, event.DamageApplied{
			Attacker: c.body.ID(),
			Target:   d.target.ID(),
			Amount:   cfg.AttackDamage,
			Killed:   killed,
		})
	}
	if killed {
		rt.Target = model.NoEntity
	}
}

// moveTowards steps toward dest by at most step units, inside the world.
func (c *Controller) moveTowards(dest model.Vec, step float64) {
	if step <= 0 {
		return
	}
	pos := c.body.Position()
	next := c.env.World.Clamp(model.MoveTowards(pos, dest, step))
	c.body.SetFacing(model.FacingFor(next.Sub(pos), c.body.Facing()))
	c.body.SetPosition(next)
}

// pickWaypoint samples a wander point within patrolRadius of spawn from
// simplex noise, so neighbouring agents drift differently but smoothly.
func (c *Controller) pickWaypoint(rt *model.AgentRuntime) model.Vec {
	cfg := c.body.Config()
	if cfg == nil || cfg.PatrolRadius <= 0 {
		return rt.SpawnOrigin
	}
	t := c.now.Seconds()*0.25 + float64(c.handle.Index)*7.31
	var a, r float64
	if c.env.Noise != nil {
		a = c.env.Noise.Eval2(t, 0.5)
		r = c.env.Noise.Eval2(0.5, t)
	} else {
		a, r = 0.5, 0.5
	}
	offset := cp.ForAngle(a * 2 * math.Pi).Mult(math.Sqrt(r) * cfg.PatrolRadius)
	return c.env.World.Clamp(rt.SpawnOrigin.Add(offset))
}

func (c *Controller) play(cue model.Cue) {
	if c.env.Animator != nil {
		c.env.Animator.PlayAnimation(c.body.ID(), cue)
	}
}

func (c *Controller) publishDeath() {
	if c.env.Bus == nil {
		return
	}
	species := ""
	if cfg := c.body.Config(); cfg != nil {
		species = cfg.Species
	}
	c.env.Bus.Publish(event.TopicAgentDeath, event.AgentDeath{
		ID:       c.body.ID(),
		Species:  species,
		ZoneID:   c.body.Runtime().ZoneID,
		Position: c.body.Position(),
	})
}
