package model

import "time"

// Positioned is anything with an identity and a place in the world.
type Positioned interface {
	ID() EntityID
	Position() Vec
	Faction() Faction
}

// Targetable can be picked by the target selector.
type Targetable interface {
	Positioned
	IsAlive() bool
	HealthRatio() float64
	Rank() Rank
}

// Damageable takes damage. ApplyDamage only mutates health and flags;
// it must never run AI logic.
type Damageable interface {
	ApplyDamage(amount float64) (killed bool)
	Health() float64
	IsAlive() bool
}

// Controllable can be moved by a controller or by input.
type Controllable interface {
	Positioned
	SetPosition(Vec)
	Facing() Facing
	SetFacing(Facing)
}

// AIControllable is driven by an AI controller.
type AIControllable interface {
	Controllable
	Damageable
	Config() *AgentConfig
	Runtime() *AgentRuntime
}

// AgentRuntime is the mutable per-instance AI state.
// Reset restores the canonical inactive defaults.
type AgentRuntime struct {
	State        AIState
	StateEntered time.Duration
	Target       EntityID
	SpawnOrigin  Vec
	LastAttack   time.Duration
	HasAttacked  bool
	PendingHurt  bool
	Waypoint     Vec
	HasWaypoint  bool
	ZoneID       string
}

// Reset clears every field.
func (r *AgentRuntime) Reset() {
	*r = AgentRuntime{}
}

// CooldownElapsed reports whether a new swing is allowed at now.
func (r *AgentRuntime) CooldownElapsed(now, interval time.Duration) bool {
	return !r.HasAttacked || now-r.LastAttack >= interval
}

// TimeInState returns how long the agent has been in its current state.
func (r *AgentRuntime) TimeInState(now time.Duration) time.Duration {
	return now - r.StateEntered
}
