// Package agent holds the pooled combat entity driven by the AI.
package agent

import (
	"github.com/udisondev/horde/internal/model"
)

// Agent is one pooled enemy instance.
// Owned by its pool slot; everyone else refers to it by EntityID.
type Agent struct {
	id      model.EntityID
	species string
	config  *model.AgentConfig
	faction model.Faction
	active  bool

	position model.Vec
	facing   model.Facing
	health   float64
	maxHP    float64

	runtime model.AgentRuntime
}

// New creates an inactive agent of a species.
func New(species string) *Agent {
	return &Agent{species: species}
}

// Activate attaches identity, config and faction and places the agent at its spawn origin.
func (a *Agent) Activate(id model.EntityID, cfg *model.AgentConfig, faction model.Faction, origin model.Vec, zoneID string) {
	a.id = id
	a.config = cfg
	a.faction = faction
	a.active = true
	a.position = origin
	a.facing = model.FacingRight
	a.maxHP = cfg.BaseHealth
	a.health = cfg.BaseHealth

	a.runtime.Reset()
	a.runtime.SpawnOrigin = origin
	a.runtime.ZoneID = zoneID
}

// Reset restores canonical inactive defaults. Species is kept: the slot belongs to it.
func (a *Agent) Reset() {
	species := a.species
	*a = Agent{species: species}
}

// ID returns entity ID (NoEntity while inactive)
func (a *Agent) ID() model.EntityID { return a.id }

// Species returns species key
func (a *Agent) Species() string { return a.species }

// Active reports whether the agent is attached to a live slot.
func (a *Agent) Active() bool { return a.active }

// Config returns the species config the agent was spawned with.
func (a *Agent) Config() *model.AgentConfig { return a.config }

// Faction returns agent faction
func (a *Agent) Faction() model.Faction { return a.faction }

// Rank returns threat class from config
func (a *Agent) Rank() model.Rank {
	if a.config == nil {
		return model.RankNormal
	}
	return a.config.Rank
}

// Position returns current position
func (a *Agent) Position() model.Vec { return a.position }

// SetPosition moves the agent
func (a *Agent) SetPosition(p model.Vec) { a.position = p }

// Facing returns sprite facing
func (a *Agent) Facing() model.Facing { return a.facing }

// SetFacing sets sprite facing
func (a *Agent) SetFacing(f model.Facing) { a.facing = f }

// Health returns current health
func (a *Agent) Health() float64 { return a.health }

// MaxHealth returns health at spawn
func (a *Agent) MaxHealth() float64 { return a.maxHP }

// HealthRatio returns health/maxHealth in [0, 1].
func (a *Agent) HealthRatio() float64 {
	if a.maxHP <= 0 {
		return 0
	}
	r := a.health / a.maxHP
	if r < 0 {
		return 0
	}
	return r
}

// IsAlive reports whether the agent is active with positive health.
func (a *Agent) IsAlive() bool {
	return a.active && a.health > 0
}

// Runtime returns mutable AI state
func (a *Agent) Runtime() *model.AgentRuntime { return &a.runtime }

// ApplyDamage subtracts health and flags a pending hurt reaction.
// Damage to a dead or inactive agent is ignored. Returns true on the killing blow.
func (a *Agent) ApplyDamage(amount float64) bool {
	if !a.IsAlive() || amount <= 0 {
		return false
	}

	a.health -= amount
	if a.config != nil && a.config.HurtDuration > 0 {
		a.runtime.PendingHurt = true
	}
	if a.health <= 0 {
		a.health = 0
		return true
	}
	return false
}

var _ model.AIControllable = (*Agent)(nil)
var _ model.Targetable = (*Agent)(nil)
