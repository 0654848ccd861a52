package world

import (
	"github.com/udisondev/horde/internal/model"
)

// Player is an input-driven entity. Agents fight players through the
// same capability interfaces they use against each other.
type Player struct {
	id       model.EntityID
	name     string
	position model.Vec
	facing   model.Facing
	health   float64
	maxHP    float64
	speed    float64

	intent    model.Vec
	hasIntent bool
}

// NewPlayer creates a player at position with full health.
func NewPlayer(id model.EntityID, name string, position model.Vec, maxHP, speed float64) *Player {
	return &Player{
		id:       id,
		name:     name,
		position: position,
		health:   maxHP,
		maxHP:    maxHP,
		speed:    speed,
	}
}

func (p *Player) ID() model.EntityID       { return p.id }
func (p *Player) Name() string             { return p.name }
func (p *Player) Faction() model.Faction   { return model.FactionPlayer }
func (p *Player) Rank() model.Rank         { return model.RankPlayer }
func (p *Player) Position() model.Vec      { return p.position }
func (p *Player) SetPosition(v model.Vec)  { p.position = v }
func (p *Player) Facing() model.Facing     { return p.facing }
func (p *Player) SetFacing(f model.Facing) { p.facing = f }
func (p *Player) Health() float64          { return p.health }
func (p *Player) IsAlive() bool            { return p.health > 0 }

// HealthRatio returns health/maxHealth in [0, 1].
func (p *Player) HealthRatio() float64 {
	if p.maxHP <= 0 {
		return 0
	}
	return max(p.health, 0) / p.maxHP
}

// ApplyDamage subtracts health. Returns true on the killing blow.
func (p *Player) ApplyDamage(amount float64) bool {
	if !p.IsAlive() || amount <= 0 {
		return false
	}
	p.health -= amount
	if p.health <= 0 {
		p.health = 0
		return true
	}
	return false
}

// Heal restores health up to the maximum.
func (p *Player) Heal(amount float64) {
	if !p.IsAlive() {
		return
	}
	p.health = min(p.health+amount, p.maxHP)
}

// SetIntent queues a movement direction for the next input phase.
// A zero vector stops the player.
func (p *Player) SetIntent(dir model.Vec) {
	p.intent = dir
	p.hasIntent = dir.X != 0 || dir.Y != 0
}

// ApplyIntent moves the player along its queued direction for dt seconds,
// clamped by clamp. Dead players do not move.
func (p *Player) ApplyIntent(dt float64, clamp func(model.Vec) model.Vec) {
	if !p.hasIntent || !p.IsAlive() || dt <= 0 {
		return
	}
	step := p.intent.Normalize().Mult(p.speed * dt)
	p.facing = model.FacingFor(step, p.facing)
	p.position = clamp(p.position.Add(step))
}

var (
	_ model.Targetable   = (*Player)(nil)
	_ model.Damageable   = (*Player)(nil)
	_ model.Controllable = (*Player)(nil)
)
