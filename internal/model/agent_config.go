package model

import (
	"fmt"
	"strings"
	"time"
)

// BehaviorType selects which attack cue an agent plays.
type BehaviorType uint8

const (
	BehaviorMelee BehaviorType = iota
	BehaviorRanged
	BehaviorMixed
)

// String returns human-readable behavior name
func (b BehaviorType) String() string {
	switch b {
	case BehaviorMelee:
		return "melee"
	case BehaviorRanged:
		return "ranged"
	case BehaviorMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// ParseBehaviorType converts a behavior name into a BehaviorType. Empty is melee.
func ParseBehaviorType(name string) (BehaviorType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "melee":
		return BehaviorMelee, nil
	case "ranged":
		return BehaviorRanged, nil
	case "mixed":
		return BehaviorMixed, nil
	default:
		return BehaviorMelee, fmt.Errorf("unknown behavior type %q", name)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BehaviorType) UnmarshalText(text []byte) error {
	parsed, err := ParseBehaviorType(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b BehaviorType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// AgentConfig holds the tuning of one species.
// Shared by every agent of the species and never mutated after load:
// agents keep a pointer, a content reload publishes new pointers.
type AgentConfig struct {
	Species string `yaml:"species"`
	Rank    Rank   `yaml:"rank"`

	DetectionRange       float64 `yaml:"detection_range"`
	AttackRange          float64 `yaml:"attack_range"`
	PursuitRange         float64 `yaml:"pursuit_range"`
	ReturnDistance       float64 `yaml:"return_distance"`
	PatrolRadius         float64 `yaml:"patrol_radius"`
	MoveSpeed            float64 `yaml:"move_speed"` // units per second
	ChaseSpeedMultiplier float64 `yaml:"chase_speed_multiplier"`

	AttackInterval time.Duration `yaml:"attack_interval"`
	MaxIdleTime    time.Duration `yaml:"max_idle_time"`
	HurtDuration   time.Duration `yaml:"hurt_duration"`

	Behavior     BehaviorType `yaml:"behavior"`
	BaseHealth   float64      `yaml:"base_health"`
	AttackDamage float64      `yaml:"attack_damage"`
}

// ChaseSpeed returns moveSpeed × chaseSpeedMultiplier.
// A zero multiplier means "same as walking".
func (c *AgentConfig) ChaseSpeed() float64 {
	if c.ChaseSpeedMultiplier <= 0 {
		return c.MoveSpeed
	}
	return c.MoveSpeed * c.ChaseSpeedMultiplier
}

// AttackCue picks the attack cue for a swing at the given distance.
// Mixed fighters shoot beyond half their attack range.
func (c *AgentConfig) AttackCue(distance float64) Cue {
	switch c.Behavior {
	case BehaviorRanged:
		return CueAttackRanged
	case BehaviorMixed:
		if distance > c.AttackRange/2 {
			return CueAttackRanged
		}
		return CueAttackMelee
	default:
		return CueAttackMelee
	}
}

// Validate checks that ranges are consistent.
func (c *AgentConfig) Validate() error {
	if c.Species == "" {
		return fmt.Errorf("agent config: species is empty")
	}
	if c.BaseHealth <= 0 {
		return fmt.Errorf("agent config %q: base_health must be positive, got %v", c.Species, c.BaseHealth)
	}
	if c.DetectionRange < 0 || c.AttackRange < 0 || c.PursuitRange < 0 || c.ReturnDistance < 0 || c.PatrolRadius < 0 {
		return fmt.Errorf("agent config %q: ranges must not be negative", c.Species)
	}
	if c.AttackRange > c.DetectionRange {
		return fmt.Errorf("agent config %q: attack_range %v exceeds detection_range %v",
			c.Species, c.AttackRange, c.DetectionRange)
	}
	if c.MoveSpeed < 0 || c.ChaseSpeedMultiplier < 0 || c.AttackDamage < 0 {
		return fmt.Errorf("agent config %q: speed and damage must not be negative", c.Species)
	}
	if c.AttackInterval < 0 || c.MaxIdleTime < 0 || c.HurtDuration < 0 {
		return fmt.Errorf("agent config %q: durations must not be negative", c.Species)
	}
	return nil
}
