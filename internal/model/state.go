package model

import "fmt"

// AIState is the behaviour state of an agent.
type AIState uint8

const (
	// StateIdle - agent stands at its post, waiting for maxIdleTime before patrolling
	StateIdle AIState = iota
	// StatePatrol - agent wanders toward a point within patrolRadius of its spawn
	StatePatrol
	// StateChasing - agent runs straight at its target
	StateChasing
	// StateAttacking - target is in attack range; agent swings when the cooldown allows
	StateAttacking
	// StateReturning - agent walks back to its spawn origin
	StateReturning
	// StateHurt - agent was hit and is staggered for hurtDuration
	StateHurt
	// StateDead - terminal; the slot is released once the death animation finishes
	StateDead
)

// AllStates lists every state in declaration order.
var AllStates = []AIState{
	StateIdle,
	StatePatrol,
	StateChasing,
	StateAttacking,
	StateReturning,
	StateHurt,
	StateDead,
}

// String returns human-readable state name
func (s AIState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePatrol:
		return "patrol"
	case StateChasing:
		return "chasing"
	case StateAttacking:
		return "attacking"
	case StateReturning:
		return "returning"
	case StateHurt:
		return "hurt"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// ParseState converts a state name back into an AIState.
func ParseState(name string) (AIState, error) {
	for _, s := range AllStates {
		if s.String() == name {
			return s, nil
		}
	}
	return StateIdle, fmt.Errorf("unknown AI state %q", name)
}
