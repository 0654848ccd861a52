package model

import (
	"fmt"
	"strings"
)

// EntityID identifies a live entity (player or pooled agent).
// Agent IDs embed the pool slot generation, so an ID held past a recycle
// no longer resolves. Zero means "no entity".
type EntityID uint64

// NoEntity is the zero EntityID.
const NoEntity EntityID = 0

// Rank is the threat class of an entity; it feeds the target type bonus.
type Rank uint8

const (
	RankNormal Rank = iota
	RankElite
	RankBoss
	RankPlayer
)

// String returns human-readable rank name
func (r Rank) String() string {
	switch r {
	case RankNormal:
		return "normal"
	case RankElite:
		return "elite"
	case RankBoss:
		return "boss"
	case RankPlayer:
		return "player"
	default:
		return "unknown"
	}
}

// TypeBonus returns the target priority bonus: player > boss > elite > normal.
func (r Rank) TypeBonus() float64 {
	switch r {
	case RankPlayer:
		return 40
	case RankBoss:
		return 30
	case RankElite:
		return 15
	default:
		return 0
	}
}

// ParseRank converts a rank name into a Rank. Empty string is RankNormal.
func ParseRank(name string) (Rank, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "normal":
		return RankNormal, nil
	case "elite":
		return RankElite, nil
	case "boss":
		return RankBoss, nil
	case "player":
		return RankPlayer, nil
	default:
		return RankNormal, fmt.Errorf("unknown rank %q", name)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Mode is the global game mode broadcast on mode.changed.
type Mode string

const (
	// ModeNormal - everything runs
	ModeNormal Mode = "normal"
	// ModePaused - AI and spawning are frozen
	ModePaused Mode = "paused"
	// ModePeaceful - spawning suspended, agents drop targets and go home
	ModePeaceful Mode = "peaceful"
)

// Cue names an animation or sound cue sent to the asset host.
type Cue string

const (
	CueIdle         Cue = "idle"
	CueWalk         Cue = "walk"
	CueRun          Cue = "run"
	CueAttackMelee  Cue = "attack_melee"
	CueAttackRanged Cue = "attack_ranged"
	CueHurt         Cue = "hurt"
	CueDeath        Cue = "death"
)

// OneShot reports whether a cue plays once and reports completion.
func (c Cue) OneShot() bool {
	switch c {
	case CueAttackMelee, CueAttackRanged, CueHurt, CueDeath:
		return true
	default:
		return false
	}
}
