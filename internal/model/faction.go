package model

import (
	"fmt"
	"strings"
)

// Faction is the allegiance group of an entity.
// FactionNone entities are never targeted and never target anything.
type Faction uint8

const (
	FactionNone Faction = iota
	FactionPlayer
	FactionEnemyLeft
	FactionEnemyRight
)

// String returns human-readable faction name
func (f Faction) String() string {
	switch f {
	case FactionNone:
		return "none"
	case FactionPlayer:
		return "player"
	case FactionEnemyLeft:
		return "enemy_left"
	case FactionEnemyRight:
		return "enemy_right"
	default:
		return "unknown"
	}
}

// ParseFaction converts a faction name (case-insensitive) into a Faction.
// Empty string is FactionNone.
func ParseFaction(name string) (Faction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return FactionNone, nil
	case "player":
		return FactionPlayer, nil
	case "enemy_left", "left":
		return FactionEnemyLeft, nil
	case "enemy_right", "right":
		return FactionEnemyRight, nil
	default:
		return FactionNone, fmt.Errorf("unknown faction %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Faction) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used by YAML content files).
func (f *Faction) UnmarshalText(text []byte) error {
	parsed, err := ParseFaction(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
