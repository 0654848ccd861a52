package model

import (
	"fmt"
	"strings"
	"time"
)

// ZoneShape is the spatial form of a spawn zone.
type ZoneShape uint8

const (
	ShapePoint ZoneShape = iota
	ShapeCircle
	ShapeRectangle
)

// String returns human-readable shape name
func (s ZoneShape) String() string {
	switch s {
	case ShapePoint:
		return "point"
	case ShapeCircle:
		return "circle"
	case ShapeRectangle:
		return "rectangle"
	default:
		return "unknown"
	}
}

// ParseZoneShape converts a shape name. Empty is point.
func ParseZoneShape(name string) (ZoneShape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "point":
		return ShapePoint, nil
	case "circle":
		return ShapeCircle, nil
	case "rectangle", "rect":
		return ShapeRectangle, nil
	default:
		return ShapePoint, fmt.Errorf("unknown zone shape %q", name)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ZoneShape) UnmarshalText(text []byte) error {
	parsed, err := ParseZoneShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s ZoneShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SpawnEntry describes how one species populates a zone.
type SpawnEntry struct {
	Species        string        `yaml:"species"`
	Count          int           `yaml:"count"`
	MaxAlive       int           `yaml:"max_alive"`
	SpawnInterval  time.Duration `yaml:"spawn_interval"`
	SpawnDelay     time.Duration `yaml:"spawn_delay"`
	RespawnOnDeath bool          `yaml:"respawn_on_death"`
	Faction        Faction       `yaml:"faction"`
}

// BurstSize returns how many agents to spawn when alive are already present.
func (e SpawnEntry) BurstSize(alive int) int {
	n := min(e.Count, e.MaxAlive-alive)
	if n < 0 {
		return 0
	}
	return n
}

// ZoneConfig is a spawn zone of a level.
type ZoneConfig struct {
	ID          string       `yaml:"id"`
	Level       string       `yaml:"level"`
	Shape       ZoneShape    `yaml:"shape"`
	Origin      Vec          `yaml:"origin"`
	Radius      float64      `yaml:"radius"`
	HalfExtents Vec          `yaml:"half_extents"`
	Entries     []SpawnEntry `yaml:"entries"`
}

// Validate checks zone geometry and entries.
func (z *ZoneConfig) Validate() error {
	if z.ID == "" {
		return fmt.Errorf("zone config: id is empty")
	}
	switch z.Shape {
	case ShapeCircle:
		if z.Radius <= 0 {
			return fmt.Errorf("zone %q: circle radius must be positive", z.ID)
		}
	case ShapeRectangle:
		if z.HalfExtents.X < 0 || z.HalfExtents.Y < 0 {
			return fmt.Errorf("zone %q: half extents must not be negative", z.ID)
		}
	}
	for i, e := range z.Entries {
		if e.Species == "" {
			return fmt.Errorf("zone %q entry %d: species is empty", z.ID, i)
		}
		if e.Count <= 0 || e.MaxAlive <= 0 {
			return fmt.Errorf("zone %q entry %q: count and max_alive must be positive", z.ID, e.Species)
		}
		if e.SpawnInterval < 0 || e.SpawnDelay < 0 {
			return fmt.Errorf("zone %q entry %q: durations must not be negative", z.ID, e.Species)
		}
		if e.RespawnOnDeath && e.SpawnInterval == 0 {
			return fmt.Errorf("zone %q entry %q: respawn_on_death needs spawn_interval", z.ID, e.Species)
		}
	}
	return nil
}
