package model

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Vec is a position or displacement in world units.
// Value type, passed by value.
type Vec = cp.Vector

// Bounds is the playable rectangle. A zero Bounds means unbounded.
type Bounds = cp.BB

// NewBounds creates world bounds from min/max corners.
func NewBounds(minX, minY, maxX, maxY float64) Bounds {
	return cp.BB{L: minX, B: minY, R: maxX, T: maxY}
}

// ClampToBounds returns v moved inside b.
func ClampToBounds(b Bounds, v Vec) Vec {
	if b.L == 0 && b.R == 0 && b.B == 0 && b.T == 0 {
		return v
	}
	return Vec{X: cp.Clamp(v.X, b.L, b.R), Y: cp.Clamp(v.Y, b.B, b.T)}
}

// MoveTowards steps from `from` toward `to` by at most step units.
// Never overshoots the destination.
func MoveTowards(from, to Vec, step float64) Vec {
	if step <= 0 {
		return from
	}
	delta := to.Sub(from)
	dist := delta.Length()
	if dist <= step {
		return to
	}
	return from.Add(delta.Mult(step / dist))
}

// Facing is the direction a sprite looks at.
type Facing uint8

const (
	FacingRight Facing = iota
	FacingLeft
	FacingUp
	FacingDown
)

// String returns human-readable facing name
func (f Facing) String() string {
	switch f {
	case FacingRight:
		return "right"
	case FacingLeft:
		return "left"
	case FacingUp:
		return "up"
	case FacingDown:
		return "down"
	default:
		return "unknown"
	}
}

// FacingFor picks facing from the dominant axis of a movement delta.
// Screen space: negative Y is up. A zero delta keeps the current facing.
func FacingFor(delta Vec, current Facing) Facing {
	ax, ay := math.Abs(delta.X), math.Abs(delta.Y)
	if ax == 0 && ay == 0 {
		return current
	}
	if ax >= ay {
		if delta.X < 0 {
			return FacingLeft
		}
		return FacingRight
	}
	if delta.Y < 0 {
		return FacingUp
	}
	return FacingDown
}
