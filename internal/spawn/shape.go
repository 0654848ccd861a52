package spawn

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/udisondev/horde/internal/model"
)

// samplePosition picks a spawn point inside the zone shape (unclamped).
// Circles sample radius and angle uniformly, which biases points toward the centre.
func (c *Coordinator) samplePosition() model.Vec {
	z := &c.zone
	switch z.Shape {
	case model.ShapeCircle:
		angle := c.rng.Float64() * 2 * math.Pi
		r := c.rng.Float64() * z.Radius
		return z.Origin.Add(cp.ForAngle(angle).Mult(r))
	case model.ShapeRectangle:
		dx := (c.rng.Float64()*2 - 1) * z.HalfExtents.X
		dy := (c.rng.Float64()*2 - 1) * z.HalfExtents.Y
		return z.Origin.Add(model.Vec{X: dx, Y: dy})
	default:
		return z.Origin
	}
}
