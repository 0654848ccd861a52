// Package faction resolves which factions may fight each other.
package faction

import (
	"fmt"
	"math"
	"slices"

	"github.com/udisondev/horde/internal/model"
)

// Registry holds the symmetric adversary relation and the side-of-midline
// classification fallback.
type Registry struct {
	adversaries map[model.Faction]map[model.Faction]struct{}

	hasMidline bool
	midline    float64
	deadZone   float64
}

// NewRegistry creates an empty registry without a midline.
func NewRegistry() *Registry {
	return &Registry{
		adversaries: make(map[model.Faction]map[model.Faction]struct{}),
	}
}

// NewDefault declares Player against both enemy sides and the sides against
// each other, with the classification midline at x.
func NewDefault(midline, deadZone float64) *Registry {
	r := NewRegistry()
	// cannot fail: fixed non-None, non-self pairs
	_ = r.Declare(model.FactionPlayer, model.FactionEnemyLeft, model.FactionEnemyRight)
	_ = r.Declare(model.FactionEnemyLeft, model.FactionEnemyRight)
	r.SetMidline(midline, deadZone)
	return r
}

// Declare registers f and marks it hostile to every listed faction, both ways.
func (r *Registry) Declare(f model.Faction, adversaries ...model.Faction) error {
	if f == model.FactionNone {
		return fmt.Errorf("declaring faction: none cannot be declared")
	}
	r.ensure(f)
	for _, other := range adversaries {
		if other == model.FactionNone {
			return fmt.Errorf("declaring %s: none cannot be an adversary", f)
		}
		if other == f {
			return fmt.Errorf("declaring %s: faction cannot be its own adversary", f)
		}
		r.ensure(other)
		r.adversaries[f][other] = struct{}{}
		r.adversaries[other][f] = struct{}{}
	}
	return nil
}

func (r *Registry) ensure(f model.Faction) {
	if _, ok := r.adversaries[f]; !ok {
		r.adversaries[f] = make(map[model.Faction]struct{})
	}
}

// AdversariesOf returns the sorted adversary set of f.
// Empty for None and undeclared factions.
func (r *Registry) AdversariesOf(f model.Faction) []model.Faction {
	set, ok := r.adversaries[f]
	if !ok || len(set) == 0 {
		return nil
	}
	out := make([]model.Faction, 0, len(set))
	for other := range set {
		out = append(out, other)
	}
	slices.Sort(out)
	return out
}

// IsAdversary reports whether a and b are hostile.
func (r *Registry) IsAdversary(a, b model.Faction) bool {
	if a == model.FactionNone || b == model.FactionNone {
		return false
	}
	_, ok := r.adversaries[a][b]
	return ok
}

// SetMidline enables the spatial fallback: x < midline is EnemyLeft,
// x > midline is EnemyRight, within deadZone of it is unclassified.
func (r *Registry) SetMidline(x, deadZone float64) {
	r.hasMidline = true
	r.midline = x
	r.deadZone = math.Abs(deadZone)
}

// Classify returns the faction of an entity: an explicit tag wins,
// otherwise the side of the midline. Ambiguous entities get None.
func (r *Registry) Classify(tag model.Faction, pos model.Vec) model.Faction {
	if tag != model.FactionNone {
		return tag
	}
	if !r.hasMidline {
		return model.FactionNone
	}
	offset := pos.X - r.midline
	switch {
	case math.Abs(offset) <= r.deadZone:
		return model.FactionNone
	case offset < 0:
		return model.FactionEnemyLeft
	default:
		return model.FactionEnemyRight
	}
}
