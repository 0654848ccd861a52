package world

import (
	"fmt"
	"slices"

	"github.com/udisondev/horde/internal/model"
)

// World is the registry of live targetable entities (players and agents)
// plus the playable bounds. Entities are iterated in insertion order.
//
// Not safe for concurrent use: only the tick loop touches it.
type World struct {
	bounds   model.Bounds
	entities map[model.EntityID]model.Targetable
	order    []model.EntityID
}

// New creates an empty world with the given bounds (zero Bounds = unbounded).
func New(bounds model.Bounds) *World {
	return &World{
		bounds:   bounds,
		entities: make(map[model.EntityID]model.Targetable),
	}
}

// Bounds returns the playable rectangle
func (w *World) Bounds() model.Bounds {
	return w.bounds
}

// Clamp moves p inside the world bounds.
func (w *World) Clamp(p model.Vec) model.Vec {
	return model.ClampToBounds(w.bounds, p)
}

// Add registers an entity.
// Returns error if the ID is empty or already registered.
func (w *World) Add(e model.Targetable) error {
	id := e.ID()
	if id == model.NoEntity {
		return fmt.Errorf("adding entity: empty id")
	}
	if _, exists := w.entities[id]; exists {
		return fmt.Errorf("adding entity %d: already registered", id)
	}
	w.entities[id] = e
	w.order = append(w.order, id)
	return nil
}

// Remove unregisters an entity. Returns false if it was not registered.
func (w *World) Remove(id model.EntityID) bool {
	if _, ok := w.entities[id]; !ok {
		return false
	}
	delete(w.entities, id)
	if i := slices.Index(w.order, id); i >= 0 {
		w.order = slices.Delete(w.order, i, i+1)
	}
	return true
}

// Get returns entity by ID
func (w *World) Get(id model.EntityID) (model.Targetable, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Damageable returns the entity as a damage receiver, if it is one.
func (w *World) Damageable(id model.EntityID) (model.Damageable, bool) {
	e, ok := w.entities[id]
	if !ok {
		return nil, false
	}
	d, ok := e.(model.Damageable)
	return d, ok
}

// ForEach calls fn for every entity in insertion order until fn returns false.
func (w *World) ForEach(fn func(model.Targetable) bool) {
	for _, id := range w.order {
		if !fn(w.entities[id]) {
			return
		}
	}
}

// Len returns number of registered entities
func (w *World) Len() int {
	return len(w.entities)
}
