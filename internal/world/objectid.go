package world

import (
	"sync/atomic"

	"github.com/udisondev/horde/internal/model"
)

// PlayerIDBase is the first player ID. Player IDs stay below 1<<32 so
// they never collide with pool-issued agent IDs.
const PlayerIDBase = 0x10000000

// IDGenerator issues player entity IDs.
type IDGenerator struct {
	next atomic.Uint32
}

// NewIDGenerator creates a generator starting at PlayerIDBase.
func NewIDGenerator() *IDGenerator {
	g := &IDGenerator{}
	g.next.Store(PlayerIDBase)
	return g
}

// NextPlayerID returns a fresh player ID.
// Thread-safe via atomic increment.
func (g *IDGenerator) NextPlayerID() model.EntityID {
	return model.EntityID(g.next.Add(1))
}
