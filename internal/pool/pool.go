// Package pool recycles agent instances per species.
//
// Agents live in a chunked arena so their addresses never move; outside
// code holds a Handle (index, generation) and resolves it through Get.
// Release bumps the slot generation, so handles from an earlier life of
// the slot stop resolving.
//
// The pool is not safe for concurrent use: it is mutated only from the
// tick loop.
package pool

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/horde/internal/agent"
	"github.com/udisondev/horde/internal/model"
)

// chunkSize is the number of slots allocated at once.
const chunkSize = 64

// DefaultMaxSize is used for species without an explicit limit.
const DefaultMaxSize = 32

// Handle references a pooled agent without owning it.
type Handle struct {
	Index uint32
	Gen   uint32
}

// EntityID packs the handle into an entity ID. Generations start at 1,
// so agent IDs never collide with IDs below 1<<32.
func (h Handle) EntityID() model.EntityID {
	return model.EntityID(uint64(h.Gen)<<32 | uint64(h.Index))
}

// HandleFromID unpacks an entity ID produced by Handle.EntityID.
func HandleFromID(id model.EntityID) Handle {
	return Handle{Index: uint32(uint64(id)), Gen: uint32(uint64(id) >> 32)}
}

// String implements fmt.Stringer
func (h Handle) String() string {
	return fmt.Sprintf("%d@%d", h.Index, h.Gen)
}

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool {
	return h.Gen == 0
}

type slot struct {
	agent   agent.Agent
	species string
	gen     uint32
	inUse   bool
}

type speciesState struct {
	free    []uint32
	maxSize int
	size    int
	active  int

	acquireCount int
	releaseCount int
	createCount  int
}

// Stats is a snapshot of one species' pool usage.
type Stats struct {
	Species      string `csv:"species"`
	Size         int    `csv:"size"`
	MaxSize      int    `csv:"max_size"`
	Active       int    `csv:"active"`
	AcquireCount int    `csv:"acquire_count"`
	ReleaseCount int    `csv:"release_count"`
	CreateCount  int    `csv:"create_count"`
}

// AgentPool owns every agent instance.
type AgentPool struct {
	chunks     [][]slot
	count      uint32
	species    map[string]*speciesState
	order      []string
	defaultMax int
}

// New creates a pool. defaultMax <= 0 selects DefaultMaxSize.
func New(defaultMax int) *AgentPool {
	if defaultMax <= 0 {
		defaultMax = DefaultMaxSize
	}
	return &AgentPool{
		species:    make(map[string]*speciesState),
		defaultMax: defaultMax,
	}
}

func (p *AgentPool) state(species string) *speciesState {
	st, ok := p.species[species]
	if !ok {
		st = &speciesState{maxSize: p.defaultMax}
		p.species[species] = st
		p.order = append(p.order, species)
	}
	return st
}

func (p *AgentPool) slotAt(index uint32) *slot {
	if index >= p.count {
		return nil
	}
	return &p.chunks[index/chunkSize][index%chunkSize]
}

func (p *AgentPool) newSlot(species string) uint32 {
	index := p.count
	if index%chunkSize == 0 {
		p.chunks = append(p.chunks, make([]slot, chunkSize))
	}
	p.count++

	s := p.slotAt(index)
	s.species = species
	s.gen = 1
	s.agent = *agent.New(species)
	return index
}

// SetMaxSize sets the species capacity. Lowering it below the active count
// does not evict anyone; new acquires fail until enough are released.
func (p *AgentPool) SetMaxSize(species string, n int) {
	if n < 0 {
		n = 0
	}
	p.state(species).maxSize = n
}

// Acquire hands out a free agent of species, creating one while under
// capacity. Returns false when the species is at its max size.
func (p *AgentPool) Acquire(species string) (Handle, bool) {
	st := p.state(species)
	if st.active >= st.maxSize {
		slog.Debug("agent pool exhausted",
			"species", species,
			"active", st.active,
			"maxSize", st.maxSize,
			"err", model.ErrPoolExhausted)
		return Handle{}, false
	}

	var index uint32
	if n := len(st.free); n > 0 {
		index = st.free[n-1]
		st.free = st.free[:n-1]
	} else {
		index = p.newSlot(species)
		st.size++
		st.createCount++
	}

	s := p.slotAt(index)
	s.inUse = true
	st.active++
	st.acquireCount++

	return Handle{Index: index, Gen: s.gen}, true
}

// Release returns the agent to its free list after resetting it.
// Releasing a stale or already free handle logs a warning and does nothing.
func (p *AgentPool) Release(h Handle) bool {
	s := p.slotAt(h.Index)
	if s == nil || !s.inUse || s.gen != h.Gen {
		slog.Warn("agent pool: release of stale handle ignored", "handle", h.String())
		return false
	}

	s.agent.Reset()
	s.inUse = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}

	st := p.state(s.species)
	st.free = append(st.free, h.Index)
	st.active--
	st.releaseCount++
	return true
}

// Get resolves a live handle.
func (p *AgentPool) Get(h Handle) (*agent.Agent, bool) {
	s := p.slotAt(h.Index)
	if s == nil || !s.inUse || s.gen != h.Gen {
		return nil, false
	}
	return &s.agent, true
}

// Valid reports whether h still names an in-use slot.
func (p *AgentPool) Valid(h Handle) bool {
	_, ok := p.Get(h)
	return ok
}

// Stats returns usage counters of a species.
func (p *AgentPool) Stats(species string) Stats {
	st, ok := p.species[species]
	if !ok {
		return Stats{Species: species, MaxSize: p.defaultMax}
	}
	return Stats{
		Species:      species,
		Size:         st.size,
		MaxSize:      st.maxSize,
		Active:       st.active,
		AcquireCount: st.acquireCount,
		ReleaseCount: st.releaseCount,
		CreateCount:  st.createCount,
	}
}

// AllStats returns stats of every species in first-use order.
func (p *AgentPool) AllStats() []Stats {
	out := make([]Stats, 0, len(p.order))
	for _, species := range p.order {
		out = append(out, p.Stats(species))
	}
	return out
}

// ForEachActive calls fn for every in-use slot in index order.
func (p *AgentPool) ForEachActive(fn func(Handle, *agent.Agent)) {
	for i := range p.count {
		s := p.slotAt(i)
		if s.inUse {
			fn(Handle{Index: i, Gen: s.gen}, &s.agent)
		}
	}
}

// Drain releases every active slot and returns how many were released.
func (p *AgentPool) Drain() int {
	released := 0
	for i := range p.count {
		s := p.slotAt(i)
		if s.inUse && p.Release(Handle{Index: i, Gen: s.gen}) {
			released++
		}
	}
	if released > 0 {
		slog.Info("agent pool drained", "released", released)
	}
	return released
}
