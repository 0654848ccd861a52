package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/horde/internal/model"
	"github.com/udisondev/horde/internal/pool"
)

// minRetryDelay is used to retry a short initial burst of an entry without a spawn interval.
const minRetryDelay = time.Second

// spawner creates and destroys agents on behalf of a coordinator.
type spawner interface {
	spawnAgent(zone *model.ZoneConfig, e model.SpawnEntry, pos model.Vec) (pool.Handle, error)
	alive(h pool.Handle) bool
	clamp(p model.Vec) model.Vec
	Despawn(h pool.Handle) bool
}

// EntryStatus is one row of a coordinator status export.
type EntryStatus struct {
	Zone     string `csv:"zone"`
	Instance string `csv:"instance"`
	Species  string `csv:"species"`
	Alive    int    `csv:"alive"`
	MaxAlive int    `csv:"max_alive"`
	Spawned  int    `csv:"spawned"`
	Failed   int    `csv:"failed"`
	Pending  bool   `csv:"pending"`
}

type entryState struct {
	entry   model.SpawnEntry
	alive   []pool.Handle
	spawned int
	failed  int
}

// Coordinator populates one zone over time: a delayed initial burst per
// entry, then interval respawns up to maxAlive.
type Coordinator struct {
	instance uuid.UUID
	zone     model.ZoneConfig
	sp       spawner
	rng      *rand.Rand

	entries  []entryState
	schedule *respawnSchedule

	suspended bool
	closed    bool
}

func newCoordinator(zone model.ZoneConfig, sp spawner, rng *rand.Rand, start time.Duration) *Coordinator {
	c := &Coordinator{
		instance: uuid.New(),
		zone:     zone,
		sp:       sp,
		rng:      rng,
		entries:  make([]entryState, len(zone.Entries)),
		schedule: newRespawnSchedule(),
	}
	for i, e := range zone.Entries {
		c.entries[i].entry = e
		c.schedule.schedule(i, start+e.SpawnDelay, true)
	}
	return c
}

// ZoneID returns the zone config ID.
func (c *Coordinator) ZoneID() string { return c.zone.ID }

// Instance returns the unique ID of this coordinator instance.
func (c *Coordinator) Instance() uuid.UUID { return c.instance }

// SetSuspended stops (or resumes) timer processing. Due tasks fire late on resume.
func (c *Coordinator) SetSuspended(suspended bool) { c.suspended = suspended }

// Suspended reports whether timers are on hold.
func (c *Coordinator) Suspended() bool { return c.suspended }

// Closed reports whether Close was called.
func (c *Coordinator) Closed() bool { return c.closed }

// Update runs the spawn tasks due at now.
func (c *Coordinator) Update(now time.Duration) {
	if c.closed || c.suspended {
		return
	}
	for _, task := range c.schedule.popDue(now) {
		c.run(task, now)
	}
}

func (c *Coordinator) run(task respawnTask, now time.Duration) {
	st := &c.entries[task.entry]
	e := st.entry
	want := e.BurstSize(c.prune(st))

	if task.initial {
		got := c.burst(st, want)
		if got < want {
			c.schedule.schedule(task.entry, now+retryDelay(e), true)
			return
		}
		if e.RespawnOnDeath {
			c.schedule.schedule(task.entry, now+e.SpawnInterval, false)
		}
		return
	}

	if e.RespawnOnDeath && want > 0 {
		c.burst(st, want)
	}
	c.schedule.schedule(task.entry, now+e.SpawnInterval, false)
}

func retryDelay(e model.SpawnEntry) time.Duration {
	if e.SpawnInterval > 0 {
		return e.SpawnInterval
	}
	return minRetryDelay
}

// burst spawns up to n agents of the entry and returns how many made it.
// Stops at the first failure: the rest would fail the same way this tick.
func (c *Coordinator) burst(st *entryState, n int) int {
	got := 0
	for range n {
		pos := c.sp.clamp(c.samplePosition())
		h, err := c.sp.spawnAgent(&c.zone, st.entry, pos)
		if err != nil {
			st.failed++
			c.logFailure(st.entry, err)
			break
		}
		st.alive = append(st.alive, h)
		st.spawned++
		got++
	}
	return got
}

func (c *Coordinator) logFailure(e model.SpawnEntry, err error) {
	attrs := []any{
		"zone", c.zone.ID,
		"species", e.Species,
		"error", err,
	}
	if errors.Is(err, model.ErrPoolExhausted) {
		slog.Debug("spawn skipped", attrs...)
		return
	}
	slog.Warn("spawn failed", attrs...)
}

// prune drops handles that are stale or dead and returns the alive count.
func (c *Coordinator) prune(st *entryState) int {
	st.alive = slices.DeleteFunc(st.alive, func(h pool.Handle) bool {
		return !c.sp.alive(h)
	})
	return len(st.alive)
}

// forget removes id from the alive index. Reports whether it was tracked.
func (c *Coordinator) forget(id model.EntityID) bool {
	h := pool.HandleFromID(id)
	for i := range c.entries {
		st := &c.entries[i]
		if idx := slices.Index(st.alive, h); idx >= 0 {
			st.alive = slices.Delete(st.alive, idx, idx+1)
			return true
		}
	}
	return false
}

// ForceSpawnAll fills every entry up to its burst size right away.
// Pending initial bursts are consumed. Returns the number spawned.
func (c *Coordinator) ForceSpawnAll(now time.Duration) int {
	if c.closed {
		return 0
	}
	total := 0
	for i := range c.entries {
		st := &c.entries[i]
		total += c.burst(st, st.entry.BurstSize(c.prune(st)))

		if task, ok := c.schedule.pending(i); ok && task.initial {
			if st.entry.RespawnOnDeath {
				c.schedule.schedule(i, now+st.entry.SpawnInterval, false)
			} else {
				c.schedule.cancel(i)
			}
		}
	}
	return total
}

// Clear despawns every agent of the zone. Timers keep running.
func (c *Coordinator) Clear() int {
	n := 0
	for i := range c.entries {
		st := &c.entries[i]
		handles := st.alive
		st.alive = nil
		for _, h := range handles {
			if c.sp.Despawn(h) {
				n++
			}
		}
	}
	return n
}

// Close cancels pending delayed spawns, then clears the zone.
func (c *Coordinator) Close() {
	if c.closed {
		return
	}
	c.closed = true
	cancelled := c.schedule.cancelAll()
	despawned := c.Clear()

	slog.Info("spawn zone closed",
		"zone", c.zone.ID,
		"instance", c.instance.String(),
		"cancelled", cancelled,
		"despawned", despawned)
}

// Alive returns the alive count of species after lazy pruning.
func (c *Coordinator) Alive(species string) int {
	n := 0
	for i := range c.entries {
		st := &c.entries[i]
		if st.entry.Species == species {
			n += c.prune(st)
		}
	}
	return n
}

// AliveTotal returns the alive count of the whole zone.
func (c *Coordinator) AliveTotal() int {
	n := 0
	for i := range c.entries {
		n += c.prune(&c.entries[i])
	}
	return n
}

// Pending returns the number of scheduled spawn tasks.
func (c *Coordinator) Pending() int {
	return c.schedule.len()
}

// Status returns one row per entry.
func (c *Coordinator) Status() []EntryStatus {
	out := make([]EntryStatus, 0, len(c.entries))
	for i := range c.entries {
		st := &c.entries[i]
		_, pending := c.schedule.pending(i)
		out = append(out, EntryStatus{
			Zone:     c.zone.ID,
			Instance: c.instance.String(),
			Species:  st.entry.Species,
			Alive:    c.prune(st),
			MaxAlive: st.entry.MaxAlive,
			Spawned:  st.spawned,
			Failed:   st.failed,
			Pending:  pending,
		})
	}
	return out
}

// StatusReport returns a human-readable multi-line summary.
func (c *Coordinator) StatusReport() string {
	var b strings.Builder
	state := "active"
	switch {
	case c.closed:
		state = "closed"
	case c.suspended:
		state = "suspended"
	}
	fmt.Fprintf(&b, "zone %s (%s) %s at (%.0f,%.0f) [%s]\n",
		c.zone.ID, c.zone.Shape, state, c.zone.Origin.X, c.zone.Origin.Y, c.instance.String()[:8])
	for _, s := range c.Status() {
		fmt.Fprintf(&b, "  %-12s alive %d/%d spawned %d failed %d pending %t\n",
			s.Species, s.Alive, s.MaxAlive, s.Spawned, s.Failed, s.Pending)
	}
	return b.String()
}
