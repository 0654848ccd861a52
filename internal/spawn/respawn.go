package spawn

import (
	"slices"
	"time"
)

// respawnTask is a pending spawn of one zone entry.
type respawnTask struct {
	entry   int
	due     time.Duration
	initial bool // delayed initial burst, not an interval respawn
}

// respawnSchedule keeps at most one pending task per entry, keyed by entry index.
// Driven by simulation time, never by wall clock.
type respawnSchedule struct {
	tasks map[int]respawnTask
}

func newRespawnSchedule() *respawnSchedule {
	return &respawnSchedule{tasks: make(map[int]respawnTask)}
}

// schedule replaces any pending task of the entry.
func (s *respawnSchedule) schedule(entry int, due time.Duration, initial bool) {
	s.tasks[entry] = respawnTask{entry: entry, due: due, initial: initial}
}

func (s *respawnSchedule) cancel(entry int) {
	delete(s.tasks, entry)
}

func (s *respawnSchedule) cancelAll() int {
	n := len(s.tasks)
	clear(s.tasks)
	return n
}

// pending returns the task of entry, if any.
func (s *respawnSchedule) pending(entry int) (respawnTask, bool) {
	t, ok := s.tasks[entry]
	return t, ok
}

// popDue removes and returns the tasks due at now, in entry order.
func (s *respawnSchedule) popDue(now time.Duration) []respawnTask {
	var due []respawnTask
	for entry, task := range s.tasks {
		if now >= task.due {
			due = append(due, task)
			delete(s.tasks, entry)
		}
	}
	slices.SortFunc(due, func(a, b respawnTask) int { return a.entry - b.entry })
	return due
}

func (s *respawnSchedule) len() int {
	return len(s.tasks)
}
