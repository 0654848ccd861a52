// Package target picks the best adversary for an agent.
package target

import (
	"log/slog"
	"time"

	"github.com/udisondev/horde/internal/faction"
	"github.com/udisondev/horde/internal/model"
)

// DefaultRefreshInterval is how often the faction cache is rebuilt.
const DefaultRefreshInterval = 250 * time.Millisecond

// Priority weights.
const (
	basePriority   = 100.0
	missingHPBonus = 50.0
)

// Source is the live entity registry the selector reads.
type Source interface {
	Get(id model.EntityID) (model.Targetable, bool)
	ForEach(fn func(model.Targetable) bool)
}

// Selector keeps a faction → entity cache, rebuilt at most once per
// refresh interval. Candidates from the cache are always re-checked
// against the live registry before they are scored.
type Selector struct {
	source   Source
	factions *faction.Registry
	interval time.Duration

	now         time.Duration
	lastRefresh time.Duration
	refreshed   bool
	refreshes   int

	cache map[model.Faction][]model.EntityID
}

// NewSelector creates a selector. interval <= 0 selects DefaultRefreshInterval.
func NewSelector(source Source, factions *faction.Registry, interval time.Duration) *Selector {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Selector{
		source:   source,
		factions: factions,
		interval: interval,
		cache:    make(map[model.Faction][]model.EntityID),
	}
}

// BeginTick pins the simulation time for the coming AI batch and rebuilds
// the cache when the interval elapsed, so every agent in the batch sees
// the same snapshot.
func (s *Selector) BeginTick(now time.Duration) {
	s.now = now
	s.refreshIfDue()
}

// ForceRefresh rebuilds the cache immediately.
func (s *Selector) ForceRefresh() {
	s.refresh()
}

// Refreshes returns how many times the cache was rebuilt.
func (s *Selector) Refreshes() int {
	return s.refreshes
}

// Cached returns the cached IDs of a faction (read-only).
func (s *Selector) Cached(f model.Faction) []model.EntityID {
	return s.cache[f]
}

func (s *Selector) refreshIfDue() {
	if s.refreshed && s.now-s.lastRefresh < s.interval {
		return
	}
	s.refresh()
}

func (s *Selector) refresh() {
	for f, ids := range s.cache {
		s.cache[f] = ids[:0]
	}
	total := 0
	s.source.ForEach(func(e model.Targetable) bool {
		if !e.IsAlive() {
			return true
		}
		f := s.factions.Classify(e.Faction(), e.Position())
		if f == model.FactionNone {
			return true
		}
		s.cache[f] = append(s.cache[f], e.ID())
		total++
		return true
	})

	s.refreshed = true
	s.lastRefresh = s.now
	s.refreshes++

	slog.Debug("target cache refreshed", "entities", total, "at", s.now)
}

// FindBestTarget returns the highest scoring live adversary within
// detectionRange of pos. Ties keep the candidate seen first.
func (s *Selector) FindBestTarget(pos model.Vec, mine model.Faction, detectionRange float64) (model.TargetInfo, bool) {
	if mine == model.FactionNone {
		return model.TargetInfo{}, false
	}
	s.refreshIfDue()

	var best model.TargetInfo
	found := false

	for _, adv := range s.factions.AdversariesOf(mine) {
		for _, id := range s.cache[adv] {
			e, ok := s.source.Get(id)
			if !ok || !e.IsAlive() {
				continue
			}
			live := s.factions.Classify(e.Faction(), e.Position())
			if !s.factions.IsAdversary(mine, live) {
				continue
			}
			dist := pos.Distance(e.Position())
			if dist > detectionRange {
				continue
			}

			priority := Priority(e)
			score := priority / (dist + 1)
			if !found || score > best.Score {
				best = model.TargetInfo{
					Ref:      id,
					Position: e.Position(),
					Distance: dist,
					Faction:  live,
					Priority: priority,
					Score:    score,
				}
				found = true
			}
		}
	}
	return best, found
}

// Validate re-checks a held target reference against the live registry.
func (s *Selector) Validate(id model.EntityID, mine model.Faction) (model.Targetable, bool) {
	if id == model.NoEntity {
		return nil, false
	}
	e, ok := s.source.Get(id)
	if !ok || !e.IsAlive() {
		return nil, false
	}
	if !s.factions.IsAdversary(mine, s.factions.Classify(e.Faction(), e.Position())) {
		return nil, false
	}
	return e, true
}

// Priority scores how valuable a target is: wounded and high-rank targets first.
func Priority(e model.Targetable) float64 {
	return basePriority + (1-e.HealthRatio())*missingHPBonus + e.Rank().TypeBonus()
}
