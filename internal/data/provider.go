// Package data supplies species and zone content to the runtime.
package data

import (
	"sync"

	"github.com/udisondev/horde/internal/model"
)

// Provider is the read side of content used by the spawner.
type Provider interface {
	// AgentConfig returns the config of species, or false if unknown.
	AgentConfig(species string) (*model.AgentConfig, bool)
	// ZoneConfigsForLevel returns the spawn zones of a level (nil if none).
	ZoneConfigsForLevel(levelID string) []model.ZoneConfig
}

// Live is a Provider whose catalog can be swapped while the loop runs.
// Readers on the tick goroutine and the reload goroutine share it.
type Live struct {
	mu      sync.RWMutex
	catalog *Catalog
	version int
}

// NewLive wraps an initial catalog.
func NewLive(c *Catalog) *Live {
	return &Live{catalog: c, version: 1}
}

// Swap publishes a new catalog. Agents already spawned keep the config
// pointers they were created with.
func (l *Live) Swap(c *Catalog) {
	l.mu.Lock()
	l.catalog = c
	l.version++
	l.mu.Unlock()
}

// Version returns how many catalogs were published.
func (l *Live) Version() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Catalog returns the current catalog.
func (l *Live) Catalog() *Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog
}

// AgentConfig implements Provider.
func (l *Live) AgentConfig(species string) (*model.AgentConfig, bool) {
	return l.Catalog().AgentConfig(species)
}

// ZoneConfigsForLevel implements Provider.
func (l *Live) ZoneConfigsForLevel(levelID string) []model.ZoneConfig {
	return l.Catalog().ZoneConfigsForLevel(levelID)
}

// PoolSize returns the pool max size configured for species in the current catalog.
func (l *Live) PoolSize(species string) (int, bool) {
	return l.Catalog().PoolSize(species)
}

var (
	_ Provider = (*Live)(nil)
	_ Provider = (*Catalog)(nil)
)
