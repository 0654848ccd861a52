package data

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/udisondev/horde/internal/model"
)

// Catalog - неизменяемый снимок контента: виды агентов, зоны по уровням
// и размеры пулов. После NewCatalog не мутируется.
type Catalog struct {
	species   map[string]*model.AgentConfig
	zones     map[string][]model.ZoneConfig
	poolSizes map[string]int
}

// NewCatalog validates content and indexes it.
func NewCatalog(species []model.AgentConfig, zones []model.ZoneConfig, poolSizes map[string]int) (*Catalog, error) {
	c := &Catalog{
		species:   make(map[string]*model.AgentConfig, len(species)),
		zones:     make(map[string][]model.ZoneConfig),
		poolSizes: make(map[string]int, len(poolSizes)),
	}

	for i := range species {
		cfg := species[i]
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("building catalog: %w", err)
		}
		if _, dup := c.species[cfg.Species]; dup {
			return nil, fmt.Errorf("building catalog: duplicate species %q", cfg.Species)
		}
		c.species[cfg.Species] = &cfg
	}

	seen := make(map[string]bool, len(zones))
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("building catalog: %w", err)
		}
		if seen[z.ID] {
			return nil, fmt.Errorf("building catalog: duplicate zone %q", z.ID)
		}
		seen[z.ID] = true
		for _, e := range z.Entries {
			if _, ok := c.species[e.Species]; !ok {
				// spawner skips these at runtime
				slog.Warn("zone references unknown species",
					"zone", z.ID,
					"species", e.Species,
					"err", model.ErrConfigMissing)
			}
		}
		c.zones[z.Level] = append(c.zones[z.Level], z)
	}

	for species, n := range poolSizes {
		if n < 0 {
			return nil, fmt.Errorf("building catalog: negative pool size for %q", species)
		}
		c.poolSizes[species] = n
	}

	return c, nil
}

// AgentConfig returns species config
func (c *Catalog) AgentConfig(species string) (*model.AgentConfig, bool) {
	cfg, ok := c.species[species]
	return cfg, ok
}

// ZoneConfigsForLevel returns a copy of the level's zones in file order.
func (c *Catalog) ZoneConfigsForLevel(levelID string) []model.ZoneConfig {
	zones := c.zones[levelID]
	if len(zones) == 0 {
		return nil
	}
	return slices.Clone(zones)
}

// PoolSize returns the configured pool max size of species.
func (c *Catalog) PoolSize(species string) (int, bool) {
	n, ok := c.poolSizes[species]
	return n, ok
}

// Species returns the sorted species keys.
func (c *Catalog) Species() []string {
	keys := make([]string, 0, len(c.species))
	for k := range c.species {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Levels returns the sorted level IDs that have zones.
func (c *Catalog) Levels() []string {
	keys := make([]string, 0, len(c.zones))
	for k := range c.zones {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// PoolSizes returns a copy of the configured pool max sizes.
func (c *Catalog) PoolSizes() map[string]int {
	return maps.Clone(c.poolSizes)
}
