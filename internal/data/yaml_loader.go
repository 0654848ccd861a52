package data

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/horde/internal/model"
)

// Content is the on-disk layout of a content file.
type Content struct {
	SpeciesCSV string              `yaml:"species_csv"` // relative to the content file
	Species    []model.AgentConfig `yaml:"species"`
	PoolSizes  map[string]int      `yaml:"pool_sizes"`
	Zones      []model.ZoneConfig  `yaml:"zones"`
}

// LoadYAML reads a content file (and its species CSV, if any) into a catalog.
func LoadYAML(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content %s: %w", path, err)
	}

	var content Content
	if err := yaml.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("parsing content %s: %w", path, err)
	}

	species := content.Species
	if content.SpeciesCSV != "" {
		csvPath := content.SpeciesCSV
		if !filepath.IsAbs(csvPath) {
			csvPath = filepath.Join(filepath.Dir(path), csvPath)
		}
		fromCSV, err := LoadSpeciesCSVFile(csvPath)
		if err != nil {
			return nil, fmt.Errorf("loading content %s: %w", path, err)
		}
		species = append(species, fromCSV...)
	}

	catalog, err := NewCatalog(species, content.Zones, content.PoolSizes)
	if err != nil {
		return nil, fmt.Errorf("loading content %s: %w", path, err)
	}

	slog.Info("content loaded",
		"path", path,
		"species", len(species),
		"zones", len(content.Zones))
	return catalog, nil
}
