// Package asset adapts sprite and animation loading to the tick loop.
package asset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/horde/internal/model"
)

// SpeciesAssets describes the assets of one species.
type SpeciesAssets struct {
	Sprite     string                      `yaml:"sprite"`
	Animations map[model.Cue]time.Duration `yaml:"animations"`
}

// Manifest maps species to their assets.
type Manifest struct {
	BaseDir          string                      `yaml:"base_dir"`
	DefaultDurations map[model.Cue]time.Duration `yaml:"default_durations"`
	Species          map[string]SpeciesAssets    `yaml:"species"`
}

// DefaultManifest returns a manifest with built-in one-shot durations and no species.
func DefaultManifest() *Manifest {
	return &Manifest{
		DefaultDurations: map[model.Cue]time.Duration{
			model.CueAttackMelee:  400 * time.Millisecond,
			model.CueAttackRanged: 500 * time.Millisecond,
			model.CueHurt:         200 * time.Millisecond,
			model.CueDeath:        800 * time.Millisecond,
		},
		Species: make(map[string]SpeciesAssets),
	}
}

// LoadManifest reads a manifest from a YAML file.
// Returns default manifest if file doesn't exist.
func LoadManifest(path string) (*Manifest, error) {
	m := DefaultManifest()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return nil, fmt.Errorf("reading asset manifest %s: %w", path, err)
	}

	var parsed Manifest
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing asset manifest %s: %w", path, err)
	}

	m.BaseDir = parsed.BaseDir
	if m.BaseDir != "" && !filepath.IsAbs(m.BaseDir) {
		m.BaseDir = filepath.Join(filepath.Dir(path), m.BaseDir)
	}
	for cue, d := range parsed.DefaultDurations {
		m.DefaultDurations[cue] = d
	}
	for species, sa := range parsed.Species {
		m.Species[species] = sa
	}
	return m, nil
}

// Duration returns how long a cue plays for species.
func (m *Manifest) Duration(species string, cue model.Cue) time.Duration {
	if sa, ok := m.Species[species]; ok {
		if d, ok := sa.Animations[cue]; ok {
			return d
		}
	}
	return m.DefaultDurations[cue]
}

// SpritePath returns the sprite file of species, or "" if none is declared.
func (m *Manifest) SpritePath(species string) string {
	sa, ok := m.Species[species]
	if !ok || sa.Sprite == "" {
		return ""
	}
	if filepath.IsAbs(sa.Sprite) || m.BaseDir == "" {
		return sa.Sprite
	}
	return filepath.Join(m.BaseDir, sa.Sprite)
}
