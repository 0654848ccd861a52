package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/horde/internal/model"
)

// Content sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Sim holds all configuration of the simulation process.
type Sim struct {
	LogLevel string `yaml:"log_level"`

	// Loop
	TickRate int           `yaml:"tick_rate"` // ticks per second
	Duration time.Duration `yaml:"duration"`  // 0 = until interrupted
	Seed     int64         `yaml:"seed"`

	// Content
	Level         string         `yaml:"level"`
	ContentSource string         `yaml:"content_source"` // file | postgres
	ContentPath   string         `yaml:"content_path"`
	WatchContent  bool           `yaml:"watch_content"`
	AssetManifest string         `yaml:"asset_manifest"`
	Database      DatabaseConfig `yaml:"database"`

	World     WorldConfig     `yaml:"world"`
	Pool      PoolConfig      `yaml:"pool"`
	Targeting TargetingConfig `yaml:"targeting"`
	Players   []PlayerConfig  `yaml:"players"`

	// Reports
	StatsCSV string `yaml:"stats_csv"` // written on shutdown when set
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// WorldConfig describes the playable area and the faction midline.
type WorldConfig struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`

	Midline         float64 `yaml:"midline"`
	MidlineDeadZone float64 `yaml:"midline_dead_zone"`
}

// Bounds returns the world rectangle.
func (w WorldConfig) Bounds() model.Bounds {
	return model.NewBounds(w.MinX, w.MinY, w.MaxX, w.MaxY)
}

// PoolConfig sets agent pool capacities.
type PoolConfig struct {
	DefaultMaxSize int            `yaml:"default_max_size"`
	MaxSizes       map[string]int `yaml:"max_sizes"` // per species, overrides content
}

// TargetingConfig tunes the target selector.
type TargetingConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// PlayerConfig places a player at startup.
type PlayerConfig struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Health float64 `yaml:"health"`
	Speed  float64 `yaml:"speed"`
}

// DefaultSim returns Sim config with sensible defaults.
func DefaultSim() Sim {
	return Sim{
		LogLevel:      "info",
		TickRate:      30,
		Seed:          1,
		Level:         "forest",
		ContentSource: SourceFile,
		ContentPath:   "config/content.yaml",
		AssetManifest: "config/assets.yaml",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "horde",
			Password: "horde",
			DBName:   "horde",
			SSLMode:  "disable",
		},
		World: WorldConfig{
			MinX: 0, MinY: 0, MaxX: 2000, MaxY: 1000,
			Midline:         1000,
			MidlineDeadZone: 20,
		},
		Pool: PoolConfig{
			DefaultMaxSize: 32,
		},
		Targeting: TargetingConfig{
			RefreshInterval: 250 * time.Millisecond,
		},
	}
}

// TickInterval returns the duration of one tick.
func (s Sim) TickInterval() time.Duration {
	if s.TickRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(s.TickRate)
}

// Validate checks values that would break the loop.
func (s Sim) Validate() error {
	if s.TickRate <= 0 || s.TickRate > 1000 {
		return fmt.Errorf("tick_rate must be in 1..1000, got %d", s.TickRate)
	}
	if s.Level == "" {
		return fmt.Errorf("level is empty")
	}
	switch s.ContentSource {
	case SourceFile, SourcePostgres:
	default:
		return fmt.Errorf("unknown content_source %q", s.ContentSource)
	}
	if s.World.MaxX < s.World.MinX || s.World.MaxY < s.World.MinY {
		return fmt.Errorf("world bounds are inverted")
	}
	if s.Pool.DefaultMaxSize < 0 {
		return fmt.Errorf("pool.default_max_size must not be negative")
	}
	return nil
}

// LoadSim loads simulation config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSim(path string) (Sim, error) {
	cfg := DefaultSim()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}
