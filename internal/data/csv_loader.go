package data

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/udisondev/horde/internal/model"
)

// speciesRow is one line of a species table. Durations are in seconds
// so designers can edit the table in a spreadsheet.
type speciesRow struct {
	Species              string  `csv:"species"`
	Rank                 string  `csv:"rank"`
	Behavior             string  `csv:"behavior"`
	DetectionRange       float64 `csv:"detection_range"`
	AttackRange          float64 `csv:"attack_range"`
	PursuitRange         float64 `csv:"pursuit_range"`
	ReturnDistance       float64 `csv:"return_distance"`
	PatrolRadius         float64 `csv:"patrol_radius"`
	MoveSpeed            float64 `csv:"move_speed"`
	ChaseSpeedMultiplier float64 `csv:"chase_speed_multiplier"`
	AttackInterval       float64 `csv:"attack_interval_s"`
	MaxIdleTime          float64 `csv:"max_idle_time_s"`
	HurtDuration         float64 `csv:"hurt_duration_s"`
	BaseHealth           float64 `csv:"base_health"`
	AttackDamage         float64 `csv:"attack_damage"`
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (r speciesRow) toConfig() (model.AgentConfig, error) {
	rank, err := model.ParseRank(r.Rank)
	if err != nil {
		return model.AgentConfig{}, fmt.Errorf("species %q: %w", r.Species, err)
	}
	behavior, err := model.ParseBehaviorType(r.Behavior)
	if err != nil {
		return model.AgentConfig{}, fmt.Errorf("species %q: %w", r.Species, err)
	}
	return model.AgentConfig{
		Species:              r.Species,
		Rank:                 rank,
		Behavior:             behavior,
		DetectionRange:       r.DetectionRange,
		AttackRange:          r.AttackRange,
		PursuitRange:         r.PursuitRange,
		ReturnDistance:       r.ReturnDistance,
		PatrolRadius:         r.PatrolRadius,
		MoveSpeed:            r.MoveSpeed,
		ChaseSpeedMultiplier: r.ChaseSpeedMultiplier,
		AttackInterval:       seconds(r.AttackInterval),
		MaxIdleTime:          seconds(r.MaxIdleTime),
		HurtDuration:         seconds(r.HurtDuration),
		BaseHealth:           r.BaseHealth,
		AttackDamage:         r.AttackDamage,
	}, nil
}

// LoadSpeciesCSV parses a species table.
func LoadSpeciesCSV(r io.Reader) ([]model.AgentConfig, error) {
	var rows []speciesRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parsing species csv: %w", err)
	}

	out := make([]model.AgentConfig, 0, len(rows))
	for _, row := range rows {
		cfg, err := row.toConfig()
		if err != nil {
			return nil, fmt.Errorf("parsing species csv: %w", err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

// LoadSpeciesCSVFile opens and parses a species table.
func LoadSpeciesCSVFile(path string) ([]model.AgentConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening species csv %s: %w", path, err)
	}
	defer f.Close()

	return LoadSpeciesCSV(f)
}
