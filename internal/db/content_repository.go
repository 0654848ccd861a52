package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/horde/internal/data"
	"github.com/udisondev/horde/internal/model"
)

// ContentRepository stores species, zones and pool sizes in PostgreSQL.
type ContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository creates a new content repository
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

// LoadCatalog reads every table and builds a validated catalog.
func (r *ContentRepository) LoadCatalog(ctx context.Context) (*data.Catalog, error) {
	species, err := r.loadSpecies(ctx)
	if err != nil {
		return nil, err
	}
	zones, err := r.loadZones(ctx)
	if err != nil {
		return nil, err
	}
	sizes, err := r.loadPoolSizes(ctx)
	if err != nil {
		return nil, err
	}

	catalog, err := data.NewCatalog(species, zones, sizes)
	if err != nil {
		return nil, fmt.Errorf("loading catalog from database: %w", err)
	}
	return catalog, nil
}

func (r *ContentRepository) loadSpecies(ctx context.Context) ([]model.AgentConfig, error) {
	query := `
		SELECT species, rank, behavior, detection_range, attack_range, pursuit_range,
		       return_distance, patrol_radius, move_speed, chase_speed_multiplier,
		       attack_interval_ms, max_idle_time_ms, hurt_duration_ms, base_health, attack_damage
		FROM species
		ORDER BY species
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading species: %w", err)
	}
	defer rows.Close()

	var out []model.AgentConfig
	for rows.Next() {
		var (
			cfg                      model.AgentConfig
			rank, behavior           string
			attackMS, idleMS, hurtMS int64
		)
		if err := rows.Scan(
			&cfg.Species, &rank, &behavior,
			&cfg.DetectionRange, &cfg.AttackRange, &cfg.PursuitRange,
			&cfg.ReturnDistance, &cfg.PatrolRadius, &cfg.MoveSpeed, &cfg.ChaseSpeedMultiplier,
			&attackMS, &idleMS, &hurtMS, &cfg.BaseHealth, &cfg.AttackDamage,
		); err != nil {
			return nil, fmt.Errorf("scanning species row: %w", err)
		}

		if cfg.Rank, err = model.ParseRank(rank); err != nil {
			return nil, fmt.Errorf("species %q: %w", cfg.Species, err)
		}
		if cfg.Behavior, err = model.ParseBehaviorType(behavior); err != nil {
			return nil, fmt.Errorf("species %q: %w", cfg.Species, err)
		}
		cfg.AttackInterval = time.Duration(attackMS) * time.Millisecond
		cfg.MaxIdleTime = time.Duration(idleMS) * time.Millisecond
		cfg.HurtDuration = time.Duration(hurtMS) * time.Millisecond

		out = append(out, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating species rows: %w", err)
	}
	return out, nil
}

func (r *ContentRepository) loadZones(ctx context.Context) ([]model.ZoneConfig, error) {
	query := `
		SELECT zone_id, level_id, shape, origin_x, origin_y, radius, half_extent_x, half_extent_y
		FROM zones
		ORDER BY level_id, sort_order, zone_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading zones: %w", err)
	}
	defer rows.Close()

	var zones []model.ZoneConfig
	index := make(map[string]int)
	for rows.Next() {
		var (
			z     model.ZoneConfig
			shape string
		)
		if err := rows.Scan(&z.ID, &z.Level, &shape,
			&z.Origin.X, &z.Origin.Y, &z.Radius, &z.HalfExtents.X, &z.HalfExtents.Y,
		); err != nil {
			return nil, fmt.Errorf("scanning zone row: %w", err)
		}
		if z.Shape, err = model.ParseZoneShape(shape); err != nil {
			return nil, fmt.Errorf("zone %q: %w", z.ID, err)
		}
		index[z.ID] = len(zones)
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating zone rows: %w", err)
	}
	rows.Close()

	entries, err := r.pool.Query(ctx, `
		SELECT zone_id, species, spawn_count, max_alive, spawn_interval_ms, spawn_delay_ms,
		       respawn_on_death, faction
		FROM zone_entries
		ORDER BY zone_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("loading zone entries: %w", err)
	}
	defer entries.Close()

	for entries.Next() {
		var (
			zoneID, faction     string
			e                   model.SpawnEntry
			intervalMS, delayMS int64
		)
		if err := entries.Scan(&zoneID, &e.Species, &e.Count, &e.MaxAlive,
			&intervalMS, &delayMS, &e.RespawnOnDeath, &faction,
		); err != nil {
			return nil, fmt.Errorf("scanning zone entry row: %w", err)
		}
		if e.Faction, err = model.ParseFaction(faction); err != nil {
			return nil, fmt.Errorf("zone %q entry %q: %w", zoneID, e.Species, err)
		}
		e.SpawnInterval = time.Duration(intervalMS) * time.Millisecond
		e.SpawnDelay = time.Duration(delayMS) * time.Millisecond

		i, ok := index[zoneID]
		if !ok {
			continue
		}
		zones[i].Entries = append(zones[i].Entries, e)
	}
	if err := entries.Err(); err != nil {
		return nil, fmt.Errorf("iterating zone entry rows: %w", err)
	}
	return zones, nil
}

func (r *ContentRepository) loadPoolSizes(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT species, max_size FROM pool_sizes`)
	if err != nil {
		return nil, fmt.Errorf("loading pool sizes: %w", err)
	}
	defer rows.Close()

	sizes := make(map[string]int)
	for rows.Next() {
		var (
			species string
			n       int
		)
		if err := rows.Scan(&species, &n); err != nil {
			return nil, fmt.Errorf("scanning pool size row: %w", err)
		}
		sizes[species] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pool size rows: %w", err)
	}
	return sizes, nil
}

// ReplaceContent overwrites the stored content with catalog in one transaction.
func (r *ContentRepository) ReplaceContent(ctx context.Context, catalog *data.Catalog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning content transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE zone_entries, zones, species, pool_sizes`); err != nil {
		return fmt.Errorf("truncating content: %w", err)
	}

	batch := &pgx.Batch{}
	for _, name := range catalog.Species() {
		cfg, _ := catalog.AgentConfig(name)
		batch.Queue(`
			INSERT INTO species (species, rank, behavior, detection_range, attack_range, pursuit_range,
			                     return_distance, patrol_radius, move_speed, chase_speed_multiplier,
			                     attack_interval_ms, max_idle_time_ms, hurt_duration_ms, base_health, attack_damage)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			cfg.Species, cfg.Rank.String(), cfg.Behavior.String(),
			cfg.DetectionRange, cfg.AttackRange, cfg.PursuitRange,
			cfg.ReturnDistance, cfg.PatrolRadius, cfg.MoveSpeed, cfg.ChaseSpeedMultiplier,
			cfg.AttackInterval.Milliseconds(), cfg.MaxIdleTime.Milliseconds(), cfg.HurtDuration.Milliseconds(),
			cfg.BaseHealth, cfg.AttackDamage,
		)
	}

	for _, level := range catalog.Levels() {
		for order, z := range catalog.ZoneConfigsForLevel(level) {
			batch.Queue(`
				INSERT INTO zones (zone_id, level_id, shape, origin_x, origin_y, radius,
				                   half_extent_x, half_extent_y, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				z.ID, z.Level, z.Shape.String(), z.Origin.X, z.Origin.Y, z.Radius,
				z.HalfExtents.X, z.HalfExtents.Y, order,
			)
			for pos, e := range z.Entries {
				batch.Queue(`
					INSERT INTO zone_entries (zone_id, position, species, spawn_count, max_alive,
					                          spawn_interval_ms, spawn_delay_ms, respawn_on_death, faction)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
					z.ID, pos, e.Species, e.Count, e.MaxAlive,
					e.SpawnInterval.Milliseconds(), e.SpawnDelay.Milliseconds(), e.RespawnOnDeath, e.Faction.String(),
				)
			}
		}
	}

	for species, n := range catalog.PoolSizes() {
		batch.Queue(`INSERT INTO pool_sizes (species, max_size) VALUES ($1, $2)`, species, n)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing content: %w", err)
	}
	return nil
}
