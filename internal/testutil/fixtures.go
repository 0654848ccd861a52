package testutil

import (
	"time"

	"github.com/udisondev/horde/internal/model"
)

// GoblinConfig - ближний бой, обычный ранг. Значения совпадают с config/species.csv.
func GoblinConfig() model.AgentConfig {
	return model.AgentConfig{
		Species:              "goblin",
		Rank:                 model.RankNormal,
		DetectionRange:       200,
		AttackRange:          60,
		PursuitRange:         300,
		ReturnDistance:       200,
		PatrolRadius:         50,
		MoveSpeed:            100,
		ChaseSpeedMultiplier: 1.5,
		AttackInterval:       time.Second,
		MaxIdleTime:          3 * time.Second,
		HurtDuration:         200 * time.Millisecond,
		Behavior:             model.BehaviorMelee,
		BaseHealth:           100,
		AttackDamage:         10,
	}
}

// ArcherConfig - дальний бой, элита.
func ArcherConfig() model.AgentConfig {
	return model.AgentConfig{
		Species:              "archer",
		Rank:                 model.RankElite,
		DetectionRange:       260,
		AttackRange:          180,
		PursuitRange:         350,
		ReturnDistance:       250,
		MoveSpeed:            80,
		ChaseSpeedMultiplier: 1.2,
		AttackInterval:       1500 * time.Millisecond,
		HurtDuration:         150 * time.Millisecond,
		Behavior:             model.BehaviorRanged,
		BaseHealth:           70,
		AttackDamage:         8,
	}
}

// CampZone возвращает круглую зону с одной записью goblin:
// count 2, maxAlive 3, respawn каждые 5s.
func CampZone(level string) model.ZoneConfig {
	return model.ZoneConfig{
		ID:     "camp",
		Level:  level,
		Shape:  model.ShapeCircle,
		Origin: model.Vec{X: 400, Y: 500},
		Radius: 40,
		Entries: []model.SpawnEntry{{
			Species:        "goblin",
			Count:          2,
			MaxAlive:       3,
			SpawnInterval:  5 * time.Second,
			RespawnOnDeath: true,
			Faction:        model.FactionEnemyLeft,
		}},
	}
}
