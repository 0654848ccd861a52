package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func validConfig() AgentConfig {
	return AgentConfig{
		Species:              "goblin",
		DetectionRange:       200,
		AttackRange:          60,
		PursuitRange:         300,
		ReturnDistance:       200,
		MoveSpeed:            80,
		ChaseSpeedMultiplier: 1.5,
		AttackInterval:       time.Second,
		BaseHealth:           100,
		AttackDamage:         10,
	}
}

func TestAgentConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AgentConfig)
		wantErr bool
	}{
		{"valid", func(*AgentConfig) {}, false},
		{"empty species", func(c *AgentConfig) { c.Species = "" }, true},
		{"zero health", func(c *AgentConfig) { c.BaseHealth = 0 }, true},
		{"attack beyond detection", func(c *AgentConfig) { c.AttackRange = 250 }, true},
		{"negative range", func(c *AgentConfig) { c.PatrolRadius = -1 }, true},
		{"negative duration", func(c *AgentConfig) { c.HurtDuration = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAgentConfigChaseSpeed(t *testing.T) {
	c := validConfig()
	assert.InDelta(t, 120.0, c.ChaseSpeed(), 1e-9)

	c.ChaseSpeedMultiplier = 0
	assert.InDelta(t, 80.0, c.ChaseSpeed(), 1e-9)
}

func TestAgentConfigAttackCue(t *testing.T) {
	c := validConfig()
	assert.Equal(t, CueAttackMelee, c.AttackCue(50))

	c.Behavior = BehaviorRanged
	assert.Equal(t, CueAttackRanged, c.AttackCue(5))

	c.Behavior = BehaviorMixed
	assert.Equal(t, CueAttackMelee, c.AttackCue(20))
	assert.Equal(t, CueAttackRanged, c.AttackCue(45))
}

func TestAgentConfigYAML(t *testing.T) {
	src := `
species: orc_archer
rank: elite
detection_range: 220
attack_range: 150
pursuit_range: 320
return_distance: 250
move_speed: 70
attack_interval: 1500ms
hurt_duration: 250ms
behavior: ranged
base_health: 80
attack_damage: 12
`
	var c AgentConfig
	require.NoError(t, yaml.Unmarshal([]byte(src), &c))

	assert.Equal(t, "orc_archer", c.Species)
	assert.Equal(t, RankElite, c.Rank)
	assert.Equal(t, BehaviorRanged, c.Behavior)
	assert.Equal(t, 1500*time.Millisecond, c.AttackInterval)
	assert.Equal(t, 250*time.Millisecond, c.HurtDuration)
	assert.NoError(t, c.Validate())
}
