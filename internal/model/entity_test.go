package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankTypeBonusOrder(t *testing.T) {
	assert.Greater(t, RankPlayer.TypeBonus(), RankBoss.TypeBonus())
	assert.Greater(t, RankBoss.TypeBonus(), RankElite.TypeBonus())
	assert.Greater(t, RankElite.TypeBonus(), RankNormal.TypeBonus())
	assert.Zero(t, RankNormal.TypeBonus())
}

func TestParseFaction(t *testing.T) {
	tests := []struct {
		in      string
		want    Faction
		wantErr bool
	}{
		{"player", FactionPlayer, false},
		{"Enemy_Left", FactionEnemyLeft, false},
		{"right", FactionEnemyRight, false},
		{"", FactionNone, false},
		{"neutral", FactionNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFaction(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFactionTextRoundTrip(t *testing.T) {
	for _, f := range []Faction{FactionNone, FactionPlayer, FactionEnemyLeft, FactionEnemyRight} {
		text, err := f.MarshalText()
		require.NoError(t, err)

		var back Faction
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, f, back)
	}
}

func TestCueOneShot(t *testing.T) {
	assert.True(t, CueDeath.OneShot())
	assert.True(t, CueAttackMelee.OneShot())
	assert.False(t, CueWalk.OneShot())
	assert.False(t, CueIdle.OneShot())
}

func TestAgentRuntimeCooldown(t *testing.T) {
	var r AgentRuntime
	assert.True(t, r.CooldownElapsed(0, 1000), "never attacked")

	r.HasAttacked = true
	r.LastAttack = 500
	assert.False(t, r.CooldownElapsed(1000, 1000))
	assert.True(t, r.CooldownElapsed(1500, 1000))

	r.Target = 7
	r.Reset()
	assert.Equal(t, AgentRuntime{}, r)
}
