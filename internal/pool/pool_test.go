package pool

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/horde/internal/agent"
	"github.com/udisondev/horde/internal/model"
)

var goblinCfg = &model.AgentConfig{Species: "goblin", BaseHealth: 50}

func TestAcquireRespectsMaxSize(t *testing.T) {
	p := New(0)
	p.SetMaxSize("goblin", 3)

	var handles []Handle
	for range 3 {
		h, ok := p.Acquire("goblin")
		require.True(t, ok)
		handles = append(handles, h)
	}

	_, ok := p.Acquire("goblin")
	assert.False(t, ok, "fourth acquire must fail closed")

	// deterministic: still fails
	_, ok = p.Acquire("goblin")
	assert.False(t, ok)

	st := p.Stats("goblin")
	assert.Equal(t, 3, st.Size)
	assert.Equal(t, 3, st.Active)
	assert.Equal(t, 3, st.CreateCount)
	assert.Equal(t, 3, st.AcquireCount)

	// distinct slots
	seen := map[uint32]bool{}
	for _, h := range handles {
		assert.False(t, seen[h.Index])
		seen[h.Index] = true
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	p := New(4)

	h, ok := p.Acquire("goblin")
	require.True(t, ok)

	require.True(t, p.Release(h))
	logs := captureLogs(t)
	assert.False(t, p.Release(h), "second release is a no-op")
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "release of stale handle ignored")
	assert.Contains(t, logs.String(), "handle="+h.String())

	st := p.Stats("goblin")
	assert.Equal(t, 1, st.Size)
	assert.Equal(t, 0, st.Active)
	assert.Equal(t, 1, st.ReleaseCount)

	// free list holds the slot exactly once
	a, ok := p.Acquire("goblin")
	require.True(t, ok)
	b, ok := p.Acquire("goblin")
	require.True(t, ok)
	assert.NotEqual(t, a.Index, b.Index)
	assert.Equal(t, 2, p.Stats("goblin").Size)
}

func TestReleaseResetsAgentAndInvalidatesHandle(t *testing.T) {
	p := New(1)

	h, ok := p.Acquire("goblin")
	require.True(t, ok)
	ag, ok := p.Get(h)
	require.True(t, ok)

	ag.Activate(h.EntityID(), goblinCfg, model.FactionEnemyLeft, model.Vec{X: 3}, "camp")
	ag.Runtime().State = model.StateChasing
	ag.Runtime().Target = 99

	require.True(t, p.Release(h))

	_, ok = p.Get(h)
	assert.False(t, ok, "stale handle must not resolve")
	_, ok = p.Get(HandleFromID(h.EntityID()))
	assert.False(t, ok)

	h2, ok := p.Acquire("goblin")
	require.True(t, ok)
	assert.Equal(t, h.Index, h2.Index)
	assert.Greater(t, h2.Gen, h.Gen)

	reused, ok := p.Get(h2)
	require.True(t, ok)
	assert.Equal(t, model.StateIdle, reused.Runtime().State)
	assert.Equal(t, model.NoEntity, reused.Runtime().Target)
	assert.Same(t, ag, reused, "arena addresses are stable")
}

func TestHandleEntityIDRoundTrip(t *testing.T) {
	h := Handle{Index: 7, Gen: 3}
	id := h.EntityID()
	assert.GreaterOrEqual(t, uint64(id), uint64(1)<<32)
	assert.Equal(t, h, HandleFromID(id))
	assert.True(t, Handle{}.IsZero())
}

func TestSpeciesAreIndependent(t *testing.T) {
	p := New(1)

	_, ok := p.Acquire("goblin")
	require.True(t, ok)
	_, ok = p.Acquire("orc")
	require.True(t, ok)
	_, ok = p.Acquire("goblin")
	assert.False(t, ok)

	stats := p.AllStats()
	require.Len(t, stats, 2)
	assert.Equal(t, "goblin", stats[0].Species)
	assert.Equal(t, "orc", stats[1].Species)
}

func TestArenaGrowsAcrossChunks(t *testing.T) {
	p := New(chunkSize * 2)

	first, ok := p.Acquire("goblin")
	require.True(t, ok)
	firstAgent, _ := p.Get(first)

	for range chunkSize + 5 {
		_, ok := p.Acquire("goblin")
		require.True(t, ok)
	}

	again, ok := p.Get(first)
	require.True(t, ok)
	assert.Same(t, firstAgent, again)
}

func TestDrain(t *testing.T) {
	p := New(5)
	for range 3 {
		_, ok := p.Acquire("goblin")
		require.True(t, ok)
	}

	count := 0
	p.ForEachActive(func(Handle, *agent.Agent) { count++ })
	assert.Equal(t, 3, count)

	assert.Equal(t, 3, p.Drain())
	assert.Equal(t, 0, p.Stats("goblin").Active)
	assert.Equal(t, 0, p.Drain())
}

// captureLogs routes the default logger into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoweredMaxSizeCapsReuse(t *testing.T) {
	p := New(0)
	p.SetMaxSize("goblin", 5)

	var handles []Handle
	for range 5 {
		h, ok := p.Acquire("goblin")
		require.True(t, ok)
		handles = append(handles, h)
	}
	for _, h := range handles[:3] {
		require.True(t, p.Release(h))
	}

	p.SetMaxSize("goblin", 2)
	assert.Equal(t, 2, p.Stats("goblin").Active)

	_, ok := p.Acquire("goblin")
	assert.False(t, ok, "free slots exist but the species is at its lowered cap")
	st := p.Stats("goblin")
	assert.Equal(t, 2, st.Active)
	assert.Equal(t, 5, st.Size, "lowering the cap does not shrink the arena")

	require.True(t, p.Release(handles[3]))
	h, ok := p.Acquire("goblin")
	require.True(t, ok, "reuse allowed once below the cap")
	assert.LessOrEqual(t, p.Stats("goblin").Active, p.Stats("goblin").MaxSize)
	assert.Equal(t, 5, p.Stats("goblin").CreateCount, "reused, not created")
	assert.True(t, p.Valid(h))
}

func TestDoubleReleaseKeepsFreeListIntact(t *testing.T) {
	p := New(3)
	a, _ := p.Acquire("goblin")
	b, _ := p.Acquire("goblin")
	require.True(t, p.Release(a))
	require.True(t, p.Release(b))

	logs := captureLogs(t)
	assert.False(t, p.Release(a))
	assert.False(t, p.Release(b))
	assert.Equal(t, 2, strings.Count(logs.String(), "level=WARN"))

	var got []Handle
	for range 3 {
		h, ok := p.Acquire("goblin")
		require.True(t, ok)
		got = append(got, h)
	}
	_, ok := p.Acquire("goblin")
	assert.False(t, ok)
	assert.Equal(t, 3, p.Stats("goblin").Size)
	assert.Len(t, map[uint32]bool{got[0].Index: true, got[1].Index: true, got[2].Index: true}, 3)
}
