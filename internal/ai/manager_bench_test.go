package ai

import (
	"fmt"
	"testing"
	"time"

	"github.com/udisondev/horde/internal/event"
	"github.com/udisondev/horde/internal/faction"
	"github.com/udisondev/horde/internal/model"
	"github.com/udisondev/horde/internal/pool"
	"github.com/udisondev/horde/internal/target"
	"github.com/udisondev/horde/internal/world"
)

type nopAnimator struct{}

func (nopAnimator) PlayAnimation(model.EntityID, model.Cue) {}

// benchTickManager registers n agents on both enemy sides of a 2000x1000
// arena plus a few players, so the batch mixes idle, chasing and attacking.
func benchTickManager(b *testing.B, n int) *TickManager {
	b.Helper()
	w := world.New(model.NewBounds(0, 0, 2000, 1000))
	sel := target.NewSelector(w, faction.NewDefault(1000, 20), 250*time.Millisecond)
	tm := NewTickManager(&Env{Targets: sel, World: w, Animator: nopAnimator{}, Bus: event.NewBus()}, 1)

	cfg := scenarioConfig()
	cfg.PatrolRadius = 40
	cfg.MaxIdleTime = 500 * time.Millisecond
	cfg.BaseHealth = 1e9

	agents := pool.New(n)
	for i := range n {
		h, ok := agents.Acquire(cfg.Species)
		if !ok {
			b.Fatal("pool exhausted")
		}
		a, _ := agents.Get(h)
		side, x := model.FactionEnemyLeft, 800.0-float64(i%40)*20
		if i%2 == 1 {
			side, x = model.FactionEnemyRight, 1200.0+float64(i%40)*20
		}
		a.Activate(h.EntityID(), cfg, side, model.Vec{X: x, Y: float64(i%50) * 20}, "bench")
		if err := w.Add(a); err != nil {
			b.Fatal(err)
		}
		tm.Register(h, a)
	}
	for i := range 4 {
		p := world.NewPlayer(model.EntityID(world.PlayerIDBase+i+1), "bench", model.Vec{X: 1000, Y: float64(i) * 250}, 1e9, 100)
		if err := w.Add(p); err != nil {
			b.Fatal(err)
		}
	}
	return tm
}

// BenchmarkTickAll measures one AI batch at a 30 Hz frame.
func BenchmarkTickAll(b *testing.B) {
	const dt = time.Second / 30
	for _, n := range []int{10, 100, 500} {
		b.Run(fmt.Sprintf("agents=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			tm := benchTickManager(b, n)
			now := time.Duration(0)
			// settle into steady state
			for range 30 {
				now += dt
				tm.TickAll(now, dt)
			}

			b.ResetTimer()
			for range b.N {
				now += dt
				tm.TickAll(now, dt)
			}
		})
	}
}

// BenchmarkTickAll_Paused measures the early return of a paused batch.
func BenchmarkTickAll_Paused(b *testing.B) {
	b.ReportAllocs()
	tm := benchTickManager(b, 100)
	tm.SetPaused(true)

	b.ResetTimer()
	for range b.N {
		tm.TickAll(time.Second, time.Second/30)
	}
}
