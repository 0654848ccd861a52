package target

import (
	"fmt"
	"testing"
	"time"

	"github.com/udisondev/horde/internal/faction"
	"github.com/udisondev/horde/internal/model"
	"github.com/udisondev/horde/internal/world"
)

// benchSelector fills a world with n candidates of every adversary of
// EnemyLeft, spread along X so roughly half fall inside detection range.
func benchSelector(b *testing.B, n int, interval time.Duration) *Selector {
	b.Helper()
	w := world.New(model.Bounds{})
	id := model.EntityID(1)
	for _, f := range []model.Faction{model.FactionPlayer, model.FactionEnemyRight} {
		for i := range n {
			e := &fakeEntity{
				id:      id,
				pos:     model.Vec{X: float64(i * 10), Y: float64(i % 7)},
				faction: f,
				rank:    model.RankNormal,
				ratio:   1 - float64(i%4)*0.2,
			}
			if err := w.Add(e); err != nil {
				b.Fatal(err)
			}
			id++
		}
	}
	s := NewSelector(w, faction.NewDefault(0, 0), interval)
	s.BeginTick(0)
	return s
}

// BenchmarkFindBestTarget measures one query against a warm cache.
func BenchmarkFindBestTarget(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("candidates=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			s := benchSelector(b, n, time.Hour)
			detection := float64(n*10) / 2

			b.ResetTimer()
			for range b.N {
				if _, ok := s.FindBestTarget(model.Vec{}, model.FactionEnemyLeft, detection); !ok {
					b.Fatal("no target")
				}
			}
		})
	}
}

// BenchmarkFindBestTarget_Refresh includes the faction cache rebuild on every call.
func BenchmarkFindBestTarget_Refresh(b *testing.B) {
	b.ReportAllocs()
	s := benchSelector(b, 100, time.Nanosecond)

	b.ResetTimer()
	now := time.Duration(0)
	for range b.N {
		now += time.Millisecond
		s.BeginTick(now)
		s.FindBestTarget(model.Vec{}, model.FactionEnemyLeft, 500)
	}
}
