package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveTowards(t *testing.T) {
	tests := []struct {
		name string
		from Vec
		to   Vec
		step float64
		want Vec
	}{
		{"partial step", Vec{X: 0, Y: 0}, Vec{X: 10, Y: 0}, 4, Vec{X: 4, Y: 0}},
		{"no overshoot", Vec{X: 0, Y: 0}, Vec{X: 3, Y: 4}, 10, Vec{X: 3, Y: 4}},
		{"zero step", Vec{X: 1, Y: 1}, Vec{X: 5, Y: 5}, 0, Vec{X: 1, Y: 1}},
		{"diagonal", Vec{X: 0, Y: 0}, Vec{X: 3, Y: 4}, 2.5, Vec{X: 1.5, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveTowards(tt.from, tt.to, tt.step)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestClampToBounds(t *testing.T) {
	b := NewBounds(0, 0, 100, 50)

	assert.Equal(t, Vec{X: 100, Y: 0}, ClampToBounds(b, Vec{X: 140, Y: -3}))
	assert.Equal(t, Vec{X: 20, Y: 30}, ClampToBounds(b, Vec{X: 20, Y: 30}))

	var unbounded Bounds
	assert.Equal(t, Vec{X: -1e6, Y: 1e6}, ClampToBounds(unbounded, Vec{X: -1e6, Y: 1e6}))
}

func TestFacingFor(t *testing.T) {
	tests := []struct {
		delta Vec
		want  Facing
	}{
		{Vec{X: 5, Y: 1}, FacingRight},
		{Vec{X: -5, Y: 1}, FacingLeft},
		{Vec{X: 1, Y: -5}, FacingUp},
		{Vec{X: 1, Y: 5}, FacingDown},
		{Vec{X: 3, Y: 3}, FacingRight},
		{Vec{}, FacingLeft},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FacingFor(tt.delta, FacingLeft), "delta %v", tt.delta)
	}
}

func TestVecDistance(t *testing.T) {
	a := Vec{X: 0, Y: 0}
	b := Vec{X: 30, Y: 40}
	assert.InDelta(t, 50.0, a.Distance(b), 1e-9)
	assert.False(t, math.IsNaN(a.Distance(a)))
}
