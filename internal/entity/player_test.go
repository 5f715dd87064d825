package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sportsracer/repman/internal/geom"
)

func TestPlayerInputMapping(t *testing.T) {
	cases := []struct {
		name          string
		w, a, s, d    bool
		wantMove      float64
		wantTurnSpeed float64
	}{
		{name: "idle"},
		{name: "forward", w: true, wantMove: 4},
		{name: "reverse ignored", s: true},
		{name: "left", a: true, wantTurnSpeed: -math.Pi},
		{name: "right", d: true, wantTurnSpeed: math.Pi},
		{name: "left and right cancel", a: true, d: true},
		{name: "forward right", w: true, d: true, wantMove: 4, wantTurnSpeed: math.Pi},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPlayer("p", "alice", geom.Origin(), DefaultTuning())
			p.Input(tc.w, tc.a, tc.s, tc.d)
			assert.Equal(t, tc.wantMove, p.MoveSpeed())
			assert.Equal(t, tc.wantTurnSpeed, p.TurnSpeed())
		})
	}
}

func TestPlayerPivotsAgainstWall(t *testing.T) {
	p := NewPlayer("p", "alice", geom.Pos(1.9, 0.5), DefaultTuning())
	p.Input(true, false, false, true)

	p.Move(0.1, nil, []Obstacle{NewWall(2, 0)})

	assert.True(t, p.Colliding())
	assert.Equal(t, geom.Pos(1.9, 0.5), p.Pos())
	assert.InDelta(t, math.Pi*0.1, p.Angle(), 1e-12)
}

func TestPlayerCollect(t *testing.T) {
	tuning := DefaultTuning()
	p := NewPlayer("p", "alice", geom.Pos(6, 4), tuning)
	top1 := NewTopFlop("t1", geom.Pos(6, 4), 0, KindTop, tuning)
	top2 := NewTopFlop("t2", geom.Pos(6.5, 4), 0, KindTop, tuning)
	flop := NewTopFlop("f1", geom.Pos(7, 5), 0, KindFlop, tuning)

	collected := p.Collect([]*TopFlop{top1, flop, top2})

	assert.Equal(t, []*TopFlop{top1, top2}, collected)
	assert.Equal(t, 2, p.Points())
}

func TestPlayerCollectFlopAtExactRadius(t *testing.T) {
	tuning := DefaultTuning()
	p := NewPlayer("p", "alice", geom.Pos(0, 0), tuning)
	flop := NewTopFlop("f1", geom.Pos(1, 0), 0, KindFlop, tuning)
	far := NewTopFlop("t1", geom.Pos(1.01, 0), 0, KindTop, tuning)

	collected := p.Collect([]*TopFlop{flop, far})

	assert.Equal(t, []*TopFlop{flop}, collected)
	assert.Equal(t, -1, p.Points(), "points may go negative")
}

func TestPlayerCollectStackedItems(t *testing.T) {
	tuning := DefaultTuning()
	p := NewPlayer("p", "alice", geom.Pos(2, 2), tuning)
	a := NewTopFlop("a", geom.Pos(2.5, 2), 0, KindFlop, tuning)
	b := NewTopFlop("b", geom.Pos(2.5, 2), 0, KindFlop, tuning)

	collected := p.Collect([]*TopFlop{a, b})

	assert.Len(t, collected, 2)
	assert.Equal(t, -2, p.Points())
}

func TestPlayerCollectNothing(t *testing.T) {
	p := NewPlayer("p", "alice", geom.Pos(2, 2), DefaultTuning())
	assert.Empty(t, p.Collect(nil))
	assert.Equal(t, 0, p.Points())
}
