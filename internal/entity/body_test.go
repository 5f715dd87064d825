package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsracer/repman/internal/geom"
)

func TestMoveWithoutBoundsOrWallsAlwaysCommits(t *testing.T) {
	for _, delta := range []float64{0, 0.05, 1, 100} {
		body := NewBody(geom.Pos(3, 3), math.Pi/2)
		body.SetMotion(2, 1)

		body.Move(delta, nil, nil)

		assert.False(t, body.Colliding())
		assert.InDelta(t, 3, body.Pos().X, 1e-9)
		assert.InDelta(t, 3+2*delta, body.Pos().Y, 1e-9)
		assert.InDelta(t, math.Pi/2+delta, body.Angle(), 1e-12)
	}
}

func TestMoveIntoWallIsRejectedButStillTurns(t *testing.T) {
	body := NewBody(geom.Pos(1.5, 0.5), 0)
	body.SetMotion(1, math.Pi)
	walls := []Obstacle{NewWall(2, 0)}

	body.Move(1, nil, walls)

	assert.True(t, body.Colliding())
	assert.Equal(t, geom.Pos(1.5, 0.5), body.Pos())
	assert.InDelta(t, math.Pi, body.Angle(), 1e-12)
}

func TestMoveOutsideBoundsIsRejected(t *testing.T) {
	bounds := geom.FromOrigin(4, 4)
	body := NewBody(geom.Pos(3.5, 2), 0)
	body.SetMotion(1, 0)

	body.Move(1, &bounds, nil)

	assert.True(t, body.Colliding())
	assert.Equal(t, geom.Pos(3.5, 2), body.Pos())
}

func TestMoveOntoBoundaryEdgeIsAllowed(t *testing.T) {
	bounds := geom.FromOrigin(4, 4)
	body := NewBody(geom.Pos(3, 2), 0)
	body.SetMotion(1, 0)

	body.Move(1, &bounds, nil)

	assert.False(t, body.Colliding())
	assert.InDelta(t, 4, body.Pos().X, 1e-12)
}

func TestCollidingFlagClearsAfterFreeMove(t *testing.T) {
	body := NewBody(geom.Pos(1.5, 0.5), 0)
	body.SetMotion(1, 0)
	walls := []Obstacle{NewWall(2, 0)}

	body.Move(1, nil, walls)
	require.True(t, body.Colliding())

	body.SetMotion(0, 0)
	body.Move(1, nil, walls)
	assert.False(t, body.Colliding())
}

func TestWallFootprintIsInclusive(t *testing.T) {
	wall := NewWall(2, 3)
	for _, p := range []geom.Position{geom.Pos(2, 3), geom.Pos(3, 4), geom.Pos(2.5, 3.5), geom.Pos(3, 3)} {
		assert.True(t, wall.CollidesWith(p), "%v should collide", p)
	}
	for _, p := range []geom.Position{geom.Pos(1.99, 3), geom.Pos(3.01, 4), geom.Pos(2.5, 4.01)} {
		assert.False(t, wall.CollidesWith(p), "%v should not collide", p)
	}
}
