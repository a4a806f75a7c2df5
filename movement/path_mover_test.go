package movement

import (
	"math/rand"
	"testing"

	"github.com/milk9111/gridwalk/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 1.0 / 60

func newPathMover(t *testing.T, w, h int, cellsPerSecond float64) (*grid.Grid, *PathMover) {
	t.Helper()
	g, err := grid.New(w, h, 40, 40)
	require.NoError(t, err)
	mover := NewCellMover(40, 40, SpeedFromMultiplier(40, cellsPerSecond))
	return g, NewPathMover(g, nil, mover, WithSeed(1))
}

func runUntilArrived(t *testing.T, pm *PathMover, visit func(x, y int)) {
	t.Helper()
	for i := 0; i < 20000; i++ {
		if pm.IsAtDestination() {
			return
		}
		pm.Update(tick)
		if visit != nil {
			visit(pm.Mover().CellX(), pm.Mover().CellY())
		}
	}
	t.Fatalf("agent never arrived, still at (%d,%d)", pm.Mover().CellX(), pm.Mover().CellY())
}

func TestPathMoverRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		dx, dy int
	}{
		{"along_row", 7, 0},
		{"corner", 9, 9},
		{"back_home", 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, pm := newPathMover(t, 10, 10, 10)
			require.NoError(t, pm.SetPositionToCell(2, 3))

			require.NoError(t, pm.MoveToCell(c.dx, c.dy))
			assert.True(t, pm.IsMoving())
			assert.False(t, pm.IsAtDestination())

			runUntilArrived(t, pm, nil)

			assert.Equal(t, c.dx, pm.Mover().CellX())
			assert.Equal(t, c.dy, pm.Mover().CellY())
			assert.False(t, pm.IsMoving())
			assert.True(t, pm.IsPathEmpty())

			cell, ok := pm.CurrentCell()
			require.True(t, ok)
			assert.Equal(t, c.dx, cell.X)
			assert.Equal(t, c.dy, cell.Y)
		})
	}
}

func TestPathMoverQueriesBeforeFirstStep(t *testing.T) {
	_, pm := newPathMover(t, 5, 5, 1)

	assert.True(t, pm.IsAtDestination())
	assert.False(t, pm.IsMoving())
	cell, ok := pm.CurrentCell()
	require.True(t, ok)
	assert.Equal(t, grid.Cell{X: 0, Y: 0, State: grid.Walkable}, cell)

	require.NoError(t, pm.MoveToCell(2, 0))
	assert.False(t, pm.IsPathEmpty())
	assert.Len(t, pm.Path(), 2)

	pm.Update(0.5)
	_, ok = pm.CurrentCell()
	assert.False(t, ok, "no current cell mid transit")
	assert.Len(t, pm.Path(), 1)
}

func TestPathMoverReroutesMidFlight(t *testing.T) {
	_, pm := newPathMover(t, 10, 10, 1)
	require.NoError(t, pm.SetPositionToCell(5, 5))

	require.NoError(t, pm.MoveToCell(9, 5))
	pm.Update(0.5)
	tx, ty, ok := pm.Mover().Target()
	require.True(t, ok)
	require.Equal(t, [2]int{6, 5}, [2]int{tx, ty})

	require.NoError(t, pm.MoveToCell(1, 5))
	tx, ty, ok = pm.Mover().Target()
	require.True(t, ok)
	assert.Equal(t, [2]int{4, 5}, [2]int{tx, ty}, "transit is redirected without finishing")
	assert.Equal(t, 5, pm.Mover().CellX())

	runUntilArrived(t, pm, func(x, y int) {
		assert.Less(t, x, 6, "old route cell visited")
	})
	assert.Equal(t, 1, pm.Mover().CellX())
	assert.Equal(t, 5, pm.Mover().CellY())
}

func TestPathMoverRerouteNeverReachesOldDestination(t *testing.T) {
	g, pm := newPathMover(t, 20, 20, 4)

	require.NoError(t, pm.MoveToCell(19, 0))
	for i := 0; i < 60; i++ {
		pm.Update(tick)
	}
	require.True(t, pm.IsMoving())

	require.NoError(t, pm.MoveToCell(0, 19))
	runUntilArrived(t, pm, func(x, y int) {
		assert.True(t, g.IsWithin(x, y), "left the grid at (%d,%d)", x, y)
		assert.False(t, x == 19 && y == 0, "visited abandoned destination")
	})
	assert.Equal(t, 0, pm.Mover().CellX())
	assert.Equal(t, 19, pm.Mover().CellY())
}

func TestPathMoverRerouteToOwnCell(t *testing.T) {
	_, pm := newPathMover(t, 10, 10, 1)
	require.NoError(t, pm.SetPositionToCell(5, 5))
	require.NoError(t, pm.MoveToCell(8, 5))
	pm.Update(0.5)

	require.NoError(t, pm.MoveToCell(5, 5))
	assert.True(t, pm.IsPathEmpty())
	assert.True(t, pm.IsMoving(), "still sliding back onto its cell")
	_, hasDest := pm.Destination()
	assert.False(t, hasDest)

	pm.Update(1)
	assert.True(t, pm.IsAtDestination())
	cell, ok := pm.CurrentCell()
	require.True(t, ok)
	assert.Equal(t, 5, cell.X)
	assert.Equal(t, 5, cell.Y)
}

func TestPathMoverStopMovement(t *testing.T) {
	t.Run("before_first_step", func(t *testing.T) {
		_, pm := newPathMover(t, 10, 10, 1)
		require.NoError(t, pm.MoveToCell(5, 0))
		pm.Update(0)
		require.True(t, pm.Mover().IsInTransit())

		pm.StopMovement()
		assert.True(t, pm.IsPathEmpty())
		assert.False(t, pm.IsMoving())
		assert.Equal(t, 0, pm.Mover().CellX())
	})

	t.Run("segment_underway", func(t *testing.T) {
		_, pm := newPathMover(t, 10, 10, 1)
		require.NoError(t, pm.MoveToCell(5, 0))
		pm.Update(0.25)

		pm.StopMovement()
		assert.True(t, pm.IsPathEmpty())
		assert.True(t, pm.IsMoving())

		pm.Update(1)
		assert.True(t, pm.IsAtDestination())
		assert.Equal(t, 1, pm.Mover().CellX())

		pm.Update(1)
		assert.Equal(t, 1, pm.Mover().CellX(), "no further cells after stop")
	})
}

func TestPathMoverCardinalHelpers(t *testing.T) {
	_, pm := newPathMover(t, 5, 5, 10)
	require.NoError(t, pm.SetPositionToCell(2, 2))

	steps := []struct {
		name   string
		move   func() error
		wx, wy int
	}{
		{"up", pm.MoveToUpCell, 2, 1},
		{"right", pm.MoveToRightCell, 3, 1},
		{"down", pm.MoveToDownCell, 3, 2},
		{"left", pm.MoveToLeftCell, 2, 2},
	}
	for _, s := range steps {
		require.NoError(t, s.move(), s.name)
		runUntilArrived(t, pm, nil)
		assert.Equal(t, s.wx, pm.Mover().CellX(), s.name)
		assert.Equal(t, s.wy, pm.Mover().CellY(), s.name)
	}

	require.NoError(t, pm.SetPositionToCell(0, 0))
	require.ErrorIs(t, pm.MoveToLeftCell(), grid.ErrOutOfBounds)
	require.ErrorIs(t, pm.MoveToUpCell(), grid.ErrOutOfBounds)
}

func TestPathMoverBlockedDestination(t *testing.T) {
	g, pm := newPathMover(t, 6, 6, 1)
	require.NoError(t, g.SetState(4, 4, grid.NotWalkable))

	require.NoError(t, pm.MoveToCell(4, 4))
	assert.True(t, pm.IsPathEmpty())
	assert.True(t, pm.IsAtDestination())

	require.NoError(t, pm.MoveToCell(2, 0, grid.Cell{X: 2, Y: 0}))
	assert.True(t, pm.IsPathEmpty(), "busy goal")

	require.NoError(t, pm.MoveToCell(2, 0, grid.Cell{X: 1, Y: 0}))
	assert.Len(t, pm.Path(), 4, "detour around busy cell")
}

func TestPathMoverRandomCellIsReproducible(t *testing.T) {
	g, a := newPathMover(t, 12, 12, 20)
	b := NewPathMover(g, nil, NewCellMover(40, 40, SpeedFromMultiplier(40, 20)))

	require.NoError(t, a.MoveToRandomCell(rand.New(rand.NewSource(99))))
	require.NoError(t, b.MoveToRandomCell(rand.New(rand.NewSource(99))))
	runUntilArrived(t, a, nil)
	runUntilArrived(t, b, nil)

	want, ok := g.RandomCell(rand.New(rand.NewSource(99)), grid.Cell.Walkable)
	require.True(t, ok)
	assert.Equal(t, want.X, a.Mover().CellX())
	assert.Equal(t, want.Y, a.Mover().CellY())
	assert.Equal(t, a.Mover().CellX(), b.Mover().CellX())
	assert.Equal(t, a.Mover().CellY(), b.Mover().CellY())
}

func TestPathMoverRandomCellWithNothingWalkable(t *testing.T) {
	g, pm := newPathMover(t, 3, 3, 1)
	g.Populate(func(x, y int) grid.State { return grid.NotWalkable })

	require.NoError(t, pm.MoveToRandomCell(nil))
	assert.True(t, pm.IsAtDestination())
}

func TestPathMoverOnDestination(t *testing.T) {
	_, pm := newPathMover(t, 8, 8, 10)
	var reached []grid.Cell
	pm.OnDestination(func(c grid.Cell) { reached = append(reached, c) })

	require.NoError(t, pm.MoveToCell(3, 3))
	runUntilArrived(t, pm, nil)
	require.NoError(t, pm.MoveToCell(3, 1))
	runUntilArrived(t, pm, nil)

	require.Len(t, reached, 2)
	assert.Equal(t, 3, reached[0].X)
	assert.Equal(t, 3, reached[0].Y)
	assert.Equal(t, 1, reached[1].Y)
}

func TestPathMoverReleaseMidMotion(t *testing.T) {
	_, pm := newPathMover(t, 10, 10, 1)
	fired := false
	pm.OnDestination(func(grid.Cell) { fired = true })
	require.NoError(t, pm.MoveToCell(9, 9))
	pm.Update(0.3)
	require.True(t, pm.IsMoving())

	mover := pm.Mover()
	require.NotPanics(t, func() {
		pm.Release()
		pm.Release()
		pm.Update(tick)
		pm.StopMovement()
	})

	assert.True(t, pm.Released())
	assert.False(t, pm.IsMoving())
	assert.True(t, pm.IsPathEmpty())
	_, ok := pm.CurrentCell()
	assert.False(t, ok)
	require.ErrorIs(t, pm.MoveToCell(1, 1), ErrReleased)
	require.ErrorIs(t, pm.MoveToRandomCell(nil), ErrReleased)

	require.NotPanics(t, func() { mover.Update(5) })
	assert.True(t, mover.IsAtRest())
	assert.False(t, fired)
}

func TestPathMoverZeroSizedCells(t *testing.T) {
	g, err := grid.New(5, 5, 0, 0)
	require.NoError(t, err)
	mover := NewCellMover(0, 0, SpeedFromMultiplier(0, 1))
	pm := NewPathMover(g, nil, mover, WithSeed(1))

	require.NoError(t, pm.MoveToCell(2, 0))
	runUntilArrived(t, pm, nil)

	cell, ok := pm.CurrentCell()
	require.True(t, ok)
	assert.Equal(t, 2, cell.X)
	assert.Equal(t, 0, cell.Y)
	assert.False(t, pm.IsMoving())
}
