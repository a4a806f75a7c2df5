package pathfinding

import (
	"math/rand"
	"testing"

	"github.com/milk9111/gridwalk/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGrid(t *testing.T, w, h int) *grid.Grid {
	t.Helper()
	g, err := grid.New(w, h, 40, 40)
	require.NoError(t, err)
	return g
}

func blockColumn(t *testing.T, g *grid.Grid, x, fromY, toY int) {
	t.Helper()
	for y := fromY; y <= toY; y++ {
		require.NoError(t, g.SetState(x, y, grid.NotWalkable))
	}
}

func coords(p Path) [][2]int {
	out := make([][2]int, 0, len(p))
	for _, c := range p {
		out = append(out, [2]int{c.X, c.Y})
	}
	return out
}

func TestFindPathScenarios(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T, g *grid.Grid)
		want  [][2]int
	}{
		{
			name:  "open_grid",
			setup: func(t *testing.T, g *grid.Grid) {},
			want:  [][2]int{{4, 0}, {5, 0}},
		},
		{
			name:  "partial_wall",
			setup: func(t *testing.T, g *grid.Grid) { blockColumn(t, g, 4, 0, 4) },
			want: [][2]int{
				{3, 1}, {3, 2}, {3, 3}, {3, 4}, {3, 5}, {4, 5},
				{5, 5}, {5, 4}, {5, 3}, {5, 2}, {5, 1}, {5, 0},
			},
		},
		{
			name:  "full_wall",
			setup: func(t *testing.T, g *grid.Grid) { blockColumn(t, g, 4, 0, 19) },
			want:  [][2]int{},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := newGrid(t, 20, 20)
			c.setup(t, g)

			path, err := New(g).FindPath(3, 0, 5, 0)
			require.NoError(t, err)
			assert.Equal(t, c.want, coords(path))
		})
	}
}

func TestFindPathEmptyResults(t *testing.T) {
	g := newGrid(t, 5, 5)
	require.NoError(t, g.SetState(4, 4, grid.NotWalkable))
	pf := New(g)

	path, err := pf.FindPath(2, 2, 2, 2)
	require.NoError(t, err)
	assert.True(t, path.Empty(), "start == goal")

	path, err = pf.FindPath(0, 0, 4, 4)
	require.NoError(t, err)
	assert.True(t, path.Empty(), "goal not walkable")

	path, err = pf.FindPath(0, 0, 1, 1, grid.Cell{X: 1, Y: 1})
	require.NoError(t, err)
	assert.True(t, path.Empty(), "goal busy")
}

func TestFindPathOutOfBounds(t *testing.T) {
	pf := New(newGrid(t, 5, 5))

	_, err := pf.FindPath(-1, 0, 2, 2)
	require.ErrorIs(t, err, grid.ErrOutOfBounds)

	_, err = pf.FindPath(0, 0, 5, 0)
	require.ErrorIs(t, err, grid.ErrOutOfBounds)
}

func TestFindPathDeterministic(t *testing.T) {
	g := newGrid(t, 12, 12)
	blockColumn(t, g, 6, 2, 9)

	pf := New(g)
	first, err := pf.FindPath(1, 5, 10, 6)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	for i := 0; i < 10; i++ {
		again, err := pf.FindPath(1, 5, 10, 6)
		require.NoError(t, err)
		require.Equal(t, first.String(), again.String())
	}
}

func TestFindPathNoPathIsStable(t *testing.T) {
	g := newGrid(t, 8, 8)
	blockColumn(t, g, 3, 0, 7)
	pf := New(g)

	for i := 0; i < 3; i++ {
		path, err := pf.FindPath(0, 0, 7, 7)
		require.NoError(t, err)
		require.Empty(t, path)
	}

	require.NoError(t, g.SetState(3, 7, grid.Walkable))
	path, err := pf.FindPath(0, 0, 7, 7)
	require.NoError(t, err)
	assert.Len(t, path, 14)
}

func TestBusyCellsDoNotPersist(t *testing.T) {
	g := newGrid(t, 10, 10)
	pf := New(g)

	detour, err := pf.FindPath(0, 0, 2, 0, grid.Cell{X: 1, Y: 0})
	require.NoError(t, err)
	assert.Len(t, detour, 4)
	for _, c := range detour {
		assert.False(t, c.X == 1 && c.Y == 0, "busy cell used in path")
	}

	direct, err := pf.FindPath(0, 0, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 0}, {2, 0}}, coords(direct))

	c, err := g.Get(1, 0)
	require.NoError(t, err)
	assert.True(t, c.Walkable())
}

func TestFindPathIsShortest(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 25; round++ {
		g := newGrid(t, 15, 15)
		g.Populate(func(x, y int) grid.State {
			if rng.Float64() < 0.25 {
				return grid.NotWalkable
			}
			return grid.Walkable
		})
		require.NoError(t, g.SetState(0, 0, grid.Walkable))
		require.NoError(t, g.SetState(14, 14, grid.Walkable))

		path, err := New(g).FindPath(0, 0, 14, 14)
		require.NoError(t, err)

		want := bfsDistance(g, 0, 0, 14, 14)
		if want < 0 {
			assert.Empty(t, path, "round %d", round)
			continue
		}
		require.Len(t, path, want, "round %d", round)

		px, py := 0, 0
		for _, c := range path {
			assert.Equal(t, 1, absInt(c.X-px)+absInt(c.Y-py), "round %d: non-adjacent step to %v", round, c)
			assert.True(t, c.Walkable(), "round %d: blocked cell %v", round, c)
			px, py = c.X, c.Y
		}
	}
}

func TestPathCacheInvalidatesOnGridChange(t *testing.T) {
	g := newGrid(t, 6, 6)
	pf := New(g, WithPathCache())

	first, err := pf.FindPath(0, 0, 5, 0)
	require.NoError(t, err)
	require.Len(t, first, 5)

	first[0] = grid.Cell{X: 99, Y: 99}
	cached, err := pf.FindPath(0, 0, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cached[0].X, "cache must hand out copies")

	blockColumn(t, g, 2, 0, 4)
	rerouted, err := pf.FindPath(0, 0, 5, 0)
	require.NoError(t, err)
	assert.Len(t, rerouted, 15)

	busy, err := pf.FindPath(0, 0, 5, 0, grid.Cell{X: 2, Y: 5})
	require.NoError(t, err)
	assert.Empty(t, busy)
}

func bfsDistance(g *grid.Grid, sx, sy, gx, gy int) int {
	dist := make(map[[2]int]int)
	dist[[2]int{sx, sy}] = 0
	queue := [][2]int{{sx, sy}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == [2]int{gx, gy} {
			return dist[cur]
		}
		for _, n := range g.Neighbors(cur[0], cur[1]) {
			k := [2]int{n.X, n.Y}
			if _, seen := dist[k]; seen || !n.Walkable() {
				continue
			}
			dist[k] = dist[cur] + 1
			queue = append(queue, k)
		}
	}
	return -1
}
