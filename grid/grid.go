package grid

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrOutOfBounds = errors.New("grid: out of bounds")
	ErrInvalidSize = errors.New("grid: invalid size")
)

// State is the walkability of a single cell.
type State int

const (
	Walkable State = iota
	NotWalkable
)

func (s State) String() string {
	switch s {
	case Walkable:
		return "walkable"
	case NotWalkable:
		return "not_walkable"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Cell is a single addressable tile. Identity is its coordinate.
type Cell struct {
	X     int
	Y     int
	State State
}

func (c Cell) Walkable() bool {
	return c.State == Walkable
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid is a fixed-size table of cells. Cells are stored row-major and only
// their state may change after construction.
type Grid struct {
	width      int
	height     int
	cellWidth  int
	cellHeight int
	cells      []Cell
	version    uint64
}

// New creates a width x height grid with every cell walkable. Cell dimensions
// are only used for pixel conversions and may be zero.
func New(width, height, cellWidth, cellHeight int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if cellWidth < 0 || cellHeight < 0 {
		return nil, fmt.Errorf("%w: negative cell size %dx%d", ErrInvalidSize, cellWidth, cellHeight)
	}

	g := &Grid{
		width:      width,
		height:     height,
		cellWidth:  cellWidth,
		cellHeight: cellHeight,
		cells:      make([]Cell, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x] = Cell{X: x, Y: y, State: Walkable}
		}
	}
	return g, nil
}

func (g *Grid) Width() int      { return g.width }
func (g *Grid) Height() int     { return g.height }
func (g *Grid) CellWidth() int  { return g.cellWidth }
func (g *Grid) CellHeight() int { return g.cellHeight }

// Version increases every time a cell state changes.
func (g *Grid) Version() uint64 {
	return g.version
}

// IsWithin reports whether Get(x, y) would succeed.
func (g *Grid) IsWithin(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Get returns the cell at (x, y).
func (g *Grid) Get(x, y int) (Cell, error) {
	if !g.IsWithin(x, y) {
		return Cell{}, fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfBounds, x, y, g.width, g.height)
	}
	return g.cells[y*g.width+x], nil
}

// Lookup is Get without the error, for callers probing around edges.
func (g *Grid) Lookup(x, y int) (Cell, bool) {
	if !g.IsWithin(x, y) {
		return Cell{}, false
	}
	return g.cells[y*g.width+x], true
}

// SetState flips a single cell in place.
func (g *Grid) SetState(x, y int, state State) error {
	if !g.IsWithin(x, y) {
		return fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfBounds, x, y, g.width, g.height)
	}
	idx := y*g.width + x
	if g.cells[idx].State == state {
		return nil
	}
	g.cells[idx].State = state
	g.version++
	return nil
}

// Populate assigns every cell state from fn, row by row.
func (g *Grid) Populate(fn func(x, y int) State) {
	if fn == nil {
		return
	}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			idx := y*g.width + x
			state := fn(x, y)
			if g.cells[idx].State != state {
				g.cells[idx].State = state
				g.version++
			}
		}
	}
}

// Neighbors returns the orthogonal neighbors of (x, y) that lie inside the
// grid, always in the order left, up, right, down.
func (g *Grid) Neighbors(x, y int) []Cell {
	out := make([]Cell, 0, 4)
	return g.AppendNeighbors(out, x, y)
}

// AppendNeighbors is Neighbors writing into a caller-owned buffer.
func (g *Grid) AppendNeighbors(dst []Cell, x, y int) []Cell {
	for _, d := range neighborOffsets {
		if c, ok := g.Lookup(x+d[0], y+d[1]); ok {
			dst = append(dst, c)
		}
	}
	return dst
}

var neighborOffsets = [4][2]int{
	{-1, 0}, // left
	{0, -1}, // up
	{1, 0},  // right
	{0, 1},  // down
}

// Cells returns a copy of every cell in row-major order.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// CellAtPixel converts a pixel position into the cell containing it. It
// reports false when cell dimensions are unset or the point is off-grid.
func (g *Grid) CellAtPixel(px, py float64) (Cell, bool) {
	if g.cellWidth == 0 || g.cellHeight == 0 || px < 0 || py < 0 {
		return Cell{}, false
	}
	return g.Lookup(int(px/float64(g.cellWidth)), int(py/float64(g.cellHeight)))
}

// RandomCell picks a uniformly random cell matching pred. A nil pred accepts
// every cell.
func (g *Grid) RandomCell(rng *rand.Rand, pred func(Cell) bool) (Cell, bool) {
	if rng == nil {
		return Cell{}, false
	}
	if pred == nil {
		return g.cells[rng.Intn(len(g.cells))], true
	}

	filtered := make([]Cell, 0, len(g.cells))
	for _, c := range g.cells {
		if pred(c) {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return Cell{}, false
	}
	return filtered[rng.Intn(len(filtered))], true
}
