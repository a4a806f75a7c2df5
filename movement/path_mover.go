package movement

import (
	"errors"
	"math/rand"
	"time"

	"github.com/milk9111/gridwalk/grid"
	"github.com/milk9111/gridwalk/logger"
	"github.com/milk9111/gridwalk/pathfinding"
	"github.com/sirupsen/logrus"
)

var ErrReleased = errors.New("movement: path mover released")

type PathMoverOption func(*PathMover)

func WithLogger(entry *logrus.Entry) PathMoverOption {
	return func(p *PathMover) {
		if entry != nil {
			p.log = entry
		}
	}
}

// WithSeed fixes the default random source used by MoveToRandomCell.
func WithSeed(seed int64) PathMoverOption {
	return func(p *PathMover) {
		p.rng = rand.New(rand.NewSource(seed))
	}
}

// PathMover walks a CellMover along paths computed on a shared grid, one cell
// at a time. A new move request replaces whatever is still queued.
type PathMover struct {
	grid       *grid.Grid
	pathfinder *pathfinding.Pathfinder
	mover      *CellMover

	path        []grid.Cell
	destination grid.Cell
	hasDest     bool

	rng *rand.Rand
	log *logrus.Entry

	onDestination func(grid.Cell)
	released      bool
}

// NewPathMover binds a mover to a grid. A nil pathfinder gets a default one
// over the same grid.
func NewPathMover(g *grid.Grid, pf *pathfinding.Pathfinder, mover *CellMover, opts ...PathMoverOption) *PathMover {
	if pf == nil {
		pf = pathfinding.New(g)
	}
	p := &PathMover{
		grid:       g,
		pathfinder: pf,
		mover:      mover,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if p.log == nil {
		p.log = logger.Discard()
	}
	mover.SetOnArrive(p.handleArrive)
	return p
}

func (p *PathMover) Mover() *CellMover {
	return p.mover
}

// OnDestination registers a callback fired when the last queued cell is
// reached.
func (p *PathMover) OnDestination(fn func(grid.Cell)) {
	if p.released {
		return
	}
	p.onDestination = fn
}

// SetPositionToCell places the agent on a cell and drops any pending path.
func (p *PathMover) SetPositionToCell(x, y int) error {
	if p.released {
		return ErrReleased
	}
	if _, err := p.grid.Get(x, y); err != nil {
		return err
	}
	p.path = nil
	p.hasDest = false
	p.mover.SetPositionToCell(x, y)
	return nil
}

// MoveTo is MoveToCell for a cell value.
func (p *PathMover) MoveTo(cell grid.Cell, busy ...grid.Cell) error {
	return p.MoveToCell(cell.X, cell.Y, busy...)
}

// MoveToCell plans a path from the agent's discrete cell to (x, y) and
// replaces the pending path with it. A transit in progress is redirected at
// once: toward the first cell of the new path, or back onto the discrete cell
// when there is nothing to walk.
func (p *PathMover) MoveToCell(x, y int, busy ...grid.Cell) error {
	if p.released {
		return ErrReleased
	}

	fromX, fromY := p.mover.CellX(), p.mover.CellY()
	path, err := p.pathfinder.FindPath(fromX, fromY, x, y, busy...)
	if err != nil {
		return err
	}

	log := p.log.WithFields(logrus.Fields{
		"from_x": fromX,
		"from_y": fromY,
		"goal_x": x,
		"goal_y": y,
	})
	if p.IsMoving() {
		log = log.WithField("rerouted", true)
	}

	p.path = path
	p.hasDest = len(path) > 0
	if p.hasDest {
		p.destination, _ = path.Last()
		log.WithField("steps", len(path)).Debug("path planned")
	} else {
		log.Debug("no path, staying put")
	}

	if !p.mover.IsInTransit() {
		return nil
	}

	nextX, nextY := fromX, fromY
	if len(p.path) > 0 {
		nextX, nextY = p.path[0].X, p.path[0].Y
		p.path = p.path[1:]
	}
	return p.mover.MoveToCell(nextX, nextY)
}

func (p *PathMover) MoveToUpCell() error {
	return p.MoveToCell(p.mover.CellX(), p.mover.CellY()-1)
}

func (p *PathMover) MoveToDownCell() error {
	return p.MoveToCell(p.mover.CellX(), p.mover.CellY()+1)
}

func (p *PathMover) MoveToLeftCell() error {
	return p.MoveToCell(p.mover.CellX()-1, p.mover.CellY())
}

func (p *PathMover) MoveToRightCell() error {
	return p.MoveToCell(p.mover.CellX()+1, p.mover.CellY())
}

// MoveToRandomCell heads for a uniformly chosen walkable cell. A nil rng uses
// the mover's own source. With no walkable cell it does nothing.
func (p *PathMover) MoveToRandomCell(rng *rand.Rand) error {
	if p.released {
		return ErrReleased
	}
	if rng == nil {
		rng = p.rng
	}
	cell, ok := p.grid.RandomCell(rng, grid.Cell.Walkable)
	if !ok {
		return nil
	}
	return p.MoveTo(cell)
}

// StopMovement drops the pending path. A segment already underway finishes;
// one that has not started is cancelled.
func (p *PathMover) StopMovement() {
	if p.released {
		return
	}
	p.path = nil
	p.hasDest = false
	p.mover.Halt()
	p.log.WithFields(logrus.Fields{
		"cell_x": p.mover.CellX(),
		"cell_y": p.mover.CellY(),
	}).Debug("movement stopped")
}

// Update feeds the next queued cell to the mover once it is at rest, then
// advances the mover by tpf.
func (p *PathMover) Update(tpf float64) {
	if p.released {
		return
	}
	if len(p.path) > 0 && p.mover.IsAtRest() {
		next := p.path[0]
		p.path = p.path[1:]
		if err := p.mover.MoveToCell(next.X, next.Y); err != nil {
			p.log.WithError(err).Warn("dropping path")
			p.path = nil
			p.hasDest = false
		}
	}
	p.mover.Update(tpf)
}

func (p *PathMover) handleArrive(x, y int) {
	if p.released || !p.hasDest || len(p.path) > 0 {
		return
	}
	if x != p.destination.X || y != p.destination.Y {
		return
	}
	p.hasDest = false
	if p.onDestination != nil {
		p.onDestination(p.destination)
	}
}

func (p *PathMover) IsMoving() bool {
	if p.released {
		return false
	}
	return len(p.path) > 0 || p.mover.IsInTransit()
}

func (p *PathMover) IsAtDestination() bool {
	if p.released {
		return true
	}
	return len(p.path) == 0 && p.mover.IsAtRest()
}

func (p *PathMover) IsPathEmpty() bool {
	return len(p.path) == 0
}

// CurrentCell returns the cell the agent rests on. It reports false while the
// agent is between cells.
func (p *PathMover) CurrentCell() (grid.Cell, bool) {
	if p.released || p.mover.IsInTransit() {
		return grid.Cell{}, false
	}
	return p.grid.Lookup(p.mover.CellX(), p.mover.CellY())
}

// Path returns a copy of the cells still queued.
func (p *PathMover) Path() []grid.Cell {
	if len(p.path) == 0 {
		return nil
	}
	out := make([]grid.Cell, len(p.path))
	copy(out, p.path)
	return out
}

// Destination returns the goal of the active route, if any.
func (p *PathMover) Destination() (grid.Cell, bool) {
	if p.released || !p.hasDest {
		return grid.Cell{}, false
	}
	return p.destination, true
}

// Release detaches the mover listener and drops every reference. It is safe
// to call more than once and while moving.
func (p *PathMover) Release() {
	if p.released {
		return
	}
	p.released = true
	if p.mover != nil {
		p.mover.SetOnArrive(nil)
	}
	p.path = nil
	p.hasDest = false
	p.onDestination = nil
	p.pathfinder = nil
	p.grid = nil
}

func (p *PathMover) Released() bool {
	return p.released
}
