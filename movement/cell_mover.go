package movement

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

var ErrNotAdjacent = errors.New("movement: target cell not adjacent")

// CellMover moves a continuous position between the centers of adjacent
// cells. The discrete cell only changes when the position snaps onto the
// target center.
type CellMover struct {
	cellWidth  int
	cellHeight int
	speed      float64

	cellX, cellY     int
	targetX, targetY int
	inTransit        bool
	pos              cp.Vector

	allowRotation bool
	angle         float64

	movingUp    bool
	movingDown  bool
	movingLeft  bool
	movingRight bool

	onArrive func(x, y int)
}

// NewCellMover creates a mover resting on cell (0,0). Speed is in pixels per
// second.
func NewCellMover(cellWidth, cellHeight int, speed float64) *CellMover {
	m := &CellMover{
		cellWidth:  cellWidth,
		cellHeight: cellHeight,
		speed:      speed,
	}
	m.pos = m.CellCenter(0, 0)
	return m
}

// SpeedFromMultiplier converts a cells-per-second multiplier into pixels per
// second for the given cell width.
func SpeedFromMultiplier(cellWidth int, multiplier float64) float64 {
	return float64(cellWidth) * multiplier
}

func (m *CellMover) CellWidth() int      { return m.cellWidth }
func (m *CellMover) CellHeight() int     { return m.cellHeight }
func (m *CellMover) Speed() float64      { return m.speed }
func (m *CellMover) SetSpeed(s float64)  { m.speed = s }
func (m *CellMover) CellX() int          { return m.cellX }
func (m *CellMover) CellY() int          { return m.cellY }
func (m *CellMover) Position() cp.Vector { return m.pos }
func (m *CellMover) Angle() float64      { return m.angle }
func (m *CellMover) IsInTransit() bool   { return m.inTransit }
func (m *CellMover) IsAtRest() bool      { return !m.inTransit }
func (m *CellMover) IsMovingUp() bool    { return m.movingUp }
func (m *CellMover) IsMovingDown() bool  { return m.movingDown }
func (m *CellMover) IsMovingLeft() bool  { return m.movingLeft }
func (m *CellMover) IsMovingRight() bool { return m.movingRight }

// Target returns the cell being moved to, if any.
func (m *CellMover) Target() (int, int, bool) {
	if !m.inTransit {
		return 0, 0, false
	}
	return m.targetX, m.targetY, true
}

// AllowRotation turns the mover to face its direction of travel, in 90
// degree steps.
func (m *CellMover) AllowRotation(allow bool) *CellMover {
	m.allowRotation = allow
	return m
}

// SetOnArrive registers the single arrival listener. Passing nil removes it.
func (m *CellMover) SetOnArrive(fn func(x, y int)) {
	m.onArrive = fn
}

// CellCenter returns the pixel center of a cell.
func (m *CellMover) CellCenter(x, y int) cp.Vector {
	return cp.Vector{
		X: float64(x*m.cellWidth) + float64(m.cellWidth)/2,
		Y: float64(y*m.cellHeight) + float64(m.cellHeight)/2,
	}
}

// SetPositionToCell places the mover at rest on a cell center.
func (m *CellMover) SetPositionToCell(x, y int) {
	m.cellX, m.cellY = x, y
	m.pos = m.CellCenter(x, y)
	m.inTransit = false
	m.clearDirection()
}

// MoveToCell starts a straight-line transit toward (x, y), which must be the
// current cell or one of its orthogonal neighbors. A transit already underway
// is retargeted from the current position.
func (m *CellMover) MoveToCell(x, y int) error {
	dx, dy := x-m.cellX, y-m.cellY
	if absInt(dx)+absInt(dy) > 1 {
		return fmt.Errorf("%w: (%d,%d) from (%d,%d)", ErrNotAdjacent, x, y, m.cellX, m.cellY)
	}
	if dx == 0 && dy == 0 && !m.inTransit {
		return nil
	}

	m.targetX, m.targetY = x, y
	m.inTransit = true
	m.updateDirection(m.CellCenter(x, y).Sub(m.pos))
	return nil
}

// Halt cancels a transit that has not left the current cell center yet.
// Transits already underway are left to complete. It reports whether the
// mover is at rest afterwards.
func (m *CellMover) Halt() bool {
	if !m.inTransit {
		return true
	}
	if m.pos.Equal(m.CellCenter(m.cellX, m.cellY)) {
		m.SetPositionToCell(m.cellX, m.cellY)
		return true
	}
	return false
}

// Update advances the position by speed*tpf and snaps onto the target once
// the remaining distance fits inside this step. Zero-sized cells snap even
// when the speed is zero.
func (m *CellMover) Update(tpf float64) {
	if !m.inTransit || tpf <= 0 {
		return
	}

	step := math.Max(m.speed*tpf, 0)
	target := m.CellCenter(m.targetX, m.targetY)
	delta := target.Sub(m.pos)
	dist := delta.Length()

	if dist <= step {
		x, y := m.targetX, m.targetY
		m.SetPositionToCell(x, y)
		if m.onArrive != nil {
			m.onArrive(x, y)
		}
		return
	}
	if step == 0 {
		return
	}

	m.pos = m.pos.Add(delta.Mult(step / dist))
	m.updateDirection(delta)
}

func (m *CellMover) updateDirection(delta cp.Vector) {
	m.movingLeft = delta.X < 0
	m.movingRight = delta.X > 0
	m.movingUp = delta.Y < 0
	m.movingDown = delta.Y > 0

	if !m.allowRotation {
		return
	}
	switch {
	case delta.X > 0:
		m.angle = 0
	case delta.X < 0:
		m.angle = 180
	case delta.Y > 0:
		m.angle = 90
	case delta.Y < 0:
		m.angle = 270
	}
}

func (m *CellMover) clearDirection() {
	m.movingUp = false
	m.movingDown = false
	m.movingLeft = false
	m.movingRight = false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
