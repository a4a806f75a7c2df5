package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/gridwalk/grid"
	"github.com/milk9111/gridwalk/level"
	"github.com/milk9111/gridwalk/pathfinding"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Tool int

const (
	ToolWall Tool = iota
	ToolErase
	ToolProbe
)

func (t Tool) String() string {
	switch t {
	case ToolWall:
		return "Wall"
	case ToolErase:
		return "Erase"
	case ToolProbe:
		return "Probe"
	default:
		return "Unknown"
	}
}

var errAgentCell = errors.New("editor: cell holds an agent")

// cellChange records the tile a stroke overwrote.
type cellChange struct {
	x, y int
	prev byte
}

// Editor edits the tile rows of a level. Strokes are undone as a unit.
type Editor struct {
	spec     *level.Spec
	filename string
	tool     Tool

	undo   [][]cellChange
	stroke []cellChange

	probe   *grid.Cell
	preview pathfinding.Path
	dirty   bool
	status  string
	log     *logrus.Entry
}

func NewEditor(spec *level.Spec, filename string, log *logrus.Entry) *Editor {
	return &Editor{spec: spec, filename: filename, log: log}
}

func (e *Editor) SetTool(t Tool) {
	e.tool = t
	e.probe = nil
	e.preview = nil
}

// Apply uses the current tool on a cell.
func (e *Editor) Apply(x, y int) error {
	switch e.tool {
	case ToolWall:
		return e.Paint(x, y, '#')
	case ToolErase:
		return e.Paint(x, y, '.')
	case ToolProbe:
		return e.Probe(x, y)
	}
	return nil
}

// Paint sets one tile as part of the current stroke.
func (e *Editor) Paint(x, y int, tile byte) error {
	if y < 0 || y >= e.spec.Height() || x < 0 || x >= e.spec.Width() {
		return fmt.Errorf("paint (%d,%d): %w", x, y, grid.ErrOutOfBounds)
	}
	if tile == '#' && e.agentAt(x, y) {
		return errAgentCell
	}
	row := []byte(e.spec.Rows[y])
	if row[x] == tile {
		return nil
	}
	e.stroke = append(e.stroke, cellChange{x: x, y: y, prev: row[x]})
	row[x] = tile
	e.spec.Rows[y] = string(row)
	e.dirty = true
	e.preview = nil
	return nil
}

// EndStroke closes the current stroke so Undo reverts it in one step.
func (e *Editor) EndStroke() {
	if len(e.stroke) == 0 {
		return
	}
	e.undo = append(e.undo, e.stroke)
	e.stroke = nil
}

func (e *Editor) Undo() bool {
	e.EndStroke()
	if len(e.undo) == 0 {
		return false
	}
	last := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	for i := len(last) - 1; i >= 0; i-- {
		c := last[i]
		row := []byte(e.spec.Rows[c.y])
		row[c.x] = c.prev
		e.spec.Rows[c.y] = string(row)
	}
	e.dirty = true
	e.preview = nil
	return true
}

// Probe picks the start cell on the first call and previews the path to the
// second.
func (e *Editor) Probe(x, y int) error {
	g, err := e.spec.BuildGrid()
	if err != nil {
		return err
	}
	cell, err := g.Get(x, y)
	if err != nil {
		return err
	}
	if e.probe == nil {
		e.probe = &cell
		e.preview = nil
		e.status = fmt.Sprintf("probe from %s", cell)
		return nil
	}
	from := *e.probe
	e.probe = nil
	path, err := pathfinding.New(g).FindPath(from.X, from.Y, x, y)
	if err != nil {
		return err
	}
	e.preview = path
	if path.Empty() {
		e.status = fmt.Sprintf("no path %s -> %s", from, cell)
	} else {
		e.status = fmt.Sprintf("%d steps %s -> %s", len(path), from, cell)
	}
	return nil
}

func (e *Editor) Save() error {
	e.EndStroke()
	if err := e.spec.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(e.spec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(e.filename), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(e.filename, data, 0o644); err != nil {
		return err
	}
	e.dirty = false
	e.status = "saved " + e.filename
	e.log.WithField("file", e.filename).Info("level saved")
	return nil
}

func (e *Editor) agentAt(x, y int) bool {
	for _, a := range e.spec.Agents {
		if a.X == x && a.Y == y {
			return true
		}
	}
	return false
}

// NewBlankSpec returns an all-walkable level of w by h cells.
func NewBlankSpec(name string, w, h int) (*level.Spec, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("new level %s: %dx%d: %w", name, w, h, grid.ErrInvalidSize)
	}
	rows := make([]string, h)
	for y := range rows {
		rows[y] = strings.Repeat(".", w)
	}
	spec := &level.Spec{Name: name, Rows: rows}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}
