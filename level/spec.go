package level

import (
	"errors"
	"fmt"

	"github.com/milk9111/gridwalk/grid"
	"gopkg.in/yaml.v3"
)

const (
	defaultCellSize        = 32
	defaultSpeedMultiplier = 1.0

	tileWalkable = '.'
	tileBlocked  = '#'
)

var ErrInvalidSpec = errors.New("level: invalid spec")

type AgentSpec struct {
	Name            string  `yaml:"name"`
	X               int     `yaml:"x"`
	Y               int     `yaml:"y"`
	SpeedMultiplier float64 `yaml:"speed_multiplier"`
	AllowRotation   bool    `yaml:"allow_rotation,omitempty"`
	// Wander is the number of idle ticks before heading to a random cell.
	// Zero disables wandering.
	Wander int    `yaml:"wander,omitempty"`
	Seed   int64  `yaml:"seed,omitempty"`
	Script string `yaml:"script,omitempty"`
}

type Spec struct {
	Name       string      `yaml:"name"`
	CellWidth  int         `yaml:"cell_width"`
	CellHeight int         `yaml:"cell_height"`
	PathCache  bool        `yaml:"path_cache,omitempty"`
	Rows       []string    `yaml:"rows"`
	Agents     []AgentSpec `yaml:"agents,omitempty"`
}

func LoadSpec(name string) (*Spec, error) {
	data, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("level: load %s: %w", name, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("level: parse %s: %w", name, err)
	}
	return spec, nil
}

// Parse decodes and validates a level, filling in defaults.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *Spec) Width() int {
	if len(s.Rows) == 0 {
		return 0
	}
	return len(s.Rows[0])
}

func (s *Spec) Height() int {
	return len(s.Rows)
}

// Validate checks the tile rows and agent placement and applies defaults.
func (s *Spec) Validate() error {
	if len(s.Rows) == 0 || len(s.Rows[0]) == 0 {
		return fmt.Errorf("%w: no rows", ErrInvalidSpec)
	}
	width := len(s.Rows[0])
	for y, row := range s.Rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d tiles, want %d", ErrInvalidSpec, y, len(row), width)
		}
		for x := 0; x < len(row); x++ {
			if row[x] != tileWalkable && row[x] != tileBlocked {
				return fmt.Errorf("%w: unknown tile %q at (%d,%d)", ErrInvalidSpec, row[x], x, y)
			}
		}
	}

	if s.CellWidth < 0 || s.CellHeight < 0 {
		return fmt.Errorf("%w: negative cell size", ErrInvalidSpec)
	}
	if s.CellWidth == 0 {
		s.CellWidth = defaultCellSize
	}
	if s.CellHeight == 0 {
		s.CellHeight = defaultCellSize
	}

	for i := range s.Agents {
		a := &s.Agents[i]
		if a.Name == "" {
			a.Name = fmt.Sprintf("agent%d", i)
		}
		if a.X < 0 || a.Y < 0 || a.X >= width || a.Y >= len(s.Rows) {
			return fmt.Errorf("%w: agent %s at (%d,%d) is off the map", ErrInvalidSpec, a.Name, a.X, a.Y)
		}
		if s.Rows[a.Y][a.X] == tileBlocked {
			return fmt.Errorf("%w: agent %s starts on a blocked tile", ErrInvalidSpec, a.Name)
		}
		if a.SpeedMultiplier < 0 {
			return fmt.Errorf("%w: agent %s has negative speed", ErrInvalidSpec, a.Name)
		}
		if a.SpeedMultiplier == 0 {
			a.SpeedMultiplier = defaultSpeedMultiplier
		}
	}
	return nil
}

// BuildGrid turns the tile rows into a grid.
func (s *Spec) BuildGrid() (*grid.Grid, error) {
	g, err := grid.New(s.Width(), s.Height(), s.CellWidth, s.CellHeight)
	if err != nil {
		return nil, err
	}
	g.Populate(func(x, y int) grid.State {
		if s.Rows[y][x] == tileBlocked {
			return grid.NotWalkable
		}
		return grid.Walkable
	})
	return g, nil
}
