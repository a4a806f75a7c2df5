package component

import (
	"github.com/milk9111/gridwalk/grid"
	"github.com/milk9111/gridwalk/pathfinding"
)

// Arena is the singleton holding the grid every agent walks on.
type Arena struct {
	Name       string
	Grid       *grid.Grid
	Pathfinder *pathfinding.Pathfinder
}

var ArenaComponent = NewComponent[Arena]()
