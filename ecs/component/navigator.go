package component

import "github.com/milk9111/gridwalk/movement"

// Navigator owns an agent's path mover.
type Navigator struct {
	Mover *movement.PathMover

	// WasMoving is the moving state seen on the previous tick.
	WasMoving bool
	// Steps counts cells entered since spawn.
	Steps int
}

// Release detaches the path mover when the component leaves the world.
func (n *Navigator) Release() {
	if n == nil || n.Mover == nil {
		return
	}
	n.Mover.Release()
}

var NavigatorComponent = NewComponent[Navigator]()
