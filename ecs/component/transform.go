package component

// Transform stores the rendered position and facing in pixels/degrees.
type Transform struct {
	X, Y  float64
	Angle float64
}

var TransformComponent = NewComponent[Transform]()
