package system

import (
	"github.com/milk9111/gridwalk/ecs"
	"github.com/milk9111/gridwalk/ecs/component"
)

// MovementSystem advances every path mover by the tick duration and mirrors
// the mover position into the agent transform.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem {
	return &MovementSystem{}
}

func (s *MovementSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.TickDuration()

	ecs.ForEach(w, component.NavigatorComponent.Kind(), func(e ecs.Entity, nav *component.Navigator) {
		if nav.Mover == nil || nav.Mover.Released() {
			return
		}
		m := nav.Mover.Mover()
		prevX, prevY := m.CellX(), m.CellY()

		nav.Mover.Update(dt)

		if m.CellX() != prevX || m.CellY() != prevY {
			nav.Steps++
		}

		if t, ok := ecs.Get(w, e, component.TransformComponent); ok {
			pos := m.Position()
			t.X = pos.X
			t.Y = pos.Y
			t.Angle = m.Angle()
		}

		moving := nav.Mover.IsMoving()
		if nav.WasMoving && !moving {
			w.Events().Push(ecs.Event{Type: ecs.EventArrived, Data: ecs.MoveEvent{Entity: e, X: m.CellX(), Y: m.CellY()}})
		}
		nav.WasMoving = moving
	})
}
