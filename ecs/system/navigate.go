package system

import (
	"fmt"

	"github.com/milk9111/gridwalk/ecs"
	"github.com/milk9111/gridwalk/ecs/component"
	"github.com/milk9111/gridwalk/grid"
)

// OccupiedCells returns the cells other agents stand on or are heading into.
func OccupiedCells(w *ecs.World, except ecs.Entity) []grid.Cell {
	var cells []grid.Cell
	ecs.ForEach(w, component.NavigatorComponent.Kind(), func(e ecs.Entity, nav *component.Navigator) {
		if e == except || nav.Mover == nil || nav.Mover.Released() {
			return
		}
		m := nav.Mover.Mover()
		cells = append(cells, grid.Cell{X: m.CellX(), Y: m.CellY()})
		if tx, ty, ok := m.Target(); ok {
			cells = append(cells, grid.Cell{X: tx, Y: ty})
		}
	})
	return cells
}

// MoveAgent routes e to (x,y) around the other agents. A move issued while e
// is still walking queues an EventRerouted.
func MoveAgent(w *ecs.World, e ecs.Entity, x, y int) error {
	nav, ok := ecs.Get(w, e, component.NavigatorComponent)
	if !ok || nav.Mover == nil {
		return fmt.Errorf("move %s: %w", e, component.ErrEntityNotAlive)
	}
	wasMoving := nav.Mover.IsMoving()
	if err := nav.Mover.MoveToCell(x, y, OccupiedCells(w, e)...); err != nil {
		return fmt.Errorf("move %s: %w", e, err)
	}
	if wasMoving {
		w.Events().Push(ecs.Event{Type: ecs.EventRerouted, Data: ecs.MoveEvent{Entity: e, X: x, Y: y}})
	}
	return nil
}

// StopAgent finishes the current step and drops the rest of the route.
func StopAgent(w *ecs.World, e ecs.Entity) {
	if nav, ok := ecs.Get(w, e, component.NavigatorComponent); ok && nav.Mover != nil {
		nav.Mover.StopMovement()
	}
}

// Selected returns the agent receiving player commands.
func Selected(w *ecs.World) (ecs.Entity, bool) {
	return ecs.First(w, component.SelectedComponent.Kind())
}

// SelectNext moves the selection to the next agent in id order.
func SelectNext(w *ecs.World) (ecs.Entity, bool) {
	var agents []ecs.Entity
	for _, e := range ecs.Entities(w) {
		if ecs.Has(w, e, component.NavigatorComponent) {
			agents = append(agents, e)
		}
	}
	if len(agents) == 0 {
		return 0, false
	}

	next := agents[0]
	if current, ok := Selected(w); ok {
		ecs.Remove(w, current, component.SelectedComponent)
		for i, e := range agents {
			if e == current {
				next = agents[(i+1)%len(agents)]
				break
			}
		}
	}
	if err := ecs.Add(w, next, component.SelectedComponent, &component.Selected{}); err != nil {
		return 0, false
	}
	return next, true
}

// Arena returns the grid singleton.
func Arena(w *ecs.World) (*component.Arena, bool) {
	e, ok := ecs.First(w, component.ArenaComponent.Kind())
	if !ok {
		return nil, false
	}
	return ecs.Get(w, e, component.ArenaComponent)
}
