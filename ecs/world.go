package ecs

import (
	"fmt"

	"github.com/milk9111/gridwalk/ecs/component"
)

// Releaser is implemented by components that own listeners or other
// resources. Release runs when the component leaves the world.
type Releaser interface {
	Release()
}

// World owns entities and their component stores.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	events   EventQueue

	tick float64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e, releasing those that need it,
// and frees the id.
func DestroyEntity(w *World, e Entity) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	for _, store := range w.stores {
		if v, ok := store.Remove(e); ok {
			release(v)
		}
	}
	w.entities.destroy(e)
	w.events.Push(Event{Type: EventRemoved, Data: e})
	return true
}

func IsAlive(w *World, e Entity) bool {
	return w.entities.isAlive(e)
}

// Entities returns all live entities in id order.
func Entities(w *World) []Entity {
	return w.entities.live()
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// TickDuration is the simulated time of the tick being processed, in seconds.
func (w *World) TickDuration() float64 {
	return w.tick
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	s, ok := w.stores[id]
	if !ok && create {
		s = newSparseSet()
		w.stores[id] = s
	}
	return s
}

func (w *World) addComponent(e Entity, id component.ComponentID, v any) error {
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	if !w.entities.isAlive(e) {
		return fmt.Errorf("%w: %s", component.ErrEntityNotAlive, e)
	}
	store := w.store(id, true)
	if prev := store.Get(e); prev != nil && prev != v {
		release(prev)
	}
	store.Set(e, v)
	return nil
}

func (w *World) removeComponent(e Entity, id component.ComponentID) bool {
	v, ok := w.store(id, false).Remove(e)
	if ok {
		release(v)
	}
	return ok
}

func (w *World) getComponent(e Entity, id component.ComponentID) (any, bool) {
	if !w.entities.isAlive(e) {
		return nil, false
	}
	v := w.store(id, false).Get(e)
	return v, v != nil
}

func release(v any) {
	if r, ok := v.(Releaser); ok {
		r.Release()
	}
}
