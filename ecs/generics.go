package ecs

import (
	"fmt"

	"github.com/milk9111/gridwalk/ecs/component"
)

func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value *T) error {
	if value == nil {
		return fmt.Errorf("add %s: %w", handle.Name(), component.ErrNilComponent)
	}
	if err := w.addComponent(e, handle.Kind().ID(), value); err != nil {
		return fmt.Errorf("add %s: %w", handle.Name(), err)
	}
	return nil
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.removeComponent(e, handle.Kind().ID())
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	_, ok := w.getComponent(e, handle.Kind().ID())
	return ok
}

func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (*T, bool) {
	value, ok := w.getComponent(e, handle.Kind().ID())
	if !ok {
		return nil, false
	}
	cast, ok := value.(*T)
	return cast, ok
}

// ForEach visits every live entity holding kind. The callback may destroy
// entities; the iteration works on a snapshot.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	store := w.store(kind.ID(), false)
	if store == nil {
		return
	}
	ents := append([]Entity(nil), store.Entities()...)
	for _, e := range ents {
		if v, ok := store.Get(e).(*T); ok && w.entities.isAlive(e) {
			fn(e, v)
		}
	}
}

// ForEach2 visits entities holding both kinds.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sb := w.store(kb.ID(), false)
	if sb == nil {
		return
	}
	ForEach(w, ka, func(e Entity, a *A) {
		if b, ok := sb.Get(e).(*B); ok {
			fn(e, a, b)
		}
	})
}

// First returns any live entity holding kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	store := w.store(kind.ID(), false)
	for _, e := range store.Entities() {
		if w.entities.isAlive(e) {
			return e, true
		}
	}
	return 0, false
}
