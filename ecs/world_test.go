package ecs

import (
	"errors"
	"strings"
	"testing"

	"github.com/milk9111/gridwalk/ecs/component"
)

func TestSparseWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return false the second time")
				}
			}
		})
	}
}

func TestRecycledIDGetsNewGeneration(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if err := Add(w, old, h, intPtr(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected id reuse, got %s after %s", fresh, old)
	}
	if fresh == old {
		t.Fatalf("recycled entity must differ from the stale handle")
	}
	if Has(w, fresh, h) {
		t.Fatalf("recycled entity must not inherit components")
	}
	if err := Add(w, old, h, intPtr(2)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive for stale handle, got %v", err)
	}
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestSparseWorldComponents(t *testing.T) {
	w := NewWorld()

	hInt := component.NewComponent[int]()
	hStr := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, hInt, intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, hInt)
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
				if Has(w, e2, hInt) {
					t.Fatalf("e2 should not have int")
				}
			},
			teardown: func() bool { return Remove(w, e1, hInt) },
		},
		{
			name: "add_str_to_e1_and_e2",
			setup: func() error {
				if err := Add(w, e1, hStr, stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, hStr, stringPtr("b"))
			},
			check: func(t *testing.T) {
				if !Has(w, e1, hStr) || !Has(w, e2, hStr) {
					t.Fatalf("expected both entities to have string component")
				}
			},
			teardown: func() bool { return Remove(w, e1, hStr) && Remove(w, e2, hStr) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}

	if err := Add[int](w, e1, hInt, nil); !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	other := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)

	_ = Add(w, e1, h, intPtr(1))
	_ = Add(w, e3, h, intPtr(3))
	_ = Add(w, e3, other, stringPtr("x"))

	seen := map[Entity]int{}
	ForEach(w, h.Kind(), func(e Entity, v *int) { seen[e] = *v })
	if len(seen) != 2 || seen[e1] != 1 || seen[e3] != 3 {
		t.Fatalf("unexpected ForEach result %v", seen)
	}
	if _, ok := seen[e2]; ok {
		t.Fatalf("did not expect e2 in ForEach result")
	}

	var both []Entity
	ForEach2(w, h.Kind(), other.Kind(), func(e Entity, _ *int, _ *string) { both = append(both, e) })
	if len(both) != 1 || both[0] != e3 {
		t.Fatalf("expected only e3, got %v", both)
	}

	first, ok := First(w, other.Kind())
	if !ok || first != e3 {
		t.Fatalf("expected First to find e3, got %v ok=%v", first, ok)
	}
}

func TestForEachToleratesDestroyDuringIteration(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	for i := 0; i < 4; i++ {
		_ = Add(w, CreateEntity(w), h, intPtr(i))
	}

	visits := 0
	ForEach(w, h.Kind(), func(e Entity, _ *int) {
		visits++
		DestroyEntity(w, e)
	})
	if visits != 4 {
		t.Fatalf("expected 4 visits, got %d", visits)
	}
	if len(Entities(w)) != 0 {
		t.Fatalf("expected all entities destroyed")
	}
}

type releasable struct {
	released int
}

func (r *releasable) Release() { r.released++ }

func TestComponentReleaseOnRemoval(t *testing.T) {
	h := component.NewComponent[releasable]()

	t.Run("destroy_entity", func(t *testing.T) {
		w := NewWorld()
		e := CreateEntity(w)
		r := &releasable{}
		_ = Add(w, e, h, r)

		DestroyEntity(w, e)
		if r.released != 1 {
			t.Fatalf("expected one release, got %d", r.released)
		}
		events := w.Events().Drain()
		if len(events) != 1 || events[0].Type != EventRemoved {
			t.Fatalf("expected removed event, got %v", events)
		}
	})

	t.Run("remove_component", func(t *testing.T) {
		w := NewWorld()
		e := CreateEntity(w)
		r := &releasable{}
		_ = Add(w, e, h, r)

		Remove(w, e, h)
		Remove(w, e, h)
		if r.released != 1 {
			t.Fatalf("expected one release, got %d", r.released)
		}
	})

	t.Run("replace_component", func(t *testing.T) {
		w := NewWorld()
		e := CreateEntity(w)
		r1, r2 := &releasable{}, &releasable{}
		_ = Add(w, e, h, r1)
		_ = Add(w, e, h, r2)
		if r1.released != 1 || r2.released != 0 {
			t.Fatalf("replacing should release only the old value, got %d/%d", r1.released, r2.released)
		}
	})
}

type countingSystem struct {
	ticks []float64
}

func (s *countingSystem) Update(w *World) {
	s.ticks = append(s.ticks, w.TickDuration())
}

func TestSchedulerOrderAndTick(t *testing.T) {
	w := NewWorld()
	var order []string
	a := systemFunc(func(*World) { order = append(order, "a") })
	b := systemFunc(func(*World) { order = append(order, "b") })
	c := &countingSystem{}

	s := NewScheduler(a, nil, b)
	s.Add(c)
	s.Update(w, 0.5)
	s.Update(w, 0.25)

	if len(order) != 4 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order %v", order)
	}
	if len(c.ticks) != 2 || c.ticks[0] != 0.5 || c.ticks[1] != 0.25 {
		t.Fatalf("unexpected ticks %v", c.ticks)
	}
	if len(s.Systems()) != 3 {
		t.Fatalf("nil systems must be skipped")
	}
}

type systemFunc func(*World)

func (f systemFunc) Update(w *World) { f(w) }

type position struct{ X, Y int }

func TestAddErrorsNameTheComponent(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[position]()
	if got := h.Name(); got != "ecs.position" {
		t.Fatalf("expected ecs.position, got %q", got)
	}

	e := CreateEntity(w)
	err := Add[position](w, e, h, nil)
	if !errors.Is(err, component.ErrNilComponent) || !strings.Contains(err.Error(), "add ecs.position") {
		t.Fatalf("unexpected nil component error %v", err)
	}

	DestroyEntity(w, e)
	err = Add(w, e, h, &position{X: 1})
	if !errors.Is(err, component.ErrEntityNotAlive) || !strings.Contains(err.Error(), "add ecs.position") {
		t.Fatalf("unexpected dead entity error %v", err)
	}

	var zero component.ComponentKind[position]
	if zero.Valid() || zero.Name() != "<invalid>" {
		t.Fatalf("zero kind should be invalid, got %q", zero.Name())
	}
}
