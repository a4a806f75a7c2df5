package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/gridwalk/ecs"
	"github.com/milk9111/gridwalk/ecs/component"
	"github.com/milk9111/gridwalk/level"
	"github.com/milk9111/gridwalk/logger"
	"github.com/sirupsen/logrus"
)

const defaultScriptState = "idle"

const scriptLifecycleDispatch = `
if __phase == "enter" {
	onEnter(__engine, __state, __current_state)
} else if __phase == "update" {
	update(__engine, __state, __current_state)
} else if __phase == "exit" {
	onExit(__engine, __state, __current_state)
}
`

// ScriptLoader returns the source of a named script.
type ScriptLoader func(name string) ([]byte, error)

// ScriptSystem drives agents with tengo state machines. A script defines
// onEnter, update and onExit, each called with an engine map, a persistent
// state map and the current state name. It may set initial_state.
type ScriptSystem struct {
	load  ScriptLoader
	log   *logrus.Entry
	cache map[ecs.Entity]*scriptRuntime
}

type scriptRuntime struct {
	path        string
	version     int
	compiled    *tengo.Compiled
	stateData   *tengo.Map
	initial     string
	initialized bool
	pending     string
	failed      bool
}

// NewScriptSystem creates the system. A nil loader reads from the level
// package; a nil logger discards output.
func NewScriptSystem(load ScriptLoader, log *logrus.Entry) *ScriptSystem {
	if load == nil {
		load = level.LoadScript
	}
	if log == nil {
		log = logger.Discard()
	}
	return &ScriptSystem{
		load:  load,
		log:   log,
		cache: map[ecs.Entity]*scriptRuntime{},
	}
}

func (s *ScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	for e := range s.cache {
		if !ecs.IsAlive(w, e) || !ecs.Has(w, e, component.ScriptComponent) {
			delete(s.cache, e)
		}
	}

	ecs.ForEach2(w, component.ScriptComponent.Kind(), component.NavigatorComponent.Kind(), func(e ecs.Entity, sc *component.Script, nav *component.Navigator) {
		if strings.TrimSpace(sc.Path) == "" || nav.Mover == nil || nav.Mover.Released() {
			return
		}
		s.run(w, e, sc)
	})
}

func (s *ScriptSystem) run(w *ecs.World, e ecs.Entity, sc *component.Script) {
	log := s.log.WithFields(logrus.Fields{"entity": e.String(), "script": sc.Path})

	rt, err := s.runtime(e, sc)
	if err != nil {
		log.WithError(err).Error("script: load failed")
		return
	}
	if rt.failed {
		return
	}

	if sc.Current == "" {
		sc.Current = rt.initial
	}

	engine := buildScriptEngine(w, e, rt, log)
	if !rt.initialized {
		rt.initialized = true
		if err := rt.runPhase("enter", sc.Current, engine); err != nil {
			s.fail(rt, log, "onEnter", err)
			return
		}
	}

	if err := rt.runPhase("update", sc.Current, engine); err != nil {
		s.fail(rt, log, "update", err)
		return
	}

	if rt.pending == "" || rt.pending == sc.Current {
		rt.pending = ""
		return
	}

	prev := sc.Current
	if err := rt.runPhase("exit", prev, engine); err != nil {
		s.fail(rt, log, "onExit", err)
		return
	}

	sc.Current = rt.pending
	rt.pending = ""
	log.WithFields(logrus.Fields{"from": prev, "to": sc.Current}).Debug("script: transition")

	if err := rt.runPhase("enter", sc.Current, engine); err != nil {
		s.fail(rt, log, "onEnter", err)
	}
}

// fail parks a runtime after a runtime error until its Version changes.
func (s *ScriptSystem) fail(rt *scriptRuntime, log *logrus.Entry, phase string, err error) {
	rt.failed = true
	log.WithError(err).WithField("phase", phase).Error("script: run failed")
}

func (s *ScriptSystem) runtime(e ecs.Entity, sc *component.Script) (*scriptRuntime, error) {
	if rt, ok := s.cache[e]; ok && rt.path == sc.Path && rt.version == sc.Version {
		return rt, nil
	}
	delete(s.cache, e)
	sc.Current = ""

	src, err := s.load(sc.Path)
	if err != nil {
		s.park(e, sc)
		return nil, err
	}
	rt, err := compileScript(sc.Path, src)
	if err != nil {
		s.park(e, sc)
		return nil, err
	}
	rt.version = sc.Version
	s.cache[e] = rt
	return rt, nil
}

// park caches a failed runtime so a broken script is not reloaded every tick.
func (s *ScriptSystem) park(e ecs.Entity, sc *component.Script) {
	s.cache[e] = &scriptRuntime{path: sc.Path, version: sc.Version, failed: true}
}

func compileScript(path string, src []byte) (*scriptRuntime, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + scriptLifecycleDispatch))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__current_state", "")

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}

	rt := &scriptRuntime{
		path:      path,
		compiled:  compiled,
		stateData: &tengo.Map{Value: map[string]tengo.Object{}},
		initial:   defaultScriptState,
	}

	// A no-op pass evaluates top-level assignments such as initial_state.
	if err := rt.runPhase("noop", rt.initial, nil); err != nil {
		return nil, fmt.Errorf("init %s: %w", path, err)
	}
	if compiled.IsDefined("initial_state") {
		if s := strings.TrimSpace(compiled.Get("initial_state").String()); s != "" {
			rt.initial = s
		}
	}
	return rt, nil
}

func (rt *scriptRuntime) runPhase(phase, current string, engine *tengo.ImmutableMap) error {
	if engine == nil {
		engine = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	if err := rt.compiled.Set("__current_state", current); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildScriptEngine(w *ecs.World, e ecs.Entity, rt *scriptRuntime, log *logrus.Entry) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	navigator := func() *component.Navigator {
		nav, ok := ecs.Get(w, e, component.NavigatorComponent)
		if !ok || nav.Mover == nil || nav.Mover.Released() {
			return nil
		}
		return nav
	}

	values["transition"] = &tengo.UserFunction{Name: "transition", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		rt.pending = name
		return tengo.TrueValue, nil
	}}

	values["move_to"] = &tengo.UserFunction{Name: "move_to", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		x, okX := tengo.ToInt(args[0])
		y, okY := tengo.ToInt(args[1])
		if !okX || !okY {
			return tengo.FalseValue, nil
		}
		if err := MoveAgent(w, e, x, y); err != nil {
			log.WithError(err).Warn("script: move_to")
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["random_cell"] = &tengo.UserFunction{Name: "random_cell", Value: func(args ...tengo.Object) (tengo.Object, error) {
		nav := navigator()
		if nav == nil {
			return tengo.FalseValue, nil
		}
		if err := nav.Mover.MoveToRandomCell(nil); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
		StopAgent(w, e)
		return tengo.UndefinedValue, nil
	}}

	values["at_destination"] = &tengo.UserFunction{Name: "at_destination", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if nav := navigator(); nav != nil && nav.Mover.IsAtDestination() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["is_moving"] = &tengo.UserFunction{Name: "is_moving", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if nav := navigator(); nav != nil && nav.Mover.IsMoving() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["cell"] = &tengo.UserFunction{Name: "cell", Value: func(args ...tengo.Object) (tengo.Object, error) {
		x, y := 0, 0
		if nav := navigator(); nav != nil {
			x, y = nav.Mover.Mover().CellX(), nav.Mover.Mover().CellY()
		}
		return &tengo.Array{Value: []tengo.Object{&tengo.Int{Value: int64(x)}, &tengo.Int{Value: int64(y)}}}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, objectAsString(arg))
		}
		log.Info(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
