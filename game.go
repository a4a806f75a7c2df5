package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/gridwalk/ecs"
	"github.com/milk9111/gridwalk/ecs/component"
	"github.com/milk9111/gridwalk/ecs/entity"
	"github.com/milk9111/gridwalk/ecs/system"
	"github.com/milk9111/gridwalk/level"
	"github.com/milk9111/gridwalk/logger"
	"github.com/milk9111/gridwalk/pathfinding"
	"github.com/sirupsen/logrus"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

const tickDuration = 1.0 / 60

type Game struct {
	levelName string
	seed      int64
	debug     bool
	paused    bool
	quit      bool

	world     *ecs.World
	scheduler *ecs.Scheduler
	input     *Input
	pauseUI   *ebitenui.UI
	watcher   *level.Watcher
	log       *logrus.Entry

	screenW, screenH int
	clipboardReady   bool
}

func NewGame(levelName string, debug bool, seed int64) (*Game, error) {
	log := logger.Component("game")

	g := &Game{
		levelName: levelName,
		seed:      seed,
		debug:     debug,
		world:     ecs.NewWorld(),
		input:     NewInput(),
		log:       log,
	}
	g.scheduler = ecs.NewScheduler(
		system.NewScriptSystem(nil, logger.Component("script")),
		system.NewWanderSystem(logger.Component("wander")),
		system.NewMovementSystem(),
	)
	g.pauseUI = NewPauseUI(g)

	if err := g.loadLevel(); err != nil {
		return nil, err
	}

	if err := clipboard.Init(); err != nil {
		log.WithError(err).Warn("clipboard unavailable")
	} else {
		g.clipboardReady = true
	}

	if w, err := level.NewWatcher(level.LevelDir(), level.ScriptDir()); err != nil {
		log.WithError(err).Info("hot reload disabled")
	} else {
		g.watcher = w
	}

	return g, nil
}

func (g *Game) loadLevel() error {
	spec, err := level.LoadSpec(g.levelName)
	if err != nil {
		return err
	}
	if g.seed != 0 {
		for i := range spec.Agents {
			if spec.Agents[i].Seed == 0 {
				spec.Agents[i].Seed = g.seed + int64(i)
			}
		}
	}

	entity.ClearWorld(g.world)
	g.world.Events().Drain()
	if _, err := entity.LoadLevelToWorld(g.world, spec, logger.Component("movement")); err != nil {
		return err
	}

	g.screenW = spec.Width() * spec.CellWidth
	g.screenH = spec.Height() * spec.CellHeight
	ebiten.SetWindowSize(g.screenW, g.screenH)
	return nil
}

func (g *Game) Update() error {
	if g.quit {
		g.Close()
		return ebiten.Termination
	}

	g.pollWatcher()
	g.input.Update()

	if g.input.TogglePause {
		g.paused = !g.paused
	}
	if g.input.ToggleDebug {
		g.debug = !g.debug
	}
	if g.input.Reload {
		g.reload()
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.handleCommands()
	g.scheduler.Update(g.world, tickDuration)
	g.logEvents()
	return nil
}

func (g *Game) handleCommands() {
	in := g.input
	if in.SelectNext {
		system.SelectNext(g.world)
	}

	selected, ok := system.Selected(g.world)
	if !ok {
		return
	}
	nav, ok := ecs.Get(g.world, selected, component.NavigatorComponent)
	if !ok {
		return
	}

	var err error
	switch {
	case in.Click:
		if arena, ok := system.Arena(g.world); ok {
			if cell, ok := arena.Grid.CellAtPixel(float64(in.MouseX), float64(in.MouseY)); ok {
				err = system.MoveAgent(g.world, selected, cell.X, cell.Y)
			}
		}
	case in.StepX < 0:
		err = nav.Mover.MoveToLeftCell()
	case in.StepX > 0:
		err = nav.Mover.MoveToRightCell()
	case in.StepY < 0:
		err = nav.Mover.MoveToUpCell()
	case in.StepY > 0:
		err = nav.Mover.MoveToDownCell()
	case in.Random:
		err = nav.Mover.MoveToRandomCell(nil)
	case in.Stop:
		system.StopAgent(g.world, selected)
	case in.Remove:
		ecs.DestroyEntity(g.world, selected)
		system.SelectNext(g.world)
	case in.CopyPath:
		g.copyPath(nav)
	}
	if err != nil {
		g.log.WithError(err).WithField("entity", selected.String()).Debug("command rejected")
	}
}

func (g *Game) copyPath(nav *component.Navigator) {
	path := pathfinding.Path(nav.Mover.Path()).String()
	if !g.clipboardReady {
		g.log.WithField("path", path).Info("path")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(path))
	g.log.WithField("path", path).Debug("path copied")
}

func (g *Game) logEvents() {
	for _, evt := range g.world.Events().Drain() {
		entry := g.log.WithField("event", evt.Type)
		if move, ok := evt.Data.(ecs.MoveEvent); ok {
			entry = entry.WithFields(logrus.Fields{
				"entity": move.Entity.String(),
				"x":      move.X,
				"y":      move.Y,
			})
		}
		entry.Debug("world event")
	}
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Changes:
			if !ok {
				g.watcher = nil
				return
			}
			g.handleChange(change)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.WithError(err).Warn("watcher error")
		default:
			return
		}
	}
}

func (g *Game) handleChange(change level.Change) {
	log := g.log.WithFields(logrus.Fields{"file": change.Path, "kind": change.Kind.String()})
	if change.Kind == level.ScriptChanged {
		bumped := 0
		ecs.ForEach(g.world, component.ScriptComponent.Kind(), func(e ecs.Entity, sc *component.Script) {
			if strings.TrimSuffix(filepath.Base(sc.Path), filepath.Ext(sc.Path)) == change.Name {
				sc.Version++
				bumped++
			}
		})
		log.WithField("agents", bumped).Info("script reloaded")
		return
	}

	if change.Name != strings.TrimSuffix(filepath.Base(g.levelName), filepath.Ext(g.levelName)) {
		return
	}
	g.reload()
}

func (g *Game) reload() {
	if err := g.loadLevel(); err != nil {
		g.log.WithError(err).Error("level reload failed")
		return
	}
	g.log.WithField("level", g.levelName).Info("level reloaded")
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
		g.watcher = nil
	}
	entity.ClearWorld(g.world)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	system.DrawArena(g.world, screen, g.debug)
	system.DrawAgents(g.world, screen, g.debug)

	if g.debug {
		system.DrawSelectedDebug(g.world, screen)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.2f", ebiten.ActualFPS()), 10, g.screenH-20)
	}
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}
