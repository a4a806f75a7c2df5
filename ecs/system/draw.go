package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/gridwalk/ecs"
	"github.com/milk9111/gridwalk/ecs/component"
	"golang.org/x/image/colornames"
)

var (
	gridLineColor    = color.RGBA{R: 255, G: 255, B: 255, A: 24}
	pathColor        = color.RGBA{R: 255, G: 215, B: 0, A: 96}
	agentColor       = colornames.Steelblue
	selectedColor    = colornames.Crimson
	blockedColor     = colornames.Dimgray
	headingColor     = colornames.Lightgrey
	destinationColor = colornames.Gold
)

// DrawArena draws blocked cells and, in debug mode, the grid lines.
func DrawArena(w *ecs.World, screen *ebiten.Image, debug bool) {
	if w == nil || screen == nil {
		return
	}
	arena, ok := Arena(w)
	if !ok || arena.Grid == nil {
		return
	}
	g := arena.Grid
	cw, ch := float32(g.CellWidth()), float32(g.CellHeight())

	for _, c := range g.Cells() {
		if c.Walkable() {
			continue
		}
		vector.FillRect(screen, float32(c.X)*cw, float32(c.Y)*ch, cw, ch, blockedColor, false)
	}

	if !debug {
		return
	}
	width, height := float32(g.Width())*cw, float32(g.Height())*ch
	for x := 0; x <= g.Width(); x++ {
		vector.StrokeLine(screen, float32(x)*cw, 0, float32(x)*cw, height, 1, gridLineColor, false)
	}
	for y := 0; y <= g.Height(); y++ {
		vector.StrokeLine(screen, 0, float32(y)*ch, width, float32(y)*ch, 1, gridLineColor, false)
	}
}

// DrawAgents draws each agent as a disc with a heading marker. Debug mode adds
// queued paths and destinations.
func DrawAgents(w *ecs.World, screen *ebiten.Image, debug bool) {
	if w == nil || screen == nil {
		return
	}

	ecs.ForEach2(w, component.NavigatorComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, nav *component.Navigator, t *component.Transform) {
		if nav.Mover == nil || nav.Mover.Released() {
			return
		}
		m := nav.Mover.Mover()
		cw, ch := float32(m.CellWidth()), float32(m.CellHeight())
		radius := float32(math.Min(float64(cw), float64(ch))) * 0.35

		if debug {
			for _, c := range nav.Mover.Path() {
				vector.FillRect(screen, float32(c.X)*cw+cw/4, float32(c.Y)*ch+ch/4, cw/2, ch/2, pathColor, false)
			}
			if dest, ok := nav.Mover.Destination(); ok {
				vector.StrokeRect(screen, float32(dest.X)*cw+1, float32(dest.Y)*ch+1, cw-2, ch-2, 2, destinationColor, false)
			}
		}

		fill := color.Color(agentColor)
		if ecs.Has(w, e, component.SelectedComponent) {
			fill = selectedColor
		}
		x, y := float32(t.X), float32(t.Y)
		vector.FillCircle(screen, x, y, radius, fill, true)

		rad := t.Angle * math.Pi / 180
		hx := x + radius*float32(math.Cos(rad))
		hy := y + radius*float32(math.Sin(rad))
		vector.StrokeLine(screen, x, y, hx, hy, 2, headingColor, true)
	})
}

// DrawSelectedDebug prints the selected agent's state in the top-left corner.
func DrawSelectedDebug(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	e, ok := Selected(w)
	if !ok {
		return
	}
	nav, ok := ecs.Get(w, e, component.NavigatorComponent)
	if !ok || nav.Mover == nil {
		return
	}
	name := e.String()
	if agent, ok := ecs.Get(w, e, component.AgentComponent); ok {
		name = agent.Name
	}
	m := nav.Mover.Mover()
	text := fmt.Sprintf("Agent: %s\nCell: (%d,%d)\nMoving: %v\nQueued: %d\nSteps: %d",
		name, m.CellX(), m.CellY(), nav.Mover.IsMoving(), len(nav.Mover.Path()), nav.Steps)
	if sc, ok := ecs.Get(w, e, component.ScriptComponent); ok {
		text += fmt.Sprintf("\nScript: %s [%s]", sc.Path, sc.Current)
	}
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}
