package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/gridwalk/level"
	"github.com/milk9111/gridwalk/logger"
	"golang.org/x/image/colornames"
)

type editorGame struct {
	ed       *Editor
	ui       *ebitenui.UI
	painting bool
	width    int
	height   int
}

func main() {
	levelName := flag.String("level", "corridor", "level to edit (basename, .yaml optional)")
	out := flag.String("out", "", "file to save to (default level/levels/<level>.yaml)")
	newSize := flag.String("new", "", "start an empty level of WxH cells instead of loading one")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	logger.Setup(*debug)
	log := logger.Component("editor")

	spec, err := openSpec(*levelName, *newSize)
	if err != nil {
		log.WithError(err).Fatal("open level")
	}

	filename := *out
	if filename == "" {
		filename = filepath.Join(level.LevelDir(), strings.TrimSuffix(*levelName, ".yaml")+".yaml")
	}

	g := &editorGame{
		ed:     NewEditor(spec, filename, log),
		width:  spec.Width() * spec.CellWidth,
		height: spec.Height()*spec.CellHeight + toolbarHeight,
	}
	g.ui = buildUI(g.ed.SetTool, func() { g.ed.Undo() }, func() {
		if err := g.ed.Save(); err != nil {
			g.ed.status = err.Error()
			log.WithError(err).Warn("save failed")
		}
	})

	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle("gridwalk editor")
	if err := ebiten.RunGame(g); err != nil {
		log.WithError(err).Fatal("editor exited")
	}
}

func openSpec(name, newSize string) (*level.Spec, error) {
	if newSize == "" {
		return level.LoadSpec(name)
	}
	var w, h int
	if _, err := fmt.Sscanf(newSize, "%dx%d", &w, &h); err != nil {
		return nil, fmt.Errorf("new: want WxH, got %q", newSize)
	}
	return NewBlankSpec(name, w, h)
}

func (g *editorGame) Update() error {
	g.ui.Update()

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyZ) {
		g.ed.Undo()
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.ed.Save(); err != nil {
			g.ed.status = err.Error()
		}
	}

	mx, my := ebiten.CursorPosition()
	spec := g.ed.spec
	cx, cy := mx/spec.CellWidth, (my-toolbarHeight)/spec.CellHeight
	overGrid := my >= toolbarHeight && mx >= 0 && cx < spec.Width() && cy < spec.Height()

	switch {
	case g.ed.tool == ToolProbe:
		if overGrid && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			if err := g.ed.Apply(cx, cy); err != nil {
				g.ed.status = err.Error()
			}
		}
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && overGrid:
		g.painting = true
		if err := g.ed.Apply(cx, cy); err != nil {
			g.ed.status = err.Error()
		}
	case g.painting:
		g.painting = false
		g.ed.EndStroke()
	}
	return nil
}

func (g *editorGame) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	spec := g.ed.spec
	cw, ch := float32(spec.CellWidth), float32(spec.CellHeight)
	top := float32(toolbarHeight)

	for y, row := range spec.Rows {
		for x := 0; x < len(row); x++ {
			if row[x] == '#' {
				vector.FillRect(screen, float32(x)*cw, top+float32(y)*ch, cw, ch, colornames.Dimgray, false)
			}
			vector.StrokeRect(screen, float32(x)*cw, top+float32(y)*ch, cw, ch, 1, colornames.Darkslategray, false)
		}
	}
	for _, c := range g.ed.preview {
		vector.FillRect(screen, float32(c.X)*cw+cw/4, top+float32(c.Y)*ch+ch/4, cw/2, ch/2, colornames.Gold, false)
	}
	if g.ed.probe != nil {
		vector.StrokeRect(screen, float32(g.ed.probe.X)*cw+1, top+float32(g.ed.probe.Y)*ch+1, cw-2, ch-2, 2, colornames.Gold, false)
	}
	for _, a := range spec.Agents {
		vector.FillCircle(screen, float32(a.X)*cw+cw/2, top+float32(a.Y)*ch+ch/2, cw*0.35, colornames.Steelblue, true)
	}

	status := g.ed.status
	if g.ed.dirty {
		status = "* " + status
	}
	ebitenutil.DebugPrintAt(screen, status, 8, g.height-16)

	g.ui.Draw(screen)
}

func (g *editorGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
