package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input holds the commands issued on the current frame.
type Input struct {
	// Click is true on the frame the left mouse button was pressed.
	Click          bool
	MouseX, MouseY int

	// StepX/StepY is a one-cell move from the arrow keys.
	StepX, StepY int

	Random      bool
	Stop        bool
	Remove      bool
	SelectNext  bool
	CopyPath    bool
	TogglePause bool
	ToggleDebug bool
	Reload      bool
}

func NewInput() *Input {
	return &Input{}
}

// Update polls keyboard and mouse edges.
func (i *Input) Update() {
	*i = Input{}

	i.MouseX, i.MouseY = ebiten.CursorPosition()
	i.Click = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)

	switch {
	case justPressed(ebiten.KeyArrowUp):
		i.StepY = -1
	case justPressed(ebiten.KeyArrowDown):
		i.StepY = 1
	case justPressed(ebiten.KeyArrowLeft):
		i.StepX = -1
	case justPressed(ebiten.KeyArrowRight):
		i.StepX = 1
	}

	i.Random = justPressed(ebiten.KeyR)
	i.Stop = justPressed(ebiten.KeyS, ebiten.KeySpace)
	i.Remove = justPressed(ebiten.KeyDelete, ebiten.KeyBackspace)
	i.SelectNext = justPressed(ebiten.KeyTab)
	i.CopyPath = justPressed(ebiten.KeyC)
	i.TogglePause = justPressed(ebiten.KeyP, ebiten.KeyEscape)
	i.ToggleDebug = justPressed(ebiten.KeyF3)
	i.Reload = justPressed(ebiten.KeyF5)
}

func justPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}
