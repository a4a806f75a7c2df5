package main

import (
	"flag"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gridwalk/logger"
)

func main() {
	debug := flag.Bool("debug", false, "draw the grid and queued paths, log at debug level")
	levelName := flag.String("level", "corridor", "level name in level/levels (basename, .yaml optional)")
	seed := flag.Int64("seed", 0, "seed for agents that do not set one")
	flag.Parse()

	logger.Setup(*debug)

	game, err := NewGame(*levelName, *debug, *seed)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to start")
	}
	defer game.Close()

	ebiten.SetWindowTitle("gridwalk")
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game); err != nil {
		logger.Log.WithError(err).Fatal("game exited")
	}
}
