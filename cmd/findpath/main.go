package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/milk9111/gridwalk/grid"
	"github.com/milk9111/gridwalk/level"
	"github.com/milk9111/gridwalk/logger"
	"github.com/milk9111/gridwalk/pathfinding"
	"github.com/sirupsen/logrus"
)

func main() {
	levelName := flag.String("level", "corridor", "level name in level/levels (basename, .yaml optional)")
	from := flag.String("from", "0,0", "start cell as x,y")
	to := flag.String("to", "", "goal cell as x,y")
	busy := flag.String("busy", "", "cells to treat as occupied, as x,y;x,y")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	logger.Setup(*debug)
	log := logger.Component("findpath")

	if err := run(*levelName, *from, *to, *busy, log); err != nil {
		log.WithError(err).Error("findpath failed")
		os.Exit(1)
	}
}

func run(levelName, from, to, busy string, log *logrus.Entry) error {
	spec, err := level.LoadSpec(levelName)
	if err != nil {
		return err
	}
	g, err := spec.BuildGrid()
	if err != nil {
		return err
	}

	sx, sy, err := parseCell(from)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	gx, gy, err := parseCell(to)
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}
	busyCells, err := parseCells(busy)
	if err != nil {
		return fmt.Errorf("busy: %w", err)
	}

	log.WithFields(logrus.Fields{
		"level": spec.Name,
		"from":  from,
		"to":    to,
		"busy":  len(busyCells),
	}).Debug("searching")

	path, err := pathfinding.New(g).FindPath(sx, sy, gx, gy, busyCells...)
	if err != nil {
		return err
	}
	fmt.Println(path.String())
	return nil
}

func parseCell(s string) (int, int, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return 0, 0, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func parseCells(s string) ([]grid.Cell, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var cells []grid.Cell
	for _, part := range strings.Split(s, ";") {
		x, y, err := parseCell(part)
		if err != nil {
			return nil, err
		}
		cells = append(cells, grid.Cell{X: x, Y: y})
	}
	return cells, nil
}
