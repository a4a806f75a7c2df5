package entity

import (
	"fmt"
	"math/rand"

	"github.com/milk9111/gridwalk/ecs"
	"github.com/milk9111/gridwalk/ecs/component"
	"github.com/milk9111/gridwalk/grid"
	"github.com/milk9111/gridwalk/level"
	"github.com/milk9111/gridwalk/movement"
	"github.com/milk9111/gridwalk/pathfinding"
	"github.com/sirupsen/logrus"
)

// NewAgent creates an entity that walks g, standing on the cell named by spec.
func NewAgent(w *ecs.World, g *grid.Grid, pf *pathfinding.Pathfinder, spec level.AgentSpec, log *logrus.Entry) (ecs.Entity, error) {
	if !g.IsWithin(spec.X, spec.Y) {
		return 0, fmt.Errorf("agent %s: start (%d,%d): %w", spec.Name, spec.X, spec.Y, grid.ErrOutOfBounds)
	}

	entity := ecs.CreateEntity(w)

	if err := ecs.Add(w, entity, component.AgentComponent, &component.Agent{Name: spec.Name}); err != nil {
		return 0, fmt.Errorf("agent %s: add agent: %w", spec.Name, err)
	}

	mover := movement.NewCellMover(g.CellWidth(), g.CellHeight(), movement.SpeedFromMultiplier(g.CellWidth(), spec.SpeedMultiplier)).
		AllowRotation(spec.AllowRotation)

	opts := []movement.PathMoverOption{}
	if log != nil {
		opts = append(opts, movement.WithLogger(log.WithFields(logrus.Fields{
			"agent":  spec.Name,
			"entity": entity.String(),
		})))
	}
	if spec.Seed != 0 {
		opts = append(opts, movement.WithSeed(spec.Seed))
	}
	pathMover := movement.NewPathMover(g, pf, mover, opts...)
	if err := pathMover.SetPositionToCell(spec.X, spec.Y); err != nil {
		return 0, fmt.Errorf("agent %s: place: %w", spec.Name, err)
	}

	if err := ecs.Add(w, entity, component.NavigatorComponent, &component.Navigator{Mover: pathMover}); err != nil {
		return 0, fmt.Errorf("agent %s: add navigator: %w", spec.Name, err)
	}

	pos := mover.Position()
	if err := ecs.Add(w, entity, component.TransformComponent, &component.Transform{X: pos.X, Y: pos.Y, Angle: mover.Angle()}); err != nil {
		return 0, fmt.Errorf("agent %s: add transform: %w", spec.Name, err)
	}

	if spec.Wander > 0 {
		seed := spec.Seed
		if seed == 0 {
			seed = int64(entity)
		}
		if err := ecs.Add(w, entity, component.WanderComponent, &component.Wander{
			IdleFrames: spec.Wander,
			Rand:       rand.New(rand.NewSource(seed)),
		}); err != nil {
			return 0, fmt.Errorf("agent %s: add wander: %w", spec.Name, err)
		}
	}

	if spec.Script != "" {
		if err := ecs.Add(w, entity, component.ScriptComponent, &component.Script{Path: spec.Script}); err != nil {
			return 0, fmt.Errorf("agent %s: add script: %w", spec.Name, err)
		}
	}

	return entity, nil
}
