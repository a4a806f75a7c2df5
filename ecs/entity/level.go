package entity

import (
	"fmt"

	"github.com/milk9111/gridwalk/ecs"
	"github.com/milk9111/gridwalk/ecs/component"
	"github.com/milk9111/gridwalk/level"
	"github.com/milk9111/gridwalk/pathfinding"
	"github.com/sirupsen/logrus"
)

// LoadLevelToWorld builds the level grid, stores it on an arena entity and
// spawns every agent the level lists. The first agent starts selected.
func LoadLevelToWorld(w *ecs.World, spec *level.Spec, log *logrus.Entry) ([]ecs.Entity, error) {
	g, err := spec.BuildGrid()
	if err != nil {
		return nil, fmt.Errorf("level %s: build grid: %w", spec.Name, err)
	}

	var opts []pathfinding.Option
	if spec.PathCache {
		opts = append(opts, pathfinding.WithPathCache())
	}
	pf := pathfinding.New(g, opts...)

	arena := ecs.CreateEntity(w)
	if err := ecs.Add(w, arena, component.ArenaComponent, &component.Arena{Name: spec.Name, Grid: g, Pathfinder: pf}); err != nil {
		return nil, fmt.Errorf("level %s: add arena: %w", spec.Name, err)
	}

	agents := make([]ecs.Entity, 0, len(spec.Agents))
	for _, agentSpec := range spec.Agents {
		e, err := NewAgent(w, g, pf, agentSpec, log)
		if err != nil {
			return nil, fmt.Errorf("level %s: %w", spec.Name, err)
		}
		agents = append(agents, e)
	}

	if len(agents) > 0 {
		if err := ecs.Add(w, agents[0], component.SelectedComponent, &component.Selected{}); err != nil {
			return nil, fmt.Errorf("level %s: select: %w", spec.Name, err)
		}
	}

	if log != nil {
		log.WithFields(logrus.Fields{
			"level":  spec.Name,
			"width":  g.Width(),
			"height": g.Height(),
			"agents": len(agents),
		}).Info("level loaded")
	}
	return agents, nil
}

// ClearWorld destroys every entity, releasing their path movers.
func ClearWorld(w *ecs.World) {
	for _, e := range ecs.Entities(w) {
		ecs.DestroyEntity(w, e)
	}
}
