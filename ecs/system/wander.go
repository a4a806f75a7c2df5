package system

import (
	"github.com/milk9111/gridwalk/ecs"
	"github.com/milk9111/gridwalk/ecs/component"
	"github.com/milk9111/gridwalk/logger"
	"github.com/sirupsen/logrus"
)

// WanderSystem sends agents that stood still long enough to a random cell.
type WanderSystem struct {
	log *logrus.Entry
}

// NewWanderSystem creates the system. A nil logger discards output.
func NewWanderSystem(log *logrus.Entry) *WanderSystem {
	if log == nil {
		log = logger.Discard()
	}
	return &WanderSystem{log: log}
}

func (s *WanderSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.WanderComponent.Kind(), component.NavigatorComponent.Kind(), func(e ecs.Entity, wd *component.Wander, nav *component.Navigator) {
		if wd.IdleFrames <= 0 || nav.Mover == nil || nav.Mover.Released() {
			return
		}
		if nav.Mover.IsMoving() {
			wd.Counter = 0
			return
		}
		wd.Counter++
		if wd.Counter < wd.IdleFrames {
			return
		}
		wd.Counter = 0
		if err := nav.Mover.MoveToRandomCell(wd.Rand); err != nil {
			s.log.WithError(err).WithField("entity", e.String()).Warn("wander: move rejected")
		}
	})
}
