package system

import (
	"time"

	"github.com/timeweave/rewind/internal/animation"
	"github.com/timeweave/rewind/internal/component"
	"github.com/timeweave/rewind/internal/core/ecs"
	coresys "github.com/timeweave/rewind/internal/core/system"
	"github.com/timeweave/rewind/internal/core/timeline"
	"github.com/timeweave/rewind/internal/world"
)

// DoorSystem opens doors whose level flag is set and closes them when it is
// cleared. Runs after the history phase so it reacts to this tick's flags.
// Phase 4 (Reaction).
type DoorSystem struct {
	manager *timeline.Manager
	flags   *world.LevelFlags
	doors   *ecs.Store[component.Door]
	anims   *ecs.Store[animation.PlayingAnimation]
}

func NewDoorSystem(m *timeline.Manager, flags *world.LevelFlags, doors *ecs.Store[component.Door], anims *ecs.Store[animation.PlayingAnimation]) *DoorSystem {
	return &DoorSystem{manager: m, flags: flags, doors: doors, anims: anims}
}

func (s *DoorSystem) Phase() coresys.Phase { return coresys.PhaseReaction }

func (s *DoorSystem) Update(_ time.Duration) {
	if !s.manager.Playing() {
		return
	}
	now := s.manager.LevelTime()
	ecs.Each2(s.doors, s.anims, func(id ecs.EntityID, d *component.Door, a *animation.PlayingAnimation) {
		open := s.flags.Get(d.Level, d.Flag)
		if open == a.PlayingForwards() {
			return
		}
		a, _ = s.anims.Mut(id)
		if open {
			a.PlayForwards(now)
		} else {
			a.PlayBackwards(now)
		}
	})
}
