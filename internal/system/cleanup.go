package system

import (
	"time"

	"github.com/timeweave/rewind/internal/core/ecs"
	"github.com/timeweave/rewind/internal/core/event"
	coresys "github.com/timeweave/rewind/internal/core/system"
)

// CleanupSystem flushes the deferred entity destruction queue and drops the
// tick's events. Phase 6 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	bus   *event.Bus
}

func NewCleanupSystem(world *ecs.World, bus *event.Bus) *CleanupSystem {
	return &CleanupSystem{world: world, bus: bus}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.EndTick()
	s.bus.Clear()
}
