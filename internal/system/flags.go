package system

import (
	"time"

	"github.com/timeweave/rewind/internal/component"
	"github.com/timeweave/rewind/internal/core/ecs"
	"github.com/timeweave/rewind/internal/core/event"
	coresys "github.com/timeweave/rewind/internal/core/system"
	"github.com/timeweave/rewind/internal/core/timeline"
	"github.com/timeweave/rewind/internal/world"
	"go.uber.org/zap"
)

// FlagSystem sets level flags when a body enters a flag trigger. Only forward
// play mutates flags; during a rewind the flag history owns them.
// Phase 2 (Flags).
type FlagSystem struct {
	manager  *timeline.Manager
	flags    *world.LevelFlags
	triggers *ecs.Store[component.FlagTrigger]
	bus      *event.Bus
	log      *zap.Logger
}

func NewFlagSystem(m *timeline.Manager, flags *world.LevelFlags, triggers *ecs.Store[component.FlagTrigger], bus *event.Bus, log *zap.Logger) *FlagSystem {
	return &FlagSystem{manager: m, flags: flags, triggers: triggers, bus: bus, log: log}
}

func (s *FlagSystem) Phase() coresys.Phase { return coresys.PhaseFlags }

func (s *FlagSystem) Update(_ time.Duration) {
	if !s.manager.Playing() {
		return
	}
	for _, ev := range event.Read[event.SensorEntered](s.bus) {
		trig, ok := s.triggers.Get(ev.Sensor)
		if !ok {
			continue // trigger destroyed this tick
		}
		changed, err := s.flags.Set(trig.Level, trig.Flag, true)
		if err != nil {
			s.log.Warn("flag trigger misconfigured", zap.Stringer("sensor", ev.Sensor), zap.Error(err))
			continue
		}
		if changed {
			event.Emit(s.bus, event.FlagChanged{
				Level: trig.Level,
				Flag:  trig.Flag,
				Value: true,
				At:    s.manager.LevelTime(),
			})
			s.log.Info("level flag set",
				zap.Int("level", trig.Level),
				zap.Int("flag", trig.Flag),
				zap.Stringer("at", s.manager.LevelTime()),
			)
		}
	}
}
