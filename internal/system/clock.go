package system

import (
	"time"

	coresys "github.com/timeweave/rewind/internal/core/system"
	"github.com/timeweave/rewind/internal/core/timeline"
)

// ClockSystem advances the level clock once per tick. Phase 0 (Clock).
type ClockSystem struct {
	manager *timeline.Manager
}

func NewClockSystem(m *timeline.Manager) *ClockSystem {
	return &ClockSystem{manager: m}
}

func (s *ClockSystem) Phase() coresys.Phase { return coresys.PhaseClock }

func (s *ClockSystem) Update(dt time.Duration) {
	s.manager.Advance(dt)
}
