package system

import (
	"math"
	"time"

	"github.com/timeweave/rewind/internal/component"
	"github.com/timeweave/rewind/internal/core/ecs"
	coresys "github.com/timeweave/rewind/internal/core/system"
	"github.com/timeweave/rewind/internal/core/timeline"
)

// MotionSystem integrates body velocities during forward play. Registered
// ahead of the sensor system so overlaps see this tick's positions.
// Phase 1 (Trigger).
type MotionSystem struct {
	manager    *timeline.Manager
	transforms *ecs.Store[component.Transform]
	velocities *ecs.Store[component.Velocity]
}

func NewMotionSystem(m *timeline.Manager, transforms *ecs.Store[component.Transform], velocities *ecs.Store[component.Velocity]) *MotionSystem {
	return &MotionSystem{manager: m, transforms: transforms, velocities: velocities}
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhaseTrigger }

func (s *MotionSystem) Update(dt time.Duration) {
	if !s.manager.Playing() {
		return
	}
	step := float32(dt.Seconds())
	ecs.Each2(s.transforms, s.velocities, func(id ecs.EntityID, _ *component.Transform, v *component.Velocity) {
		if v.Linear == (component.Vec3{}) {
			return
		}
		t, _ := s.transforms.Mut(id)
		t.Position = t.Position.Add(v.Linear.Scale(step))
	})
}

// OscillatorSystem moves kinematic boxes along sin(level time) during forward
// play. Phase 1 (Trigger).
type OscillatorSystem struct {
	manager     *timeline.Manager
	transforms  *ecs.Store[component.Transform]
	oscillators *ecs.Store[component.Oscillator]
}

func NewOscillatorSystem(m *timeline.Manager, transforms *ecs.Store[component.Transform], oscillators *ecs.Store[component.Oscillator]) *OscillatorSystem {
	return &OscillatorSystem{manager: m, transforms: transforms, oscillators: oscillators}
}

func (s *OscillatorSystem) Phase() coresys.Phase { return coresys.PhaseTrigger }

func (s *OscillatorSystem) Update(_ time.Duration) {
	if !s.manager.Playing() {
		return
	}
	now := s.manager.LevelTimeSeconds()
	ecs.Each2(s.transforms, s.oscillators, func(id ecs.EntityID, _ *component.Transform, o *component.Oscillator) {
		t, _ := s.transforms.Mut(id)
		t.Position = o.Origin.Add(component.Vec3{Z: o.Amplitude * float32(math.Sin(o.Frequency*now))})
	})
}
