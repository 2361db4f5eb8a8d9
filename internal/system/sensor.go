package system

import (
	"time"

	"github.com/timeweave/rewind/internal/component"
	"github.com/timeweave/rewind/internal/core/ecs"
	"github.com/timeweave/rewind/internal/core/event"
	coresys "github.com/timeweave/rewind/internal/core/system"
)

type overlapKey struct {
	sensor ecs.EntityID
	body   ecs.EntityID
}

// SensorSystem detects bodies entering and leaving flag trigger volumes and
// emits SensorEntered / SensorExited. Overlap state is tracked in every mode,
// so a body rewound out of a volume fires again when it walks back in.
// Phase 1 (Trigger).
type SensorSystem struct {
	transforms *ecs.Store[component.Transform]
	colliders  *ecs.Store[component.Collider]
	triggers   *ecs.Store[component.FlagTrigger]
	bodies     *ecs.Store[component.Body]
	bus        *event.Bus

	inside map[overlapKey]struct{}
	seen   map[overlapKey]struct{}
}

func NewSensorSystem(
	transforms *ecs.Store[component.Transform],
	colliders *ecs.Store[component.Collider],
	triggers *ecs.Store[component.FlagTrigger],
	bodies *ecs.Store[component.Body],
	bus *event.Bus,
) *SensorSystem {
	return &SensorSystem{
		transforms: transforms,
		colliders:  colliders,
		triggers:   triggers,
		bodies:     bodies,
		bus:        bus,
		inside:     make(map[overlapKey]struct{}, 8),
		seen:       make(map[overlapKey]struct{}, 8),
	}
}

func (s *SensorSystem) Phase() coresys.Phase { return coresys.PhaseTrigger }

func (s *SensorSystem) Update(_ time.Duration) {
	clear(s.seen)
	s.triggers.Each(func(sensor ecs.EntityID, _ *component.FlagTrigger) {
		st, ok := s.transforms.Get(sensor)
		if !ok {
			return
		}
		sc, ok := s.colliders.Get(sensor)
		if !ok {
			return
		}
		s.bodies.Each(func(body ecs.EntityID, _ *component.Body) {
			bt, ok := s.transforms.Get(body)
			if !ok {
				return
			}
			bc, ok := s.colliders.Get(body)
			if !ok {
				return
			}
			if !Overlaps(st.Position, sc.HalfExtents, bt.Position, bc.HalfExtents) {
				return
			}
			key := overlapKey{sensor: sensor, body: body}
			s.seen[key] = struct{}{}
			if _, already := s.inside[key]; !already {
				s.inside[key] = struct{}{}
				event.Emit(s.bus, event.SensorEntered{Sensor: sensor, Body: body})
			}
		})
	})
	for key := range s.inside {
		if _, still := s.seen[key]; !still {
			delete(s.inside, key)
			event.Emit(s.bus, event.SensorExited{Sensor: key.sensor, Body: key.body})
		}
	}
}

// Reset forgets every tracked overlap.
func (s *SensorSystem) Reset() {
	clear(s.inside)
	clear(s.seen)
}

// Overlaps tests two axis-aligned boxes given by centre and half extents.
// Touching faces count as overlapping.
func Overlaps(ac, ah, bc, bh component.Vec3) bool {
	d := ac.Sub(bc).Abs()
	return d.X <= ah.X+bh.X && d.Y <= ah.Y+bh.Y && d.Z <= ah.Z+bh.Z
}
