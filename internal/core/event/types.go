package event

import (
	"github.com/timeweave/rewind/internal/core/ecs"
	"github.com/timeweave/rewind/internal/core/timeline"
)

// SensorEntered fires on the first tick a body overlaps a sensor volume.
type SensorEntered struct {
	Sensor ecs.EntityID
	Body   ecs.EntityID
}

// SensorExited fires on the first tick a body no longer overlaps a sensor.
type SensorExited struct {
	Sensor ecs.EntityID
	Body   ecs.EntityID
}

// FlagChanged fires when a level flag flips during forward play.
type FlagChanged struct {
	Level int
	Flag  int
	Value bool
	At    timeline.LevelTime
}
