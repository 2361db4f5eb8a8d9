package component

import "github.com/timeweave/rewind/internal/core/timeline"

// Transform is the position of an entity in level space. ID is set for
// entities whose position is recorded.
type Transform struct {
	ID       timeline.TrackedID
	Position Vec3
}

// Collider is an axis-aligned box centred on the entity's transform.
type Collider struct {
	HalfExtents Vec3
}

// Velocity moves a body every tick of forward play.
type Velocity struct {
	Linear Vec3 // units per second
}

// Oscillator drives a kinematic body along Z with sin(level time).
type Oscillator struct {
	Origin    Vec3
	Amplitude float32
	Frequency float64 // radians per second
}
