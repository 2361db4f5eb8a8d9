package motion

import (
	"github.com/timeweave/rewind/internal/component"
	"github.com/timeweave/rewind/internal/core/ecs"
	"github.com/timeweave/rewind/internal/core/timeline"
)

// positionEpsilon is the distance below which two recorded positions count
// as the same sample.
const positionEpsilon = 1e-4

// TransformChange is the recorded position of a tracked transform.
type TransformChange struct {
	ID       timeline.TrackedID
	Position component.Vec3
}

func (c TransformChange) TrackedID() timeline.TrackedID { return c.ID }

func (c TransformChange) IsSimilar(o TransformChange) bool {
	return c.Position.Sub(o.Position).Len() < positionEpsilon
}

// NewTransformBinding connects a transform store to the record/rewind
// protocol. Rewinds blend linearly between recorded positions.
func NewTransformBinding(store *ecs.Store[component.Transform]) *timeline.ComponentBinding[component.Transform, TransformChange] {
	return &timeline.ComponentBinding[component.Transform, TransformChange]{
		Store: store,
		ID:    func(t *component.Transform) timeline.TrackedID { return t.ID },
		Snapshot: func(t *component.Transform) TransformChange {
			return TransformChange{ID: t.ID, Position: t.Position}
		},
		Restore: func(t *component.Transform, c TransformChange) {
			t.Position = c.Position
		},
		Interpolate: func(t *component.Transform, from, to TransformChange, f float32) {
			t.Position = from.Position.Lerp(to.Position, f)
		},
	}
}
