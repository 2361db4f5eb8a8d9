package animation

import (
	"github.com/timeweave/rewind/internal/core/ecs"
	"github.com/timeweave/rewind/internal/core/timeline"
)

// PlayingAnimationChange is the recorded state of a PlayingAnimation.
type PlayingAnimationChange struct {
	ID      timeline.TrackedID
	EndTime timeline.LevelTime
	Reverse bool
}

func (c PlayingAnimationChange) TrackedID() timeline.TrackedID { return c.ID }

func (c PlayingAnimationChange) IsSimilar(o PlayingAnimationChange) bool {
	return c.EndTime == o.EndTime && c.Reverse == o.Reverse
}

// NewBinding connects an animation store to the record/rewind protocol.
func NewBinding(store *ecs.Store[PlayingAnimation]) *timeline.ComponentBinding[PlayingAnimation, PlayingAnimationChange] {
	return &timeline.ComponentBinding[PlayingAnimation, PlayingAnimationChange]{
		Store: store,
		ID:    func(a *PlayingAnimation) timeline.TrackedID { return a.ID },
		Snapshot: func(a *PlayingAnimation) PlayingAnimationChange {
			return PlayingAnimationChange{ID: a.ID, EndTime: a.EndTime, Reverse: a.Reverse}
		},
		Restore: func(a *PlayingAnimation, c PlayingAnimationChange) {
			a.EndTime = c.EndTime
			a.Reverse = c.Reverse
		},
	}
}
