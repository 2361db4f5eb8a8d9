package animation

import (
	"time"

	"github.com/timeweave/rewind/internal/core/timeline"
)

// PlayingAnimation is a one-shot animation positioned on the level clock.
// It plays from progress 0 to 1 over Duration and finishes at EndTime; with
// Reverse it plays from 1 back to 0. Because the state is expressed in level
// time rather than elapsed frames, restoring EndTime and Reverse is enough to
// put the animation back where it was at any recorded moment.
type PlayingAnimation struct {
	ID       timeline.TrackedID
	Duration time.Duration
	EndTime  timeline.LevelTime
	Reverse  bool
}

// NewPlayingAnimation returns an animation resting at progress 0.
func NewPlayingAnimation(id timeline.TrackedID, d time.Duration) PlayingAnimation {
	return PlayingAnimation{ID: id, Duration: d, Reverse: true}
}

// Progress returns the animation position in [0,1] at now.
func (a *PlayingAnimation) Progress(now timeline.LevelTime) float32 {
	if a.Duration <= 0 {
		if a.Reverse {
			return 0
		}
		return 1
	}
	remaining := a.EndTime.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	if remaining > a.Duration {
		remaining = a.Duration
	}
	frac := float32(float64(remaining) / float64(a.Duration))
	if a.Reverse {
		return frac
	}
	return 1 - frac
}

// Finished reports whether the animation has reached its end at now.
func (a *PlayingAnimation) Finished(now timeline.LevelTime) bool {
	return now >= a.EndTime
}

// PlayingForwards reports whether the animation is heading to progress 1.
func (a *PlayingAnimation) PlayingForwards() bool { return !a.Reverse }

// PlayForwards turns the animation toward progress 1, continuing from its
// current progress. Returns false if it was already heading there.
func (a *PlayingAnimation) PlayForwards(now timeline.LevelTime) bool {
	if !a.Reverse {
		return false
	}
	p := a.Progress(now)
	a.Reverse = false
	a.EndTime = now.Add(time.Duration(float64(a.Duration) * float64(1-p)))
	return true
}

// PlayBackwards turns the animation toward progress 0.
func (a *PlayingAnimation) PlayBackwards(now timeline.LevelTime) bool {
	if a.Reverse {
		return false
	}
	p := a.Progress(now)
	a.Reverse = true
	a.EndTime = now.Add(time.Duration(float64(a.Duration) * float64(p)))
	return true
}
