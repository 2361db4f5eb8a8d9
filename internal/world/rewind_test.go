package world

import (
	"testing"
	"time"

	"github.com/timeweave/rewind/internal/core/timeline"
	"go.uber.org/zap/zaptest"
)

// flagRig drives one level's flags through the track and rewind systems a
// second at a time, the way the level runner orders them.
type flagRig struct {
	flags   *LevelFlags
	manager *timeline.Manager
	history *timeline.History[FlagChange]
	track   *timeline.TrackSystem[FlagChange]
	rewind  *timeline.RewindSystem[FlagChange]
}

func newFlagRig(t *testing.T) *flagRig {
	t.Helper()
	log := zaptest.NewLogger(t)
	f := NewLevelFlags()
	if err := f.SetCount(1, 2); err != nil {
		t.Fatal(err)
	}
	m := timeline.NewManager(1, log)
	h := timeline.NewHistory[FlagChange]("flags", m, log)
	return &flagRig{
		flags:   f,
		manager: m,
		history: h,
		track:   timeline.NewTrackSystem[FlagChange](m, h, f),
		rewind:  timeline.NewRewindSystem[FlagChange](m, h, f, timeline.InterpolationNone, log),
	}
}

func (r *flagRig) step(mutate func()) {
	r.manager.Advance(time.Second)
	if mutate != nil {
		mutate()
	}
	r.track.Update(time.Second)
	r.rewind.Update(time.Second)
}

func (r *flagRig) set(v bool) func() {
	return func() { _, _ = r.flags.Set(1, 0, v) }
}

func TestFlags_RewindLandingOnRecordKeepsThatRecord(t *testing.T) {
	r := newFlagRig(t)
	r.step(r.set(true)) // recorded at 1s
	r.step(nil)         // 2s

	r.manager.RequestRewind(timeline.RewindRequest{Target: timeline.LevelTimeFromSeconds(1), HasTarget: true, Speed: 1})
	r.step(nil)
	if r.manager.LevelTime() != timeline.LevelTimeFromSeconds(1) {
		t.Fatalf("level time = %s, want 1s", r.manager.LevelTime())
	}
	if !r.flags.Get(1, 0) {
		t.Fatal("flag recorded at the landing time was undone")
	}

	r.step(nil) // resume at 1s, play to 2s
	if !r.manager.Playing() {
		t.Fatalf("mode = %s, want playing", r.manager.Mode())
	}
	tail, _ := r.history.Latest(r.flags.TrackedID(1))
	if tail.After != r.flags.Bits(1) {
		t.Fatalf("live bits %b disagree with history tail %b", r.flags.Bits(1), tail.After)
	}

	// Clearing and setting again must both be recorded.
	r.step(r.set(false))
	r.step(r.set(true))
	if n := r.history.Len(); n != 3 {
		t.Fatalf("collections = %d, want 3 (1s, 3s, 4s)", n)
	}
	if tail, _ := r.history.Latest(r.flags.TrackedID(1)); tail.After != 1 || tail.Before != 0 {
		t.Fatalf("tail = %+v, want before=0 after=1", tail)
	}
}

func TestFlags_ScrubForwardAfterTurningOnRecord(t *testing.T) {
	r := newFlagRig(t)
	r.step(r.set(true)) // recorded at 1s
	r.step(nil)
	r.step(nil) // 3s

	r.manager.RequestRewind(timeline.RewindRequest{Speed: 1})
	r.step(nil) // 2s
	r.step(nil) // 1s, on the record
	if !r.flags.Get(1, 0) {
		t.Fatal("flag cleared on landing at its own record")
	}

	r.manager.RequestRewind(timeline.RewindRequest{Target: timeline.LevelTimeFromSeconds(2), HasTarget: true, Speed: 1})
	r.step(nil)
	if r.manager.LevelTime() != timeline.LevelTimeFromSeconds(2) || !r.flags.Get(1, 0) {
		t.Fatalf("after forward scrub to %s flag=%v, want set", r.manager.LevelTime(), r.flags.Get(1, 0))
	}

	// Crossing the record backward undoes it; crossing it again redoes it.
	r.manager.RequestRewind(timeline.RewindRequest{Speed: 1})
	r.step(nil) // 1s
	r.step(nil) // 0s
	if r.flags.Get(1, 0) {
		t.Fatal("flag still set before its record")
	}
	r.manager.RequestRewind(timeline.RewindRequest{Target: timeline.LevelTimeFromSeconds(1), HasTarget: true, Speed: 1})
	r.step(nil)
	if !r.flags.Get(1, 0) {
		t.Fatal("flag not redone when scrubbing forward onto its record")
	}
}
