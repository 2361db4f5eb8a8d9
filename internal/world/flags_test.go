package world

import (
	"testing"

	"github.com/timeweave/rewind/internal/core/timeline"
)

func TestLevelFlags_SetAndGet(t *testing.T) {
	f := NewLevelFlags()
	if err := f.SetCount(1, 65); err == nil {
		t.Fatal("expected error for more than 64 flags")
	}
	if err := f.SetCount(1, 3); err != nil {
		t.Fatalf("SetCount: %v", err)
	}

	changed, err := f.Set(1, 2, true)
	if err != nil || !changed {
		t.Fatalf("Set = %v, %v", changed, err)
	}
	if changed, _ := f.Set(1, 2, true); changed {
		t.Fatal("setting an already-set flag reported a change")
	}
	if !f.Get(1, 2) || f.Get(1, 0) || f.Bits(1) != 0b100 {
		t.Fatalf("bits = %b", f.Bits(1))
	}
	if _, err := f.Set(1, 3, true); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if _, err := f.Set(9, 0, true); err == nil {
		t.Fatal("expected error for undeclared level")
	}
	if f.Get(9, 0) || f.Count(9) != 0 || !f.TrackedID(9).IsZero() {
		t.Fatal("undeclared level should read empty")
	}
}

func TestLevelFlags_CollectChanges(t *testing.T) {
	f := NewLevelFlags()
	_ = f.SetCount(1, 4)
	_ = f.SetCount(2, 4)

	var got []FlagChange
	emit := func(c FlagChange) { got = append(got, c) }

	since := f.CollectChanges(0, emit)
	if len(got) != 0 {
		t.Fatalf("fresh flags emitted %+v", got)
	}

	_, _ = f.Set(2, 0, true)
	_, _ = f.Set(2, 3, true)
	since = f.CollectChanges(since, emit)
	if len(got) != 1 {
		t.Fatalf("changes = %+v, want one for level 2", got)
	}
	if c := got[0]; c.Level != 2 || c.Before != 0 || c.After != 0b1001 || c.ID != f.TrackedID(2) {
		t.Fatalf("change = %+v", c)
	}

	_, _ = f.Set(2, 0, false)
	f.CollectChanges(since, emit)
	if c := got[1]; c.Before != 0b1001 || c.After != 0b1000 {
		t.Fatalf("second change = %+v, want before=1001 after=1000", c)
	}
}

func TestLevelFlags_ApplyByDirection(t *testing.T) {
	f := NewLevelFlags()
	_ = f.SetCount(1, 2)
	id := f.TrackedID(1)
	cmd := timeline.Command[FlagChange]{ID: id, Payload: FlagChange{ID: id, Level: 1, Before: 0b01, After: 0b11}}

	ap := f.BeginApply()
	if !ap.Apply(cmd, timeline.Backward) || f.Bits(1) != 0b01 {
		t.Fatalf("backward apply left bits %b, want 01", f.Bits(1))
	}
	if !ap.Apply(cmd, timeline.Forward) || f.Bits(1) != 0b11 {
		t.Fatalf("forward apply left bits %b, want 11", f.Bits(1))
	}

	// A restore is not a new change.
	var got []FlagChange
	f.CollectChanges(f.CollectChanges(0, func(FlagChange) {}), func(c FlagChange) { got = append(got, c) })
	if len(got) != 0 {
		t.Fatalf("restore observed as change: %+v", got)
	}

	missing := timeline.Command[FlagChange]{ID: timeline.NewTrackedID()}
	if ap.Apply(missing, timeline.Backward) {
		t.Fatal("apply to unknown id reported success")
	}
}

func TestLevelFlags_Reset(t *testing.T) {
	f := NewLevelFlags()
	_ = f.SetCount(1, 2)
	old := f.TrackedID(1)
	f.Reset()
	if len(f.Levels()) != 0 {
		t.Fatal("levels survived reset")
	}
	_ = f.SetCount(1, 2)
	if f.TrackedID(1) == old {
		t.Fatal("redeclared level reused its tracked id")
	}
}

func TestFlagChange_IsSimilar(t *testing.T) {
	a := FlagChange{Before: 0, After: 1}
	if !a.IsSimilar(FlagChange{Before: 3, After: 1}) {
		t.Fatal("changes ending in the same bits should be similar")
	}
	if a.IsSimilar(FlagChange{After: 2}) {
		t.Fatal("different bits reported similar")
	}
}
