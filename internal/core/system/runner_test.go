package system

import (
	"testing"
	"time"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunner_PhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"door", PhaseReaction, &log})
	r.Register(recorder{"track", PhaseHistory, &log})
	r.Register(recorder{"rewind", PhaseHistory, &log})
	r.Register(recorder{"flags", PhaseFlags, &log})
	r.Register(recorder{"sensor", PhaseTrigger, &log})
	r.Register(recorder{"clock", PhaseClock, &log})

	r.Tick(time.Millisecond)
	want := []string{"clock", "sensor", "flags", "track", "rewind", "door", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("ran %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("ran %v, want %v", log, want)
		}
	}
}

func TestRunner_TickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"clock", PhaseClock, &log})
	r.Register(recorder{"track", PhaseHistory, &log})

	r.TickPhase(PhaseHistory, 0)
	if len(log) != 1 || log[0] != "track" {
		t.Fatalf("ran %v, want [track]", log)
	}
	if r.Len() != 2 || r.Count(PhaseHistory) != 1 || r.Count(PhaseOutput) != 0 {
		t.Fatalf("len = %d history = %d output = %d", r.Len(), r.Count(PhaseHistory), r.Count(PhaseOutput))
	}

	r.TickPhase(Phase(42), 0)
	if len(log) != 1 {
		t.Fatalf("unknown phase ran %v", log)
	}
}

func TestRunner_RegisterRejectsUnknownPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown phase")
		}
		if r.Len() != 0 || r.Count(Phase(-1)) != 0 {
			t.Fatalf("rejected system was kept: len = %d", r.Len())
		}
	}()
	r.Register(recorder{"bogus", Phase(-1), &log})
}
