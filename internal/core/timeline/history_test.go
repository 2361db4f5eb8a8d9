package timeline

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type sample struct {
	id TrackedID
	v  int
}

func (s sample) TrackedID() TrackedID    { return s.id }
func (s sample) IsSimilar(o sample) bool { return s.v == o.v }

func newTestHistory(t *testing.T) (*Manager, *History[sample]) {
	t.Helper()
	log := zaptest.NewLogger(t)
	m := NewManager(1, log)
	return m, NewHistory[sample]("sample", m, log)
}

func sec(f float64) LevelTime { return LevelTimeFromSeconds(f) }

func TestHistory_AddCommandKeepsTimestampsIncreasing(t *testing.T) {
	m, h := newTestHistory(t)
	for i := 0; i < 10; i++ {
		h.AddCommand(sample{id: 1, v: i})
		h.AddCommand(sample{id: 2, v: i % 3})
		m.Advance(100 * time.Millisecond)
	}

	cols := h.Collections()
	if len(cols) != 10 {
		t.Fatalf("collections = %d, want 10", len(cols))
	}
	for i := 1; i < len(cols); i++ {
		if cols[i].Time <= cols[i-1].Time {
			t.Fatalf("collection %d at %s not after %s", i, cols[i].Time, cols[i-1].Time)
		}
	}
	if h.CommandCount() != 20 {
		t.Fatalf("commands = %d, want 20", h.CommandCount())
	}
}

func TestHistory_SimilarCommandIsDropped(t *testing.T) {
	m, h := newTestHistory(t)
	h.AddCommand(sample{id: 7, v: 1})
	h.AddCommand(sample{id: 7, v: 1})
	if h.CommandCount() != 1 {
		t.Fatalf("commands after same-tick duplicate = %d, want 1", h.CommandCount())
	}

	m.Advance(time.Second)
	h.AddCommand(sample{id: 7, v: 1})
	if h.Len() != 1 || h.CommandCount() != 1 {
		t.Fatalf("similar payload on later tick recorded: collections=%d commands=%d", h.Len(), h.CommandCount())
	}

	// Similarity is per id.
	h.AddCommand(sample{id: 8, v: 1})
	if h.CommandCount() != 2 {
		t.Fatalf("commands = %d, want 2", h.CommandCount())
	}
}

func TestHistory_SameTickLastWriteWins(t *testing.T) {
	_, h := newTestHistory(t)
	h.AddCommand(sample{id: 7, v: 1})
	h.AddCommand(sample{id: 7, v: 2})
	h.AddCommand(sample{id: 9, v: 5})

	cols := h.Collections()
	if len(cols) != 1 {
		t.Fatalf("collections = %d, want 1", len(cols))
	}
	if len(cols[0].Commands) != 2 {
		t.Fatalf("commands in collection = %d, want 2", len(cols[0].Commands))
	}
	cmd, ok := cols[0].Find(7)
	if !ok || cmd.Payload.v != 2 {
		t.Fatalf("id 7 payload = %+v (found=%v), want v=2", cmd.Payload, ok)
	}
	if got, _ := h.Latest(7); got.v != 2 {
		t.Fatalf("latest = %d, want 2", got.v)
	}
}

func TestHistory_RewindReturnsCollectionsNewestFirst(t *testing.T) {
	m, h := newTestHistory(t)
	m.Advance(time.Second)
	h.AddCommand(sample{id: 7, v: 1})
	m.Advance(time.Second)
	h.AddCommand(sample{id: 7, v: 2})

	m.RequestRewind(RewindRequest{Target: LevelEpoch, HasTarget: true, Speed: 1})

	m.Advance(500 * time.Millisecond) // 1.5s
	b := h.TakeCommandsToApply(InterpolationNone)
	if b.Direction != Backward {
		t.Fatalf("direction = %s, want backward", b.Direction)
	}
	if len(b.Collections) != 1 || b.Collections[0].Time != sec(2) {
		t.Fatalf("first batch = %+v, want the 2.0s collection", b.Collections)
	}
	if b.Collections[0].Commands[0].Payload.v != 2 {
		t.Fatalf("first batch payload = %d, want 2", b.Collections[0].Commands[0].Payload.v)
	}

	m.Advance(500 * time.Millisecond) // 1.0s
	b = h.TakeCommandsToApply(InterpolationNone)
	if len(b.Collections) != 0 {
		t.Fatalf("second batch crossed %+v, want nothing crossed", b.Collections)
	}
	if b.Landing == nil || b.Landing.Time != sec(1) || b.Landing.Commands[0].Payload.v != 1 {
		t.Fatalf("second batch landing = %+v, want the 1.0s collection", b.Landing)
	}

	m.Advance(500 * time.Millisecond) // 0.5s
	b = h.TakeCommandsToApply(InterpolationNone)
	if len(b.Collections) != 1 || b.Collections[0].Time != sec(1) || b.Landing != nil {
		t.Fatalf("third batch = %+v, want the 1.0s collection crossed", b)
	}

	m.Advance(500 * time.Millisecond) // 0s
	if b := h.TakeCommandsToApply(InterpolationNone); !b.Empty() {
		t.Fatalf("batch at %s = %+v, want empty", m.LevelTime(), b)
	}
	if m.LevelTime() != LevelEpoch {
		t.Fatalf("level time = %s, want epoch", m.LevelTime())
	}
	if !m.PendingResume() {
		t.Fatal("reaching the target should schedule a resume")
	}
}

func TestHistory_NoCollectionReturnedTwice(t *testing.T) {
	m, h := newTestHistory(t)
	for i := 0; i < 5; i++ {
		h.AddCommand(sample{id: 1, v: i})
		m.Advance(time.Second)
	}
	m.RequestRewind(RewindRequest{Speed: 1})

	// Every step lands on or between recorded times. Each collection is
	// landed on once and crossed at most once; the epoch one is never crossed.
	crossed := make(map[LevelTime]int)
	landed := make(map[LevelTime]int)
	for i := 0; i < 40; i++ {
		m.Advance(250 * time.Millisecond)
		b := h.TakeCommandsToApply(InterpolationNone)
		for _, c := range b.Collections {
			crossed[c.Time]++
		}
		if b.Landing != nil {
			landed[b.Landing.Time]++
		}
	}
	if len(crossed) != 4 || len(landed) != 5 {
		t.Fatalf("distinct collections crossed=%d landed=%d, want 4 and 5", len(crossed), len(landed))
	}
	if _, ok := crossed[LevelEpoch]; ok {
		t.Fatal("epoch collection crossed")
	}
	for at, n := range crossed {
		if n != 1 || landed[at] != 1 {
			t.Fatalf("collection %s crossed %d times, landed %d times", at, n, landed[at])
		}
	}
	if !m.Rewinding() || m.LevelTime() != LevelEpoch {
		t.Fatalf("untargeted rewind should hold at epoch: mode=%s time=%s", m.Mode(), m.LevelTime())
	}
}

func TestHistory_ScrubForwardAfterRewind(t *testing.T) {
	m, h := newTestHistory(t)
	for i := 0; i < 4; i++ {
		h.AddCommand(sample{id: 1, v: i})
		m.Advance(time.Second)
	}
	// Recorded 0s..3s, now at 4s.
	m.RequestRewind(RewindRequest{Target: sec(1), HasTarget: true, Speed: 3})
	m.Advance(time.Second) // 1s
	b := h.TakeCommandsToApply(InterpolationNone)
	if len(b.Collections) != 2 || b.Collections[0].Time != sec(3) || b.Collections[1].Time != sec(2) {
		t.Fatalf("backward batch = %+v, want 3s then 2s", b.Collections)
	}
	if b.Landing == nil || b.Landing.Time != sec(1) {
		t.Fatalf("landing = %+v, want the 1s collection", b.Landing)
	}

	m.RequestRewind(RewindRequest{Target: sec(3), HasTarget: true, Speed: 2})
	m.Advance(time.Second) // 3s
	b = h.TakeCommandsToApply(InterpolationNone)
	if b.Direction != Forward {
		t.Fatalf("direction = %s, want forward", b.Direction)
	}
	if len(b.Collections) != 2 || b.Collections[0].Time != sec(2) || b.Collections[1].Time != sec(3) {
		t.Fatalf("forward batch = %+v, want 2s then 3s", b.Collections)
	}
}

func TestHistory_TruncateOnRewrite(t *testing.T) {
	m, h := newTestHistory(t)
	for i := 1; i <= 5; i++ {
		m.Advance(time.Second)
		h.AddCommand(sample{id: 1, v: i * 10})
	}
	// S1 (v=50) recorded at 5s.
	m.RequestRewind(RewindRequest{Target: sec(2), HasTarget: true, Speed: 1})
	for m.LevelTime() != sec(2) {
		m.Advance(time.Second)
		h.TakeCommandsToApply(InterpolationNone)
	}
	m.Advance(time.Second) // resume at 2s, play to 3s
	if !m.Playing() {
		t.Fatalf("mode = %s, want playing", m.Mode())
	}
	if h.Len() != 2 {
		t.Fatalf("collections after resume = %d, want 2", h.Len())
	}

	h.AddCommand(sample{id: 1, v: 31})
	m.Advance(time.Second)
	h.AddCommand(sample{id: 1, v: 41})
	m.Advance(time.Second)
	h.AddCommand(sample{id: 1, v: 99}) // S2 at 5s

	cols := h.Collections()
	if len(cols) != 5 {
		t.Fatalf("collections = %d, want 5", len(cols))
	}
	last := cols[len(cols)-1]
	if last.Time != sec(5) || len(last.Commands) != 1 || last.Commands[0].Payload.v != 99 {
		t.Fatalf("5s collection = %+v, want only v=99", last)
	}
	for _, c := range cols {
		for _, cmd := range c.Commands {
			if cmd.Payload.v == 50 {
				t.Fatalf("discarded future survived at %s", c.Time)
			}
		}
	}
}

func TestHistory_ResumeRestoresDedupBaseline(t *testing.T) {
	m, h := newTestHistory(t)
	h.AddCommand(sample{id: 1, v: 1})
	m.Advance(time.Second)
	h.AddCommand(sample{id: 1, v: 2})

	m.RequestRewind(RewindRequest{Target: LevelEpoch, HasTarget: true, Speed: 1})
	m.Advance(time.Second)
	m.Advance(time.Second) // resume at 0, play to 1s

	// v=2 was discarded with the truncated future, so it is new again.
	h.AddCommand(sample{id: 1, v: 2})
	if h.Len() != 2 {
		t.Fatalf("collections = %d, want 2", h.Len())
	}
	if got, _ := h.Latest(1); got.v != 2 {
		t.Fatalf("latest = %d, want 2", got.v)
	}
}

func TestHistory_LinearBlend(t *testing.T) {
	m, h := newTestHistory(t)
	for i := 0; i < 3; i++ {
		h.AddCommand(sample{id: 1, v: i * 10})
		if i < 2 {
			m.Advance(time.Second)
		}
	}
	m.RequestRewind(RewindRequest{Target: LevelEpoch, HasTarget: true, Speed: 1})
	m.Advance(250 * time.Millisecond) // 1.75s

	b := h.TakeCommandsToApply(InterpolationLinear)
	if b.Blend == nil {
		t.Fatal("expected a blend between 2s and 1s")
	}
	if b.Blend.From.Time != sec(2) || b.Blend.To.Time != sec(1) {
		t.Fatalf("blend from %s to %s, want 2s to 1s", b.Blend.From.Time, b.Blend.To.Time)
	}
	if b.Blend.Factor != 0.25 {
		t.Fatalf("factor = %v, want 0.25", b.Blend.Factor)
	}

	m.Advance(250 * time.Millisecond) // 1.5s
	if b := h.TakeCommandsToApply(InterpolationNone); b.Blend != nil {
		t.Fatal("discrete replay should not blend")
	}
}

func TestHistory_EmptyHistoryYieldsEmptyBatch(t *testing.T) {
	m, h := newTestHistory(t)
	m.Advance(time.Second)
	m.RequestRewind(RewindRequest{Speed: 1})
	for i := 0; i < 3; i++ {
		m.Advance(500 * time.Millisecond)
		if b := h.TakeCommandsToApply(InterpolationLinear); !b.Empty() {
			t.Fatalf("batch = %+v, want empty", b)
		}
	}
}

func TestHistory_StationaryQueryIsEmpty(t *testing.T) {
	m, h := newTestHistory(t)
	h.AddCommand(sample{id: 1, v: 1})
	m.Advance(time.Second)
	h.AddCommand(sample{id: 1, v: 2})
	m.RequestRewind(RewindRequest{Target: sec(1), HasTarget: true})
	m.Advance(time.Second)

	h.TakeCommandsToApply(InterpolationNone)
	if b := h.TakeCommandsToApply(InterpolationNone); len(b.Collections) != 0 || b.Direction != Stationary {
		t.Fatalf("repeat query at same time = %+v, want empty", b)
	}
}

func TestHistory_AddCommandWhileRewindingIsIgnored(t *testing.T) {
	m, h := newTestHistory(t)
	h.AddCommand(sample{id: 1, v: 1})
	m.Advance(time.Second)
	m.RequestRewind(RewindRequest{Speed: 1})
	m.Advance(100 * time.Millisecond)

	h.AddCommand(sample{id: 1, v: 2})
	if h.CommandCount() != 1 {
		t.Fatalf("commands = %d, want 1", h.CommandCount())
	}
	if !h.Rewinding() {
		t.Fatal("history should report rewinding")
	}
}

func TestHistory_ClampsOutOfOrderCommand(t *testing.T) {
	if strictOrdering {
		t.Skip("ordering violations panic in debug builds")
	}
	_, h := newTestHistory(t)
	h.cols = append(h.cols, Collection[sample]{Time: sec(5)})

	h.AddCommand(sample{id: 3, v: 1})
	cols := h.Collections()
	if len(cols) != 1 {
		t.Fatalf("collections = %d, want 1", len(cols))
	}
	if len(cols[0].Commands) != 1 || cols[0].Commands[0].Time != sec(5) {
		t.Fatalf("command not clamped into tail: %+v", cols[0])
	}
}

func TestHistory_Reset(t *testing.T) {
	m, h := newTestHistory(t)
	h.AddCommand(sample{id: 1, v: 1})
	m.Advance(time.Second)
	h.AddCommand(sample{id: 1, v: 2})

	h.Reset()
	if h.Len() != 0 || h.CommandCount() != 0 {
		t.Fatalf("after reset: collections=%d commands=%d", h.Len(), h.CommandCount())
	}
	if _, ok := h.Latest(1); ok {
		t.Fatal("latest survived reset")
	}
	h.AddCommand(sample{id: 1, v: 2})
	if h.CommandCount() != 1 {
		t.Fatal("payload equal to a pre-reset one should be recorded")
	}
}
