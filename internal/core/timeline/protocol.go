package timeline

import (
	"time"

	"github.com/timeweave/rewind/internal/core/ecs"
	coresys "github.com/timeweave/rewind/internal/core/system"
	"go.uber.org/zap"
)

// Recordable is the live-world side of one payload type: where changes are
// observed during forward play and where recorded commands are written back
// during a rewind.
type Recordable[T Change[T]] interface {
	// CollectChanges emits a payload for every tracked object mutated after
	// change sequence since and returns the sequence to pass on the next call.
	CollectChanges(since uint64, emit func(T)) uint64
	// BeginApply builds the id lookup used for one rewind tick.
	BeginApply() Applier[T]
}

// Applier writes recorded commands onto live objects. Apply reports false
// when no live object carries the command's id.
type Applier[T any] interface {
	Apply(cmd Command[T], dir Direction) bool
}

// Blender is implemented by appliers that support linear interpolation.
type Blender[T any] interface {
	Blend(b *Blend[T])
}

// TrackSystem records changed state into a history while the level plays.
type TrackSystem[T Change[T]] struct {
	manager *Manager
	history *History[T]
	source  Recordable[T]
	since   uint64
}

func NewTrackSystem[T Change[T]](m *Manager, h *History[T], src Recordable[T]) *TrackSystem[T] {
	return &TrackSystem[T]{manager: m, history: h, source: src}
}

func (s *TrackSystem[T]) Phase() coresys.Phase { return coresys.PhaseHistory }

func (s *TrackSystem[T]) Update(_ time.Duration) {
	if !s.manager.Playing() {
		return
	}
	s.since = s.source.CollectChanges(s.since, s.history.AddCommand)
}

// RewindSystem replays recorded commands onto the live world while the level
// rewinds. Commands for ids missing from the live world are skipped.
type RewindSystem[T Change[T]] struct {
	manager *Manager
	history *History[T]
	target  Recordable[T]
	interp  Interpolation
	log     *zap.Logger

	applied uint64
	skipped uint64
}

func NewRewindSystem[T Change[T]](m *Manager, h *History[T], dst Recordable[T], interp Interpolation, log *zap.Logger) *RewindSystem[T] {
	return &RewindSystem[T]{
		manager: m,
		history: h,
		target:  dst,
		interp:  interp,
		log:     log.With(zap.String("history", h.Name())),
	}
}

func (s *RewindSystem[T]) Phase() coresys.Phase { return coresys.PhaseHistory }

// Applied and Skipped count commands over the system's lifetime.
func (s *RewindSystem[T]) Applied() uint64 { return s.applied }
func (s *RewindSystem[T]) Skipped() uint64 { return s.skipped }

func (s *RewindSystem[T]) Update(_ time.Duration) {
	if !s.manager.Rewinding() {
		return
	}
	batch := s.history.TakeCommandsToApply(s.interp)
	if batch.Empty() {
		return
	}

	ap := s.target.BeginApply()
	var skipped int
	apply := func(col Collection[T], dir Direction) {
		for _, cmd := range col.Commands {
			if ap.Apply(cmd, dir) {
				s.applied++
				continue
			}
			skipped++
		}
	}
	for _, col := range batch.Collections {
		apply(col, batch.Direction)
	}
	if batch.Landing != nil {
		apply(*batch.Landing, Forward)
	}
	if batch.Blend != nil {
		if b, ok := ap.(Blender[T]); ok {
			b.Blend(batch.Blend)
		}
	}

	if skipped > 0 {
		s.skipped += uint64(skipped)
		s.log.Debug("skipped commands for missing entities",
			zap.Int("count", skipped),
			zap.Stringer("at", s.manager.LevelTime()),
		)
	}
}

// ComponentBinding adapts an ecs.Store of component C to the record/rewind
// protocol for payload T.
type ComponentBinding[C any, T Change[T]] struct {
	Store *ecs.Store[C]
	// ID returns the tracked id carried by the component.
	ID func(*C) TrackedID
	// Snapshot captures the recordable part of the component.
	Snapshot func(*C) T
	// Restore writes a recorded payload back onto the component.
	Restore func(*C, T)
	// Interpolate blends two payloads onto the component. Optional.
	Interpolate func(c *C, from, to T, f float32)
}

func (b *ComponentBinding[C, T]) CollectChanges(since uint64, emit func(T)) uint64 {
	b.Store.EachChangedSince(since, func(_ ecs.EntityID, c *C) {
		if b.ID(c).IsZero() {
			return
		}
		emit(b.Snapshot(c))
	})
	return b.Store.World().ChangeSeq()
}

func (b *ComponentBinding[C, T]) BeginApply() Applier[T] {
	index := make(map[TrackedID]*C, b.Store.Len())
	b.Store.Each(func(_ ecs.EntityID, c *C) {
		if id := b.ID(c); !id.IsZero() {
			index[id] = c
		}
	})
	return &componentApplier[C, T]{binding: b, index: index}
}

type componentApplier[C any, T Change[T]] struct {
	binding *ComponentBinding[C, T]
	index   map[TrackedID]*C
}

// Apply writes through the raw component pointer so the restore is not
// observed as a change by the track system.
func (a *componentApplier[C, T]) Apply(cmd Command[T], _ Direction) bool {
	c, ok := a.index[cmd.ID]
	if !ok {
		return false
	}
	a.binding.Restore(c, cmd.Payload)
	return true
}

func (a *componentApplier[C, T]) Blend(b *Blend[T]) {
	if a.binding.Interpolate == nil {
		return
	}
	to := make(map[TrackedID]T, len(b.To.Commands))
	for _, cmd := range b.To.Commands {
		to[cmd.ID] = cmd.Payload
	}
	for _, cmd := range b.From.Commands {
		next, ok := to[cmd.ID]
		if !ok {
			continue
		}
		if c, ok := a.index[cmd.ID]; ok {
			a.binding.Interpolate(c, cmd.Payload, next, b.Factor)
		}
	}
}
