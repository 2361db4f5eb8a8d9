package timeline

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// History is the command log of one payload type. It owns every command
// recorded for every entity of that type, grouped into collections of
// strictly increasing time.
//
// A History is bound to the Manager whose clock stamps new commands; the
// manager notifies it when a rewind starts and when play resumes.
// Single-goroutine access only (game loop).
type History[T Change[T]] struct {
	name  string
	clock *Manager
	log   *zap.Logger

	cols     []Collection[T]
	commands int

	// latest is the most recently recorded payload per id, used for dedup.
	latest map[TrackedID]T
	// tailIndex maps id -> position inside the tail collection.
	tailIndex map[TrackedID]int

	rewinding bool
	// passed counts the collections at or before lastQuery: cols[:passed]
	// lie at or before it, cols[passed:] strictly after.
	passed    int
	lastQuery LevelTime
	dir       Direction
}

// NewHistory creates a history stamped by m's clock and registers it for
// rewind notifications.
func NewHistory[T Change[T]](name string, m *Manager, log *zap.Logger) *History[T] {
	h := &History[T]{
		name:      name,
		clock:     m,
		log:       log.With(zap.String("history", name)),
		cols:      make([]Collection[T], 0, 256),
		latest:    make(map[TrackedID]T, 64),
		tailIndex: make(map[TrackedID]int, 16),
	}
	m.register(h)
	return h
}

func (h *History[T]) Name() string      { return h.name }
func (h *History[T]) Len() int          { return len(h.cols) }
func (h *History[T]) CommandCount() int { return h.commands }
func (h *History[T]) Rewinding() bool   { return h.rewinding }

// Latest returns the most recently recorded payload for id.
func (h *History[T]) Latest(id TrackedID) (T, bool) {
	p, ok := h.latest[id]
	return p, ok
}

// Collections returns a copy of the log, oldest first.
func (h *History[T]) Collections() []Collection[T] {
	out := make([]Collection[T], len(h.cols))
	for i, c := range h.cols {
		out[i] = Collection[T]{
			Time:     c.Time,
			Commands: append([]Command[T](nil), c.Commands...),
		}
	}
	return out
}

// AddCommand records payload at the manager's current time. A payload similar
// to the latest one recorded for the same id is dropped. Two changes to the
// same id within one tick keep only the last.
func (h *History[T]) AddCommand(payload T) {
	if h.rewinding {
		h.log.Debug("ignoring command recorded during rewind")
		return
	}
	now := h.clock.LevelTime()
	id := payload.TrackedID()
	if prev, ok := h.latest[id]; ok && payload.IsSimilar(prev) {
		return
	}

	n := len(h.cols)
	switch {
	case n == 0 || h.cols[n-1].Time < now:
		h.cols = append(h.cols, Collection[T]{Time: now})
		clear(h.tailIndex)
	case h.cols[n-1].Time > now:
		h.orderingViolation(now, h.cols[n-1].Time)
	}

	tail := &h.cols[len(h.cols)-1]
	cmd := Command[T]{ID: id, Payload: payload, Time: tail.Time}
	if i, ok := h.tailIndex[id]; ok {
		tail.Commands[i] = cmd
	} else {
		h.tailIndex[id] = len(tail.Commands)
		tail.Commands = append(tail.Commands, cmd)
		h.commands++
	}
	h.latest[id] = payload
	h.passed = len(h.cols)
	h.lastQuery = now
}

func (h *History[T]) orderingViolation(now, tail LevelTime) {
	if strictOrdering {
		panic(fmt.Sprintf("timeline: %s: command at %s precedes tail collection at %s", h.name, now, tail))
	}
	h.log.Warn("command precedes history tail, clamping",
		zap.Stringer("now", now),
		zap.Stringer("tail", tail),
	)
}

// TakeCommandsToApply returns the collections the clock moved across since the
// previous query, in the order they must be applied, and advances the cursor
// past them. Moving forward that is (last, now]; moving backward it is
// (now, last], plus the collection recorded exactly at now as Landing. With
// InterpolationLinear the batch also carries the blend between the samples
// surrounding the current time.
func (h *History[T]) TakeCommandsToApply(interp Interpolation) Batch[T] {
	now := h.clock.LevelTime()
	var batch Batch[T]

	switch {
	case now > h.lastQuery:
		h.dir = Forward
		for h.passed < len(h.cols) && h.cols[h.passed].Time <= now {
			batch.Collections = append(batch.Collections, h.cols[h.passed])
			h.passed++
		}
	case now < h.lastQuery:
		h.dir = Backward
		for h.passed > 0 && h.cols[h.passed-1].Time > now {
			h.passed--
			batch.Collections = append(batch.Collections, h.cols[h.passed])
		}
		// A collection recorded exactly at now is part of the state at now.
		// It stays passed; only a later backward step crosses it.
		if h.passed > 0 && h.cols[h.passed-1].Time == now {
			landing := h.cols[h.passed-1]
			batch.Landing = &landing
		}
	}
	h.lastQuery = now
	if len(batch.Collections) > 0 || batch.Landing != nil {
		batch.Direction = h.dir
	}

	if interp == InterpolationLinear {
		batch.Blend = h.blendAt(now)
	}
	return batch
}

func (h *History[T]) blendAt(now LevelTime) *Blend[T] {
	if h.passed == 0 || h.passed == len(h.cols) {
		return nil
	}
	before, after := h.cols[h.passed-1], h.cols[h.passed]
	from, to := before, after
	if h.dir == Backward {
		from, to = after, before
	}
	return &Blend[T]{
		From:   from,
		To:     to,
		Factor: now.Progress(from.Time, to.Time),
	}
}

// Reset drops the whole log.
func (h *History[T]) Reset() {
	clear(h.cols)
	h.cols = h.cols[:0]
	h.commands = 0
	clear(h.latest)
	clear(h.tailIndex)
	h.rewinding = false
	h.passed = 0
	h.lastQuery = LevelEpoch
	h.dir = Stationary
}

func (h *History[T]) beginRewind(now LevelTime) {
	h.rewinding = true
	h.passed = sort.Search(len(h.cols), func(i int) bool { return h.cols[i].Time > now })
	h.lastQuery = now
	h.dir = Stationary
}

// endRewind discards everything recorded after at: that future no longer
// happens once play resumes from at.
func (h *History[T]) endRewind(at LevelTime) {
	h.rewinding = false
	keep := sort.Search(len(h.cols), func(i int) bool { return h.cols[i].Time > at })
	if keep < len(h.cols) {
		dropped := len(h.cols) - keep
		clear(h.cols[keep:])
		h.cols = h.cols[:keep]
		h.rebuildIndexes()
		h.log.Debug("truncated rewound future",
			zap.Int("collections", dropped),
			zap.Stringer("at", at),
		)
	}
	h.passed = len(h.cols)
	h.lastQuery = at
	h.dir = Stationary
}

func (h *History[T]) rebuildIndexes() {
	clear(h.latest)
	clear(h.tailIndex)
	h.commands = 0
	for i := len(h.cols) - 1; i >= 0; i-- {
		for _, cmd := range h.cols[i].Commands {
			h.commands++
			if _, ok := h.latest[cmd.ID]; !ok {
				h.latest[cmd.ID] = cmd.Payload
			}
		}
	}
	if n := len(h.cols); n > 0 {
		for i, cmd := range h.cols[n-1].Commands {
			h.tailIndex[cmd.ID] = i
		}
	}
}

func (h *History[T]) stats() HistoryStats {
	s := HistoryStats{
		Name:        h.name,
		Collections: len(h.cols),
		Commands:    h.commands,
		Rewinding:   h.rewinding,
	}
	if n := len(h.cols); n > 0 {
		s.Oldest = h.cols[0].Time
		s.Newest = h.cols[n-1].Time
	}
	return s
}

// HistoryStats summarises one history for diagnostics.
type HistoryStats struct {
	Name        string
	Collections int
	Commands    int
	Oldest      LevelTime
	Newest      LevelTime
	Rewinding   bool
}
