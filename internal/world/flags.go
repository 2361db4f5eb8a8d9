package world

import (
	"fmt"
	"sort"

	"github.com/timeweave/rewind/internal/core/timeline"
)

// MaxFlagsPerLevel bounds the flag set of one level; flags pack into a uint64.
const MaxFlagsPerLevel = 64

// LevelFlags holds the boolean progress flags of every loaded level
// ("lever pulled", "door unlocked"). Each level's flag set is one trackable
// object. Accessed only from the game loop goroutine.
type LevelFlags struct {
	levels map[int]*flagSet
	byID   map[timeline.TrackedID]*flagSet
	seq    uint64
}

type flagSet struct {
	id      timeline.TrackedID
	level   int
	count   int
	bits    uint64
	changed uint64 // sequence of the last observable mutation
	// recorded is the value last handed to the history; it becomes the
	// Before half of the next FlagChange.
	recorded uint64
}

func NewLevelFlags() *LevelFlags {
	return &LevelFlags{
		levels: make(map[int]*flagSet, 4),
		byID:   make(map[timeline.TrackedID]*flagSet, 4),
	}
}

// SetCount declares how many flags level uses and clears them.
func (f *LevelFlags) SetCount(level, count int) error {
	if count < 0 || count > MaxFlagsPerLevel {
		return fmt.Errorf("level %d: flag count %d out of range [0,%d]", level, count, MaxFlagsPerLevel)
	}
	if old, ok := f.levels[level]; ok {
		delete(f.byID, old.id)
	}
	s := &flagSet{id: timeline.NewTrackedID(), level: level, count: count}
	f.levels[level] = s
	f.byID[s.id] = s
	return nil
}

// Count returns the number of flags declared for level.
func (f *LevelFlags) Count(level int) int {
	if s, ok := f.levels[level]; ok {
		return s.count
	}
	return 0
}

// TrackedID returns the id under which level's flags are recorded.
func (f *LevelFlags) TrackedID(level int) timeline.TrackedID {
	if s, ok := f.levels[level]; ok {
		return s.id
	}
	return 0
}

// Get reports a flag. Undeclared levels and flags read as false.
func (f *LevelFlags) Get(level, flag int) bool {
	s, ok := f.levels[level]
	if !ok || flag < 0 || flag >= s.count {
		return false
	}
	return s.bits&(1<<flag) != 0
}

// Bits returns the packed flag set of level.
func (f *LevelFlags) Bits(level int) uint64 {
	if s, ok := f.levels[level]; ok {
		return s.bits
	}
	return 0
}

// Set writes a flag and reports whether it changed.
func (f *LevelFlags) Set(level, flag int, value bool) (bool, error) {
	s, ok := f.levels[level]
	if !ok {
		return false, fmt.Errorf("level %d has no flags", level)
	}
	if flag < 0 || flag >= s.count {
		return false, fmt.Errorf("level %d: flag %d out of range [0,%d)", level, flag, s.count)
	}
	bits := s.bits &^ (1 << flag)
	if value {
		bits |= 1 << flag
	}
	if bits == s.bits {
		return false, nil
	}
	s.bits = bits
	f.seq++
	s.changed = f.seq
	return true, nil
}

// Levels returns the declared level ids in ascending order.
func (f *LevelFlags) Levels() []int {
	out := make([]int, 0, len(f.levels))
	for lvl := range f.levels {
		out = append(out, lvl)
	}
	sort.Ints(out)
	return out
}

// Reset drops every level.
func (f *LevelFlags) Reset() {
	clear(f.levels)
	clear(f.byID)
}

// FlagChange is the recorded transition of one level's flag set.
type FlagChange struct {
	ID     timeline.TrackedID
	Level  int
	Before uint64
	After  uint64
}

func (c FlagChange) TrackedID() timeline.TrackedID { return c.ID }

func (c FlagChange) IsSimilar(o FlagChange) bool { return c.After == o.After }

// CollectChanges implements timeline.Recordable.
func (f *LevelFlags) CollectChanges(since uint64, emit func(FlagChange)) uint64 {
	for _, lvl := range f.Levels() {
		s := f.levels[lvl]
		if s.changed <= since {
			continue
		}
		emit(FlagChange{ID: s.id, Level: s.level, Before: s.recorded, After: s.bits})
		s.recorded = s.bits
	}
	return f.seq
}

// BeginApply implements timeline.Recordable.
func (f *LevelFlags) BeginApply() timeline.Applier[FlagChange] {
	return flagApplier{flags: f}
}

type flagApplier struct {
	flags *LevelFlags
}

// Apply restores the flag set as it was on the side of the command the clock
// moved to: Before when sweeping backward past it, After when sweeping forward.
func (a flagApplier) Apply(cmd timeline.Command[FlagChange], dir timeline.Direction) bool {
	s, ok := a.flags.byID[cmd.ID]
	if !ok {
		return false
	}
	if dir == timeline.Backward {
		s.bits = cmd.Payload.Before
	} else {
		s.bits = cmd.Payload.After
	}
	s.recorded = s.bits
	return true
}
