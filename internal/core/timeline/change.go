package timeline

// Change is the contract every recordable payload satisfies. T is the payload
// type itself, so IsSimilar compares two values of the same kind without any
// type assertion.
type Change[T any] interface {
	TrackedID() TrackedID
	// IsSimilar reports whether other is indistinguishable from the receiver
	// for replay purposes. Similar consecutive payloads are recorded once.
	IsSimilar(other T) bool
}

// Command is one recorded fact about one entity. Immutable once recorded.
type Command[T any] struct {
	ID      TrackedID
	Payload T
	Time    LevelTime
}

// Collection groups every command recorded at the same level time. Replay
// applies a collection whole or not at all.
type Collection[T any] struct {
	Time     LevelTime
	Commands []Command[T]
}

// Find returns the command for id, if the collection holds one.
func (c *Collection[T]) Find(id TrackedID) (Command[T], bool) {
	for _, cmd := range c.Commands {
		if cmd.ID == id {
			return cmd, true
		}
	}
	return Command[T]{}, false
}

// Interpolation selects what TakeCommandsToApply computes besides the due
// collections.
type Interpolation int

const (
	// InterpolationNone is discrete snapshot replay.
	InterpolationNone Interpolation = iota
	// InterpolationLinear also reports the blend between the two samples
	// surrounding the current time.
	InterpolationLinear
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationNone:
		return "none"
	case InterpolationLinear:
		return "linear"
	}
	return "unknown"
}

// Direction is the way the clock moved across a batch of collections.
type Direction int

const (
	Stationary Direction = 0
	Forward    Direction = 1
	Backward   Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return "stationary"
}

// Blend describes where the current time sits between the nearest collection
// already passed (From) and the next one not yet due (To). Factor is 0 at From
// and 1 at To.
type Blend[T any] struct {
	From   Collection[T]
	To     Collection[T]
	Factor float32
}

// Batch is the result of one rewind query. Collections are in application
// order: chronological when moving forward, reverse-chronological when moving
// backward. Landing is set when a backward sweep stops exactly on a recorded
// collection; it holds the state at the current time and is applied after
// Collections as if reached going forward. Blend is nil unless linear
// interpolation was requested and the current time lies between two recorded
// collections.
type Batch[T any] struct {
	Direction   Direction
	Collections []Collection[T]
	Landing     *Collection[T]
	Blend       *Blend[T]
}

func (b Batch[T]) Empty() bool {
	return len(b.Collections) == 0 && b.Landing == nil && b.Blend == nil
}
