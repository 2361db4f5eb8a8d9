package event

import "reflect"

// Bus carries events between systems within one tick. Events emitted by an
// earlier phase are readable by every later phase of the same tick; the
// cleanup phase clears the bus.
type Bus struct {
	queues map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		queues: make(map[reflect.Type][]any),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event for the rest of the tick.
func Emit[T any](b *Bus, event T) {
	t := typeKey[T]()
	b.queues[t] = append(b.queues[t], event)
}

// Read returns the events of type T emitted so far this tick, in emit order.
func Read[T any](b *Bus) []T {
	q := b.queues[typeKey[T]()]
	if len(q) == 0 {
		return nil
	}
	out := make([]T, len(q))
	for i, ev := range q {
		out[i] = ev.(T)
	}
	return out
}

// Clear empties every queue. Called once at tick end.
func (b *Bus) Clear() {
	for k := range b.queues {
		b.queues[k] = b.queues[k][:0]
	}
}
