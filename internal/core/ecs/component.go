package ecs

// Removable is implemented by all component stores so the World can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
	Clear()
}

// Store is a generic typed map store for components with change detection.
// Every mutable access stamps the entity with the world's next change
// sequence number; systems remember the sequence they last observed and ask
// for everything stamped after it.
type Store[T any] struct {
	world   *World
	data    map[EntityID]*T
	changed map[EntityID]uint64
}

// NewStore creates a store and registers it with w for destroy cleanup.
func NewStore[T any](w *World) *Store[T] {
	s := &Store[T]{
		world:   w,
		data:    make(map[EntityID]*T, 64),
		changed: make(map[EntityID]uint64, 64),
	}
	w.register(s)
	return s
}

// World returns the world the store is registered with.
func (s *Store[T]) World() *World { return s.world }

// Set inserts or replaces the component. Insertion counts as a change.
func (s *Store[T]) Set(id EntityID, c *T) {
	s.data[id] = c
	s.changed[id] = s.world.nextChange()
}

// Get returns the component for reading. Writes through the returned pointer
// bypass change detection; use Mut for observable mutations.
func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

// Mut returns the component and marks it changed.
func (s *Store[T]) Mut(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	if ok {
		s.changed[id] = s.world.nextChange()
	}
	return c, ok
}

// ChangedAt returns the change sequence of the entity's last mutation.
func (s *Store[T]) ChangedAt(id EntityID) uint64 {
	return s.changed[id]
}

func (s *Store[T]) Remove(id EntityID) {
	delete(s.data, id)
	delete(s.changed, id)
}

func (s *Store[T]) Clear() {
	clear(s.data)
	clear(s.changed)
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}

// EachChangedSince visits components mutated after change sequence since.
func (s *Store[T]) EachChangedSince(since uint64, fn func(EntityID, *T)) {
	for id, seq := range s.changed {
		if seq > since {
			fn(id, s.data[id])
		}
	}
}
