package ecs

// World is the top-level ECS container. It owns the entity pool, every
// registered component store, the change sequence used for change detection,
// and a deferred destruction queue flushed at the end of each tick.
type World struct {
	pool         *EntityPool
	stores       []Removable
	destroyQueue []EntityID
	changeSeq    uint64
	tick         uint64
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		stores:       make([]Removable, 0, 16),
		destroyQueue: make([]EntityID, 0, 16),
	}
}

func (w *World) register(s Removable) {
	w.stores = append(w.stores, s)
}

func (w *World) Pool() *EntityPool { return w.pool }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

func (w *World) nextChange() uint64 {
	w.changeSeq++
	return w.changeSeq
}

// ChangeSeq returns the sequence number of the most recent component change.
// A system that stores it can later ask stores for anything changed since.
func (w *World) ChangeSeq() uint64 { return w.changeSeq }

// Tick returns the number of completed ticks.
func (w *World) Tick() uint64 { return w.tick }

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// EndTick destroys all queued entities, clears their components and counts
// the tick.
func (w *World) EndTick() {
	for _, id := range w.destroyQueue {
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	w.tick++
}

// Clear destroys every entity and component immediately. Change sequence
// numbers keep increasing so observers never see a stale "since".
func (w *World) Clear() {
	for _, s := range w.stores {
		s.Clear()
	}
	w.pool = NewEntityPool()
	w.destroyQueue = w.destroyQueue[:0]
	w.tick = 0
}
