package timeline

import (
	"strconv"
	"sync/atomic"
)

// TrackedID identifies a trackable entity across its whole recorded history.
// Unlike ecs.EntityID it is never recycled: the scheduler may reuse an entity
// slot after destruction, but a TrackedID handed out once is never handed out
// again within the process. Zero is never allocated.
type TrackedID uint64

var lastTrackedID atomic.Uint64

// NewTrackedID allocates the next process-unique id.
func NewTrackedID() TrackedID {
	return TrackedID(lastTrackedID.Add(1))
}

func (id TrackedID) IsZero() bool { return id == 0 }

func (id TrackedID) String() string {
	return "tt#" + strconv.FormatUint(uint64(id), 10)
}
