package system

import (
	"time"

	coresys "github.com/timeweave/rewind/internal/core/system"
	"github.com/timeweave/rewind/internal/debugview"
)

// Publisher receives debug snapshots.
type Publisher interface {
	Publish(debugview.Snapshot)
}

// SnapshotSystem publishes a debug snapshot every interval ticks.
// Phase 5 (Output).
type SnapshotSystem struct {
	build    func() debugview.Snapshot
	pub      Publisher
	interval int
	ticks    int
}

func NewSnapshotSystem(build func() debugview.Snapshot, pub Publisher, interval int) *SnapshotSystem {
	if interval < 1 {
		interval = 1
	}
	return &SnapshotSystem{build: build, pub: pub, interval: interval}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *SnapshotSystem) Update(_ time.Duration) {
	s.ticks++
	if s.ticks%s.interval != 0 {
		return
	}
	s.pub.Publish(s.build())
}
