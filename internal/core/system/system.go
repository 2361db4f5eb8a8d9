package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseClock    Phase = iota // 0: advance the level clock, apply mode transitions
	PhaseTrigger               // 1: scripts, sensor overlap detection
	PhaseFlags                 // 2: flag mutation from trigger events
	PhaseHistory               // 3: record (playing) or rewind (rewinding)
	PhaseReaction              // 4: systems that respond to flags and time
	PhaseOutput                // 5: debug snapshots
	PhaseCleanup               // 6: destroy queued entities, clear events

	phaseCount
)

// Valid reports whether p is one of the phases above.
func (p Phase) Valid() bool { return p >= PhaseClock && p < phaseCount }

func (p Phase) String() string {
	switch p {
	case PhaseClock:
		return "clock"
	case PhaseTrigger:
		return "trigger"
	case PhaseFlags:
		return "flags"
	case PhaseHistory:
		return "history"
	case PhaseReaction:
		return "reaction"
	case PhaseOutput:
		return "output"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
