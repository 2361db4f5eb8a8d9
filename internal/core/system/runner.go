package system

import (
	"fmt"
	"time"
)

// Runner executes systems in phase order each tick. Systems of the same phase
// run in registration order. A system's phase is read once, at Register.
type Runner struct {
	phases [phaseCount][]System
	n      int
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to the bucket of its phase. An unknown phase is a wiring
// bug and panics.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if !p.Valid() {
		panic(fmt.Sprintf("system: %T registered with unknown phase %d", s, int(p)))
	}
	r.phases[p] = append(r.phases[p], s)
	r.n++
}

func (r *Runner) Len() int { return r.n }

// Count returns the number of systems registered for phase.
func (r *Runner) Count(phase Phase) int {
	if !phase.Valid() {
		return 0
	}
	return len(r.phases[phase])
}

func (r *Runner) Tick(dt time.Duration) {
	for _, bucket := range r.phases {
		for _, s := range bucket {
			s.Update(dt)
		}
	}
}

// TickPhase runs only the systems of one phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	if !phase.Valid() {
		return
	}
	for _, s := range r.phases[phase] {
		s.Update(dt)
	}
}
