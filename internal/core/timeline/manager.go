package timeline

import (
	"time"

	"go.uber.org/zap"
)

// Mode is the playback direction of the level clock.
type Mode int

const (
	ModePlaying Mode = iota
	ModeRewinding
)

func (m Mode) String() string {
	switch m {
	case ModePlaying:
		return "playing"
	case ModeRewinding:
		return "rewinding"
	}
	return "unknown"
}

// RewindRequest starts (or retargets) a rewind. Without a target the clock runs
// backward until released, holding at the level epoch. A target ahead of the
// current time scrubs forward through recorded history instead.
type RewindRequest struct {
	Target    LevelTime
	HasTarget bool
	// Speed multiplies the frame delta while rewinding. Zero selects the
	// manager's default speed.
	Speed float64
}

type transitionKind int

const (
	transitionNone transitionKind = iota
	transitionRewind
	transitionResume
)

type transition struct {
	kind transitionKind
	req  RewindRequest
}

// tracked is the manager's view of a History of any payload type.
type tracked interface {
	beginRewind(now LevelTime)
	endRewind(at LevelTime)
	Reset()
	stats() HistoryStats
}

// Manager owns the level clock and the playback mode. One Manager exists per
// loaded level; systems receive it explicitly.
//
// Mode changes requested during a tick take effect at the start of the next
// Advance, so every system of a tick observes a single mode and rewind
// systems always apply the slice the clock moved across.
type Manager struct {
	now          LevelTime
	mode         Mode
	defaultSpeed float64
	speed        float64
	target       LevelTime
	hasTarget    bool
	pending      transition
	ticks        uint64

	histories []tracked
	log       *zap.Logger
}

func NewManager(defaultRewindSpeed float64, log *zap.Logger) *Manager {
	if defaultRewindSpeed <= 0 {
		defaultRewindSpeed = 1
	}
	return &Manager{
		defaultSpeed: defaultRewindSpeed,
		speed:        defaultRewindSpeed,
		histories:    make([]tracked, 0, 8),
		log:          log,
	}
}

func (m *Manager) register(h tracked) {
	m.histories = append(m.histories, h)
}

func (m *Manager) LevelTime() LevelTime      { return m.now }
func (m *Manager) LevelTimeSeconds() float64 { return m.now.Seconds() }
func (m *Manager) Mode() Mode                { return m.mode }
func (m *Manager) Speed() float64            { return m.speed }
func (m *Manager) Target() (LevelTime, bool) { return m.target, m.hasTarget }
func (m *Manager) Ticks() uint64             { return m.ticks }
func (m *Manager) Playing() bool             { return m.mode == ModePlaying }
func (m *Manager) Rewinding() bool           { return m.mode == ModeRewinding }
func (m *Manager) PendingResume() bool       { return m.pending.kind == transitionResume }
func (m *Manager) PendingRewind() bool       { return m.pending.kind == transitionRewind }

// RequestRewind queues a rewind for the next tick boundary. The latest request
// of a tick wins.
func (m *Manager) RequestRewind(req RewindRequest) {
	m.pending = transition{kind: transitionRewind, req: req}
}

// RequestResume queues the return to forward play for the next tick boundary.
func (m *Manager) RequestResume() {
	m.pending = transition{kind: transitionResume}
}

// Advance applies any queued transition, then moves the clock by one frame.
func (m *Manager) Advance(dt time.Duration) {
	m.applyPending()
	m.ticks++

	switch m.mode {
	case ModePlaying:
		m.now = m.now.Add(dt)
	case ModeRewinding:
		m.stepRewind(time.Duration(float64(dt) * m.speed))
	}
}

func (m *Manager) stepRewind(step time.Duration) {
	if !m.hasTarget {
		m.now = m.now.Add(-step)
		if m.now < LevelEpoch {
			m.now = LevelEpoch
		}
		return
	}

	if m.target < m.now {
		m.now = m.now.Add(-step)
		if m.now < m.target {
			m.now = m.target
		}
	} else {
		m.now = m.now.Add(step)
		if m.now > m.target {
			m.now = m.target
		}
	}
	if m.now == m.target && m.pending.kind == transitionNone {
		m.pending = transition{kind: transitionResume}
	}
}

func (m *Manager) applyPending() {
	p := m.pending
	m.pending = transition{}

	switch p.kind {
	case transitionRewind:
		m.speed = p.req.Speed
		if m.speed <= 0 {
			m.speed = m.defaultSpeed
		}
		m.hasTarget = p.req.HasTarget
		m.target = p.req.Target
		if m.target < LevelEpoch {
			m.target = LevelEpoch
		}
		if m.mode == ModeRewinding {
			return
		}
		m.mode = ModeRewinding
		for _, h := range m.histories {
			h.beginRewind(m.now)
		}
		fields := []zap.Field{zap.Stringer("at", m.now), zap.Float64("speed", m.speed)}
		if m.hasTarget {
			fields = append(fields, zap.Stringer("target", m.target))
		}
		m.log.Info("rewind started", fields...)

	case transitionResume:
		if m.mode != ModeRewinding {
			return
		}
		m.mode = ModePlaying
		m.hasTarget = false
		for _, h := range m.histories {
			h.endRewind(m.now)
		}
		m.log.Info("play resumed", zap.Stringer("at", m.now))
	}
}

// Reset rewinds the clock to the epoch, returns to Playing and clears every
// registered history. Called on level reload.
func (m *Manager) Reset() {
	m.now = LevelEpoch
	m.mode = ModePlaying
	m.speed = m.defaultSpeed
	m.hasTarget = false
	m.target = LevelEpoch
	m.pending = transition{}
	m.ticks = 0
	for _, h := range m.histories {
		h.Reset()
	}
}

// Snapshot is a point-in-time copy of the manager state for diagnostics.
type Snapshot struct {
	Time      LevelTime
	Mode      Mode
	Speed     float64
	Target    LevelTime
	HasTarget bool
	Ticks     uint64
	Histories []HistoryStats
}

func (m *Manager) Snapshot() Snapshot {
	s := Snapshot{
		Time:      m.now,
		Mode:      m.mode,
		Speed:     m.speed,
		Target:    m.target,
		HasTarget: m.hasTarget,
		Ticks:     m.ticks,
		Histories: make([]HistoryStats, 0, len(m.histories)),
	}
	for _, h := range m.histories {
		s.Histories = append(s.Histories, h.stats())
	}
	return s
}
