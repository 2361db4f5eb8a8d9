package timeline

import (
	"fmt"
	"time"
)

// LevelTime is simulation time elapsed since the level started, in nanoseconds.
// It is unrelated to wall-clock time and restarts at zero on every level load.
type LevelTime int64

// LevelEpoch is the start of every level.
const LevelEpoch LevelTime = 0

func LevelTimeFromSeconds(s float64) LevelTime {
	return LevelTime(s * float64(time.Second))
}

func LevelTimeFromDuration(d time.Duration) LevelTime {
	return LevelTime(d)
}

func (t LevelTime) Seconds() float64 {
	return float64(t) / float64(time.Second)
}

func (t LevelTime) Duration() time.Duration {
	return time.Duration(t)
}

func (t LevelTime) Add(d time.Duration) LevelTime {
	return t + LevelTime(d)
}

// Sub returns the signed duration t-o.
func (t LevelTime) Sub(o LevelTime) time.Duration {
	return time.Duration(t - o)
}

func (t LevelTime) Before(o LevelTime) bool { return t < o }
func (t LevelTime) After(o LevelTime) bool  { return t > o }

// Compare returns -1, 0 or +1.
func (t LevelTime) Compare(o LevelTime) int {
	switch {
	case t < o:
		return -1
	case t > o:
		return 1
	}
	return 0
}

// Clamp limits t to [lo, hi].
func (t LevelTime) Clamp(lo, hi LevelTime) LevelTime {
	if t < lo {
		return lo
	}
	if t > hi {
		return hi
	}
	return t
}

// Progress returns (t-from)/(to-from) clamped to [0,1]. from may be later than
// to, which is how a backward sweep measures its progress. Returns 0 when the
// two bounds coincide.
func (t LevelTime) Progress(from, to LevelTime) float32 {
	if from == to {
		return 0
	}
	f := float64(t-from) / float64(to-from)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return float32(f)
}

func (t LevelTime) String() string {
	return fmt.Sprintf("%.3fs", t.Seconds())
}
