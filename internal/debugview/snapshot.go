package debugview

// HistoryView summarises one history log.
type HistoryView struct {
	Name          string  `json:"name"`
	Collections   int     `json:"collections"`
	Commands      int     `json:"commands"`
	OldestSeconds float64 `json:"oldest_seconds"`
	NewestSeconds float64 `json:"newest_seconds"`
	Rewinding     bool    `json:"rewinding"`
}

// EntityView is one tracked entity as seen by the debug client.
type EntityView struct {
	Name      string      `json:"name"`
	TrackedID uint64      `json:"tracked_id"`
	Position  *[3]float32 `json:"position,omitempty"`
	Animation *float32    `json:"animation_progress,omitempty"`
}

// Snapshot is the level state published to debug clients.
type Snapshot struct {
	Level         string        `json:"level"`
	Tick          uint64        `json:"tick"`
	LevelTime     float64       `json:"level_time"`
	Mode          string        `json:"mode"`
	Speed         float64       `json:"speed"`
	TargetSeconds *float64      `json:"target_seconds,omitempty"`
	Entities      int           `json:"entities"`
	Flags         uint64        `json:"flags"`
	Histories     []HistoryView `json:"histories"`
	Tracked       []EntityView  `json:"tracked"`
}
