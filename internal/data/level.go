package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entity kinds understood by the level builder.
const (
	KindDoor        = "door"
	KindFlagTrigger = "flag_trigger"
	KindBody        = "body"
	KindMovingBox   = "moving_box"
	KindProp        = "prop"
)

// Vec3 is a position or extent as written in level files.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// DoorDef configures a door entity.
type DoorDef struct {
	Flag        int     `yaml:"flag"`
	OpenSeconds float64 `yaml:"open_seconds"`
}

// TriggerDef configures a flag trigger volume.
type TriggerDef struct {
	Flag int `yaml:"flag"`
}

// OscillatorDef configures a moving box.
type OscillatorDef struct {
	Amplitude float32 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"` // radians per second
}

// EntityDef describes one entity spawned at level load.
type EntityDef struct {
	Name        string         `yaml:"name"`
	Kind        string         `yaml:"kind"`
	Position    Vec3           `yaml:"position"`
	HalfExtents Vec3           `yaml:"half_extents"`
	Velocity    Vec3           `yaml:"velocity"`
	Tracked     *bool          `yaml:"tracked"` // default true for door, body, moving_box
	Door        *DoorDef       `yaml:"door"`
	Trigger     *TriggerDef    `yaml:"trigger"`
	Oscillator  *OscillatorDef `yaml:"oscillator"`
}

// IsTracked reports whether the entity's state is recorded for rewinding.
func (e *EntityDef) IsTracked() bool {
	if e.Tracked != nil {
		return *e.Tracked
	}
	switch e.Kind {
	case KindDoor, KindBody, KindMovingBox:
		return true
	}
	return false
}

// LevelDef is the static description of a level, loaded from YAML.
type LevelDef struct {
	Name      string      `yaml:"name"`
	LevelID   int         `yaml:"level_id"`
	FlagCount int         `yaml:"flag_count"`
	Entities  []EntityDef `yaml:"entities"`
}

// Count returns the number of entity definitions.
func (d *LevelDef) Count() int {
	return len(d.Entities)
}

// LoadLevel reads and validates a level file.
func LoadLevel(path string) (*LevelDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	return ParseLevel(raw)
}

// ParseLevel decodes and validates a level document.
func ParseLevel(raw []byte) (*LevelDef, error) {
	var def LevelDef
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("level %q: %w", def.Name, err)
	}
	return &def, nil
}

func (d *LevelDef) validate() error {
	if d.FlagCount < 0 || d.FlagCount > 64 {
		return fmt.Errorf("flag_count %d out of range [0,64]", d.FlagCount)
	}
	seen := make(map[string]struct{}, len(d.Entities))
	for i := range d.Entities {
		e := &d.Entities[i]
		if e.Name == "" {
			return fmt.Errorf("entity %d: missing name", i)
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("entity %q: duplicate name", e.Name)
		}
		seen[e.Name] = struct{}{}

		switch e.Kind {
		case KindDoor:
			if e.Door == nil {
				return fmt.Errorf("entity %q: door section required", e.Name)
			}
			if err := d.checkFlag(e.Door.Flag); err != nil {
				return fmt.Errorf("entity %q: %w", e.Name, err)
			}
			if e.Door.OpenSeconds <= 0 {
				return fmt.Errorf("entity %q: open_seconds must be positive", e.Name)
			}
		case KindFlagTrigger:
			if e.Trigger == nil {
				return fmt.Errorf("entity %q: trigger section required", e.Name)
			}
			if err := d.checkFlag(e.Trigger.Flag); err != nil {
				return fmt.Errorf("entity %q: %w", e.Name, err)
			}
		case KindMovingBox:
			if e.Oscillator == nil {
				return fmt.Errorf("entity %q: oscillator section required", e.Name)
			}
		case KindBody, KindProp:
		default:
			return fmt.Errorf("entity %q: unknown kind %q", e.Name, e.Kind)
		}
	}
	return nil
}

func (d *LevelDef) checkFlag(flag int) error {
	if flag < 0 || flag >= d.FlagCount {
		return fmt.Errorf("flag %d out of range [0,%d)", flag, d.FlagCount)
	}
	return nil
}
