package level

import (
	"fmt"
	"sort"
	"time"

	"github.com/timeweave/rewind/internal/animation"
	"github.com/timeweave/rewind/internal/component"
	"github.com/timeweave/rewind/internal/core/ecs"
	"github.com/timeweave/rewind/internal/core/event"
	coresys "github.com/timeweave/rewind/internal/core/system"
	"github.com/timeweave/rewind/internal/core/timeline"
	"github.com/timeweave/rewind/internal/data"
	"github.com/timeweave/rewind/internal/debugview"
	"github.com/timeweave/rewind/internal/motion"
	"github.com/timeweave/rewind/internal/scripting"
	"github.com/timeweave/rewind/internal/system"
	"github.com/timeweave/rewind/internal/world"
	"go.uber.org/zap"
)

// Options configures a level instance.
type Options struct {
	RewindSpeed            float64
	TransformInterpolation timeline.Interpolation
	// Script is the level script engine. Optional; the level does not close it.
	Script *scripting.Engine
	// Publisher receives debug snapshots every SnapshotInterval ticks. Optional.
	Publisher        system.Publisher
	SnapshotInterval int
}

// Level is one loaded level: the ECS world, the level clock, the per-type
// histories and the systems that tie them together. Tick it from a single
// goroutine.
type Level struct {
	def *data.LevelDef
	log *zap.Logger

	World   *ecs.World
	Bus     *event.Bus
	Manager *timeline.Manager
	Flags   *world.LevelFlags
	Runner  *coresys.Runner

	Names       *ecs.Store[component.Name]
	Transforms  *ecs.Store[component.Transform]
	Colliders   *ecs.Store[component.Collider]
	Velocities  *ecs.Store[component.Velocity]
	Oscillators *ecs.Store[component.Oscillator]
	Triggers    *ecs.Store[component.FlagTrigger]
	Doors       *ecs.Store[component.Door]
	Bodies      *ecs.Store[component.Body]
	Animations  *ecs.Store[animation.PlayingAnimation]

	TransformHistory *timeline.History[motion.TransformChange]
	AnimationHistory *timeline.History[animation.PlayingAnimationChange]
	FlagHistory      *timeline.History[world.FlagChange]

	names   map[string]ecs.EntityID
	sensors *system.SensorSystem

	// reloadRequested defers a script reload to the end of the tick.
	reloadRequested bool
}

// New builds a level from its definition and spawns its entities.
func New(def *data.LevelDef, opts Options, log *zap.Logger) (*Level, error) {
	log = log.With(zap.String("level", def.Name))
	w := ecs.NewWorld()
	l := &Level{
		def:     def,
		log:     log,
		World:   w,
		Bus:     event.NewBus(),
		Manager: timeline.NewManager(opts.RewindSpeed, log),
		Flags:   world.NewLevelFlags(),
		Runner:  coresys.NewRunner(),

		Names:       ecs.NewStore[component.Name](w),
		Transforms:  ecs.NewStore[component.Transform](w),
		Colliders:   ecs.NewStore[component.Collider](w),
		Velocities:  ecs.NewStore[component.Velocity](w),
		Oscillators: ecs.NewStore[component.Oscillator](w),
		Triggers:    ecs.NewStore[component.FlagTrigger](w),
		Doors:       ecs.NewStore[component.Door](w),
		Bodies:      ecs.NewStore[component.Body](w),
		Animations:  ecs.NewStore[animation.PlayingAnimation](w),

		names: make(map[string]ecs.EntityID, len(def.Entities)),
	}
	l.TransformHistory = timeline.NewHistory[motion.TransformChange]("transform", l.Manager, log)
	l.AnimationHistory = timeline.NewHistory[animation.PlayingAnimationChange]("animation", l.Manager, log)
	l.FlagHistory = timeline.NewHistory[world.FlagChange]("flags", l.Manager, log)

	l.registerSystems(opts)

	if err := l.spawnAll(); err != nil {
		return nil, err
	}
	l.recordBaseline()
	return l, nil
}

func (l *Level) registerSystems(opts Options) {
	r := l.Runner
	m := l.Manager

	r.Register(system.NewClockSystem(m))

	if opts.Script != nil {
		r.Register(system.NewScriptSystem(opts.Script, m, l.Flags, l.def.LevelID, l.World, l, l.log))
	}
	r.Register(system.NewMotionSystem(m, l.Transforms, l.Velocities))
	r.Register(system.NewOscillatorSystem(m, l.Transforms, l.Oscillators))
	l.sensors = system.NewSensorSystem(l.Transforms, l.Colliders, l.Triggers, l.Bodies, l.Bus)
	r.Register(l.sensors)

	r.Register(system.NewFlagSystem(m, l.Flags, l.Triggers, l.Bus, l.log))

	registerHistory(r, m, l.FlagHistory, l.Flags, timeline.InterpolationNone, l.log)
	registerHistory(r, m, l.AnimationHistory, animation.NewBinding(l.Animations), timeline.InterpolationNone, l.log)
	registerHistory(r, m, l.TransformHistory, motion.NewTransformBinding(l.Transforms), opts.TransformInterpolation, l.log)

	r.Register(system.NewDoorSystem(m, l.Flags, l.Doors, l.Animations))

	if opts.Publisher != nil {
		r.Register(system.NewSnapshotSystem(l.Snapshot, opts.Publisher, opts.SnapshotInterval))
	}

	r.Register(system.NewCleanupSystem(l.World, l.Bus))
}

// registerHistory wires the record and rewind halves of one payload type.
// Mode gating inside the two systems keeps them mutually exclusive.
func registerHistory[T timeline.Change[T]](r *coresys.Runner, m *timeline.Manager, h *timeline.History[T], rec timeline.Recordable[T], interp timeline.Interpolation, log *zap.Logger) {
	r.Register(timeline.NewTrackSystem(m, h, rec))
	r.Register(timeline.NewRewindSystem(m, h, rec, interp, log))
}

func (l *Level) spawnAll() error {
	if err := l.Flags.SetCount(l.def.LevelID, l.def.FlagCount); err != nil {
		return fmt.Errorf("level %q: %w", l.def.Name, err)
	}
	for i := range l.def.Entities {
		if _, err := l.Spawn(l.def.Entities[i]); err != nil {
			return err
		}
	}
	return nil
}

// recordBaseline stores the spawn state at the level epoch, so a rewind all
// the way back lands on the level as it was loaded.
func (l *Level) recordBaseline() {
	l.Runner.TickPhase(coresys.PhaseHistory, 0)
}

// Spawn creates one entity from its definition. Tracked entities receive a
// fresh TrackedID, even when they reuse the name of a destroyed entity.
func (l *Level) Spawn(def data.EntityDef) (ecs.EntityID, error) {
	if id, ok := l.Lookup(def.Name); ok {
		return 0, fmt.Errorf("spawn %q: name already used by %s", def.Name, id)
	}
	switch {
	case def.Kind == data.KindDoor && def.Door == nil,
		def.Kind == data.KindFlagTrigger && def.Trigger == nil,
		def.Kind == data.KindMovingBox && def.Oscillator == nil:
		return 0, fmt.Errorf("spawn %q: missing %s settings", def.Name, def.Kind)
	}

	var tracked timeline.TrackedID
	if def.IsTracked() {
		tracked = timeline.NewTrackedID()
	}

	id := l.World.CreateEntity()
	l.names[def.Name] = id
	l.Names.Set(id, &component.Name{Value: def.Name})
	l.Transforms.Set(id, &component.Transform{ID: tracked, Position: vec(def.Position)})
	if def.HalfExtents != (data.Vec3{}) {
		l.Colliders.Set(id, &component.Collider{HalfExtents: vec(def.HalfExtents)})
	}

	switch def.Kind {
	case data.KindDoor:
		l.Doors.Set(id, &component.Door{Level: l.def.LevelID, Flag: def.Door.Flag})
		anim := animation.NewPlayingAnimation(tracked, time.Duration(def.Door.OpenSeconds*float64(time.Second)))
		l.Animations.Set(id, &anim)
	case data.KindFlagTrigger:
		l.Triggers.Set(id, &component.FlagTrigger{Level: l.def.LevelID, Flag: def.Trigger.Flag})
	case data.KindBody:
		l.Bodies.Set(id, &component.Body{})
		l.Velocities.Set(id, &component.Velocity{Linear: vec(def.Velocity)})
	case data.KindMovingBox:
		l.Oscillators.Set(id, &component.Oscillator{
			Origin:    vec(def.Position),
			Amplitude: def.Oscillator.Amplitude,
			Frequency: def.Oscillator.Frequency,
		})
	}

	l.log.Debug("spawned entity",
		zap.String("name", def.Name),
		zap.String("kind", def.Kind),
		zap.Stringer("entity", id),
		zap.Stringer("tracked", tracked),
	)
	return id, nil
}

func vec(v data.Vec3) component.Vec3 {
	return component.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Lookup resolves a live entity by name.
func (l *Level) Lookup(name string) (ecs.EntityID, bool) {
	id, ok := l.names[name]
	if !ok || !l.World.Alive(id) {
		return 0, false
	}
	return id, true
}

// Despawn queues the named entity for destruction at the end of the tick.
func (l *Level) Despawn(name string) bool {
	id, ok := l.Lookup(name)
	if !ok {
		return false
	}
	l.World.MarkForDestruction(id)
	return true
}

// Tick runs every system once, then performs a reload requested during the
// tick.
func (l *Level) Tick(dt time.Duration) {
	l.Runner.Tick(dt)
	if !l.reloadRequested {
		return
	}
	l.reloadRequested = false
	if err := l.Reload(); err != nil {
		l.log.Error("level reload failed", zap.Error(err))
	}
}

// RequestReload schedules a Reload for the end of the current tick.
func (l *Level) RequestReload() { l.reloadRequested = true }

// Reload restarts the level: the clock returns to the epoch, every history is
// cleared and all entities are respawned with new tracked ids.
func (l *Level) Reload() error {
	l.reloadRequested = false
	l.Manager.Reset()
	l.World.Clear()
	l.Flags.Reset()
	l.Bus.Clear()
	l.sensors.Reset()
	clear(l.names)
	if err := l.spawnAll(); err != nil {
		return err
	}
	l.recordBaseline()
	l.log.Info("level reloaded", zap.Int("entities", l.World.Pool().Count()))
	return nil
}

// Def returns the level definition.
func (l *Level) Def() *data.LevelDef { return l.def }

// Snapshot captures the level for the debug view.
func (l *Level) Snapshot() debugview.Snapshot {
	ms := l.Manager.Snapshot()
	s := debugview.Snapshot{
		Level:     l.def.Name,
		Tick:      ms.Ticks,
		LevelTime: ms.Time.Seconds(),
		Mode:      ms.Mode.String(),
		Speed:     ms.Speed,
		Entities:  l.World.Pool().Count(),
		Flags:     l.Flags.Bits(l.def.LevelID),
		Histories: make([]debugview.HistoryView, 0, len(ms.Histories)),
	}
	if ms.HasTarget {
		target := ms.Target.Seconds()
		s.TargetSeconds = &target
	}
	for _, h := range ms.Histories {
		s.Histories = append(s.Histories, debugview.HistoryView{
			Name:          h.Name,
			Collections:   h.Collections,
			Commands:      h.Commands,
			OldestSeconds: h.Oldest.Seconds(),
			NewestSeconds: h.Newest.Seconds(),
			Rewinding:     h.Rewinding,
		})
	}

	now := ms.Time
	ecs.Each2(l.Names, l.Transforms, func(id ecs.EntityID, n *component.Name, t *component.Transform) {
		if t.ID.IsZero() {
			return
		}
		pos := [3]float32{t.Position.X, t.Position.Y, t.Position.Z}
		view := debugview.EntityView{Name: n.Value, TrackedID: uint64(t.ID), Position: &pos}
		if a, ok := l.Animations.Get(id); ok {
			p := a.Progress(now)
			view.Animation = &p
		}
		s.Tracked = append(s.Tracked, view)
	})
	sort.Slice(s.Tracked, func(i, j int) bool { return s.Tracked[i].Name < s.Tracked[j].Name })
	return s
}
