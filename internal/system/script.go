package system

import (
	"time"

	"github.com/timeweave/rewind/internal/core/ecs"
	coresys "github.com/timeweave/rewind/internal/core/system"
	"github.com/timeweave/rewind/internal/core/timeline"
	"github.com/timeweave/rewind/internal/scripting"
	"github.com/timeweave/rewind/internal/world"
	"go.uber.org/zap"
)

// LevelHost is the level a script runs in: it resolves designer-facing entity
// names and restarts the level on request.
type LevelHost interface {
	Lookup(name string) (ecs.EntityID, bool)
	// RequestReload restarts the level after the current tick.
	RequestReload()
}

// ScriptSystem runs the level script's on_tick hook and applies what it asks
// for: rewind triggers, flag writes, despawns and reloads. Phase 1 (Trigger).
type ScriptSystem struct {
	engine  *scripting.Engine
	manager *timeline.Manager
	flags   *world.LevelFlags
	level   int
	world   *ecs.World
	host    LevelHost
	log     *zap.Logger
}

func NewScriptSystem(engine *scripting.Engine, m *timeline.Manager, flags *world.LevelFlags, level int, w *ecs.World, host LevelHost, log *zap.Logger) *ScriptSystem {
	return &ScriptSystem{
		engine:  engine,
		manager: m,
		flags:   flags,
		level:   level,
		world:   w,
		host:    host,
		log:     log,
	}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseTrigger }

func (s *ScriptSystem) Update(_ time.Duration) {
	flags := make([]bool, s.flags.Count(s.level))
	for i := range flags {
		flags[i] = s.flags.Get(s.level, i)
	}
	cmds, err := s.engine.OnTick(scripting.TickContext{
		Time:  s.manager.LevelTimeSeconds(),
		Mode:  s.manager.Mode().String(),
		Tick:  s.manager.Ticks(),
		Flags: flags,
	})
	if err != nil {
		s.log.Error("level script failed", zap.Error(err))
		return
	}
	for _, cmd := range cmds {
		s.apply(cmd)
	}
}

func (s *ScriptSystem) apply(cmd scripting.Command) {
	switch cmd.Kind {
	case scripting.CmdRewind:
		s.manager.RequestRewind(timeline.RewindRequest{
			Target:    timeline.LevelTimeFromSeconds(cmd.Target),
			HasTarget: cmd.HasTarget,
			Speed:     cmd.Speed,
		})
	case scripting.CmdResume:
		s.manager.RequestResume()
	case scripting.CmdSetFlag:
		if !s.manager.Playing() {
			s.log.Debug("set_flag ignored while rewinding", zap.Int("flag", cmd.Flag))
			return
		}
		if _, err := s.flags.Set(s.level, cmd.Flag, cmd.Value); err != nil {
			s.log.Warn("script set_flag", zap.Error(err))
		}
	case scripting.CmdDespawn:
		id, ok := s.host.Lookup(cmd.Name)
		if !ok || !s.world.Alive(id) {
			s.log.Warn("script despawn: no such entity", zap.String("name", cmd.Name))
			return
		}
		s.world.MarkForDestruction(id)
	case scripting.CmdReload:
		s.host.RequestReload()
	}
}
