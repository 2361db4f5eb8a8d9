package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM running a level script.
// Single-goroutine access only (game loop).
//
// A level script may define
//
//	function on_tick(ctx) ... end
//
// where ctx carries time (seconds), mode ("playing"/"rewinding"), tick and
// flags (flag index -> bool). The script drives the level through the API
// globals rewind, resume, set_flag, despawn, reload and log; calls are queued and
// returned from OnTick for the game loop to apply.
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	pending []Command
}

// CommandKind enumerates the requests a script can make.
type CommandKind int

const (
	CmdRewind CommandKind = iota + 1
	CmdResume
	CmdSetFlag
	CmdDespawn
	CmdReload
)

func (k CommandKind) String() string {
	switch k {
	case CmdRewind:
		return "rewind"
	case CmdResume:
		return "resume"
	case CmdSetFlag:
		return "set_flag"
	case CmdDespawn:
		return "despawn"
	case CmdReload:
		return "reload"
	}
	return "unknown"
}

// Command is one request queued by a script call.
type Command struct {
	Kind      CommandKind
	Target    float64 // rewind target, seconds
	HasTarget bool
	Speed     float64 // 0 = default
	Flag      int
	Value     bool
	Name      string
}

// TickContext is what on_tick sees.
type TickContext struct {
	Time  float64
	Mode  string
	Tick  uint64
	Flags []bool
}

// NewEngine creates a Lua engine running the script at path. An empty path
// yields an engine with no hooks.
func NewEngine(path string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if path == "" {
		return e, nil
	}
	if err := e.vm.DoFile(path); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	e.log.Debug("loaded lua script", zap.String("file", path))
	return e, nil
}

// NewEngineFromSource creates an engine from inline Lua source.
func NewEngineFromSource(name, src string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("rewind", vm.NewFunction(e.luaRewind))
	vm.SetGlobal("resume", vm.NewFunction(e.luaResume))
	vm.SetGlobal("set_flag", vm.NewFunction(e.luaSetFlag))
	vm.SetGlobal("despawn", vm.NewFunction(e.luaDespawn))
	vm.SetGlobal("reload", vm.NewFunction(e.luaReload))
	vm.SetGlobal("log", vm.NewFunction(e.luaLog))
	return e
}

// HasHook reports whether the script defines on_tick.
func (e *Engine) HasHook() bool {
	return e.vm.GetGlobal("on_tick") != lua.LNil
}

// OnTick calls the script's on_tick hook and returns the commands it queued.
// On a Lua error the commands queued before the error are discarded.
func (e *Engine) OnTick(ctx TickContext) ([]Command, error) {
	fn := e.vm.GetGlobal("on_tick")
	if fn == lua.LNil {
		return nil, nil
	}

	t := e.vm.NewTable()
	t.RawSetString("time", lua.LNumber(ctx.Time))
	t.RawSetString("mode", lua.LString(ctx.Mode))
	t.RawSetString("tick", lua.LNumber(ctx.Tick))
	flags := e.vm.NewTable()
	for i, v := range ctx.Flags {
		flags.RawSetInt(i, lua.LBool(v))
	}
	t.RawSetString("flags", flags)

	e.pending = e.pending[:0]
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, t); err != nil {
		e.pending = e.pending[:0]
		return nil, fmt.Errorf("lua on_tick: %w", err)
	}
	if len(e.pending) == 0 {
		return nil, nil
	}
	out := make([]Command, len(e.pending))
	copy(out, e.pending)
	return out, nil
}

// rewind([target_seconds [, speed]]). Without a target the rewind runs until resume().
func (e *Engine) luaRewind(L *lua.LState) int {
	cmd := Command{Kind: CmdRewind}
	if v := L.Get(1); v != lua.LNil {
		cmd.Target = float64(L.CheckNumber(1))
		cmd.HasTarget = true
	}
	cmd.Speed = float64(L.OptNumber(2, 0))
	e.pending = append(e.pending, cmd)
	return 0
}

func (e *Engine) luaResume(L *lua.LState) int {
	e.pending = append(e.pending, Command{Kind: CmdResume})
	return 0
}

// set_flag(flag [, value=true])
func (e *Engine) luaSetFlag(L *lua.LState) int {
	e.pending = append(e.pending, Command{
		Kind:  CmdSetFlag,
		Flag:  L.CheckInt(1),
		Value: L.OptBool(2, true),
	})
	return 0
}

// despawn(name)
func (e *Engine) luaDespawn(L *lua.LState) int {
	e.pending = append(e.pending, Command{Kind: CmdDespawn, Name: L.CheckString(1)})
	return 0
}

// reload() restarts the level once the current tick has finished.
func (e *Engine) luaReload(L *lua.LState) int {
	e.pending = append(e.pending, Command{Kind: CmdReload})
	return 0
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
