// Package script loads and runs user drawing scripts in a sandboxed
// Lua runtime.
//
// A script defines a global draw(lcd, t) function (demo_draw is
// accepted as a fallback name) which is invoked once per frame with an
// lcd table bound to that frame's drawing surface and the elapsed time
// in seconds. Each load produces an isolated Lua state, so a failed
// reload can never corrupt the previously loaded program.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/lcdsim/internal/surface"
)

// Entry point names searched in order.
var entryNames = []string{"draw", "demo_draw"}

// Engine loads scripts into isolated sandboxed Lua states.
type Engine struct {
	// printf receives output from the script's print(); defaults to
	// discarding it so stray prints cannot corrupt the display.
	printf func(format string, args ...any)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPrintf routes the script's print() output, typically to the
// application log.
func WithPrintf(fn func(format string, args ...any)) EngineOption {
	return func(e *Engine) { e.printf = fn }
}

// NewEngine creates a script engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Program is a successfully loaded script: an isolated Lua state with a
// resolved entry point. The state persists across frames so script
// globals keep their values between draws.
type Program struct {
	state  *lua.LState
	fn     *lua.LFunction
	entry  string
	closed bool
}

// Load executes the script at path in a fresh sandboxed state and
// resolves its entry point. Any failure is returned as a *LoadError.
func (e *Engine) Load(path string) (*Program, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	e.installPrint(L)

	if err := doFileWithRecovery(L, path); err != nil {
		L.Close()
		return nil, &LoadError{Path: path, Err: err}
	}

	for _, name := range entryNames {
		val := L.GetGlobal(name)
		if fn, ok := val.(*lua.LFunction); ok {
			return &Program{state: L, fn: fn, entry: name}, nil
		}
	}

	L.Close()
	return nil, &LoadError{Path: path, Err: ErrNoEntryPoint}
}

// Entry returns the resolved entry point name.
func (p *Program) Entry() string { return p.entry }

// Close releases the program's Lua state.
func (p *Program) Close() {
	if p.closed {
		return
	}
	p.state.Close()
	p.closed = true
}

// CallFrame invokes the entry point with an lcd table bound to surf and
// the elapsed time in seconds. Lua errors and panics are contained and
// returned as a *FrameError; the surface may have been partially drawn.
func (p *Program) CallFrame(surf *surface.Surface, elapsed float64) error {
	if p.closed {
		return &FrameError{Entry: p.entry, Err: ErrProgramClosed}
	}

	lcd := registerLCD(p.state, surf)

	err := callWithRecovery(p.state, p.fn, lcd, lua.LNumber(elapsed))
	if err != nil {
		return &FrameError{Entry: p.entry, Err: err}
	}
	return nil
}

// openSafeLibraries opens only side-effect-free Lua standard libraries.
// io, os, debug and package stay closed: scripts draw, they do not
// touch the host.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// installPrint replaces print with the engine's sink.
func (e *Engine) installPrint(L *lua.LState) {
	printf := e.printf
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		if printf == nil {
			return 0
		}
		top := L.GetTop()
		parts := make([]any, 0, top)
		for i := 1; i <= top; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		format := ""
		for i := range parts {
			if i > 0 {
				format += " "
			}
			format += "%v"
		}
		printf(format, parts...)
		return 0
	}))
}

// doFileWithRecovery runs a file's top level with panic recovery.
func doFileWithRecovery(L *lua.LState, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return L.DoFile(path)
}

// callWithRecovery calls fn with panic recovery.
func callWithRecovery(L *lua.LState, fn *lua.LFunction, args ...lua.LValue) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...)
}
