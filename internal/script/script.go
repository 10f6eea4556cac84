// Package script runs user commands written in Lua.
//
// Scripts run in a sandboxed gopher-lua state with only the base, table,
// string and math libraries. A scripted command is a Lua global function
// that receives the pointer state as a table and returns true when it
// consumed the input event.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/scenedit/internal/command"
)

// DefaultTimeout bounds a single call into Lua. Commands run on the
// input path.
const DefaultTimeout = 100 * time.Millisecond

// Errors returned by the engine.
var (
	// ErrClosed is returned when operating on a closed engine.
	ErrClosed = errors.New("script: engine closed")

	// ErrNotFunction is returned when a command names a global that is
	// not a Lua function.
	ErrNotFunction = errors.New("script: not a function")
)

// ErrorHandler receives errors raised by scripted commands. name is the
// command name.
type ErrorHandler func(name string, err error)

// Engine owns one sandboxed Lua state. It is safe for concurrent use;
// calls are serialized.
type Engine struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	onError ErrorHandler
	closed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithErrorHandler sets the handler for command errors.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

// NewEngine creates a sandboxed Lua engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}

	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(e.L)
	lua.OpenTable(e.L)
	lua.OpenString(e.L)
	lua.OpenMath(e.L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		e.L.SetGlobal(name, lua.LNil)
	}
	return e
}

// DoString executes Lua source.
func (e *Engine) DoString(src string) error {
	return e.run(func(L *lua.LState) error { return L.DoString(src) })
}

// DoFile executes a Lua file.
func (e *Engine) DoFile(path string) error {
	err := e.run(func(L *lua.LState) error { return L.DoFile(path) })
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Has reports whether fn is a global Lua function.
func (e *Engine) Has(fn string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	return e.L.GetGlobal(fn).Type() == lua.LTFunction
}

// Call invokes the global function fn with the pointer state of ctx and
// returns its first result as a boolean.
func (e *Engine) Call(fn string, ctx command.Context) (bool, error) {
	var consumed bool
	err := e.run(func(L *lua.LState) error {
		f := L.GetGlobal(fn)
		if f.Type() != lua.LTFunction {
			return fmt.Errorf("%w: %s", ErrNotFunction, fn)
		}
		if err := L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, pointerTable(L, ctx)); err != nil {
			return err
		}
		consumed = lua.LVAsBool(L.Get(-1))
		L.Pop(1)
		return nil
	})
	return consumed, err
}

// Command returns a CallFunc running the Lua global fn. Errors are
// reported to the error handler and leave the event unconsumed.
func (e *Engine) Command(name, fn string) command.CallFunc {
	return func(ctx command.Context) bool {
		consumed, err := e.Call(fn, ctx)
		if err != nil {
			if e.onError != nil {
				e.onError(name, err)
			}
			return false
		}
		return consumed
	}
}

// Close releases the Lua state.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.L.Close()
	e.closed = true
}

func (e *Engine) run(fn func(L *lua.LState) error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	if e.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		e.L.SetContext(ctx)
		defer e.L.RemoveContext()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn(e.L)
}

func pointerTable(L *lua.LState, ctx command.Context) *lua.LTable {
	t := L.NewTable()
	if ctx == nil {
		return t
	}
	abs := ctx.AbsolutePosition()
	rel := ctx.RelativePosition()
	wheel := ctx.WheelDelta()
	t.RawSetString("x", lua.LNumber(abs.X))
	t.RawSetString("y", lua.LNumber(abs.Y))
	t.RawSetString("dx", lua.LNumber(rel.X))
	t.RawSetString("dy", lua.LNumber(rel.Y))
	t.RawSetString("wheel_x", lua.LNumber(wheel.X))
	t.RawSetString("wheel_y", lua.LNumber(wheel.Y))
	t.RawSetString("over_tool", lua.LBool(ctx.HoveringOverTool()))
	t.RawSetString("over_gui", lua.LBool(ctx.HoveringOverGUI()))
	if vp, ok := ctx.HoveredViewport(); ok {
		t.RawSetString("viewport", lua.LString(vp))
	}
	return t
}
