// Package script runs macropad modes written in Lua.
//
// Every script gets its own sandboxed interpreter. Only the base, table,
// string and math libraries are opened; io, os, debug and the functions
// that load code are not available. Scripts reach the macropad through the
// global pad module.
package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultCallTimeout bounds a single call into a script.
const DefaultCallTimeout = 50 * time.Millisecond

var (
	// ErrStateClosed is returned when calling into a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrInvalidScript indicates a script did not return a mode table.
	ErrInvalidScript = errors.New("invalid script")
)

// State is a sandboxed Lua interpreter.
//
// gopher-lua states are not goroutine-safe. A State belongs to the tick
// loop and must only be used from it.
type State struct {
	L       *lua.LState
	timeout time.Duration
	depth   int
	closed  bool
}

// NewState creates a sandboxed interpreter. A non-positive timeout
// disables the per-call limit.
func NewState(timeout time.Duration) *State {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	openSafeLibraries(L)
	sandbox(L)
	return &State{L: L, timeout: timeout}
}

// openSafeLibraries opens the libraries that cannot reach the host system.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// sandbox removes the base functions that load code or modules.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"require", "module", "getfenv", "setfenv",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoFile runs the chunk in path and returns its first result.
func (s *State) DoFile(path string) (lua.LValue, error) {
	if s.closed {
		return lua.LNil, ErrStateClosed
	}
	fn, err := s.L.LoadFile(path)
	if err != nil {
		return lua.LNil, err
	}
	return s.run(fn)
}

// DoString runs a chunk and returns its first result.
func (s *State) DoString(code string) (lua.LValue, error) {
	if s.closed {
		return lua.LNil, ErrStateClosed
	}
	fn, err := s.L.LoadString(code)
	if err != nil {
		return lua.LNil, err
	}
	return s.run(fn)
}

func (s *State) run(fn *lua.LFunction) (lua.LValue, error) {
	var ret lua.LValue = lua.LNil
	err := s.guard(func() error {
		s.L.Push(fn)
		if err := s.L.PCall(0, 1, nil); err != nil {
			return err
		}
		ret = s.L.Get(-1)
		s.L.Pop(1)
		return nil
	})
	return ret, err
}

// Call calls fn with args, discarding its results.
func (s *State) Call(fn *lua.LFunction, args ...lua.LValue) error {
	if s.closed {
		return ErrStateClosed
	}
	if fn == nil {
		return nil
	}
	return s.guard(func() error {
		return s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	})
}

// guard applies the call timeout to the outermost call and turns panics
// into errors. Calls made from Go functions invoked by Lua run under the
// timeout of the call that started them.
func (s *State) guard(fn func() error) (err error) {
	if s.depth == 0 && s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		s.L.SetContext(ctx)
		defer func() {
			s.L.RemoveContext()
			cancel()
		}()
	}

	s.depth++
	defer func() {
		s.depth--
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// SetModule publishes funcs as the global table name.
func (s *State) SetModule(name string, funcs map[string]lua.LGFunction) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.L.SetFuncs(s.L.NewTable(), funcs))
}

// Close releases the interpreter. It is safe to call twice.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}
