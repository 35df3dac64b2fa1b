package script

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/hid"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/platform"
)

// ModuleName is the global through which scripts reach the macropad.
const ModuleName = "pad"

// padModule returns the functions of the pad module bound to m.
//
// Host output is collected while a script function runs and executed as
// one sequence when it returns, so key presses made in one call are held
// together until the call ends.
func padModule(m *Mode) map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"write": func(L *lua.LState) int {
			m.emit(action.Text(L.CheckString(1)))
			return 0
		},
		"press": func(L *lua.LState) int {
			for i := 1; i <= L.GetTop(); i++ {
				m.emit(action.Press(checkKeycode(L, i)))
			}
			return 0
		},
		"release": func(L *lua.LState) int {
			for i := 1; i <= L.GetTop(); i++ {
				m.emit(action.Release(checkKeycode(L, i)))
			}
			return 0
		},
		"consumer": func(L *lua.LState) int {
			code, err := hid.ParseConsumerCode(L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
			}
			m.emit(action.Consumer(code))
			return 0
		},
		"click": func(L *lua.LState) int {
			button, err := hid.ParseMouseButton(L.OptString(1, "LEFT"))
			if err != nil {
				L.ArgError(1, err.Error())
			}
			m.emit(action.Mouse{Button: button})
			m.emit(action.Mouse{Button: button, Release: true})
			return 0
		},
		"move": func(L *lua.LState) int {
			m.emit(action.MouseMove{X: L.CheckInt(1), Y: L.CheckInt(2), Wheel: L.OptInt(3, 0)})
			return 0
		},
		"push": func(L *lua.LState) int {
			if err := m.pad.PushMode(mode.Kind(L.CheckString(1))); err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		},
		"pop": func(L *lua.LState) int {
			kind := m.Kind()
			if L.GetTop() >= 1 {
				kind = mode.Kind(L.CheckString(1))
			}
			m.pad.PopMode(kind)
			return 0
		},
		"set": func(L *lua.LState) int {
			if err := m.pad.SetMode(mode.Kind(L.CheckString(1))); err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		},
		"pixel": func(L *lua.LState) int {
			i := L.CheckInt(1)
			if i < 0 || i >= m.pad.Pixels().Len() {
				L.ArgError(1, "no such LED")
			}
			c := platform.RGB(checkByte(L, 2), checkByte(L, 3), checkByte(L, 4))
			m.pad.Pixels().Set(i, c)
			m.pad.SchedulePixelRefresh()
			return 0
		},
		"show": func(L *lua.LState) int {
			lines := make([]string, 0, L.GetTop())
			for i := 1; i <= L.GetTop(); i++ {
				lines = append(lines, L.CheckString(i))
			}
			m.text.set(lines)
			m.pad.ScheduleDisplayRefresh()
			return 0
		},
		"refresh": func(L *lua.LState) int {
			m.pad.ScheduleDisplayRefresh()
			return 0
		},
		"log": func(L *lua.LState) int {
			parts := make([]string, 0, L.GetTop())
			for i := 1; i <= L.GetTop(); i++ {
				parts = append(parts, L.ToStringMeta(L.Get(i)).String())
			}
			m.log.Info("%s", strings.Join(parts, " "))
			return 0
		},
		"time": func(L *lua.LState) int {
			L.Push(lua.LNumber(m.pad.Clock().Now().Sub(m.started).Seconds()))
			return 1
		},
	}
}

func checkKeycode(L *lua.LState, n int) hid.Keycode {
	code, err := hid.ParseKeycode(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return code
}

func checkByte(L *lua.LState, n int) uint8 {
	v := L.CheckInt(n)
	if v < 0 || v > 255 {
		L.ArgError(n, "color component out of range")
	}
	return uint8(v)
}
