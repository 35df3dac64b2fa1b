// Package mode provides the mode abstraction of the macropad and the two
// structures that manage mode instances.
//
// A Container holds at most one instance per Kind for the lifetime of the
// process. A Stack holds the active modes. Each active mode contributes its
// key, encoder and icon grids as a named layer; the stack composites them so
// that for every key the most recently activated mode with a mapping wins.
//
// Stack lifecycle:
//
//	Push(m):   if m is active, or a mode sharing a kind with it through
//	           a Grouping, pop that mode and everything above it first;
//	           then m.Start(), install layers, attach group, update title.
//	Pop(m):    pop entries from the top until m is gone (nil pops one);
//	           each entry gets Pause(), layer removal, group detach.
//	           An emptied stack is refilled with the default mode.
//	SetMode(m): pop everything without refilling, then Push(m).
//
// The stack is driven from a single goroutine and does no locking. Modes may
// push or pop from inside their own callbacks.
package mode
