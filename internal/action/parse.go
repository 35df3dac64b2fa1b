package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/onionpad/internal/hid"
)

// ErrInvalidSpec indicates an action spec could not be parsed.
var ErrInvalidSpec = errors.New("invalid action spec")

// SpecError describes a spec that failed to parse.
type SpecError struct {
	Spec string
	Err  error
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("action %q: %v", e.Spec, e.Err)
}

func (e *SpecError) Unwrap() []error {
	return []error{ErrInvalidSpec, e.Err}
}

// Parse converts a textual action spec into an Action.
//
// Accepted forms:
//
//	text:<string>          type a string (\n and \t are unescaped)
//	key:<NAME>             press a key
//	release:<NAME>         release a key
//	cc:<NAME>              send a consumer-control code
//	mouse:<NAME>           press a mouse button
//	mouseup:<NAME>         release a mouse button
//	move:<x>,<y>[,<wheel>] move the pointer
func Parse(spec string) (Action, error) {
	return parse(spec, nil)
}

// Resolver handles spec kinds that Parse does not know. It reports false
// when it does not handle kind either.
type Resolver func(kind, arg string) (Action, bool, error)

func parse(spec string, resolve Resolver) (Action, error) {
	kind, arg, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, &SpecError{Spec: spec, Err: errors.New("missing ':'")}
	}

	var (
		a   Action
		err error
	)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "text":
		a = Text(unescape(arg))
	case "key":
		var code hid.Keycode
		code, err = hid.ParseKeycode(arg)
		a = Press(code)
	case "release":
		var code hid.Keycode
		code, err = hid.ParseKeycode(arg)
		a = Release(code)
	case "cc":
		var code hid.ConsumerCode
		code, err = hid.ParseConsumerCode(arg)
		a = Consumer(code)
	case "mouse":
		var b hid.MouseButton
		b, err = hid.ParseMouseButton(arg)
		a = Mouse{Button: b}
	case "mouseup":
		var b hid.MouseButton
		b, err = hid.ParseMouseButton(arg)
		a = Mouse{Button: b, Release: true}
	case "move":
		a, err = parseMove(arg)
	default:
		handled := false
		if resolve != nil {
			a, handled, err = resolve(strings.ToLower(strings.TrimSpace(kind)), arg)
		}
		if !handled && err == nil {
			err = fmt.Errorf("unknown action kind %q", kind)
		}
	}
	if err != nil {
		return nil, &SpecError{Spec: spec, Err: err}
	}
	return a, nil
}

// ParseAll parses every spec. An empty list yields nil, a single spec
// yields that action and more than one yields a Sequence.
func ParseAll(specs []string) (Action, error) {
	return ParseAllWith(specs, nil)
}

// ParseAllWith is ParseAll with an additional resolver for custom kinds.
func ParseAllWith(specs []string, resolve Resolver) (Action, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	actions := make([]Action, 0, len(specs))
	for _, spec := range specs {
		a, err := parse(spec, resolve)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	if len(actions) == 1 {
		return actions[0], nil
	}
	return Seq(actions...), nil
}

func parseMove(arg string) (Action, error) {
	parts := strings.Split(arg, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("move wants x,y[,wheel], got %q", arg)
	}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("move component %d: %w", i, err)
		}
		vals[i] = n
	}
	return MouseMove{X: vals[0], Y: vals[1], Wheel: vals[2]}, nil
}

func unescape(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`).Replace(s)
}
