// Package hid defines the codes a macropad sends to its host and the sink
// interface the host output is written to.
//
// Keyboard codes are USB HID usage IDs from the Keyboard/Keypad page,
// consumer-control codes are usage IDs from the Consumer page. Codes can be
// looked up by their upper-case name, which is how configuration files and
// scripts refer to them.
package hid

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownCode indicates a code name has no entry in the code tables.
var ErrUnknownCode = errors.New("unknown code")

// Keycode is a USB HID keyboard usage ID.
type Keycode uint8

// Keyboard usage IDs.
const (
	KeyA Keycode = 0x04 + iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyOne
	KeyTwo
	KeyThree
	KeyFour
	KeyFive
	KeySix
	KeySeven
	KeyEight
	KeyNine
	KeyZero
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeySpace
	KeyMinus
	KeyEquals
	KeyLeftBracket
	KeyRightBracket
	KeyBackslash
)

// Keyboard usage IDs outside the contiguous letter/digit block.
const (
	KeySemicolon    Keycode = 0x33
	KeyQuote        Keycode = 0x34
	KeyGrave        Keycode = 0x35
	KeyComma        Keycode = 0x36
	KeyPeriod       Keycode = 0x37
	KeySlash        Keycode = 0x38
	KeyCapsLock     Keycode = 0x39
	KeyF1           Keycode = 0x3A
	KeyF2           Keycode = 0x3B
	KeyF3           Keycode = 0x3C
	KeyF4           Keycode = 0x3D
	KeyF5           Keycode = 0x3E
	KeyF6           Keycode = 0x3F
	KeyF7           Keycode = 0x40
	KeyF8           Keycode = 0x41
	KeyF9           Keycode = 0x42
	KeyF10          Keycode = 0x43
	KeyF11          Keycode = 0x44
	KeyF12          Keycode = 0x45
	KeyPrintScreen  Keycode = 0x46
	KeyScrollLock   Keycode = 0x47
	KeyPause        Keycode = 0x48
	KeyInsert       Keycode = 0x49
	KeyHome         Keycode = 0x4A
	KeyPageUp       Keycode = 0x4B
	KeyDelete       Keycode = 0x4C
	KeyEnd          Keycode = 0x4D
	KeyPageDown     Keycode = 0x4E
	KeyRightArrow   Keycode = 0x4F
	KeyLeftArrow    Keycode = 0x50
	KeyDownArrow    Keycode = 0x51
	KeyUpArrow      Keycode = 0x52
	KeyLeftControl  Keycode = 0xE0
	KeyLeftShift    Keycode = 0xE1
	KeyLeftAlt      Keycode = 0xE2
	KeyLeftGUI      Keycode = 0xE3
	KeyRightControl Keycode = 0xE4
	KeyRightShift   Keycode = 0xE5
	KeyRightAlt     Keycode = 0xE6
	KeyRightGUI     Keycode = 0xE7
)

// ConsumerCode is a USB HID consumer-control usage ID.
type ConsumerCode uint16

// Consumer-control usage IDs.
const (
	BrightnessIncrement ConsumerCode = 0x6F
	BrightnessDecrement ConsumerCode = 0x70
	Record              ConsumerCode = 0xB2
	FastForward         ConsumerCode = 0xB3
	Rewind              ConsumerCode = 0xB4
	ScanNextTrack       ConsumerCode = 0xB5
	ScanPreviousTrack   ConsumerCode = 0xB6
	Stop                ConsumerCode = 0xB7
	Eject               ConsumerCode = 0xB8
	PlayPause           ConsumerCode = 0xCD
	Mute                ConsumerCode = 0xE2
	VolumeIncrement     ConsumerCode = 0xE9
	VolumeDecrement     ConsumerCode = 0xEA
)

// MouseButton is a bit in the HID mouse button report.
type MouseButton uint8

// Mouse buttons.
const (
	MouseLeft   MouseButton = 1
	MouseRight  MouseButton = 2
	MouseMiddle MouseButton = 4
)

var keycodeNames = map[string]Keycode{
	"A": KeyA, "B": KeyB, "C": KeyC, "D": KeyD, "E": KeyE, "F": KeyF,
	"G": KeyG, "H": KeyH, "I": KeyI, "J": KeyJ, "K": KeyK, "L": KeyL,
	"M": KeyM, "N": KeyN, "O": KeyO, "P": KeyP, "Q": KeyQ, "R": KeyR,
	"S": KeyS, "T": KeyT, "U": KeyU, "V": KeyV, "W": KeyW, "X": KeyX,
	"Y": KeyY, "Z": KeyZ,
	"ONE": KeyOne, "TWO": KeyTwo, "THREE": KeyThree, "FOUR": KeyFour,
	"FIVE": KeyFive, "SIX": KeySix, "SEVEN": KeySeven, "EIGHT": KeyEight,
	"NINE": KeyNine, "ZERO": KeyZero,
	"ENTER": KeyEnter, "RETURN": KeyEnter, "ESCAPE": KeyEscape,
	"BACKSPACE": KeyBackspace, "TAB": KeyTab, "SPACE": KeySpace,
	"SPACEBAR": KeySpace, "MINUS": KeyMinus, "EQUALS": KeyEquals,
	"LEFT_BRACKET": KeyLeftBracket, "RIGHT_BRACKET": KeyRightBracket,
	"BACKSLASH": KeyBackslash, "SEMICOLON": KeySemicolon, "QUOTE": KeyQuote,
	"GRAVE_ACCENT": KeyGrave, "COMMA": KeyComma, "PERIOD": KeyPeriod,
	"FORWARD_SLASH": KeySlash, "CAPS_LOCK": KeyCapsLock,
	"F1": KeyF1, "F2": KeyF2, "F3": KeyF3, "F4": KeyF4, "F5": KeyF5,
	"F6": KeyF6, "F7": KeyF7, "F8": KeyF8, "F9": KeyF9, "F10": KeyF10,
	"F11": KeyF11, "F12": KeyF12,
	"PRINT_SCREEN": KeyPrintScreen, "SCROLL_LOCK": KeyScrollLock,
	"PAUSE": KeyPause, "INSERT": KeyInsert, "HOME": KeyHome,
	"PAGE_UP": KeyPageUp, "DELETE": KeyDelete, "END": KeyEnd,
	"PAGE_DOWN": KeyPageDown, "RIGHT_ARROW": KeyRightArrow,
	"LEFT_ARROW": KeyLeftArrow, "DOWN_ARROW": KeyDownArrow,
	"UP_ARROW": KeyUpArrow,
	"LEFT_CONTROL": KeyLeftControl, "CONTROL": KeyLeftControl,
	"LEFT_SHIFT": KeyLeftShift, "SHIFT": KeyLeftShift,
	"LEFT_ALT": KeyLeftAlt, "ALT": KeyLeftAlt, "OPTION": KeyLeftAlt,
	"LEFT_GUI": KeyLeftGUI, "GUI": KeyLeftGUI, "WINDOWS": KeyLeftGUI,
	"COMMAND": KeyLeftGUI,
	"RIGHT_CONTROL": KeyRightControl, "RIGHT_SHIFT": KeyRightShift,
	"RIGHT_ALT": KeyRightAlt, "RIGHT_GUI": KeyRightGUI,
}

var consumerNames = map[string]ConsumerCode{
	"BRIGHTNESS_INCREMENT": BrightnessIncrement,
	"BRIGHTNESS_DECREMENT": BrightnessDecrement,
	"RECORD":               Record,
	"FAST_FORWARD":         FastForward,
	"REWIND":               Rewind,
	"SCAN_NEXT_TRACK":      ScanNextTrack,
	"SCAN_PREVIOUS_TRACK":  ScanPreviousTrack,
	"STOP":                 Stop,
	"EJECT":                Eject,
	"PLAY_PAUSE":           PlayPause,
	"MUTE":                 Mute,
	"VOLUME_INCREMENT":     VolumeIncrement,
	"VOLUME_DECREMENT":     VolumeDecrement,
}

var mouseNames = map[string]MouseButton{
	"LEFT":   MouseLeft,
	"RIGHT":  MouseRight,
	"MIDDLE": MouseMiddle,
}

// ParseKeycode returns the keyboard code with the given name.
// Names are case-insensitive; "-" and " " are treated as "_".
func ParseKeycode(name string) (Keycode, error) {
	if code, ok := keycodeNames[normalize(name)]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("%w: keycode %q", ErrUnknownCode, name)
}

// ParseConsumerCode returns the consumer-control code with the given name.
func ParseConsumerCode(name string) (ConsumerCode, error) {
	if code, ok := consumerNames[normalize(name)]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("%w: consumer control %q", ErrUnknownCode, name)
}

// ParseMouseButton returns the mouse button with the given name.
func ParseMouseButton(name string) (MouseButton, error) {
	if b, ok := mouseNames[normalize(name)]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("%w: mouse button %q", ErrUnknownCode, name)
}

// String returns the canonical name of the keycode.
func (k Keycode) String() string {
	return nameOf(keycodeNames, k, fmt.Sprintf("KEY_0x%02X", uint8(k)))
}

// String returns the canonical name of the consumer code.
func (c ConsumerCode) String() string {
	return nameOf(consumerNames, c, fmt.Sprintf("CC_0x%02X", uint16(c)))
}

// String returns the name of the mouse button.
func (b MouseButton) String() string {
	return nameOf(mouseNames, b, fmt.Sprintf("BUTTON_%d", uint8(b)))
}

// KeycodeNames returns all accepted keyboard code names, sorted.
func KeycodeNames() []string {
	return sortedKeys(keycodeNames)
}

// ConsumerCodeNames returns all accepted consumer-control names, sorted.
func ConsumerCodeNames() []string {
	return sortedKeys(consumerNames)
}

func normalize(name string) string {
	name = strings.TrimSpace(strings.ToUpper(name))
	return strings.NewReplacer("-", "_", " ", "_").Replace(name)
}

// nameOf returns the shortest (then alphabetically first) name for a code
// so aliases such as RETURN/ENTER print stably.
func nameOf[C comparable](table map[string]C, code C, fallback string) string {
	best := ""
	for name, c := range table {
		if c != code {
			continue
		}
		if best == "" || len(name) < len(best) || (len(name) == len(best) && name < best) {
			best = name
		}
	}
	if best == "" {
		return fallback
	}
	return best
}

func sortedKeys[C any](table map[string]C) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
