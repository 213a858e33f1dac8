package keybindings

import (
	"unicode"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// KeyAction represents the action to take for a key press
type KeyAction int

const (
	ActionNone KeyAction = iota
	ActionSubmit
	ActionBackspace
	ActionQuit
)

func (a KeyAction) String() string {
	switch a {
	case ActionSubmit:
		return "submit"
	case ActionBackspace:
		return "backspace"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// TranslateKey maps a GLFW key event to a chat action. Printable text
// arrives through the char callback instead; see TranslateChar.
func TranslateKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) KeyAction {
	if action == glfw.Release {
		return ActionNone
	}
	ctrl := mods&glfw.ModControl != 0

	switch key {
	case glfw.KeyEnter, glfw.KeyKPEnter:
		// Holding Enter must not resend the question
		if action == glfw.Repeat {
			return ActionNone
		}
		return ActionSubmit
	case glfw.KeyBackspace:
		return ActionBackspace
	case glfw.KeyEscape:
		if action == glfw.Press {
			return ActionQuit
		}
	case glfw.KeyQ:
		if ctrl && action == glfw.Press {
			return ActionQuit
		}
	}
	return ActionNone
}

// TranslateChar filters a char-callback rune. It reports false for runes the
// input box should not receive.
func TranslateChar(char rune, mods glfw.ModifierKey) (rune, bool) {
	if mods&(glfw.ModControl|glfw.ModAlt|glfw.ModSuper) != 0 {
		return 0, false
	}
	if char == unicode.ReplacementChar || !unicode.IsPrint(char) {
		return 0, false
	}
	return char, true
}
