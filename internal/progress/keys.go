// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// FocusHighlight is how long a focused step stays highlighted.
const FocusHighlight = 300 * time.Millisecond

// Key is a key press with its modifiers.
type Key struct {
	Rune rune
	Ctrl bool
	Alt  bool
}

// ActionKind names what a key press does.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionReset
	ActionFocus
)

// Action is the resolved effect of a key press. Highlight is set for focus
// actions.
type Action struct {
	Kind      ActionKind
	Step      int
	Highlight time.Duration
}

// ResolveKey maps Ctrl+R to reset and the digits 1-5, pressed without Ctrl
// or Alt, to focusing that step.
func ResolveKey(k Key) Action {
	if k.Ctrl && k.Rune == 'r' {
		return Action{Kind: ActionReset}
	}
	if !k.Ctrl && !k.Alt && k.Rune >= '1' && k.Rune <= '5' {
		return Action{Kind: ActionFocus, Step: int(k.Rune - '0'), Highlight: FocusHighlight}
	}
	return Action{Kind: ActionNone}
}

// ParseKey reads a typed key description such as "3", "ctrl+r" or
// "alt+2". Modifier names are case-insensitive.
func ParseKey(s string) (Key, bool) {
	var k Key
	parts := strings.Split(strings.TrimSpace(s), "+")
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(mod) {
		case "ctrl", "control", "^":
			k.Ctrl = true
		case "alt":
			k.Alt = true
		default:
			return Key{}, false
		}
	}
	last := parts[len(parts)-1]
	if utf8.RuneCountInString(last) != 1 {
		return Key{}, false
	}
	k.Rune, _ = utf8.DecodeRuneInString(last)
	if k.Ctrl {
		k.Rune = unicode.ToLower(k.Rune)
	}
	return k, true
}
