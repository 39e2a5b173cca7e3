package keys

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
)

// Modifier masks relevant for bindings. Lock and the lock-like modifiers
// detected at runtime are stripped with CleanMods before lookup.
const (
	ModShift   = uint16(xproto.ModMaskShift)
	ModLock    = uint16(xproto.ModMaskLock)
	ModControl = uint16(xproto.ModMaskControl)
	Mod1       = uint16(xproto.ModMask1)
	Mod2       = uint16(xproto.ModMask2)
	Mod3       = uint16(xproto.ModMask3)
	Mod4       = uint16(xproto.ModMask4)
	Mod5       = uint16(xproto.ModMask5)

	modAll = ModShift | ModLock | ModControl | Mod1 | Mod2 | Mod3 | Mod4 | Mod5
)

var modNames = map[string]uint16{
	"shift":   ModShift,
	"lock":    ModLock,
	"control": ModControl,
	"ctrl":    ModControl,
	"mod1":    Mod1,
	"alt":     Mod1,
	"mod2":    Mod2,
	"mod3":    Mod3,
	"mod4":    Mod4,
	"super":   Mod4,
	"mod5":    Mod5,
}

// ParseMods parses a modifier name such as "Mod1" or "super".
func ParseMods(s string) (uint16, error) {
	var mask uint16
	for _, part := range strings.Split(s, "-") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, ok := modNames[strings.ToLower(part)]
		if !ok {
			return 0, fmt.Errorf("unknown modifier %q", part)
		}
		mask |= m
	}
	return mask, nil
}

// CleanMods drops button masks, CapsLock and the ignore mask (NumLock,
// ScrollLock) from a key or button state.
func CleanMods(state uint16, ignore uint16) uint16 {
	return state & modAll &^ (ModLock | ignore)
}

// Chord is a modifier mask plus a key name as reported by the keyboard
// mapping for the unshifted column ("a", "Return", "1", "comma").
type Chord struct {
	Mods uint16
	Key  string
}

// ParseChord parses a key sequence such as "Mod1-Shift-Return".
func ParseChord(seq string) (Chord, error) {
	parts := strings.Split(strings.TrimSpace(seq), "-")
	if len(parts) == 0 || strings.TrimSpace(parts[len(parts)-1]) == "" {
		return Chord{}, fmt.Errorf("key sequence %q has no key", seq)
	}
	key := normalizeKey(parts[len(parts)-1])
	mods, err := ParseMods(strings.Join(parts[:len(parts)-1], "-"))
	if err != nil {
		return Chord{}, fmt.Errorf("key sequence %q: %w", seq, err)
	}
	return Chord{Mods: mods, Key: key}, nil
}

// String renders the chord in the form accepted by ParseChord.
func (c Chord) String() string {
	var parts []string
	for _, m := range []struct {
		mask uint16
		name string
	}{
		{ModControl, "Control"},
		{Mod1, "Mod1"},
		{Mod2, "Mod2"},
		{Mod3, "Mod3"},
		{Mod4, "Mod4"},
		{Mod5, "Mod5"},
		{ModShift, "Shift"},
	} {
		if c.Mods&m.mask != 0 {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "-")
}

func normalizeKey(key string) string {
	if key == " " {
		return "space"
	}
	key = strings.TrimSpace(key)
	if len(key) == 1 {
		if name, ok := punctNames[key[0]]; ok {
			return name
		}
		return strings.ToLower(key)
	}
	return key
}

// punctNames maps single-character keysym strings back to their X names so
// "comma" in a binding matches the "," reported for the key.
var punctNames = map[byte]string{
	'!': "exclam", '@': "at", '#': "numbersign", '$': "dollar", '%': "percent",
	'^': "asciicircum", '&': "ampersand", '*': "asterisk", '(': "parenleft",
	')': "parenright", '[': "bracketleft", ']': "bracketright", '{': "braceleft",
	'}': "braceright", '-': "minus", '_': "underscore", '=': "equal", '+': "plus",
	'\\': "backslash", '|': "bar", ';': "semicolon", ':': "colon", '\'': "apostrophe",
	'"': "quotedbl", '<': "less", '>': "greater", ',': "comma", '.': "period",
	'/': "slash", '?': "question", '`': "grave", '~': "asciitilde",
}

// Binding ties a chord to an action.
type Binding struct {
	Sequence string
	Chord    Chord
	Action   Action
}

// Table is the keybind table consulted on every key press.
type Table struct {
	bindings map[Chord]Binding
}

// NewTable parses key sequence -> action string pairs. Two sequences that
// resolve to the same chord are rejected.
func NewTable(binds map[string]string) (*Table, error) {
	t := &Table{bindings: make(map[Chord]Binding, len(binds))}

	seqs := make([]string, 0, len(binds))
	for seq := range binds {
		seqs = append(seqs, seq)
	}
	sort.Strings(seqs)

	for _, seq := range seqs {
		chord, err := ParseChord(seq)
		if err != nil {
			return nil, err
		}
		action, err := ParseAction(binds[seq])
		if err != nil {
			return nil, fmt.Errorf("keybind %q: %w", seq, err)
		}
		if prev, ok := t.bindings[chord]; ok {
			return nil, fmt.Errorf("keybind %q duplicates %q", seq, prev.Sequence)
		}
		t.bindings[chord] = Binding{Sequence: seq, Chord: chord, Action: action}
	}
	return t, nil
}

// Lookup returns the action bound to mods+key. mods must already be cleaned.
func (t *Table) Lookup(mods uint16, key string) (Action, bool) {
	if t == nil {
		return Action{}, false
	}
	b, ok := t.bindings[Chord{Mods: mods, Key: normalizeKey(key)}]
	if !ok {
		return Action{}, false
	}
	return b.Action, true
}

// Bindings returns all bindings sorted by sequence.
func (t *Table) Bindings() []Binding {
	if t == nil {
		return nil
	}
	out := make([]Binding, 0, len(t.bindings))
	for _, b := range t.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bindings)
}

// DefaultBindings returns the built-in Mod1 keybinds.
func DefaultBindings() map[string]string {
	binds := map[string]string{
		"Mod1-Shift-Return": "spawn xterm",
		"Mod1-p":            "spawn dmenu_run",
		"Mod1-j":            "focus next",
		"Mod1-k":            "focus prev",
		"Mod1-Shift-j":      "move next",
		"Mod1-Shift-k":      "move prev",
		"Mod1-Shift-h":      "ratio -",
		"Mod1-Shift-l":      "ratio +",
		"Mod1-Shift-t":      "layout main-stack",
		"Mod1-Shift-c":      "layout column",
		"Mod1-Shift-f":      "layout floating",
		"Mod1-space":        "cycle_layout",
		"Mod1-Shift-space":  "unfloat",
		"Mod1-t":            "toggle_floating",
		"Mod1-Return":       "zoom",
		"Mod1-h":            "focus_monitor prev",
		"Mod1-l":            "focus_monitor next",
		"Mod1-Shift-comma":  "send_monitor prev",
		"Mod1-Shift-period": "send_monitor next",
		"Mod1-F11":          "toggle_fullscreen",
		"Mod1-Shift-q":      "close",
		"Mod1-q":            "quit",
	}
	for i := 1; i <= 9; i++ {
		binds[fmt.Sprintf("Mod1-%d", i)] = fmt.Sprintf("view %d", i)
		binds[fmt.Sprintf("Mod1-Shift-%d", i)] = fmt.Sprintf("send %d", i)
	}
	return binds
}
