package keys

import (
	"strings"
	"testing"

	"github.com/1broseidon/wwm/internal/tiling"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"view 3", Action{Kind: ActionView, Arg: 2}},
		{"send 1", Action{Kind: ActionSend, Arg: 0}},
		{"spawn xterm -e htop", Action{Kind: ActionSpawn, Command: "xterm -e htop"}},
		{"layout column", Action{Kind: ActionSetLayout, Layout: tiling.KindColumn}},
		{"ratio -", Action{Kind: ActionRatio, Arg: -1}},
		{"focus next", Action{Kind: ActionFocus, Arg: 1}},
		{"send_monitor prev", Action{Kind: ActionSendMonitor, Arg: -1}},
		{"quit", Action{Kind: ActionQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			if err != nil {
				t.Fatalf("ParseAction: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			again, err := ParseAction(got.String())
			if err != nil || again != got {
				t.Fatalf("String() %q does not parse back: %+v, %v", got.String(), again, err)
			}
		})
	}
}

func TestParseAction_Errors(t *testing.T) {
	for _, in := range []string{"", "view", "view 0", "view x", "spawn", "ratio up", "focus left", "quit now", "layout spiral"} {
		if _, err := ParseAction(in); err == nil {
			t.Errorf("ParseAction(%q) expected error", in)
		}
	}
}

func TestParseAction_SuggestsClosestName(t *testing.T) {
	_, err := ParseAction("veiw 2")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), `did you mean "view"`) {
		t.Fatalf("missing suggestion: %v", err)
	}

	if got := Suggest("xyzzyplugh"); got != "" {
		t.Fatalf("expected no suggestion, got %q", got)
	}
}

func TestParseChord(t *testing.T) {
	c, err := ParseChord("Mod1-Shift-Return")
	if err != nil {
		t.Fatalf("ParseChord: %v", err)
	}
	if c.Mods != Mod1|ModShift || c.Key != "Return" {
		t.Fatalf("unexpected chord: %+v", c)
	}

	c, err = ParseChord("super-J")
	if err != nil {
		t.Fatalf("ParseChord: %v", err)
	}
	if c.Mods != Mod4 || c.Key != "j" {
		t.Fatalf("unexpected chord: %+v", c)
	}

	if _, err := ParseChord("Hyper-x"); err == nil {
		t.Fatalf("expected unknown modifier error")
	}
	if _, err := ParseChord("Mod1-"); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestCleanMods(t *testing.T) {
	state := Mod1 | ModLock | Mod2 | 0x100 // Button1 mask
	if got := CleanMods(state, Mod2); got != Mod1 {
		t.Fatalf("CleanMods = %#x, want %#x", got, Mod1)
	}
}

func TestTableLookup(t *testing.T) {
	table, err := NewTable(map[string]string{
		"Mod1-j":       "focus next",
		"Mod1-Shift-1": "send 1",
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	action, ok := table.Lookup(Mod1, "j")
	if !ok || action.Kind != ActionFocus || action.Arg != 1 {
		t.Fatalf("unexpected lookup result: %+v %v", action, ok)
	}
	action, ok = table.Lookup(Mod1|ModShift, "1")
	if !ok || action.Kind != ActionSend || action.Arg != 0 {
		t.Fatalf("unexpected lookup result: %+v %v", action, ok)
	}
	if _, ok := table.Lookup(Mod4, "j"); ok {
		t.Fatalf("expected miss for unbound modifier")
	}
	if table.Len() != 2 {
		t.Fatalf("Len = %d", table.Len())
	}
}

func TestTableLookup_PunctuationKeysyms(t *testing.T) {
	table, err := NewTable(map[string]string{
		"Mod1-Shift-comma": "send_monitor prev",
		"Mod1-space":       "cycle_layout",
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if _, ok := table.Lookup(Mod1|ModShift, ","); !ok {
		t.Fatalf("\",\" did not match the comma binding")
	}
	if _, ok := table.Lookup(Mod1, " "); !ok {
		t.Fatalf("\" \" did not match the space binding")
	}
	if _, ok := table.Lookup(Mod1, "space"); !ok {
		t.Fatalf("named keysym did not match")
	}
}

func TestNewTable_RejectsDuplicatesAndBadActions(t *testing.T) {
	if _, err := NewTable(map[string]string{"Mod1-j": "focus next", "alt-J": "focus prev"}); err == nil {
		t.Fatalf("expected duplicate chord error")
	}
	if _, err := NewTable(map[string]string{"Mod1-j": "foucs next"}); err == nil {
		t.Fatalf("expected unknown action error")
	}
}

func TestDefaultBindingsParse(t *testing.T) {
	table, err := NewTable(DefaultBindings())
	if err != nil {
		t.Fatalf("default bindings invalid: %v", err)
	}
	if _, ok := table.Lookup(Mod1, "q"); !ok {
		t.Fatalf("quit binding missing")
	}
	for _, b := range table.Bindings() {
		if b.Chord.Mods&Mod1 == 0 {
			t.Errorf("binding %s lacks Mod1", b.Sequence)
		}
	}
}
