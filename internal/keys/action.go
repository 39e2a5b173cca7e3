package keys

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/wwm/internal/tiling"
	"github.com/agnivade/levenshtein"
)

// ActionKind identifies what a keybind, bar click or IPC command does.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSpawn
	ActionView
	ActionSend
	ActionCycleLayout
	ActionSetLayout
	ActionRatio
	ActionToggleFloating
	ActionUnfloat
	ActionToggleFullscreen
	ActionFocus
	ActionMove
	ActionZoom
	ActionFocusMonitor
	ActionSendMonitor
	ActionClose
	ActionQuit
)

var actionNames = map[string]ActionKind{
	"spawn":             ActionSpawn,
	"view":              ActionView,
	"send":              ActionSend,
	"cycle_layout":      ActionCycleLayout,
	"layout":            ActionSetLayout,
	"ratio":             ActionRatio,
	"toggle_floating":   ActionToggleFloating,
	"unfloat":           ActionUnfloat,
	"toggle_fullscreen": ActionToggleFullscreen,
	"focus":             ActionFocus,
	"move":              ActionMove,
	"zoom":              ActionZoom,
	"focus_monitor":     ActionFocusMonitor,
	"send_monitor":      ActionSendMonitor,
	"close":             ActionClose,
	"quit":              ActionQuit,
}

// String returns the action name as written in config.
func (k ActionKind) String() string {
	for name, kind := range actionNames {
		if kind == k {
			return name
		}
	}
	return "none"
}

// Action is a parsed action string such as "view 3" or "spawn xterm".
//
// Arg holds a workspace index (0-based) for view/send and a direction
// (+1 or -1) for ratio, focus, move, focus_monitor and send_monitor.
type Action struct {
	Kind    ActionKind
	Arg     int
	Layout  tiling.Kind
	Command string
}

// ActionNames returns every known action name, sorted.
func ActionNames() []string {
	names := make([]string, 0, len(actionNames))
	for name := range actionNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseAction parses an action string. Unknown names produce an error that
// suggests the closest known action.
func ParseAction(s string) (Action, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("action is empty")
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]
	kind, ok := actionNames[name]
	if !ok {
		if suggestion := Suggest(name); suggestion != "" {
			return Action{}, fmt.Errorf("unknown action %q (did you mean %q?)", fields[0], suggestion)
		}
		return Action{}, fmt.Errorf("unknown action %q", fields[0])
	}

	action := Action{Kind: kind}
	switch kind {
	case ActionSpawn:
		// Keep the command as written after the action name.
		cmd := strings.TrimSpace(strings.TrimSpace(s)[len(fields[0]):])
		if cmd == "" {
			return Action{}, fmt.Errorf("spawn requires a command")
		}
		action.Command = cmd
	case ActionView, ActionSend:
		if len(args) != 1 {
			return Action{}, fmt.Errorf("%s requires a workspace number", name)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return Action{}, fmt.Errorf("%s: invalid workspace number %q", name, args[0])
		}
		action.Arg = n - 1
	case ActionSetLayout:
		if len(args) != 1 {
			return Action{}, fmt.Errorf("layout requires a layout name")
		}
		layout, err := tiling.ParseKind(args[0])
		if err != nil {
			return Action{}, err
		}
		action.Layout = layout
	case ActionRatio:
		if len(args) != 1 {
			return Action{}, fmt.Errorf("ratio requires + or -")
		}
		switch args[0] {
		case "+", "inc", "increase":
			action.Arg = 1
		case "-", "dec", "decrease":
			action.Arg = -1
		default:
			return Action{}, fmt.Errorf("ratio: expected + or -, got %q", args[0])
		}
	case ActionFocus, ActionMove, ActionFocusMonitor, ActionSendMonitor:
		if len(args) != 1 {
			return Action{}, fmt.Errorf("%s requires next or prev", name)
		}
		dir, err := parseDirection(args[0])
		if err != nil {
			return Action{}, fmt.Errorf("%s: %w", name, err)
		}
		action.Arg = dir
	default:
		if len(args) != 0 {
			return Action{}, fmt.Errorf("%s takes no arguments", name)
		}
	}
	return action, nil
}

func parseDirection(s string) (int, error) {
	switch strings.ToLower(s) {
	case "next", "+", "+1":
		return 1, nil
	case "prev", "previous", "-", "-1":
		return -1, nil
	default:
		return 0, fmt.Errorf("expected next or prev, got %q", s)
	}
}

// String formats the action back into its config form.
func (a Action) String() string {
	name := a.Kind.String()
	switch a.Kind {
	case ActionSpawn:
		return name + " " + a.Command
	case ActionView, ActionSend:
		return fmt.Sprintf("%s %d", name, a.Arg+1)
	case ActionSetLayout:
		return name + " " + a.Layout.String()
	case ActionRatio:
		if a.Arg < 0 {
			return name + " -"
		}
		return name + " +"
	case ActionFocus, ActionMove, ActionFocusMonitor, ActionSendMonitor:
		if a.Arg < 0 {
			return name + " prev"
		}
		return name + " next"
	default:
		return name
	}
}

// Suggest returns the known action name closest to name, or "" when nothing
// is close enough to be a plausible typo.
func Suggest(name string) string {
	best := ""
	bestDist := -1
	for _, candidate := range ActionNames() {
		dist := levenshtein.ComputeDistance(name, candidate)
		if bestDist < 0 || dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	if bestDist < 0 || bestDist > max(2, len(name)/3) {
		return ""
	}
	return best
}
