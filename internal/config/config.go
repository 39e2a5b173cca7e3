package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/wwm/internal/keys"
	"github.com/1broseidon/wwm/internal/tiling"
	"gopkg.in/yaml.v3"
)

// WorkspacesConfig sets how many workspaces exist and what they are called.
type WorkspacesConfig struct {
	Count int      `yaml:"count"`
	Names []string `yaml:"names,omitempty"` // Unnamed workspaces use their 1-based number.
}

// BarConfig reserves screen space for an external status bar.
type BarConfig struct {
	Height   int    `yaml:"height"`   // 0 = no bar
	Position string `yaml:"position"` // top or bottom
}

// Config is the effective window manager configuration.
type Config struct {
	Workspaces         WorkspacesConfig  `yaml:"workspaces"`
	DefaultLayout      string            `yaml:"default_layout"`
	MasterRatio        float64           `yaml:"master_ratio"`
	MasterRatioMin     float64           `yaml:"master_ratio_min"`
	MasterRatioMax     float64           `yaml:"master_ratio_max"`
	MasterRatioStep    float64           `yaml:"master_ratio_step"`
	ColumnCount        int               `yaml:"column_count"` // 0 = one column per client
	GapSize            int               `yaml:"gap_size"`
	OuterGap           int               `yaml:"outer_gap"`
	BorderWidth        int               `yaml:"border_width"`
	BorderColorNormal  string            `yaml:"border_color_normal"`
	BorderColorFocused string            `yaml:"border_color_focused"`
	MouseModifier      string            `yaml:"mouse_modifier"`
	MoveButton         int               `yaml:"move_button"`
	ResizeButton       int               `yaml:"resize_button"`
	MinClientSize      int               `yaml:"min_client_size"`
	DragThrottleMS     int               `yaml:"drag_throttle_ms"` // 0 = apply every motion
	WarpCursor         bool              `yaml:"warp_cursor"`
	FocusFollowsMouse  bool              `yaml:"focus_follows_mouse"`
	Bar                BarConfig         `yaml:"bar"`
	PrimaryOutput      string            `yaml:"primary_output,omitempty"`
	Autostart          []string          `yaml:"autostart,omitempty"`
	Keybinds           map[string]string `yaml:"keybinds"`
	LogLevel           string            `yaml:"log_level"`
}

const (
	DefaultWorkspaceCount = 9
	MaxWorkspaceCount     = 32
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Workspaces:         WorkspacesConfig{Count: DefaultWorkspaceCount},
		DefaultLayout:      tiling.KindMainStack.String(),
		MasterRatio:        0.55,
		MasterRatioMin:     0.1,
		MasterRatioMax:     0.9,
		MasterRatioStep:    0.02,
		ColumnCount:        0,
		GapSize:            0,
		OuterGap:           0,
		BorderWidth:        2,
		BorderColorNormal:  "#444444",
		BorderColorFocused: "#005577",
		MouseModifier:      "Mod1",
		MoveButton:         1,
		ResizeButton:       3,
		MinClientSize:      32,
		DragThrottleMS:     16,
		WarpCursor:         true,
		FocusFollowsMouse:  true,
		Bar:                BarConfig{Height: 18, Position: "top"},
		Keybinds:           keys.DefaultBindings(),
		LogLevel:           "info",
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Workspaces.Count < 1 || c.Workspaces.Count > MaxWorkspaceCount {
		return &ValidationError{Path: "workspaces.count", Err: fmt.Errorf("workspaces.count must be between 1 and %d", MaxWorkspaceCount)}
	}
	if len(c.Workspaces.Names) > c.Workspaces.Count {
		return &ValidationError{Path: "workspaces.names", Err: fmt.Errorf("%d names given for %d workspaces", len(c.Workspaces.Names), c.Workspaces.Count)}
	}
	if _, err := tiling.ParseKind(c.DefaultLayout); err != nil {
		return &ValidationError{Path: "default_layout", Err: err}
	}
	if c.MasterRatioMin <= 0 || c.MasterRatioMax >= 1 || c.MasterRatioMin > c.MasterRatioMax {
		return &ValidationError{Path: "master_ratio_min", Err: fmt.Errorf("master ratio bounds must satisfy 0 < min <= max < 1")}
	}
	if c.MasterRatio < c.MasterRatioMin || c.MasterRatio > c.MasterRatioMax {
		return &ValidationError{Path: "master_ratio", Err: fmt.Errorf("master_ratio must be between %.2f and %.2f", c.MasterRatioMin, c.MasterRatioMax)}
	}
	if c.MasterRatioStep <= 0 || c.MasterRatioStep >= 0.5 {
		return &ValidationError{Path: "master_ratio_step", Err: fmt.Errorf("master_ratio_step must be > 0 and < 0.5")}
	}
	if c.ColumnCount < 0 {
		return &ValidationError{Path: "column_count", Err: fmt.Errorf("column_count must be >= 0")}
	}
	if c.GapSize < 0 {
		return &ValidationError{Path: "gap_size", Err: fmt.Errorf("gap_size must be >= 0")}
	}
	if c.OuterGap < 0 {
		return &ValidationError{Path: "outer_gap", Err: fmt.Errorf("outer_gap must be >= 0")}
	}
	if c.BorderWidth < 0 {
		return &ValidationError{Path: "border_width", Err: fmt.Errorf("border_width must be >= 0")}
	}
	if _, err := ParseColor(c.BorderColorNormal); err != nil {
		return &ValidationError{Path: "border_color_normal", Err: err}
	}
	if _, err := ParseColor(c.BorderColorFocused); err != nil {
		return &ValidationError{Path: "border_color_focused", Err: err}
	}
	if mods, err := keys.ParseMods(c.MouseModifier); err != nil {
		return &ValidationError{Path: "mouse_modifier", Err: err}
	} else if mods == 0 {
		return &ValidationError{Path: "mouse_modifier", Err: fmt.Errorf("mouse_modifier is required")}
	}
	if c.MoveButton < 1 || c.MoveButton > 5 {
		return &ValidationError{Path: "move_button", Err: fmt.Errorf("move_button must be between 1 and 5")}
	}
	if c.ResizeButton < 1 || c.ResizeButton > 5 {
		return &ValidationError{Path: "resize_button", Err: fmt.Errorf("resize_button must be between 1 and 5")}
	}
	if c.MoveButton == c.ResizeButton {
		return &ValidationError{Path: "resize_button", Err: fmt.Errorf("resize_button must differ from move_button")}
	}
	if c.MinClientSize < 1 {
		return &ValidationError{Path: "min_client_size", Err: fmt.Errorf("min_client_size must be >= 1")}
	}
	if c.DragThrottleMS < 0 {
		return &ValidationError{Path: "drag_throttle_ms", Err: fmt.Errorf("drag_throttle_ms must be >= 0")}
	}
	if c.Bar.Height < 0 {
		return &ValidationError{Path: "bar.height", Err: fmt.Errorf("bar.height must be >= 0")}
	}
	switch c.Bar.Position {
	case "top", "bottom":
	default:
		return &ValidationError{Path: "bar.position", Err: fmt.Errorf("bar.position must be one of: top, bottom")}
	}
	for i, cmd := range c.Autostart {
		if strings.TrimSpace(cmd) == "" {
			return &ValidationError{Path: "autostart", Err: fmt.Errorf("autostart entry %d is empty", i)}
		}
	}
	if err := c.validateKeybinds(); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func (c *Config) validateKeybinds() error {
	seqs := make([]string, 0, len(c.Keybinds))
	for seq := range c.Keybinds {
		seqs = append(seqs, seq)
	}
	sort.Strings(seqs)

	for _, seq := range seqs {
		path := "keybinds." + seq
		if _, err := keys.ParseChord(seq); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if _, err := keys.ParseAction(c.Keybinds[seq]); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
	}
	if _, err := keys.NewTable(c.Keybinds); err != nil {
		return &ValidationError{Path: "keybinds", Err: err}
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	var warnings []string

	if c.Workspaces.Count > 9 {
		bound := 0
		for _, action := range c.Keybinds {
			if a, err := keys.ParseAction(action); err == nil && a.Kind == keys.ActionView && a.Arg >= 9 {
				bound++
			}
		}
		if bound == 0 {
			warnings = append(warnings, fmt.Sprintf("workspaces 10..%d have no view keybind", c.Workspaces.Count))
		}
	}
	if c.BorderWidth*2 >= c.MinClientSize {
		warnings = append(warnings, fmt.Sprintf("border_width %d leaves no content area at min_client_size %d", c.BorderWidth, c.MinClientSize))
	}

	return warnings
}

// Layout returns the layout new workspaces start with.
func (c *Config) Layout() tiling.Layout {
	kind, err := tiling.ParseKind(c.DefaultLayout)
	if err != nil {
		kind = tiling.KindMainStack
	}
	return tiling.Layout{
		Kind:    kind,
		Ratio:   tiling.ClampRatio(c.MasterRatio, c.MasterRatioMin, c.MasterRatioMax),
		Columns: c.ColumnCount,
	}
}

// WorkspaceName returns the display name of workspace index i.
func (c *Config) WorkspaceName(i int) string {
	if i >= 0 && i < len(c.Workspaces.Names) && strings.TrimSpace(c.Workspaces.Names[i]) != "" {
		return c.Workspaces.Names[i]
	}
	return strconv.Itoa(i + 1)
}

// KeyTable builds the keybind table from the configured keybinds.
func (c *Config) KeyTable() (*keys.Table, error) {
	return keys.NewTable(c.Keybinds)
}

// MouseMods returns the modifier mask for mouse drags.
func (c *Config) MouseMods() uint16 {
	mods, err := keys.ParseMods(c.MouseModifier)
	if err != nil || mods == 0 {
		return keys.Mod1
	}
	return mods
}

// BorderPixels returns the normal and focused border colors as pixels.
func (c *Config) BorderPixels() (normal, focused uint32) {
	normal, _ = ParseColor(c.BorderColorNormal)
	focused, _ = ParseColor(c.BorderColorFocused)
	return normal, focused
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseColor parses "#rrggbb" into a 24-bit TrueColor pixel value.
func ParseColor(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return 0, fmt.Errorf("color %q must be in #rrggbb form", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q must be in #rrggbb form", s)
	}
	return uint32(v), nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
