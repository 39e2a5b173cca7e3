package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/wwm/internal/keys"
	"github.com/1broseidon/wwm/internal/tiling"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Layout().Kind != tiling.KindMainStack {
		t.Fatalf("expected main-stack default layout, got %v", cfg.Layout().Kind)
	}
	table, err := cfg.KeyTable()
	if err != nil {
		t.Fatalf("default keybinds: %v", err)
	}
	if table.Len() == 0 {
		t.Fatalf("expected default keybinds")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Workspaces.Count != DefaultWorkspaceCount {
		t.Fatalf("expected %d workspaces, got %d", DefaultWorkspaceCount, res.Config.Workspaces.Count)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.MasterRatio != 0.55 {
		t.Fatalf("expected default master_ratio 0.55, got %v", res.Config.MasterRatio)
	}
}

func TestLoadFromPath_OverridesAndExplain(t *testing.T) {
	data := strings.Join([]string{
		"workspaces:",
		"  count: 4",
		"  names: [web, code]",
		"default_layout: column",
		"border_width: 3",
		"bar:",
		"  position: bottom",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Workspaces.Count != 4 || cfg.WorkspaceName(0) != "web" || cfg.WorkspaceName(3) != "4" {
		t.Fatalf("unexpected workspaces: %+v", cfg.Workspaces)
	}
	if cfg.Layout().Kind != tiling.KindColumn {
		t.Fatalf("expected column layout")
	}
	if cfg.Bar.Position != "bottom" || cfg.Bar.Height != 18 {
		t.Fatalf("unexpected bar: %+v", cfg.Bar)
	}

	val, src, err := Explain(res, "border_width")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 3 || src.Kind != SourceFile || src.Line != 5 {
		t.Fatalf("unexpected explain result: %#v %#v", val, src)
	}

	val, src, err = Explain(res, "gap_size")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 0 || src.Kind != SourceDefault {
		t.Fatalf("unexpected explain result: %#v %#v", val, src)
	}

	if _, _, err := Explain(res, "no_such_option"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "gap_size: 2\nmaster_ratio: 0.95\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Path != "master_ratio" || verr.Source.Line != 2 {
		t.Fatalf("unexpected validation error: %+v", verr)
	}
	if !strings.HasPrefix(err.Error(), verr.Source.File+":2:") {
		t.Fatalf("expected file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_KeybindsMergeAndUnbind(t *testing.T) {
	data := strings.Join([]string{
		"keybinds:",
		"  Mod4-Return: spawn alacritty",
		"  Mod1-q: none",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	table, err := res.Config.KeyTable()
	if err != nil {
		t.Fatalf("key table: %v", err)
	}
	action, ok := table.Lookup(keys.Mod4, "Return")
	if !ok || action.Command != "alacritty" {
		t.Fatalf("expected custom binding, got %+v %v", action, ok)
	}
	if _, ok := table.Lookup(keys.Mod1, "q"); ok {
		t.Fatalf("expected Mod1-q to be unbound")
	}
	if _, ok := table.Lookup(keys.Mod1, "j"); !ok {
		t.Fatalf("expected defaults to survive")
	}
}

func TestLoadFromPath_UnknownActionSuggests(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "keybinds:\n  Mod1-z: toggle_fulscreen\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), `did you mean "toggle_fullscreen"`) {
		t.Fatalf("expected suggestion, got %v", err)
	}
	if !strings.Contains(err.Error(), "keybinds.Mod1-z") {
		t.Fatalf("expected keybind path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, configD, "10-base.yaml", "gap_size: 5\nautostart: [\"feh --bg-scale bg.png\"]\n")
	writeConfig(t, configD, "20-override.yaml", "gap_size: 6\nouter_gap: 4\n")

	main := strings.Join([]string{
		"include:",
		"  - config.d",
		"gap_size: 7",
		"autostart: [\"xsetroot -name wwm\"]",
		"",
	}, "\n")
	path := writeConfig(t, dir, "config.yaml", main)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.GapSize != 7 {
		t.Fatalf("expected gap_size to be 7, got %d", res.Config.GapSize)
	}
	if res.Config.OuterGap != 4 {
		t.Fatalf("expected outer_gap 4 from include, got %d", res.Config.OuterGap)
	}
	if len(res.Config.Autostart) != 2 || res.Config.Autostart[1] != "xsetroot -name wwm" {
		t.Fatalf("unexpected autostart: %v", res.Config.Autostart)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestDefaultConfigPath_UsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	if path != filepath.Join(home, ".config", "wwm", "config.yaml") {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero workspaces", func(c *Config) { c.Workspaces.Count = 0 }, "workspaces.count"},
		{"bad layout", func(c *Config) { c.DefaultLayout = "spiral" }, "default_layout"},
		{"inverted bounds", func(c *Config) { c.MasterRatioMin = 0.8; c.MasterRatioMax = 0.2 }, "master_ratio_min"},
		{"bad color", func(c *Config) { c.BorderColorFocused = "blue" }, "border_color_focused"},
		{"bad modifier", func(c *Config) { c.MouseModifier = "Hyper" }, "mouse_modifier"},
		{"same buttons", func(c *Config) { c.ResizeButton = c.MoveButton }, "resize_button"},
		{"bar position", func(c *Config) { c.Bar.Position = "left" }, "bar.position"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"bad chord", func(c *Config) { c.Keybinds["Hyper-x"] = "quit" }, "keybinds.Hyper-x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	px, err := ParseColor("#005577")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if px != 0x005577 {
		t.Fatalf("ParseColor = %#x", px)
	}
	for _, bad := range []string{"005577", "#05577", "#gg0000"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) expected error", bad)
		}
	}
}
