package config

import (
	"fmt"
	"sort"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths are the top-level scalar options plus:
//
//	workspaces.count
//	workspaces.names
//	bar.height
//	bar.position
//	keybinds
//	keybinds.<sequence>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// Paths lists every path Explain accepts for cfg, sorted.
func Paths(cfg *Config) []string {
	values := explainValues(cfg)
	out := make([]string, 0, len(values)+len(cfg.Keybinds))
	for path := range values {
		out = append(out, path)
	}
	for seq := range cfg.Keybinds {
		out = append(out, "keybinds."+seq)
	}
	sort.Strings(out)
	return out
}

func lookupValue(cfg *Config, path string) (any, error) {
	if seq, ok := strings.CutPrefix(path, "keybinds."); ok {
		action, ok := cfg.Keybinds[seq]
		if !ok {
			return nil, fmt.Errorf("no keybind for %q", seq)
		}
		return action, nil
	}
	value, ok := explainValues(cfg)[path]
	if !ok {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	return value, nil
}

func explainValues(cfg *Config) map[string]any {
	return map[string]any{
		"workspaces.count":     cfg.Workspaces.Count,
		"workspaces.names":     cfg.Workspaces.Names,
		"default_layout":       cfg.DefaultLayout,
		"master_ratio":         cfg.MasterRatio,
		"master_ratio_min":     cfg.MasterRatioMin,
		"master_ratio_max":     cfg.MasterRatioMax,
		"master_ratio_step":    cfg.MasterRatioStep,
		"column_count":         cfg.ColumnCount,
		"gap_size":             cfg.GapSize,
		"outer_gap":            cfg.OuterGap,
		"border_width":         cfg.BorderWidth,
		"border_color_normal":  cfg.BorderColorNormal,
		"border_color_focused": cfg.BorderColorFocused,
		"mouse_modifier":       cfg.MouseModifier,
		"move_button":          cfg.MoveButton,
		"resize_button":        cfg.ResizeButton,
		"min_client_size":      cfg.MinClientSize,
		"drag_throttle_ms":     cfg.DragThrottleMS,
		"warp_cursor":          cfg.WarpCursor,
		"focus_follows_mouse":  cfg.FocusFollowsMouse,
		"bar.height":           cfg.Bar.Height,
		"bar.position":         cfg.Bar.Position,
		"primary_output":       cfg.PrimaryOutput,
		"autostart":            cfg.Autostart,
		"keybinds":             cfg.Keybinds,
		"log_level":            cfg.LogLevel,
	}
}
