package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawWorkspaces struct {
	Count *int     `yaml:"count"`
	Names []string `yaml:"names"`
}

type RawBar struct {
	Height   *int    `yaml:"height"`
	Position *string `yaml:"position"`
}

// RawConfig is one config file as written. Nil fields were not set and fall
// through to includes or defaults.
type RawConfig struct {
	Include            IncludeList       `yaml:"include"`
	Workspaces         *RawWorkspaces    `yaml:"workspaces"`
	DefaultLayout      *string           `yaml:"default_layout"`
	MasterRatio        *float64          `yaml:"master_ratio"`
	MasterRatioMin     *float64          `yaml:"master_ratio_min"`
	MasterRatioMax     *float64          `yaml:"master_ratio_max"`
	MasterRatioStep    *float64          `yaml:"master_ratio_step"`
	ColumnCount        *int              `yaml:"column_count"`
	GapSize            *int              `yaml:"gap_size"`
	OuterGap           *int              `yaml:"outer_gap"`
	BorderWidth        *int              `yaml:"border_width"`
	BorderColorNormal  *string           `yaml:"border_color_normal"`
	BorderColorFocused *string           `yaml:"border_color_focused"`
	MouseModifier      *string           `yaml:"mouse_modifier"`
	MoveButton         *int              `yaml:"move_button"`
	ResizeButton       *int              `yaml:"resize_button"`
	MinClientSize      *int              `yaml:"min_client_size"`
	DragThrottleMS     *int              `yaml:"drag_throttle_ms"`
	WarpCursor         *bool             `yaml:"warp_cursor"`
	FocusFollowsMouse  *bool             `yaml:"focus_follows_mouse"`
	Bar                *RawBar           `yaml:"bar"`
	PrimaryOutput      *string           `yaml:"primary_output"`
	Autostart          []string          `yaml:"autostart"`
	Keybinds           map[string]string `yaml:"keybinds"`
	LogLevel           *string           `yaml:"log_level"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Workspaces != nil {
		if out.Workspaces == nil {
			out.Workspaces = &RawWorkspaces{}
		}
		merged := *out.Workspaces
		if overlay.Workspaces.Count != nil {
			merged.Count = overlay.Workspaces.Count
		}
		if overlay.Workspaces.Names != nil {
			merged.Names = overlay.Workspaces.Names
		}
		out.Workspaces = &merged
	}
	if overlay.DefaultLayout != nil {
		out.DefaultLayout = overlay.DefaultLayout
	}
	if overlay.MasterRatio != nil {
		out.MasterRatio = overlay.MasterRatio
	}
	if overlay.MasterRatioMin != nil {
		out.MasterRatioMin = overlay.MasterRatioMin
	}
	if overlay.MasterRatioMax != nil {
		out.MasterRatioMax = overlay.MasterRatioMax
	}
	if overlay.MasterRatioStep != nil {
		out.MasterRatioStep = overlay.MasterRatioStep
	}
	if overlay.ColumnCount != nil {
		out.ColumnCount = overlay.ColumnCount
	}
	if overlay.GapSize != nil {
		out.GapSize = overlay.GapSize
	}
	if overlay.OuterGap != nil {
		out.OuterGap = overlay.OuterGap
	}
	if overlay.BorderWidth != nil {
		out.BorderWidth = overlay.BorderWidth
	}
	if overlay.BorderColorNormal != nil {
		out.BorderColorNormal = overlay.BorderColorNormal
	}
	if overlay.BorderColorFocused != nil {
		out.BorderColorFocused = overlay.BorderColorFocused
	}
	if overlay.MouseModifier != nil {
		out.MouseModifier = overlay.MouseModifier
	}
	if overlay.MoveButton != nil {
		out.MoveButton = overlay.MoveButton
	}
	if overlay.ResizeButton != nil {
		out.ResizeButton = overlay.ResizeButton
	}
	if overlay.MinClientSize != nil {
		out.MinClientSize = overlay.MinClientSize
	}
	if overlay.DragThrottleMS != nil {
		out.DragThrottleMS = overlay.DragThrottleMS
	}
	if overlay.WarpCursor != nil {
		out.WarpCursor = overlay.WarpCursor
	}
	if overlay.FocusFollowsMouse != nil {
		out.FocusFollowsMouse = overlay.FocusFollowsMouse
	}
	if overlay.Bar != nil {
		if out.Bar == nil {
			out.Bar = &RawBar{}
		}
		merged := *out.Bar
		if overlay.Bar.Height != nil {
			merged.Height = overlay.Bar.Height
		}
		if overlay.Bar.Position != nil {
			merged.Position = overlay.Bar.Position
		}
		out.Bar = &merged
	}
	if overlay.PrimaryOutput != nil {
		out.PrimaryOutput = overlay.PrimaryOutput
	}
	if overlay.Autostart != nil {
		// Later files append so includes can contribute commands.
		out.Autostart = append(append([]string(nil), out.Autostart...), overlay.Autostart...)
	}
	if overlay.Keybinds != nil {
		merged := make(map[string]string, len(out.Keybinds)+len(overlay.Keybinds))
		for seq, action := range out.Keybinds {
			merged[seq] = action
		}
		for seq, action := range overlay.Keybinds {
			merged[seq] = action
		}
		out.Keybinds = merged
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}

	return out
}
