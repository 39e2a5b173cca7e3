package config

import (
	"fmt"
	"strings"
)

// UnbindAction removes a default keybind when used as the action value.
const UnbindAction = "none"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies a merged raw config on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Workspaces != nil {
		if raw.Workspaces.Count != nil {
			cfg.Workspaces.Count = *raw.Workspaces.Count
		}
		if raw.Workspaces.Names != nil {
			cfg.Workspaces.Names = append([]string(nil), raw.Workspaces.Names...)
		}
	}
	if raw.DefaultLayout != nil {
		cfg.DefaultLayout = strings.TrimSpace(*raw.DefaultLayout)
	}
	if raw.MasterRatio != nil {
		cfg.MasterRatio = *raw.MasterRatio
	}
	if raw.MasterRatioMin != nil {
		cfg.MasterRatioMin = *raw.MasterRatioMin
	}
	if raw.MasterRatioMax != nil {
		cfg.MasterRatioMax = *raw.MasterRatioMax
	}
	if raw.MasterRatioStep != nil {
		cfg.MasterRatioStep = *raw.MasterRatioStep
	}
	if raw.ColumnCount != nil {
		cfg.ColumnCount = *raw.ColumnCount
	}
	if raw.GapSize != nil {
		cfg.GapSize = *raw.GapSize
	}
	if raw.OuterGap != nil {
		cfg.OuterGap = *raw.OuterGap
	}
	if raw.BorderWidth != nil {
		cfg.BorderWidth = *raw.BorderWidth
	}
	if raw.BorderColorNormal != nil {
		cfg.BorderColorNormal = *raw.BorderColorNormal
	}
	if raw.BorderColorFocused != nil {
		cfg.BorderColorFocused = *raw.BorderColorFocused
	}
	if raw.MouseModifier != nil {
		cfg.MouseModifier = *raw.MouseModifier
	}
	if raw.MoveButton != nil {
		cfg.MoveButton = *raw.MoveButton
	}
	if raw.ResizeButton != nil {
		cfg.ResizeButton = *raw.ResizeButton
	}
	if raw.MinClientSize != nil {
		cfg.MinClientSize = *raw.MinClientSize
	}
	if raw.DragThrottleMS != nil {
		cfg.DragThrottleMS = *raw.DragThrottleMS
	}
	if raw.WarpCursor != nil {
		cfg.WarpCursor = *raw.WarpCursor
	}
	if raw.FocusFollowsMouse != nil {
		cfg.FocusFollowsMouse = *raw.FocusFollowsMouse
	}
	if raw.Bar != nil {
		if raw.Bar.Height != nil {
			cfg.Bar.Height = *raw.Bar.Height
		}
		if raw.Bar.Position != nil {
			cfg.Bar.Position = strings.ToLower(strings.TrimSpace(*raw.Bar.Position))
		}
	}
	if raw.PrimaryOutput != nil {
		cfg.PrimaryOutput = strings.TrimSpace(*raw.PrimaryOutput)
	}
	if raw.Autostart != nil {
		cfg.Autostart = append([]string(nil), raw.Autostart...)
	}
	for seq, action := range raw.Keybinds {
		if strings.EqualFold(strings.TrimSpace(action), UnbindAction) {
			delete(cfg.Keybinds, seq)
			continue
		}
		cfg.Keybinds[seq] = action
	}
	if raw.LogLevel != nil {
		level := strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if level == "warning" {
			level = "warn"
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}
