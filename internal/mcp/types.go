package mcp

import "github.com/1broseidon/wwm/internal/wm"

// GetStateInput is the input for the get_state tool.
type GetStateInput struct {
	Monitor *int `json:"monitor,omitempty" jsonschema:"Only return this monitor ID, counting from 0 (default: all monitors)"`
}

// GetStateOutput is the output for the get_state tool.
type GetStateOutput struct {
	Monitors []wm.MonitorSnapshot `json:"monitors"`
	Status   string               `json:"status,omitempty"`
}

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Running        bool   `json:"running"`
	PID            int    `json:"pid"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	Monitors       int    `json:"monitors"`
	FocusedMonitor string `json:"focused_monitor"`
	Workspace      string `json:"workspace"`
}

// RunActionInput is the input for the run_action tool.
type RunActionInput struct {
	Action string `json:"action" jsonschema:"Action string, e.g. 'view 2', 'layout column', 'spawn xterm', 'focus next'"`
}

// RunActionOutput is the output for the run_action tool.
type RunActionOutput struct {
	Action string `json:"action"`
	Done   bool   `json:"done"`
}

// ClickBarInput is the input for the click_bar tool.
type ClickBarInput struct {
	Monitor      int  `json:"monitor" jsonschema:"Monitor ID as reported by get_state"`
	Workspace    *int `json:"workspace,omitempty" jsonschema:"Workspace ID as reported by get_state, counting from 0"`
	LayoutToggle bool `json:"layout_toggle,omitempty" jsonschema:"Click the layout symbol instead of a workspace"`
}

// ClickBarOutput is the output for the click_bar tool.
type ClickBarOutput struct {
	Monitor   int  `json:"monitor"`
	Workspace *int `json:"workspace,omitempty"`
	Layout    bool `json:"layout_toggle,omitempty"`
}

// ListActionsInput is the input for the list_actions tool.
type ListActionsInput struct{}

// ListActionsOutput is the output for the list_actions tool.
type ListActionsOutput struct {
	Actions []string `json:"actions"`
}
