package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wwm/internal/keys"
	"github.com/1broseidon/wwm/internal/wm"
)

func (s *Server) handleGetState(_ context.Context, _ *mcpsdk.CallToolRequest, args GetStateInput) (*mcpsdk.CallToolResult, GetStateOutput, error) {
	snap, err := s.backend.GetState()
	if err != nil {
		return nil, GetStateOutput{}, err
	}

	out := GetStateOutput{Status: snap.Status, Monitors: make([]wm.MonitorSnapshot, 0, len(snap.Monitors))}
	for _, m := range snap.Monitors {
		if args.Monitor != nil && m.ID != *args.Monitor {
			continue
		}
		out.Monitors = append(out.Monitors, m)
	}
	if args.Monitor != nil && len(out.Monitors) == 0 {
		return nil, GetStateOutput{}, fmt.Errorf("monitor %d: %w", *args.Monitor, wm.ErrUnknownMonitor)
	}
	return nil, out, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	st, err := s.backend.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		Running:        st.Running,
		PID:            st.PID,
		UptimeSeconds:  st.UptimeSeconds,
		Monitors:       st.Monitors,
		FocusedMonitor: st.FocusedMonitor,
		Workspace:      st.Workspace,
	}, nil
}

func (s *Server) handleRunAction(_ context.Context, _ *mcpsdk.CallToolRequest, args RunActionInput) (*mcpsdk.CallToolResult, RunActionOutput, error) {
	// Parse locally for a "did you mean" message before touching the socket.
	if _, err := keys.ParseAction(args.Action); err != nil {
		return nil, RunActionOutput{}, err
	}
	if err := s.backend.RunAction(args.Action); err != nil {
		s.logger.Debug("mcp run_action failed", "action", args.Action, "error", err)
		return nil, RunActionOutput{}, err
	}
	s.logger.Info("mcp run_action", "action", args.Action)
	return nil, RunActionOutput{Action: args.Action, Done: true}, nil
}

func (s *Server) handleClickBar(_ context.Context, _ *mcpsdk.CallToolRequest, args ClickBarInput) (*mcpsdk.CallToolResult, ClickBarOutput, error) {
	if args.LayoutToggle {
		if err := s.backend.ClickLayout(args.Monitor); err != nil {
			return nil, ClickBarOutput{}, err
		}
		return nil, ClickBarOutput{Monitor: args.Monitor, Layout: true}, nil
	}
	if args.Workspace == nil {
		return nil, ClickBarOutput{}, fmt.Errorf("click_bar needs a workspace ID or layout_toggle")
	}
	ws := *args.Workspace
	if args.Monitor < 0 || ws < 0 {
		return nil, ClickBarOutput{}, fmt.Errorf("click_bar: negative ID (monitor %d, workspace %d)", args.Monitor, ws)
	}
	if err := s.backend.ClickWorkspace(args.Monitor, ws); err != nil {
		return nil, ClickBarOutput{}, err
	}
	return nil, ClickBarOutput{Monitor: args.Monitor, Workspace: &ws}, nil
}

func (s *Server) handleListActions(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListActionsInput) (*mcpsdk.CallToolResult, ListActionsOutput, error) {
	return nil, ListActionsOutput{Actions: keys.ActionNames()}, nil
}
