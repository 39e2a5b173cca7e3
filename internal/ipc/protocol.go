package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/wwm/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload    CommandType = "RELOAD"
	CommandGetStatus CommandType = "GET_STATUS"
	CommandGetState  CommandType = "GET_STATE"
	CommandSubscribe CommandType = "SUBSCRIBE"
	CommandBarClick  CommandType = "BAR_CLICK"
	CommandRunAction CommandType = "RUN_ACTION"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client. SUBSCRIBE
// streams one Response per snapshot on the same connection.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Running        bool   `json:"running"`
	PID            int    `json:"pid"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	Monitors       int    `json:"monitors"`
	FocusedMonitor string `json:"focused_monitor"`
	Workspace      string `json:"workspace"`
	Subscribers    int    `json:"subscribers"`
}

// BarClickPayload is a click on a bar: a workspace tag, or the layout symbol
// when LayoutToggle is set.
type BarClickPayload struct {
	Monitor      int  `json:"monitor"`
	Workspace    int  `json:"workspace"`
	LayoutToggle bool `json:"layout_toggle,omitempty"`
}

// RunActionPayload carries an action string such as "view 2".
type RunActionPayload struct {
	Action string `json:"action"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// statusFromSnapshot summarizes the latest snapshot for GET_STATUS.
func statusFromSnapshot(snap wm.Snapshot) StatusData {
	st := StatusData{Running: true, Monitors: len(snap.Monitors)}
	for _, m := range snap.Monitors {
		if !m.Focused {
			continue
		}
		st.FocusedMonitor = m.Name
		for _, w := range m.Workspaces {
			if w.Active {
				st.Workspace = w.Name
			}
		}
	}
	return st
}
