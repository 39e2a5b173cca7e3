package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/wwm/internal/runtimepath"
	"github.com/1broseidon/wwm/internal/wm"
)

// Client handles IPC communication with the window manager
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client for the default socket
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for an explicit socket path.
func NewClientWithPath(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    DefaultTimeout + time.Second,
	}
}

func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to wwm: %w (is the window manager running?)", err)
	}
	return conn, nil
}

func writeRequest(conn net.Conn, req *Request) error {
	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func readResponse(reader *bufio.Reader) (*Response, error) {
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("wwm error: %s", resp.Error)
	}
	return &resp, nil
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeRequest(conn, req); err != nil {
		return nil, err
	}
	return readResponse(bufio.NewReader(conn))
}

func (c *Client) sendPayload(cmd CommandType, payload any) (*Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
	}
	return c.sendRequest(&Request{Command: cmd, Payload: data})
}

// Reload asks the window manager to re-read its configuration
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// GetStatus retrieves window manager status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// GetState retrieves the current bar snapshot
func (c *Client) GetState() (*wm.Snapshot, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetState})
	if err != nil {
		return nil, err
	}

	var snap wm.Snapshot
	if err := json.Unmarshal(resp.Data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse state data: %w", err)
	}
	return &snap, nil
}

// ClickWorkspace reports a click on a workspace tag of a monitor's bar.
func (c *Client) ClickWorkspace(monitor, workspace int) error {
	_, err := c.sendPayload(CommandBarClick, BarClickPayload{Monitor: monitor, Workspace: workspace})
	return err
}

// ClickLayout reports a click on a monitor's layout symbol.
func (c *Client) ClickLayout(monitor int) error {
	_, err := c.sendPayload(CommandBarClick, BarClickPayload{Monitor: monitor, LayoutToggle: true})
	return err
}

// RunAction runs an action string such as "view 2" or "layout column".
func (c *Client) RunAction(action string) error {
	_, err := c.sendPayload(CommandRunAction, RunActionPayload{Action: action})
	return err
}

// Subscribe calls fn with every snapshot the window manager publishes, the
// current one first, until ctx is done, the connection drops or fn returns
// an error.
func (c *Client) Subscribe(ctx context.Context, fn func(wm.Snapshot) error) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := writeRequest(conn, &Request{Command: CommandSubscribe}); err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Time{})

	reader := bufio.NewReader(conn)
	for {
		resp, err := readResponse(reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		var snap wm.Snapshot
		if err := json.Unmarshal(resp.Data, &snap); err != nil {
			return fmt.Errorf("failed to parse snapshot: %w", err)
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
}

// Ping checks if the window manager is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
