package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/wwm/internal/config"
	"github.com/1broseidon/wwm/internal/keys"
	"github.com/1broseidon/wwm/internal/wm"
)

// DefaultTimeout bounds how long a command waits for the control loop.
const DefaultTimeout = 5 * time.Second

// ServerOptions configures a Server.
type ServerOptions struct {
	SocketPath string
	// Events is the control loop's input; commands that change state are
	// delivered here and answered through their Reply channel.
	Events chan<- wm.Event
	// LoadConfig reads the configuration for RELOAD. Parsing happens on the
	// connection goroutine so a bad file never reaches the loop.
	LoadConfig func() (*config.Config, error)
	Logger     *slog.Logger
	Timeout    time.Duration
}

// Server handles IPC requests from clients and implements wm.Publisher so
// bars can subscribe to snapshots.
type Server struct {
	socketPath string
	listener   net.Listener
	events     chan<- wm.Event
	loadConfig func() (*config.Config, error)
	logger     *slog.Logger
	timeout    time.Duration
	startTime  time.Time

	mu          sync.Mutex
	latest      wm.Snapshot
	subscribers map[chan wm.Snapshot]struct{}

	shuttingDown bool
	shutdownMu   sync.Mutex
	done         chan struct{}
}

var _ wm.Publisher = (*Server)(nil)

// NewServer creates a new IPC server. A stale socket file at the path is
// removed.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.SocketPath == "" {
		return nil, errors.New("ipc: socket path is required")
	}
	if opts.Events == nil {
		return nil, errors.New("ipc: events channel is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	loadConfig := opts.LoadConfig
	if loadConfig == nil {
		loadConfig = config.Load
	}

	// Remove existing socket if present
	os.Remove(opts.SocketPath)

	return &Server{
		socketPath:  opts.SocketPath,
		events:      opts.Events,
		loadConfig:  loadConfig,
		logger:      logger,
		timeout:     timeout,
		startTime:   time.Now(),
		subscribers: make(map[chan wm.Snapshot]struct{}),
		done:        make(chan struct{}),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping() {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) stopping() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	if req.Command == CommandSubscribe {
		s.handleSubscribe(conn, reader)
		return
	}

	s.writeResponse(conn, s.handleCommand(req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetState:
		resp, _ := NewOKResponse(s.Latest())
		return resp
	case CommandBarClick:
		return s.handleBarClick(req.Payload)
	case CommandRunAction:
		return s.handleRunAction(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload loads and validates the configuration, then hands it to the
// control loop.
func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: received RELOAD")

	cfg, err := s.loadConfig()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	table, err := cfg.KeyTable()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	return s.dispatch(func(reply chan<- error) wm.Event {
		return wm.Reload{Config: cfg, Keys: table, Reply: reply}
	})
}

func (s *Server) handleGetStatus() *Response {
	st := statusFromSnapshot(s.Latest())
	st.PID = os.Getpid()
	st.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	s.mu.Lock()
	st.Subscribers = len(s.subscribers)
	s.mu.Unlock()

	resp, _ := NewOKResponse(st)
	return resp
}

func (s *Server) handleBarClick(payload json.RawMessage) *Response {
	var click BarClickPayload
	if err := json.Unmarshal(payload, &click); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid bar click payload: %v", err))
	}
	return s.dispatch(func(reply chan<- error) wm.Event {
		return wm.BarClick{
			Monitor:      click.Monitor,
			Workspace:    click.Workspace,
			LayoutToggle: click.LayoutToggle,
			Reply:        reply,
		}
	})
}

func (s *Server) handleRunAction(payload json.RawMessage) *Response {
	var run RunActionPayload
	if err := json.Unmarshal(payload, &run); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid action payload: %v", err))
	}
	// Reject malformed actions here so the loop only sees valid ones.
	if _, err := keys.ParseAction(run.Action); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.dispatch(func(reply chan<- error) wm.Event {
		return wm.RunAction{Action: run.Action, Reply: reply}
	})
}

// dispatch sends an event to the control loop and waits for its reply.
func (s *Server) dispatch(build func(reply chan<- error) wm.Event) *Response {
	reply := make(chan error, 1)
	ev := build(reply)

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case s.events <- ev:
	case <-timer.C:
		return NewErrorResponse("window manager is busy")
	case <-s.done:
		return NewErrorResponse("window manager is shutting down")
	}

	select {
	case err := <-reply:
		if err != nil && !errors.Is(err, wm.ErrQuit) {
			return NewErrorResponse(err.Error())
		}
		resp, _ := NewOKResponse(nil)
		return resp
	case <-timer.C:
		return NewErrorResponse("timed out waiting for the window manager")
	case <-s.done:
		return NewErrorResponse("window manager is shutting down")
	}
}

// handleSubscribe streams snapshots until the client goes away or the server
// stops. The current snapshot is sent first.
func (s *Server) handleSubscribe(conn net.Conn, reader *bufio.Reader) {
	ch := make(chan wm.Snapshot, 1)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	first := s.latest
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.subscribers, ch)
		s.mu.Unlock()
	}()

	// The client never sends anything else; EOF means it hung up.
	gone := make(chan struct{})
	go func() {
		io.Copy(io.Discard, reader)
		close(gone)
	}()

	if !s.writeSnapshot(conn, first) {
		return
	}
	for {
		select {
		case snap := <-ch:
			if !s.writeSnapshot(conn, snap) {
				return
			}
		case <-gone:
			return
		case <-s.done:
			return
		}
	}
}

func (s *Server) writeSnapshot(conn net.Conn, snap wm.Snapshot) bool {
	resp, err := NewOKResponse(snap)
	if err != nil {
		s.logger.Warn("marshal snapshot failed", "error", err)
		return false
	}
	conn.SetWriteDeadline(time.Now().Add(s.timeout))
	return s.writeResponse(conn, resp)
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) bool {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "error", err)
		return false
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("failed to send response", "error", err)
		return false
	}
	return true
}

// Publish records snap as the latest state and forwards it to subscribers.
// It never blocks: a subscriber that has not consumed the previous snapshot
// gets it replaced by the newer one.
func (s *Server) Publish(snap wm.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snap
	for ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Latest returns the most recently published snapshot.
func (s *Server) Latest() wm.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
