package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/wwm/internal/config"
	"github.com/1broseidon/wwm/internal/wm"
)

// startServer runs a server on a short socket path and a fake control loop
// that answers events with answer.
func startServer(t *testing.T, answer func(wm.Event) error) (*Server, *Client, <-chan wm.Event) {
	t.Helper()
	dir, err := os.MkdirTemp("", "wwm-ipc")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	sock := filepath.Join(dir, "wwm.sock")

	events := make(chan wm.Event)
	seen := make(chan wm.Event, 16)
	srv, err := NewServer(ServerOptions{
		SocketPath: sock,
		Events:     events,
		LoadConfig: func() (*config.Config, error) { return config.DefaultConfig(), nil },
		Timeout:    2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev := <-events:
				seen <- ev
				err := answer(ev)
				switch e := ev.(type) {
				case wm.BarClick:
					e.Reply <- err
				case wm.RunAction:
					e.Reply <- err
				case wm.Reload:
					e.Reply <- err
				}
			case <-done:
				return
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		srv.Stop()
	})
	return srv, NewClientWithPath(sock), seen
}

func ok(wm.Event) error { return nil }

func TestServer_SocketPermissions(t *testing.T) {
	srv, _, _ := startServer(t, ok)
	info, err := os.Stat(srv.SocketPath())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("socket mode = %o, want 600", perm)
	}
}

func TestServer_BarClickAndLayoutToggle(t *testing.T) {
	_, client, seen := startServer(t, ok)

	if err := client.ClickWorkspace(1, 3); err != nil {
		t.Fatalf("ClickWorkspace: %v", err)
	}
	ev := (<-seen).(wm.BarClick)
	if ev.Monitor != 1 || ev.Workspace != 3 || ev.LayoutToggle {
		t.Fatalf("bar click = %+v", ev)
	}

	if err := client.ClickLayout(2); err != nil {
		t.Fatalf("ClickLayout: %v", err)
	}
	ev = (<-seen).(wm.BarClick)
	if ev.Monitor != 2 || !ev.LayoutToggle {
		t.Fatalf("layout click = %+v", ev)
	}
}

func TestServer_RunActionErrors(t *testing.T) {
	_, client, seen := startServer(t, func(ev wm.Event) error {
		if e, ok := ev.(wm.RunAction); ok && e.Action == "view 9" {
			return wm.ErrUnknownWorkspace
		}
		if e, ok := ev.(wm.RunAction); ok && e.Action == "quit" {
			return wm.ErrQuit
		}
		return nil
	})

	if err := client.RunAction("layout column"); err != nil {
		t.Fatalf("RunAction: %v", err)
	}
	if got := (<-seen).(wm.RunAction).Action; got != "layout column" {
		t.Fatalf("action = %q", got)
	}

	err := client.RunAction("view 9")
	if err == nil || !strings.Contains(err.Error(), wm.ErrUnknownWorkspace.Error()) {
		t.Fatalf("RunAction(view 9) error = %v", err)
	}
	<-seen

	if err := client.RunAction("quit"); err != nil {
		t.Fatalf("quit should be acknowledged, got %v", err)
	}
	<-seen

	// Malformed actions never reach the loop.
	if err := client.RunAction("levitate"); err == nil {
		t.Fatalf("expected an error for an unknown action")
	}
	select {
	case ev := <-seen:
		t.Fatalf("unexpected event %T", ev)
	default:
	}
}

func TestServer_ReloadDeliversConfigAndKeys(t *testing.T) {
	_, client, seen := startServer(t, ok)
	if err := client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	ev := (<-seen).(wm.Reload)
	if ev.Config == nil || ev.Keys == nil || ev.Keys.Len() == 0 {
		t.Fatalf("reload event = %+v", ev)
	}
}

func TestServer_ReloadRejectsBadConfig(t *testing.T) {
	dir, err := os.MkdirTemp("", "wwm-ipc")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)
	events := make(chan wm.Event)
	srv, err := NewServer(ServerOptions{
		SocketPath: filepath.Join(dir, "s"),
		Events:     events,
		LoadConfig: func() (*config.Config, error) { return nil, errors.New("line 3: bad") },
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	err = NewClientWithPath(srv.SocketPath()).Reload()
	if err == nil || !strings.Contains(err.Error(), "line 3: bad") {
		t.Fatalf("Reload error = %v", err)
	}
}

func TestServer_StateAndStatus(t *testing.T) {
	srv, client, _ := startServer(t, ok)
	srv.Publish(wm.Snapshot{
		Status: "load 0.1",
		Monitors: []wm.MonitorSnapshot{
			{ID: 1, Name: "DP-1"},
			{ID: 2, Name: "HDMI-1", Focused: true, Workspaces: []wm.WorkspaceSummary{
				{ID: 1, Name: "1"}, {ID: 2, Name: "web", Active: true},
			}},
		},
	})

	snap, err := client.GetState()
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if snap.Status != "load 0.1" || len(snap.Monitors) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}

	st, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !st.Running || st.Monitors != 2 || st.FocusedMonitor != "HDMI-1" || st.Workspace != "web" {
		t.Fatalf("status = %+v", st)
	}
	if st.PID != os.Getpid() {
		t.Fatalf("pid = %d", st.PID)
	}
}

func TestServer_SubscribeStreamsSnapshots(t *testing.T) {
	srv, client, _ := startServer(t, ok)
	srv.Publish(wm.Snapshot{Status: "first"})

	errDone := errors.New("done")
	var got []string
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Subscribe(ctx, func(snap wm.Snapshot) error {
		got = append(got, snap.Status)
		switch len(got) {
		case 1:
			srv.Publish(wm.Snapshot{Status: "second"})
		case 2:
			return errDone
		}
		return nil
	})
	if !errors.Is(err, errDone) {
		t.Fatalf("Subscribe error = %v", err)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("snapshots = %v", got)
	}
}

func TestServer_SubscribeEndsWithContext(t *testing.T) {
	_, client, _ := startServer(t, ok)
	ctx, cancel := context.WithCancel(context.Background())

	err := client.Subscribe(ctx, func(wm.Snapshot) error {
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Subscribe error = %v, want context.Canceled", err)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	_, client, _ := startServer(t, ok)
	_, err := client.sendRequest(&Request{Command: "NOPE"})
	if err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("error = %v", err)
	}
}

func TestServer_PublishNeverBlocks(t *testing.T) {
	srv, _, _ := startServer(t, ok)
	ch := make(chan wm.Snapshot, 1)
	srv.mu.Lock()
	srv.subscribers[ch] = struct{}{}
	srv.mu.Unlock()

	for i := 0; i < 10; i++ {
		srv.Publish(wm.Snapshot{Status: string(rune('a' + i))})
	}
	if got := (<-ch).Status; got != "j" {
		t.Fatalf("subscriber got %q, want the newest snapshot", got)
	}
}

func TestClient_NotRunning(t *testing.T) {
	client := NewClientWithPath(filepath.Join(t.TempDir(), "missing.sock"))
	if err := client.Ping(); err == nil || !strings.Contains(err.Error(), "is the window manager running") {
		t.Fatalf("Ping error = %v", err)
	}
}
