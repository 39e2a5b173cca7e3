package wm

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/1broseidon/wwm/internal/keys"
	"github.com/1broseidon/wwm/internal/tiling"
)

var errGone = errors.New("bad window")

// fakeServer records every request the dispatcher issues.
type fakeServer struct {
	windows map[WindowID]WindowInfo
	outputs []Output
	keysyms map[uint8]string
	status  string

	calls      []string
	configured map[WindowID]tiling.Rect
	borders    map[WindowID]int
	notified   map[WindowID]tiling.Rect
	mapped     map[WindowID]bool
	pixels     map[WindowID]uint32
	fullscreen map[WindowID]bool
	stack      []WindowID
	clientList []WindowID
	desktops   []string
	desktop    int
	focus      WindowID
	warps      [][2]int
	closed     []WindowID

	pointerGrabbed bool
	grabPointerErr error
	serverGrabs    int
	keyGrabs       int
}

func newFakeServer(outputs ...Output) *fakeServer {
	return &fakeServer{
		windows:    make(map[WindowID]WindowInfo),
		outputs:    outputs,
		keysyms:    make(map[uint8]string),
		configured: make(map[WindowID]tiling.Rect),
		borders:    make(map[WindowID]int),
		notified:   make(map[WindowID]tiling.Rect),
		mapped:     make(map[WindowID]bool),
		pixels:     make(map[WindowID]uint32),
		fullscreen: make(map[WindowID]bool),
	}
}

func (f *fakeServer) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// count returns how many recorded calls start with prefix.
func (f *fakeServer) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// index returns the position of the first call equal to call, or -1.
func (f *fakeServer) index(call string) int {
	return slices.Index(f.calls, call)
}

func (f *fakeServer) reset() {
	f.calls = nil
}

func (f *fakeServer) addWindow(id WindowID, info WindowInfo) {
	f.windows[id] = info
}

func (f *fakeServer) Inspect(w WindowID) (WindowInfo, error) {
	info, ok := f.windows[w]
	if !ok {
		return WindowInfo{}, errGone
	}
	return info, nil
}

func (f *fakeServer) Title(w WindowID) (string, error) {
	info, ok := f.windows[w]
	if !ok {
		return "", errGone
	}
	return info.Title, nil
}

func (f *fakeServer) SizeHints(w WindowID) (SizeHints, error) {
	info, ok := f.windows[w]
	if !ok {
		return SizeHints{}, errGone
	}
	return info.Hints, nil
}

func (f *fakeServer) TransientFor(w WindowID) (WindowID, error) {
	info, ok := f.windows[w]
	if !ok {
		return 0, errGone
	}
	return info.TransientFor, nil
}

func (f *fakeServer) RootStatus() string { return f.status }

func (f *fakeServer) InitialOutputs() ([]Output, error) {
	return slices.Clone(f.outputs), nil
}

func (f *fakeServer) Outputs() ([]Output, error) {
	return slices.Clone(f.outputs), nil
}

func (f *fakeServer) Keysym(code uint8) string { return f.keysyms[code] }

func (f *fakeServer) Manage(w WindowID) error {
	f.record("manage %#x", w)
	return nil
}

func (f *fakeServer) Unmanage(w WindowID) error {
	f.record("unmanage %#x", w)
	return nil
}

func (f *fakeServer) Map(w WindowID) error {
	f.record("map %#x", w)
	f.mapped[w] = true
	return nil
}

func (f *fakeServer) Unmap(w WindowID) error {
	f.record("unmap %#x", w)
	f.mapped[w] = false
	return nil
}

func (f *fakeServer) Configure(w WindowID, r tiling.Rect, border int) error {
	f.record("configure %#x", w)
	f.configured[w] = r
	f.borders[w] = border
	return nil
}

func (f *fakeServer) NotifyGeometry(w WindowID, r tiling.Rect, border int) error {
	f.record("notify %#x", w)
	f.notified[w] = r
	return nil
}

func (f *fakeServer) ConfigureUnmanaged(req ConfigureRequest) error {
	f.record("configure-unmanaged %#x", req.Window)
	return nil
}

func (f *fakeServer) Restack(bottomToTop []WindowID) error {
	f.record("restack")
	f.stack = slices.Clone(bottomToTop)
	return nil
}

func (f *fakeServer) SetBorderColor(w WindowID, pixel uint32) error {
	f.record("border %#x", w)
	f.pixels[w] = pixel
	return nil
}

func (f *fakeServer) Focus(w WindowID) error {
	f.record("focus %#x", w)
	f.focus = w
	return nil
}

func (f *fakeServer) Warp(x, y int) error {
	f.record("warp")
	f.warps = append(f.warps, [2]int{x, y})
	return nil
}

func (f *fakeServer) CloseWindow(w WindowID) error {
	f.record("close %#x", w)
	f.closed = append(f.closed, w)
	return nil
}

func (f *fakeServer) SetFullscreen(w WindowID, on bool) error {
	f.record("fullscreen %#x %v", w, on)
	f.fullscreen[w] = on
	return nil
}

func (f *fakeServer) GrabPointer(cursor Cursor) error {
	if f.grabPointerErr != nil {
		return f.grabPointerErr
	}
	f.record("grab_pointer")
	f.pointerGrabbed = true
	return nil
}

func (f *fakeServer) UngrabPointer() error {
	f.record("ungrab_pointer")
	f.pointerGrabbed = false
	return nil
}

func (f *fakeServer) GrabServer() error {
	f.record("grab_server")
	f.serverGrabs++
	return nil
}

func (f *fakeServer) UngrabServer() error {
	f.record("ungrab_server")
	f.serverGrabs--
	return nil
}

func (f *fakeServer) GrabKeys(table *keys.Table) error {
	f.record("grab_keys")
	f.keyGrabs++
	return nil
}

func (f *fakeServer) GrabButtons(mods uint16, buttons []int) error {
	f.record("grab_buttons")
	return nil
}

func (f *fakeServer) SetClientList(ids []WindowID) error {
	f.clientList = slices.Clone(ids)
	return nil
}

func (f *fakeServer) SetDesktops(names []string, current int) error {
	f.desktops = slices.Clone(names)
	f.desktop = current
	return nil
}

type fakeSpawner struct {
	commands []string
	err      error
}

func (s *fakeSpawner) Spawn(command string) error {
	s.commands = append(s.commands, command)
	return s.err
}

type fakePublisher struct {
	snapshots []Snapshot
}

func (p *fakePublisher) Publish(snap Snapshot) {
	p.snapshots = append(p.snapshots, snap)
}

func (p *fakePublisher) last() Snapshot {
	if len(p.snapshots) == 0 {
		return Snapshot{}
	}
	return p.snapshots[len(p.snapshots)-1]
}
