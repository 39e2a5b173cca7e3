package wm

import (
	"github.com/1broseidon/wwm/internal/keys"
	"github.com/1broseidon/wwm/internal/tiling"
)

// WindowType is the classification derived from _NET_WM_WINDOW_TYPE.
type WindowType int

const (
	TypeNormal WindowType = iota
	TypeDialog
	TypeUtility
	TypeSplash
	TypeToolbar
	TypeMenu
	TypeNotification
	TypeDock
	TypeDesktop
)

// Floats reports whether windows of this type start floating.
func (t WindowType) Floats() bool {
	switch t {
	case TypeDialog, TypeUtility, TypeSplash, TypeToolbar, TypeMenu, TypeNotification:
		return true
	default:
		return false
	}
}

// Unmanaged reports whether windows of this type are mapped but not managed.
func (t WindowType) Unmanaged() bool {
	return t == TypeDock || t == TypeDesktop
}

// WindowInfo is what the server knows about a window at manage time.
type WindowInfo struct {
	Geometry         tiling.Rect // outer box
	Border           int
	OverrideRedirect bool
	Viewable         bool
	Iconic           bool
	Type             WindowType
	TransientFor     WindowID
	Hints            SizeHints
	Fullscreen       bool
	Title            string
}

// Cursor selects the root pointer shape during a grab.
type Cursor int

const (
	CursorNormal Cursor = iota
	CursorMove
	CursorResize
)

// Server is everything the dispatcher asks of the X server. Geometry passed
// to Configure and NotifyGeometry is the inner geometry, border excluded.
// Errors are per-request and never fatal; a vanished window is reported as
// an error and ignored by the caller.
type Server interface {
	Inspect(w WindowID) (WindowInfo, error)
	Title(w WindowID) (string, error)
	SizeHints(w WindowID) (SizeHints, error)
	TransientFor(w WindowID) (WindowID, error)
	RootStatus() string
	InitialOutputs() ([]Output, error)
	Outputs() ([]Output, error)
	Keysym(code uint8) string

	Manage(w WindowID) error
	Unmanage(w WindowID) error
	Map(w WindowID) error
	Unmap(w WindowID) error
	Configure(w WindowID, r tiling.Rect, border int) error
	NotifyGeometry(w WindowID, r tiling.Rect, border int) error
	ConfigureUnmanaged(req ConfigureRequest) error
	Restack(bottomToTop []WindowID) error
	SetBorderColor(w WindowID, pixel uint32) error
	Focus(w WindowID) error
	Warp(x, y int) error
	CloseWindow(w WindowID) error
	SetFullscreen(w WindowID, on bool) error

	GrabPointer(cursor Cursor) error
	UngrabPointer() error
	GrabServer() error
	UngrabServer() error
	GrabKeys(table *keys.Table) error
	GrabButtons(mods uint16, buttons []int) error

	SetClientList(ids []WindowID) error
	SetDesktops(names []string, current int) error
}

// Spawner launches user commands.
type Spawner interface {
	Spawn(command string) error
}

// Publisher receives bar snapshots whenever they change.
type Publisher interface {
	Publish(Snapshot)
}
