package wm

import (
	"github.com/1broseidon/wwm/internal/config"
	"github.com/1broseidon/wwm/internal/keys"
)

// Event is one input to the control loop. Events come from the X reader and
// from control commands and are handled strictly one at a time.
type Event interface {
	isEvent()
}

// MapRequest asks for a window to be mapped.
type MapRequest struct{ Window WindowID }

// UnmapNotify reports an unmapped window.
type UnmapNotify struct{ Window WindowID }

// DestroyNotify reports a destroyed window.
type DestroyNotify struct{ Window WindowID }

// ConfigureRequest value mask bits.
const (
	ConfigX uint16 = 1 << iota
	ConfigY
	ConfigWidth
	ConfigHeight
	ConfigBorder
	ConfigSibling
	ConfigStackMode
)

// ConfigureRequest asks for a geometry change. Width and Height are inner
// sizes as sent by the client.
type ConfigureRequest struct {
	Window    WindowID
	Mask      uint16
	X, Y      int
	Width     int
	Height    int
	Border    int
	Sibling   WindowID
	StackMode uint8
}

// PropertyKind names the properties the dispatcher reacts to.
type PropertyKind int

const (
	PropTitle PropertyKind = iota
	PropHints
	PropTransient
	PropStatus // root window name, used as bar status text
)

// PropertyNotify reports a changed property.
type PropertyNotify struct {
	Window   WindowID
	Property PropertyKind
}

// FullscreenAction follows _NET_WM_STATE: 0 remove, 1 add, 2 toggle.
type FullscreenAction int

const (
	FullscreenRemove FullscreenAction = iota
	FullscreenAdd
	FullscreenToggle
)

// FullscreenRequest is a client asking for fullscreen state.
type FullscreenRequest struct {
	Window WindowID
	Action FullscreenAction
}

// ActivateRequest is a _NET_ACTIVE_WINDOW request.
type ActivateRequest struct{ Window WindowID }

// KeyPress carries cleaned modifiers and the raw keycode.
type KeyPress struct {
	Mods uint16
	Code uint8
}

// ButtonPress is a grabbed button press. Window is the client under the
// pointer, or zero over the root.
type ButtonPress struct {
	Window       WindowID
	Button       int
	Mods         uint16
	RootX, RootY int
	Time         uint32
}

// MotionNotify is pointer motion in root coordinates.
type MotionNotify struct {
	RootX, RootY int
	Time         uint32
}

// ButtonRelease ends a drag.
type ButtonRelease struct {
	Button       int
	RootX, RootY int
	Time         uint32
}

// EnterNotify reports the pointer entering a window. Normal is false for
// crossings caused by grabs.
type EnterNotify struct {
	Window       WindowID
	RootX, RootY int
	Normal       bool
}

// ScreenChange reports an output configuration change.
type ScreenChange struct{}

// KeyboardMapping reports a changed keyboard mapping; keys are regrabbed.
type KeyboardMapping struct{}

// GrabLost reports that a pointer grab ended at Time. Releases of our own
// grabs arrive here too, after the drag they belonged to has finished.
type GrabLost struct{ Time uint32 }

// ConnectionLost ends the loop.
type ConnectionLost struct{ Err error }

// BarClick is a click reported by a bar: a workspace or the layout symbol.
type BarClick struct {
	Monitor      int
	Workspace    int
	LayoutToggle bool
	Reply        chan<- error
}

// RunAction runs an action string from IPC.
type RunAction struct {
	Action string
	Reply  chan<- error
}

// Reload swaps in a new configuration and keybind table.
type Reload struct {
	Config *config.Config
	Keys   *keys.Table
	Reply  chan<- error
}

func (MapRequest) isEvent()        {}
func (UnmapNotify) isEvent()       {}
func (DestroyNotify) isEvent()     {}
func (ConfigureRequest) isEvent()  {}
func (PropertyNotify) isEvent()    {}
func (FullscreenRequest) isEvent() {}
func (ActivateRequest) isEvent()   {}
func (KeyPress) isEvent()          {}
func (ButtonPress) isEvent()       {}
func (MotionNotify) isEvent()      {}
func (ButtonRelease) isEvent()     {}
func (EnterNotify) isEvent()       {}
func (ScreenChange) isEvent()      {}
func (KeyboardMapping) isEvent()   {}
func (GrabLost) isEvent()          {}
func (ConnectionLost) isEvent()    {}
func (BarClick) isEvent()          {}
func (RunAction) isEvent()         {}
func (Reload) isEvent()            {}

// reply delivers err without blocking; replies are buffered by the sender.
func reply(ch chan<- error, err error) {
	if ch == nil {
		return
	}
	select {
	case ch <- err:
	default:
	}
}
