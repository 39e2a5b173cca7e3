package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/wwm/internal/tiling"
	"github.com/1broseidon/wwm/internal/wm"
)

// Inspect gathers what the window manager needs to know about w before it
// decides whether and how to manage it.
func (c *Connection) Inspect(w wm.WindowID) (wm.WindowInfo, error) {
	conn := c.XUtil.Conn()
	win := xproto.Window(w)

	attrs, err := xproto.GetWindowAttributes(conn, win).Reply()
	if err != nil {
		return wm.WindowInfo{}, fmt.Errorf("window attributes %#x: %w", w, err)
	}
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return wm.WindowInfo{}, fmt.Errorf("window geometry %#x: %w", w, err)
	}

	border := int(geom.BorderWidth)
	info := wm.WindowInfo{
		Geometry: tiling.Rect{
			X:      int(geom.X),
			Y:      int(geom.Y),
			Width:  int(geom.Width) + 2*border,
			Height: int(geom.Height) + 2*border,
		},
		Border:           border,
		OverrideRedirect: attrs.OverrideRedirect,
		Viewable:         attrs.MapState == xproto.MapStateViewable,
	}
	if attrs.OverrideRedirect {
		return info, nil
	}

	if state, err := icccm.WmStateGet(c.XUtil, win); err == nil {
		info.Iconic = state.State == icccm.StateIconic
	}
	if types, err := ewmh.WmWindowTypeGet(c.XUtil, win); err == nil {
		info.Type = classifyType(types)
	}
	if states, err := ewmh.WmStateGet(c.XUtil, win); err == nil {
		info.Fullscreen = slices.Contains(states, stateFullscreen)
	}
	info.TransientFor, _ = c.TransientFor(w)
	info.Hints, _ = c.SizeHints(w)
	info.Title, _ = c.Title(w)
	return info, nil
}

// classifyType maps _NET_WM_WINDOW_TYPE values to a window type. The first
// recognized entry wins; windows without the property are normal.
func classifyType(types []string) wm.WindowType {
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return wm.TypeNormal
		case "_NET_WM_WINDOW_TYPE_DIALOG":
			return wm.TypeDialog
		case "_NET_WM_WINDOW_TYPE_UTILITY":
			return wm.TypeUtility
		case "_NET_WM_WINDOW_TYPE_SPLASH":
			return wm.TypeSplash
		case "_NET_WM_WINDOW_TYPE_TOOLBAR":
			return wm.TypeToolbar
		case "_NET_WM_WINDOW_TYPE_MENU", "_NET_WM_WINDOW_TYPE_DROPDOWN_MENU", "_NET_WM_WINDOW_TYPE_POPUP_MENU":
			return wm.TypeMenu
		case "_NET_WM_WINDOW_TYPE_NOTIFICATION", "_NET_WM_WINDOW_TYPE_TOOLTIP":
			return wm.TypeNotification
		case "_NET_WM_WINDOW_TYPE_DOCK":
			return wm.TypeDock
		case "_NET_WM_WINDOW_TYPE_DESKTOP":
			return wm.TypeDesktop
		}
	}
	return wm.TypeNormal
}

// Title prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) Title(w wm.WindowID) (string, error) {
	name, err := ewmh.WmNameGet(c.XUtil, xproto.Window(w))
	if err == nil && name != "" {
		return name, nil
	}
	return icccm.WmNameGet(c.XUtil, xproto.Window(w))
}

// SizeHints reads the minimum and maximum size from WM_NORMAL_HINTS. A
// missing property yields zero hints.
func (c *Connection) SizeHints(w wm.WindowID) (wm.SizeHints, error) {
	nh, err := icccm.WmNormalHintsGet(c.XUtil, xproto.Window(w))
	if err != nil {
		return wm.SizeHints{}, err
	}
	return sizeHints(nh), nil
}

func sizeHints(nh *icccm.NormalHints) wm.SizeHints {
	var h wm.SizeHints
	if nh.Flags&icccm.SizeHintPMinSize != 0 {
		h.MinWidth, h.MinHeight = int(nh.MinWidth), int(nh.MinHeight)
	} else if nh.Flags&icccm.SizeHintPBaseSize != 0 {
		h.MinWidth, h.MinHeight = int(nh.BaseWidth), int(nh.BaseHeight)
	}
	if nh.Flags&icccm.SizeHintPMaxSize != 0 {
		h.MaxWidth, h.MaxHeight = int(nh.MaxWidth), int(nh.MaxHeight)
	}
	return h.Sanitize()
}

// TransientFor returns the WM_TRANSIENT_FOR parent, or zero.
func (c *Connection) TransientFor(w wm.WindowID) (wm.WindowID, error) {
	parent, err := icccm.WmTransientForGet(c.XUtil, xproto.Window(w))
	if err != nil {
		return 0, err
	}
	if parent == xproto.Window(w) {
		return 0, nil
	}
	return wm.WindowID(parent), nil
}

// RootStatus returns the root window's WM_NAME, which status scripts set.
func (c *Connection) RootStatus() string {
	name, err := icccm.WmNameGet(c.XUtil, c.Root)
	if err != nil {
		return ""
	}
	return name
}

func (c *Connection) supportsDelete(w xproto.Window) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, w)
	if err != nil {
		return false
	}
	return slices.Contains(protocols, "WM_DELETE_WINDOW")
}
