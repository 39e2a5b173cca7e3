package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/wwm/internal/wm"
)

const stateFullscreen = "_NET_WM_STATE_FULLSCREEN"

// atoms are the atoms the event translator matches against.
type atoms struct {
	wmName          xproto.Atom
	netWMName       xproto.Atom
	wmNormalHints   xproto.Atom
	wmTransientFor  xproto.Atom
	wmProtocols     xproto.Atom
	wmDeleteWindow  xproto.Atom
	netWMState      xproto.Atom
	netFullscreen   xproto.Atom
	netActiveWindow xproto.Atom
	netCurrentDesk  xproto.Atom
}

func internAtoms(xu *xgbutil.XUtil) (atoms, error) {
	var a atoms
	for name, dst := range map[string]*xproto.Atom{
		"WM_NAME":              &a.wmName,
		"_NET_WM_NAME":         &a.netWMName,
		"WM_NORMAL_HINTS":      &a.wmNormalHints,
		"WM_TRANSIENT_FOR":     &a.wmTransientFor,
		"WM_PROTOCOLS":         &a.wmProtocols,
		"WM_DELETE_WINDOW":     &a.wmDeleteWindow,
		"_NET_WM_STATE":        &a.netWMState,
		stateFullscreen:        &a.netFullscreen,
		"_NET_ACTIVE_WINDOW":   &a.netActiveWindow,
		"_NET_CURRENT_DESKTOP": &a.netCurrentDesk,
	} {
		atom, err := xprop.Atm(xu, name)
		if err != nil {
			return atoms{}, fmt.Errorf("intern %s: %w", name, err)
		}
		*dst = atom
	}
	return a, nil
}

var supported = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_WM_STATE",
	stateFullscreen,
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_CLIENT_LIST",
	"_NET_ACTIVE_WINDOW",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_CURRENT_DESKTOP",
}

// setupEWMH creates the supporting check window and advertises the hints the
// window manager honors.
func (c *Connection) setupEWMH() error {
	win, err := xwindow.Create(c.XUtil, c.Root)
	if err != nil {
		return fmt.Errorf("create check window: %w", err)
	}
	c.check = win

	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, win.Id); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, win.Id, win.Id); err != nil {
		return err
	}
	if err := ewmh.WmNameSet(c.XUtil, win.Id, WMName); err != nil {
		return err
	}
	return ewmh.SupportedSet(c.XUtil, supported)
}

// SetClientList publishes _NET_CLIENT_LIST.
func (c *Connection) SetClientList(ids []wm.WindowID) error {
	wins := make([]xproto.Window, len(ids))
	for i, id := range ids {
		wins[i] = xproto.Window(id)
	}
	return ewmh.ClientListSet(c.XUtil, wins)
}

// SetDesktops publishes the workspace names and the focused monitor's
// workspace as EWMH desktops.
func (c *Connection) SetDesktops(names []string, current int) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(len(names))); err != nil {
		return err
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, names); err != nil {
		return err
	}
	return ewmh.CurrentDesktopSet(c.XUtil, uint(current))
}

// SetFullscreen adds or removes _NET_WM_STATE_FULLSCREEN on w.
func (c *Connection) SetFullscreen(w wm.WindowID, on bool) error {
	states, _ := ewmh.WmStateGet(c.XUtil, xproto.Window(w))
	has := slices.Contains(states, stateFullscreen)
	switch {
	case on && !has:
		states = append(states, stateFullscreen)
	case !on && has:
		states = slices.DeleteFunc(states, func(s string) bool { return s == stateFullscreen })
	default:
		return nil
	}
	return ewmh.WmStateSet(c.XUtil, xproto.Window(w), states)
}

// CloseWindow asks w to close through WM_DELETE_WINDOW when it takes part in that
// protocol and kills its client otherwise.
func (c *Connection) CloseWindow(w wm.WindowID) error {
	if c.supportsDelete(xproto.Window(w)) {
		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: xproto.Window(w),
			Type:   c.atoms.wmProtocols,
			Data: xproto.ClientMessageDataUnionData32New([]uint32{
				uint32(c.atoms.wmDeleteWindow), uint32(xproto.TimeCurrentTime), 0, 0, 0,
			}),
		}
		return xproto.SendEventChecked(c.XUtil.Conn(), false, xproto.Window(w),
			xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
	}
	return xproto.KillClientChecked(c.XUtil.Conn(), uint32(w)).Check()
}
