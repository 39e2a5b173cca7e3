package x11

import (
	"context"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/wwm/internal/keys"
	"github.com/1broseidon/wwm/internal/wm"
)

// translator turns raw protocol events into dispatcher events. It holds no
// connection so it can be exercised without a server.
type translator struct {
	root   xproto.Window
	atoms  atoms
	ignore func() uint16
}

// translate returns the dispatcher event for ev, or false when the event is
// of no interest to the window manager.
func (t *translator) translate(ev xgb.Event) (wm.Event, bool) {
	switch e := ev.(type) {
	case xproto.MapRequestEvent:
		return wm.MapRequest{Window: wm.WindowID(e.Window)}, true

	case xproto.UnmapNotifyEvent:
		return wm.UnmapNotify{Window: wm.WindowID(e.Window)}, true

	case xproto.DestroyNotifyEvent:
		return wm.DestroyNotify{Window: wm.WindowID(e.Window)}, true

	case xproto.ConfigureRequestEvent:
		return wm.ConfigureRequest{
			Window:    wm.WindowID(e.Window),
			Mask:      configureMask(e.ValueMask),
			X:         int(e.X),
			Y:         int(e.Y),
			Width:     int(e.Width),
			Height:    int(e.Height),
			Border:    int(e.BorderWidth),
			Sibling:   wm.WindowID(e.Sibling),
			StackMode: e.StackMode,
		}, true

	case xproto.PropertyNotifyEvent:
		return t.property(e)

	case xproto.ClientMessageEvent:
		return t.clientMessage(e)

	case xproto.KeyPressEvent:
		return wm.KeyPress{
			Mods: keys.CleanMods(e.State, t.ignore()),
			Code: uint8(e.Detail),
		}, true

	case xproto.ButtonPressEvent:
		// Root grabs report the client in Child; click-to-focus grabs on
		// the client itself report it in Event.
		win := e.Child
		if e.Event != t.root {
			win = e.Event
		}
		return wm.ButtonPress{
			Window: wm.WindowID(win),
			Button: int(e.Detail),
			Mods:   keys.CleanMods(e.State, t.ignore()),
			RootX:  int(e.RootX),
			RootY:  int(e.RootY),
			Time:   uint32(e.Time),
		}, true

	case xproto.ButtonReleaseEvent:
		return wm.ButtonRelease{
			Button: int(e.Detail),
			RootX:  int(e.RootX),
			RootY:  int(e.RootY),
			Time:   uint32(e.Time),
		}, true

	case xproto.MotionNotifyEvent:
		return wm.MotionNotify{RootX: int(e.RootX), RootY: int(e.RootY), Time: uint32(e.Time)}, true

	case xproto.EnterNotifyEvent:
		// The pointer re-enters its window whenever a grab ends.
		if e.Mode == xproto.NotifyModeUngrab {
			return wm.GrabLost{Time: uint32(e.Time)}, true
		}
		return wm.EnterNotify{
			Window: wm.WindowID(e.Event),
			RootX:  int(e.RootX),
			RootY:  int(e.RootY),
			Normal: e.Mode == xproto.NotifyModeNormal && e.Detail != xproto.NotifyDetailInferior,
		}, true

	case xproto.MappingNotifyEvent:
		if e.Request == xproto.MappingPointer {
			return nil, false
		}
		return wm.KeyboardMapping{}, true

	case randr.ScreenChangeNotifyEvent, *randr.ScreenChangeNotifyEvent,
		randr.NotifyEvent, *randr.NotifyEvent:
		return wm.ScreenChange{}, true
	}
	return nil, false
}

func (t *translator) property(e xproto.PropertyNotifyEvent) (wm.Event, bool) {
	var kind wm.PropertyKind
	switch e.Atom {
	case t.atoms.wmName, t.atoms.netWMName:
		kind = wm.PropTitle
		if e.Window == t.root {
			kind = wm.PropStatus
		}
	case t.atoms.wmNormalHints:
		kind = wm.PropHints
	case t.atoms.wmTransientFor:
		kind = wm.PropTransient
	default:
		return nil, false
	}
	if e.Window == t.root && kind != wm.PropStatus {
		return nil, false
	}
	return wm.PropertyNotify{Window: wm.WindowID(e.Window), Property: kind}, true
}

func (t *translator) clientMessage(e xproto.ClientMessageEvent) (wm.Event, bool) {
	data := e.Data.Data32
	if e.Format != 32 || len(data) < 3 {
		return nil, false
	}
	switch e.Type {
	case t.atoms.netWMState:
		if xproto.Atom(data[1]) != t.atoms.netFullscreen && xproto.Atom(data[2]) != t.atoms.netFullscreen {
			return nil, false
		}
		if data[0] > uint32(wm.FullscreenToggle) {
			return nil, false
		}
		return wm.FullscreenRequest{Window: wm.WindowID(e.Window), Action: wm.FullscreenAction(data[0])}, true
	case t.atoms.netActiveWindow:
		return wm.ActivateRequest{Window: wm.WindowID(e.Window)}, true
	case t.atoms.netCurrentDesk:
		return wm.RunAction{Action: fmt.Sprintf("view %d", data[0]+1)}, true
	}
	return nil, false
}

// configureMask converts an X ConfigureWindow value mask.
func configureMask(m uint16) uint16 {
	var out uint16
	for _, pair := range [...][2]uint16{
		{xproto.ConfigWindowX, wm.ConfigX},
		{xproto.ConfigWindowY, wm.ConfigY},
		{xproto.ConfigWindowWidth, wm.ConfigWidth},
		{xproto.ConfigWindowHeight, wm.ConfigHeight},
		{xproto.ConfigWindowBorderWidth, wm.ConfigBorder},
		{xproto.ConfigWindowSibling, wm.ConfigSibling},
		{xproto.ConfigWindowStackMode, wm.ConfigStackMode},
	} {
		if m&pair[0] != 0 {
			out |= pair[1]
		}
	}
	return out
}

// ReadEvents reads protocol events until the connection closes or ctx is
// done and delivers the translated ones to out. A closed connection is
// reported as wm.ConnectionLost. Request errors from unchecked requests are
// logged and dropped.
func (c *Connection) ReadEvents(ctx context.Context, out chan<- wm.Event) {
	t := &translator{root: c.Root, atoms: c.atoms, ignore: c.ignoreMask}
	conn := c.XUtil.Conn()

	send := func(ev wm.Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			send(wm.ConnectionLost{})
			return
		}
		if xerr != nil {
			c.logger.Debug("x request error", "error", xerr)
			continue
		}

		// Click-to-focus grabs are synchronous; let the click through.
		if bp, ok := ev.(xproto.ButtonPressEvent); ok && bp.Event != c.Root {
			xproto.AllowEvents(conn, xproto.AllowReplayPointer, bp.Time)
		}

		wev, ok := t.translate(ev)
		if !ok {
			continue
		}
		if !send(wev) {
			return
		}
	}
}
