package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/wwm/internal/tiling"
	"github.com/1broseidon/wwm/internal/wm"
)

var _ wm.Server = (*Connection)(nil)

// clickButtons are grabbed synchronously on every client so a plain click
// focuses it; the press is replayed to the client right away.
var clickButtons = []xproto.Button{xproto.ButtonIndex1, xproto.ButtonIndex2, xproto.ButtonIndex3}

// Manage selects the events the window manager needs from w, adds it to the
// save set and marks it as managed.
func (c *Connection) Manage(w wm.WindowID) error {
	conn := c.XUtil.Conn()
	win := xproto.Window(w)

	err := xproto.ChangeWindowAttributesChecked(conn, win, xproto.CwEventMask,
		[]uint32{clientEventMask}).Check()
	if err != nil {
		return fmt.Errorf("select client events %#x: %w", w, err)
	}
	if err := xproto.ChangeSaveSetChecked(conn, xproto.SetModeInsert, win).Check(); err != nil {
		c.logger.Debug("save set insert failed", "window", w, "error", err)
	}
	for _, b := range clickButtons {
		xproto.GrabButton(conn, false, win, xproto.EventMaskButtonPress,
			xproto.GrabModeSync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone,
			byte(b), xproto.ModMaskAny)
	}
	return icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: icccm.StateNormal})
}

// Unmanage releases w. The window may already be gone, so failures only
// matter to the caller's log.
func (c *Connection) Unmanage(w wm.WindowID) error {
	conn := c.XUtil.Conn()
	win := xproto.Window(w)
	xproto.UngrabButton(conn, xproto.ButtonIndexAny, win, xproto.ModMaskAny)
	xproto.ChangeSaveSet(conn, xproto.SetModeDelete, win)
	return icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: icccm.StateWithdrawn})
}

func (c *Connection) Map(w wm.WindowID) error {
	if err := xproto.MapWindowChecked(c.XUtil.Conn(), xproto.Window(w)).Check(); err != nil {
		return err
	}
	return icccm.WmStateSet(c.XUtil, xproto.Window(w), &icccm.WmState{State: icccm.StateNormal})
}

// Unmap hides w and marks it iconic so a restarted window manager adopts it.
func (c *Connection) Unmap(w wm.WindowID) error {
	if err := xproto.UnmapWindowChecked(c.XUtil.Conn(), xproto.Window(w)).Check(); err != nil {
		return err
	}
	return icccm.WmStateSet(c.XUtil, xproto.Window(w), &icccm.WmState{State: icccm.StateIconic})
}

// Configure moves and resizes w to the inner geometry r with the given border.
func (c *Connection) Configure(w wm.WindowID, r tiling.Rect, border int) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight | xproto.ConfigWindowBorderWidth)
	values := []uint32{
		uint32(int32(r.X)),
		uint32(int32(r.Y)),
		uint32(max(r.Width, 1)),
		uint32(max(r.Height, 1)),
		uint32(border),
	}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), xproto.Window(w), mask, values).Check()
}

// NotifyGeometry sends w a synthetic ConfigureNotify describing the geometry
// it already has.
func (c *Connection) NotifyGeometry(w wm.WindowID, r tiling.Rect, border int) error {
	ev := xproto.ConfigureNotifyEvent{
		Event:            xproto.Window(w),
		Window:           xproto.Window(w),
		AboveSibling:     xevent.NoWindow,
		X:                int16(r.X),
		Y:                int16(r.Y),
		Width:            uint16(max(r.Width, 1)),
		Height:           uint16(max(r.Height, 1)),
		BorderWidth:      uint16(border),
		OverrideRedirect: false,
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, xproto.Window(w),
		xproto.EventMaskStructureNotify, string(ev.Bytes())).Check()
}

// ConfigureUnmanaged forwards a request from a window the manager does not
// control, field for field.
func (c *Connection) ConfigureUnmanaged(req wm.ConfigureRequest) error {
	var (
		mask   uint16
		values []uint32
	)
	add := func(bit uint16, xbit uint16, v uint32) {
		if req.Mask&bit != 0 {
			mask |= xbit
			values = append(values, v)
		}
	}
	add(wm.ConfigX, xproto.ConfigWindowX, uint32(int32(req.X)))
	add(wm.ConfigY, xproto.ConfigWindowY, uint32(int32(req.Y)))
	add(wm.ConfigWidth, xproto.ConfigWindowWidth, uint32(max(req.Width, 1)))
	add(wm.ConfigHeight, xproto.ConfigWindowHeight, uint32(max(req.Height, 1)))
	add(wm.ConfigBorder, xproto.ConfigWindowBorderWidth, uint32(req.Border))
	add(wm.ConfigSibling, xproto.ConfigWindowSibling, uint32(req.Sibling))
	add(wm.ConfigStackMode, xproto.ConfigWindowStackMode, uint32(req.StackMode))
	if mask == 0 {
		return nil
	}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), xproto.Window(req.Window), mask, values).Check()
}

// Restack orders the given windows bottom to top, each directly above the
// previous one. The lowest window is left where it is.
func (c *Connection) Restack(bottomToTop []wm.WindowID) error {
	var errs []error
	for i := 1; i < len(bottomToTop); i++ {
		err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), xproto.Window(bottomToTop[i]),
			xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
			[]uint32{uint32(bottomToTop[i-1]), xproto.StackModeAbove}).Check()
		if err != nil {
			errs = append(errs, fmt.Errorf("restack %#x: %w", bottomToTop[i], err))
		}
	}
	return errors.Join(errs...)
}

func (c *Connection) SetBorderColor(w wm.WindowID, pixel uint32) error {
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), xproto.Window(w),
		xproto.CwBorderPixel, []uint32{pixel}).Check()
}

// Focus gives w the input focus and publishes it as _NET_ACTIVE_WINDOW. A
// zero window returns focus to the pointer root.
func (c *Connection) Focus(w wm.WindowID) error {
	target := xproto.Window(w)
	if w == 0 {
		target = xproto.InputFocusPointerRoot
	}
	err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
		target, xproto.TimeCurrentTime).Check()
	if err != nil {
		return err
	}
	return ewmh.ActiveWindowSet(c.XUtil, xproto.Window(w))
}

func (c *Connection) Warp(x, y int) error {
	return xproto.WarpPointerChecked(c.XUtil.Conn(), xproto.WindowNone, c.Root,
		0, 0, 0, 0, int16(x), int16(y)).Check()
}

// GrabPointer takes the pointer for a drag and the keyboard so Escape can
// cancel it.
func (c *Connection) GrabPointer(cursor wm.Cursor) error {
	ok, err := mousebind.GrabPointer(c.XUtil, c.Root, xproto.WindowNone, c.cursors[cursor])
	if err != nil {
		return fmt.Errorf("grab pointer: %w", err)
	}
	if !ok {
		return errors.New("grab pointer: pointer is grabbed by another client")
	}

	reply, err := xproto.GrabKeyboard(c.XUtil.Conn(), false, c.Root, xproto.TimeCurrentTime,
		xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
	if err != nil || reply.Status != xproto.GrabStatusSuccess {
		// The drag still works without Escape.
		c.logger.Debug("keyboard grab for drag failed", "error", err)
	}
	return nil
}

func (c *Connection) UngrabPointer() error {
	conn := c.XUtil.Conn()
	xproto.UngrabKeyboard(conn, xproto.TimeCurrentTime)
	return xproto.UngrabPointerChecked(conn, xproto.TimeCurrentTime).Check()
}

func (c *Connection) GrabServer() error {
	return xproto.GrabServerChecked(c.XUtil.Conn()).Check()
}

func (c *Connection) UngrabServer() error {
	return xproto.UngrabServerChecked(c.XUtil.Conn()).Check()
}
