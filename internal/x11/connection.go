package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/wwm/internal/wm"
)

// ErrAnotherWM is returned by BecomeWM when another window manager already
// holds SubstructureRedirect on the root window.
var ErrAnotherWM = errors.New("another window manager is already running")

// WMName is advertised through _NET_WM_NAME on the supporting check window.
const WMName = "wwm"

const rootEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskEnterWindow

const clientEventMask = xproto.EventMaskEnterWindow |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskFocusChange

// Connection manages the X11 connection and core X resources. All requests
// are issued from the control loop goroutine; ReadEvents runs on its own.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	logger  *slog.Logger
	atoms   atoms
	cursors map[wm.Cursor]xproto.Cursor
	check   *xwindow.Window

	hasRandr    bool
	hasXinerama bool

	// ignore holds the NumLock/ScrollLock mask; read by the event reader.
	ignore atomic.Uint32
}

// NewConnection establishes a connection to the X11 server and initializes
// the extensions and xgbutil modules the window manager uses.
func NewConnection(logger *slog.Logger) (*Connection, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}

	keybind.Initialize(xu)
	mousebind.Initialize(xu)

	c := &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		logger:  logger,
		cursors: make(map[wm.Cursor]xproto.Cursor),
	}

	if err := randr.Init(xu.Conn()); err != nil {
		logger.Warn("randr unavailable", "error", err)
	} else {
		c.hasRandr = true
	}
	if err := xinerama.Init(xu.Conn()); err != nil {
		logger.Debug("xinerama unavailable", "error", err)
	} else {
		c.hasXinerama = true
	}

	c.atoms, err = internAtoms(xu)
	if err != nil {
		xu.Conn().Close()
		return nil, err
	}
	c.configureIgnoreMods()

	for cur, shape := range map[wm.Cursor]uint16{
		wm.CursorNormal: xcursor.LeftPtr,
		wm.CursorMove:   xcursor.Fleur,
		wm.CursorResize: xcursor.Sizing,
	} {
		id, err := xcursor.CreateCursor(xu, shape)
		if err != nil {
			logger.Debug("create cursor failed", "cursor", cur, "error", err)
			continue
		}
		c.cursors[cur] = id
	}
	return c, nil
}

// BecomeWM selects SubstructureRedirect on the root window, sets up the
// EWMH supporting check window and subscribes to output changes.
func (c *Connection) BecomeWM() error {
	values := []uint32{rootEventMask}
	mask := uint32(xproto.CwEventMask)
	if cur, ok := c.cursors[wm.CursorNormal]; ok {
		mask |= xproto.CwCursor
		values = append(values, uint32(cur))
	}
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root, mask, values).Check()
	if err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return ErrAnotherWM
		}
		return fmt.Errorf("select root events: %w", err)
	}

	if c.hasRandr {
		err := randr.SelectInputChecked(c.XUtil.Conn(), c.Root,
			randr.NotifyMaskScreenChange|randr.NotifyMaskOutputChange|randr.NotifyMaskCrtcChange).Check()
		if err != nil {
			c.logger.Warn("randr select input failed", "error", err)
		}
	}

	if err := c.setupEWMH(); err != nil {
		return fmt.Errorf("ewmh setup: %w", err)
	}
	return nil
}

// ExistingWindows lists the root's children for the startup scan.
func (c *Connection) ExistingWindows() ([]wm.WindowID, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("query tree: %w", err)
	}
	out := make([]wm.WindowID, 0, len(tree.Children))
	for _, w := range tree.Children {
		if c.check != nil && w == c.check.Id {
			continue
		}
		out = append(out, wm.WindowID(w))
	}
	return out, nil
}

// Close releases the check window and disconnects from the X11 server.
func (c *Connection) Close() {
	if c.check != nil {
		c.check.Destroy()
	}
	_ = ewmh.ClientListSet(c.XUtil, nil)
	xproto.SetInputFocus(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
		xproto.InputFocusPointerRoot, xproto.TimeCurrentTime)
	c.XUtil.Conn().Close()
}
