package wm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/1broseidon/wwm/internal/config"
	"github.com/1broseidon/wwm/internal/keys"
	"github.com/1broseidon/wwm/internal/tiling"
)

// Options holds the collaborators of a Dispatcher.
type Options struct {
	Config    *config.Config
	Keys      *keys.Table
	Logger    *slog.Logger
	Spawner   Spawner
	Publisher Publisher
}

// Dispatcher is the control loop. It consumes one event at a time, mutates
// the State and issues the minimal set of server requests to realize it.
type Dispatcher struct {
	srv     Server
	cfg     *config.Config
	keys    *keys.Table
	logger  *slog.Logger
	spawner Spawner
	pub     Publisher

	state *State
	drag  Drag

	status      string
	normalPixel uint32
	focusPixel  uint32

	// Last values pushed to the server or bar.
	focusApplied bool
	appliedFocus WindowID
	stack        []WindowID
	clientList   []WindowID
	desktopNames []string
	desktop      int
	lastSnapshot *Snapshot

	// Pointer tracking for focus-follows-mouse. After a relayout the
	// crossing events generated under a stationary pointer are stale.
	pointerX, pointerY int
	crossingsStale     bool
	pointerDriven      bool
}

// NewDispatcher queries the outputs and builds the initial state.
func NewDispatcher(srv Server, opts Options) (*Dispatcher, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Keys == nil {
		table, err := opts.Config.KeyTable()
		if err != nil {
			return nil, fmt.Errorf("keybinds: %w", err)
		}
		opts.Keys = table
	}

	outputs, err := srv.InitialOutputs()
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	state, err := NewState(opts.Config, outputs)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		srv:     srv,
		cfg:     opts.Config,
		keys:    opts.Keys,
		logger:  opts.Logger,
		spawner: opts.Spawner,
		pub:     opts.Publisher,
		state:   state,
		desktop: -1,
	}
	d.normalPixel, d.focusPixel = d.cfg.BorderPixels()
	return d, nil
}

// State exposes the model for inspection. It must only be used from the
// loop goroutine.
func (d *Dispatcher) State() *State {
	return d.state
}

// DragPhase returns the current drag phase.
func (d *Dispatcher) DragPhase() DragPhase {
	return d.drag.Phase
}

// Snapshot returns the current bar snapshot.
func (d *Dispatcher) Snapshot() Snapshot {
	return d.state.Snapshot(d.status)
}

// Start grabs input, adopts the given pre-existing windows and realizes the
// initial state.
func (d *Dispatcher) Start(existing []WindowID) error {
	if err := d.srv.GrabKeys(d.keys); err != nil {
		d.logger.Warn("failed to grab some keys", "error", err)
	}
	if err := d.srv.GrabButtons(d.cfg.MouseMods(), []int{d.cfg.MoveButton, d.cfg.ResizeButton}); err != nil {
		d.logger.Warn("failed to grab mouse buttons", "error", err)
	}
	d.status = d.srv.RootStatus()

	adopted := 0
	for _, w := range existing {
		info, err := d.srv.Inspect(w)
		if err != nil {
			d.logger.Debug("skipping vanished window", "window", hexID(w), "error", err)
			continue
		}
		if info.OverrideRedirect || info.Type.Unmanaged() || !(info.Viewable || info.Iconic) {
			continue
		}
		if err := d.manage(w, info); err != nil {
			d.logger.Debug("failed to adopt window", "window", hexID(w), "error", err)
			continue
		}
		adopted++
	}
	d.logger.Info("window manager started", "monitors", len(d.state.Monitors), "workspaces", len(d.state.Workspaces), "adopted", adopted)

	d.refresh()
	return nil
}

// Run handles events until ctx is cancelled, the source closes or a fatal
// error occurs. A closed source is treated as a lost connection.
func (d *Dispatcher) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return nil
		case ev, ok := <-events:
			if !ok {
				d.abandonDrag()
				return ErrConnectionLost
			}
			if err := d.Handle(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					d.shutdown()
				}
				return err
			}
		}
	}
}

// Handle processes one event to completion. Only fatal errors are returned;
// everything else is logged.
func (d *Dispatcher) Handle(ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panic recovered", "event", fmt.Sprintf("%T", ev), "error", r)
			err = nil
		}
	}()
	d.pointerDriven = false

	err = d.handle(ev)
	if err == nil || IsFatal(err) {
		return err
	}
	d.logger.Debug("event not applied", "event", fmt.Sprintf("%T", ev), "error", err)
	return nil
}

func (d *Dispatcher) handle(ev Event) error {
	switch e := ev.(type) {
	case MapRequest:
		return d.onMapRequest(e)
	case UnmapNotify:
		return d.onUnmapNotify(e)
	case DestroyNotify:
		return d.onDestroyNotify(e)
	case ConfigureRequest:
		return d.onConfigureRequest(e)
	case PropertyNotify:
		return d.onPropertyNotify(e)
	case FullscreenRequest:
		return d.onFullscreenRequest(e)
	case ActivateRequest:
		return d.onActivateRequest(e)
	case KeyPress:
		return d.onKeyPress(e)
	case ButtonPress:
		return d.onButtonPress(e)
	case MotionNotify:
		return d.onMotionNotify(e)
	case ButtonRelease:
		return d.onButtonRelease(e)
	case EnterNotify:
		return d.onEnterNotify(e)
	case ScreenChange:
		return d.onScreenChange()
	case KeyboardMapping:
		return d.srv.GrabKeys(d.keys)
	case GrabLost:
		if !d.drag.Active() || e.Time < d.drag.Started {
			return nil
		}
		d.logger.Warn("pointer grab lost mid-drag", "window", hexID(d.drag.Client))
		d.cancelDrag()
		d.refresh()
		return nil
	case ConnectionLost:
		d.abandonDrag()
		if e.Err != nil {
			return fmt.Errorf("%w: %v", ErrConnectionLost, e.Err)
		}
		return ErrConnectionLost
	case BarClick:
		err := d.onBarClick(e)
		reply(e.Reply, err)
		return err
	case RunAction:
		action, err := keys.ParseAction(e.Action)
		if err != nil {
			reply(e.Reply, err)
			return err
		}
		err = d.run(action)
		reply(e.Reply, err)
		return err
	case Reload:
		err := d.reload(e.Config, e.Keys)
		reply(e.Reply, err)
		return err
	default:
		return fmt.Errorf("unhandled event %T", ev)
	}
}

// refresh realizes the state: layout, visibility, geometry, borders, focus,
// stacking, EWMH lists and the bar snapshot. Requests are only issued for
// values that differ from what the server was last told.
func (d *Dispatcher) refresh() {
	s := d.state
	for _, m := range s.Monitors {
		s.ApplyLayout(m)
	}
	_, focus := s.RecomputeFocus()

	changed := false
	clients := s.Clients.All()

	// Hide before showing so a switch never shows both workspaces.
	for _, c := range clients {
		if !s.Visible(c) && c.mapped {
			if err := d.srv.Unmap(c.ID); err != nil {
				d.logger.Debug("unmap failed", "window", hexID(c.ID), "error", err)
				continue
			}
			c.mapped = false
			c.pendingUnmaps++
			changed = true
		}
	}
	for _, c := range clients {
		if s.Visible(c) && d.configure(c) {
			changed = true
		}
	}
	for _, c := range clients {
		if s.Visible(c) && !c.mapped {
			if err := d.srv.Map(c.ID); err != nil {
				d.logger.Debug("map failed", "window", hexID(c.ID), "error", err)
				continue
			}
			c.mapped = true
			changed = true
		}
	}

	for _, c := range clients {
		if !s.Visible(c) {
			continue
		}
		pixel := d.normalPixel
		if c.ID == focus {
			pixel = d.focusPixel
		}
		if c.pixelSet && c.sentPixel == pixel {
			continue
		}
		if err := d.srv.SetBorderColor(c.ID, pixel); err != nil {
			d.logger.Debug("border color failed", "window", hexID(c.ID), "error", err)
			continue
		}
		c.pixelSet, c.sentPixel = true, pixel
	}

	if !d.focusApplied || d.appliedFocus != focus {
		if err := d.srv.Focus(focus); err != nil {
			d.logger.Debug("set input focus failed", "window", hexID(focus), "error", err)
		}
		d.focusApplied, d.appliedFocus = true, focus
		if focus != 0 && d.cfg.WarpCursor && !d.pointerDriven && !d.drag.Active() {
			d.warpTo(focus)
		}
	}

	if order := s.StackingOrder(); !slices.Equal(order, d.stack) {
		if err := d.srv.Restack(order); err != nil {
			d.logger.Debug("restack failed", "error", err)
		}
		d.stack = order
		changed = true
	}
	if changed {
		d.crossingsStale = true
	}

	if ids := s.Clients.IDs(); !slices.Equal(ids, d.clientList) {
		if err := d.srv.SetClientList(ids); err != nil {
			d.logger.Debug("client list update failed", "error", err)
		}
		d.clientList = ids
	}
	names := make([]string, len(s.Workspaces))
	for i, w := range s.Workspaces {
		names[i] = w.Name
	}
	if current := s.FocusedMonitor().Active; current != d.desktop || !slices.Equal(names, d.desktopNames) {
		if err := d.srv.SetDesktops(names, current); err != nil {
			d.logger.Debug("desktop update failed", "error", err)
		}
		d.desktop, d.desktopNames = current, names
	}

	d.publish()
}

// configure sends the client's effective geometry if it changed.
func (d *Dispatcher) configure(c *Client) bool {
	rect, border := d.state.Effective(c)
	if c.configured && c.sentRect == rect && c.sentBorder == border {
		return false
	}
	if err := d.srv.Configure(c.ID, tiling.ApplyBorder(rect, border), border); err != nil {
		d.logger.Debug("configure failed", "window", hexID(c.ID), "error", err)
		return false
	}
	c.configured, c.sentRect, c.sentBorder = true, rect, border
	return true
}

func (d *Dispatcher) warpTo(id WindowID) {
	c, ok := d.state.Clients.Get(id)
	if !ok {
		return
	}
	rect, _ := d.state.Effective(c)
	if rect.Contains(d.pointerX, d.pointerY) {
		return
	}
	x, y := rect.Center()
	if err := d.srv.Warp(x, y); err != nil {
		d.logger.Debug("warp failed", "error", err)
		return
	}
	d.pointerX, d.pointerY = x, y
	d.crossingsStale = true
}

func (d *Dispatcher) publish() {
	snap := d.state.Snapshot(d.status)
	if d.lastSnapshot != nil && reflect.DeepEqual(*d.lastSnapshot, snap) {
		return
	}
	d.lastSnapshot = &snap
	if d.pub != nil {
		d.pub.Publish(snap)
	}
}

// reload applies a new configuration on the loop goroutine.
func (d *Dispatcher) reload(cfg *config.Config, table *keys.Table) error {
	if cfg == nil {
		return fmt.Errorf("reload: no configuration")
	}
	if table == nil {
		var err error
		if table, err = cfg.KeyTable(); err != nil {
			return fmt.Errorf("reload: %w", err)
		}
	}
	d.cfg = cfg
	d.keys = table
	d.state.SetConfig(cfg)
	d.normalPixel, d.focusPixel = cfg.BorderPixels()
	for _, c := range d.state.Clients.All() {
		c.pixelSet = false
		if c.Tiled() {
			c.Border = cfg.BorderWidth
		}
	}
	if err := d.srv.GrabKeys(table); err != nil {
		d.logger.Warn("failed to grab some keys", "error", err)
	}
	if err := d.srv.GrabButtons(cfg.MouseMods(), []int{cfg.MoveButton, cfg.ResizeButton}); err != nil {
		d.logger.Warn("failed to grab mouse buttons", "error", err)
	}
	d.refresh()
	d.logger.Info("configuration reloaded", "keybinds", table.Len())
	return nil
}

// shutdown leaves every client mapped so nothing is lost when the window
// manager exits.
func (d *Dispatcher) shutdown() {
	d.cancelDrag()
	for _, c := range d.state.Clients.All() {
		if c.Fullscreen {
			c.ExitFullscreen()
		}
		if !c.mapped {
			if err := d.srv.Map(c.ID); err == nil {
				c.mapped = true
			}
		}
	}
	if err := d.srv.Focus(0); err != nil {
		d.logger.Debug("reset focus failed", "error", err)
	}
	d.logger.Info("window manager stopped")
}

func hexID(w WindowID) string {
	return fmt.Sprintf("%#x", uint32(w))
}
