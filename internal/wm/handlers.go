package wm

import (
	"errors"
	"fmt"

	"github.com/1broseidon/wwm/internal/tiling"
)

func (d *Dispatcher) onMapRequest(e MapRequest) error {
	if c, ok := d.state.Clients.Get(e.Window); ok {
		// A client remapping itself while we keep it hidden stays hidden.
		if d.state.Visible(c) && !c.mapped {
			d.refresh()
		}
		return nil
	}

	info, err := d.srv.Inspect(e.Window)
	if err != nil {
		// Destroyed between the request and our query.
		return fmt.Errorf("inspect %s: %w", hexID(e.Window), err)
	}
	if info.OverrideRedirect {
		return nil
	}
	if info.Type.Unmanaged() {
		return d.srv.Map(e.Window)
	}

	if err := d.manage(e.Window, info); err != nil {
		return err
	}
	if c, ok := d.state.Clients.Get(e.Window); ok && d.state.Visible(c) {
		_ = d.state.SetFocus(c.ID)
	}
	d.refresh()
	return nil
}

// manage registers a window with the model and the server. The workspace is
// the focused monitor's active one, or the parent's for transients.
func (d *Dispatcher) manage(w WindowID, info WindowInfo) error {
	s := d.state
	ws := s.FocusedMonitor().Active
	var parent *Client
	if info.TransientFor != 0 {
		if p, ok := s.Clients.Get(info.TransientFor); ok {
			parent = p
			ws = p.Workspace
		}
	}

	hints := info.Hints.Sanitize()
	c := NewClient(w, info.Geometry, d.cfg.BorderWidth)
	c.Hints = hints
	c.Title = info.Title
	c.TransientFor = info.TransientFor
	c.Floating = info.Type.Floats() || info.TransientFor != 0 || hints.Fixed()
	c.mapped = info.Viewable

	if err := s.Manage(c, ws); err != nil {
		return err
	}
	if c.Floating {
		d.placeFloating(c, info, parent)
	}
	if err := d.srv.Manage(w); err != nil {
		d.logger.Debug("failed to select client events", "window", hexID(w), "error", err)
	}
	if info.Fullscreen {
		c.EnterFullscreen()
		if err := d.srv.SetFullscreen(w, true); err != nil {
			d.logger.Debug("fullscreen state update failed", "window", hexID(w), "error", err)
		}
	}
	d.logger.Debug("managing window", "window", hexID(w), "workspace", ws, "floating", c.Floating, "title", c.Title)
	return nil
}

// placeFloating keeps the requested content size, adds our border and
// centers the window over its parent or in the usable area when the
// requested position is off the monitor.
func (d *Dispatcher) placeFloating(c *Client, info WindowInfo, parent *Client) {
	s := d.state
	border := d.cfg.BorderWidth
	inner := tiling.ApplyBorder(info.Geometry, info.Border)
	width, height := c.Hints.ClampSize(inner.Width+2*border, inner.Height+2*border, border, d.cfg.MinClientSize)

	m, ok := s.ClientMonitor(c)
	if !ok {
		m = s.FocusedMonitor()
	}
	area := s.Usable(m)

	r := tiling.Rect{X: info.Geometry.X, Y: info.Geometry.Y, Width: width, Height: height}
	switch {
	case parent != nil:
		cx, cy := parent.Geometry.Center()
		r.X, r.Y = cx-width/2, cy-height/2
	case !area.Contains(r.X, r.Y) || (r.X == 0 && r.Y == 0):
		cx, cy := area.Center()
		r.X, r.Y = cx-width/2, cy-height/2
	}
	c.Geometry = tiling.Clamp(r, m.Geometry)
	c.Border = border
}

func (d *Dispatcher) onUnmapNotify(e UnmapNotify) error {
	c, ok := d.state.Clients.Get(e.Window)
	if !ok {
		return nil
	}
	if c.pendingUnmaps > 0 {
		c.pendingUnmaps--
		return nil
	}
	c.mapped = false
	if err := d.srv.Unmanage(e.Window); err != nil {
		d.logger.Debug("failed to release window", "window", hexID(e.Window), "error", err)
	}
	return d.unmanage(e.Window)
}

func (d *Dispatcher) onDestroyNotify(e DestroyNotify) error {
	if _, ok := d.state.Clients.Get(e.Window); !ok {
		return nil
	}
	return d.unmanage(e.Window)
}

func (d *Dispatcher) unmanage(w WindowID) error {
	if d.drag.Active() && d.drag.Client == w {
		d.drag.Reset()
		if err := d.srv.UngrabPointer(); err != nil {
			d.logger.Debug("ungrab pointer failed", "error", err)
		}
	}
	if _, err := d.state.Unmanage(w); err != nil {
		return err
	}
	d.logger.Debug("unmanaged window", "window", hexID(w))
	d.refresh()
	return nil
}

func (d *Dispatcher) onConfigureRequest(e ConfigureRequest) error {
	c, ok := d.state.Clients.Get(e.Window)
	if !ok {
		return d.srv.ConfigureUnmanaged(e)
	}
	if !c.Floating || c.Fullscreen || (d.drag.Active() && d.drag.Client == c.ID) {
		rect, border := d.state.Effective(c)
		return d.srv.NotifyGeometry(c.ID, tiling.ApplyBorder(rect, border), border)
	}

	r := c.Geometry
	if e.Mask&ConfigX != 0 {
		r.X = e.X
	}
	if e.Mask&ConfigY != 0 {
		r.Y = e.Y
	}
	if e.Mask&ConfigWidth != 0 {
		r.Width = e.Width + 2*c.Border
	}
	if e.Mask&ConfigHeight != 0 {
		r.Height = e.Height + 2*c.Border
	}
	r.Width, r.Height = c.Hints.ClampSize(r.Width, r.Height, c.Border, d.cfg.MinClientSize)

	if r == c.Geometry {
		return d.srv.NotifyGeometry(c.ID, tiling.ApplyBorder(r, c.Border), c.Border)
	}
	c.Geometry = r
	d.refresh()
	return nil
}

func (d *Dispatcher) onPropertyNotify(e PropertyNotify) error {
	if e.Property == PropStatus {
		d.status = d.srv.RootStatus()
		d.publish()
		return nil
	}
	c, ok := d.state.Clients.Get(e.Window)
	if !ok {
		return nil
	}

	switch e.Property {
	case PropTitle:
		title, err := d.srv.Title(c.ID)
		if err != nil {
			return err
		}
		c.Title = title
		d.publish()
		return nil
	case PropHints:
		hints, err := d.srv.SizeHints(c.ID)
		if err != nil {
			return err
		}
		c.Hints = hints.Sanitize()
		if c.Floating && !c.Fullscreen {
			c.Geometry.Width, c.Geometry.Height = c.Hints.ClampSize(c.Geometry.Width, c.Geometry.Height, c.Border, d.cfg.MinClientSize)
		}
	case PropTransient:
		parent, err := d.srv.TransientFor(c.ID)
		if err != nil {
			return err
		}
		c.TransientFor = parent
		if _, ok := d.state.Clients.Get(parent); ok && parent != c.ID {
			c.Floating = true
		}
	default:
		return nil
	}
	d.refresh()
	return nil
}

func (d *Dispatcher) onFullscreenRequest(e FullscreenRequest) error {
	c, ok := d.state.Clients.Get(e.Window)
	if !ok {
		return fmt.Errorf("fullscreen %s: %w", hexID(e.Window), ErrUnknownClient)
	}
	on := c.Fullscreen
	switch e.Action {
	case FullscreenAdd:
		on = true
	case FullscreenRemove:
		on = false
	case FullscreenToggle:
		on = !c.Fullscreen
	}
	d.setFullscreen(c, on)
	return nil
}

func (d *Dispatcher) setFullscreen(c *Client, on bool) {
	if on == c.Fullscreen {
		return
	}
	if d.drag.Active() && d.drag.Client == c.ID {
		d.cancelDrag()
	}
	if on {
		c.EnterFullscreen()
	} else {
		c.ExitFullscreen()
	}
	if err := d.srv.SetFullscreen(c.ID, on); err != nil {
		d.logger.Debug("fullscreen state update failed", "window", hexID(c.ID), "error", err)
	}
	d.refresh()
}

func (d *Dispatcher) onActivateRequest(e ActivateRequest) error {
	c, ok := d.state.Clients.Get(e.Window)
	if !ok {
		return fmt.Errorf("activate %s: %w", hexID(e.Window), ErrUnknownClient)
	}
	if !d.state.Visible(c) {
		w, err := d.state.Workspace(c.Workspace)
		if err != nil {
			return err
		}
		if err := d.switchWorkspace(w.Monitor, w.ID); err != nil {
			return err
		}
	}
	if err := d.state.SetFocus(c.ID); err != nil {
		return err
	}
	d.refresh()
	return nil
}

func (d *Dispatcher) onKeyPress(e KeyPress) error {
	sym := d.srv.Keysym(e.Code)
	if d.drag.Active() {
		if sym == "Escape" {
			d.cancelDrag()
			d.refresh()
		}
		return nil
	}
	action, ok := d.keys.Lookup(e.Mods, sym)
	if !ok {
		return nil
	}
	err := d.run(action)
	if errors.Is(err, ErrQuit) {
		return err
	}
	if err != nil {
		d.logger.Warn("keybind action failed", "key", sym, "action", action.String(), "error", err)
	}
	return nil
}

func (d *Dispatcher) onEnterNotify(e EnterNotify) error {
	if !e.Normal || !d.cfg.FocusFollowsMouse || d.drag.Active() {
		return nil
	}
	if d.crossingsStale && e.RootX == d.pointerX && e.RootY == d.pointerY {
		return nil
	}
	d.pointerX, d.pointerY = e.RootX, e.RootY
	d.crossingsStale = false
	c, ok := d.state.Clients.Get(e.Window)
	if !ok || c.ID == d.state.Focus.Client {
		return nil
	}
	if err := d.state.SetFocus(c.ID); err != nil {
		return err
	}
	d.pointerDriven = true
	d.refresh()
	return nil
}

func (d *Dispatcher) onScreenChange() error {
	outputs, err := d.srv.Outputs()
	if err != nil {
		return fmt.Errorf("query outputs: %w", err)
	}
	diff, err := d.state.Reconcile(outputs)
	if err != nil {
		if errors.Is(err, ErrNoSurvivor) {
			d.logger.Error("no outputs left", "error", err)
		}
		return err
	}
	if diff.Empty() {
		return nil
	}
	d.cancelDrag()
	d.grabbed(d.refresh)
	d.logger.Info("monitors reconciled",
		"added", diff.Added,
		"removed", diff.Removed,
		"resized", diff.Resized,
		"survivor", diff.Survivor,
		"migrated", diff.Migrated)
	return nil
}

func (d *Dispatcher) onBarClick(e BarClick) error {
	m, ok := d.state.Monitor(e.Monitor)
	if !ok {
		return fmt.Errorf("bar click on monitor %d: %w", e.Monitor, ErrUnknownMonitor)
	}
	if e.LayoutToggle {
		w := d.state.ActiveWorkspace(m)
		w.Layout = w.Layout.Next()
		d.state.Focus.Monitor = m.ID
		d.state.RecomputeFocus()
		d.refresh()
		return nil
	}
	if _, err := d.state.Workspace(e.Workspace); err != nil {
		return err
	}
	return d.switchWorkspace(m.ID, e.Workspace)
}

// grabbed runs fn with the server grabbed so intermediate states of a
// multi-request change are never painted.
func (d *Dispatcher) grabbed(fn func()) {
	if err := d.srv.GrabServer(); err != nil {
		d.logger.Debug("grab server failed", "error", err)
		fn()
		return
	}
	defer func() {
		if err := d.srv.UngrabServer(); err != nil {
			d.logger.Debug("ungrab server failed", "error", err)
		}
	}()
	fn()
}

// switchWorkspace shows ws on monitor mon and focuses that monitor.
func (d *Dispatcher) switchWorkspace(mon, ws int) error {
	res, err := d.state.SwitchActive(mon, ws)
	if err != nil {
		return err
	}
	d.state.Focus.Monitor = mon
	d.state.RecomputeFocus()
	if !res.Changed {
		d.refresh()
		return nil
	}
	if d.drag.Active() {
		d.cancelDrag()
	}
	d.grabbed(d.refresh)
	return nil
}
