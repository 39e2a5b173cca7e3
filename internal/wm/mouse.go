package wm

import "fmt"

func (d *Dispatcher) onButtonPress(e ButtonPress) error {
	if d.drag.Active() {
		return nil
	}
	d.pointerX, d.pointerY = e.RootX, e.RootY
	d.pointerDriven = true

	if e.Window == 0 {
		if m, ok := d.state.MonitorAt(e.RootX, e.RootY); ok && m.ID != d.state.Focus.Monitor {
			d.state.Focus.Monitor = m.ID
			d.state.RecomputeFocus()
			d.refresh()
		}
		return nil
	}

	c, ok := d.state.Clients.Get(e.Window)
	if !ok {
		return nil
	}
	if err := d.state.SetFocus(c.ID); err != nil {
		return err
	}

	var phase DragPhase
	switch {
	case e.Mods != d.cfg.MouseMods() || c.Fullscreen:
	case e.Button == d.cfg.MoveButton:
		phase = DragMoving
	case e.Button == d.cfg.ResizeButton:
		phase = DragResizing
	}
	if phase == DragIdle {
		d.refresh()
		return nil
	}

	cursor := CursorMove
	if phase == DragResizing {
		cursor = CursorResize
	}
	if err := d.srv.GrabPointer(cursor); err != nil {
		d.refresh()
		return fmt.Errorf("begin %s: %w", phase, err)
	}

	// Tiled clients leave the layout and keep their current box.
	c.Floating = true

	x, y := e.RootX, e.RootY
	if phase == DragResizing {
		g := c.Geometry
		x, y = g.X+g.Width-1, g.Y+g.Height-1
		if err := d.srv.Warp(x, y); err != nil {
			d.logger.Debug("warp failed", "error", err)
			x, y = e.RootX, e.RootY
		}
		d.pointerX, d.pointerY = x, y
	}
	d.drag.Begin(phase, c, e.Button, x, y, e.Time)
	d.logger.Debug("drag started", "window", hexID(c.ID), "phase", phase.String())
	d.refresh()
	return nil
}

func (d *Dispatcher) onMotionNotify(e MotionNotify) error {
	d.pointerX, d.pointerY = e.RootX, e.RootY
	if d.drag.Active() {
		c, ok := d.state.Clients.Get(d.drag.Client)
		if !ok {
			d.drag.Reset()
			return d.srv.UngrabPointer()
		}
		d.drag.Motion(e.RootX, e.RootY, c.Hints, c.Border, d.cfg.MinClientSize)
		if d.drag.Due(e.Time, d.cfg.DragThrottleMS) {
			c.Geometry = d.drag.Applied(e.Time)
			d.configure(c)
		}
		return nil
	}

	d.crossingsStale = false
	if !d.cfg.FocusFollowsMouse {
		return nil
	}
	m, ok := d.state.MonitorAt(e.RootX, e.RootY)
	if !ok || m.ID == d.state.Focus.Monitor {
		return nil
	}
	d.state.Focus.Monitor = m.ID
	d.state.RecomputeFocus()
	d.pointerDriven = true
	d.refresh()
	return nil
}

func (d *Dispatcher) onButtonRelease(e ButtonRelease) error {
	if !d.drag.Active() || e.Button != d.drag.Button {
		return nil
	}
	d.pointerX, d.pointerY = e.RootX, e.RootY
	c, ok := d.state.Clients.Get(d.drag.Client)
	if !ok {
		d.drag.Reset()
		return d.srv.UngrabPointer()
	}

	d.drag.Motion(e.RootX, e.RootY, c.Hints, c.Border, d.cfg.MinClientSize)
	if d.drag.Pending() {
		c.Geometry = d.drag.Applied(e.Time)
	}
	if err := d.srv.UngrabPointer(); err != nil {
		d.logger.Debug("ungrab pointer failed", "error", err)
	}
	phase := d.drag.Phase
	d.drag.Reset()

	// A window dropped onto another monitor joins the workspace shown there.
	cx, cy := c.Geometry.Center()
	if target, ok := d.state.MonitorAt(cx, cy); ok {
		if cur, ok := d.state.ClientMonitor(c); ok && cur.ID != target.ID {
			if err := d.state.Assign(c.ID, target.Active); err != nil {
				return err
			}
			if err := d.state.SetFocus(c.ID); err != nil {
				return err
			}
		}
	}
	d.pointerDriven = true
	d.logger.Debug("drag finished", "window", hexID(c.ID), "phase", phase.String(), "geometry", c.Geometry)
	d.refresh()
	return nil
}

// cancelDrag reverts the client to the last geometry the server received and
// releases the pointer.
func (d *Dispatcher) cancelDrag() {
	if !d.drag.Active() {
		return
	}
	if c, ok := d.state.Clients.Get(d.drag.Client); ok {
		c.Geometry = d.drag.LastApplied()
		d.configure(c)
	}
	if err := d.srv.UngrabPointer(); err != nil {
		d.logger.Debug("ungrab pointer failed", "error", err)
	}
	d.drag.Reset()
}

// abandonDrag drops an in-progress drag when the connection is gone. The
// geometry is reverted locally only; the ungrab is best effort.
func (d *Dispatcher) abandonDrag() {
	if !d.drag.Active() {
		return
	}
	if c, ok := d.state.Clients.Get(d.drag.Client); ok {
		c.Geometry = d.drag.LastApplied()
	}
	_ = d.srv.UngrabPointer()
	d.drag.Reset()
}
