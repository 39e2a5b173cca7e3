package wm

import (
	"fmt"

	"github.com/1broseidon/wwm/internal/keys"
	"github.com/1broseidon/wwm/internal/tiling"
)

// run executes an action from a keybind, bar or IPC command.
func (d *Dispatcher) run(a keys.Action) error {
	s := d.state
	switch a.Kind {
	case keys.ActionNone:
		return nil
	case keys.ActionSpawn:
		return d.spawn(a.Command)
	case keys.ActionView:
		if _, err := s.Workspace(a.Arg); err != nil {
			return err
		}
		return d.switchWorkspace(s.FocusedMonitor().ID, a.Arg)
	case keys.ActionSend:
		return d.send(a.Arg)
	case keys.ActionCycleLayout:
		w := s.ActiveWorkspace(s.FocusedMonitor())
		w.Layout = w.Layout.Next()
	case keys.ActionSetLayout:
		w := s.ActiveWorkspace(s.FocusedMonitor())
		w.Layout.Kind = a.Layout
	case keys.ActionRatio:
		w := s.ActiveWorkspace(s.FocusedMonitor())
		step := d.cfg.MasterRatioStep * float64(a.Arg)
		w.Layout.Ratio = tiling.ClampRatio(w.Layout.Ratio+step, d.cfg.MasterRatioMin, d.cfg.MasterRatioMax)
	case keys.ActionToggleFloating, keys.ActionUnfloat:
		c, ok := s.FocusedClient()
		if !ok || c.Fullscreen {
			return nil
		}
		if a.Kind == keys.ActionUnfloat {
			c.Floating = false
		} else {
			c.Floating = !c.Floating
		}
		if c.Floating {
			c.Geometry.Width, c.Geometry.Height = c.Hints.ClampSize(c.Geometry.Width, c.Geometry.Height, c.Border, d.cfg.MinClientSize)
		}
	case keys.ActionToggleFullscreen:
		c, ok := s.FocusedClient()
		if !ok {
			return nil
		}
		d.setFullscreen(c, !c.Fullscreen)
		return nil
	case keys.ActionFocus:
		c, ok := s.FocusedClient()
		if !ok {
			return nil
		}
		w, err := s.Workspace(c.Workspace)
		if err != nil {
			return err
		}
		next, ok := w.Neighbor(c.ID, a.Arg)
		if !ok || next == c.ID {
			return nil
		}
		if err := s.SetFocus(next); err != nil {
			return err
		}
	case keys.ActionMove:
		c, ok := s.FocusedClient()
		if !ok {
			return nil
		}
		w, err := s.Workspace(c.Workspace)
		if err != nil {
			return err
		}
		other, ok := w.Neighbor(c.ID, a.Arg)
		if !ok || !w.Swap(c.ID, other) {
			return nil
		}
	case keys.ActionZoom:
		c, ok := s.FocusedClient()
		if !ok {
			return nil
		}
		w, err := s.Workspace(c.Workspace)
		if err != nil {
			return err
		}
		if !w.Zoom(c.ID) {
			return nil
		}
		if first := w.order[0]; first != c.ID {
			// Zooming the main client promotes the next one and follows it.
			if err := s.SetFocus(first); err != nil {
				return err
			}
		}
	case keys.ActionFocusMonitor:
		m := s.MonitorNeighbor(s.FocusedMonitor(), a.Arg)
		if m.ID == s.Focus.Monitor {
			return nil
		}
		s.Focus.Monitor = m.ID
		s.RecomputeFocus()
	case keys.ActionSendMonitor:
		c, ok := s.FocusedClient()
		if !ok {
			return nil
		}
		from, _ := s.ClientMonitor(c)
		to := s.MonitorNeighbor(s.FocusedMonitor(), a.Arg)
		if from == nil || to.ID == from.ID {
			return nil
		}
		if err := d.moveClient(c, from, to); err != nil {
			return err
		}
		s.RecomputeFocus()
	case keys.ActionClose:
		c, ok := s.FocusedClient()
		if !ok {
			return nil
		}
		return d.srv.CloseWindow(c.ID)
	case keys.ActionQuit:
		return ErrQuit
	default:
		return fmt.Errorf("unsupported action %q", a.Kind.String())
	}
	d.refresh()
	return nil
}

func (d *Dispatcher) spawn(command string) error {
	if d.spawner == nil {
		return fmt.Errorf("spawn %q: no spawner configured", command)
	}
	if err := d.spawner.Spawn(command); err != nil {
		d.logger.Warn("failed to spawn command", "command", command, "error", err)
		return err
	}
	d.logger.Debug("spawned command", "command", command)
	return nil
}

// send moves the focused client to workspace ws without following it.
func (d *Dispatcher) send(ws int) error {
	s := d.state
	target, err := s.Workspace(ws)
	if err != nil {
		return err
	}
	c, ok := s.FocusedClient()
	if !ok || c.Workspace == ws {
		return nil
	}
	from, _ := s.ClientMonitor(c)
	to, ok := s.Monitor(target.Monitor)
	if !ok || from == nil {
		return fmt.Errorf("send to workspace %d: %w", ws, ErrUnknownMonitor)
	}
	if c.Floating && from.ID != to.ID {
		c.Geometry = tiling.Translate(c.Geometry, from.Geometry, to.Geometry)
	}
	if err := s.Assign(c.ID, ws); err != nil {
		return err
	}
	s.RecomputeFocus()
	d.refresh()
	return nil
}

// moveClient puts c on the workspace shown by to, keeping focus on it.
func (d *Dispatcher) moveClient(c *Client, from, to *Monitor) error {
	if c.Floating {
		c.Geometry = tiling.Translate(c.Geometry, from.Geometry, to.Geometry)
	}
	if err := d.state.Assign(c.ID, to.Active); err != nil {
		return err
	}
	return d.state.SetFocus(c.ID)
}
