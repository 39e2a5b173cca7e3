package wm

import "fmt"

// RecomputeFocus picks the focused client after a structural change: the most
// recently focused client on the focused monitor's active workspace, else the
// first client in its order, else none. It returns the previous and new focus.
func (s *State) RecomputeFocus() (prev, next WindowID) {
	prev = s.Focus.Client
	w := s.ActiveWorkspace(s.FocusedMonitor())

	switch id, ok := w.lastFocused(); {
	case ok:
		next = id
	case len(w.order) > 0:
		next = w.order[0]
	default:
		next = 0
	}
	s.Focus.Client = next
	if next != 0 {
		w.touch(next)
	}
	return prev, next
}

// SetFocus focuses a visible client and moves monitor focus to its monitor.
func (s *State) SetFocus(id WindowID) error {
	c, ok := s.Clients.Get(id)
	if !ok {
		return fmt.Errorf("focus %#x: %w", id, ErrUnknownClient)
	}
	if !s.Visible(c) {
		return fmt.Errorf("focus %#x: client is on hidden workspace %d", id, c.Workspace)
	}
	w, err := s.Workspace(c.Workspace)
	if err != nil {
		return err
	}
	s.Focus.Monitor = w.Monitor
	s.Focus.Client = id
	w.touch(id)
	return nil
}

// FocusedClient resolves the focus key through the registry.
func (s *State) FocusedClient() (*Client, bool) {
	if s.Focus.Client == 0 {
		return nil, false
	}
	return s.Clients.Get(s.Focus.Client)
}

// StackingOrder returns the visible clients bottom to top. Per workspace:
// tiled clients in order, then the focused tiled client, then floating
// clients (focused last), then fullscreen clients.
func (s *State) StackingOrder() []WindowID {
	var out []WindowID
	for _, m := range s.Monitors {
		w := s.ActiveWorkspace(m)
		var tiled, floating, fullscreen []WindowID
		var focusedTiled, focusedFloating WindowID
		for _, id := range w.order {
			c, ok := s.Clients.Get(id)
			if !ok {
				continue
			}
			switch {
			case c.Fullscreen:
				fullscreen = append(fullscreen, id)
			case c.Floating && id == s.Focus.Client:
				focusedFloating = id
			case c.Floating:
				floating = append(floating, id)
			case id == s.Focus.Client:
				focusedTiled = id
			default:
				tiled = append(tiled, id)
			}
		}
		out = append(out, tiled...)
		if focusedTiled != 0 {
			out = append(out, focusedTiled)
		}
		out = append(out, floating...)
		if focusedFloating != 0 {
			out = append(out, focusedFloating)
		}
		out = append(out, fullscreen...)
	}
	return out
}
