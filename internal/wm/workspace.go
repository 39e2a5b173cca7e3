package wm

import (
	"fmt"
	"slices"

	"github.com/1broseidon/wwm/internal/tiling"
)

// Workspace is an ordered group of clients with one layout. It is attached to
// exactly one monitor at a time and is visible when it is that monitor's
// active workspace.
type Workspace struct {
	ID      int
	Name    string
	Layout  tiling.Layout
	Monitor int

	order   []WindowID
	history []WindowID // most recently focused last
}

// Order returns the client order used by the layout.
func (w *Workspace) Order() []WindowID {
	return slices.Clone(w.order)
}

// Len returns the number of clients on the workspace.
func (w *Workspace) Len() int {
	return len(w.order)
}

// Contains reports whether id is on the workspace.
func (w *Workspace) Contains(id WindowID) bool {
	return slices.Contains(w.order, id)
}

// Index returns the position of id in the order, or -1.
func (w *Workspace) Index(id WindowID) int {
	return slices.Index(w.order, id)
}

func (w *Workspace) add(id WindowID) {
	if !w.Contains(id) {
		w.order = append(w.order, id)
	}
}

// remove drops id keeping the relative order of the rest.
func (w *Workspace) remove(id WindowID) {
	if i := w.Index(id); i >= 0 {
		w.order = slices.Delete(w.order, i, i+1)
	}
	if i := slices.Index(w.history, id); i >= 0 {
		w.history = slices.Delete(w.history, i, i+1)
	}
}

// touch records id as the most recently focused client.
func (w *Workspace) touch(id WindowID) {
	if i := slices.Index(w.history, id); i >= 0 {
		w.history = slices.Delete(w.history, i, i+1)
	}
	w.history = append(w.history, id)
}

// lastFocused returns the most recently focused client still present.
func (w *Workspace) lastFocused() (WindowID, bool) {
	for i := len(w.history) - 1; i >= 0; i-- {
		if w.Contains(w.history[i]) {
			return w.history[i], true
		}
	}
	return 0, false
}

// Neighbor returns the client dir steps away from id, wrapping.
func (w *Workspace) Neighbor(id WindowID, dir int) (WindowID, bool) {
	i := w.Index(id)
	if i < 0 || len(w.order) < 2 {
		return 0, false
	}
	n := len(w.order)
	return w.order[((i+dir)%n+n)%n], true
}

// Swap exchanges the positions of a and b.
func (w *Workspace) Swap(a, b WindowID) bool {
	i, j := w.Index(a), w.Index(b)
	if i < 0 || j < 0 || i == j {
		return false
	}
	w.order[i], w.order[j] = w.order[j], w.order[i]
	return true
}

// Zoom moves id to the master position. If it already is the master, it
// trades places with the next client.
func (w *Workspace) Zoom(id WindowID) bool {
	i := w.Index(id)
	switch {
	case i < 0 || len(w.order) < 2:
		return false
	case i == 0:
		w.order[0], w.order[1] = w.order[1], w.order[0]
	default:
		w.order = slices.Delete(w.order, i, i+1)
		w.order = slices.Insert(w.order, 0, id)
	}
	return true
}

// Assign moves a client to workspace ws, appending it to the target order.
func (s *State) Assign(id WindowID, ws int) error {
	c, ok := s.Clients.Get(id)
	if !ok {
		return fmt.Errorf("assign %#x: %w", id, ErrUnknownClient)
	}
	target, err := s.Workspace(ws)
	if err != nil {
		return err
	}
	if c.Workspace == ws && target.Contains(id) {
		return nil
	}
	if from, err := s.Workspace(c.Workspace); err == nil {
		from.remove(id)
	}
	target.add(id)
	c.Workspace = ws
	return nil
}

// SwitchResult describes what changed on screen after SwitchActive.
type SwitchResult struct {
	Changed bool
	// Hidden is the workspace that is no longer visible anywhere, or -1.
	Hidden int
	// Swapped is the other monitor that now shows the previously active
	// workspace, or -1 when no swap happened.
	Swapped int
}

// SwitchActive makes ws the active workspace of monitor mon. A workspace is
// never active on two monitors: if ws is visible elsewhere, the two monitors
// exchange workspaces.
func (s *State) SwitchActive(mon, ws int) (SwitchResult, error) {
	res := SwitchResult{Hidden: -1, Swapped: -1}
	m, ok := s.Monitor(mon)
	if !ok {
		return res, fmt.Errorf("switch on monitor %d: %w", mon, ErrUnknownMonitor)
	}
	target, err := s.Workspace(ws)
	if err != nil {
		return res, err
	}
	if m.Active == ws {
		return res, nil
	}

	old, oldErr := s.Workspace(m.Active)
	other, attached := s.Monitor(target.Monitor)
	if attached && other.ID != m.ID && other.Active == ws && oldErr == nil {
		other.Active = old.ID
		old.Monitor = other.ID
		s.moveFloatingWorkspace(old, m.Geometry, other.Geometry)
		res.Swapped = other.ID
	} else if oldErr == nil {
		res.Hidden = old.ID
	}

	// Floating geometry follows the workspace to its new monitor.
	if attached && other.ID != m.ID {
		s.moveFloatingWorkspace(target, other.Geometry, m.Geometry)
	}
	target.Monitor = m.ID
	m.Active = ws
	res.Changed = true
	return res, nil
}
