package wm

import (
	"fmt"
	"slices"

	"github.com/1broseidon/wwm/internal/tiling"
)

// Output is one physical output as reported by the server.
type Output struct {
	Name     string
	Geometry tiling.Rect
	Primary  bool
}

// Monitor is a managed output. IDs are stable for the life of the process
// and never reused.
type Monitor struct {
	ID       int
	Name     string
	Geometry tiling.Rect
	Primary  bool
	Active   int // workspace shown on this monitor
}

// BarRect returns the area reserved for the bar on m.
func (s *State) BarRect(m *Monitor) tiling.Rect {
	h := s.cfg.Bar.Height
	if h <= 0 {
		return tiling.Rect{}
	}
	h = min(h, m.Geometry.Height-1)
	if s.cfg.Bar.Position == "bottom" {
		return tiling.Rect{X: m.Geometry.X, Y: m.Geometry.Y + m.Geometry.Height - h, Width: m.Geometry.Width, Height: h}
	}
	return tiling.Rect{X: m.Geometry.X, Y: m.Geometry.Y, Width: m.Geometry.Width, Height: h}
}

// Usable returns the monitor area left for clients: geometry minus the bar
// and the outer gap.
func (s *State) Usable(m *Monitor) tiling.Rect {
	top, bottom := 0, 0
	if bar := s.BarRect(m); !bar.Empty() {
		if s.cfg.Bar.Position == "bottom" {
			bottom = bar.Height
		} else {
			top = bar.Height
		}
	}
	g := s.cfg.OuterGap
	return tiling.Inset(m.Geometry, top+g, bottom+g, g, g)
}

// MonitorDiff is the result of Reconcile.
type MonitorDiff struct {
	Added    []int
	Removed  []int
	Resized  []int
	Survivor int
	// Migrated lists workspaces moved off removed monitors.
	Migrated []int
	// Hidden lists workspaces that were visible and no longer are.
	Hidden []int
	// Shown lists workspaces that became visible on added monitors.
	Shown []int
}

// Empty reports whether nothing changed.
func (d MonitorDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Resized) == 0
}

// Reconcile updates the monitor set from a fresh output scan. Outputs are
// matched to monitors by name. Workspaces of removed monitors move to the
// survivor before the monitor is dropped, so no workspace ever refers to a
// missing monitor. An empty scan returns ErrNoSurvivor and leaves the state
// untouched.
func (s *State) Reconcile(outputs []Output) (MonitorDiff, error) {
	diff := MonitorDiff{Survivor: -1}
	if len(outputs) == 0 {
		return diff, ErrNoSurvivor
	}
	outputs = nameOutputs(outputs)

	matched := make(map[string]bool, len(outputs))
	var removed []*Monitor
	for _, m := range s.Monitors {
		i := slices.IndexFunc(outputs, func(o Output) bool { return o.Name == m.Name })
		if i < 0 {
			removed = append(removed, m)
			continue
		}
		out := outputs[i]
		matched[out.Name] = true
		m.Primary = out.Primary
		if m.Geometry != out.Geometry {
			s.moveFloating(m, m.Geometry, out.Geometry)
			m.Geometry = out.Geometry
			diff.Resized = append(diff.Resized, m.ID)
		}
	}

	var added []*Monitor
	for _, out := range outputs {
		if matched[out.Name] {
			continue
		}
		m := &Monitor{ID: s.nextMonitorID, Name: out.Name, Geometry: out.Geometry, Primary: out.Primary, Active: -1}
		s.nextMonitorID++
		s.Monitors = append(s.Monitors, m)
		added = append(added, m)
		diff.Added = append(diff.Added, m.ID)
	}

	remaining := make([]*Monitor, 0, len(s.Monitors))
	for _, m := range s.Monitors {
		if !slices.Contains(removed, m) {
			remaining = append(remaining, m)
		}
	}
	survivor := s.pickSurvivor(remaining)
	diff.Survivor = survivor.ID

	// Migrate first, delete after.
	for _, r := range removed {
		for _, w := range s.Workspaces {
			if w.Monitor != r.ID {
				continue
			}
			w.Monitor = survivor.ID
			diff.Migrated = append(diff.Migrated, w.ID)
			s.moveFloatingWorkspace(w, r.Geometry, survivor.Geometry)
			if w.ID == r.Active {
				diff.Hidden = append(diff.Hidden, w.ID)
			}
		}
		diff.Removed = append(diff.Removed, r.ID)
	}
	s.Monitors = remaining

	for _, m := range added {
		ws := s.freeWorkspace(diff.Hidden)
		ws.Monitor = m.ID
		m.Active = ws.ID
		diff.Shown = append(diff.Shown, ws.ID)
		if i := slices.Index(diff.Hidden, ws.ID); i >= 0 {
			diff.Hidden = slices.Delete(diff.Hidden, i, i+1)
		}
	}

	if _, ok := s.Monitor(s.Focus.Monitor); !ok {
		s.Focus.Monitor = survivor.ID
	}
	slices.SortFunc(s.Monitors, func(a, b *Monitor) int { return a.ID - b.ID })
	return diff, nil
}

// pickSurvivor chooses where orphaned workspaces go: the configured primary
// output, then the server's primary, then the lowest monitor ID.
func (s *State) pickSurvivor(candidates []*Monitor) *Monitor {
	if name := s.cfg.PrimaryOutput; name != "" {
		for _, m := range candidates {
			if m.Name == name {
				return m
			}
		}
	}
	var best *Monitor
	for _, m := range candidates {
		if m.Primary && (best == nil || m.ID < best.ID) {
			best = m
		}
	}
	if best != nil {
		return best
	}
	for _, m := range candidates {
		if best == nil || m.ID < best.ID {
			best = m
		}
	}
	return best
}

// freeWorkspace returns a workspace not active on any monitor, preferring
// the given ones, and creates one when all are in use.
func (s *State) freeWorkspace(prefer []int) *Workspace {
	for _, id := range prefer {
		if w, err := s.Workspace(id); err == nil && !s.IsActive(w) {
			return w
		}
	}
	for _, w := range s.Workspaces {
		if !s.IsActive(w) {
			return w
		}
	}
	return s.addWorkspace()
}

func (s *State) moveFloating(m *Monitor, from, to tiling.Rect) {
	for _, w := range s.Workspaces {
		if w.Monitor == m.ID {
			s.moveFloatingWorkspace(w, from, to)
		}
	}
}

func (s *State) moveFloatingWorkspace(w *Workspace, from, to tiling.Rect) {
	for _, id := range w.order {
		c, ok := s.Clients.Get(id)
		if !ok {
			continue
		}
		if c.Floating {
			c.Geometry = tiling.Translate(c.Geometry, from, to)
		}
		if c.Fullscreen {
			c.savedGeometry = tiling.Translate(c.savedGeometry, from, to)
		}
	}
}

// nameOutputs gives unnamed outputs (xinerama heads) a positional name and
// drops duplicates.
func nameOutputs(outputs []Output) []Output {
	out := make([]Output, 0, len(outputs))
	seen := make(map[string]bool, len(outputs))
	for i, o := range outputs {
		if o.Name == "" {
			o.Name = fmt.Sprintf("head-%d", i)
		}
		if seen[o.Name] {
			continue
		}
		seen[o.Name] = true
		out = append(out, o)
	}
	return out
}
