package wm

import "github.com/1broseidon/wwm/internal/tiling"

// WorkspaceSummary is one workspace as seen by a bar.
type WorkspaceSummary struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Occupied bool   `json:"occupied"`
	Active   bool   `json:"active"`
}

// MonitorSnapshot is the bar state of one monitor.
type MonitorSnapshot struct {
	ID         int                `json:"id"`
	Name       string             `json:"name"`
	Focused    bool               `json:"focused"`
	Layout     string             `json:"layout"`
	LayoutName string             `json:"layout_name"`
	Title      string             `json:"title"`
	Workspaces []WorkspaceSummary `json:"workspaces"`
	Bar        tiling.Rect        `json:"bar"`
}

// Snapshot is what the bar collaborator renders.
type Snapshot struct {
	Monitors []MonitorSnapshot `json:"monitors"`
	Status   string            `json:"status,omitempty"`
}

// Snapshot summarizes the state for bars. Title is the focused client on the
// focused monitor, or the most recently focused client on other monitors.
func (s *State) Snapshot(status string) Snapshot {
	snap := Snapshot{Status: status}
	for _, m := range s.Monitors {
		active := s.ActiveWorkspace(m)
		ms := MonitorSnapshot{
			ID:         m.ID,
			Name:       m.Name,
			Focused:    m.ID == s.Focus.Monitor,
			Layout:     active.Layout.Symbol(),
			LayoutName: active.Layout.Name(),
			Bar:        s.BarRect(m),
		}
		var title WindowID
		if ms.Focused {
			title = s.Focus.Client
		} else if id, ok := active.lastFocused(); ok {
			title = id
		}
		if c, ok := s.Clients.Get(title); ok {
			ms.Title = c.Title
		}
		for _, w := range s.Workspaces {
			ms.Workspaces = append(ms.Workspaces, WorkspaceSummary{
				ID:       w.ID,
				Name:     w.Name,
				Occupied: w.Len() > 0,
				Active:   w.ID == m.Active,
			})
		}
		snap.Monitors = append(snap.Monitors, ms)
	}
	return snap
}
