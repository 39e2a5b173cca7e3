package wm

import (
	"fmt"
	"slices"

	"github.com/1broseidon/wwm/internal/config"
	"github.com/1broseidon/wwm/internal/tiling"
)

// FocusState holds the focused client as a registry key and the focused
// monitor. Client is zero when nothing is focused.
type FocusState struct {
	Client  WindowID
	Monitor int
}

// State is the complete window manager model. It is owned by the event loop
// and never shared across goroutines.
type State struct {
	cfg *config.Config

	Clients    *Registry
	Workspaces []*Workspace // indexed by workspace ID
	Monitors   []*Monitor   // sorted by ID
	Focus      FocusState

	nextMonitorID int
}

// NewState builds the initial model: one monitor per output and the
// configured number of workspaces, grown so every monitor shows one.
func NewState(cfg *config.Config, outputs []Output) (*State, error) {
	if len(outputs) == 0 {
		return nil, ErrNoSurvivor
	}
	s := &State{cfg: cfg, Clients: NewRegistry()}

	for _, out := range nameOutputs(outputs) {
		s.Monitors = append(s.Monitors, &Monitor{
			ID:       s.nextMonitorID,
			Name:     out.Name,
			Geometry: out.Geometry,
			Primary:  out.Primary,
		})
		s.nextMonitorID++
	}

	count := max(cfg.Workspaces.Count, len(s.Monitors))
	for len(s.Workspaces) < count {
		s.addWorkspace()
	}

	home := s.pickSurvivor(s.Monitors)
	for _, w := range s.Workspaces {
		w.Monitor = home.ID
	}
	for i, m := range s.Monitors {
		m.Active = i
		s.Workspaces[i].Monitor = m.ID
	}
	s.Focus.Monitor = home.ID
	return s, nil
}

// Config returns the configuration the state was built with.
func (s *State) Config() *config.Config {
	return s.cfg
}

// SetConfig swaps in a reloaded configuration. Workspaces are added when the
// new count is larger; existing ones are never removed. Ratios are clamped to
// the new bounds.
func (s *State) SetConfig(cfg *config.Config) {
	s.cfg = cfg
	for len(s.Workspaces) < cfg.Workspaces.Count {
		s.addWorkspace()
	}
	for _, w := range s.Workspaces {
		w.Name = cfg.WorkspaceName(w.ID)
		w.Layout.Ratio = tiling.ClampRatio(w.Layout.Ratio, cfg.MasterRatioMin, cfg.MasterRatioMax)
		w.Layout.Columns = cfg.ColumnCount
	}
}

func (s *State) addWorkspace() *Workspace {
	id := len(s.Workspaces)
	monitor := 0
	if len(s.Monitors) > 0 {
		monitor = s.pickSurvivor(s.Monitors).ID
	}
	w := &Workspace{
		ID:      id,
		Name:    s.cfg.WorkspaceName(id),
		Layout:  s.cfg.Layout(),
		Monitor: monitor,
	}
	s.Workspaces = append(s.Workspaces, w)
	return w
}

// Monitor returns the monitor with the given ID.
func (s *State) Monitor(id int) (*Monitor, bool) {
	for _, m := range s.Monitors {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// FocusedMonitor returns the monitor holding focus.
func (s *State) FocusedMonitor() *Monitor {
	if m, ok := s.Monitor(s.Focus.Monitor); ok {
		return m
	}
	return s.Monitors[0]
}

// MonitorAt returns the monitor containing the root point, if any.
func (s *State) MonitorAt(x, y int) (*Monitor, bool) {
	for _, m := range s.Monitors {
		if m.Geometry.Contains(x, y) {
			return m, true
		}
	}
	return nil, false
}

// MonitorNeighbor returns the monitor dir steps from m in ID order, wrapping.
func (s *State) MonitorNeighbor(m *Monitor, dir int) *Monitor {
	i := slices.Index(s.Monitors, m)
	n := len(s.Monitors)
	if i < 0 || n == 0 {
		return s.FocusedMonitor()
	}
	return s.Monitors[((i+dir)%n+n)%n]
}

// Workspace returns the workspace with the given ID.
func (s *State) Workspace(id int) (*Workspace, error) {
	if id < 0 || id >= len(s.Workspaces) {
		return nil, fmt.Errorf("workspace %d: %w", id, ErrUnknownWorkspace)
	}
	return s.Workspaces[id], nil
}

// ActiveWorkspace returns the workspace shown on m.
func (s *State) ActiveWorkspace(m *Monitor) *Workspace {
	w, err := s.Workspace(m.Active)
	if err != nil {
		return s.Workspaces[0]
	}
	return w
}

// IsActive reports whether w is shown on its monitor.
func (s *State) IsActive(w *Workspace) bool {
	m, ok := s.Monitor(w.Monitor)
	return ok && m.Active == w.ID
}

// ClientMonitor returns the monitor the client's workspace is attached to.
func (s *State) ClientMonitor(c *Client) (*Monitor, bool) {
	w, err := s.Workspace(c.Workspace)
	if err != nil {
		return nil, false
	}
	return s.Monitor(w.Monitor)
}

// Visible reports whether c belongs to a workspace currently shown.
func (s *State) Visible(c *Client) bool {
	w, err := s.Workspace(c.Workspace)
	return err == nil && s.IsActive(w)
}

// Manage registers a new client on workspace ws.
func (s *State) Manage(c *Client, ws int) error {
	w, err := s.Workspace(ws)
	if err != nil {
		return err
	}
	if err := s.Clients.Add(c); err != nil {
		return err
	}
	c.Workspace = ws
	w.add(c.ID)
	return nil
}

// Unmanage removes a client from the registry and its workspace. Focus is
// cleared if it pointed at the client; callers recompute it.
func (s *State) Unmanage(id WindowID) (*Client, error) {
	c, err := s.Clients.Remove(id)
	if err != nil {
		return nil, err
	}
	if w, err := s.Workspace(c.Workspace); err == nil {
		w.remove(id)
	}
	if s.Focus.Client == id {
		s.Focus.Client = 0
	}
	return c, nil
}

// Tiled returns the clients the layout places on w, in order.
func (s *State) Tiled(w *Workspace) []*Client {
	var out []*Client
	for _, id := range w.order {
		if c, ok := s.Clients.Get(id); ok && c.Tiled() {
			out = append(out, c)
		}
	}
	return out
}

// ApplyLayout recomputes geometry for the tiled clients of m's active
// workspace. Floating and fullscreen clients are left untouched. A floating
// layout leaves tiled clients where they are.
func (s *State) ApplyLayout(m *Monitor) {
	w := s.ActiveWorkspace(m)
	tiled := s.Tiled(w)
	rects := w.Layout.Arrange(s.Usable(m), len(tiled), s.cfg.GapSize)
	for i, rect := range rects {
		tiled[i].Geometry = rect
		tiled[i].Border = s.cfg.BorderWidth
	}
}

// Effective returns the outer geometry and border the client should have on
// screen. Fullscreen clients cover their monitor with no border.
func (s *State) Effective(c *Client) (tiling.Rect, int) {
	if c.Fullscreen {
		if m, ok := s.ClientMonitor(c); ok {
			return m.Geometry, 0
		}
	}
	return c.Geometry, c.Border
}

// CheckInvariants verifies the structural invariants of the model.
func (s *State) CheckInvariants() error {
	if len(s.Monitors) == 0 {
		return fmt.Errorf("no monitors")
	}
	shown := make(map[int]int)
	for _, m := range s.Monitors {
		w, err := s.Workspace(m.Active)
		if err != nil {
			return fmt.Errorf("monitor %d shows %w", m.ID, err)
		}
		if w.Monitor != m.ID {
			return fmt.Errorf("monitor %d shows workspace %d attached to monitor %d", m.ID, w.ID, w.Monitor)
		}
		if prev, ok := shown[w.ID]; ok {
			return fmt.Errorf("workspace %d active on monitors %d and %d", w.ID, prev, m.ID)
		}
		shown[w.ID] = m.ID
	}
	for _, w := range s.Workspaces {
		if _, ok := s.Monitor(w.Monitor); !ok {
			return fmt.Errorf("workspace %d attached to missing monitor %d", w.ID, w.Monitor)
		}
		for _, id := range w.order {
			c, ok := s.Clients.Get(id)
			if !ok {
				return fmt.Errorf("workspace %d lists unknown client %#x", w.ID, id)
			}
			if c.Workspace != w.ID {
				return fmt.Errorf("client %#x listed on workspace %d but assigned to %d", id, w.ID, c.Workspace)
			}
		}
		if n := len(s.Clients.InWorkspace(w.ID)); n != w.Len() {
			return fmt.Errorf("workspace %d lists %d clients but %d are assigned to it", w.ID, w.Len(), n)
		}
	}
	for _, c := range s.Clients.All() {
		w, err := s.Workspace(c.Workspace)
		if err != nil {
			return fmt.Errorf("client %#x: %w", c.ID, err)
		}
		if !w.Contains(c.ID) {
			return fmt.Errorf("client %#x missing from workspace %d order", c.ID, w.ID)
		}
	}
	if _, ok := s.Monitor(s.Focus.Monitor); !ok {
		return fmt.Errorf("focused monitor %d does not exist", s.Focus.Monitor)
	}
	if s.Focus.Client != 0 {
		c, ok := s.Clients.Get(s.Focus.Client)
		if !ok {
			return fmt.Errorf("focused client %#x is not managed", s.Focus.Client)
		}
		if c.Workspace != s.FocusedMonitor().Active {
			return fmt.Errorf("focused client %#x is not on the focused monitor's active workspace", c.ID)
		}
	}
	return nil
}
