package wm

import "github.com/1broseidon/wwm/internal/tiling"

// DragPhase is the state of the mouse drag controller.
type DragPhase int

const (
	DragIdle DragPhase = iota
	DragMoving
	DragResizing
)

// String returns the string representation of the phase
func (p DragPhase) String() string {
	switch p {
	case DragIdle:
		return "idle"
	case DragMoving:
		return "moving"
	case DragResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Drag tracks one interactive move or resize. Geometry follows the
// cumulative pointer delta from the press position, so dropped motion events
// never accumulate error.
type Drag struct {
	Phase   DragPhase
	Client  WindowID
	Button  int
	Started uint32

	originX, originY int
	start            tiling.Rect
	current          tiling.Rect
	applied          tiling.Rect
	lastApply        uint32
	pending          bool
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool {
	return d.Phase != DragIdle
}

// Begin enters phase for client c with the pointer at (x, y).
func (d *Drag) Begin(phase DragPhase, c *Client, button, x, y int, t uint32) {
	*d = Drag{
		Phase:     phase,
		Client:    c.ID,
		Button:    button,
		Started:   t,
		originX:   x,
		originY:   y,
		start:     c.Geometry,
		current:   c.Geometry,
		applied:   c.Geometry,
		lastApply: t,
	}
}

// Motion computes the in-progress geometry for the pointer at (x, y).
// Resizes are clamped to the hints, the border and minSize.
func (d *Drag) Motion(x, y int, hints SizeHints, border, minSize int) tiling.Rect {
	dx, dy := x-d.originX, y-d.originY
	r := d.start
	switch d.Phase {
	case DragMoving:
		r.X += dx
		r.Y += dy
	case DragResizing:
		r.Width, r.Height = hints.ClampSize(r.Width+dx, r.Height+dy, border, minSize)
	default:
		return d.current
	}
	d.current = r
	d.pending = d.current != d.applied
	return r
}

// Due reports whether enough time passed since the last applied update.
// throttleMS of zero applies every motion.
func (d *Drag) Due(t uint32, throttleMS int) bool {
	if !d.pending {
		return false
	}
	return throttleMS <= 0 || t-d.lastApply >= uint32(throttleMS)
}

// Applied records that current was sent to the server at time t.
func (d *Drag) Applied(t uint32) tiling.Rect {
	d.applied = d.current
	d.lastApply = t
	d.pending = false
	return d.applied
}

// Current returns the in-progress geometry.
func (d *Drag) Current() tiling.Rect {
	return d.current
}

// LastApplied returns the geometry the server last received.
func (d *Drag) LastApplied() tiling.Rect {
	return d.applied
}

// Pending reports whether current differs from what was applied.
func (d *Drag) Pending() bool {
	return d.pending
}

// Reset returns to idle, discarding any in-progress geometry.
func (d *Drag) Reset() {
	*d = Drag{}
}
