package wm

import (
	"github.com/1broseidon/wwm/internal/tiling"
)

// WindowID is an X window identifier. Zero means "no window".
type WindowID uint32

// SizeHints is the subset of WM_NORMAL_HINTS the layout honors. Zero means
// unset.
type SizeHints struct {
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int
}

// maxHintSize bounds hints to what the protocol can express.
const maxHintSize = 1<<15 - 1

// Sanitize clamps malformed hints instead of rejecting them.
func (h SizeHints) Sanitize() SizeHints {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > maxHintSize {
			return maxHintSize
		}
		return v
	}
	h.MinWidth = clamp(h.MinWidth)
	h.MinHeight = clamp(h.MinHeight)
	h.MaxWidth = clamp(h.MaxWidth)
	h.MaxHeight = clamp(h.MaxHeight)
	if h.MaxWidth > 0 && h.MaxWidth < h.MinWidth {
		h.MaxWidth = 0
	}
	if h.MaxHeight > 0 && h.MaxHeight < h.MinHeight {
		h.MaxHeight = 0
	}
	return h
}

// Fixed reports whether the client cannot be resized at all.
func (h SizeHints) Fixed() bool {
	return h.MinWidth > 0 && h.MinHeight > 0 && h.MinWidth == h.MaxWidth && h.MinHeight == h.MaxHeight
}

// ClampSize limits an outer size to the hints plus border and the configured
// minimum. The result is never below 1x1.
func (h SizeHints) ClampSize(width, height, border, minSize int) (int, int) {
	minW := max(minSize, h.MinWidth+2*border, 1)
	minH := max(minSize, h.MinHeight+2*border, 1)
	if width < minW {
		width = minW
	}
	if height < minH {
		height = minH
	}
	if h.MaxWidth > 0 && width > h.MaxWidth+2*border {
		width = max(minW, h.MaxWidth+2*border)
	}
	if h.MaxHeight > 0 && height > h.MaxHeight+2*border {
		height = max(minH, h.MaxHeight+2*border)
	}
	return width, height
}

// Client is one managed top-level window.
type Client struct {
	ID WindowID

	// Geometry is the outer box including the border. For tiled clients it is
	// owned by the layout; for floating clients by the user.
	Geometry tiling.Rect
	Border   int
	Hints    SizeHints

	Floating   bool
	Fullscreen bool

	Workspace    int
	Title        string
	TransientFor WindowID

	savedGeometry tiling.Rect
	savedBorder   int

	// Unmaps we issued ourselves and must not mistake for a withdrawal.
	pendingUnmaps int

	// What the server was last told.
	mapped     bool
	configured bool
	sentRect   tiling.Rect
	sentBorder int
	pixelSet   bool
	sentPixel  uint32
}

// NewClient creates a tiled client with the given outer geometry.
func NewClient(id WindowID, geometry tiling.Rect, border int) *Client {
	return &Client{ID: id, Geometry: geometry, Border: border}
}

// Tiled reports whether the layout engine places the client.
func (c *Client) Tiled() bool {
	return !c.Floating && !c.Fullscreen
}

// EnterFullscreen saves the current geometry and border. The displayed
// geometry becomes the monitor rectangle with no border until
// ExitFullscreen.
func (c *Client) EnterFullscreen() bool {
	if c.Fullscreen {
		return false
	}
	c.savedGeometry = c.Geometry
	c.savedBorder = c.Border
	c.Fullscreen = true
	return true
}

// ExitFullscreen restores the geometry saved by EnterFullscreen verbatim.
func (c *Client) ExitFullscreen() bool {
	if !c.Fullscreen {
		return false
	}
	c.Geometry = c.savedGeometry
	c.Border = c.savedBorder
	c.Fullscreen = false
	return true
}
