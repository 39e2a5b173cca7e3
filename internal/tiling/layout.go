package tiling

import (
	"fmt"
	"math"
	"strings"
)

// Rect represents a window position and size. For managed clients it is the
// outer box, border included.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Center returns the center point of r.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Intersect returns the overlapping region of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Area returns width*height.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Kind selects a layout algorithm.
type Kind int

const (
	KindMainStack Kind = iota
	KindColumn
	KindFloating
)

var kinds = []Kind{KindMainStack, KindColumn, KindFloating}

// String returns the config name of the layout kind.
func (k Kind) String() string {
	switch k {
	case KindMainStack:
		return "main-stack"
	case KindColumn:
		return "column"
	case KindFloating:
		return "floating"
	default:
		return "unknown"
	}
}

// Symbol returns the short bar symbol for the layout kind.
func (k Kind) Symbol() string {
	switch k {
	case KindMainStack:
		return "[]="
	case KindColumn:
		return "|||"
	case KindFloating:
		return "><>"
	default:
		return "???"
	}
}

// ParseKind parses a layout name as written in config and actions.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "main-stack", "mainstack", "tile":
		return KindMainStack, nil
	case "column", "columns":
		return KindColumn, nil
	case "floating", "float":
		return KindFloating, nil
	default:
		return 0, fmt.Errorf("unsupported layout mode: %q", name)
	}
}

// Layout is a layout variant plus its parameters. Ratio is only read by
// main-stack, Columns only by column (0 means one column per client).
type Layout struct {
	Kind    Kind
	Ratio   float64
	Columns int
}

// Name returns the config name of the layout.
func (l Layout) Name() string {
	return l.Kind.String()
}

// Symbol returns the bar symbol of the layout.
func (l Layout) Symbol() string {
	return l.Kind.Symbol()
}

// Next returns the layout with the following kind, keeping parameters.
func (l Layout) Next() Layout {
	for i, k := range kinds {
		if k == l.Kind {
			l.Kind = kinds[(i+1)%len(kinds)]
			return l
		}
	}
	l.Kind = KindMainStack
	return l
}

// ClampRatio limits ratio to [lo, hi].
func ClampRatio(ratio, lo, hi float64) float64 {
	if math.IsNaN(ratio) {
		return lo
	}
	return math.Min(hi, math.Max(lo, ratio))
}

// Arrange computes one rectangle per tiled client, index-aligned with the
// client order. The floating layout does not place clients and returns nil.
// gap is the space left between adjacent clients; outer gaps are expected to
// be applied to area already.
func (l Layout) Arrange(area Rect, n int, gap int) []Rect {
	if n <= 0 || area.Empty() {
		return nil
	}
	if gap < 0 {
		gap = 0
	}

	switch l.Kind {
	case KindMainStack:
		return mainStack(area, n, l.Ratio, gap)
	case KindColumn:
		return columns(area, n, l.Columns, gap)
	case KindFloating:
		return nil
	default:
		return nil
	}
}

// mainStack gives the first client a master region of floor(width*ratio)
// and stacks the rest evenly on the right.
func mainStack(area Rect, n int, ratio float64, gap int) []Rect {
	if n == 1 {
		return []Rect{area}
	}

	masterWidth := int(math.Floor(float64(area.Width)*ratio + 1e-9))
	if masterWidth < 1 {
		masterWidth = 1
	}
	if masterWidth > area.Width-1 {
		masterWidth = area.Width - 1
	}

	leftGap := gap / 2
	rightGap := gap - leftGap
	if masterWidth-leftGap < 1 || area.Width-masterWidth-rightGap < 1 {
		leftGap, rightGap = 0, 0
	}

	positions := make([]Rect, n)
	positions[0] = Rect{
		X:      area.X,
		Y:      area.Y,
		Width:  max(1, masterWidth-leftGap),
		Height: area.Height,
	}

	stackX := area.X + masterWidth + rightGap
	stackWidth := max(1, area.Width-masterWidth-rightGap)
	rows := split(area.Y, area.Height, n-1, gap)
	for i, row := range rows {
		positions[i+1] = Rect{
			X:      stackX,
			Y:      row.start,
			Width:  stackWidth,
			Height: row.size,
		}
	}

	return positions
}

// columns splits area into equal-width columns left to right. With count > 0
// at most count columns are used and clients fill them in order, each column
// splitting its height evenly.
func columns(area Rect, n int, count int, gap int) []Rect {
	cols := n
	if count > 0 && count < n {
		cols = count
	}

	spans := split(area.X, area.Width, cols, gap)
	perCol := n / cols
	extra := n % cols

	positions := make([]Rect, 0, n)
	for c, col := range spans {
		rowsInCol := perCol
		if c < extra {
			rowsInCol++
		}
		for _, row := range split(area.Y, area.Height, rowsInCol, gap) {
			positions = append(positions, Rect{
				X:      col.start,
				Y:      row.start,
				Width:  col.size,
				Height: row.size,
			})
		}
	}

	return positions
}

type span struct {
	start int
	size  int
}

// split divides total (starting at start) into parts spans separated by gap.
// The remainder of the integer division goes to the leading spans so the
// spans plus gaps cover total exactly. With more parts than pixels the
// trailing spans are one pixel wide and share the last pixel.
func split(start, total, parts, gap int) []span {
	if parts <= 0 {
		return nil
	}

	usable := total - gap*(parts-1)
	if usable < parts {
		// Not enough room for gaps; fall back to a gapless split.
		gap = 0
		usable = total
	}

	base := usable / parts
	rem := usable % parts
	end := start + max(total, 1)

	spans := make([]span, parts)
	pos := start
	for i := 0; i < parts; i++ {
		size := base
		if i < rem {
			size++
		}
		if size < 1 {
			size = 1
		}
		if pos+size > end {
			pos = end - size
		}
		spans[i] = span{start: pos, size: size}
		pos += size + gap
	}
	return spans
}

// ApplyBorder converts an outer rectangle into the geometry sent to the
// server, whose width and height exclude the border on both sides. The outer
// box of the result plus its border equals r exactly.
func ApplyBorder(r Rect, border int) Rect {
	if border < 0 {
		border = 0
	}
	return Rect{
		X:      r.X,
		Y:      r.Y,
		Width:  max(1, r.Width-2*border),
		Height: max(1, r.Height-2*border),
	}
}

// WithBorder is the inverse of ApplyBorder.
func WithBorder(content Rect, border int) Rect {
	if border < 0 {
		border = 0
	}
	return Rect{
		X:      content.X,
		Y:      content.Y,
		Width:  content.Width + 2*border,
		Height: content.Height + 2*border,
	}
}

// Inset shrinks r by the given edge amounts, keeping at least 1x1.
func Inset(r Rect, top, bottom, left, right int) Rect {
	adjusted := Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  r.Width - left - right,
		Height: r.Height - top - bottom,
	}
	if adjusted.Width < 1 {
		adjusted.Width = 1
	}
	if adjusted.Height < 1 {
		adjusted.Height = 1
	}
	return adjusted
}

// Clamp moves r so that it lies within bounds where possible, shrinking it
// when it is larger than bounds.
func Clamp(r Rect, bounds Rect) Rect {
	if r.Width > bounds.Width {
		r.Width = bounds.Width
	}
	if r.Height > bounds.Height {
		r.Height = bounds.Height
	}
	if r.X+r.Width > bounds.X+bounds.Width {
		r.X = bounds.X + bounds.Width - r.Width
	}
	if r.Y+r.Height > bounds.Y+bounds.Height {
		r.Y = bounds.Y + bounds.Height - r.Height
	}
	if r.X < bounds.X {
		r.X = bounds.X
	}
	if r.Y < bounds.Y {
		r.Y = bounds.Y
	}
	return r
}

// Translate moves r from one frame of reference into another, keeping its
// offset relative to the frame origin and clamping it inside to.
func Translate(r Rect, from, to Rect) Rect {
	r.X = to.X + (r.X - from.X)
	r.Y = to.Y + (r.Y - from.Y)
	return Clamp(r, to)
}
