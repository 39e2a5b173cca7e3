// Package bar renders window manager snapshots as text lines, one per
// monitor, for terminals and line-oriented bar programs.
package bar

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/wwm/internal/wm"
)

const separator = " | "

// Options controls how snapshots are drawn.
type Options struct {
	// Styled enables colors; plain output marks the active workspace with
	// brackets and occupied ones with an asterisk.
	Styled bool
	// Width pads or truncates each line so the status text is right-aligned.
	// Zero leaves lines unpadded.
	Width int
	// Accent is the active workspace background, "#rrggbb".
	Accent string
	// Monitor limits output to one monitor ID; nil draws all.
	Monitor *int
}

// Renderer turns snapshots into lines.
type Renderer struct {
	opts     Options
	active   lipgloss.Style
	occupied lipgloss.Style
	empty    lipgloss.Style
	layout   lipgloss.Style
	title    lipgloss.Style
	status   lipgloss.Style
}

// NewRenderer creates a renderer.
func NewRenderer(opts Options) *Renderer {
	accent := opts.Accent
	if accent == "" {
		accent = "62"
	}
	return &Renderer{
		opts: opts,
		active: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color(accent)).
			Bold(true).
			Padding(0, 1),
		occupied: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Padding(0, 1),
		empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1),
		layout: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")),
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),
	}
}

// ForFile picks styled output and width from the terminal f is attached to.
// Pipes get plain, unpadded lines.
func ForFile(f *os.File, opts Options) *Renderer {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		opts.Styled = false
		opts.Width = 0
		return NewRenderer(opts)
	}
	opts.Styled = true
	if w, _, err := term.GetSize(fd); err == nil && opts.Width == 0 {
		opts.Width = w
	}
	return NewRenderer(opts)
}

// Render returns one line per monitor, without trailing newline.
func (r *Renderer) Render(snap wm.Snapshot) []string {
	var lines []string
	for _, m := range snap.Monitors {
		if r.opts.Monitor != nil && m.ID != *r.opts.Monitor {
			continue
		}
		status := ""
		if m.Focused {
			status = snap.Status
		}
		lines = append(lines, r.line(m, status))
	}
	return lines
}

func (r *Renderer) line(m wm.MonitorSnapshot, status string) string {
	var tags strings.Builder
	for _, w := range m.Workspaces {
		tags.WriteString(r.tag(w))
	}

	left := tags.String() + separator + r.paint(r.layout, m.Layout)
	if m.Title != "" {
		left += separator + r.paint(r.title, m.Title)
	}
	if status == "" && r.opts.Width == 0 {
		return left
	}

	right := r.paint(r.status, status)
	if r.opts.Width == 0 {
		return left + separator + right
	}
	return fit(left, right, r.opts.Width)
}

func (r *Renderer) tag(w wm.WorkspaceSummary) string {
	if r.opts.Styled {
		switch {
		case w.Active:
			return r.active.Render(w.Name)
		case w.Occupied:
			return r.occupied.Render(w.Name)
		default:
			return r.empty.Render(w.Name)
		}
	}
	name := w.Name
	if w.Occupied {
		name += "*"
	}
	if w.Active {
		return "[" + name + "]"
	}
	return " " + name + " "
}

func (r *Renderer) paint(style lipgloss.Style, s string) string {
	if !r.opts.Styled || s == "" {
		return s
	}
	return style.Render(s)
}

// fit right-aligns right within width, truncating left when both do not fit.
func fit(left, right string, width int) string {
	lw, rw := lipgloss.Width(left), lipgloss.Width(right)
	if rw >= width {
		return truncate(right, width)
	}
	if lw+rw+1 > width {
		left = truncate(left, width-rw-1)
		lw = lipgloss.Width(left)
	}
	return left + strings.Repeat(" ", width-lw-rw) + right
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// Source streams snapshots; *ipc.Client satisfies it.
type Source interface {
	Subscribe(ctx context.Context, fn func(wm.Snapshot) error) error
}

// Run draws every snapshot from src to w until ctx is done or the stream
// ends. Styled output redraws in place; plain output appends lines.
func Run(ctx context.Context, src Source, w io.Writer, r *Renderer) error {
	return src.Subscribe(ctx, func(snap wm.Snapshot) error {
		lines := r.Render(snap)
		var b strings.Builder
		if r.opts.Styled {
			b.WriteString("\x1b[H\x1b[2J")
		}
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return fmt.Errorf("write bar: %w", err)
		}
		return nil
	})
}
