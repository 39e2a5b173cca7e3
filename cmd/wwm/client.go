package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/1broseidon/wwm/internal/bar"
	"github.com/1broseidon/wwm/internal/config"
	"github.com/1broseidon/wwm/internal/ipc"
)

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wwm status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show window manager status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}
	fmt.Printf("running:         %v\n", status.Running)
	fmt.Printf("pid:             %d\n", status.PID)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	fmt.Printf("monitors:        %d\n", status.Monitors)
	fmt.Printf("focused_monitor: %s\n", status.FocusedMonitor)
	fmt.Printf("workspace:       %s\n", status.Workspace)
	fmt.Printf("subscribers:     %d\n", status.Subscribers)
	return 0
}

func runBar(args []string) int {
	fs := flag.NewFlagSet("bar", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	monitor := fs.Int("monitor", -1, "Only print this monitor ID, counting from 0 (default: all)")
	plain := fs.Bool("plain", false, "Never use colors")
	once := fs.Bool("once", false, "Print the current state and exit")
	width := fs.Int("width", 0, "Line width (default: terminal width, none when piped)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wwm bar [--monitor N] [--plain] [--once] [--width N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print one line per monitor for every state change.")
		fmt.Fprintln(os.Stderr, "Output is plain text when stdout is not a terminal.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	opts := bar.Options{Width: *width}
	if *monitor >= 0 {
		opts.Monitor = monitor
	}
	if cfg, err := config.Load(); err == nil {
		opts.Accent = cfg.BorderColorFocused
	}
	renderer := bar.ForFile(os.Stdout, opts)
	if *plain {
		opts.Styled = false
		renderer = bar.NewRenderer(opts)
	}

	client := ipc.NewClient()
	if *once {
		snap, err := client.GetState()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, line := range renderer.Render(*snap) {
			fmt.Println(line)
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := bar.Run(ctx, client, os.Stdout, renderer); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseClick reads "<monitor> <workspace>", or "<monitor>" with layout set.
// Both IDs count from 0, as in the state snapshot.
func parseClick(args []string, layout bool) (ipc.BarClickPayload, error) {
	want := 2
	if layout {
		want = 1
	}
	if len(args) != want {
		return ipc.BarClickPayload{}, fmt.Errorf("expected %d arguments, got %d", want, len(args))
	}
	mon, err := strconv.Atoi(args[0])
	if err != nil || mon < 0 {
		return ipc.BarClickPayload{}, fmt.Errorf("invalid monitor %q", args[0])
	}
	if layout {
		return ipc.BarClickPayload{Monitor: mon, LayoutToggle: true}, nil
	}
	ws, err := strconv.Atoi(args[1])
	if err != nil || ws < 0 {
		return ipc.BarClickPayload{}, fmt.Errorf("invalid workspace %q", args[1])
	}
	return ipc.BarClickPayload{Monitor: mon, Workspace: ws}, nil
}

func runClick(args []string) int {
	fs := flag.NewFlagSet("click", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	layout := fs.Bool("layout", false, "Click the layout symbol instead of a workspace")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  wwm click <monitor> <workspace>")
		fmt.Fprintln(os.Stderr, "  wwm click --layout <monitor>")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	click, err := parseClick(fs.Args(), *layout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if click.LayoutToggle {
		err = client.ClickLayout(click.Monitor)
	} else {
		err = client.ClickWorkspace(click.Monitor, click.Workspace)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runAction(args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		fmt.Fprintln(os.Stderr, "Usage: wwm action <action> [args...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  wwm action view 2")
		fmt.Fprintln(os.Stderr, "  wwm action layout column")
		fmt.Fprintln(os.Stderr, "  wwm action spawn xterm")
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	client := ipc.NewClient()
	if err := client.RunAction(strings.Join(args, " ")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wwm reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Re-read the configuration file and apply it.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}
