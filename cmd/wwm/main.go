package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/wwm/internal/config"
	"github.com/1broseidon/wwm/internal/ipc"
	"github.com/1broseidon/wwm/internal/runtimepath"
	"github.com/1broseidon/wwm/internal/spawn"
	"github.com/1broseidon/wwm/internal/wm"
	"github.com/1broseidon/wwm/internal/x11"
)

func main() {
	if len(os.Args) < 2 || (len(os.Args[1]) > 0 && os.Args[1][0] == '-' && !isHelp(os.Args[1])) {
		os.Exit(runWM(os.Args[1:]))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runWM(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "bar":
		os.Exit(runBar(os.Args[2:]))
	case "click":
		os.Exit(runClick(os.Args[2:]))
	case "action":
		os.Exit(runAction(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wwm [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Run the window manager (default)")
	fmt.Fprintln(w, "  status              Show window manager status")
	fmt.Fprintln(w, "  bar                 Print bar lines for every snapshot")
	fmt.Fprintln(w, "  click               Report a bar click")
	fmt.Fprintln(w, "  action              Run an action, e.g. 'view 2'")
	fmt.Fprintln(w, "  reload              Reload the configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'wwm <command> --help' for command-specific options.")
}

// exitCode maps the control loop's result to the process exit status.
func exitCode(err error) int {
	if err == nil || errors.Is(err, wm.ErrQuit) {
		return 0
	}
	return 1
}

func runWM(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/wwm/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wwm run [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the window manager on $DISPLAY.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	if len(res.Files) > 0 {
		logger.Info("configuration loaded", "files", res.Files)
	} else {
		logger.Info("configuration loaded", "path", res.Path, "defaults", true)
	}

	conn, err := x11.NewConnection(logger)
	if err != nil {
		logger.Error("failed to connect to X server", "error", err)
		return 1
	}
	defer conn.Close()

	if err := conn.BecomeWM(); err != nil {
		if errors.Is(err, x11.ErrAnotherWM) {
			logger.Error("another window manager is already running")
		} else {
			logger.Error("failed to take over the root window", "error", err)
		}
		return 1
	}

	events := make(chan wm.Event, 64)
	launcher := spawn.NewLauncher("", logger)

	var publisher wm.Publisher
	ipcServer, err := newIPCServer(events, *path, logger)
	if err != nil {
		logger.Warn("IPC disabled", "error", err)
	} else {
		publisher = ipcServer
	}

	d, err := wm.NewDispatcher(conn, wm.Options{
		Config:    cfg,
		Logger:    logger,
		Spawner:   launcher,
		Publisher: publisher,
	})
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return 1
	}

	if ipcServer != nil {
		if err := ipcServer.Start(); err != nil {
			logger.Warn("IPC disabled", "error", err)
		} else {
			defer ipcServer.Stop()
		}
	}

	existing, err := conn.ExistingWindows()
	if err != nil {
		logger.Warn("failed to list existing windows", "error", err)
	}
	if err := d.Start(existing); err != nil {
		logger.Error("failed to start", "error", err)
		return 1
	}
	launcher.Autostart(cfg.Autostart)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go conn.ReadEvents(ctx, events)
	go handleSignals(ctx, cancel, events, *path, logger)

	err = d.Run(ctx, events)
	switch {
	case err == nil:
		logger.Info("shutting down")
	case errors.Is(err, wm.ErrQuit):
		logger.Info("quit requested")
	default:
		logger.Error("window manager stopped", "error", err)
	}
	return exitCode(err)
}

func newIPCServer(events chan<- wm.Event, path string, logger *slog.Logger) (*ipc.Server, error) {
	sock, err := runtimepath.SocketPath()
	if err != nil {
		return nil, err
	}
	return ipc.NewServer(ipc.ServerOptions{
		SocketPath: sock,
		Events:     events,
		LoadConfig: func() (*config.Config, error) {
			res, err := loadConfig(path)
			if err != nil {
				return nil, err
			}
			return res.Config, nil
		},
		Logger: logger,
	})
}

// handleSignals turns SIGHUP into a reload event and SIGINT/SIGTERM into a
// clean shutdown.
func handleSignals(ctx context.Context, cancel context.CancelFunc, events chan<- wm.Event, path string, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			if sig != syscall.SIGHUP {
				logger.Info("received signal", "signal", sig.String())
				cancel()
				return
			}
			logger.Info("received SIGHUP, reloading config")
			if err := reload(ctx, events, path); err != nil {
				logger.Warn("config reload failed", "error", err)
				continue
			}
			logger.Info("config reloaded")
		}
	}
}

func reload(ctx context.Context, events chan<- wm.Event, path string) error {
	res, err := loadConfig(path)
	if err != nil {
		return err
	}
	table, err := res.Config.KeyTable()
	if err != nil {
		return err
	}
	reply := make(chan error, 1)
	select {
	case events <- wm.Reload{Config: res.Config, Keys: table, Reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}
