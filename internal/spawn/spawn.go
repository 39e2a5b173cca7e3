// Package spawn launches user programs detached from the window manager.
package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/1broseidon/wwm/internal/wm"
)

// DefaultShell runs spawn commands.
const DefaultShell = "/bin/sh"

// Launcher starts commands through a shell in their own session, so they
// survive the window manager and never receive its terminal's signals.
type Launcher struct {
	shell  string
	logger *slog.Logger
	wg     sync.WaitGroup
}

var _ wm.Spawner = (*Launcher)(nil)

// NewLauncher creates a launcher. An empty shell means DefaultShell.
func NewLauncher(shell string, logger *slog.Logger) *Launcher {
	if shell == "" {
		shell = DefaultShell
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Launcher{shell: shell, logger: logger}
}

// Spawn starts command and returns once it is running. The child is reaped
// in the background and a failing exit is logged.
func (l *Launcher) Spawn(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return errors.New("spawn: empty command")
	}

	cmd := exec.Command(l.shell, "-c", command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %q: %w", command, err)
	}
	l.logger.Debug("spawned", "command", command, "pid", cmd.Process.Pid)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := cmd.Wait(); err != nil {
			l.logger.Warn("spawned command failed", "command", command, "error", err)
		}
	}()
	return nil
}

// Autostart launches each command once. Failures are logged and do not stop
// the remaining commands; the number started is returned.
func (l *Launcher) Autostart(commands []string) int {
	started := 0
	for _, command := range commands {
		if err := l.Spawn(command); err != nil {
			l.logger.Warn("autostart failed", "command", command, "error", err)
			continue
		}
		started++
	}
	if started > 0 {
		l.logger.Info("autostart", "started", started, "configured", len(commands))
	}
	return started
}

// Wait blocks until every spawned child has exited.
func (l *Launcher) Wait() {
	l.wg.Wait()
}
