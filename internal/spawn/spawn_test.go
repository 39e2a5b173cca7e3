package spawn

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSpawn_RunsThroughShell(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "out")

	l := NewLauncher("", nil)
	if err := l.Spawn("echo hello > " + marker); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	l.Wait()

	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.TrimSpace(string(data)) != "hello" {
		t.Fatalf("output = %q", data)
	}
}

func TestSpawn_EmptyCommand(t *testing.T) {
	l := NewLauncher("", nil)
	if err := l.Spawn("   "); err == nil {
		t.Fatalf("expected error for an empty command")
	}
}

func TestSpawn_MissingShell(t *testing.T) {
	l := NewLauncher(filepath.Join(t.TempDir(), "no-such-shell"), nil)
	if err := l.Spawn("true"); err == nil {
		t.Fatalf("expected error for a missing shell")
	}
}

func TestSpawn_LogsFailingExit(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	l := NewLauncher("", logger)
	if err := l.Spawn("exit 3"); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	l.Wait()

	if !strings.Contains(buf.String(), "spawned command failed") || !strings.Contains(buf.String(), "exit status 3") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestAutostart_ContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")

	l := NewLauncher("", nil)
	got := l.Autostart([]string{"touch " + a, "", "touch " + b})
	l.Wait()

	if got != 2 {
		t.Fatalf("Autostart started %d, want 2", got)
	}
	for _, p := range []string{a, b} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("autostart did not run for %s: %v", p, err)
		}
	}
}
