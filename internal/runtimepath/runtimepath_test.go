package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/wwm-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)
	t.Setenv("WWM_SOCKET", "")

	tests := []struct {
		display string
		want    string
	}{
		{"", "wwm.sock"},
		{":0", "wwm-0.sock"},
		{":1.0", "wwm-1.sock"},
		{"remote:2", "wwm-remote-2.sock"},
		{"/tmp/launch-x/org.xquartz:0", "wwm-_tmp_launch-x_org.xquartz-0.sock"},
	}
	for _, tt := range tests {
		t.Setenv("DISPLAY", tt.display)
		got, err := SocketPath()
		if err != nil {
			t.Fatalf("SocketPath() error: %v", err)
		}
		if want := filepath.Join(td, tt.want); got != want {
			t.Errorf("DISPLAY=%q: SocketPath() = %q, want %q", tt.display, got, want)
		}
	}
}

func TestSocketPath_EnvOverride(t *testing.T) {
	t.Setenv("WWM_SOCKET", "/tmp/custom.sock")
	got, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if got != "/tmp/custom.sock" {
		t.Fatalf("SocketPath() = %q", got)
	}
}
