package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/wwm-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/wwm-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the window manager's IPC socket path. WWM_SOCKET
// overrides it; otherwise the socket is named after the X display so that
// one window manager per display can run.
func SocketPath() (string, error) {
	if p := os.Getenv("WWM_SOCKET"); p != "" {
		return p, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "wwm"+displaySuffix(os.Getenv("DISPLAY"))+".sock"), nil
}

// displaySuffix turns ":0" or "host:1.0" into "-0" or "-host-1"; the screen
// number is dropped because the window manager owns every screen.
func displaySuffix(display string) string {
	if display == "" {
		return ""
	}
	host, num, ok := strings.Cut(display, ":")
	if !ok {
		return ""
	}
	num, _, _ = strings.Cut(num, ".")
	host = strings.ReplaceAll(host, "/", "_")
	if host == "" {
		return "-" + num
	}
	return "-" + host + "-" + num
}
