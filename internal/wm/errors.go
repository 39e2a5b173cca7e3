package wm

import "errors"

var (
	ErrClientExists     = errors.New("window is already managed")
	ErrUnknownClient    = errors.New("unknown client")
	ErrUnknownWorkspace = errors.New("unknown workspace")
	ErrUnknownMonitor   = errors.New("unknown monitor")

	// ErrNoSurvivor is returned when every output disappeared at once and
	// workspaces have nowhere to go. It is fatal.
	ErrNoSurvivor = errors.New("no monitor left to hold workspaces")

	// ErrConnectionLost ends the session with a non-zero exit code.
	ErrConnectionLost = errors.New("connection to X server lost")

	// ErrQuit is returned by the loop after a quit action.
	ErrQuit = errors.New("quit requested")
)

// IsFatal reports whether err must terminate the event loop.
func IsFatal(err error) bool {
	return errors.Is(err, ErrQuit) || errors.Is(err, ErrConnectionLost) || errors.Is(err, ErrNoSurvivor)
}
