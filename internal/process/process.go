// Package process terminates browser process trees left behind by a launcher.
package process

import "errors"

// ErrInvalidPID is returned for PIDs that would target more than one process
// tree, such as 0 (the caller's own group) or negative values.
var ErrInvalidPID = errors.New("invalid pid")

// Terminate kills pid and its children. It validates the PID, then defers
// to the platform implementation.
func Terminate(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return terminate(pid)
}
