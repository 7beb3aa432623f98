//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// terminate kills the process tree with taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func terminate(pid int) error {
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
