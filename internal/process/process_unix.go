//go:build !windows

package process

import "syscall"

// terminate sends SIGKILL to the process group led by pid.
func terminate(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
