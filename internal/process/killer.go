// Package process delivers termination signals to endpoint owners.
package process

import (
	"fmt"
	"syscall"
)

// protectedPIDs lists PIDs that should never be signaled.
var protectedPIDs = map[int]bool{
	0: true,
	1: true,
}

// Killer delivers termination signals. Delivery is fire-and-forget: the
// caller observes process exit on a later resolution pass, never by
// waiting here.
type Killer interface {
	Terminate(pid int, force bool) error
}

// SysKiller implements Killer with real signals.
type SysKiller struct{}

// Terminate sends SIGTERM, or SIGKILL when force is set. It refuses
// protected and non-positive PIDs, and returns as soon as the signal is
// delivered.
func (SysKiller) Terminate(pid int, force bool) error {
	if pid <= 0 || protectedPIDs[pid] {
		return fmt.Errorf("refusing to signal protected PID %d", pid)
	}
	if !IsRunning(pid) {
		return fmt.Errorf("process %d is not running", pid)
	}

	sig := syscall.SIGTERM
	if force {
		sig = syscall.SIGKILL
	}
	if err := syscall.Kill(pid, sig); err != nil {
		return fmt.Errorf("failed to send signal %d to PID %d: %w", sig, pid, err)
	}
	return nil
}

// IsRunning checks if a process with the given PID exists.
func IsRunning(pid int) bool {
	// On Unix, sending signal 0 checks if the process exists.
	return syscall.Kill(pid, 0) == nil
}
