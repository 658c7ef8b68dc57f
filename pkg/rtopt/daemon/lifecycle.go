// Package daemon manages the monitor daemon's process lifecycle: PID
// file, liveness checks, and stale-daemon recovery.
package daemon

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/mkessler/rtopt/pkg/rtopt/logging"
)

// ErrAlreadyRunning is returned when trying to start a daemon that's
// already running.
var ErrAlreadyRunning = errors.New("daemon already running")

// WritePIDFile writes the current process ID to a file.
func WritePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0644)
}

// ReadPIDFile reads a PID from a file.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}

	return pid, nil
}

// RemovePIDFile removes the PID file.
func RemovePIDFile(path string) error {
	return os.Remove(path)
}

// IsRunning checks if a daemon is running based on its PID file.
func IsRunning(pidPath string) bool {
	pid, err := ReadPIDFile(pidPath)
	if err != nil {
		return false
	}
	return IsProcessRunning(pid)
}

// IsProcessRunning checks if a process with the given PID is running.
func IsProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 probes existence without touching the process.
	return process.Signal(syscall.Signal(0)) == nil
}

// Stop signals the running daemon to terminate gracefully.
func Stop(pidPath string) error {
	pid, err := ReadPIDFile(pidPath)
	if err != nil {
		return err
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Signal(syscall.SIGTERM)
}

// RecoverStale checks for and cleans up stale daemon artifacts.
// Returns nil if cleanup succeeded or wasn't needed.
// Returns ErrAlreadyRunning if a daemon is actually running.
func RecoverStale(pidPath string) error {
	pid, err := ReadPIDFile(pidPath)
	if err != nil {
		// No PID file or invalid PID means nothing to recover.
		return nil //nolint:nilerr // intentional: missing/invalid PID file is not an error condition
	}

	if IsProcessRunning(pid) {
		return ErrAlreadyRunning
	}

	log := logging.Get("daemon")
	log.Warn("cleaning up stale daemon files", "stale_pid", pid)
	_ = os.Remove(pidPath)

	return nil
}
