// Package proc provides process table lookup by executable name.
//
// The optimizer needs to find audio engine and audio application
// processes repeatedly. Lookups read /proc directly instead of spawning
// pgrep; a missing process is an empty result, never an error.
package proc

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Lookup finds processes by executable name.
type Lookup interface {
	// FindByName returns the PIDs of all processes whose command name
	// matches name exactly. No match returns an empty slice.
	FindByName(name string) []int
}

// ProcFS looks up processes by scanning a proc filesystem.
type ProcFS struct {
	// Root is the proc mount point. Empty means "/proc".
	Root string
}

// NewProcFS returns a Lookup backed by the system /proc.
func NewProcFS() *ProcFS {
	return &ProcFS{}
}

func (p *ProcFS) root() string {
	if p.Root == "" {
		return "/proc"
	}
	return p.Root
}

// FindByName scans proc for processes whose comm matches name.
// The kernel truncates comm to 15 characters, so names longer than
// that are compared against the truncated form as well.
func (p *ProcFS) FindByName(name string) []int {
	entries, err := os.ReadDir(p.root())
	if err != nil {
		return nil
	}

	// comm is limited to TASK_COMM_LEN-1 bytes.
	truncated := name
	if len(truncated) > 15 {
		truncated = truncated[:15]
	}

	var pids []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(p.root(), e.Name(), "comm"))
		if err != nil {
			continue
		}
		comm := strings.TrimSpace(string(data))
		if comm == name || comm == truncated {
			pids = append(pids, pid)
		}
	}
	return pids
}

// Running reports whether at least one process with the given name exists.
func Running(l Lookup, name string) bool {
	return len(l.FindByName(name)) > 0
}

// Static is a fixed name-to-PIDs table for tests.
type Static map[string][]int

// FindByName returns the configured PIDs for name.
func (s Static) FindByName(name string) []int {
	return s[name]
}
