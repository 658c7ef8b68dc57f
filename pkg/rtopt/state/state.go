// Package state persists the optimization state across invocations.
//
// The daemon loop, the interactive once command, and manual operator
// invocations may all run concurrently; they share this single-slot
// record. Transact takes an advisory flock around the read-decide-write
// sequence so concurrent deciders serialize instead of racing.
package state

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// State is the persisted optimization state.
type State int

// Optimization states. Unknown occurs only before the first write and
// forces a full transition on the first decision.
const (
	Unknown State = iota
	Standard
	Optimized
)

// String returns the on-disk representation of the state.
func (s State) String() string {
	switch s {
	case Standard:
		return "standard"
	case Optimized:
		return "optimized"
	default:
		return "unknown"
	}
}

// Parse maps an on-disk value back to a State. Unrecognized content is
// Unknown.
func Parse(s string) State {
	switch strings.TrimSpace(s) {
	case "standard":
		return Standard
	case "optimized":
		return Optimized
	default:
		return Unknown
	}
}

// Store is the single-slot state file.
type Store struct {
	// Path is the state file location.
	Path string
}

// NewStore returns a Store at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Read returns the persisted state. A missing or unreadable file is
// Unknown, not an error.
func (s *Store) Read() State {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Unknown
	}
	return Parse(string(data))
}

// Write persists the state atomically (write to temp file, rename).
func (s *Store) Write(st State) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(st.String()+"\n"), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

// Transact runs fn under an exclusive advisory lock, passing the
// current state. If fn returns a different state it is persisted
// before the lock is released. fn's error aborts the write.
func (s *Store) Transact(fn func(current State) (State, error)) error {
	unlock, err := s.lock()
	if err != nil {
		// Lock failure (e.g. read-only filesystem) degrades to the
		// unlocked read-decide-write the original design accepted.
		unlock = func() {}
	}
	defer unlock()

	current := s.Read()
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next != current {
		return s.Write(next)
	}
	return nil
}

// lock takes an exclusive flock on a sidecar lock file and returns the
// release function.
func (s *Store) lock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(s.Path+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
