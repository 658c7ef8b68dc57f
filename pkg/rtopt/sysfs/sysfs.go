// Package sysfs abstracts the virtual control files the optimizer
// reads and writes: cpufreq governors, IRQ affinity masks, kernel
// tunables, USB power settings.
//
// All paths are relative to the filesystem root ("/"), so tests can
// substitute an in-memory fake. Writes through Writer are idempotent:
// a value that already matches the target is skipped entirely.
package sysfs

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mkessler/rtopt/pkg/rtopt/logging"
)

// FS is the control-file capability surface.
type FS interface {
	// ReadValue reads and trims a control file.
	ReadValue(name string) (string, error)

	// WriteValue writes a control file.
	WriteValue(name, value string) error

	// Glob expands a pattern against the filesystem root.
	Glob(pattern string) []string
}

// OS is the production FS rooted at "/".
type OS struct{}

// ReadValue reads and trims /name.
func (OS) ReadValue(name string) (string, error) {
	data, err := os.ReadFile("/" + name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteValue writes /name. Control files reject partial writes, so the
// value is written in one call.
func (OS) WriteValue(name, value string) error {
	return os.WriteFile("/"+name, []byte(value), 0644)
}

// Glob expands /pattern, returning matches with the leading slash
// stripped so results stay root-relative.
func (OS) Glob(pattern string) []string {
	matches, err := filepath.Glob("/" + pattern)
	if err != nil {
		return nil
	}
	for i, m := range matches {
		matches[i] = strings.TrimPrefix(m, "/")
	}
	return matches
}

// Writer applies idempotent scalar writes and tracks how many actually
// hit the filesystem. Individual failures are debug-logged and never
// abort a batch: a missing kernel feature or read-only control file
// must not prevent the remaining writes.
type Writer struct {
	FS  FS
	log *logging.Logger

	written int
	skipped int
	failed  int
}

// NewWriter returns a Writer over fs.
func NewWriter(fs FS) *Writer {
	return &Writer{FS: fs, log: logging.Get("sysfs")}
}

func (w *Writer) logger() *logging.Logger {
	if w.log == nil {
		w.log = logging.Get("sysfs")
	}
	return w.log
}

// Apply writes value to name unless the current value already matches.
// Returns true only when a write actually happened.
func (w *Writer) Apply(name, value string) bool {
	current, err := w.FS.ReadValue(name)
	if err == nil && current == value {
		w.skipped++
		return false
	}

	if err := w.FS.WriteValue(name, value); err != nil {
		w.failed++
		w.logger().Debug("control write failed", "path", name, "value", value, "err", err)
		return false
	}

	w.written++
	w.logger().Debug("control write", "path", name, "value", value)
	return true
}

// Written returns the number of writes that hit the filesystem since
// the last Reset.
func (w *Writer) Written() int { return w.written }

// Failed returns the number of failed writes since the last Reset.
func (w *Writer) Failed() int { return w.failed }

// Reset clears the write counters, starting a new batch.
func (w *Writer) Reset() {
	w.written = 0
	w.skipped = 0
	w.failed = 0
}

// Mem is an in-memory FS for tests.
type Mem struct {
	// Files maps root-relative paths to contents.
	Files map[string]string

	// ReadOnly lists paths whose writes fail.
	ReadOnly map[string]bool

	// Writes records every successful WriteValue in order.
	Writes []string
}

// NewMem returns an empty in-memory FS.
func NewMem() *Mem {
	return &Mem{Files: make(map[string]string), ReadOnly: make(map[string]bool)}
}

// ReadValue returns the stored value.
func (m *Mem) ReadValue(name string) (string, error) {
	v, ok := m.Files[name]
	if !ok {
		return "", os.ErrNotExist
	}
	return strings.TrimSpace(v), nil
}

// WriteValue stores the value unless the path is marked read-only.
func (m *Mem) WriteValue(name, value string) error {
	if m.ReadOnly[name] {
		return os.ErrPermission
	}
	if m.Files == nil {
		m.Files = make(map[string]string)
	}
	m.Files[name] = value
	m.Writes = append(m.Writes, name+"="+value)
	return nil
}

// Glob matches the pattern against stored paths.
func (m *Mem) Glob(pattern string) []string {
	var matches []string
	for name := range m.Files {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches
}
