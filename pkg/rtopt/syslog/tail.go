// Package syslog provides windowed read access to the system log and
// the kernel ring buffer.
//
// The xrun collector only ever needs a tail: "lines from the last N
// seconds" or "the last N kernel messages". Both sources are optional;
// every failure degrades to an empty result so a missing log file or
// unreadable /dev/kmsg never fails a collection pass.
package syslog

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Tail reads system log lines within a relative time window.
type Tail interface {
	// Since returns log lines no older than window. Unavailable
	// sources return nil.
	Since(window time.Duration) []string
}

// KernelTail reads the tail of the kernel ring buffer.
type KernelTail interface {
	// Tail returns up to n of the most recent kernel messages.
	Tail(n int) []string
}

// maxTailBytes bounds how much of a log file is read per query so a
// single tick cannot stall on a multi-gigabyte syslog.
const maxTailBytes = 1 << 20

// FileTail reads windowed lines from plain-text log files.
type FileTail struct {
	// Paths are candidate log files, tried in order. The first one
	// that opens is used.
	Paths []string

	// Now is the clock used for window comparisons. Nil means time.Now.
	Now func() time.Time
}

// NewFileTail returns a Tail over the usual syslog locations.
func NewFileTail(paths ...string) *FileTail {
	if len(paths) == 0 {
		paths = []string{"/var/log/syslog", "/var/log/messages"}
	}
	return &FileTail{Paths: paths}
}

func (t *FileTail) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Since returns log lines whose timestamp falls within the window.
// Lines without a parseable timestamp are included: dropping them
// would silently hide errors, and the window bound on bytes read keeps
// the overcount small.
func (t *FileTail) Since(window time.Duration) []string {
	for _, path := range t.Paths {
		lines, err := t.since(path, window)
		if err != nil {
			continue
		}
		return lines
	}
	return nil
}

func (t *FileTail) since(path string, window time.Duration) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxTailBytes {
		if _, err := f.Seek(-maxTailBytes, io.SeekEnd); err != nil {
			return nil, err
		}
	}

	cutoff := t.now().Add(-window)
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 512*1024)
	first := info.Size() <= maxTailBytes
	for scanner.Scan() {
		line := scanner.Text()
		if !first {
			// The seek likely landed mid-line; discard the fragment.
			first = true
			continue
		}
		ts, ok := parseTimestamp(line, t.now())
		if ok && ts.Before(cutoff) {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// parseTimestamp extracts the leading timestamp of a syslog line.
// Both the traditional BSD format ("Jan  2 15:04:05") and RFC 3339
// (used by rsyslog with high-precision timestamps) are understood.
func parseTimestamp(line string, now time.Time) (time.Time, bool) {
	if len(line) >= 15 {
		if ts, err := time.ParseInLocation(time.Stamp, line[:15], now.Location()); err == nil {
			// BSD timestamps carry no year.
			ts = ts.AddDate(now.Year(), 0, 0)
			if ts.After(now.Add(24 * time.Hour)) {
				ts = ts.AddDate(-1, 0, 0)
			}
			return ts, true
		}
	}
	if idx := strings.IndexByte(line, ' '); idx > 0 {
		if ts, err := time.Parse(time.RFC3339Nano, line[:idx]); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// KmsgTail reads the kernel ring buffer from /dev/kmsg.
type KmsgTail struct {
	// Path is the kmsg device. Empty means "/dev/kmsg".
	Path string
}

// NewKmsgTail returns a KernelTail over /dev/kmsg.
func NewKmsgTail() *KmsgTail {
	return &KmsgTail{}
}

func (k *KmsgTail) path() string {
	if k.Path == "" {
		return "/dev/kmsg"
	}
	return k.Path
}

// Tail returns up to n of the most recent kernel messages. The device
// is opened non-blocking; the read loop ends at EAGAIN once the ring
// is drained. Any error yields nil.
func (k *KmsgTail) Tail(n int) []string {
	fd, err := unix.Open(k.path(), unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil
	}
	defer unix.Close(fd)

	var lines []string
	buf := make([]byte, 8192)
	for {
		sz, err := unix.Read(fd, buf)
		if err != nil || sz <= 0 {
			break
		}
		lines = append(lines, parseKmsgRecord(string(buf[:sz])))
		if len(lines) > 4*n {
			// Keep memory bounded on very chatty rings.
			lines = lines[len(lines)-2*n:]
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// parseKmsgRecord strips the "pri,seq,usec,-;" prefix of a kmsg record,
// returning the message text.
func parseKmsgRecord(record string) string {
	record = strings.TrimRight(record, "\n\x00")
	if idx := strings.IndexByte(record, ';'); idx >= 0 {
		return record[idx+1:]
	}
	return record
}

// StaticTail is a fixed line set for tests.
type StaticTail []string

// Since returns all configured lines regardless of window.
func (s StaticTail) Since(time.Duration) []string { return s }

// StaticKernel is a fixed kernel ring for tests.
type StaticKernel []string

// Tail returns up to n of the configured lines.
func (s StaticKernel) Tail(n int) []string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
