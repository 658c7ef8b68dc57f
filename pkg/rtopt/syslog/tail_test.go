package syslog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileTailSinceWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-10 * time.Minute).Format(time.Stamp)
	recent := now.Add(-2 * time.Minute).Format(time.Stamp)

	path := filepath.Join(t.TempDir(), "syslog")
	content := old + " host kernel: old message\n" +
		recent + " host jackd[100]: XRUN occurred\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tail := &FileTail{Paths: []string{path}, Now: func() time.Time { return now }}
	lines := tail.Since(5 * time.Minute)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %v", len(lines), lines)
	}
	if lines[0] != recent+" host jackd[100]: XRUN occurred" {
		t.Errorf("unexpected line: %q", lines[0])
	}
}

func TestFileTailRFC3339Timestamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "syslog")
	content := now.Add(-time.Hour).Format(time.RFC3339Nano) + " host old line\n" +
		now.Add(-time.Minute).Format(time.RFC3339Nano) + " host recent line\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tail := &FileTail{Paths: []string{path}, Now: func() time.Time { return now }}
	lines := tail.Since(5 * time.Minute)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %v", len(lines), lines)
	}
}

func TestFileTailUnparseableLinesIncluded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syslog")
	if err := os.WriteFile(path, []byte("no timestamp here\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tail := &FileTail{Paths: []string{path}}
	lines := tail.Since(time.Minute)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
}

func TestFileTailMissingFilesDegrade(t *testing.T) {
	tail := &FileTail{Paths: []string{
		filepath.Join(t.TempDir(), "nope"),
		filepath.Join(t.TempDir(), "also-nope"),
	}}
	if lines := tail.Since(time.Minute); lines != nil {
		t.Errorf("got %v, want nil", lines)
	}
}

func TestFileTailFallsBackToNextPath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "messages")
	if err := os.WriteFile(good, []byte("fallback line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tail := &FileTail{Paths: []string{filepath.Join(dir, "missing"), good}}
	lines := tail.Since(time.Minute)
	if len(lines) != 1 || lines[0] != "fallback line" {
		t.Errorf("got %v, want [fallback line]", lines)
	}
}

func TestParseTimestampBSDYearRollover(t *testing.T) {
	// A December line read in January must not land a year in the future.
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	ts, ok := parseTimestamp("Dec 31 23:59:00 host kernel: message", now)
	if !ok {
		t.Fatal("timestamp not parsed")
	}
	if ts.Year() != 2025 {
		t.Errorf("year = %d, want 2025", ts.Year())
	}
}

func TestParseKmsgRecord(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"6,1234,5678,-;usb 1-2: device descriptor read/64, error -71\n", "usb 1-2: device descriptor read/64, error -71"},
		{"plain message", "plain message"},
		{"3,1,2,-;retransmit timed out\x00", "retransmit timed out"},
	}
	for _, tt := range tests {
		if got := parseKmsgRecord(tt.in); got != tt.want {
			t.Errorf("parseKmsgRecord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKmsgTailMissingDevice(t *testing.T) {
	k := &KmsgTail{Path: filepath.Join(t.TempDir(), "kmsg")}
	if lines := k.Tail(10); lines != nil {
		t.Errorf("got %v, want nil", lines)
	}
}

func TestStaticKernelTail(t *testing.T) {
	ring := StaticKernel{"one", "two", "three"}
	got := ring.Tail(2)
	if len(got) != 2 || got[0] != "two" || got[1] != "three" {
		t.Errorf("Tail(2) = %v", got)
	}
	if got := ring.Tail(10); len(got) != 3 {
		t.Errorf("Tail(10) = %v", got)
	}
}
