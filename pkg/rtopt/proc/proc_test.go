package proc_test

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"

	"github.com/mkessler/rtopt/pkg/rtopt/proc"
)

// fakeProc builds a proc-like directory with comm files.
func fakeProc(t *testing.T, comms map[int]string) string {
	t.Helper()
	root := t.TempDir()
	for pid, comm := range comms {
		dir := filepath.Join(root, strconv.Itoa(pid))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "comm"), []byte(comm+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Non-PID entries must be skipped.
	if err := os.MkdirAll(filepath.Join(root, "sys"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestFindByName(t *testing.T) {
	root := fakeProc(t, map[int]string{
		100: "jackd",
		200: "pipewire",
		300: "jackd",
		400: "bash",
	})

	p := &proc.ProcFS{Root: root}
	pids := p.FindByName("jackd")
	sort.Ints(pids)
	if len(pids) != 2 || pids[0] != 100 || pids[1] != 300 {
		t.Errorf("FindByName(jackd) = %v, want [100 300]", pids)
	}

	if pids := p.FindByName("reaper"); len(pids) != 0 {
		t.Errorf("FindByName(reaper) = %v, want empty", pids)
	}
}

func TestFindByNameTruncatedComm(t *testing.T) {
	// The kernel truncates comm to 15 characters.
	root := fakeProc(t, map[int]string{
		500: "a-very-long-pro",
	})

	p := &proc.ProcFS{Root: root}
	pids := p.FindByName("a-very-long-process-name")
	if len(pids) != 1 || pids[0] != 500 {
		t.Errorf("FindByName(long name) = %v, want [500]", pids)
	}
}

func TestFindByNameMissingRoot(t *testing.T) {
	p := &proc.ProcFS{Root: filepath.Join(t.TempDir(), "nonexistent")}
	if pids := p.FindByName("jackd"); pids != nil {
		t.Errorf("FindByName on missing root = %v, want nil", pids)
	}
}

func TestRunning(t *testing.T) {
	lookup := proc.Static{"jackd": {42}}
	if !proc.Running(lookup, "jackd") {
		t.Error("Running(jackd) = false, want true")
	}
	if proc.Running(lookup, "pipewire") {
		t.Error("Running(pipewire) = true, want false")
	}
}
