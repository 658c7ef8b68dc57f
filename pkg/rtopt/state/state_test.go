package state_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkessler/rtopt/pkg/rtopt/state"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want state.State
	}{
		{"standard", state.Standard},
		{"optimized", state.Optimized},
		{"optimized\n", state.Optimized},
		{"  standard  ", state.Standard},
		{"", state.Unknown},
		{"garbage", state.Unknown},
	}
	for _, tt := range tests {
		if got := state.Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStoreReadMissingFile(t *testing.T) {
	s := state.NewStore(filepath.Join(t.TempDir(), "state"))
	if got := s.Read(); got != state.Unknown {
		t.Errorf("Read() = %v, want Unknown", got)
	}
}

func TestStoreWriteReadRoundTrip(t *testing.T) {
	s := state.NewStore(filepath.Join(t.TempDir(), "state"))

	if err := s.Write(state.Optimized); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := s.Read(); got != state.Optimized {
		t.Errorf("Read() = %v, want Optimized", got)
	}

	if err := s.Write(state.Standard); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := s.Read(); got != state.Standard {
		t.Errorf("Read() = %v, want Standard", got)
	}
}

func TestStoreWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s := state.NewStore(filepath.Join(dir, "state"))
	if err := s.Write(state.Optimized); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "state.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind after Write")
	}
}

func TestTransactPersistsChange(t *testing.T) {
	s := state.NewStore(filepath.Join(t.TempDir(), "state"))

	err := s.Transact(func(current state.State) (state.State, error) {
		if current != state.Unknown {
			t.Errorf("current = %v, want Unknown", current)
		}
		return state.Optimized, nil
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	if got := s.Read(); got != state.Optimized {
		t.Errorf("Read() after Transact = %v, want Optimized", got)
	}
}

func TestTransactErrorAbortsWrite(t *testing.T) {
	s := state.NewStore(filepath.Join(t.TempDir(), "state"))
	if err := s.Write(state.Standard); err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("decision failed")
	err := s.Transact(func(state.State) (state.State, error) {
		return state.Optimized, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Transact error = %v, want %v", err, wantErr)
	}

	if got := s.Read(); got != state.Standard {
		t.Errorf("state changed despite error: %v", got)
	}
}

func TestTransactNoopSkipsWrite(t *testing.T) {
	dir := t.TempDir()
	s := state.NewStore(filepath.Join(dir, "state"))

	// Returning the current state must not create the file.
	err := s.Transact(func(current state.State) (state.State, error) {
		return current, nil
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "state")); !os.IsNotExist(err) {
		t.Error("state file created by no-op transaction")
	}
}
