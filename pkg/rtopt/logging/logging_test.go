package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkessler/rtopt/pkg/rtopt/logging"
)

// Note: these tests share the package's global state and cannot run in
// parallel.
func TestInit(t *testing.T) {
	validDir := t.TempDir()
	componentsDir := t.TempDir()
	invalidDir := t.TempDir()

	tests := []struct {
		name    string
		cfg     logging.Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: logging.Config{
				Level: "info",
				Path:  filepath.Join(validDir, "test.log"),
			},
			wantErr: false,
		},
		{
			name: "valid config with component overrides",
			cfg: logging.Config{
				Level: "info",
				Path:  filepath.Join(componentsDir, "components.log"),
				Components: map[string]string{
					"controller": "debug",
					"monitor":    "warn",
				},
			},
			wantErr: false,
		},
		{
			name: "invalid log level",
			cfg: logging.Config{
				Level: "invalid",
				Path:  filepath.Join(invalidDir, "invalid.log"),
			},
			wantErr: true,
		},
		{
			name: "invalid component level",
			cfg: logging.Config{
				Level:      "info",
				Path:       filepath.Join(invalidDir, "component.log"),
				Components: map[string]string{"controller": "loud"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logging.Init(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if closeErr := logging.Close(); closeErr != nil {
					t.Errorf("Close() error = %v", closeErr)
				}
			}
		})
	}
}

func TestGetBeforeInitIsSilent(t *testing.T) {
	// Must not panic; output goes to io.Discard.
	logger := logging.Get("uninitialized-component")
	logger.Info("this message is discarded")
	logger.Error("so is this")
}

func TestLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rtopt.log")
	err := logging.Init(logging.Config{Level: "debug", Path: path})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer logging.Close()

	logger := logging.Get("testcomp")
	logger.Info("optimization applied", "cores", 8)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "optimization applied") {
		t.Errorf("log file missing message: %q", string(data))
	}
	if !strings.Contains(string(data), "testcomp") {
		t.Errorf("log file missing component prefix: %q", string(data))
	}
}

func TestComponentLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rtopt.log")
	err := logging.Init(logging.Config{
		Level:      "info",
		Path:       path,
		Components: map[string]string{"quiet": "error"},
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer logging.Close()

	logging.Get("quiet").Info("suppressed message")
	logging.Get("normal").Info("visible message")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "suppressed message") {
		t.Error("component override did not suppress info message")
	}
	if !strings.Contains(string(data), "visible message") {
		t.Error("default level suppressed an info message")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logging.Level
		wantErr bool
	}{
		{"debug", logging.LevelDebug, false},
		{"info", logging.LevelInfo, false},
		{"warn", logging.LevelWarn, false},
		{"warning", logging.LevelWarn, false},
		{"ERROR", logging.LevelError, false},
		{"verbose", logging.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
