package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkessler/rtopt/pkg/rtopt/proc"
	"github.com/mkessler/rtopt/pkg/rtopt/syslog"
)

type frameRecorder struct {
	frames  []LiveFrame
	details []LiveFrame
}

func (r *frameRecorder) Frame(f LiveFrame)  { r.frames = append(r.frames, f) }
func (r *frameRecorder) Detail(f LiveFrame) { r.details = append(r.details, f) }

func writeJackdrc(t *testing.T, home, cmdline string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(home, ".jackdrc"), []byte(cmdline), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLiveTickReloadsSettingsOnNewXruns(t *testing.T) {
	deps := testDeps(t, connectedFS(), proc.Static{"jackd": {100}}, syslog.StaticTail{})
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeJackdrc(t, home, "/usr/bin/jackd -dalsa -r48000 -p256 -n2\n")

	recorder := &frameRecorder{}
	m := NewLiveMonitor(deps, recorder)
	session := NewSession(time.Now(), 0)

	// A quiet tick never re-reads the config file.
	m.tick(session, time.Now())
	if len(recorder.frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(recorder.frames))
	}
	if recorder.frames[0].Settings.Known() {
		t.Error("quiet tick reloaded settings")
	}

	// The engine restarts with a larger buffer, then xruns appear.
	writeJackdrc(t, home, "/usr/bin/jackd -dalsa -r48000 -p512 -n2\n")
	deps.Collector.Syslog = syslog.StaticTail{
		"Mar  1 12:00:02 host jackd[100]: XRUN of at least 0.9 ms",
	}

	m.tick(session, time.Now())

	last := recorder.frames[len(recorder.frames)-1]
	if last.Settings.Frames != 512 {
		t.Errorf("frame settings Frames = %d, want 512 from the current config", last.Settings.Frames)
	}
	if last.Recommended != 768 {
		t.Errorf("Recommended = %d, want 768 for 512 frames at rate 1", last.Recommended)
	}
	if len(recorder.details) != 1 {
		t.Errorf("got %d detail lines, want 1", len(recorder.details))
	}
}
