package xrun

import (
	"bufio"
	"context"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mkessler/rtopt/pkg/rtopt/engine"
	"github.com/mkessler/rtopt/pkg/rtopt/logging"
	"github.com/mkessler/rtopt/pkg/rtopt/proc"
	"github.com/mkessler/rtopt/pkg/rtopt/syslog"
)

// Stats is the result of one engine collection pass.
type Stats struct {
	// Primary counts xruns attributed to the primary engine (JACK).
	Primary uint

	// Secondary counts dropout messages from the secondary engine
	// (PipeWire tunnel/resync messages).
	Secondary uint

	// Total is Primary + Secondary.
	Total uint
}

// SystemStats covers broader system and hardware error signals over an
// independent, longer window.
type SystemStats struct {
	// Recent counts generic audio subsystem error lines.
	Recent uint

	// Severe counts USB/audio hardware failure lines after the benign
	// exclusion filter, plus kernel ring buffer hits.
	Severe uint

	// EngineMessages counts engine-related log lines in the window.
	EngineMessages uint
}

// Detection patterns. Multiple methods intentionally overlap: they
// catch different failure modes, and counts are summed rather than
// de-duplicated as a conservative bias. The severity thresholds are
// tuned against that over-counting, so do not deduplicate here.
var (
	xrunPattern     = regexp.MustCompile(`(?i)xrun|under-?run|overrun`)
	jackLinePattern = regexp.MustCompile(`(?i)jackd|jackdbus|jack server`)
	guiXrunPattern  = regexp.MustCompile(`XRUN`)
	tunnelPattern   = regexp.MustCompile(`(?i)(pipewire|pw\.[a-z-]+|pulse tunnel).*(under-?run|resync|missed|too slow)`)
	audioErrPattern = regexp.MustCompile(`(?i)xrun|under-?run|overrun|snd[_-]|audio.*(error|fail)`)
	usbFailPattern  = regexp.MustCompile(`(?i)usb.*(error|fail|disconnect|reset|timed out|cannot)|snd[_-]usb[_-]audio.*(error|fail)`)
	enginePattern   = regexp.MustCompile(`(?i)jackd|jackdbus|pipewire|wireplumber`)
)

// benignUSBMessages excludes routine re-enumeration noise from the
// severe counter. Without this list every device reset during normal
// hotplug would be conflated with hardware failure.
var benignUSBMessages = []string{
	"device reset",
	"reset high-speed",
	"reset full-speed",
	"reset super-speed",
	"reset superspeed",
	"reset low-speed",
	"device descriptor read",
	"descriptor read",
	"new usb device",
	"usb device number",
	"now attached",
	"enabled",
	"configured",
}

// Probe is a bounded active check against the primary engine.
type Probe interface {
	// Run observes the engine until ctx expires and returns the number
	// of xruns seen. Errors and timeouts degrade to 0.
	Run(ctx context.Context) uint
}

// Default collection windows.
const (
	DefaultProbeWindow  = 5 * time.Second
	MaxProbeWindow      = 7 * time.Second
	DefaultLiveWindow   = 15 * time.Second
	DefaultSystemWindow = 5 * time.Minute
	kernelTailLines     = 100
)

// Collector gathers raw xrun counters from multiple independent,
// possibly-unavailable sources. Every method degrades unavailable
// sources to zero counts; the collector never returns an error.
type Collector struct {
	Procs  proc.Lookup
	Syslog syslog.Tail
	Kernel syslog.KernelTail

	// Probe is the optional active probe. Nil skips the method.
	Probe Probe

	// ProbeWindow bounds the active probe. Zero means
	// DefaultProbeWindow; values above MaxProbeWindow are clamped.
	ProbeWindow time.Duration

	// GUILogPath is the qjackctl message log, if the GUI is in use.
	GUILogPath string

	// ClientLogPath is the lightweight client-probe fallback log.
	ClientLogPath string

	log *logging.Logger
}

// NewCollector returns a Collector over the given sources.
func NewCollector(procs proc.Lookup, sys syslog.Tail, kernel syslog.KernelTail) *Collector {
	return &Collector{
		Procs:  procs,
		Syslog: sys,
		Kernel: kernel,
		log:    logging.Get("xrun"),
	}
}

func (c *Collector) logger() *logging.Logger {
	if c.log == nil {
		c.log = logging.Get("xrun")
	}
	return c.log
}

func (c *Collector) probeWindow() time.Duration {
	w := c.ProbeWindow
	if w <= 0 {
		w = DefaultProbeWindow
	}
	if w > MaxProbeWindow {
		w = MaxProbeWindow
	}
	return w
}

// EngineXruns runs the full collection pass: an active probe against
// the primary engine when it is running, the passive fallbacks, and the
// secondary engine's tunnel log scan. Methods whose prerequisite
// process or log is absent contribute 0.
func (c *Collector) EngineXruns(ctx context.Context) Stats {
	var primary uint

	if engine.Probe(c.Procs).JackRunning {
		primary += c.activeProbe(ctx)
		primary += countFileMatches(c.ClientLogPath, xrunPattern)
		primary += c.syslogJackXruns(c.probeWindow() + DefaultLiveWindow)
		primary += countFileMatches(c.GUILogPath, guiXrunPattern)
	}

	secondary := c.tunnelXruns(DefaultLiveWindow)

	stats := Stats{
		Primary:   primary,
		Secondary: secondary,
		Total:     primary + secondary,
	}
	c.logger().Debug("engine collection pass",
		"primary", stats.Primary, "secondary", stats.Secondary)
	return stats
}

// LiveEngineXruns is the fast variant for the live monitor and the
// daemon's periodic check: recent log windows only, no active probe.
func (c *Collector) LiveEngineXruns() uint {
	return c.syslogJackXruns(DefaultLiveWindow) + c.tunnelXruns(DefaultLiveWindow)
}

// SystemXruns scans a 5-minute window for generic audio errors and for
// USB/audio hardware failures, the latter filtered through the benign
// exclusion list, plus a kernel ring buffer tail.
func (c *Collector) SystemXruns() SystemStats {
	var stats SystemStats

	var window []string
	if c.Syslog != nil {
		window = c.Syslog.Since(DefaultSystemWindow)
	}
	for _, line := range window {
		if audioErrPattern.MatchString(line) {
			stats.Recent++
		}
		if isSevereUSBFailure(line) {
			stats.Severe++
		}
		if enginePattern.MatchString(line) {
			stats.EngineMessages++
		}
	}

	if c.Kernel != nil {
		for _, line := range c.Kernel.Tail(kernelTailLines) {
			if isSevereUSBFailure(line) {
				stats.Severe++
			}
		}
	}

	return stats
}

// isSevereUSBFailure reports whether a line indicates USB/audio
// hardware failure, excluding benign re-enumeration messages that
// match the raw keyword filter.
func isSevereUSBFailure(line string) bool {
	if !usbFailPattern.MatchString(line) {
		return false
	}
	lower := strings.ToLower(line)
	for _, benign := range benignUSBMessages {
		if strings.Contains(lower, benign) {
			return false
		}
	}
	return true
}

func (c *Collector) activeProbe(ctx context.Context) uint {
	if c.Probe == nil {
		return 0
	}
	probeCtx, cancel := context.WithTimeout(ctx, c.probeWindow())
	defer cancel()
	return c.Probe.Run(probeCtx)
}

// syslogJackXruns counts xrun lines attributed to the primary engine
// in the system log window.
func (c *Collector) syslogJackXruns(window time.Duration) uint {
	if c.Syslog == nil {
		return 0
	}
	var count uint
	for _, line := range c.Syslog.Since(window) {
		if jackLinePattern.MatchString(line) && xrunPattern.MatchString(line) {
			count++
		}
	}
	return count
}

// tunnelXruns counts secondary engine tunnel dropout messages in the
// system log window.
func (c *Collector) tunnelXruns(window time.Duration) uint {
	if c.Syslog == nil {
		return 0
	}
	var count uint
	for _, line := range c.Syslog.Since(window) {
		if tunnelPattern.MatchString(line) {
			count++
		}
	}
	return count
}

// countFileMatches counts pattern matches in the tail of a log file.
// Missing path or unreadable file contribute 0.
func countFileMatches(path string, pattern *regexp.Regexp) uint {
	if path == "" {
		return 0
	}
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	// Bounded tail read, same rationale as the syslog tail.
	const tailBytes = 256 * 1024
	if info, err := f.Stat(); err == nil && info.Size() > tailBytes {
		if _, err := f.Seek(-tailBytes, io.SeekEnd); err != nil {
			return 0
		}
	}

	var count uint
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 512*1024)
	for scanner.Scan() {
		if pattern.MatchString(scanner.Text()) {
			count++
		}
	}
	return count
}

// LogProbe is the default active probe: it watches an engine log file
// for the probe window and counts xrun lines appended during it.
type LogProbe struct {
	// Path is the engine log file to watch.
	Path string

	// Interval is the poll interval. Zero means 500ms.
	Interval time.Duration
}

// Run polls the log file until ctx expires, counting newly appended
// xrun lines. Any error degrades to the count seen so far.
func (p *LogProbe) Run(ctx context.Context) uint {
	f, err := os.Open(p.Path)
	if err != nil {
		return 0
	}
	defer f.Close()

	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0
	}

	interval := p.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var count uint
	for {
		select {
		case <-ctx.Done():
			return count
		case <-ticker.C:
			info, err := f.Stat()
			if err != nil || info.Size() <= offset {
				continue
			}
			buf := make([]byte, info.Size()-offset)
			n, err := f.ReadAt(buf, offset)
			if n > 0 {
				for _, line := range strings.Split(string(buf[:n]), "\n") {
					if xrunPattern.MatchString(line) {
						count++
					}
				}
				offset += int64(n)
			}
			if err != nil && err != io.EOF {
				return count
			}
		}
	}
}
