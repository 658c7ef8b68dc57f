// Package config provides configuration management for the rtopt
// optimizer.
package config

// Default configuration values for rtopt.
const (
	// DefaultPresenceInterval is the device presence check period in
	// daemon mode, in seconds.
	DefaultPresenceInterval = 5

	// DefaultMaintenanceInterval forces a maintenance pass even when
	// the state is unchanged, in seconds.
	DefaultMaintenanceInterval = 30

	// DefaultXrunInterval is the periodic xrun check period in daemon
	// mode, in seconds.
	DefaultXrunInterval = 10

	// DefaultLiveInterval is the live monitor tick period, in seconds.
	DefaultLiveInterval = 2

	// DefaultWarnThreshold is the xrun count per check window that
	// triggers a warning advisory.
	DefaultWarnThreshold = 3

	// DefaultNotifyCooldownSeconds rate-limits nonzero-xrun
	// notifications.
	DefaultNotifyCooldownSeconds = 60

	// DefaultRTPriority is the SCHED_FIFO priority assigned to audio
	// processes.
	DefaultRTPriority = 80

	// DefaultRetentionDays is how long xrun history records are kept.
	DefaultRetentionDays = 14

	// DefaultOnceDelaySeconds is the delay of the once-delayed command
	// before its single decision cycle. Gives the kernel time to
	// finish enumerating a freshly plugged device when triggered from
	// a udev rule.
	DefaultOnceDelaySeconds = 3

	// DefaultTrayStatePath is where the tray side-channel record is
	// written.
	DefaultTrayStatePath = "/var/run/rt-audio-tray-state"
)

// DefaultAudioProcesses are the executables given real-time scheduling
// while optimized.
var DefaultAudioProcesses = []string{"jackd", "jackdbus", "pipewire", "ardour", "reaper"}

// DefaultIRQPatterns select the interrupt lines pinned while optimized.
var DefaultIRQPatterns = []string{"xhci_hcd", "snd_usb_audio"}
