// Package resource applies and reverts the system-wide optimized
// resource configuration: CPU governors, IRQ affinity, audio process
// scheduling, kernel tunables, and USB power management.
package resource

import (
	"fmt"
	"strconv"
	"strings"
)

// Config is the target resource configuration for the optimized state.
type Config struct {
	// PCores are the performance cores reserved for audio work.
	PCores []int

	// ECores are the efficiency cores; they keep their standard
	// governor so background load stays off the P-cores.
	ECores []int

	// OptimizedGovernor is the governor applied to P-cores.
	OptimizedGovernor string

	// StandardGovernor is the governor restored on revert. Empty means
	// pick from scaling_available_governors at revert time.
	StandardGovernor string

	// PinMinFrequency raises scaling_min_freq to the core's maximum
	// while optimized, eliminating frequency ramp latency.
	PinMinFrequency bool

	// AudioProcesses are the executable names given real-time
	// scheduling and P-core affinity.
	AudioProcesses []string

	// RTPriority is the SCHED_FIFO priority for audio processes.
	RTPriority int

	// IRQPatterns select interrupt lines by handler name substring
	// (e.g. "xhci_hcd", "snd_usb_audio").
	IRQPatterns []string

	// IRQCores are the cores pinned IRQs are allowed to run on.
	IRQCores []int

	// Tunables maps kernel control paths (root-relative) to their
	// optimized values.
	Tunables map[string]string

	// StandardTunables maps the same paths to their standard values,
	// written on revert.
	StandardTunables map[string]string

	// USBPowerOptimized disables USB autosuspend while optimized.
	USBPowerOptimized bool

	// UsbfsBufferMB is the usbfs buffer size while optimized. Zero
	// leaves it untouched.
	UsbfsBufferMB int

	// StandardUsbfsBufferMB is the buffer size restored on revert.
	StandardUsbfsBufferMB int
}

// DefaultConfig returns a configuration suitable for a hybrid-core
// workstation with a USB audio interface. Callers override the core
// partition from their own config.
func DefaultConfig() Config {
	return Config{
		OptimizedGovernor: "performance",
		PinMinFrequency:   true,
		AudioProcesses:    []string{"jackd", "jackdbus", "pipewire", "ardour", "reaper"},
		RTPriority:        80,
		IRQPatterns:       []string{"xhci_hcd", "snd_usb_audio"},
		Tunables: map[string]string{
			"proc/sys/kernel/sched_rt_runtime_us": "-1",
			"proc/sys/vm/swappiness":              "10",
			"proc/sys/vm/dirty_background_ratio":  "5",
		},
		StandardTunables: map[string]string{
			"proc/sys/kernel/sched_rt_runtime_us": "950000",
			"proc/sys/vm/swappiness":              "60",
			"proc/sys/vm/dirty_background_ratio":  "10",
		},
		USBPowerOptimized:     true,
		UsbfsBufferMB:         1024,
		StandardUsbfsBufferMB: 16,
	}
}

// cpuList formats cores as a smp_affinity_list value ("2,3,6,7").
func cpuList(cores []int) string {
	parts := make([]string, len(cores))
	for i, c := range cores {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

// governorPath returns the cpufreq governor control file for a core.
func governorPath(core int) string {
	return fmt.Sprintf("sys/devices/system/cpu/cpu%d/cpufreq/scaling_governor", core)
}

// freqPath returns a cpufreq control file for a core.
func freqPath(core int, file string) string {
	return fmt.Sprintf("sys/devices/system/cpu/cpu%d/cpufreq/%s", core, file)
}

// irqAffinityPath returns the affinity list control file for an IRQ.
func irqAffinityPath(irq int) string {
	return fmt.Sprintf("proc/irq/%d/smp_affinity_list", irq)
}

const (
	onlineCPUsPath  = "sys/devices/system/cpu/online"
	usbPowerGlob    = "sys/bus/usb/devices/*/power/control"
	usbfsBufferPath = "sys/module/usbcore/parameters/usbfs_memory_mb"
	interruptsPath  = "proc/interrupts"
)
