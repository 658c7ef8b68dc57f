package resource

import (
	"strconv"
	"strings"

	"github.com/mkessler/rtopt/pkg/rtopt/logging"
	"github.com/mkessler/rtopt/pkg/rtopt/proc"
	"github.com/mkessler/rtopt/pkg/rtopt/state"
	"github.com/mkessler/rtopt/pkg/rtopt/sysfs"
)

// PresenceSource reports whether the audio interface is enumerable.
type PresenceSource interface {
	Present() bool
}

// Transition describes what a decision cycle did.
type Transition int

// Decision outcomes.
const (
	// TransitionNone: device absent, system already standard.
	TransitionNone Transition = iota

	// TransitionApplied: full optimized configuration applied.
	TransitionApplied

	// TransitionReverted: every optimized setting reverted.
	TransitionReverted

	// TransitionMaintained: state matched, process affinity refreshed.
	TransitionMaintained
)

// String returns the display name of the transition.
func (t Transition) String() string {
	switch t {
	case TransitionApplied:
		return "applied"
	case TransitionReverted:
		return "reverted"
	case TransitionMaintained:
		return "maintained"
	default:
		return "none"
	}
}

// Result summarizes one decision cycle.
type Result struct {
	Transition Transition
	Present    bool
	State      state.State
	Writes     int
	Failures   int
}

// Controller is the presence-driven resource state machine. It reads
// the persisted state at the start of each decision, compares it to
// the desired state derived from device presence, and applies, reverts,
// or maintains accordingly.
type Controller struct {
	cfg      Config
	writer   *sysfs.Writer
	fs       sysfs.FS
	procs    proc.Lookup
	sched    Scheduler
	store    *state.Store
	presence PresenceSource
	log      *logging.Logger
}

// NewController wires a Controller from its collaborators.
func NewController(cfg Config, fs sysfs.FS, procs proc.Lookup, sched Scheduler, store *state.Store, presence PresenceSource) *Controller {
	return &Controller{
		cfg:      cfg,
		writer:   sysfs.NewWriter(fs),
		fs:       fs,
		procs:    procs,
		sched:    sched,
		store:    store,
		presence: presence,
		log:      logging.Get("controller"),
	}
}

// Decide runs one decision cycle under the state store's lock.
//
// Presence true with state != Optimized applies the full configuration
// and persists Optimized; presence false with state != Standard reverts
// everything and persists Standard. A matching state gets only the
// lightweight maintenance pass, which re-applies process affinity to
// converge newly spawned audio processes without re-writing settings
// that already hold.
func (c *Controller) Decide() (Result, error) {
	var res Result
	err := c.store.Transact(func(current state.State) (state.State, error) {
		c.writer.Reset()
		present := c.presence.Present()
		res.Present = present

		switch {
		case present && current != state.Optimized:
			c.Apply()
			res.Transition = TransitionApplied
			res.State = state.Optimized
		case !present && current != state.Standard:
			c.Revert()
			res.Transition = TransitionReverted
			res.State = state.Standard
		case present:
			c.Maintain()
			res.Transition = TransitionMaintained
			res.State = current
		default:
			res.Transition = TransitionNone
			res.State = current
		}

		res.Writes = c.writer.Written()
		res.Failures = c.writer.Failed()
		return res.State, nil
	})
	if err != nil {
		return res, err
	}

	switch res.Transition {
	case TransitionApplied:
		c.log.Info("optimized configuration applied", "writes", res.Writes, "failures", res.Failures)
	case TransitionReverted:
		c.log.Info("optimized configuration reverted", "writes", res.Writes, "failures", res.Failures)
	default:
		c.log.Debug("decision cycle", "transition", res.Transition.String(), "writes", res.Writes)
	}
	return res, nil
}

// Apply writes the full optimized configuration. Every write is
// individually idempotent and individually failable; the whole batch
// always runs regardless of single failures.
func (c *Controller) Apply() {
	c.applyGovernors()
	c.applyIRQAffinity(cpuList(c.irqCores()))
	c.applyProcessScheduling()
	for path, value := range c.cfg.Tunables {
		c.writer.Apply(path, value)
	}
	c.applyUSBPower("on")
	if c.cfg.UsbfsBufferMB > 0 {
		c.writer.Apply(usbfsBufferPath, strconv.Itoa(c.cfg.UsbfsBufferMB))
	}
}

// Revert restores every touched setting. Defaults that vary by
// hardware (minimum frequency, online CPU mask) are queried now, at
// revert time, rather than taken from constants.
func (c *Controller) Revert() {
	c.revertGovernors()
	c.applyIRQAffinity(onlineCPUList(c.fs))
	c.revertProcessScheduling()
	for path, value := range c.cfg.StandardTunables {
		c.writer.Apply(path, value)
	}
	if c.cfg.USBPowerOptimized {
		c.applyUSBPower("auto")
	}
	if c.cfg.UsbfsBufferMB > 0 && c.cfg.StandardUsbfsBufferMB > 0 {
		c.writer.Apply(usbfsBufferPath, strconv.Itoa(c.cfg.StandardUsbfsBufferMB))
	}
}

// Maintain re-applies process affinity and priority only, converging
// audio processes spawned since the last full apply.
func (c *Controller) Maintain() {
	c.applyProcessScheduling()
}

func (c *Controller) applyGovernors() {
	for _, core := range c.cfg.PCores {
		c.writer.Apply(governorPath(core), c.cfg.OptimizedGovernor)
		if c.cfg.PinMinFrequency {
			if maxFreq, err := c.fs.ReadValue(freqPath(core, "cpuinfo_max_freq")); err == nil {
				c.writer.Apply(freqPath(core, "scaling_min_freq"), maxFreq)
			}
		}
	}
}

func (c *Controller) revertGovernors() {
	governor := c.standardGovernor()
	for _, core := range c.cfg.PCores {
		c.writer.Apply(governorPath(core), governor)
		// Native minimum queried from the hardware, not hardcoded.
		if minFreq, err := c.fs.ReadValue(freqPath(core, "cpuinfo_min_freq")); err == nil {
			c.writer.Apply(freqPath(core, "scaling_min_freq"), minFreq)
		}
	}
}

// standardGovernor resolves the governor to restore. When not
// configured, the available governors are queried and the usual
// default is picked from them.
func (c *Controller) standardGovernor() string {
	if c.cfg.StandardGovernor != "" {
		return c.cfg.StandardGovernor
	}
	for _, core := range c.cfg.PCores {
		available, err := c.fs.ReadValue(freqPath(core, "scaling_available_governors"))
		if err != nil {
			continue
		}
		fields := strings.Fields(available)
		for _, preferred := range []string{"schedutil", "powersave", "ondemand"} {
			for _, f := range fields {
				if f == preferred {
					return preferred
				}
			}
		}
		for _, f := range fields {
			if f != c.cfg.OptimizedGovernor {
				return f
			}
		}
	}
	return "powersave"
}

// applyIRQAffinity pins every matching IRQ to the given CPU list.
func (c *Controller) applyIRQAffinity(cpus string) {
	for _, irq := range findIRQs(c.fs, c.cfg.IRQPatterns) {
		c.writer.Apply(irqAffinityPath(irq), cpus)
	}
}

// irqCores picks the cores matching IRQs are pinned to, defaulting to
// the P-core set.
func (c *Controller) irqCores() []int {
	if len(c.cfg.IRQCores) > 0 {
		return c.cfg.IRQCores
	}
	return c.cfg.PCores
}

func (c *Controller) applyProcessScheduling() {
	for _, name := range c.cfg.AudioProcesses {
		for _, pid := range c.procs.FindByName(name) {
			if len(c.cfg.PCores) > 0 {
				if err := c.sched.SetAffinity(pid, c.cfg.PCores); err != nil {
					c.log.Debug("affinity failed", "process", name, "pid", pid, "err", err)
				}
			}
			if err := c.sched.SetRealtime(pid, c.cfg.RTPriority); err != nil {
				c.log.Debug("rt priority failed", "process", name, "pid", pid, "err", err)
			}
		}
	}
}

func (c *Controller) revertProcessScheduling() {
	online := onlineCPUList(c.fs)
	cores := parseCPUList(online)
	for _, name := range c.cfg.AudioProcesses {
		for _, pid := range c.procs.FindByName(name) {
			if len(cores) > 0 {
				if err := c.sched.SetAffinity(pid, cores); err != nil {
					c.log.Debug("affinity reset failed", "process", name, "pid", pid, "err", err)
				}
			}
			if err := c.sched.SetRealtime(pid, 0); err != nil {
				c.log.Debug("rt reset failed", "process", name, "pid", pid, "err", err)
			}
		}
	}
}

func (c *Controller) applyUSBPower(value string) {
	if !c.cfg.USBPowerOptimized {
		return
	}
	for _, path := range c.fs.Glob(usbPowerGlob) {
		c.writer.Apply(path, value)
	}
}

// parseCPUList expands a kernel CPU list ("0-3,6,8-9") into cores.
func parseCPUList(list string) []int {
	var cores []int
	for _, part := range strings.Split(strings.TrimSpace(list), ",") {
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(lo)
			end, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil {
				continue
			}
			for i := start; i <= end; i++ {
				cores = append(cores, i)
			}
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			cores = append(cores, n)
		}
	}
	return cores
}
