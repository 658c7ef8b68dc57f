package resource

import (
	"strconv"
	"strings"

	"github.com/mkessler/rtopt/pkg/rtopt/sysfs"
)

// findIRQs parses proc/interrupts and returns the IRQ numbers whose
// handler names contain any of the patterns. Only numeric interrupt
// lines are considered; architecture counters (NMI, LOC, ...) have
// non-numeric labels and are skipped.
func findIRQs(fs sysfs.FS, patterns []string) []int {
	content, err := fs.ReadValue(interruptsPath)
	if err != nil {
		return nil
	}

	var irqs []int
	for _, line := range strings.Split(content, "\n") {
		irq, ok := parseInterruptLine(line, patterns)
		if ok {
			irqs = append(irqs, irq)
		}
	}
	return irqs
}

// parseInterruptLine extracts the IRQ number from one proc/interrupts
// line when its handler matches a pattern.
func parseInterruptLine(line string, patterns []string) (int, bool) {
	line = strings.TrimSpace(line)
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return 0, false
	}

	irq, err := strconv.Atoi(line[:colon])
	if err != nil {
		return 0, false
	}

	rest := line[colon+1:]
	for _, p := range patterns {
		if strings.Contains(rest, p) {
			return irq, true
		}
	}
	return 0, false
}

// onlineCPUList reads the currently online CPU list, queried at call
// time so reverts track the actual topology rather than a constant.
func onlineCPUList(fs sysfs.FS) string {
	online, err := fs.ReadValue(onlineCPUsPath)
	if err != nil || online == "" {
		return "0"
	}
	return online
}
