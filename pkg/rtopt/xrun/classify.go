// Package xrun collects audio dropout signals from multiple sources and
// classifies them into severity tiers.
package xrun

// Severity is the overall xrun health classification.
type Severity int

// Severity tiers, from best to worst.
const (
	SeverityPerfect Severity = iota
	SeverityMild
	SeveritySevere
)

// String returns the display name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityPerfect:
		return "perfect"
	case SeverityMild:
		return "mild"
	case SeveritySevere:
		return "severe"
	default:
		return "unknown"
	}
}

// Classify maps a total xrun count and a severe system error count to a
// severity tier. Severe errors act as an override: they can only push
// toward SeveritySevere, never away from it.
func Classify(total, severe uint) Severity {
	switch {
	case total == 0 && severe == 0:
		return SeverityPerfect
	case total < 5 && severe == 0:
		return SeverityMild
	default:
		return SeveritySevere
	}
}

// Tier is the 3-level status indicator used for display (tray icon,
// live monitor markers). It shares the classifier's thresholds but
// takes a single raw count, not the (total, severe) tuple.
type Tier int

// Indicator tiers.
const (
	TierClean Tier = iota
	TierWarn
	TierBad
)

// TierFor maps a raw xrun count to its indicator tier.
func TierFor(count uint) Tier {
	switch {
	case count == 0:
		return TierClean
	case count < 5:
		return TierWarn
	default:
		return TierBad
	}
}

// Indicator returns the single-character marker for the tier.
func (t Tier) Indicator() string {
	switch t {
	case TierClean:
		return "✓"
	case TierWarn:
		return "!"
	default:
		return "✗"
	}
}

// RecommendBuffer suggests a buffer size (in frames) for the observed
// xrun count. The recommendation is advisory output only; it never
// mutates engine configuration.
func RecommendBuffer(current, xruns uint) uint {
	switch {
	case xruns > 20:
		return maxUint(current*4, 1024)
	case xruns > 5:
		return maxUint(current*2, 512)
	case xruns > 0:
		return maxUint(current*3/2, 256)
	default:
		return current
	}
}

func maxUint(a, b uint) uint {
	if a > b {
		return a
	}
	return b
}
