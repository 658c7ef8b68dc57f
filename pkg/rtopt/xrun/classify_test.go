package xrun_test

import (
	"testing"

	"github.com/mkessler/rtopt/pkg/rtopt/xrun"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		total  uint
		severe uint
		want   xrun.Severity
	}{
		{"no activity", 0, 0, xrun.SeverityPerfect},
		{"single xrun", 1, 0, xrun.SeverityMild},
		{"below threshold", 4, 0, xrun.SeverityMild},
		{"at threshold", 5, 0, xrun.SeveritySevere},
		{"well above threshold", 50, 0, xrun.SeveritySevere},
		{"severe error overrides low count", 1, 1, xrun.SeveritySevere},
		{"severe error with zero xruns", 0, 1, xrun.SeveritySevere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := xrun.Classify(tt.total, tt.severe)
			if got != tt.want {
				t.Errorf("Classify(%d, %d) = %v, want %v", tt.total, tt.severe, got, tt.want)
			}
		})
	}
}

func TestSeverityString(t *testing.T) {
	if got := xrun.SeverityPerfect.String(); got != "perfect" {
		t.Errorf("SeverityPerfect.String() = %q", got)
	}
	if got := xrun.SeverityMild.String(); got != "mild" {
		t.Errorf("SeverityMild.String() = %q", got)
	}
	if got := xrun.SeveritySevere.String(); got != "severe" {
		t.Errorf("SeveritySevere.String() = %q", got)
	}
	if got := xrun.Severity(99).String(); got != "unknown" {
		t.Errorf("Severity(99).String() = %q", got)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		count uint
		want  xrun.Tier
	}{
		{0, xrun.TierClean},
		{1, xrun.TierWarn},
		{4, xrun.TierWarn},
		{5, xrun.TierBad},
		{100, xrun.TierBad},
	}
	for _, tt := range tests {
		if got := xrun.TierFor(tt.count); got != tt.want {
			t.Errorf("TierFor(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestTierIndicator(t *testing.T) {
	if xrun.TierClean.Indicator() != "✓" {
		t.Error("TierClean indicator mismatch")
	}
	if xrun.TierWarn.Indicator() != "!" {
		t.Error("TierWarn indicator mismatch")
	}
	if xrun.TierBad.Indicator() != "✗" {
		t.Error("TierBad indicator mismatch")
	}
}

func TestRecommendBuffer(t *testing.T) {
	tests := []struct {
		name    string
		current uint
		xruns   uint
		want    uint
	}{
		{"quiet keeps current", 512, 0, 512},
		{"light load rounds up to floor", 64, 1, 256},
		{"light load scales large buffer", 512, 3, 768},
		{"moderate load doubles", 512, 6, 1024},
		{"moderate load floor", 128, 6, 512},
		{"heavy load quadruples", 512, 21, 2048},
		{"heavy load floor", 128, 21, 1024},
		{"boundary at five stays moderate rule", 256, 5, 384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := xrun.RecommendBuffer(tt.current, tt.xruns)
			if got != tt.want {
				t.Errorf("RecommendBuffer(%d, %d) = %d, want %d", tt.current, tt.xruns, got, tt.want)
			}
		})
	}
}
