package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mkessler/rtopt/pkg/rtopt/history"
	"github.com/mkessler/rtopt/pkg/rtopt/monitor"
	"github.com/mkessler/rtopt/pkg/rtopt/state"
	"github.com/mkessler/rtopt/pkg/rtopt/xrun"
)

// RenderStatus formats a snapshot for the status command.
func RenderStatus(snap monitor.Snapshot) string {
	var w bytes.Buffer

	var lines []string
	lines = append(lines, fmt.Sprintf("%s %s",
		LabelStyle.Render("State:"), stateValue(snap.State)))
	lines = append(lines, fmt.Sprintf("%s %s",
		LabelStyle.Render("Device:"), deviceValue(snap)))
	lines = append(lines, fmt.Sprintf("%s %s",
		LabelStyle.Render("Engine:"), engineValue(snap)))
	lines = append(lines, fmt.Sprintf("%s %s",
		LabelStyle.Render("Xruns:"), xrunValue(snap)))

	w.WriteString(HeaderBox.Render(strings.Join(lines, "\n")))
	w.WriteString("\n")
	return w.String()
}

// RenderDetailed formats the detailed status view: the snapshot plus
// system error counters and recent history.
func RenderDetailed(snap monitor.Snapshot, records []history.Record) string {
	var w bytes.Buffer
	w.WriteString(RenderStatus(snap))

	w.WriteString(LabelStyle.Render("System (5m):"))
	w.WriteString(fmt.Sprintf(" %d audio errors, %d severe, %d engine messages\n",
		snap.System.Recent, snap.System.Severe, snap.System.EngineMessages))

	for _, dev := range snap.Devices {
		w.WriteString(MutedStyle.Render(fmt.Sprintf("  device %s (%s, via %s)\n",
			dev.CardID, dev.Path, dev.MatchedBy)))
	}

	if len(records) > 0 {
		w.WriteString(LabelStyle.Render("Recent activity:"))
		w.WriteString("\n")
		for _, r := range records {
			line := fmt.Sprintf("  %s  %-11s total=%d severe=%d %s",
				humanize.Time(r.Time), r.Event, r.Total, r.Severe, r.Severity)
			w.WriteString(severityStyle(r.Severity).Render(line))
			w.WriteString("\n")
		}
	}
	return w.String()
}

func stateValue(st state.State) string {
	switch st {
	case state.Optimized:
		return SuccessStyle.Render("optimized")
	case state.Standard:
		return ValueStyle.Render("standard")
	default:
		return MutedStyle.Render("unknown")
	}
}

func deviceValue(snap monitor.Snapshot) string {
	if !snap.DeviceConnected {
		return MutedStyle.Render("not connected")
	}
	ids := make([]string, 0, len(snap.Devices))
	for _, dev := range snap.Devices {
		ids = append(ids, dev.CardID)
	}
	return SuccessStyle.Render("connected") + MutedStyle.Render(" ("+strings.Join(ids, ", ")+")")
}

func engineValue(snap monitor.Snapshot) string {
	switch {
	case snap.Engine.JackRunning:
		return SuccessStyle.Render("JACK active") + settingsSuffix(snap)
	case snap.Engine.PipeWireRunning:
		return ValueStyle.Render("PipeWire active")
	default:
		return MutedStyle.Render("inactive")
	}
}

func settingsSuffix(snap monitor.Snapshot) string {
	if !snap.Settings.Known() {
		return ""
	}
	return MutedStyle.Render(fmt.Sprintf(" (%s, %.1f ms)",
		snap.Settings.String(), snap.Settings.LatencyMillis()))
}

func xrunValue(snap monitor.Snapshot) string {
	tier := xrun.TierFor(snap.LiveXruns)
	text := fmt.Sprintf("%s %d recent, severity %s",
		tier.Indicator(), snap.LiveXruns, snap.Severity.String())
	return severityStyle(snap.Severity.String()).Render(text)
}

func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case xrun.SeverityPerfect.String():
		return SuccessStyle
	case xrun.SeverityMild.String():
		return WarningStyle
	default:
		return DangerStyle
	}
}
