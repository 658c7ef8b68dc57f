package output

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/mkessler/rtopt/pkg/rtopt/monitor"
	"github.com/mkessler/rtopt/pkg/rtopt/xrun"
)

// narrowWidth is the terminal width below which the compact live
// layout is used.
const narrowWidth = 70

// LiveRenderer writes the live monitor's single updating status line
// and its detail lines. The layout adapts to the terminal width,
// re-queried on every frame so resizes take effect immediately.
type LiveRenderer struct {
	w io.Writer

	// Width overrides terminal width detection when > 0 (tests).
	Width int
}

// NewLiveRenderer returns a renderer writing to w.
func NewLiveRenderer(w io.Writer) *LiveRenderer {
	return &LiveRenderer{w: w}
}

func (r *LiveRenderer) width() int {
	if r.Width > 0 {
		return r.Width
	}
	if f, ok := r.w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

// Frame redraws the status line in place.
func (r *LiveRenderer) Frame(f monitor.LiveFrame) {
	tier := xrun.TierFor(f.Rate)
	marker := severityStyle(tierSeverity(tier)).Render(tier.Indicator())

	var line string
	if r.width() < narrowWidth {
		line = fmt.Sprintf("%s %s r:%d t:%d m:%d",
			f.Time.Format("15:04:05"), marker, f.Rate, f.Total, f.MaxInterval)
	} else {
		line = fmt.Sprintf("%s %s rate(30s): %d  total: %d  max/tick: %d  up %s",
			f.Time.Format("15:04:05"), marker, f.Rate, f.Total, f.MaxInterval,
			f.Elapsed.Truncate(1e9))
		if f.Settings.Known() {
			line += MutedStyle.Render("  [" + f.Settings.String() + "]")
		}
	}

	// \r redraw keeps the line in place; clear to end of line first.
	fmt.Fprintf(r.w, "\r\x1b[K%s", line)
}

// Detail appends a persistent line for a tick that saw new xruns,
// including the buffer recommendation when one applies.
func (r *LiveRenderer) Detail(f monitor.LiveFrame) {
	fmt.Fprintf(r.w, "\n%s\n",
		DangerStyle.Render(fmt.Sprintf("%s  +%d xrun(s)",
			f.Time.Format("15:04:05"), f.NewXruns)))

	if f.Recommended > 0 {
		fmt.Fprintf(r.w, "%s\n",
			WarningStyle.Render(fmt.Sprintf("  consider buffer %d -> %d frames",
				f.Settings.Frames, f.Recommended)))
	}
}

func tierSeverity(t xrun.Tier) string {
	switch t {
	case xrun.TierClean:
		return xrun.SeverityPerfect.String()
	case xrun.TierWarn:
		return xrun.SeverityMild.String()
	default:
		return xrun.SeveritySevere.String()
	}
}
