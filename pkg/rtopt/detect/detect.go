// Package detect determines whether a qualifying USB audio interface is
// currently enumerable.
//
// Detection scans ALSA card entries under proc/asound plus a USB
// device-class fallback under sys/bus/usb. Several heuristics are OR-ed
// per card so that varying driver states do not produce false
// negatives. The detector is read-only and never returns an error:
// missing enumeration roots simply mean no devices.
package detect

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Heuristic identifies which check matched a device.
type Heuristic string

// Detection heuristics, from most to least specific.
const (
	HeuristicUSBID     Heuristic = "usbid"      // explicit USB ID marker file
	HeuristicUSBBus    Heuristic = "usbbus"     // USB bus marker file
	HeuristicStreamSig Heuristic = "stream-sig" // "USB Audio" signature in stream descriptor
	HeuristicUSBClass  Heuristic = "usb-class"  // bInterfaceClass 01 (audio) on the USB bus
)

// Device is one matching audio device.
type Device struct {
	// CardID is the ALSA card ID (contents of the id file), or the USB
	// device name for fallback matches.
	CardID string

	// Path is the enumeration path the device was found under. Used to
	// de-duplicate across heuristics.
	Path string

	// MatchedBy is the first heuristic that identified the device.
	MatchedBy Heuristic
}

// Detector scans device enumeration state for USB audio interfaces.
type Detector struct {
	fsys fs.FS

	// CardIDs optionally restricts ALSA matches to specific card IDs
	// (e.g. "M4"). Empty matches any USB audio card.
	CardIDs []string
}

// New returns a Detector over the given filesystem root. Production
// callers pass os.DirFS("/"); tests pass an fstest.MapFS.
func New(fsys fs.FS, cardIDs ...string) *Detector {
	return &Detector{fsys: fsys, CardIDs: cardIDs}
}

// Present reports whether at least one qualifying USB audio device is
// enumerable right now. The result is recomputed on every call, never
// cached.
func (d *Detector) Present() bool {
	return len(d.Devices()) > 0
}

// Devices returns all matching devices, de-duplicated by enumeration
// path and sorted by path for stable output.
func (d *Detector) Devices() []Device {
	seen := make(map[string]Device)

	for _, dev := range d.scanALSACards() {
		if _, ok := seen[dev.Path]; !ok {
			seen[dev.Path] = dev
		}
	}
	for _, dev := range d.scanUSBBus() {
		if _, ok := seen[dev.Path]; !ok {
			seen[dev.Path] = dev
		}
	}

	devices := make([]Device, 0, len(seen))
	for _, dev := range seen {
		devices = append(devices, dev)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Path < devices[j].Path })
	return devices
}

// scanALSACards walks proc/asound/card* applying per-card heuristics.
func (d *Detector) scanALSACards() []Device {
	cards, err := fs.Glob(d.fsys, "proc/asound/card[0-9]*")
	if err != nil {
		return nil
	}

	var devices []Device
	for _, card := range cards {
		id := d.readTrimmed(path.Join(card, "id"))
		if !d.cardIDAllowed(id) {
			continue
		}

		heuristic, ok := d.matchCard(card)
		if !ok {
			continue
		}
		devices = append(devices, Device{
			CardID:    id,
			Path:      card,
			MatchedBy: heuristic,
		})
	}
	return devices
}

// matchCard ORs the per-card heuristics together.
func (d *Detector) matchCard(card string) (Heuristic, bool) {
	if d.exists(path.Join(card, "usbid")) {
		return HeuristicUSBID, true
	}
	if d.exists(path.Join(card, "usbbus")) {
		return HeuristicUSBBus, true
	}
	// Stream descriptor signature: snd-usb-audio writes the card name
	// followed by "at usb-..." into stream0.
	stream := d.readTrimmed(path.Join(card, "stream0"))
	if strings.Contains(stream, "USB Audio") || strings.Contains(stream, "at usb-") {
		return HeuristicStreamSig, true
	}
	return "", false
}

// scanUSBBus is the fallback scan for USB devices exposing an audio
// interface class (bInterfaceClass 01) even when no ALSA card exists
// yet, e.g. mid-enumeration.
func (d *Detector) scanUSBBus() []Device {
	entries, err := fs.Glob(d.fsys, "sys/bus/usb/devices/*")
	if err != nil {
		return nil
	}

	var devices []Device
	for _, entry := range entries {
		class := d.readTrimmed(path.Join(entry, "bInterfaceClass"))
		if class != "01" {
			continue
		}
		name := d.readTrimmed(path.Join(entry, "interface"))
		if name == "" {
			name = path.Base(entry)
		}
		devices = append(devices, Device{
			CardID:    name,
			Path:      entry,
			MatchedBy: HeuristicUSBClass,
		})
	}
	return devices
}

func (d *Detector) cardIDAllowed(id string) bool {
	if len(d.CardIDs) == 0 {
		return true
	}
	for _, allowed := range d.CardIDs {
		if strings.EqualFold(id, allowed) {
			return true
		}
	}
	return false
}

func (d *Detector) readTrimmed(name string) string {
	data, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (d *Detector) exists(name string) bool {
	_, err := fs.Stat(d.fsys, name)
	return err == nil
}
