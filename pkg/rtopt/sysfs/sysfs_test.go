package sysfs_test

import (
	"reflect"
	"testing"

	"github.com/mkessler/rtopt/pkg/rtopt/sysfs"
)

func TestWriterApplySkipsMatchingValue(t *testing.T) {
	fs := sysfs.NewMem()
	fs.Files["proc/sys/vm/swappiness"] = "10"

	w := sysfs.NewWriter(fs)
	if w.Apply("proc/sys/vm/swappiness", "10") {
		t.Error("Apply reported a write for an already-matching value")
	}
	if w.Written() != 0 {
		t.Errorf("Written = %d, want 0", w.Written())
	}
	if len(fs.Writes) != 0 {
		t.Errorf("filesystem saw %d writes, want 0", len(fs.Writes))
	}
}

func TestWriterApplyWritesChangedValue(t *testing.T) {
	fs := sysfs.NewMem()
	fs.Files["proc/sys/vm/swappiness"] = "60"

	w := sysfs.NewWriter(fs)
	if !w.Apply("proc/sys/vm/swappiness", "10") {
		t.Error("Apply did not report a write")
	}
	if fs.Files["proc/sys/vm/swappiness"] != "10" {
		t.Errorf("value = %q, want 10", fs.Files["proc/sys/vm/swappiness"])
	}
	if w.Written() != 1 {
		t.Errorf("Written = %d, want 1", w.Written())
	}
}

func TestWriterApplyCreatesMissingFile(t *testing.T) {
	fs := sysfs.NewMem()
	w := sysfs.NewWriter(fs)

	// A failed read (missing control file) must still attempt the write.
	if !w.Apply("proc/irq/128/smp_affinity_list", "2,3") {
		t.Error("Apply did not write through a read failure")
	}
	if fs.Files["proc/irq/128/smp_affinity_list"] != "2,3" {
		t.Error("value not written")
	}
}

func TestWriterApplyFailureCounted(t *testing.T) {
	fs := sysfs.NewMem()
	fs.Files["locked"] = "old"
	fs.ReadOnly["locked"] = true

	w := sysfs.NewWriter(fs)
	if w.Apply("locked", "new") {
		t.Error("Apply reported success for a read-only path")
	}
	if w.Failed() != 1 {
		t.Errorf("Failed = %d, want 1", w.Failed())
	}
	if fs.Files["locked"] != "old" {
		t.Error("read-only value changed")
	}
}

func TestWriterReset(t *testing.T) {
	fs := sysfs.NewMem()
	w := sysfs.NewWriter(fs)
	w.Apply("a", "1")
	w.Reset()
	if w.Written() != 0 || w.Failed() != 0 {
		t.Error("counters survived Reset")
	}
}

func TestMemGlob(t *testing.T) {
	fs := sysfs.NewMem()
	fs.Files["sys/bus/usb/devices/1-4/power/control"] = "auto"
	fs.Files["sys/bus/usb/devices/2-2/power/control"] = "auto"
	fs.Files["sys/bus/usb/devices/2-2/power/level"] = "on"

	got := fs.Glob("sys/bus/usb/devices/*/power/control")
	want := []string{
		"sys/bus/usb/devices/1-4/power/control",
		"sys/bus/usb/devices/2-2/power/control",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Glob = %v, want %v", got, want)
	}
}
