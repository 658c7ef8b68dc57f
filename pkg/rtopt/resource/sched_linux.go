//go:build linux

package resource

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// LinuxScheduler issues sched_setaffinity and sched_setscheduler
// directly instead of shelling out to taskset/chrt.
type LinuxScheduler struct{}

// SetAffinity restricts pid to the given cores.
func (LinuxScheduler) SetAffinity(pid int, cores []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, c := range cores {
		set.Set(c)
	}
	return unix.SchedSetaffinity(pid, &set)
}

// schedParam mirrors struct sched_param for sched_setscheduler(2).
type schedParam struct {
	priority int32
}

// SetRealtime puts pid into SCHED_FIFO at the given priority, or back
// into SCHED_OTHER when priority is 0 or less.
func (LinuxScheduler) SetRealtime(pid, priority int) error {
	policy := uintptr(unix.SCHED_FIFO)
	if priority <= 0 {
		policy = unix.SCHED_NORMAL
		priority = 0
	}
	param := schedParam{priority: int32(priority)}
	_, _, errno := unix.Syscall(unix.SYS_SCHED_SETSCHEDULER,
		uintptr(pid), policy, uintptr(unsafe.Pointer(&param)))
	if errno != 0 {
		return errno
	}
	return nil
}
