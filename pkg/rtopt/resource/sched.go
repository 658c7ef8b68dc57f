package resource

// Scheduler assigns CPU affinity and scheduling class to processes.
// The production implementation issues the syscalls directly; tests
// substitute a recording fake.
type Scheduler interface {
	// SetAffinity restricts pid to the given cores.
	SetAffinity(pid int, cores []int) error

	// SetRealtime puts pid into SCHED_FIFO at the given priority.
	// A priority of 0 or less restores SCHED_OTHER.
	SetRealtime(pid, priority int) error
}

// FakeScheduler records scheduling calls for tests.
type FakeScheduler struct {
	Affinities map[int][]int
	Priorities map[int]int
}

// NewFakeScheduler returns an empty recording scheduler.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{
		Affinities: make(map[int][]int),
		Priorities: make(map[int]int),
	}
}

// SetAffinity records the affinity assignment.
func (f *FakeScheduler) SetAffinity(pid int, cores []int) error {
	f.Affinities[pid] = append([]int(nil), cores...)
	return nil
}

// SetRealtime records the priority assignment.
func (f *FakeScheduler) SetRealtime(pid, priority int) error {
	f.Priorities[pid] = priority
	return nil
}
