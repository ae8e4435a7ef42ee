// Package kernel implements the thread scheduling core: the thread
// control block, the single-CPU scheduler, the strict-priority donation
// policy, the MLFQ policy, and the per-tick accounting that drives them.
//
// Concurrency model: each thread runs its own goroutine, standing in for
// its own kernel stack. A "context switch" is a channel hand-off (the
// thread's gate): schedule() wakes the next thread by sending on its gate
// and, unless the outgoing thread is exiting, parks the outgoing thread by
// receiving on its own gate until some later schedule() call hands control
// back. Because a thread only ever proceeds past a receive on its own gate
// when explicitly resumed, at most one thread's workload code executes at
// any instant — the uniprocessor invariant this scheduler depends on. Mutual
// exclusion over scheduler state is the intr package's interrupt-disable
// discipline (see intr.Controller): the same mutex is locked by whichever
// goroutine disables interrupts and unlocked by whichever goroutine later
// restores them, which is exactly the baton-passing a "disable
// interrupts" primitive requires across a context switch.
package kernel

import (
	"pintos-go/errors"
	"pintos-go/fixedpoint"
	"pintos-go/page"
	"pintos-go/rlist"
)

// Priority range and defaults.
const (
	PriMin     = 0
	PriDefault = 31
	PriMax     = 63
)

// Nice range.
const (
	NiceMin = -20
	NiceMax = 20
)

// TimeSlice is the number of ticks a thread may run before preemption is
// requested.
const TimeSlice = 4

// ThreadMagic is the sentinel word stored in every live TCB, used to
// detect stack-overflow corruption.
const ThreadMagic = 0xcd6abf4b

// ErrorTID is returned by Create when no page is available for a new
// thread: the one error the kernel recovers from locally.
const ErrorTID = -1

// Status is a thread's run state.
type Status int

const (
	// StatusBlocked threads are neither running nor on the ready queue.
	StatusBlocked Status = iota
	// StatusReady threads are on the ready queue, eligible to run.
	StatusReady
	// StatusRunning is the single thread currently executing.
	StatusRunning
	// StatusDying threads have called Exit and are awaiting their final
	// context switch, after which their page is reclaimed.
	StatusDying
)

// String renders a Status for logging.
func (s Status) String() string {
	switch s {
	case StatusBlocked:
		return "blocked"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusDying:
		return "dying"
	default:
		return "unknown"
	}
}

// Workload is the function a thread runs once scheduled for the first
// time. It receives a CPU handle scoped to the calling thread, through
// which it cooperatively advances simulated time (RunTicks) and yields,
// blocks, or exits. Returning from Workload is equivalent to thread_exit.
type Workload func(cpu *CPU)

// Thread is a kernel thread control block. Fields below the divider are
// implementation plumbing (the Go stand-ins for "allocated on a page" and
// "context switch via swapped stack pointer").
type Thread struct {
	TID    int
	Name   string
	Status Status

	BasePriority int // the priority last set by SetPriority / at creation
	priority     int // effective priority: cached, recomputed by resetPriority/mlfqRecompute

	RequiredLock *Lock // the lock this thread is blocked waiting to acquire, or nil

	donations rlist.List[*Thread] // donors to this thread, sorted by donor effective priority desc
	donaElem  *rlist.Element[*Thread]

	Nice      int
	RecentCPU fixedpoint.Fixed

	magic uint32

	// --- Go-specific plumbing below ---

	page     *page.Page
	gate     chan *Thread // the context-switch hand-off channel; carries the thread switched away from
	exited   chan struct{}
	workload Workload
	aux      any
	isIdle   bool
	isMain   bool

	// UserContext distinguishes a user-process tick from a kernel tick;
	// nil for every thread in this kernel, since user processes are an
	// optional layer out of scope here. Exposed so a future user-process
	// layer has somewhere to hang its address-space handle without
	// changing the tick classification.
	UserContext any

	ticksSinceSwitch int // quantum counter, reset on every schedule() switch
}

// Priority returns the thread's current effective priority.
func (t *Thread) Priority() int {
	return t.priority
}

// checkMagic panics (fatal precondition violation) if t's magic
// sentinel has been corrupted.
func (t *Thread) checkMagic(op string) {
	errors.Assert(t.magic == ThreadMagic, op, "thread %q (tid=%d): corrupted magic sentinel", t.Name, t.TID)
}

func validatePriority(op string, p int) {
	errors.Assert(p >= PriMin && p <= PriMax, op, "priority %d out of range [%d,%d]", p, PriMin, PriMax)
}

func validateNice(op string, n int) {
	errors.Assert(n >= NiceMin && n <= NiceMax, op, "nice %d out of range [%d,%d]", n, NiceMin, NiceMax)
}
