package kernel

import (
	"pintos-go/errors"
	"pintos-go/hooks"
	"pintos-go/intr"
	"pintos-go/logging"
	"pintos-go/page"
)

// readyLess orders the ready queue by effective priority descending;
// InsertOrdered's strict "a belongs before b" comparator preserves FIFO
// order among equal-priority threads.
func readyLess(a, b *Thread) bool { return a.Priority() > b.Priority() }

// Block is thread_block: callable only with interrupts off and not from
// interrupt context. Marks the running thread BLOCKED and reschedules.
func (k *Kernel) Block() {
	errors.Assert(!k.Intr.InInterruptContext(), "thread_block", "must not be called from interrupt context")
	errors.Assert(k.Intr.Level() == intr.Off, "thread_block", "must be called with interrupts off")
	k.blockLocked(k.current)
}

// blockLocked is Block's body, reusable by callers (the idle loop, Lock
// waiters) that already hold a thread known to be current.
func (k *Kernel) blockLocked(t *Thread) {
	t.Status = StatusBlocked
	k.fire(hooks.Blocked, t)
	k.schedule()
}

// Unblock is thread_unblock: callable at any interrupt level. Requires
// t.Status == StatusBlocked. Inserts t into the ready queue sorted by
// effective priority descending and marks it READY. Does not preempt.
func (k *Kernel) Unblock(t *Thread) {
	old := k.Intr.Disable()
	k.unblockLocked(t)
	k.Intr.SetLevel(old)
}

func (k *Kernel) unblockLocked(t *Thread) {
	t.checkMagic("thread_unblock")
	errors.Assert(t.Status == StatusBlocked, "thread_unblock", "thread %q (tid=%d) is not BLOCKED", t.Name, t.TID)
	t.Status = StatusReady
	k.ready.InsertOrdered(t, readyLess)
	k.fire(hooks.Ready, t)
}

// Yield is thread_yield: not callable from interrupt context. Puts the
// running thread back on the ready queue (unless it is the idle thread)
// and reschedules.
func (k *Kernel) Yield() {
	errors.Assert(!k.Intr.InInterruptContext(), "thread_yield", "must not be called from interrupt context")
	old := k.Intr.Disable()
	cur := k.current
	cur.Status = StatusReady
	if cur != k.idle {
		k.ready.InsertOrdered(cur, readyLess)
		k.fire(hooks.Ready, cur)
	}
	k.schedule()
	k.Intr.SetLevel(old)
}

// Exit is thread_exit: not callable from interrupt context. Removes the
// running thread from the all-threads list, marks it DYING, and
// reschedules away from it for the last time. This never returns to
// execute further kernel code in the exiting thread;
// the goroutine wrapper (run) simply ends once this call returns.
func (k *Kernel) Exit() {
	errors.Assert(!k.Intr.InInterruptContext(), "thread_exit", "must not be called from interrupt context")
	old := k.Intr.Disable()
	_ = old // never restored: this thread does not resume again.
	t := k.current
	k.all.RemoveValue(func(x *Thread) bool { return x == t })
	t.Status = StatusDying
	k.fire(hooks.Dying, t)
	close(t.exited)
	logging.Default().Info("thread_exit", "thread", t.Name, "tid", t.TID)
	k.schedule()
}

// yieldIfOutranked implements the preemption rule: whenever
// the highest-priority ready thread outranks the running thread, the
// running thread yields, or, if called from interrupt context, sets the
// yield-on-return latch instead (a handler cannot itself block).
func (k *Kernel) yieldIfOutranked() {
	if k.maxReadyPriority() <= k.current.Priority() {
		return
	}
	if k.Intr.InInterruptContext() {
		k.Intr.RequestYieldOnReturn()
		return
	}
	k.Yield()
}

func (k *Kernel) maxReadyPriority() int {
	e := k.ready.Front()
	if e == nil {
		return PriMin - 1
	}
	return e.Value.Priority()
}

// schedule requires interrupts off and current.Status != StatusRunning.
// Under MLFQ it recomputes every thread's priority and
// re-sorts the ready queue first. It pops the head of the ready queue
// (or the idle thread if empty); if that differs from current, it
// performs the context switch (a gate hand-off, see the package doc).
func (k *Kernel) schedule() {
	errors.Assert(k.Intr.Level() == intr.Off, "schedule", "must be called with interrupts off")
	errors.Assert(k.current.Status != StatusRunning, "schedule", "current thread must already be non-running")
	k.current.checkMagic("schedule")

	if k.MLFQS {
		k.mlfqRecomputeAllPriorities()
		k.ready.Sort(readyLess)
	}

	prev := k.current
	next := k.nextToRun()
	next.checkMagic("schedule")
	next.Status = StatusRunning
	next.ticksSinceSwitch = 0
	k.current = next

	if next == prev {
		return
	}

	k.fire(hooks.Running, next)
	logging.Default().Debug("schedule", "from", prev.Name, "from_tid", prev.TID, "to", next.Name, "to_tid", next.TID)
	next.gate <- prev
	if prev.Status != StatusDying {
		from := <-prev.gate
		k.completeSwitch(from)
	}
}

// nextToRun pops the highest-priority ready thread, or returns the idle
// thread if the ready queue is empty. The idle thread never itself
// appears on the ready queue after its first scheduling.
func (k *Kernel) nextToRun() *Thread {
	if v, ok := k.ready.PopFront(); ok {
		return v
	}
	return k.idle
}

// completeSwitch is the tail of a context switch, run by the thread that
// was just switched to, referencing the thread it switched away from. It
// frees that thread's page iff it was DYING and is not the initial
// thread.
func (k *Kernel) completeSwitch(from *Thread) {
	if from == nil || from.Status != StatusDying || from.isMain {
		return
	}
	if err := page.Free(from.page); err != nil {
		logging.Default().Error("schedule: failed to free exited thread's page", "thread", from.Name, "err", err)
	}
}
