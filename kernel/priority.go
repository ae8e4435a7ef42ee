package kernel

import (
	"pintos-go/errors"
	"pintos-go/rlist"
)

// donationLess orders a donations list by donor effective priority
// descending.
func donationLess(a, b *Thread) bool { return a.Priority() > b.Priority() }

// donatePriority implements the donation chain walk: called with
// interrupts off when caller is about to block on caller.RequiredLock.
// At each step it recomputes the current link's effective priority,
// detaches it from its previous (now-stale) donation if it isn't the
// original caller, and — if its required lock has a holder — inserts it
// into that holder's donations list and advances to the holder. The
// chain is finite and acyclic by invariant.
func (k *Kernel) donatePriority(caller *Thread) {
	t := caller
	for {
		k.resetPriority(t)
		if t != caller {
			k.removeDonation(t)
		}
		if t.RequiredLock == nil {
			return
		}
		h := t.RequiredLock.Holder()
		if h == nil {
			return
		}
		t.donaElem = h.donations.InsertOrdered(t, donationLess)
		t = h
	}
}

// removeDonation detaches t.donaElem if attached, called when t
// acquires a lock or is dropped from a lock's waiters.
func (k *Kernel) removeDonation(t *Thread) {
	if t.donaElem != nil {
		t.donaElem.RemoveSelf()
		t.donaElem = nil
	}
}

// resetPriority recomputes t's effective priority as the max of its base
// priority and its highest active donation, and re-sorts it into the
// ready queue if it is currently READY. Under MLFQ,
// effective priority is instead governed entirely by the recompute
// formula (mlfq.go), so resetPriority is a no-op — donation bookkeeping
// still runs (locks still function), it just doesn't drive priority.
func (k *Kernel) resetPriority(t *Thread) {
	if k.MLFQS {
		return
	}

	p := t.BasePriority
	if head := t.donations.Front(); head != nil {
		if d := head.Value.Priority(); d > p {
			p = d
		}
	}
	t.priority = p

	if t.Status == StatusReady {
		k.ready.RemoveValue(func(x *Thread) bool { return x == t })
		k.ready.InsertOrdered(t, readyLess)
	}
}

// cascadeReset recomputes t's effective priority and, if t is itself
// blocked on a lock, re-donates the refreshed value up that lock's chain.
// Unlike donatePriority this isn't a fresh block: it's how a donation
// already in flight gets corrected after one of its contributors changes
// out from under it, e.g. a waiter cancelled by a timeout (CancelWait).
func (k *Kernel) cascadeReset(t *Thread) {
	k.resetPriority(t)
	if t.RequiredLock == nil {
		return
	}
	h := t.RequiredLock.Holder()
	if h == nil {
		return
	}
	k.removeDonation(t)
	t.donaElem = h.donations.InsertOrdered(t, donationLess)
	k.cascadeReset(h)
}

// SetPriority is set_priority: under strict priority only (a no-op under
// MLFQ). Sets base_priority, recomputes effective priority, then yields
// if a ready thread now outranks the caller.
func (k *Kernel) SetPriority(p int) {
	validatePriority("set_priority", p)
	if k.MLFQS {
		return
	}

	old := k.Intr.Disable()
	self := k.current
	self.BasePriority = p
	k.resetPriority(self)
	k.yieldIfOutranked()
	k.Intr.SetLevel(old)
}

// GetPriority returns the calling thread's current effective priority.
func (k *Kernel) GetPriority() int { return k.current.Priority() }

// Lock is priority-donation-aware mutual exclusion: the reference
// synchronization primitive layered on the donation chain above: it
// sets required_lock before donating, clears it on acquisition, and
// calls remove_donation on every waiter once released.
type Lock struct {
	holder  *Thread
	waiters rlist.List[*Thread]
}

// NewLock returns an unheld Lock.
func NewLock() *Lock {
	l := &Lock{}
	l.waiters.Init()
	return l
}

// Holder returns the thread currently holding l, or nil.
func (l *Lock) Holder() *Thread { return l.holder }

// Acquire blocks the calling thread until it holds l, donating priority
// along the required_lock -> holder chain if l is already held by
// another thread.
func (l *Lock) Acquire(cpu *CPU) {
	k := cpu.k
	self := cpu.self

	old := k.Intr.Disable()
	defer k.Intr.SetLevel(old)

	if l.holder == nil {
		l.holder = self
		return
	}

	self.RequiredLock = l
	k.donatePriority(self)
	l.waiters.PushBack(self)
	k.blockLocked(self)
	// Resumed: Release made us the holder and cleared RequiredLock.
}

// Release hands l to the highest-priority waiter, if any, removing and
// then reinstating donations among the remaining waiters so they donate
// to the new holder instead of the old one.
func (l *Lock) Release(cpu *CPU) {
	k := cpu.k
	self := cpu.self
	errors.Assert(l.holder == self, "lock_release", "release called by non-holder")

	old := k.Intr.Disable()
	defer k.Intr.SetLevel(old)

	var next *Thread
	var remaining []*Thread
	l.waiters.Do(func(w *Thread) {
		if next == nil || w.Priority() > next.Priority() {
			if next != nil {
				remaining = append(remaining, next)
			}
			next = w
		} else {
			remaining = append(remaining, w)
		}
	})

	l.waiters.Do(func(w *Thread) { k.removeDonation(w) })
	l.waiters.Init()
	k.resetPriority(self)

	l.holder = next
	if next != nil {
		next.RequiredLock = nil
		for _, w := range remaining {
			l.waiters.PushBack(w)
			k.donatePriority(w)
		}
		k.unblockLocked(next)
	}

	k.yieldIfOutranked()
}

// CancelWait removes waiter from l's wait set without granting it the
// lock, for a higher-level timeout primitive: cancellation/timeouts are
// the responsibility of higher-level sleep/wait primitives, and land on
// the scheduler only through a normal unblock. waiter remains BLOCKED;
// the caller is responsible for unblocking it. The holder's donation is
// cascaded to reflect waiter's withdrawal.
func (l *Lock) CancelWait(k *Kernel, waiter *Thread) {
	old := k.Intr.Disable()
	defer k.Intr.SetLevel(old)

	l.waiters.RemoveValue(func(w *Thread) bool { return w == waiter })
	k.removeDonation(waiter)
	waiter.RequiredLock = nil

	if h := l.holder; h != nil {
		k.cascadeReset(h)
	}
}
