package kernel

import "pintos-go/intr"

// TimerFreq is the compile-time timer frequency in Hz, shared with the
// timer package's Driver.
const TimerFreq = 100

// TickKind classifies a timer tick by what was running when it landed.
type TickKind int

const (
	TickIdle TickKind = iota
	TickKernel
	TickUser
)

// IdleTicks, KernelTicks, UserTicks report the cumulative tick counts by
// classification, for the statistics a boot command line typically
// prints.
func (k *Kernel) IdleTicks() uint64   { return k.idleTicks }
func (k *Kernel) KernelTicks() uint64 { return k.kernelTicks }
func (k *Kernel) UserTicks() uint64   { return k.userTicks }

// Tick is the timer interrupt handler. It classifies the tick, runs
// the MLFQ recurrences on their respective boundaries, and
// requests a reschedule via the yield-on-return latch rather than
// switching directly — a real interrupt handler cannot itself block.
//
// There is no preemptive timer driving this call; it is invoked
// cooperatively by whichever thread is current, through CPU.RunTicks, or
// by timer.Driver's wall-clock goroutine acting on its behalf. Either
// way it always runs with the calling thread's own identity as current.
func (k *Kernel) Tick() {
	old := k.Intr.Disable()
	leave := k.Intr.EnterInterruptContext()

	k.ticks++
	cur := k.current

	switch {
	case cur == k.idle:
		k.idleTicks++
	case cur.UserContext != nil:
		k.userTicks++
	default:
		k.kernelTicks++
	}

	if k.MLFQS {
		if cur != k.idle {
			cur.RecentCPU = cur.RecentCPU.AddInt(1)
		}
		if k.ticks%TimerFreq == 0 {
			k.mlfqSecondBoundary()
		}
		k.ticksSinceRecompute++
		if k.ticksSinceRecompute >= 4 {
			k.ticksSinceRecompute = 0
			k.mlfqRecomputeAllPriorities()
			k.ready.Sort(readyLess)
		}
	}

	cur.ticksSinceSwitch++
	if cur.ticksSinceSwitch >= TimeSlice {
		k.Intr.RequestYieldOnReturn()
	}

	leave()
	k.Intr.SetLevel(old)

	// The reschedule happens here, on "interrupt return" — but only once
	// the outermost disable actually unwinds to On; a tick landing inside
	// an already-disabled section defers to that section's own return.
	if old == intr.On && k.Intr.ConsumeYieldOnReturn() {
		k.Yield()
	}
}
