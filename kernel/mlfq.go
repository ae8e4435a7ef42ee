package kernel

import "pintos-go/fixedpoint"

// mlfqRecomputePriority applies the single-thread priority formula:
// priority = clamp(PRI_MAX - recent_cpu/4 - 2*nice, PRI_MIN, PRI_MAX),
// truncated toward zero before clamping.
func (k *Kernel) mlfqRecomputePriority(t *Thread) {
	p := fixedpoint.FromInt(PriMax).
		Sub(t.RecentCPU.DivInt(4)).
		Sub(fixedpoint.FromInt(2 * t.Nice))

	pi := p.ToIntTruncate()
	switch {
	case pi < PriMin:
		pi = PriMin
	case pi > PriMax:
		pi = PriMax
	}
	t.priority = pi
}

// mlfqRecomputeAllPriorities recomputes every thread's priority via the
// formula above. Called unconditionally inside schedule() on every
// reschedule (O(N) per context switch, acceptable for a teaching kernel)
// and again at the tick handler's per-4-tick boundary; both triggers are
// independently specified and both are preserved here.
func (k *Kernel) mlfqRecomputeAllPriorities() {
	k.all.Do(func(t *Thread) {
		k.mlfqRecomputePriority(t)
	})
}

// mlfqSecondBoundary runs the once-per-second recurrences: load_avg
// decays toward the current ready_count, then every thread's recent_cpu
// decays toward its nice value.
func (k *Kernel) mlfqSecondBoundary() {
	readyCount := k.ready.Len()
	if k.current != k.idle {
		readyCount++
	}

	fiftyNine60 := fixedpoint.FromInt(59).Div(fixedpoint.FromInt(60))
	oneSixtieth := fixedpoint.FromInt(1).Div(fixedpoint.FromInt(60))
	k.loadAvg = fiftyNine60.Mul(k.loadAvg).Add(oneSixtieth.MulInt(readyCount))

	twoLoadAvg := k.loadAvg.MulInt(2)
	coeff := twoLoadAvg.Div(twoLoadAvg.AddInt(1))
	k.all.Do(func(t *Thread) {
		t.RecentCPU = coeff.Mul(t.RecentCPU).AddInt(t.Nice)
	})
}

// SetNice is thread_set_nice: updates the calling thread's nice value,
// immediately recomputes its priority, reinserts it into the ready queue
// if appropriate, and yields if a ready thread now outranks it.
func (k *Kernel) SetNice(n int) {
	validateNice("thread_set_nice", n)
	old := k.Intr.Disable()

	t := k.current
	t.Nice = n
	k.mlfqRecomputePriority(t)
	if t.Status == StatusReady {
		k.ready.RemoveValue(func(x *Thread) bool { return x == t })
		k.ready.InsertOrdered(t, readyLess)
	}
	k.yieldIfOutranked()

	k.Intr.SetLevel(old)
}

// GetNice returns the calling thread's nice value.
func (k *Kernel) GetNice() int { return k.current.Nice }

// GetLoadAvg returns load_avg times 100, rounded to nearest.
func (k *Kernel) GetLoadAvg() int { return k.loadAvg.MulInt(100).ToIntRound() }

// GetRecentCpu returns t's recent_cpu times 100, rounded to nearest.
func (k *Kernel) GetRecentCpu(t *Thread) int { return t.RecentCPU.MulInt(100).ToIntRound() }
