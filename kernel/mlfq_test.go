package kernel

import (
	"testing"

	"pintos-go/fixedpoint"
)

// A freshly created MLFQ thread at nice=0 with no accumulated CPU time
// starts at PRI_MAX.
func TestMlfqRecomputePriorityFreshThread(t *testing.T) {
	k := newBareKernel()
	k.MLFQS = true

	th := newDonationTestThread("cpu-bound", PriDefault)
	th.RecentCPU = fixedpoint.FromInt(0)
	th.Nice = 0

	k.mlfqRecomputePriority(th)
	if got := th.Priority(); got != PriMax {
		t.Fatalf("fresh thread priority = %d, want %d", got, PriMax)
	}
}

// Priority falls by roughly recent_cpu/4 as CPU time accumulates, and
// never drops below PRI_MIN.
func TestMlfqRecomputePriorityDecreasesWithCpuUse(t *testing.T) {
	k := newBareKernel()
	k.MLFQS = true

	th := newDonationTestThread("cpu-bound", PriDefault)
	th.Nice = 0
	th.RecentCPU = fixedpoint.FromInt(4)
	k.mlfqRecomputePriority(th)
	if got := th.Priority(); got != PriMax-1 {
		t.Fatalf("priority after recent_cpu=4 = %d, want %d", got, PriMax-1)
	}

	th.RecentCPU = fixedpoint.FromInt(1000)
	k.mlfqRecomputePriority(th)
	if got := th.Priority(); got != PriMin {
		t.Fatalf("priority should clamp to PRI_MIN, got %d", got)
	}
}

// A higher nice value lowers priority at a fixed rate of 2 per nice point.
func TestMlfqRecomputePriorityNicePenalty(t *testing.T) {
	k := newBareKernel()
	k.MLFQS = true

	th := newDonationTestThread("niced", PriDefault)
	th.RecentCPU = fixedpoint.FromInt(0)
	th.Nice = 5

	k.mlfqRecomputePriority(th)
	if got := th.Priority(); got != PriMax-10 {
		t.Fatalf("priority with nice=5 = %d, want %d", got, PriMax-10)
	}
}

// With exactly one non-idle ready/running thread every second and load_avg
// starting at 0, the bootstrap recurrence converges toward 1-(59/60)^k; at
// k=60 that is close to 0.63, i.e. get_load_avg() near 63.
func TestLoadAvgBootstrapConvergence(t *testing.T) {
	k := newBareKernel()
	k.MLFQS = true

	idle := newDonationTestThread("idle", PriMin)
	k.idle = idle

	cpuBound := newDonationTestThread("cpu-bound", PriDefault)
	k.current = cpuBound
	k.all.PushBack(cpuBound)

	for i := 0; i < 60; i++ {
		k.mlfqSecondBoundary()
	}

	got := k.GetLoadAvg()
	if got < 60 || got > 66 {
		t.Fatalf("GetLoadAvg() after 60s at constant load 1 = %d, want ~63", got)
	}
}

// SetNice recomputes the caller's priority immediately and yields once a
// ready thread outranks it.
func TestSetNiceYieldsToOutrankingThread(t *testing.T) {
	k := New(true)
	k.Start()

	var niceThread *Thread
	k.Create("worker", PriDefault, func(cpu *CPU) {
		niceThread = cpu.Self()
	}, nil)

	// worker and main both start at PRI_MAX (recent_cpu 0, nice 0), so
	// worker has not run yet; nice=10 drops main to PRI_MAX-20.
	k.SetNice(10)
	if niceThread == nil {
		t.Fatal("worker never ran")
	}

	if got := k.GetNice(); got != 10 {
		t.Fatalf("GetNice() = %d, want 10", got)
	}
}
