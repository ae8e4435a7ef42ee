package scenario

import (
	"fmt"

	"pintos-go/kernel"
)

// Run boots threads for every ThreadSpec in s against k, which must
// already have been built by kernel.New and had Start called. Threads are
// created in Scenario order; it returns the tid assigned to each thread,
// keyed by name.
//
// Every Lock a Steps list references is created once, up front, before any
// thread runs, so workload closures only ever read the lock map — no
// synchronization is needed beyond the scheduler's own discipline.
//
// Because every thread is created before any of them runs, genuine lock
// contention (and the donation it triggers) only materializes here when a
// higher-priority thread's Steps reach "acquire" while a lower-priority
// thread is still holding that lock from an earlier turn — there is no
// "sleep until tick N" primitive to force a specific interleaving
// deterministically. The precise end-to-end donation trajectories are
// exercised exactly, via direct TCB and Lock manipulation, by
// kernel/priority_test.go; this package's job is a plausible CLI replay,
// not a bit-exact reproduction of a particular walkthrough.
func Run(k *kernel.Kernel, s *Scenario) (map[string]int, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	locks := make(map[string]*kernel.Lock)
	for _, t := range s.Threads {
		for _, raw := range t.Steps {
			st, _ := parseStep(raw)
			if st.kind == stepAcquire || st.kind == stepRelease {
				if _, ok := locks[st.arg]; !ok {
					locks[st.arg] = kernel.NewLock()
				}
			}
		}
	}

	tids := make(map[string]int, len(s.Threads))
	for _, ts := range s.Threads {
		wl := buildWorkload(k, ts, locks)
		tid := k.Create(ts.Name, ts.Priority, wl, nil)
		if tid == kernel.ErrorTID {
			return tids, fmt.Errorf("scenario: thread_create(%q) failed: no page available", ts.Name)
		}
		tids[ts.Name] = tid
	}
	return tids, nil
}

// buildWorkload compiles a ThreadSpec's Steps into a kernel.Workload that
// runs them in order against cpu, then returns (thread_exit).
func buildWorkload(k *kernel.Kernel, ts ThreadSpec, locks map[string]*kernel.Lock) kernel.Workload {
	steps := make([]step, 0, len(ts.Steps))
	for _, raw := range ts.Steps {
		st, _ := parseStep(raw) // already validated by Run's caller
		steps = append(steps, st)
	}
	nice := ts.Nice

	return func(cpu *kernel.CPU) {
		if k.MLFQS && nice != 0 {
			k.SetNice(nice)
		}
		for _, st := range steps {
			switch st.kind {
			case stepBusy:
				cpu.RunTicks(st.n)
			case stepAcquire:
				locks[st.arg].Acquire(cpu)
			case stepRelease:
				locks[st.arg].Release(cpu)
			case stepYield:
				cpu.Yield()
			}
		}
	}
}
