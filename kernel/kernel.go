package kernel

import (
	"pintos-go/errors"
	"pintos-go/fixedpoint"
	"pintos-go/hooks"
	"pintos-go/intr"
	"pintos-go/logging"
	"pintos-go/page"
	"pintos-go/rlist"
)

// Kernel owns the entire set of threads and the single-CPU scheduler
// state: the ready queue, the all-threads list, the tid allocator, the
// currently running thread, and (under MLFQ) the system load average.
// Every exported method is documented with the interrupt-level discipline
// it requires.
type Kernel struct {
	Intr  *intr.Controller
	Hooks hooks.Registry

	ready   rlist.List[*Thread]
	all     rlist.List[*Thread]
	current *Thread
	idle    *Thread

	tidNext int
	tidMu   chanMutex

	MLFQS   bool
	loadAvg fixedpoint.Fixed

	ticks       uint64
	idleTicks   uint64
	kernelTicks uint64
	userTicks   uint64

	// ticksSinceRecompute drives the MLFQ per-4-tick priority recompute
	// boundary. It is an explicit quantum counter, not a `ticks % 4 == 0`
	// test: the two coincide numerically only as long as nothing else
	// resets it.
	ticksSinceRecompute int
}

// chanMutex is a tiny channel-backed mutex used only for the tid
// allocator, which needs to remain cheap and be callable with interrupts
// enabled — independent of the interrupt-disable discipline that guards
// the rest of the scheduler's state.
type chanMutex chan struct{}

func newChanMutex() chanMutex {
	c := make(chanMutex, 1)
	c <- struct{}{}
	return c
}

func (m chanMutex) Lock()   { <-m }
func (m chanMutex) Unlock() { m <- struct{}{} }

// New constructs a Kernel. mlfqs selects the MLFQ policy; false selects
// the strict priority-donation policy. Thread_init must be called with
// interrupts disabled exactly once at boot, which New enforces by
// constructing the Intr
// controller itself already disabled during setup and restoring it to On
// before returning — mirroring a real boot sequence where the CPU starts
// with interrupts off until the scheduler is ready.
func New(mlfqs bool) *Kernel {
	k := &Kernel{
		Intr:    intr.New(),
		MLFQS:   mlfqs,
		tidNext: 1,
		tidMu:   newChanMutex(),
	}
	k.ready.Init()
	k.all.Init()
	k.loadAvg = fixedpoint.FromInt(0)

	old := k.Intr.Disable()
	defer k.Intr.SetLevel(old)

	main := &Thread{
		TID:          k.nextTID(),
		Name:         "main",
		Status:       StatusRunning,
		BasePriority: PriDefault,
		priority:     PriDefault,
		magic:        ThreadMagic,
		isMain:       true,
		gate:         make(chan *Thread),
		exited:       make(chan struct{}),
	}
	main.donations.Init()
	k.current = main
	k.all.PushBack(main)

	logging.Default().Info("thread_init", "thread", main.Name, "tid", main.TID, "mlfqs", mlfqs)
	return k
}

// fire notifies k.Hooks of a lifecycle transition for t, snapshotting the
// fields a listener might want without handing out the live *Thread.
func (k *Kernel) fire(ev hooks.Event, t *Thread) {
	k.Hooks.Fire(ev, hooks.Snapshot{TID: t.TID, Name: t.Name, Priority: t.Priority(), Tick: k.ticks})
}

func (k *Kernel) nextTID() int {
	k.tidMu.Lock()
	defer k.tidMu.Unlock()
	t := k.tidNext
	k.tidNext++
	return t
}

// Start is thread_start: creates the idle thread at PRI_MIN, enables
// interrupts, and blocks until the idle thread has captured its own
// identity. Mirrors a classic sema_down(&idle_started):
// the boot thread actually blocks through the scheduler, which is what
// lets the idle thread (the only other ready thread) run at all.
func (k *Kernel) Start() {
	errors.Assert(k.idle == nil, "thread_start", "called more than once")

	boot := k.current
	idleFn := func(cpu *CPU) {
		old := k.Intr.Disable()
		k.idle = cpu.self
		k.unblockLocked(boot)
		k.Intr.SetLevel(old)
		for {
			old := k.Intr.Disable()
			cpu.Block()
			k.Intr.SetLevel(old)
			cpu.RunTicks(1)
		}
	}
	k.Create("idle", PriMin, idleFn, nil)
	k.Intr.SetLevel(intr.On)

	old := k.Intr.Disable()
	k.blockLocked(boot)
	k.Intr.SetLevel(old)

	logging.Default().Info("thread_start", "idle_tid", k.idle.TID)
}

// Create is thread_create: allocates a page, initializes the TCB,
// allocates a fresh tid, unblocks the new thread, then yields if it
// outranks the caller. Returns ErrorTID if no page is available.
func (k *Kernel) Create(name string, priority int, workload Workload, aux any) int {
	validatePriority("thread_create", priority)
	errors.Assert(workload != nil, "thread_create", "workload must not be nil")

	t := k.spawn(name, priority, workload, aux, false)
	if t == nil {
		return ErrorTID
	}

	old := k.Intr.Disable()
	if k.MLFQS {
		// Under MLFQ the priority argument is ignored: the new thread and
		// the caller are compared by their recurrence-derived priorities.
		k.mlfqRecomputePriority(t)
		k.mlfqRecomputePriority(k.current)
	}
	k.unblockLocked(t)
	k.yieldIfOutranked()
	k.Intr.SetLevel(old)

	return t.TID
}

// spawn allocates a page and TCB and starts the thread's goroutine, which
// immediately parks on its own gate (born BLOCKED). It
// does not insert the thread into the ready queue; callers do that via
// unblockLocked once the TCB is fully prepared, matching thread_create's
// "prepares stack frames atomically, then unblocks" sequencing.
func (k *Kernel) spawn(name string, priority int, workload Workload, aux any, isIdle bool) *Thread {
	p, err := page.Alloc()
	if err != nil {
		logging.Default().Warn("thread_create: allocation failed", "name", name, "err", err)
		return nil
	}

	t := &Thread{
		TID:          k.nextTID(),
		Name:         name,
		Status:       StatusBlocked,
		BasePriority: priority,
		priority:     priority,
		magic:        ThreadMagic,
		page:         p,
		gate:         make(chan *Thread),
		exited:       make(chan struct{}),
		workload:     workload,
		aux:          aux,
		isIdle:       isIdle,
	}
	t.donations.Init()

	old := k.Intr.Disable()
	k.all.PushBack(t)
	k.fire(hooks.Created, t)
	k.Intr.SetLevel(old)

	go k.run(t)
	return t
}

// run is a thread's goroutine body: park until first scheduled, run the
// workload, then tear down via Exit. This is the Go stand-in for "three
// stack frames prepared top-down: switch stub, trampoline, entry
// function" — the trampoline is this function, and the
// entry function is Workload. A thread's first resumption always leaves
// interrupts enabled, matching a real kernel thread's prepared initial
// trap frame.
func (k *Kernel) run(t *Thread) {
	from := <-t.gate
	k.completeSwitch(from)
	k.Intr.SetLevel(intr.On)

	t.workload(&CPU{k: k, self: t, Aux: t.aux})
	k.Exit()
}

// ForEach is thread_foreach: callable with interrupts off, invokes fn for
// every thread on the all-threads list, including idle. An exiting thread
// is removed from that list by Exit before it is marked DYING, so fn never
// sees a dying thread.
func (k *Kernel) ForEach(fn func(t *Thread)) {
	errors.Assert(k.Intr.Level() == intr.Off, "thread_foreach", "must be called with interrupts off")
	k.all.Do(fn)
}

// Current returns the thread presently marked RUNNING.
func (k *Kernel) Current() *Thread {
	return k.current
}

// Ticks returns the monotonic tick count maintained by the tick handler.
func (k *Kernel) Ticks() uint64 { return k.ticks }
