package kernel

// CPU is the handle a running thread's workload uses to act on its own
// behalf: yield, block, or let simulated time pass (a workload exits by
// returning). It binds
// a Kernel to exactly one Thread (the thread currently executing the
// workload that was handed this CPU), standing in for "the currently
// executing context" a kernel-mode thread implicitly has in a real
// implementation.
type CPU struct {
	k    *Kernel
	self *Thread

	// Aux is the opaque argument thread_create's caller supplied.
	Aux any
}

// Self returns the thread this CPU handle belongs to.
func (c *CPU) Self() *Thread { return c.self }

// Kernel returns the owning Kernel.
func (c *CPU) Kernel() *Kernel { return c.k }

// Yield is thread_yield, called on behalf of Self.
func (c *CPU) Yield() { c.k.Yield() }

// Block is thread_block, called on behalf of Self.
func (c *CPU) Block() { c.k.Block() }

// RunTicks simulates n timer ticks elapsing while Self is running. There
// is no preemptive timer in this simulation (see the kernel package
// doc); a workload that wants to model doing CPU-bound work for a while
// calls RunTicks instead of looping on wall-clock time, and the tick
// handler's accounting and quantum-driven yield run exactly as they
// would under a real interrupt, just invoked cooperatively.
func (c *CPU) RunTicks(n int) {
	for i := 0; i < n; i++ {
		c.k.Tick()
	}
}
