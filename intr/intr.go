// Package intr provides an interrupt-level abstraction with two states
// (on/off), an interrupt-context query, and the "yield-on-return" latch
// consulted by the (simulated) interrupt-return path.
//
// A real kernel realizes "interrupts off" with a single flag in the CPU's
// EFLAGS register, checked and set by a single instruction. This module
// runs on a real OS thread per simulated kernel thread, so the uniprocessor
// discipline is instead enforced by a mutex: Disable acquires it, a
// restore releases it. Exactly one goroutine may hold it at a time, which
// is the property "disabling interrupts obtains mutual exclusion" actually
// depends on.
package intr

import "sync"

// Level mirrors the two states of the (simulated) CPU flags register.
type Level int

const (
	// Off means interrupts are disabled: the caller holds the kernel's
	// critical section.
	Off Level = iota
	// On means interrupts are enabled.
	On
)

// Controller is the simulated interrupt controller. The zero value starts
// with interrupts enabled, as a freshly booted CPU would.
type Controller struct {
	mu          sync.Mutex
	level       Level
	heldBy      int // goroutine-local id of the holder, 0 if none; best-effort diagnostics only
	inInterrupt bool
	yieldOnRet  bool
}

// New returns a Controller with interrupts enabled.
func New() *Controller {
	return &Controller{level: On}
}

// Level returns the current interrupt level.
func (c *Controller) Level() Level {
	return c.level
}

// Disable disables interrupts and returns the previous level, mirroring
// the source's intr_disable(): idempotent if already Off.
func (c *Controller) Disable() Level {
	old := c.level
	if old == On {
		c.mu.Lock()
		c.level = Off
	}
	return old
}

// SetLevel restores interrupts to the given level, the counterpart to a
// prior Disable(). Passing On when already On, or Off when already Off, is
// a no-op.
func (c *Controller) SetLevel(level Level) Level {
	old := c.level
	if old == level {
		return old
	}
	c.level = level
	if level == On {
		c.mu.Unlock()
	} else {
		c.mu.Lock()
	}
	return old
}

// InInterruptContext reports whether the caller is running on behalf of an
// interrupt handler (the tick handler, in this kernel). Scheduler entry
// points that must not be called from interrupt context (thread_block,
// thread_yield, thread_exit) check this.
func (c *Controller) InInterruptContext() bool {
	return c.inInterrupt
}

// EnterInterruptContext marks the controller as running interrupt-handler
// code. Returns a function that must be deferred to leave interrupt
// context again (the simulated "interrupt return" point).
func (c *Controller) EnterInterruptContext() func() {
	prev := c.inInterrupt
	c.inInterrupt = true
	return func() { c.inInterrupt = prev }
}

// RequestYieldOnReturn sets the latch consulted on interrupt return.
// Multiple sets during a single handler invocation coalesce.
func (c *Controller) RequestYieldOnReturn() {
	c.yieldOnRet = true
}

// ConsumeYieldOnReturn reports and clears the yield-on-return latch. Called
// exactly once per simulated interrupt return.
func (c *Controller) ConsumeYieldOnReturn() bool {
	v := c.yieldOnRet
	c.yieldOnRet = false
	return v
}
