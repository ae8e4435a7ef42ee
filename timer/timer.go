// Package timer drives the kernel's tick handler, either at real
// wall-clock pace or synchronously for deterministic tests: a monotonic
// tick count delivered at a compile-time frequency, TIMER_FREQ.
package timer

import (
	"sync"
	"time"

	"pintos-go/kernel"
)

// Ticker is satisfied by *kernel.Kernel; it is the timer's only view of
// the scheduler, kept narrow so tests can substitute a fake.
type Ticker interface {
	Tick()
}

// Driver periodically calls Tick on a Ticker. In wall-clock mode it runs
// as a free-running goroutine at kernel.TimerFreq Hz; Step lets a test
// or scenario replay drive ticks synchronously instead, without racing a
// background goroutine.
type Driver struct {
	k Ticker

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

// New returns a Driver bound to k.
func New(k Ticker) *Driver {
	return &Driver{k: k}
}

// Run starts the wall-clock goroutine, ticking at kernel.TimerFreq Hz
// until Stop is called. Run is a no-op if already running.
func (d *Driver) Run() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.stop = make(chan struct{})

	interval := time.Second / time.Duration(kernel.TimerFreq)
	stop := d.stop
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				d.k.Tick()
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the wall-clock goroutine started by Run. Safe to call when
// not running.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	close(d.stop)
	d.running = false
}

// Step synchronously delivers n ticks, for deterministic tests and
// scenario replay that must not race a wall-clock goroutine.
func (d *Driver) Step(n int) {
	for i := 0; i < n; i++ {
		d.k.Tick()
	}
}
