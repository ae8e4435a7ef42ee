package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingTicker struct {
	n atomic.Int64
}

func (c *countingTicker) Tick() { c.n.Add(1) }

func TestStepDeliversExactTickCount(t *testing.T) {
	c := &countingTicker{}
	d := New(c)

	d.Step(37)

	if got := c.n.Load(); got != 37 {
		t.Fatalf("tick count = %d, want 37", got)
	}
}

func TestStepIsSynchronous(t *testing.T) {
	c := &countingTicker{}
	d := New(c)

	d.Step(5)
	if got := c.n.Load(); got != 5 {
		t.Fatalf("tick count immediately after Step = %d, want 5", got)
	}
}

func TestRunAndStop(t *testing.T) {
	c := &countingTicker{}
	d := New(c)

	d.Run()
	time.Sleep(50 * time.Millisecond)
	d.Stop()

	got := c.n.Load()
	if got == 0 {
		t.Fatal("Run() delivered no ticks within 50ms at TimerFreq Hz")
	}

	// Ticks must stop accumulating once Stop has returned.
	time.Sleep(20 * time.Millisecond)
	if after := c.n.Load(); after != got {
		t.Fatalf("ticks kept arriving after Stop(): %d -> %d", got, after)
	}
}

func TestRunIsNoOpWhenAlreadyRunning(t *testing.T) {
	c := &countingTicker{}
	d := New(c)

	d.Run()
	d.Run() // must not panic or start a second goroutine
	d.Stop()
}

func TestStopIsNoOpWhenNotRunning(t *testing.T) {
	c := &countingTicker{}
	d := New(c)

	d.Stop() // must not panic
}
