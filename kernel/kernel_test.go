package kernel

import (
	"testing"

	"pintos-go/page"
)

// Literal ready-queue ordering scenario: three threads at priorities
// 20, 30, 40 are ready alongside a "main" thread at 31. Popping the
// ready queue head repeatedly must yield C, main, B, A in that order.
func TestReadyQueuePopOrderMatchesPriorityScenario(t *testing.T) {
	k := newBareKernel()

	main := newDonationTestThread("main", 31)
	a := newDonationTestThread("A", 20)
	b := newDonationTestThread("B", 30)
	c := newDonationTestThread("C", 40)

	for _, th := range []*Thread{a, b, c, main} {
		th.Status = StatusReady
		k.ready.InsertOrdered(th, readyLess)
	}

	var order []string
	for {
		th, ok := k.ready.PopFront()
		if !ok {
			break
		}
		order = append(order, th.Name)
	}

	want := []string{"C", "main", "B", "A"}
	if len(order) != len(want) {
		t.Fatalf("pop order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("pop order = %v, want %v", order, want)
		}
	}
}

// A thread that preempts, runs, and exits immediately must have its page
// reclaimed exactly once, and only once its successor (here, the thread
// it preempted) has resumed running — completeSwitch runs in the
// successor's own goroutine, after it wakes back up.
func TestExitFreesPageExactlyOnceAfterSuccessorResumes(t *testing.T) {
	k := New(false)
	k.Start()

	before := page.Allocated()

	tid := k.Create("doomed", PriDefault+10, func(cpu *CPU) {}, nil)
	if tid == ErrorTID {
		t.Fatal("Create() = ErrorTID, want a live tid")
	}

	// By the time Create returns, doomed has preempted main, run its
	// (empty) workload, exited, and handed control back to main - which
	// frees doomed's page as it resumes. Allocated() must be back at its
	// pre-Create baseline, not baseline+1 (leaked) or negative (double free).
	if got := page.Allocated(); got != before {
		t.Fatalf("page.Allocated() after doomed exited = %d, want %d", got, before)
	}
}

// Tick classifies every tick by what was running when it landed: the
// idle thread, a kernel thread (UserContext nil), or a user thread
// (UserContext set).
func TestTickClassifiesIdleKernelAndUserTicks(t *testing.T) {
	k := newBareKernel()

	idle := newDonationTestThread("idle", PriMin)
	idle.Status = StatusRunning
	k.idle = idle

	kernelThread := newDonationTestThread("kernel-thread", PriDefault)
	kernelThread.Status = StatusRunning

	userThread := newDonationTestThread("user-thread", PriDefault)
	userThread.Status = StatusRunning
	userThread.UserContext = struct{}{}

	k.current = idle
	k.Tick()
	if got := k.IdleTicks(); got != 1 {
		t.Fatalf("IdleTicks() = %d, want 1", got)
	}
	if got := k.KernelTicks(); got != 0 {
		t.Fatalf("KernelTicks() = %d, want 0", got)
	}

	k.current = kernelThread
	k.Tick()
	if got := k.KernelTicks(); got != 1 {
		t.Fatalf("KernelTicks() = %d, want 1", got)
	}

	k.current = userThread
	k.Tick()
	if got := k.UserTicks(); got != 1 {
		t.Fatalf("UserTicks() = %d, want 1", got)
	}

	if got := k.Ticks(); got != 3 {
		t.Fatalf("Ticks() = %d, want 3", got)
	}
}

// Create returns ErrorTID, rather than panicking or blocking, when the
// page allocator's budget is exhausted.
func TestCreateReturnsErrorTIDWhenPageBudgetExhausted(t *testing.T) {
	k := New(false)
	k.Start()

	before := page.Allocated()
	old := page.SetBudget(before)
	defer page.SetBudget(old)

	tid := k.Create("doomed", PriDefault, func(cpu *CPU) {}, nil)
	if tid != ErrorTID {
		t.Fatalf("Create() = %d, want ErrorTID (%d)", tid, ErrorTID)
	}
	if got := page.Allocated(); got != before {
		t.Fatalf("page.Allocated() after failed Create = %d, want %d (no leak)", got, before)
	}
}
