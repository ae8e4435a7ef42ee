// Package page implements a fixed-size page allocator: allocate one
// zeroed page, free one page. A thread's TCB is conceptually laid out at
// the base of the page that also backs its kernel stack; this package
// gives that allocation a real, reclaimable backing instead of a bare
// byte slice, via an anonymous mmap (golang.org/x/sys/unix), matching a
// real kernel's use of raw pages rather than garbage-collected memory
// for thread stacks.
package page

import (
	"sync"

	"golang.org/x/sys/unix"

	cerrors "pintos-go/errors"
)

// Size is the page size used for every thread's combined TCB+stack
// allocation. 16 KiB matches the source kernel's thread stack size.
const Size = 16 * 1024

// Page is one allocated, zeroed page.
type Page struct {
	bytes []byte
	freed bool
}

// Bytes returns the page's backing storage. Valid until Free is called.
func (p *Page) Bytes() []byte {
	return p.bytes
}

var (
	mu        sync.Mutex
	allocated int
)

// Alloc grants one zeroed page, or ErrAllocation if the simulated
// physical-memory budget (set via SetBudget, unlimited by default) is
// exhausted.
func Alloc() (*Page, error) {
	mu.Lock()
	defer mu.Unlock()

	if budget >= 0 && allocated >= budget {
		return nil, cerrors.Newf(cerrors.ErrAllocation, "page.Alloc", "page budget exhausted (%d pages)", budget)
	}

	b, err := unix.Mmap(-1, 0, Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.ErrAllocation, "page.Alloc")
	}
	allocated++
	return &Page{bytes: b}, nil
}

// Free releases p. Freeing an already-freed page is a no-op, matching the
// scheduler's contract that a dying thread's page is reclaimed exactly
// once.
func Free(p *Page) error {
	if p == nil || p.freed {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()

	if err := unix.Munmap(p.bytes); err != nil {
		return cerrors.Wrap(err, cerrors.ErrInternal, "page.Free")
	}
	p.freed = true
	p.bytes = nil
	allocated--
	return nil
}

// budget is the maximum number of simultaneously allocated pages, or -1
// for unlimited. Tests use SetBudget to exercise thread_create's
// allocation-failure path deterministically.
var budget = -1

// SetBudget sets the simulated page budget (-1 for unlimited) and returns
// the previous value, for tests that need to force Alloc to fail.
func SetBudget(n int) int {
	mu.Lock()
	defer mu.Unlock()
	old := budget
	budget = n
	return old
}

// Allocated returns the number of currently outstanding pages.
func Allocated() int {
	mu.Lock()
	defer mu.Unlock()
	return allocated
}
