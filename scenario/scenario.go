// Package scenario loads a JSON document describing a boot scenario — the
// scheduling policy, and a set of threads with their priority, nice value,
// and a short list of scripted actions — so the command-line tool can
// replay a scheduling scenario from a file instead of only from Go test
// code.
//
// Adapted from an OCI config.json / state.json pattern (a typed struct,
// Load/Save via encoding/json, a Default for a minimal starting point)
// with the container-specific fields (root filesystem, namespaces,
// capabilities, mounts) replaced by the scheduler's own small vocabulary.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pintos-go/kernel"
)

// Scenario is a complete boot configuration: which scheduling policy to
// run under, and the set of threads to create at boot.
type Scenario struct {
	// MLFQS selects the MLFQ policy. False selects strict priority
	// donation, the default.
	MLFQS bool `json:"mlfqs"`

	// Threads is the set of threads created, in order, once the kernel has
	// booted.
	Threads []ThreadSpec `json:"threads"`
}

// ThreadSpec describes one thread to create at boot.
type ThreadSpec struct {
	// Name is the thread's human label. Must be unique within a Scenario.
	Name string `json:"name"`
	// Priority is the thread's base priority at creation, [PRI_MIN,PRI_MAX].
	// Ignored under MLFQS, where manual priorities are overridden by the
	// nice-driven recurrence.
	Priority int `json:"priority"`
	// Nice is the thread's nice value, [NICE_MIN,NICE_MAX]. Only
	// meaningful under MLFQS; zero otherwise.
	Nice int `json:"nice,omitempty"`
	// Steps is an ordered list of scripted actions the thread performs
	// once scheduled, each one of:
	//   "busy:N"      - simulate N ticks of CPU-bound work (CPU.RunTicks)
	//   "acquire:L"   - acquire the named Lock L (Run creates every named
	//                   Lock before any thread starts)
	//   "release:L"   - release the named Lock L, which must be held
	//   "yield"       - thread_yield
	// A thread with no Steps runs once and exits immediately.
	Steps []string `json:"steps,omitempty"`
}

// Load reads and parses a Scenario from a JSON file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", path, err)
	}
	return &s, nil
}

// Save writes s to path as indented JSON.
func (s *Scenario) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("scenario: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Default returns a small illustrative scenario: three threads at
// priorities 20, 30, 40 against the "main" thread running at PRI_DEFAULT.
func Default() *Scenario {
	return &Scenario{
		Threads: []ThreadSpec{
			{Name: "A", Priority: 20, Steps: []string{"busy:1"}},
			{Name: "B", Priority: 30, Steps: []string{"busy:1"}},
			{Name: "C", Priority: 40, Steps: []string{"busy:1"}},
		},
	}
}

// Validate checks field ranges and step syntax without running anything.
func (s *Scenario) Validate() error {
	seen := make(map[string]bool, len(s.Threads))
	for i, t := range s.Threads {
		if t.Name == "" {
			return fmt.Errorf("thread %d: name must not be empty", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("thread %d: duplicate name %q", i, t.Name)
		}
		seen[t.Name] = true

		if t.Priority < kernel.PriMin || t.Priority > kernel.PriMax {
			return fmt.Errorf("thread %q: priority %d out of range [%d,%d]", t.Name, t.Priority, kernel.PriMin, kernel.PriMax)
		}
		if t.Nice < kernel.NiceMin || t.Nice > kernel.NiceMax {
			return fmt.Errorf("thread %q: nice %d out of range [%d,%d]", t.Name, t.Nice, kernel.NiceMin, kernel.NiceMax)
		}
		for _, step := range t.Steps {
			if _, err := parseStep(step); err != nil {
				return fmt.Errorf("thread %q: %w", t.Name, err)
			}
		}
	}
	return nil
}

// stepKind enumerates the scripted actions a ThreadSpec's Steps can name.
type stepKind int

const (
	stepBusy stepKind = iota
	stepAcquire
	stepRelease
	stepYield
)

type step struct {
	kind stepKind
	arg  string // lock name (acquire/release) or tick count as string (busy)
	n    int    // parsed tick count, for stepBusy
}

func parseStep(s string) (step, error) {
	verb, arg, hasArg := strings.Cut(s, ":")
	switch verb {
	case "busy":
		if !hasArg {
			return step{}, fmt.Errorf("busy step requires :N, got %q", s)
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return step{}, fmt.Errorf("busy step: invalid tick count %q", arg)
		}
		return step{kind: stepBusy, n: n}, nil
	case "acquire":
		if !hasArg || arg == "" {
			return step{}, fmt.Errorf("acquire step requires :NAME, got %q", s)
		}
		return step{kind: stepAcquire, arg: arg}, nil
	case "release":
		if !hasArg || arg == "" {
			return step{}, fmt.Errorf("release step requires :NAME, got %q", s)
		}
		return step{kind: stepRelease, arg: arg}, nil
	case "yield":
		return step{kind: stepYield}, nil
	default:
		return step{}, fmt.Errorf("unknown step verb %q in %q", verb, s)
	}
}
