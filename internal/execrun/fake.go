// SPDX-License-Identifier: MPL-2.0

package execrun

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
)

type (
	// Fake is a scripted Runner for tests. Results are queued per tool
	// (keyed by executable base name, lowercased, without the .exe
	// suffix) and consumed in order; tools without a queued result
	// succeed. Every invocation is recorded for later inspection.
	Fake struct {
		mu      sync.Mutex
		results map[string][]*Result
		calls   []FakeCall

		// Script, when set, decides every result and takes precedence
		// over queued results. Useful for argument-sensitive stubs.
		Script func(inv *Invocation, captured bool) *Result
	}

	// FakeCall records a single invocation observed by the Fake.
	FakeCall struct {
		Tool     string
		Args     []string
		Dir      string
		Env      map[string]string
		Detached bool
		Captured bool
	}
)

// NewFake creates an empty Fake runner.
func NewFake() *Fake {
	return &Fake{results: make(map[string][]*Result)}
}

// Stub queues results for the given tool name. Each matching invocation
// consumes one result; when the queue is empty the last queued result is
// reused.
func (f *Fake) Stub(tool string, results ...*Result) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := toolKey(tool)
	f.results[key] = append(f.results[key], results...)
	return f
}

// Run implements Runner.
func (f *Fake) Run(_ context.Context, inv *Invocation) *Result {
	return f.record(inv, false)
}

// RunCapture implements Runner.
func (f *Fake) RunCapture(_ context.Context, inv *Invocation) *Result {
	return f.record(inv, true)
}

// Calls returns a copy of all recorded invocations in order.
func (f *Fake) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsFor returns the recorded invocations of the given tool.
func (f *Fake) CallsFor(tool string) []FakeCall {
	key := toolKey(tool)
	var out []FakeCall
	for _, c := range f.Calls() {
		if toolKey(c.Tool) == key {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) record(inv *Invocation, captured bool) *Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, FakeCall{
		Tool:     inv.Path,
		Args:     append([]string(nil), inv.Args...),
		Dir:      inv.Dir,
		Env:      inv.Env,
		Detached: inv.Detach,
		Captured: captured,
	})

	if f.Script != nil {
		return f.Script(inv, captured)
	}

	key := toolKey(inv.Path)
	queue := f.results[key]
	if len(queue) == 0 {
		return NewSuccessResult()
	}

	result := queue[0]
	if len(queue) > 1 {
		f.results[key] = queue[1:]
	}
	return result
}

// toolKey normalizes an executable path to a lookup key: base name,
// lowercased, without a .exe suffix.
func toolKey(path string) string {
	base := strings.ToLower(filepath.Base(path))
	// Handle Windows separators in tests running on other platforms.
	if i := strings.LastIndex(base, `\`); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".exe")
}
