// Package host implements the bridge between MonDot scripts and the
// surrounding program: a name-indexed registry of native callables
// (spec §4.3) that also serves as the host manifest the compiler
// consults to validate unresolved call names at compile time.
package host

import (
	"sync"
	"sync/atomic"

	"mondot/internal/value"
)

// NativeFunc is a host function: it receives a sequence of Values
// and returns one Value. Per spec §4.3 host functions follow a
// lenient contract — validate arity/tags internally and return nil
// or a type-appropriate default on mismatch, never a Go error.
type NativeFunc func(args []value.Value) value.Value

// Bridge is the process-wide host manifest and dispatch table. A
// single Bridge instance is constructed once per process and shared
// between the compiler (for name resolution) and the VM (for
// dispatch), satisfying the "process-wide host manifest" contract of
// spec §4.3 without a package-level global.
type Bridge struct {
	mu      sync.RWMutex
	funcs   map[string]NativeFunc
	ruleSeq atomic.Uint64
}

// New returns an empty Bridge with no functions registered.
func New() *Bridge {
	return &Bridge{funcs: make(map[string]NativeFunc)}
}

// Register adds or replaces a native callable under name, immediately
// making it visible to Has (and therefore to the compiler).
func (b *Bridge) Register(name string, fn NativeFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.funcs[name] = fn
}

// Has reports whether name is a registered host function.
func (b *Bridge) Has(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.funcs[name]
	return ok
}

// Invoke synchronously calls the named host function. Per spec §4.3,
// an absent function returns nil rather than an error.
func (b *Bridge) Invoke(name string, args []value.Value) value.Value {
	b.mu.RLock()
	fn, ok := b.funcs[name]
	b.mu.RUnlock()
	if !ok {
		return value.Nil
	}
	return fn(args)
}

// NewRule issues a fresh, monotonically increasing rule handle for an
// opaque host-owned resource of the given kind (spec §4.3, §9 open
// question 3: consumption is undefined).
func (b *Bridge) NewRule(kind string) value.Value {
	id := b.ruleSeq.Add(1)
	return value.Rule(value.RuleHandle{ID: id, Kind: kind})
}

// ReleaseRule is a no-op placeholder: this implementation does not
// track rule lifetime beyond issuance, matching spec §4.3's
// "implementation defines release semantics."
func (b *Bridge) ReleaseRule(value.Value) {}
