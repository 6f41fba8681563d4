//go:build !debug

// Package debug provides assertions for driver invariants. They are checked
// when building with the debug tag and compile to no-ops otherwise, so they
// may be used on hot paths like register accesses.
package debug

// Guard more complex assertions (i.e. anything that could panic) with `if
// debug.Enabled{...}`, otherwise they can't be removed in release builds.
const Enabled = false

// Assert panics if b is false.
func Assert(b bool, message string) {}

// Assertf panics with a formatted message if b is false.
func Assertf(b bool, format string, args ...any) {}
