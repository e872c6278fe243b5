// Package clock centralises the time source so components that stamp
// lifecycle transitions stay deterministic under test.
package clock

import "time"

var nowFunc = time.Now

// Now returns the current time from the active source.
func Now() time.Time { return nowFunc() }

// Stub replaces the time source and returns a function restoring the
// previous one.
func Stub(now func() time.Time) func() {
	previous := nowFunc
	nowFunc = now
	return func() { nowFunc = previous }
}
