// Package clock provides an overridable time source for TTL bookkeeping.
package clock

import "time"

// Func returns current time
type Func func() time.Time

// NowFunc returns current time. Override in tests for determinism.
var NowFunc Func = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }
