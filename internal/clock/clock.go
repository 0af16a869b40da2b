// Package clock injects time into services so allocation timestamps and age
// computations are testable against a fixed instant.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type system struct{}

// System returns a clock backed by time.Now in UTC.
func System() Clock {
	return system{}
}

func (system) Now() time.Time {
	return time.Now().UTC()
}

type fixed struct {
	at time.Time
}

// Fixed returns a clock pinned to a single instant, for tests.
func Fixed(at time.Time) Clock {
	return fixed{at: at.UTC()}
}

func (f fixed) Now() time.Time {
	return f.at
}
