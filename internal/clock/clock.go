package clock

import "time"

// Clock supplies the current time. Lifecycle services take it as a dependency
// so expiry and timestamped side effects are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall clock
func System() Clock { return systemClock{} }

// Fixed returns a clock frozen at t
func Fixed(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
