package bangumi

import "time"

// Clock is the time source used by the limiter and the search cache
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns the wall clock
func SystemClock() Clock {
	return realClock{}
}
