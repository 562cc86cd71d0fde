package security

import "time"

// Clock abstracts the time source so window arithmetic can be tested with a
// frozen or stepped clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func SystemClock() Clock {
	return systemClock{}
}
