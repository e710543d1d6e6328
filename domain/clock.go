package domain

import "time"

// Clock abstracts time reads so expiry logic stays deterministic under test.
// Entities and services never call time.Now directly.
type Clock interface {
	Now() time.Time
	Timestamp() int64
	ISOString() string
}

type systemClock struct{}

// NewSystemClock returns a Clock backed by the system time in UTC.
//
//nolint:ireturn
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Timestamp() int64 {
	return time.Now().UTC().Unix()
}

func (systemClock) ISOString() string {
	return time.Now().UTC().Format(time.RFC3339)
}
