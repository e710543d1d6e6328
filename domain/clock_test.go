package domain

import "time"

// fakeClock pins time for deterministic expiry tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Timestamp() int64        { return c.now.Unix() }
func (c *fakeClock) ISOString() string       { return c.now.Format(time.RFC3339) }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
