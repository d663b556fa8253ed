// Package biztime keeps time handling in one place. Everything stored or sent
// over the wire is UTC; services take a Clock so windows can be tested.
package biztime

import "time"

// Clock returns the current instant.
type Clock func() time.Time

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Fixed returns a Clock pinned to t, for tests.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// ToUTC converts a time to UTC, leaving nil pointers alone.
func ToUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
