// Package system supplies the wall clock used by real crawl runs.
package system

import "time"

// Clock reads the system time. Everything downstream of the engine treats
// timestamps as UTC: air dates are stored in UTC and the export layer
// formats them in UTC, so the clock never hands out a local time.
type Clock struct{}

// New creates a Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
