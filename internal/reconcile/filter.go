package reconcile

import (
	"time"

	"github.com/endocode/timy/internal/source"
)

// Scope restricts which events are processed: a minimum event id plus
// an optional date window.
type Scope struct {
	StartEventID int
	StartDate    *time.Time
	EndDate      *time.Time
}

// InScope reports whether ev should be processed. The upper bound
// compares the event's start time, so an event that starts before the
// cutoff but ends after it is still in scope.
func (s Scope) InScope(ev source.RawEvent) bool {
	if ev.EventID < s.StartEventID {
		return false
	}
	if s.StartDate != nil && ev.Start.Before(*s.StartDate) {
		return false
	}
	if s.EndDate != nil && ev.Start.After(*s.EndDate) {
		return false
	}
	return true
}
