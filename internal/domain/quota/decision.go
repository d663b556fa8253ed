package quota

import "time"

// Decision is the outcome of a check-and-consume.
type Decision struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// UsageStats is a read-only view of a counter. Degraded is set when the
// counter store could not be read and the numbers are placeholders.
type UsageStats struct {
	Feature    Feature
	Tier       Tier
	Used       int
	Limit      int
	Remaining  int
	Window     time.Duration
	WindowType WindowType
	ResetAt    time.Time
	Degraded   bool
}
