package toast

import "time"

// Scheduler is the clock and timer port used by the timer manager.
type Scheduler interface {
	Now() time.Time
	// After calls fn once d has elapsed. The returned function cancels the
	// timer; calling it after fn ran or more than once is harmless.
	After(d time.Duration, fn func()) (cancel func())
}

// SystemScheduler is the wall-clock Scheduler backed by time.AfterFunc.
var SystemScheduler Scheduler = systemScheduler{}

type systemScheduler struct{}

func (systemScheduler) Now() time.Time { return time.Now() }

func (systemScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
