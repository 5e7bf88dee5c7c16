package toaster

import (
	"strconv"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/colonyops/toaster/internal/core/toast/toasttest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// newTestToaster returns a toaster on a fake clock with sequential ids "1", "2", ...
func newTestToaster(t *testing.T) (*Toaster, *Registry, *toasttest.Scheduler) {
	t.Helper()

	sched := toasttest.NewScheduler(t0)
	reg := NewRegistry(WithScheduler(sched))
	t.Cleanup(reg.Close)

	n := 0
	tt := New(reg, Config{IDFunc: func() string {
		n++
		return strconv.Itoa(n)
	}})

	return tt, reg, sched
}
