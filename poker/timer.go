package poker

import (
	"sync"
	"time"
)

// turnTimer counts down a fixed number of ticks of inactivity and then calls
// expire. Cancel is idempotent: cancelling an already-fired or
// already-cancelled timer is a no-op, so the race between the timer firing
// and the real action arriving is resolved by whoever takes the director's
// lock first.
type turnTimer struct {
	stop chan struct{}
	once sync.Once
}

func newTurnTimer() *turnTimer {
	return &turnTimer{stop: make(chan struct{})}
}

func (t *turnTimer) start(ticks int, interval time.Duration, expire func()) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 0; i < ticks; i++ {
			select {
			case <-ticker.C:
			case <-t.stop:
				return
			}
		}
		expire()
	}()
}

func (t *turnTimer) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
}
