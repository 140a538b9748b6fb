package reactor

import "time"

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// acceptBackoff is how long the listener is kept out of the poller after a temporary
// accept error. The delay doubles on every consecutive failure and resets on the first
// accepted connection.
type acceptBackoff struct {
	delay    time.Duration
	resumeAt time.Time
	paused   bool
}

func (a *acceptBackoff) pause(now time.Time) time.Duration {
	if a.delay == 0 {
		a.delay = minAcceptDelay
	} else {
		a.delay = min(a.delay*2, maxAcceptDelay)
	}

	a.paused = true
	a.resumeAt = now.Add(a.delay)
	return a.delay
}

// due reports whether the pause is over. Once it returns true, the pause is cleared.
func (a *acceptBackoff) due(now time.Time) bool {
	if !a.paused || now.Before(a.resumeAt) {
		return false
	}

	a.paused = false
	return true
}

// remaining returns how long is left until the pause is over. Negative value means the
// listener isn't paused.
func (a *acceptBackoff) remaining(now time.Time) time.Duration {
	if !a.paused {
		return -1
	}

	return max(a.resumeAt.Sub(now), 0)
}

func (a *acceptBackoff) reset() {
	a.delay = 0
}
