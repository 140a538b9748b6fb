package reactor

import (
	"time"

	"github.com/eapache/queue"
	"github.com/indigo-web/sthttp/internal/protocol/http1"
	"github.com/indigo-web/sthttp/internal/slab"
)

type idleRecord struct {
	token    slab.Token
	conn     *http1.Conn
	deadline time.Time
}

// idleTracker keeps exactly one record per connection in a FIFO. A record isn't updated on
// every activity: instead, once it expires, the connection's last activity is checked and
// the record is either re-queued with the actual deadline or the connection is reaped.
// Therefore a connection may outlive its idle timeout by up to another timeout.
type idleTracker struct {
	timeout time.Duration
	records *queue.Queue
}

func newIdleTracker(timeout time.Duration) *idleTracker {
	return &idleTracker{
		timeout: timeout,
		records: queue.New(),
	}
}

func (i *idleTracker) track(token slab.Token, conn *http1.Conn, now time.Time) {
	if i.timeout <= 0 {
		return
	}

	i.records.Add(idleRecord{
		token:    token,
		conn:     conn,
		deadline: now.Add(i.timeout),
	})
}

// next returns how long to wait until the earliest record expires. Negative value means
// there's nothing to wait for.
func (i *idleTracker) next(now time.Time) time.Duration {
	if i.records.Length() == 0 {
		return -1
	}

	return max(i.records.Peek().(idleRecord).deadline.Sub(now), 0)
}

// reap pops every expired record and drops connections that have been idle for the whole
// timeout. Records of connections active meanwhile are re-queued with the updated deadline.
// As tokens are reused, alive reports whether the record still refers to a served connection.
func (i *idleTracker) reap(now time.Time, alive func(idleRecord) bool, drop func(slab.Token)) {
	for i.records.Length() > 0 {
		record := i.records.Peek().(idleRecord)
		if record.deadline.After(now) {
			return
		}

		i.records.Remove()
		if !alive(record) {
			continue
		}

		if deadline := record.conn.LastActive().Add(i.timeout); deadline.After(now) {
			record.deadline = deadline
			i.records.Add(record)
			continue
		}

		drop(record.token)
	}
}
