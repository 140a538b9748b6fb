package poller

import (
	"errors"
	"math"
)

// Interest is the readiness a file descriptor is registered for.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
)

// WakerToken is reserved for the poller's internal waker and is never returned to the
// caller.
const WakerToken uint32 = math.MaxUint32

var ErrUnsupported = errors.New("poller: readiness notifications are not supported on this platform")

// Event is a single readiness notification. Errors and hang-ups on the descriptor are
// reported as both readable and writable, so whoever waits for either one is woken up
// and discovers the condition from the next I/O call.
type Event struct {
	Token    uint32
	Readable bool
	Writable bool
}
