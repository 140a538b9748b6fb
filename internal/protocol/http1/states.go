package http1

// State is the outcome of a single Parser.Parse call.
type State uint8

const (
	// Pending means the head isn't complete yet and more bytes are needed.
	Pending State = iota
	// Complete means the whole head was parsed.
	Complete
	// Error means the head is malformed or exceeds a limit. No further bytes can fix it.
	Error
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Complete:
		return "Complete"
	case Error:
		return "Error"
	default:
		return "<unknown>"
	}
}

// ConnState is the lifecycle state of a connection. It also tells which readiness the
// connection is waiting for.
type ConnState uint8

const (
	// Reading waits for the socket to become readable.
	Reading ConnState = iota
	// Writing waits for the socket to become writable.
	Writing
	// Closed is terminal. A closed connection must be dropped.
	Closed
)

func (c ConnState) String() string {
	switch c {
	case Reading:
		return "Reading"
	case Writing:
		return "Writing"
	case Closed:
		return "Closed"
	default:
		return "<unknown>"
	}
}
