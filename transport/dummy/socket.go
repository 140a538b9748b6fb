package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/sthttp/transport"
)

var _ transport.Socket = new(Socket)

type step struct {
	data []byte
	err  error
}

// Socket is a scripted non-blocking socket. Every read consumes the next scripted step,
// a chunk of data or an error. When the script is exhausted, reads return
// transport.ErrWouldBlock, as a real socket with nothing to read does. Written data is
// journaled.
type Socket struct {
	reads       []step
	writes      []error
	writeLimit  int
	written     []byte
	closed      bool
	closedTimes int
	fd          int
}

// NewSocket returns a socket with the chunks scripted for reading.
func NewSocket(chunks ...string) *Socket {
	s := &Socket{fd: -1}
	return s.Feed(chunks...)
}

// Feed scripts more chunks for reading.
func (s *Socket) Feed(chunks ...string) *Socket {
	for _, chunk := range chunks {
		s.reads = append(s.reads, step{data: []byte(chunk)})
	}

	return s
}

// EOF scripts the peer closing its side.
func (s *Socket) EOF() *Socket {
	return s.ReadError(io.EOF)
}

// ReadError scripts the read failing with the error.
func (s *Socket) ReadError(err error) *Socket {
	s.reads = append(s.reads, step{err: err})
	return s
}

// WriteLimit limits how many bytes a single write accepts. Zero means no limit.
func (s *Socket) WriteLimit(n int) *Socket {
	s.writeLimit = n
	return s
}

// WriteError scripts the next write failing with the error. Writes are failed in the order
// errors were scripted, one per call. Pass transport.ErrWouldBlock to simulate a full
// send buffer.
func (s *Socket) WriteError(errs ...error) *Socket {
	s.writes = append(s.writes, errs...)
	return s
}

// WithFd sets the value returned by Fd.
func (s *Socket) WithFd(fd int) *Socket {
	s.fd = fd
	return s
}

func (s *Socket) Read(b []byte) (n int, err error) {
	if s.closed {
		return 0, net.ErrClosed
	}

	if len(s.reads) == 0 {
		return 0, transport.ErrWouldBlock
	}

	head := &s.reads[0]
	if head.err != nil {
		err = head.err
		s.reads = s.reads[1:]
		return 0, err
	}

	n = copy(b, head.data)
	if head.data = head.data[n:]; len(head.data) == 0 {
		s.reads = s.reads[1:]
	}

	return n, nil
}

func (s *Socket) Write(b []byte) (n int, err error) {
	if s.closed {
		return 0, net.ErrClosed
	}

	if len(s.writes) > 0 {
		err, s.writes = s.writes[0], s.writes[1:]
		return 0, err
	}

	n = len(b)
	if s.writeLimit > 0 && n > s.writeLimit {
		n = s.writeLimit
	}

	s.written = append(s.written, b[:n]...)

	return n, nil
}

func (s *Socket) Close() error {
	s.closed = true
	s.closedTimes++
	return nil
}

func (s *Socket) Fd() int {
	return s.fd
}

// Written returns everything that was written so far.
func (s *Socket) Written() []byte {
	return s.written
}

// Closed reports whether Close was called.
func (s *Socket) Closed() bool {
	return s.closed
}

// ClosedTimes returns how many times Close was called.
func (s *Socket) ClosedTimes() int {
	return s.closedTimes
}

// Pending reports whether there are scripted reads left.
func (s *Socket) Pending() bool {
	return len(s.reads) > 0
}
