package transport

import (
	"errors"
)

var (
	// ErrWouldBlock is returned by non-blocking operations that can't progress without
	// waiting for the readiness.
	ErrWouldBlock = errors.New("operation would block")
	// ErrUnsupported is returned on platforms with no non-blocking socket implementation.
	ErrUnsupported = errors.New("non-blocking sockets are not supported on this platform")
)

// Socket is a non-blocking stream socket. Read returns io.EOF once the peer has closed its
// writing side, and ErrWouldBlock if there is nothing to read yet. Write may write less than
// requested; ErrWouldBlock is returned if nothing could be written at all.
type Socket interface {
	Read(b []byte) (n int, err error)
	Write(b []byte) (n int, err error)
	Close() error
	// Fd returns the file descriptor to be registered in a poller.
	Fd() int
}
