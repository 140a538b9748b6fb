package http1

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/indigo-web/sthttp/config"
	"github.com/indigo-web/sthttp/http"
	"github.com/indigo-web/sthttp/http/status"
	"github.com/indigo-web/sthttp/internal/timer"
	"github.com/indigo-web/sthttp/transport"
)

// Conn is the per-connection state machine. It's driven by readiness notifications: every
// Ready call performs a single read or write, depending on the current state, and leaves the
// connection in the state telling which readiness it waits for next.
//
// Only one request is processed at a time. Bytes following a complete request (pipelining)
// are discarded once its response is flushed.
type Conn struct {
	token    uint32
	socket   transport.Socket
	handler  http.Handler
	cfg      *config.Config
	logger   *slog.Logger
	parser   *Parser
	request  *http.Request
	response *http.Response

	state    ConnState
	incoming []byte
	outgoing []byte
	written  int
	// headLength is the length of the parsed request head, or -1 if the head isn't
	// complete yet.
	headLength int
	// contentLength is -1 if no Content-Length header was presented.
	contentLength   int
	closeAfterWrite bool
	lastActive      time.Time
	closed          bool
}

func NewConn(
	token uint32, socket transport.Socket, handler http.Handler, cfg *config.Config, logger *slog.Logger,
) *Conn {
	return &Conn{
		token:         token,
		socket:        socket,
		handler:       handler,
		cfg:           cfg,
		logger:        logger,
		parser:        NewParser(cfg),
		request:       http.NewRequest(cfg.Headers.MaxNumber),
		response:      http.NewResponse(),
		state:         Reading,
		incoming:      make([]byte, 0, cfg.NET.ReadBufferSize.Default),
		outgoing:      make([]byte, 0, cfg.NET.WriteBufferSize.Default),
		headLength:    -1,
		contentLength: -1,
		lastActive:    timer.Now(),
	}
}

// Ready advances the state machine by a single I/O operation. Calling it on a closed
// connection is a programming error.
func (c *Conn) Ready() ConnState {
	switch c.state {
	case Reading:
		c.read()
	case Writing:
		c.write()
	default:
		panic("BUG: readiness dispatched to a " + c.state.String() + " connection")
	}

	return c.state
}

func (c *Conn) read() {
	c.incoming = reserve(c.incoming, c.cfg.NET.ReadBufferSize.Default)
	free := c.incoming[len(c.incoming):cap(c.incoming)]
	n, err := c.socket.Read(free)

	switch {
	case n > 0:
		c.incoming = c.incoming[:len(c.incoming)+n]
		c.handleRequest()
	case err == nil, errors.Is(err, io.EOF):
		if len(c.incoming) == 0 {
			c.state = Closed
			return
		}

		// the peer closed its side in the middle of a request, but may still be willing
		// to read the answer
		c.fail(status.ErrIncompleteRequest)
	case errors.Is(err, transport.ErrWouldBlock):
	default:
		c.logger.Debug("read failed", "token", c.token, "err", err)
		c.state = Closed
	}
}

func (c *Conn) handleRequest() {
	if c.headLength == -1 {
		state, offset, err := c.parser.Parse(c.incoming, c.request)
		switch state {
		case Pending:
			return
		case Error:
			c.fail(err)
			return
		}

		c.headLength = offset
		if length, found := ContentLength(c.request.Headers); found {
			c.contentLength = length
		}

		if c.contentLength > c.cfg.Body.MaxSize {
			c.fail(status.ErrBodyTooLarge)
			return
		}
	}

	end := c.headLength + max(c.contentLength, 0)
	if end > len(c.incoming) {
		return
	}

	c.request.Body = c.incoming[c.headLength:end]
	c.callHandler()
	c.respond()
}

func (c *Conn) callHandler() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panicked", "token", c.token, "path", c.request.Path, "panic", r)
			c.response.Error(status.ErrInternalServerError)
			c.closeAfterWrite = true
		}
	}()

	c.handler.Handle(c.request, c.response)
}

// fail answers with the error and closes the connection as soon as the answer is flushed.
func (c *Conn) fail(err error) {
	c.logger.Warn("bad request", "token", c.token, "err", err)
	c.closeAfterWrite = true
	c.response.Error(err).Header("Connection", "close")
	c.respond()
}

func (c *Conn) respond() {
	c.outgoing = Serialize(c.outgoing[:0], c.response, timer.Date())
	c.written = 0
	c.state = Writing
}

func (c *Conn) write() {
	n, err := c.socket.Write(c.outgoing[c.written:])
	c.written += n

	switch {
	case errors.Is(err, transport.ErrWouldBlock):
		return
	case err != nil:
		c.logger.Debug("write failed", "token", c.token, "err", err)
		c.state = Closed
		return
	case c.written < len(c.outgoing):
		return
	case c.closeAfterWrite:
		c.state = Closed
	default:
		c.reset()
		c.state = Reading
	}
}

// reset prepares the connection for the next request.
func (c *Conn) reset() {
	c.incoming = shrink(c.incoming, c.cfg.NET.ReadBufferSize)
	c.outgoing = shrink(c.outgoing, c.cfg.NET.WriteBufferSize)
	c.written = 0
	c.headLength = -1
	c.contentLength = -1
	c.request.Reset()
}

// Close closes the underlying socket. Subsequent calls are no-op.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true
	c.state = Closed

	return c.socket.Close()
}

func (c *Conn) State() ConnState {
	return c.state
}

func (c *Conn) Token() uint32 {
	return c.token
}

func (c *Conn) Fd() int {
	return c.socket.Fd()
}

// Touch marks the connection as active at the moment.
func (c *Conn) Touch(now time.Time) {
	c.lastActive = now
}

// LastActive returns the moment of the last Touch.
func (c *Conn) LastActive() time.Time {
	return c.lastActive
}

// reserve guarantees at least n bytes of free capacity.
func reserve(buff []byte, n int) []byte {
	if cap(buff)-len(buff) >= n {
		return buff
	}

	grown := make([]byte, len(buff), max(2*cap(buff), len(buff)+n))
	copy(grown, buff)

	return grown
}

// shrink empties the buffer, dropping it in favour of a default-sized one if it grew past
// the maximal retained size.
func shrink(buff []byte, size config.NETBufferSize) []byte {
	if cap(buff) > size.Maximal {
		return make([]byte, 0, size.Default)
	}

	return buff[:0]
}
