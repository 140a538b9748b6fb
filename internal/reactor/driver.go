package reactor

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/sthttp/config"
	"github.com/indigo-web/sthttp/http"
	"github.com/indigo-web/sthttp/internal/poller"
	"github.com/indigo-web/sthttp/internal/protocol/http1"
	"github.com/indigo-web/sthttp/internal/slab"
	"github.com/indigo-web/sthttp/internal/timer"
	"github.com/indigo-web/sthttp/transport"
)

// ListenerToken is reserved for the listening socket. Connections are given tokens
// starting right after it.
const ListenerToken uint32 = 0

type acceptor interface {
	Accept() (*transport.Conn, error)
	Fd() int
	Close() error
}

// Driver is a single-threaded event loop. It owns the listener, the poller and every
// connection, and dispatches readiness events to connections one at a time. Nothing
// except Stop may be called from other goroutines.
type Driver struct {
	cfg      *config.Config
	listener acceptor
	poller   *poller.Poller
	conns    *slab.Slab[*http1.Conn]
	handler  http.Handler
	logger   *slog.Logger
	idle     *idleTracker
	events   []poller.Event
	now      func() time.Time
	// clock is precise, unlike now, as accept delays are way below the timer resolution.
	clock   func() time.Time
	backoff acceptBackoff

	stopping atomic.Bool
	// mu guards the poller from being woken up after it was closed.
	mu     sync.Mutex
	closed bool
}

// New registers the listener in a fresh poller. The driver takes the ownership of the
// listener: it's closed once Run returns, or immediately if New fails.
func New(cfg *config.Config, listener *transport.Listener, handler http.Handler, logger *slog.Logger) (*Driver, error) {
	p, err := poller.New(cfg.NET.PollEvents)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	// the listener is level-triggered, as it's drained until would-block anyway
	if err = p.Register(listener.Fd(), ListenerToken, poller.Readable, false); err != nil {
		_ = listener.Close()
		_ = p.Close()
		return nil, err
	}

	return &Driver{
		cfg:      cfg,
		listener: listener,
		poller:   p,
		conns:    slab.New[*http1.Conn](slab.Token(ListenerToken+1), cfg.Conn.Capacity),
		handler:  handler,
		logger:   logger,
		idle:     newIdleTracker(cfg.Conn.IdleTimeout),
		events:   make([]poller.Event, 0, cfg.NET.PollEvents),
		now:      timer.Now,
		clock:    time.Now,
	}, nil
}

// Run blocks serving connections until Stop is called or a fatal error occurs. Either way,
// every resource is released before it returns.
func (d *Driver) Run() (err error) {
	defer d.shutdown()

	for !d.stopping.Load() {
		d.events, err = d.poller.Wait(d.events[:0], d.timeout())
		if err != nil {
			return err
		}

		for _, event := range d.events {
			if event.Token == ListenerToken {
				if err = d.accept(); err != nil {
					d.logger.Error("accepting connections failed", "err", err)
					return err
				}

				continue
			}

			d.dispatch(event)
		}

		if d.backoff.due(d.clock()) {
			if err = d.poller.Register(d.listener.Fd(), ListenerToken, poller.Readable, false); err != nil {
				d.logger.Error("cannot resume accepting connections", "err", err)
				return err
			}
		}

		d.idle.reap(d.now(), d.isServed, d.dropIdle)
	}

	return nil
}

// Stop makes Run return as soon as the current batch of events is processed. It's safe to
// call it from any goroutine, multiple times.
func (d *Driver) Stop() error {
	d.stopping.Store(true)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	return d.poller.Wake()
}

// timeout is how long the poller may block: until either the earliest idle deadline or
// the end of the accept pause, whichever comes first.
func (d *Driver) timeout() time.Duration {
	idle, pause := d.idle.next(d.now()), d.backoff.remaining(d.clock())
	switch {
	case pause < 0:
		return idle
	case idle < 0:
		return pause
	default:
		return min(idle, pause)
	}
}

// accept accepts every pending connection. On a temporary error the listener is taken out
// of the poller for a while: being level-triggered, it would otherwise be reported ready
// over and over again while the pending connection can't be accepted.
func (d *Driver) accept() error {
	for {
		socket, err := d.listener.Accept()
		switch {
		case err == nil:
			d.backoff.reset()
			d.register(socket)
		case errors.Is(err, transport.ErrWouldBlock):
			return nil
		case transport.IsTemporary(err):
			delay := d.backoff.pause(d.clock())
			d.logger.Warn("cannot accept a connection", "err", err, "retry_in", delay)
			return d.poller.Deregister(d.listener.Fd())
		default:
			return err
		}
	}
}

func (d *Driver) register(socket *transport.Conn) {
	token, err := d.conns.Insert(func(token slab.Token) *http1.Conn {
		return http1.NewConn(uint32(token), socket, d.handler, d.cfg, d.logger)
	})
	if err != nil {
		d.logger.Warn("connection rejected", "remote", socket.Remote(), "err", err)
		_ = socket.Close()
		return
	}

	conn := d.conns.Get(token)
	if err = d.poller.Register(socket.Fd(), uint32(token), poller.Readable, true); err != nil {
		d.logger.Warn("cannot register a connection", "remote", socket.Remote(), "err", err)
		d.conns.Remove(token)
		_ = conn.Close()
		return
	}

	now := d.now()
	conn.Touch(now)
	d.idle.track(token, conn, now)
	http.OnConnectionStart(d.handler)
	d.logger.Debug("connection accepted", "token", token, "remote", socket.Remote())
}

func (d *Driver) dispatch(event poller.Event) {
	token := slab.Token(event.Token)
	conn := d.conns.Get(token)

	switch state := conn.State(); {
	case state == http1.Reading && !event.Readable, state == http1.Writing && !event.Writable:
		panic("BUG: readiness doesn't match the state of the connection: " + state.String())
	}

	state := conn.Ready()
	conn.Touch(d.now())

	var err error

	switch state {
	case http1.Reading:
		err = d.poller.Reregister(conn.Fd(), event.Token, poller.Readable, true)
	case http1.Writing:
		err = d.poller.Reregister(conn.Fd(), event.Token, poller.Writable, true)
	case http1.Closed:
		d.drop(token)
		return
	}

	if err != nil {
		d.logger.Warn("cannot re-arm a connection", "token", token, "err", err)
		d.drop(token)
	}
}

// isServed reports whether the record refers to a connection that's still being served.
func (d *Driver) isServed(record idleRecord) bool {
	return d.conns.Contains(record.token) && d.conns.Get(record.token) == record.conn
}

func (d *Driver) dropIdle(token slab.Token) {
	d.logger.Debug("closing an idle connection", "token", token)
	d.drop(token)
}

// drop closes the connection and frees its token. Dropping a free token is a no-op.
func (d *Driver) drop(token slab.Token) {
	conn, ok := d.conns.Remove(token)
	if !ok {
		return
	}

	// closing the descriptor removes it from the epoll set anyway, unless it was duplicated
	_ = d.poller.Deregister(conn.Fd())
	if err := conn.Close(); err != nil {
		d.logger.Debug("closing a connection failed", "token", token, "err", err)
	}

	http.OnConnectionEnd(d.handler)
	d.logger.Debug("connection closed", "token", token)
}

func (d *Driver) shutdown() {
	if err := d.listener.Close(); err != nil {
		d.logger.Warn("closing the listener failed", "err", err)
	}

	for token := range d.conns.All() {
		d.drop(token)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if err := d.poller.Close(); err != nil {
		d.logger.Warn("closing the poller failed", "err", err)
	}
}
