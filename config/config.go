package config

import (
	"errors"
	"time"
)

type (
	Conn struct {
		// Capacity is the maximal number of simultaneously served connections. Connections
		// accepted above it are closed immediately.
		Capacity int
		// IdleTimeout controls the maximal lifetime of IDLE connections. If nothing happened
		// on a connection in this period of time, it'll be closed. Zero disables the reaping.
		IdleTimeout time.Duration `test:"nullable"`
	}

	Headers struct {
		// MaxNumber is the maximal number of headers allowed to be presented in a single
		// request. Exceeding it is a parse failure.
		MaxNumber int
		// MaxSize limits how many bytes may be buffered before the request head completes,
		// request line included. Reaching it without a complete head is a parse failure.
		MaxSize int
	}

	Body struct {
		// MaxSize is the maximal accepted Content-Length value.
		MaxSize int
	}

	NETBufferSize struct {
		Default, Maximal int
	}

	NET struct {
		// ReadBufferSize is an initial size of the incoming buffer of a connection. The
		// Default value is also the minimal free space guaranteed before every read. The
		// Maximal value is the capacity above which the buffer isn't kept for the next
		// request once a response is flushed.
		ReadBufferSize NETBufferSize
		// WriteBufferSize stores the serialized HTTP response. Same growth and retention
		// rules as for ReadBufferSize apply.
		WriteBufferSize NETBufferSize
		// Backlog is the length of the pending connections queue passed to listen(2).
		Backlog int
		// PollEvents is how many readiness events can be fetched at most by a single
		// poll call.
		PollEvents int
	}
)

// Config holds settings used across various parts of the server, mainly restrictions,
// limitations and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Conn    Conn
	Headers Headers
	Body    Body
	NET     NET
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		Conn: Conn{
			Capacity:    1024,
			IdleTimeout: 90 * time.Second,
		},
		Headers: Headers{
			MaxNumber: 50,
			MaxSize:   16 * 1024,
		},
		Body: Body{
			MaxSize: 32 * 1024 * 1024, // 32 megabytes, the whole body is kept in memory
		},
		NET: NET{
			ReadBufferSize: NETBufferSize{
				Default: 4 * 1024,
				Maximal: 64 * 1024,
			},
			WriteBufferSize: NETBufferSize{
				Default: 4 * 1024,
				Maximal: 64 * 1024,
			},
			Backlog:    1024,
			PollEvents: 128,
		},
	}
}

var (
	ErrBadCapacity   = errors.New("config: connections capacity must be positive")
	ErrBadHeaders    = errors.New("config: headers limits must be positive")
	ErrBadBody       = errors.New("config: body size limit must not be negative")
	ErrBadBuffers    = errors.New("config: buffer sizes must be positive and Default must not exceed Maximal")
	ErrBadPollEvents = errors.New("config: poll events number must be positive")
)

// Validate reports the first inconsistency found in the config.
func (c *Config) Validate() error {
	switch {
	case c.Conn.Capacity <= 0:
		return ErrBadCapacity
	case c.Headers.MaxNumber <= 0 || c.Headers.MaxSize <= 0:
		return ErrBadHeaders
	case c.Body.MaxSize < 0:
		return ErrBadBody
	case !c.NET.ReadBufferSize.valid() || !c.NET.WriteBufferSize.valid():
		return ErrBadBuffers
	case c.NET.PollEvents <= 0:
		return ErrBadPollEvents
	}

	return nil
}

func (n NETBufferSize) valid() bool {
	return n.Default > 0 && n.Default <= n.Maximal
}
