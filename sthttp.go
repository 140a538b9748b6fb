package sthttp

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/indigo-web/sthttp/config"
	"github.com/indigo-web/sthttp/http"
	"github.com/indigo-web/sthttp/internal/reactor"
	"github.com/indigo-web/sthttp/transport"
)

var ErrNoHandler = errors.New("sthttp: no handler")

// App is the server. Connections are served on the goroutine calling Serve, which is
// therefore the only goroutine the handler is ever called from.
type App struct {
	addr   string
	cfg    *config.Config
	logger *slog.Logger
	hooks  hooks

	mu     sync.Mutex
	driver *reactor.Driver
	bound  net.Addr
}

// New returns a new App instance. If only the port is presented in the address, e.g. ":8080",
// the server listens on every interface.
func New(addr string) *App {
	return &App{
		addr:   addr,
		cfg:    config.Default(),
		logger: slog.Default(),
	}
}

// Tune replaces default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces slog.Default() as the destination of the server's logs.
func (a *App) Logger(logger *slog.Logger) *App {
	a.logger = logger
	return a
}

// NotifyOnStart calls the callback at the moment the listener is bound, right before starting
// serving connections. The bound address is available via Addr at the moment.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment the server is down. It's guaranteed that
// the listener and every connection are already closed.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Serve binds the address and serves connections until Stop is called or a fatal error
// occurs. The handler is called synchronously, so it must never block.
func (a *App) Serve(handler http.Handler) error {
	if handler == nil {
		return ErrNoHandler
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	listener, err := transport.Listen(a.addr, a.cfg.NET.Backlog)
	if err != nil {
		return fmt.Errorf("sthttp: listen %s: %w", a.addr, err)
	}

	driver, err := reactor.New(a.cfg, listener, handler, a.logger)
	if err != nil {
		return fmt.Errorf("sthttp: %w", err)
	}

	a.mu.Lock()
	a.driver, a.bound = driver, listener.Addr()
	a.mu.Unlock()

	a.logger.Info("listening", "addr", listener.Addr())
	callIfNotNil(a.hooks.OnStart)
	err = driver.Run()
	callIfNotNil(a.hooks.OnStop)
	a.logger.Info("stopped", "addr", listener.Addr(), "err", err)

	return err
}

// Addr returns the address the server is bound to, or nil if it wasn't started yet.
func (a *App) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.bound
}

// Stop stops the server, closing every connection. The call isn't blocking: Serve returns
// as soon as the currently processed events are done. Stopping a server that wasn't started
// is a no-op.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.driver != nil {
		if err := a.driver.Stop(); err != nil {
			a.logger.Warn("cannot stop the server", "err", err)
		}
	}
}

// Start serves the address with default config until a fatal error occurs.
func Start(addr string, handler http.Handler) error {
	return New(addr).Serve(handler)
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
