// Package server owns process bootstrap: binding the platform-assigned
// address, serving the application on it, and draining on shutdown.
package server

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"credocarbon/utils"
)

// State tracks the bootstrapper through its lifecycle.
type State int32

const (
	StateCreated State = iota
	StateBinding
	StateListening
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateBinding:
		return "binding"
	case StateListening:
		return "listening"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// BindError reports a failure to reserve the listening address. It is fatal:
// restart and backoff policy belong to the hosting platform, not this process.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// Handler is the capability the bootstrapper needs from the application: serve
// HTTP on a listener it is handed, and drain within a timeout when asked.
// *fiber.App satisfies it.
type Handler interface {
	Listener(ln net.Listener) error
	ShutdownWithTimeout(timeout time.Duration) error
}

// Bootstrapper binds one TCP listener and keeps the application reachable on
// it until an external termination signal arrives. All state is instance
// scoped so tests can run several isolated bootstrappers in one process.
type Bootstrapper struct {
	host  string
	port  int
	grace time.Duration

	state    atomic.Int32
	addr     atomic.Value // net.Addr, set after a successful bind
	shutdown chan struct{}
	stopOnce atomic.Bool
}

// NewBootstrapper creates a Bootstrapper for the given bind address. The grace
// duration bounds how long in-flight requests may run during drain.
func NewBootstrapper(host string, port int, grace time.Duration) *Bootstrapper {
	b := &Bootstrapper{
		host:     host,
		port:     port,
		grace:    grace,
		shutdown: make(chan struct{}),
	}
	b.state.Store(int32(StateCreated))
	return b
}

// State returns the current lifecycle state.
func (b *Bootstrapper) State() State {
	return State(b.state.Load())
}

// Addr returns the bound listener address, or nil before a successful bind.
func (b *Bootstrapper) Addr() net.Addr {
	if addr, ok := b.addr.Load().(net.Addr); ok {
		return addr
	}
	return nil
}

// Shutdown requests a drain through the same path as a termination signal.
// Safe to call from any goroutine and more than once.
func (b *Bootstrapper) Shutdown() {
	if b.stopOnce.CompareAndSwap(false, true) {
		close(b.shutdown)
	}
}

// Start binds the listener and serves the handler on it, blocking the calling
// goroutine for the lifetime of the service. On SIGINT/SIGTERM (or Shutdown)
// it stops accepting connections, drains in-flight requests up to the grace
// period, and returns nil. A bind failure returns *BindError without retry.
func (b *Bootstrapper) Start(handler Handler) error {
	b.state.Store(int32(StateBinding))

	ln, err := Listen(b.host, b.port)
	if err != nil {
		b.state.Store(int32(StateStopped))
		return err
	}
	b.addr.Store(ln.Addr())
	b.state.Store(int32(StateListening))
	utils.LogInfo("HTTP server listening", "addr", ln.Addr().String())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- handler.Listener(ln)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-serveErr:
		// The serve loop never returns on its own in normal operation.
		b.state.Store(int32(StateStopped))
		if err != nil {
			return fmt.Errorf("serve loop failed: %w", err)
		}
		return nil
	case s := <-sig:
		utils.LogInfo("termination signal received, draining", "signal", s.String(), "grace", b.grace.String())
	case <-b.shutdown:
		utils.LogInfo("shutdown requested, draining", "grace", b.grace.String())
	}

	b.state.Store(int32(StateDraining))
	if err := handler.ShutdownWithTimeout(b.grace); err != nil {
		// Requests that outlived the grace period were aborted; the drain
		// itself still completed.
		utils.LogError("drain finished with aborted requests", err)
	}
	ln.Close()
	b.state.Store(int32(StateStopped))
	utils.LogInfo("HTTP server stopped")
	return nil
}
