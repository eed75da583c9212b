// Package transport accepts TCP connections and runs one Handler per
// connection, independently of any particular wire protocol.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrListenerNotStarted is returned when Stop is called before Start.
	ErrListenerNotStarted = errors.New("listener not started")

	// ErrListenerAlreadyStarted is returned when Start is called twice.
	ErrListenerAlreadyStarted = errors.New("listener already started")
)

// Handler runs one session to completion for an accepted connection. It must
// not return until the session has finished reading and writing c; the
// Listener closes c and removes it from bookkeeping once Handler returns.
type Handler func(ctx context.Context, c *Conn)

// Listener accepts TCP connections and runs one independent Handler
// invocation per connection, on its own goroutine, sharing no mutable state
// between sessions beyond the bound socket itself (single-producer accept
// loop). Idle-accept timeout is the only built-in shutdown trigger; SIGTERM
// draining is layered on top by Stop's graceful-timeout behavior.
type Listener struct {
	address string
	config  Config
	logger  Logger

	tcpListener *net.TCPListener
	running     atomic.Bool
	ctx         context.Context
	cancel      context.CancelFunc
	startOnce   sync.Once
	stopOnce    sync.Once
	done        chan struct{}

	sem *semaphore.Weighted

	connections sync.Map // map[*Conn]struct{}
	connCount   atomic.Int64
	acceptWg    sync.WaitGroup
	connWg      sync.WaitGroup
}

// NewListener creates a Listener bound to address (not yet listening).
func NewListener(address string, config Config) *Listener {
	if config.Logger == nil {
		config.Logger = NewNoopLogger()
	}

	var sem *semaphore.Weighted
	if config.MaxConnections > 0 {
		sem = semaphore.NewWeighted(int64(config.MaxConnections))
	}

	return &Listener{
		address: address,
		config:  config,
		logger:  config.Logger,
		sem:     sem,
	}
}

// Start binds the listening socket and begins accepting connections,
// running handler for each on its own goroutine. It returns a channel that
// closes once the Listener has fully stopped (idle timeout, or Stop called).
func (l *Listener) Start(ctx context.Context, handler Handler) (<-chan struct{}, error) {
	if l.running.Load() {
		return nil, ErrListenerAlreadyStarted
	}

	var startErr error
	l.startOnce.Do(func() {
		l.ctx, l.cancel = context.WithCancel(ctx)
		l.done = make(chan struct{})

		addr, err := net.ResolveTCPAddr("tcp", l.address)
		if err != nil {
			startErr = fmt.Errorf("resolve listen address: %w", err)
			return
		}

		tl, err := net.ListenTCP("tcp", addr)
		if err != nil {
			startErr = fmt.Errorf("listen: %w", err)
			return
		}

		l.tcpListener = tl
		l.running.Store(true)

		l.logger.Info("robot server listening on %s", tl.Addr())

		l.acceptWg.Add(1)
		go l.acceptLoop(handler)
	})

	if startErr != nil {
		return nil, startErr
	}
	return l.done, nil
}

// acceptLoop accepts connections until the idle-accept timeout elapses, the
// listener socket is closed, or the context is cancelled.
func (l *Listener) acceptLoop(handler Handler) {
	defer l.acceptWg.Done()

	for {
		select {
		case <-l.ctx.Done():
			return
		default:
		}

		if l.config.AcceptIdleTimeout > 0 {
			_ = l.tcpListener.SetDeadline(time.Now().Add(l.config.AcceptIdleTimeout))
		}

		conn, err := l.tcpListener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				l.logger.Info("accept idle timeout after %s, shutting down", l.config.AcceptIdleTimeout)
				go l.Stop()
				return
			}

			l.logger.Error("accept error: %v", err)
			continue
		}

		if l.sem != nil && !l.sem.TryAcquire(1) {
			l.logger.Warn("max connections reached, rejecting %s", conn.RemoteAddr())
			conn.Close()
			continue
		}

		l.spawn(conn, handler)
	}
}

func (l *Listener) spawn(nc net.Conn, handler Handler) {
	c := newConn(nc, l.logger)

	l.connections.Store(c, struct{}{})
	l.connCount.Add(1)
	l.connWg.Add(1)

	if l.config.LogLevel >= LogLevelDebug1 {
		l.logger.Info("connection #%d accepted from %s", c.ID(), c.RemoteAddr())
	}

	go func() {
		defer func() {
			l.connections.Delete(c)
			l.connCount.Add(-1)
			if l.sem != nil {
				l.sem.Release(1)
			}
			c.Close()
			l.connWg.Done()

			if l.config.LogLevel >= LogLevelDebug1 {
				l.logger.Info("connection #%d closed from %s", c.ID(), c.RemoteAddr())
			}
		}()

		handler(l.ctx, c)
	}()
}

// Stop stops accepting new connections and waits (up to GracefulTimeout) for
// in-flight sessions to finish before force-closing whatever remains.
func (l *Listener) Stop() error {
	if !l.running.Load() {
		return ErrListenerNotStarted
	}

	var stopErr error
	l.stopOnce.Do(func() {
		l.logger.Info("stopping robot server")

		l.cancel()

		if err := l.tcpListener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			stopErr = multierr.Append(stopErr, fmt.Errorf("close listener: %w", err))
		}

		l.acceptWg.Wait()

		if l.config.GracefulTimeout > 0 {
			done := make(chan struct{})
			go func() {
				l.connWg.Wait()
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(l.config.GracefulTimeout):
				l.logger.Warn("graceful timeout elapsed, force-closing remaining sessions")
			}
		}

		l.connections.Range(func(key, _ interface{}) bool {
			if c, ok := key.(*Conn); ok {
				if err := c.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
					stopErr = multierr.Append(stopErr, err)
				}
			}
			return true
		})

		l.connWg.Wait()

		l.running.Store(false)
		l.logger.Info("robot server stopped")
		close(l.done)
	})

	return stopErr
}

// GetConnectionCount returns the number of currently active sessions.
func (l *Listener) GetConnectionCount() int64 { return l.connCount.Load() }

// IsRunning reports whether the Listener is currently accepting connections.
func (l *Listener) IsRunning() bool { return l.running.Load() }

// Addr returns the bound listening address, useful when the configured
// address used port 0.
func (l *Listener) Addr() net.Addr {
	if l.tcpListener != nil {
		return l.tcpListener.Addr()
	}
	return nil
}
