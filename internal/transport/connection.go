package transport

import (
	"net"
	"sync/atomic"
	"time"
)

// connectionIDCounter hands out process-wide unique connection ids for
// logging; nothing else depends on ordering or uniqueness beyond that.
var connectionIDCounter atomic.Uint64

// Conn wraps a net.Conn accepted by the Listener with an id and a logger. It
// is a thin synchronous wrapper: callers read and write the socket directly
// through it, since a session's framing length depends on its own current
// protocol state and can't be decided by a background reader in advance.
type Conn struct {
	id     uint64
	nc     net.Conn
	logger Logger
}

func newConn(nc net.Conn, logger Logger) *Conn {
	if logger == nil {
		logger = NewNoopLogger()
	}
	return &Conn{
		id:     connectionIDCounter.Add(1),
		nc:     nc,
		logger: logger,
	}
}

// ID returns the connection's unique id, stable for its lifetime.
func (c *Conn) ID() uint64 { return c.id }

// RemoteAddr returns the remote address of the underlying socket.
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// LocalAddr returns the local address of the underlying socket.
func (c *Conn) LocalAddr() net.Addr { return c.nc.LocalAddr() }

// Logger returns the logger bound to this connection.
func (c *Conn) Logger() Logger { return c.logger }

// Read reads directly from the underlying socket.
func (c *Conn) Read(p []byte) (int, error) { return c.nc.Read(p) }

// Write writes directly to the underlying socket.
func (c *Conn) Write(p []byte) (int, error) { return c.nc.Write(p) }

// SetReadTimeout sets a relative deadline for the next read operation(s).
// A zero duration clears any deadline. This is the primitive the session
// uses to apply the normal or charging read timeout before each frame.
func (c *Conn) SetReadTimeout(d time.Duration) error {
	if d <= 0 {
		return c.nc.SetReadDeadline(time.Time{})
	}
	return c.nc.SetReadDeadline(time.Now().Add(d))
}

// Close closes the underlying socket. Safe to call more than once; the
// second and later calls return the net package's "already closed" error,
// which callers in this module always ignore.
func (c *Conn) Close() error { return c.nc.Close() }
