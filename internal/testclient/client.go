// Package testclient is a minimal synchronous client for the robot
// navigation protocol, used by internal/session's end-to-end tests. It is a
// blocking connect/send/receive shape, no reconnect or event-loop machinery,
// which is all a test needs to drive one scripted conversation at a time.
package testclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrNotConnected is returned by Send/Receive before Connect has succeeded.
var ErrNotConnected = errors.New("testclient: not connected")

var terminator = []byte{0x07, 0x08}

// Client dials a server, sends terminator-framed payloads, and reads
// terminator-framed responses back, one at a time, blocking until each
// operation completes or times out.
type Client struct {
	address string
	timeout time.Duration
	conn    net.Conn
}

// New creates a Client that will dial address with the given connect
// timeout.
func New(address string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{address: address, timeout: timeout}
}

// Connect dials the server.
func (c *Client) Connect(ctx context.Context) error {
	var d net.Dialer
	connectCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := d.DialContext(connectCtx, "tcp", c.address)
	if err != nil {
		return fmt.Errorf("testclient: dial: %w", err)
	}
	c.conn = conn
	return nil
}

// Send writes payload followed by the protocol terminator.
func (c *Client) Send(payload string) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	buf := append([]byte(payload), terminator...)
	_, err := c.conn.Write(buf)
	return err
}

// Receive reads one terminator-framed response, with the terminator
// stripped, waiting up to deadline for it to arrive.
func (c *Client) Receive(deadline time.Duration) (string, error) {
	if c.conn == nil {
		return "", ErrNotConnected
	}
	if deadline > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
	}

	buf := make([]byte, 0, 128)
	var one [1]byte
	for {
		n, err := c.conn.Read(one[:])
		if n > 0 {
			buf = append(buf, one[0])
			if len(buf) >= len(terminator) &&
				buf[len(buf)-2] == terminator[0] && buf[len(buf)-1] == terminator[1] {
				return string(buf[:len(buf)-len(terminator)]), nil
			}
		}
		if err != nil {
			return "", err
		}
	}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
