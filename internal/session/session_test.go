package session_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/robotserver/internal/session"
	"github.com/example/robotserver/internal/testclient"
	"github.com/example/robotserver/internal/transport"
)

// startServer spins up a Listener bound to a random port running the robot
// session handler with cfg. With defaultConfig's zero keys a client can
// authorize by echoing the server's confirmation code straight back.
func startServer(t *testing.T, cfg session.Config) (*transport.Listener, string) {
	t.Helper()

	l := transport.NewListener(":0", transport.Config{
		AcceptIdleTimeout: 0,
		GracefulTimeout:   time.Second,
		Logger:            transport.NewNoopLogger(),
	})

	done, err := l.Start(context.Background(), session.Handler(cfg, transport.LogLevelInfo))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = l.Stop()
		<-done
	})

	return l, l.Addr().String()
}

func dial(t *testing.T, addr string) *testclient.Client {
	t.Helper()
	c := testclient.New(addr, time.Second)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func defaultConfig() session.Config {
	return session.Config{
		ServerKey:       0,
		ClientKey:       0,
		ReadTimeout:     300 * time.Millisecond,
		ChargingTimeout: 500 * time.Millisecond,
	}
}

func login(t *testing.T, c *testclient.Client, username string) {
	t.Helper()
	require.NoError(t, c.Send(username))
	code, err := c.Receive(time.Second)
	require.NoError(t, err)

	require.NoError(t, c.Send(code))
	reply, err := c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "200 OK", reply)
}

func TestSessionHappyPathMoveAndPickup(t *testing.T) {
	_, addr := startServer(t, defaultConfig())
	c := dial(t, addr)

	login(t, c, "A")

	reply, err := c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "102 MOVE", reply)

	// First position report: position known, heading still unknown.
	require.NoError(t, c.Send("OK 0 0"))
	reply, err = c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "102 MOVE", reply)

	// Second position report sets heading and lands on an unsearched cell.
	require.NoError(t, c.Send("OK 1 0"))
	reply, err = c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "105 GET MESSAGE", reply)

	require.NoError(t, c.Send("a hidden message"))
	reply, err = c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "106 LOGOUT", reply)

	_, err = c.Receive(time.Second)
	require.Error(t, err) // connection closed after logout
}

func TestSessionLoginWithNonZeroKeys(t *testing.T) {
	// Username "Z" (ASCII 90) hashes to 90*1000 mod 65536 = 24464. With
	// ServerKey=100 the server challenges with 24464+100=24564; the client
	// recovers the hash by subtracting its known ServerKey, then answers with
	// hash+ClientKey=24464+50=24514.
	cfg := defaultConfig()
	cfg.ServerKey = 100
	cfg.ClientKey = 50
	_, addr := startServer(t, cfg)
	c := dial(t, addr)

	require.NoError(t, c.Send("Z"))
	challenge, err := c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "24564", challenge)

	require.NoError(t, c.Send("24514"))
	reply, err := c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "200 OK", reply)
}

func TestSessionLoginFailure(t *testing.T) {
	_, addr := startServer(t, defaultConfig())
	c := dial(t, addr)

	require.NoError(t, c.Send("A"))
	_, err := c.Receive(time.Second)
	require.NoError(t, err)

	require.NoError(t, c.Send("1")) // wrong code, zero keys mean the right code is 65000
	reply, err := c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "300 LOGIN FAILED", reply)

	_, err = c.Receive(time.Second)
	require.Error(t, err)
}

func TestSessionSyntaxErrorOnMalformedFrame(t *testing.T) {
	_, addr := startServer(t, defaultConfig())
	c := dial(t, addr)

	require.NoError(t, c.Send("Bob"))
	_, err := c.Receive(time.Second)
	require.NoError(t, err)

	require.NoError(t, c.Send("12a3"))
	reply, err := c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "301 SYNTAX ERROR", reply)
}

func TestSessionFrameTooLongIsSyntaxError(t *testing.T) {
	_, addr := startServer(t, defaultConfig())
	c := dial(t, addr)

	require.NoError(t, c.Send(strings.Repeat("x", 40)))
	reply, err := c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "301 SYNTAX ERROR", reply)
}

func TestSessionRechargeInterlude(t *testing.T) {
	_, addr := startServer(t, defaultConfig())
	c := dial(t, addr)

	login(t, c, "A")
	_, err := c.Receive(time.Second) // 102 MOVE
	require.NoError(t, err)

	require.NoError(t, c.Send("RECHARGING"))
	_, err = c.Receive(150 * time.Millisecond)
	require.Error(t, err) // no reply while entering charging

	require.NoError(t, c.Send("FULL POWER"))
	_, err = c.Receive(150 * time.Millisecond)
	require.Error(t, err) // no reply while leaving charging either

	// Resumes exactly where AwaitPosition left off.
	require.NoError(t, c.Send("OK 0 0"))
	reply, err := c.Receive(time.Second)
	require.NoError(t, err)
	require.Equal(t, "102 MOVE", reply)
}

func TestSessionIdleTimeoutClosesSilently(t *testing.T) {
	_, addr := startServer(t, defaultConfig())
	c := dial(t, addr)

	require.NoError(t, c.Send("A"))
	_, err := c.Receive(time.Second)
	require.NoError(t, err)

	// Never answer the confirmation prompt; the session's read timeout must
	// close the connection without sending any response.
	_, err = c.Receive(2 * time.Second)
	require.Error(t, err)
}
