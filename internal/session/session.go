// Package session drives one connection through the robot navigation
// protocol's login, navigation, and recharge states.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/example/robotserver/internal/protocol"
	"github.com/example/robotserver/internal/transport"
)

// Config holds the per-session parameters the listener hands to every
// Session it spawns: the shared-secret keys and the two read timeouts.
// Nothing here is mutated once a Session starts.
type Config struct {
	ServerKey       uint16
	ClientKey       uint16
	ReadTimeout     time.Duration
	ChargingTimeout time.Duration
}

// Session is the per-connection protocol state machine: it owns the
// connection's read timeout, classifies one framed request at a time, and
// drives protocol.Robot and protocol.Navigate to decide what to send back.
// Sessions share no mutable state with one another.
type Session struct {
	conn     *transport.Conn
	cfg      Config
	logger   transport.Logger
	logLevel transport.LogLevel
	encoder  *protocol.Encoder
	robot    *protocol.Robot

	usernameHash uint16
	failed       bool
}

// New creates a Session bound to conn. It does not start reading until Run
// is called.
func New(conn *transport.Conn, cfg Config, logLevel transport.LogLevel) *Session {
	return &Session{
		conn:     conn,
		cfg:      cfg,
		logger:   conn.Logger(),
		logLevel: logLevel,
		encoder:  protocol.NewEncoder(),
		robot:    protocol.NewRobot(),
	}
}

// Handler adapts Config into a transport.Handler, so a Listener can spawn
// one Session per accepted connection without knowing the protocol.
func Handler(cfg Config, logLevel transport.LogLevel) transport.Handler {
	return func(ctx context.Context, conn *transport.Conn) {
		New(conn, cfg, logLevel).Run(ctx)
	}
}

// Run executes the session's handshake, navigation loop, and any recharge
// interludes until a terminal response is sent, a protocol violation
// occurs, or the socket fails. It always returns once the session has
// ended; the caller (the Listener) closes the socket.
func (s *Session) Run(ctx context.Context) {
	if err := s.conn.SetReadTimeout(s.cfg.ReadTimeout); err != nil {
		return
	}

	cur := protocol.StateAwaitUsername
	var prior protocol.State

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Restart the read clock for every frame, using the charging timeout
		// while in the charging sub-state.
		timeout := s.cfg.ReadTimeout
		if cur == protocol.StateCharging {
			timeout = s.cfg.ChargingTimeout
		}
		if err := s.conn.SetReadTimeout(timeout); err != nil {
			return
		}

		frame, err := protocol.ReadFrame(s.conn, protocol.MaxFrameLen(cur))
		if err != nil {
			if errors.Is(err, protocol.ErrFrameTooLong) {
				s.logger.Warn("connection #%d frame exceeded %d bytes", s.conn.ID(), protocol.MaxFrameLen(cur))
				s.send(protocol.MsgSyntaxError)
			}
			// Any other error (timeout, EOF, reset) is a silent close.
			return
		}

		event, perr := protocol.Classify(cur, string(frame))
		if perr != nil {
			s.logger.Warn("connection #%d protocol error: %s", s.conn.ID(), perr.Detail)
			s.send(perr.Message)
			return
		}

		if _, ok := event.(protocol.RechargingEvent); ok {
			prior = cur
			s.robot.StartCharging()
			if err := s.conn.SetReadTimeout(s.cfg.ChargingTimeout); err != nil {
				return
			}
			cur = protocol.StateCharging
			if s.logLevel >= transport.LogLevelDebug2 {
				s.logger.Info("connection #%d entering charging mode", s.conn.ID())
			}
			continue
		}

		var done bool
		switch cur {
		case protocol.StateAwaitUsername:
			cur = s.handleUsername(event.(protocol.UsernameEvent))
		case protocol.StateAwaitConfirmation:
			cur, done = s.handleConfirmation(event.(protocol.ConfirmationEvent))
		case protocol.StateAwaitPosition:
			cur, done = s.handlePosition(event.(protocol.PositionEvent))
		case protocol.StateAwaitPickup:
			cur, done = s.handlePickup(event.(protocol.PickupEvent))
		case protocol.StateCharging:
			s.robot.StopCharging()
			if err := s.conn.SetReadTimeout(s.cfg.ReadTimeout); err != nil {
				return
			}
			cur = prior
			if s.logLevel >= transport.LogLevelDebug2 {
				s.logger.Info("connection #%d resuming after charging", s.conn.ID())
			}
		}

		if s.failed || done {
			return
		}
	}
}

func (s *Session) handleUsername(evt protocol.UsernameEvent) protocol.State {
	s.usernameHash = usernameHash(evt.Username)

	if s.logLevel >= transport.LogLevelDebug1 {
		s.logger.Info("connection #%d login attempt username=%q hash=%d", s.conn.ID(), evt.Username, s.usernameHash)
	}

	s.sendConfirmation(s.usernameHash + s.cfg.ServerKey)
	return protocol.StateAwaitConfirmation
}

func (s *Session) handleConfirmation(evt protocol.ConfirmationEvent) (protocol.State, bool) {
	if evt.Code-s.cfg.ClientKey != s.usernameHash {
		s.logger.Warn("connection #%d login failed", s.conn.ID())
		s.send(protocol.MsgLoginFailed)
		return 0, true
	}

	s.logger.Info("connection #%d authorized", s.conn.ID())
	s.send(protocol.MsgOK)
	return s.searchUpdate()
}

func (s *Session) handlePosition(evt protocol.PositionEvent) (protocol.State, bool) {
	s.robot.MoveTo(evt.X, evt.Y)
	return s.searchUpdate()
}

func (s *Session) handlePickup(evt protocol.PickupEvent) (protocol.State, bool) {
	s.robot.MarkSearched()

	if evt.Payload != "" {
		s.logger.Info("connection #%d picked up message, logging out", s.conn.ID())
		s.send(protocol.MsgLogout)
		return 0, true
	}

	return s.searchUpdate()
}

// searchUpdate runs the navigator and sends whatever it decides, mapping
// the chosen command to the state that should read the client's next reply.
func (s *Session) searchUpdate() (protocol.State, bool) {
	cmd := protocol.Navigate(s.robot)

	switch cmd {
	case protocol.MsgPickup:
		s.send(protocol.MsgPickup)
		return protocol.StateAwaitPickup, false
	case protocol.MsgMove, protocol.MsgTurnLeft, protocol.MsgTurnRight:
		s.send(cmd)
		return protocol.StateAwaitPosition, false
	default: // protocol.MsgMissionComplete: every cell searched, safety terminal.
		return 0, true
	}
}

func (s *Session) send(msg protocol.ServerMessage) {
	if err := s.encoder.WriteMessage(s.conn, msg); err != nil {
		s.logger.Error("connection #%d write failed: %v", s.conn.ID(), err)
		s.failed = true
	}
}

func (s *Session) sendConfirmation(code uint16) {
	if err := s.encoder.WriteConfirmation(s.conn, code); err != nil {
		s.logger.Error("connection #%d write failed: %v", s.conn.ID(), err)
		s.failed = true
	}
}

// usernameHash sums each byte's value times 1000, truncated to 16 bits. The
// uint32 accumulator avoids relying on wraparound mid-sum; only the final
// truncation to uint16 performs the mod 2^16.
func usernameHash(username string) uint16 {
	var sum uint32
	for i := 0; i < len(username); i++ {
		sum += uint32(username[i]) * 1000
	}
	return uint16(sum)
}
