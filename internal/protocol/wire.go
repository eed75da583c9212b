package protocol

import (
	"io"
	"strconv"
)

// terminator is the two-byte sequence delimiting every protocol message in
// both directions. It never occurs inside a payload and is never escaped.
var terminator = []byte{0x07, 0x08}

// ServerMessage enumerates the literal responses the server can send. The
// confirmation code is the one variable payload and is written via
// Encoder.WriteConfirmation rather than through this table.
type ServerMessage int

const (
	MsgMove ServerMessage = iota
	MsgTurnLeft
	MsgTurnRight
	MsgPickup
	MsgLogout
	MsgOK
	MsgLoginFailed
	MsgSyntaxError
	MsgLogicError

	// MsgMissionComplete is never written to the wire. It signals the
	// navigator's safety-terminal case (every target cell searched without
	// a pickup ever returning a payload) so the session can close quietly,
	// the same way it would on an I/O timeout.
	MsgMissionComplete
)

func (m ServerMessage) literal() string {
	switch m {
	case MsgMove:
		return "102 MOVE"
	case MsgTurnLeft:
		return "103 TURN LEFT"
	case MsgTurnRight:
		return "104 TURN RIGHT"
	case MsgPickup:
		return "105 GET MESSAGE"
	case MsgLogout:
		return "106 LOGOUT"
	case MsgOK:
		return "200 OK"
	case MsgLoginFailed:
		return "300 LOGIN FAILED"
	case MsgSyntaxError:
		return "301 SYNTAX ERROR"
	case MsgLogicError:
		return "302 LOGIC ERROR"
	default:
		return ""
	}
}

// Encoder serializes server responses as "<payload>\a\b".
type Encoder struct{}

// NewEncoder returns an Encoder. It carries no state of its own.
func NewEncoder() *Encoder { return &Encoder{} }

// WriteMessage writes msg's fixed wire literal. It must not be called with
// MsgMissionComplete, which has no wire representation.
func (e *Encoder) WriteMessage(w io.Writer, msg ServerMessage) error {
	return e.writeFrame(w, msg.literal())
}

// WriteConfirmation writes the server's accept code: the decimal ASCII of a
// 16-bit unsigned integer, 1-5 digits, no leading zeros except for 0 itself.
func (e *Encoder) WriteConfirmation(w io.Writer, code uint16) error {
	return e.writeFrame(w, strconv.Itoa(int(code)))
}

func (e *Encoder) writeFrame(w io.Writer, payload string) error {
	buf := make([]byte, 0, len(payload)+len(terminator))
	buf = append(buf, payload...)
	buf = append(buf, terminator...)
	_, err := w.Write(buf)
	return err
}
