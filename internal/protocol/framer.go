package protocol

import (
	"bytes"
	"errors"
	"io"
)

// ErrFrameTooLong is returned by ReadFrame when maxLen bytes have arrived
// without the terminator. The session maps this to a Syntax error.
var ErrFrameTooLong = errors.New("protocol: frame exceeded maximum length without terminator")

// ReadFrame reads one byte at a time from r until the two-byte terminator
// \a\b completes the frame or maxLen bytes (terminator included) have
// accumulated, whichever happens first. The returned slice has the
// terminator stripped.
//
// A lone \a without a following \b is not a terminator and is simply kept
// in the buffer. Any read error other than hitting maxLen (including EOF)
// propagates unchanged: it's an I/O error, not a syntax error, and the
// caller must not attempt to frame it as one.
func ReadFrame(r io.Reader, maxLen int) ([]byte, error) {
	buf := make([]byte, 0, maxLen)
	var one [1]byte

	for {
		n, err := r.Read(one[:])
		if n > 0 {
			buf = append(buf, one[0])
			if bytes.HasSuffix(buf, terminator) {
				return buf[:len(buf)-len(terminator)], nil
			}
			if len(buf) >= maxLen {
				return nil, ErrFrameTooLong
			}
		}
		if err != nil {
			return nil, err
		}
	}
}
