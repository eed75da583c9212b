package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadFrameStripsTerminator(t *testing.T) {
	r := bytes.NewReader([]byte("Frantisek\a\b"))
	frame, err := ReadFrame(r, 20)
	require.NoError(t, err)
	require.Equal(t, "Frantisek", string(frame))
}

func TestReadFrameKeepsLoneEscapeByte(t *testing.T) {
	r := bytes.NewReader([]byte("a\ab\a\b"))
	frame, err := ReadFrame(r, 20)
	require.NoError(t, err)
	require.Equal(t, "a\ab", string(frame))
}

func TestReadFrameTooLong(t *testing.T) {
	r := bytes.NewReader([]byte("123456789012345678901234567890"))
	_, err := ReadFrame(r, 12)
	require.ErrorIs(t, err, ErrFrameTooLong)
}

func TestReadFramePropagatesIOError(t *testing.T) {
	r := &failingReader{err: io.ErrUnexpectedEOF}
	_, err := ReadFrame(r, 20)
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

type failingReader struct{ err error }

func (f *failingReader) Read(p []byte) (int, error) { return 0, f.err }
