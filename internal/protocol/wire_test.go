package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncoderWriteMessage(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder()

	require.NoError(t, enc.WriteMessage(&buf, MsgMove))
	require.Equal(t, "102 MOVE\a\b", buf.String())
}

func TestEncoderWriteConfirmation(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder()

	require.NoError(t, enc.WriteConfirmation(&buf, 8892))
	require.Equal(t, "8892\a\b", buf.String())
}

func TestEncoderLiterals(t *testing.T) {
	cases := map[ServerMessage]string{
		MsgMove:        "102 MOVE",
		MsgTurnLeft:    "103 TURN LEFT",
		MsgTurnRight:   "104 TURN RIGHT",
		MsgPickup:      "105 GET MESSAGE",
		MsgLogout:      "106 LOGOUT",
		MsgOK:          "200 OK",
		MsgLoginFailed: "300 LOGIN FAILED",
		MsgSyntaxError: "301 SYNTAX ERROR",
		MsgLogicError:  "302 LOGIC ERROR",
	}

	var buf bytes.Buffer
	enc := NewEncoder()
	for msg, literal := range cases {
		buf.Reset()
		require.NoError(t, enc.WriteMessage(&buf, msg))
		require.Equal(t, literal+"\a\b", buf.String())
	}
}
