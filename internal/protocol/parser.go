package protocol

import (
	"regexp"
	"strconv"
)

// State identifies which grammar and classification rules govern the next
// frame read from the client. It mirrors the session's own state names but
// lives here because it's what the parser needs to pick a grammar; the
// session imports this type rather than duplicating it.
type State int

const (
	StateAwaitUsername State = iota
	StateAwaitConfirmation
	StateAwaitPosition
	StateAwaitPickup
	StateCharging
)

// MaxFrameLen returns the terminator-inclusive maximum frame length legal
// for the given state, used by the Framer before any grammar check runs.
func MaxFrameLen(s State) int {
	switch s {
	case StateAwaitUsername:
		return 20
	case StateAwaitConfirmation:
		return 12
	case StateAwaitPosition:
		return 12
	case StateAwaitPickup:
		return 100
	case StateCharging:
		return 12
	default:
		return 12
	}
}

var (
	usernameRegex      = regexp.MustCompile(`^[\x20-\x7e]{0,18}$`)
	confirmationRegex  = regexp.MustCompile(`^[0-9]{1,5}$`)
	okPositionRegex    = regexp.MustCompile(`^OK (-?[0-9]+) (-?[0-9]+)$`)
)

// Event is the result of classifying one framed, terminator-stripped
// payload against the grammar for the state it was read in.
type Event interface{}

// UsernameEvent carries a raw username, not yet hashed.
type UsernameEvent struct{ Username string }

// ConfirmationEvent carries a parsed 16-bit confirmation code.
type ConfirmationEvent struct{ Code uint16 }

// PositionEvent carries a parsed "OK x y" position report.
type PositionEvent struct{ X, Y int }

// RechargingEvent signals the client requested a charging suspension.
type RechargingEvent struct{}

// FullPowerEvent signals the client ended a charging suspension.
type FullPowerEvent struct{}

// PickupEvent carries a pickup-state payload, possibly empty.
type PickupEvent struct{ Payload string }

// Classify validates payload against state's grammar and returns a typed
// event, or a ProtocolError (always Syntax or Logic; LoginFailed is raised
// by the session itself after checking a ConfirmationEvent's code).
func Classify(state State, payload string) (Event, *ProtocolError) {
	switch state {
	case StateAwaitUsername:
		return classifyUsername(payload)
	case StateAwaitConfirmation:
		return classifyConfirmation(payload)
	case StateAwaitPosition:
		return classifyPosition(payload)
	case StateAwaitPickup:
		return classifyPickup(payload)
	case StateCharging:
		return classifyCharging(payload)
	default:
		return nil, NewSyntaxError("unknown protocol state")
	}
}

func classifyUsername(payload string) (Event, *ProtocolError) {
	if !usernameRegex.MatchString(payload) {
		return nil, NewSyntaxError("invalid username: " + payload)
	}
	return UsernameEvent{Username: payload}, nil
}

func classifyConfirmation(payload string) (Event, *ProtocolError) {
	if payload == "RECHARGING" {
		return RechargingEvent{}, nil
	}

	if !confirmationRegex.MatchString(payload) {
		return nil, NewSyntaxError("invalid confirmation code: " + payload)
	}

	code, err := strconv.ParseUint(payload, 10, 32)
	if err != nil || code > 65535 {
		return nil, NewSyntaxError("confirmation code out of range: " + payload)
	}

	return ConfirmationEvent{Code: uint16(code)}, nil
}

func classifyPosition(payload string) (Event, *ProtocolError) {
	if payload == "RECHARGING" {
		return RechargingEvent{}, nil
	}

	m := okPositionRegex.FindStringSubmatch(payload)
	if m == nil {
		return nil, NewSyntaxError("invalid position report: " + payload)
	}

	x, errX := strconv.Atoi(m[1])
	y, errY := strconv.Atoi(m[2])
	if errX != nil || errY != nil {
		return nil, NewSyntaxError("invalid position report: " + payload)
	}

	return PositionEvent{X: x, Y: y}, nil
}

func classifyPickup(payload string) (Event, *ProtocolError) {
	if payload == "RECHARGING" {
		return RechargingEvent{}, nil
	}
	return PickupEvent{Payload: payload}, nil
}

func classifyCharging(payload string) (Event, *ProtocolError) {
	if payload == "FULL POWER" {
		return FullPowerEvent{}, nil
	}
	return nil, NewLogicError("expected FULL POWER while charging, got: " + payload)
}
