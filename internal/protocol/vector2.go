// Package protocol implements the wire format of the robot navigation
// protocol: framing, grammar classification, encoding, and the grid
// navigation model the session drives against it.
package protocol

// Vector2 is an integer pair used both for absolute grid positions (any
// integer) and for unit heading vectors (exactly one axis ±1, the other 0).
// It is a plain value type: equality and hashing fall out of Go's struct
// comparison, so it can be used directly as a map key for the searched set.
type Vector2 struct {
	X, Y int
}

// Add returns the component-wise sum of v and o.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Distance returns the taxicab (Hamming) distance between v and o.
func (v Vector2) Distance(o Vector2) int {
	return abs(v.X-o.X) + abs(v.Y-o.Y)
}

// RotateLeft returns v rotated -90 degrees: (1,0)->(0,1)->(-1,0)->(0,-1)->(1,0).
// It reads only its receiver and mutates nothing.
func (v Vector2) RotateLeft() Vector2 {
	if v.Y == 0 {
		return Vector2{X: 0, Y: v.X}
	}
	return Vector2{X: -v.Y, Y: 0}
}

// RotateRight returns v rotated +90 degrees, the inverse of RotateLeft.
func (v Vector2) RotateRight() Vector2 {
	if v.Y == 0 {
		return Vector2{X: 0, Y: -v.X}
	}
	return Vector2{X: v.Y, Y: 0}
}

// IsUnit reports whether v is a valid heading: exactly one axis is ±1.
func (v Vector2) IsUnit() bool {
	return abs(v.X)+abs(v.Y) == 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
