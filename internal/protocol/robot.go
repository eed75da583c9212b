package protocol

// TargetMin and TargetMax bound the target area on both axes: the 25 cells
// the robot must search, {(x,y) : |x|<=2, |y|<=2}.
const (
	TargetMin = -2
	TargetMax = 2
)

// IsInsideTarget reports whether v lies within the target area.
func IsInsideTarget(v Vector2) bool {
	return abs(v.X) <= TargetMax && abs(v.Y) <= TargetMax
}

// Robot tracks one session's inferred position, heading, charging flag and
// searched-cell set. Nothing here does any I/O; the session state machine
// feeds it parsed events and the Navigator reads it back.
type Robot struct {
	position *Vector2
	heading  *Vector2
	charging bool
	searched map[Vector2]struct{}
}

// NewRobot returns a Robot with no known position or heading.
func NewRobot() *Robot {
	return &Robot{searched: make(map[Vector2]struct{})}
}

// KnowsPosition reports whether the first OK x y has been observed.
func (r *Robot) KnowsPosition() bool { return r.position != nil }

// KnowsHeading reports whether a heading has been inferred and not since
// invalidated.
func (r *Robot) KnowsHeading() bool { return r.heading != nil }

// Position returns the last known position. Callers must check
// KnowsPosition first; calling this before any position is known panics.
func (r *Robot) Position() Vector2 { return *r.position }

// Heading returns the last known heading. Callers must check KnowsHeading
// first.
func (r *Robot) Heading() Vector2 { return *r.heading }

// IsCharging reports whether the robot is in the charging sub-state.
func (r *Robot) IsCharging() bool { return r.charging }

// StartCharging marks the robot as charging.
func (r *Robot) StartCharging() { r.charging = true }

// StopCharging clears the charging flag.
func (r *Robot) StopCharging() { r.charging = false }

// MoveTo records a reported position, inferring (or invalidating) heading.
//
//   - Unknown position: the coordinates become the position; heading stays
//     unknown until a second, distinct report arrives.
//   - Identical coordinates: a "stationary MOVE" following a turn-in-place
//     acknowledgement; heading is left untouched.
//   - A delta that is a valid unit heading (exactly one axis ±1, the other
//     0): a legal step, heading is set to that delta.
//   - Any other delta, including diagonal moves and jumps of more than one
//     cell: inconsistent with a unit move, heading is invalidated (set back
//     to unknown).
//
// Position is updated in every case.
func (r *Robot) MoveTo(x, y int) {
	next := Vector2{X: x, Y: y}

	if r.position == nil {
		r.position = &next
		return
	}

	if *r.position == next {
		return
	}

	delta := Vector2{X: next.X - r.position.X, Y: next.Y - r.position.Y}

	if delta.IsUnit() {
		r.heading = &delta
	} else {
		r.heading = nil
	}

	r.position = &next
}

// TurnLeft rotates the known heading -90 degrees. No-op if heading is
// unknown.
func (r *Robot) TurnLeft() {
	if r.heading == nil {
		return
	}
	next := r.heading.RotateLeft()
	r.heading = &next
}

// TurnRight rotates the known heading +90 degrees. No-op if heading is
// unknown.
func (r *Robot) TurnRight() {
	if r.heading == nil {
		return
	}
	next := r.heading.RotateRight()
	r.heading = &next
}

// MarkSearched adds the current position to the searched set, if the
// position is known and inside the target area.
func (r *Robot) MarkSearched() {
	if r.position != nil && IsInsideTarget(*r.position) {
		r.searched[*r.position] = struct{}{}
	}
}

// IsSearched reports whether v has already been probed for a message.
func (r *Robot) IsSearched(v Vector2) bool {
	_, ok := r.searched[v]
	return ok
}

// StandsOnUnsearched reports whether the robot is at a known position,
// inside the target area, on a cell not yet searched.
func (r *Robot) StandsOnUnsearched() bool {
	return r.position != nil && IsInsideTarget(*r.position) && !r.IsSearched(*r.position)
}

// AllSearched reports whether every one of the 25 target cells has been
// searched, the navigator's safety-terminal condition.
func (r *Robot) AllSearched() bool {
	for x := TargetMin; x <= TargetMax; x++ {
		for y := TargetMin; y <= TargetMax; y++ {
			if !r.IsSearched(Vector2{X: x, Y: y}) {
				return false
			}
		}
	}
	return true
}
