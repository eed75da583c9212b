package protocol

// Navigate decides the next command for r. It may mutate r's heading (the
// session's own rotation bookkeeping) when it chooses to turn, since a TURN
// command is acknowledged by a stationary MOVE rather than a fresh position
// report.
//
//  1. Position or heading unknown: MOVE, to force a second position report
//     that reveals heading.
//  2. Standing on an unsearched target cell: GET MESSAGE.
//  3. Otherwise: find the nearest unsearched cell by taxicab distance
//     (x-major tie-break) and move toward it, preferring FORWARD, then
//     RIGHT, then LEFT among equally-good next steps.
//
// MsgMissionComplete is returned only as a safety terminal when every
// target cell has already been searched; in normal play a pickup ends the
// session before this can happen.
func Navigate(r *Robot) ServerMessage {
	if !r.KnowsPosition() || !r.KnowsHeading() {
		return MsgMove
	}

	if r.StandsOnUnsearched() {
		return MsgPickup
	}

	target, ok := nearestUnsearched(r)
	if !ok {
		return MsgMissionComplete
	}

	pos := r.Position()
	heading := r.Heading()

	forward := pos.Add(heading)
	left := pos.Add(heading.RotateLeft())
	right := pos.Add(heading.RotateRight())

	dForward := forward.Distance(target)
	dLeft := left.Distance(target)
	dRight := right.Distance(target)

	switch {
	case dForward <= dRight && dForward <= dLeft:
		return MsgMove
	case dRight <= dForward && dRight <= dLeft:
		r.TurnRight()
		return MsgTurnRight
	default:
		r.TurnLeft()
		return MsgTurnLeft
	}
}

// nearestUnsearched finds the nearest unsearched target cell by taxicab
// distance from the robot's current position, breaking ties by x-major
// iteration order.
func nearestUnsearched(r *Robot) (Vector2, bool) {
	pos := r.Position()

	var best Vector2
	bestDist := 0
	found := false

	for x := TargetMin; x <= TargetMax; x++ {
		for y := TargetMin; y <= TargetMax; y++ {
			candidate := Vector2{X: x, Y: y}
			if r.IsSearched(candidate) {
				continue
			}

			dist := pos.Distance(candidate)
			if !found || dist < bestDist {
				best = candidate
				bestDist = dist
				found = true
			}
		}
	}

	return best, found
}
