package rules

type step struct{ dx, dy int }

var (
	orthogonal = []step{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal   = []step{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allRays    = append(append([]step{}, orthogonal...), diagonal...)

	knightJumps = []step{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
)

// LegalTargets returns the squares a piece of the given kind and side may move to from `from`.
// own and enemy hold the occupied squares of each side; enPassant is the square an
// opponent pawn just skipped over, if any.
func LegalTargets(kind Kind, side Side, from Position, own, enemy PositionSet, enPassant *Position) PositionSet {
	switch kind {
	case Pawn:
		return pawnTargets(side, from, own, enemy, enPassant)
	case Knight:
		return leaperTargets(from, knightJumps, own)
	case Bishop:
		return sliderTargets(from, diagonal, own, enemy)
	case Rook:
		return sliderTargets(from, orthogonal, own, enemy)
	case Queen:
		return sliderTargets(from, allRays, own, enemy)
	case King:
		return leaperTargets(from, allRays, own)
	default:
		return PositionSet{}
	}
}

// leaperTargets covers pieces that jump a fixed offset and are never blocked.
func leaperTargets(from Position, steps []step, own PositionSet) PositionSet {
	targets := make(PositionSet, len(steps))
	for _, s := range steps {
		if !from.IsOffsetValid(s.dx, s.dy) {
			continue
		}
		to := from.shift(s.dx, s.dy)
		if own.Has(to) {
			continue
		}
		targets.Add(to)
	}
	return targets
}

// sliderTargets walks each ray until the edge or the first occupied square.
// An enemy square ends the ray inclusively, an own square exclusively.
func sliderTargets(from Position, rays []step, own, enemy PositionSet) PositionSet {
	targets := PositionSet{}
	for _, r := range rays {
		cur := from
		for cur.IsOffsetValid(r.dx, r.dy) {
			cur = cur.shift(r.dx, r.dy)
			if own.Has(cur) {
				break
			}
			targets.Add(cur)
			if enemy.Has(cur) {
				break
			}
		}
	}
	return targets
}

// pawnTargets: forward pushes only, plus en passant. Pawns never capture diagonally
// onto an occupied square.
func pawnTargets(side Side, from Position, own, enemy PositionSet, enPassant *Position) PositionSet {
	targets := PositionSet{}
	dir := side.forward()
	occupied := func(p Position) bool { return own.Has(p) || enemy.Has(p) }

	if from.IsOffsetValid(0, dir) {
		one := from.shift(0, dir)
		if !occupied(one) {
			targets.Add(one)
			if from.Row() == side.pawnRow() && from.IsOffsetValid(0, 2*dir) {
				if two := from.shift(0, 2*dir); !occupied(two) {
					targets.Add(two)
				}
			}
		}
	}

	if enPassant != nil {
		for _, dx := range []int{-1, 1} {
			if !from.IsOffsetValid(dx, dir) {
				continue
			}
			if diag := from.shift(dx, dir); diag == *enPassant && !occupied(diag) {
				targets.Add(diag)
			}
		}
	}
	return targets
}
