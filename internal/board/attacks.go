package board

// Attack tables, all derived from mailbox offsets so they agree with the
// generator's notion of geometry.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]

	// Every square a rook (bishop) on sq sees on an empty board.
	rookLines   [64]Bitboard
	bishopLines [64]Bitboard

	// Squares strictly between two aligned squares.
	betweenBB [64][64]Bitboard
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		knightAttacks[sq] = stepTargets(sq, knightJumps[:])
		kingAttacks[sq] = stepTargets(sq, kingSteps[:])
		pawnAttacks[White][sq] = stepTargets(sq, []int{north + east, north + west})
		pawnAttacks[Black][sq] = stepTargets(sq, []int{south + east, south + west})

		for _, d := range rookDirs {
			rookLines[sq] |= castRay(sq, d)
		}
		for _, d := range bishopDirs {
			bishopLines[sq] |= castRay(sq, d)
		}
	}
}

// stepTargets returns the on-board squares one offset away from sq.
func stepTargets(sq Square, offsets []int) Bitboard {
	var bb Bitboard
	from := toMailbox[sq]
	for _, d := range offsets {
		if to := fromMailbox[from+d]; to != NoSquare {
			bb |= SquareBB(to)
		}
	}
	return bb
}

// castRay walks from sq in direction d until the sentinel border, filling
// betweenBB for every pair it passes.
func castRay(sq Square, d int) Bitboard {
	var ray Bitboard
	for idx := toMailbox[sq] + d; fromMailbox[idx] != NoSquare; idx += d {
		to := fromMailbox[idx]
		betweenBB[sq][to] = ray
		ray |= SquareBB(to)
	}
	return ray
}

// KnightAttacks returns the knight attack set for a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack set for a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// Between returns the squares strictly between two squares, or empty if
// they do not share a rank, file or diagonal.
func Between(sq1, sq2 Square) Bitboard {
	return betweenBB[sq1][sq2]
}

// Attackers returns every piece of color by that attacks sq.
func (p *Position) Attackers(sq Square, by Color) Bitboard {
	occ := &p.occ
	attackers := (pawnAttacks[by.Other()][sq] & occ.ByKind[by][Pawn]) |
		(knightAttacks[sq] & occ.ByKind[by][Knight]) |
		(kingAttacks[sq] & occ.ByKind[by][King])

	sliders := (rookLines[sq] & (occ.ByKind[by][Rook] | occ.ByKind[by][Queen])) |
		(bishopLines[sq] & (occ.ByKind[by][Bishop] | occ.ByKind[by][Queen]))
	for sliders != 0 {
		from := sliders.PopLSB()
		if betweenBB[sq][from]&occ.All == 0 {
			attackers |= SquareBB(from)
		}
	}
	return attackers
}

// IsSquareAttacked reports whether any piece of color by attacks sq. It reads
// only the occupancy index and never generates moves.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	occ := &p.occ
	if pawnAttacks[by.Other()][sq]&occ.ByKind[by][Pawn] != 0 ||
		knightAttacks[sq]&occ.ByKind[by][Knight] != 0 ||
		kingAttacks[sq]&occ.ByKind[by][King] != 0 {
		return true
	}

	sliders := (rookLines[sq] & (occ.ByKind[by][Rook] | occ.ByKind[by][Queen])) |
		(bishopLines[sq] & (occ.ByKind[by][Bishop] | occ.ByKind[by][Queen]))
	for sliders != 0 {
		if betweenBB[sq][sliders.PopLSB()]&occ.All == 0 {
			return true
		}
	}
	return false
}
