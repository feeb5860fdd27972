package board

// DrawHalfMoveLimit is the half-move clock value at which the inactivity draw
// applies.
const DrawHalfMoveLimit = 50

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	ksq := p.KingSquare(p.sideToMove)
	return ksq != NoSquare && p.IsSquareAttacked(ksq, p.sideToMove.Other())
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsFiftyMoveDraw reports the inactivity draw.
func (p *Position) IsFiftyMoveDraw() bool {
	return p.halfMove >= DrawHalfMoveLimit
}

// RepetitionCount returns how many earlier positions in the history equal the
// current one. Only positions with the same side to move and no irreversible
// move in between are compared.
func (p *Position) RepetitionCount() int {
	n := len(p.history)
	count := 0
	for i := 2; i <= n && i <= p.halfMove; i += 2 {
		if p.history[n-i].Hash == p.hash {
			count++
		}
	}
	return count
}

// IsThreefoldRepetition reports whether the current position has occurred
// three times.
func (p *Position) IsThreefoldRepetition() bool {
	return p.RepetitionCount() >= 2
}

// IsDraw returns true on stalemate, the inactivity draw, threefold
// repetition or insufficient material.
func (p *Position) IsDraw() bool {
	return p.IsFiftyMoveDraw() ||
		p.IsThreefoldRepetition() ||
		p.IsInsufficientMaterial() ||
		p.IsStalemate()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	o := &p.occ
	if o.ByKind[White][Pawn]|o.ByKind[Black][Pawn] != 0 ||
		o.ByKind[White][Rook]|o.ByKind[Black][Rook] != 0 ||
		o.ByKind[White][Queen]|o.ByKind[Black][Queen] != 0 {
		return false
	}

	wMinors := o.ByKind[White][Knight].PopCount() + o.ByKind[White][Bishop].PopCount()
	bMinors := o.ByKind[Black][Knight].PopCount() + o.ByKind[Black][Bishop].PopCount()

	// K vs K, K+minor vs K
	if wMinors+bMinors <= 1 {
		return true
	}

	// Bishops only, all on one square color.
	if o.ByKind[White][Knight]|o.ByKind[Black][Knight] == 0 {
		bishops := o.ByKind[White][Bishop] | o.ByKind[Black][Bishop]
		return bishops&DarkSquares == 0 || bishops&^DarkSquares == 0
	}

	return false
}
