package board

import "fmt"

// IsLegal applies m, asks whether the mover's king is attacked, and reverts.
// m must be pseudo-legal for the side to move.
func (p *Position) IsLegal(m Move) bool {
	us := p.sideToMove
	p.Apply(m)
	ksq := p.KingSquare(us)
	ok := ksq == NoSquare || !p.IsSquareAttacked(ksq, us.Other())
	p.Revert()
	return ok
}

// filterLegal drops illegal moves from ml[start:] in place, keeping order.
func (p *Position) filterLegal(ml *MoveList, start int) {
	n := start
	for i := start; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			ml.Set(n, m)
			n++
		}
	}
	ml.Truncate(n)
}

// GenerateLegal appends every legal move, captures first.
func (p *Position) GenerateLegal(ml *MoveList) {
	start := ml.Len()
	p.GeneratePseudoLegal(ml)
	p.filterLegal(ml, start)
}

// GenerateLegalCaptures appends the legal captures.
func (p *Position) GenerateLegalCaptures(ml *MoveList) {
	start := ml.Len()
	p.GenerateCaptures(ml)
	p.filterLegal(ml, start)
}

// GenerateLegalQuiets appends the legal non-captures.
func (p *Position) GenerateLegalQuiets(ml *MoveList) {
	start := ml.Len()
	p.GenerateQuiets(ml)
	p.filterLegal(ml, start)
}

// LegalMoves returns a fresh list of every legal move.
func (p *Position) LegalMoves() *MoveList {
	ml := NewMoveList()
	p.GenerateLegal(ml)
	return ml
}

// LegalCaptures returns a fresh list of the legal captures.
func (p *Position) LegalCaptures() *MoveList {
	ml := NewMoveList()
	p.GenerateLegalCaptures(ml)
	return ml
}

// LegalQuiets returns a fresh list of the legal non-captures.
func (p *Position) LegalQuiets() *MoveList {
	ml := NewMoveList()
	p.GenerateLegalQuiets(ml)
	return ml
}

// HasLegalMoves reports whether the side to move has at least one legal move.
func (p *Position) HasLegalMoves() bool {
	var ml MoveList
	p.GeneratePseudoLegal(&ml)
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// FindMove resolves a square pair to a legal move. promo selects the
// promotion kind and is ignored for non-promoting moves. It returns NoMove
// when nothing matches.
func (p *Position) FindMove(from, to Square, promo PieceType) Move {
	ml := p.LegalMoves()
	for _, m := range ml.Slice() {
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() && m.Promotion() != promo {
			continue
		}
		return m
	}
	return NoMove
}

// ParseMove resolves UCI move text (e.g. "e2e4", "e7e8q") against the legal
// moves of the position.
func (p *Position) ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
	}
	m := p.FindMove(from, to, promo)
	if m == NoMove || (promo != NoPieceType && !m.IsPromotion()) {
		return NoMove, fmt.Errorf("illegal move %s in %s", s, p.FEN())
	}
	return m, nil
}
