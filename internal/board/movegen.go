package board

// Pseudo-legal generation over the mailbox. Captures and non-captures are
// produced by separate passes so callers can order captures first without
// sorting. Every generator appends to the caller's list.

// GenerateCaptures appends every pseudo-legal capture for the side to move,
// promotion captures and en-passant included.
func (p *Position) GenerateCaptures(ml *MoveList) {
	p.generate(ml, true)
}

// GenerateQuiets appends every pseudo-legal non-capture: pushes, quiet
// promotions, piece moves to empty squares and castling.
func (p *Position) GenerateQuiets(ml *MoveList) {
	p.generate(ml, false)
	p.generateCastling(ml)
}

// GeneratePseudoLegal appends captures followed by non-captures.
func (p *Position) GeneratePseudoLegal(ml *MoveList) {
	p.GenerateCaptures(ml)
	p.GenerateQuiets(ml)
}

func (p *Position) generate(ml *MoveList, captures bool) {
	us := p.sideToMove
	for i := 0; i < p.numSlots; i++ {
		rec := &p.pieces[i]
		if !rec.Active || rec.Piece.Color() != us {
			continue
		}
		s := Slot(i)
		switch rec.Piece.Type() {
		case Pawn:
			if captures {
				p.pawnCaptures(ml, s, rec.Square, us)
			} else {
				p.pawnPushes(ml, s, rec.Square, us)
			}
		case Knight:
			p.stepMoves(ml, s, rec.Square, knightJumps[:], captures)
		case Bishop:
			p.slideMoves(ml, s, rec.Square, bishopDirs[:], captures)
		case Rook:
			p.slideMoves(ml, s, rec.Square, rookDirs[:], captures)
		case Queen:
			p.slideMoves(ml, s, rec.Square, queenDirs[:], captures)
		case King:
			p.stepMoves(ml, s, rec.Square, kingSteps[:], captures)
		}
	}
}

// stepMoves handles knight and king: one hop per offset, discarded when it
// lands on the sentinel border.
func (p *Position) stepMoves(ml *MoveList, s Slot, from Square, offsets []int, captures bool) {
	base := toMailbox[from]
	for _, d := range offsets {
		idx := base + d
		switch c := p.mailbox[idx]; {
		case c == cellOff:
		case c == cellEmpty:
			if !captures {
				ml.Add(NewMove(from, fromMailbox[idx], FlagQuiet, s))
			}
		default:
			if captures && p.pieces[c].Piece.Color() != p.sideToMove {
				ml.Add(NewMove(from, fromMailbox[idx], FlagCapture, s))
			}
		}
	}
}

// slideMoves ray-casts until the border, an own piece (excluded) or an
// enemy piece (included as a capture).
func (p *Position) slideMoves(ml *MoveList, s Slot, from Square, dirs []int, captures bool) {
	base := toMailbox[from]
	for _, d := range dirs {
		for idx := base + d; ; idx += d {
			c := p.mailbox[idx]
			if c == cellOff {
				break
			}
			if c == cellEmpty {
				if !captures {
					ml.Add(NewMove(from, fromMailbox[idx], FlagQuiet, s))
				}
				continue
			}
			if captures && p.pieces[c].Piece.Color() != p.sideToMove {
				ml.Add(NewMove(from, fromMailbox[idx], FlagCapture, s))
			}
			break
		}
	}
}

func (p *Position) pawnPushes(ml *MoveList, s Slot, from Square, us Color) {
	step := pawnPushStep[us]
	idx := toMailbox[from] + step
	if p.mailbox[idx] != cellEmpty {
		return
	}
	to := fromMailbox[idx]
	if to.RelativeRank(us) == 7 {
		addPromotions(ml, from, to, false, s)
		return
	}
	ml.Add(NewMove(from, to, FlagQuiet, s))

	if from.RelativeRank(us) == 1 && p.mailbox[idx+step] == cellEmpty {
		ml.Add(NewMove(from, fromMailbox[idx+step], FlagDoublePush, s))
	}
}

func (p *Position) pawnCaptures(ml *MoveList, s Slot, from Square, us Color) {
	step := pawnPushStep[us]
	for _, side := range [2]int{east, west} {
		idx := toMailbox[from] + step + side
		c := p.mailbox[idx]
		to := fromMailbox[idx]
		switch {
		case c == cellOff:
		case c == cellEmpty:
			if to == p.enPassant && p.PieceAt(fromMailbox[idx-step]) == NewPiece(Pawn, us.Other()) {
				ml.Add(NewMove(from, to, FlagEnPassant, s))
			}
		case p.pieces[c].Piece.Color() != us:
			if to.RelativeRank(us) == 7 {
				addPromotions(ml, from, to, true, s)
			} else {
				ml.Add(NewMove(from, to, FlagCapture, s))
			}
		}
	}
}

func addPromotions(ml *MoveList, from, to Square, capture bool, s Slot) {
	ml.Add(newPromotion(from, to, Queen, capture, s))
	ml.Add(newPromotion(from, to, Rook, capture, s))
	ml.Add(newPromotion(from, to, Bishop, capture, s))
	ml.Add(newPromotion(from, to, Knight, capture, s))
}

// generateCastling emits castles that have the right recorded, the king and
// rook on their home squares, empty squares between them, and no attacked
// square on the king's path including start and destination.
func (p *Position) generateCastling(ml *MoveList) {
	us := p.sideToMove
	if p.castling&(castleRight(us, true)|castleRight(us, false)) == 0 {
		return
	}
	them := us.Other()
	back := 0
	if us == Black {
		back = 56
	}
	king := Square(back) + E1
	ks := p.slotAt(king)
	if ks == NoSlot || p.pieces[ks].Piece != NewPiece(King, us) {
		return
	}
	if p.IsSquareAttacked(king, them) {
		return
	}
	rook := NewPiece(Rook, us)

	if p.castling.CanCastle(us, true) &&
		p.PieceAt(Square(back)+H1) == rook &&
		p.IsEmpty(Square(back)+F1) && p.IsEmpty(Square(back)+G1) &&
		!p.IsSquareAttacked(Square(back)+F1, them) && !p.IsSquareAttacked(Square(back)+G1, them) {
		ml.Add(NewMove(king, Square(back)+G1, FlagKingCastle, ks))
	}

	if p.castling.CanCastle(us, false) &&
		p.PieceAt(Square(back)+A1) == rook &&
		p.IsEmpty(Square(back)+B1) && p.IsEmpty(Square(back)+C1) && p.IsEmpty(Square(back)+D1) &&
		!p.IsSquareAttacked(Square(back)+D1, them) && !p.IsSquareAttacked(Square(back)+C1, them) {
		ml.Add(NewMove(king, Square(back)+C1, FlagQueenCastle, ks))
	}
}

// castlingRookSquares returns the rook's start and end square for a castle
// whose king lands on kingTo.
func castlingRookSquares(kingTo Square) (Square, Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default:
		return A8, D8
	}
}
