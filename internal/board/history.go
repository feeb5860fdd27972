package board

import "fmt"

// HistoryEntry holds what a move destroys and cannot be recovered by playing
// it backwards.
type HistoryEntry struct {
	Move           Move
	CapturedSlot   Slot
	CapturedSquare Square
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
}

// History returns the undo stack, oldest first. The slice is shared with the
// position and must not be modified.
func (p *Position) History() []HistoryEntry {
	return p.history
}

// LastMove returns the most recently applied move, or NoMove.
func (p *Position) LastMove() Move {
	if len(p.history) == 0 {
		return NoMove
	}
	return p.history[len(p.history)-1].Move
}

// Apply plays a pseudo-legal move for the side to move. It pushes one
// history entry and updates mailbox, arena, occupancy, hash, clocks, rights,
// en-passant target and side to move together.
func (p *Position) Apply(m Move) {
	us := p.sideToMove
	s := m.Slot()
	from, to := m.From(), m.To()

	if DebugInvariants && p.slotAt(from) != s {
		panic(fmt.Sprintf("board: apply %v: slot %d is not on %v", m, s, from))
	}

	p.history = append(p.history, HistoryEntry{
		Move:           m,
		CapturedSlot:   NoSlot,
		CapturedSquare: NoSquare,
		CastlingRights: p.castling,
		EnPassant:      p.enPassant,
		HalfMoveClock:  p.halfMove,
		Hash:           p.hash,
	})
	e := &p.history[len(p.history)-1]

	if m.IsCapture() {
		capSq := to
		if m.IsEnPassant() {
			capSq = fromMailbox[toMailbox[to]-pawnPushStep[us]]
		}
		e.CapturedSlot = p.slotAt(capSq)
		e.CapturedSquare = capSq
		p.lift(e.CapturedSlot)
	}

	pawnMove := p.pieces[s].Piece.Type() == Pawn
	p.shift(s, to)

	if m.IsPromotion() {
		p.retype(s, NewPiece(m.Promotion(), us))
	}
	if m.IsCastling() {
		rookFrom, rookTo := castlingRookSquares(to)
		p.shift(p.slotAt(rookFrom), rookTo)
	}

	p.setCastling(p.castling & castlingMask[from] & castlingMask[to])

	ep := NoSquare
	if m.IsDoublePush() {
		ep = fromMailbox[toMailbox[from]+pawnPushStep[us]]
	}
	p.setEnPassant(ep)

	if pawnMove || m.IsCapture() {
		p.halfMove = 0
	} else {
		p.halfMove++
	}
	if us == Black {
		p.fullMove++
	}
	p.flipSide()

	if DebugInvariants {
		p.assertInvariants("apply " + m.String())
	}
}

// Revert undoes the last Apply. Captured pieces return to their original
// slot; rights, en-passant target, clock and hash come back from the entry.
// It reports false when there is nothing to undo.
func (p *Position) Revert() bool {
	n := len(p.history) - 1
	if n < 0 {
		return false
	}
	e := p.history[n]
	p.history = p.history[:n]

	m := e.Move
	s := m.Slot()
	p.sideToMove = p.sideToMove.Other()
	us := p.sideToMove

	if m.IsCastling() {
		rookFrom, rookTo := castlingRookSquares(m.To())
		p.shift(p.slotAt(rookTo), rookFrom)
	}
	if m.IsPromotion() {
		p.retype(s, NewPiece(Pawn, us))
	}
	p.shift(s, m.From())
	if e.CapturedSlot != NoSlot {
		p.place(e.CapturedSlot, e.CapturedSquare)
	}

	p.castling = e.CastlingRights
	p.enPassant = e.EnPassant
	p.halfMove = e.HalfMoveClock
	if us == Black {
		p.fullMove--
	}
	p.hash = e.Hash

	if DebugInvariants {
		p.assertInvariants("revert " + m.String())
	}
	return true
}

// NullMoveUndo stores the state a null move overwrites.
type NullMoveUndo struct {
	EnPassant Square
	Hash      uint64
}

// MakeNullMove passes the turn without moving. It does not touch the history
// and must be paired with UnmakeNullMove before any other mutation.
func (p *Position) MakeNullMove() NullMoveUndo {
	undo := NullMoveUndo{EnPassant: p.enPassant, Hash: p.hash}
	p.setEnPassant(NoSquare)
	p.flipSide()
	return undo
}

// UnmakeNullMove undoes a null move.
func (p *Position) UnmakeNullMove(undo NullMoveUndo) {
	p.sideToMove = p.sideToMove.Other()
	p.enPassant = undo.EnPassant
	p.hash = undo.Hash
}
