package game

import "github.com/C04L/chessgame/internal/board"

// Outcome is the result of a game so far.
type Outcome int

const (
	Ongoing Outcome = iota
	WhiteWins
	BlackWins
	Drawn
)

// Reason explains a finished game.
type Reason int

const (
	NoReason Reason = iota
	Checkmate
	Stalemate
	FiftyMoveRule
	ThreefoldRepetition
	InsufficientMaterial
)

func (r Reason) String() string {
	switch r {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case FiftyMoveRule:
		return "fifty-move rule"
	case ThreefoldRepetition:
		return "threefold repetition"
	case InsufficientMaterial:
		return "insufficient material"
	}
	return ""
}

// Status is derived from the position after every move; it is never stored.
type Status struct {
	Outcome    Outcome
	Reason     Reason
	InCheck    bool
	SideToMove board.Color
}

// Over reports whether the game has ended.
func (s Status) Over() bool {
	return s.Outcome != Ongoing
}

// Result returns the PGN result token.
func (s Status) Result() string {
	switch s.Outcome {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Drawn:
		return "1/2-1/2"
	}
	return "*"
}

func (s Status) String() string {
	switch s.Outcome {
	case WhiteWins:
		return "White wins by " + s.Reason.String()
	case BlackWins:
		return "Black wins by " + s.Reason.String()
	case Drawn:
		return "Draw by " + s.Reason.String()
	}
	if s.InCheck {
		return s.SideToMove.String() + " to move, in check"
	}
	return s.SideToMove.String() + " to move"
}

// statusOf computes the status of pos.
func statusOf(pos *board.Position) Status {
	st := Status{SideToMove: pos.SideToMove(), InCheck: pos.InCheck()}

	switch {
	case !pos.HasLegalMoves():
		if st.InCheck {
			st.Reason = Checkmate
			if st.SideToMove == board.White {
				st.Outcome = BlackWins
			} else {
				st.Outcome = WhiteWins
			}
		} else {
			st.Outcome, st.Reason = Drawn, Stalemate
		}
	case pos.IsThreefoldRepetition():
		st.Outcome, st.Reason = Drawn, ThreefoldRepetition
	case pos.IsFiftyMoveDraw():
		st.Outcome, st.Reason = Drawn, FiftyMoveRule
	case pos.IsInsufficientMaterial():
		st.Outcome, st.Reason = Drawn, InsufficientMaterial
	}
	return st
}
