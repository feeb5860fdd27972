package game

import (
	"strconv"
	"strings"

	"github.com/C04L/chessgame/internal/board"
)

// Snapshot is everything a renderer needs to draw the game, copied out so it
// can be read without holding the game.
type Snapshot struct {
	Board      [64]board.Piece
	Material   [2]int
	LegalMoves [2]int // Number of legal moves for each side
	SideToMove board.Color
	Status     Status
	LastMove   board.Move
	LastSAN    string
	MoveNumber int
	FEN        string
}

// Snapshot captures the current state of the game.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Material:   [2]int{g.pos.Material(board.White), g.pos.Material(board.Black)},
		SideToMove: g.pos.SideToMove(),
		Status:     statusOf(g.pos),
		LastMove:   g.pos.LastMove(),
		MoveNumber: g.pos.FullMoveNumber(),
		FEN:        g.pos.FEN(),
	}
	for sq := board.A1; sq <= board.H8; sq++ {
		s.Board[sq] = g.pos.PieceAt(sq)
	}
	if n := len(g.san); n > 0 {
		s.LastSAN = g.san[n-1]
	}

	stm := g.pos.SideToMove()
	s.LegalMoves[stm] = g.pos.LegalMoves().Len()
	// The side not to move has no moves while the side to move is in check:
	// a null move would hand it the king.
	if !g.pos.InCheck() {
		undo := g.pos.MakeNullMove()
		s.LegalMoves[stm.Other()] = g.pos.LegalMoves().Len()
		g.pos.UnmakeNullMove(undo)
	}

	return s
}

// Record is the history of a game in both notations.
type Record struct {
	StartFEN string
	UCI      []string
	SAN      []string
	Result   string
	Reason   Reason
}

// Record returns the moves played so far and the result.
func (g *Game) Record() Record {
	g.mu.Lock()
	defer g.mu.Unlock()

	hist := g.pos.History()
	r := Record{
		StartFEN: g.startFEN,
		UCI:      make([]string, len(hist)),
		SAN:      append([]string(nil), g.san...),
	}
	for i, e := range hist {
		r.UCI[i] = e.Move.String()
	}
	st := statusOf(g.pos)
	r.Result, r.Reason = st.Result(), st.Reason
	return r
}

// PGN renders the record as PGN movetext, with a FEN header when the game
// did not start from the standard position.
func (r Record) PGN() string {
	var sb strings.Builder
	if r.StartFEN != board.StartFEN {
		sb.WriteString("[SetUp \"1\"]\n[FEN \"" + r.StartFEN + "\"]\n\n")
	}

	moveNo, black := 1, false
	if start, err := board.ParseFEN(r.StartFEN); err == nil {
		moveNo, black = start.FullMoveNumber(), start.SideToMove() == board.Black
	}

	for i, san := range r.SAN {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case !black:
			sb.WriteString(strconv.Itoa(moveNo) + ". ")
		case i == 0:
			sb.WriteString(strconv.Itoa(moveNo) + "... ")
		}
		sb.WriteString(san)
		if black {
			moveNo++
		}
		black = !black
	}

	if len(r.SAN) > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteString(r.Result)
	return sb.String()
}
