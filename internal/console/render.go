// Package console plays a game on a text terminal: it draws the board from
// game snapshots and reads moves and commands from a line-oriented input.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/C04L/chessgame/internal/board"
	"github.com/C04L/chessgame/internal/game"
)

const (
	whiteKing   = "♔"
	whiteQueen  = "♕"
	whiteRook   = "♖"
	whiteBishop = "♗"
	whiteKnight = "♘"
	whitePawn   = "♙"
	blackKing   = "♚"
	blackQueen  = "♛"
	blackRook   = "♜"
	blackBishop = "♝"
	blackKnight = "♞"
	blackPawn   = "♟"
)

var chessSymbols = [2][6]string{
	{whitePawn, whiteKnight, whiteBishop, whiteRook, whiteQueen, whiteKing},
	{blackPawn, blackKnight, blackBishop, blackRook, blackQueen, blackKing},
}

// ANSI 256-colour backgrounds.
const (
	ansiLight     = "\x1b[48;5;180m"
	ansiDark      = "\x1b[48;5;137m"
	ansiHighlight = "\x1b[48;5;143m"
	ansiReset     = "\x1b[0m"
)

// RenderOptions controls how the board is drawn.
type RenderOptions struct {
	Flipped bool // Black at the bottom
	Color   bool // ANSI square colours
	Unicode bool // Figurine glyphs instead of letters
}

func symbol(p board.Piece, unicode bool) string {
	if p == board.NoPiece {
		if unicode {
			return " "
		}
		return "."
	}
	if unicode {
		return chessSymbols[p.Color()][p.Type()]
	}
	return p.String()
}

// Render draws the snapshot followed by a status line.
func Render(w io.Writer, s game.Snapshot, o RenderOptions) {
	from, to := board.NoSquare, board.NoSquare
	if s.LastMove != board.NoMove {
		from, to = s.LastMove.From(), s.LastMove.To()
	}

	var sb strings.Builder
	for row := 0; row < 8; row++ {
		rank := 7 - row
		if o.Flipped {
			rank = row
		}
		fmt.Fprintf(&sb, "%d ", rank+1)
		for col := 0; col < 8; col++ {
			file := col
			if o.Flipped {
				file = 7 - col
			}
			sq := board.NewSquare(file, rank)
			cell := symbol(s.Board[sq], o.Unicode)

			if o.Color {
				bg := ansiLight
				switch {
				case sq == from || sq == to:
					bg = ansiHighlight
				case sq.IsDark():
					bg = ansiDark
				}
				sb.WriteString(bg + " " + cell + " " + ansiReset)
			} else {
				sb.WriteString(cell)
				if col < 7 {
					sb.WriteByte(' ')
				}
			}
		}
		sb.WriteByte('\n')
	}

	files := "abcdefgh"
	if o.Flipped {
		files = "hgfedcba"
	}
	sb.WriteString("  ")
	for i, f := range files {
		if o.Color {
			sb.WriteString(" " + string(f) + " ")
		} else {
			sb.WriteRune(f)
			if i < 7 {
				sb.WriteByte(' ')
			}
		}
	}
	sb.WriteByte('\n')

	if s.LastSAN != "" {
		fmt.Fprintf(&sb, "Last move: %s\n", s.LastSAN)
	}
	fmt.Fprintf(&sb, "Material: white %d, black %d | legal moves: white %d, black %d\n",
		s.Material[board.White], s.Material[board.Black],
		s.LegalMoves[board.White], s.LegalMoves[board.Black])
	sb.WriteString(s.Status.String() + "\n")

	io.WriteString(w, sb.String())
}
