// Package board holds the authoritative chess position: a padded mailbox with a
// persistent piece arena, an occupancy index, incremental Zobrist hashing, move
// generation, legality filtering and the apply/revert history.
package board

import "fmt"

// Square addresses one of the 64 playable squares.
// Little-Endian Rank-File Mapping: A1=0, H1=7, A8=56, H8=63.
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// Mailbox geometry: 10 columns by 12 rows. Column 0 and 9 and the two rows
// above and below the board are sentinels, so a knight jump from any corner
// still lands inside the array.
const (
	mailboxSize = 120
	mailboxA1   = 21
)

// Mailbox step offsets.
const (
	north = 10
	south = -10
	east  = 1
	west  = -1
)

var (
	rookDirs     = [4]int{north, south, east, west}
	bishopDirs   = [4]int{north + east, north + west, south + east, south + west}
	queenDirs    = [8]int{north, south, east, west, north + east, north + west, south + east, south + west}
	knightJumps  = [8]int{-21, -19, -12, -8, 8, 12, 19, 21}
	kingSteps    = queenDirs
	pawnPushStep = [2]int{north, south}

	// Package-level so they are built before any init runs.
	toMailbox, fromMailbox = buildMailbox()
)

func buildMailbox() (to [64]int, from [mailboxSize]Square) {
	for i := range from {
		from[i] = NoSquare
	}
	for sq := A1; sq <= H8; sq++ {
		idx := mailboxA1 + sq.File() + 10*sq.Rank()
		to[sq] = idx
		from[idx] = sq
	}
	return to, from
}

// File returns the file (column) of the square (0-7, where 0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank (row) of the square (0-7, where 0=1, 7=8).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	return NewSquare(file, rank), nil
}

// IsValid returns true if the square is a valid board square (0-63).
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// IsDark reports whether the square is a dark square (a1 is dark).
func (sq Square) IsDark() bool {
	return (sq.File()+sq.Rank())%2 == 0
}

// RelativeRank returns the rank from a given color's perspective.
// For White, rank 0 is the 1st rank; for Black, rank 0 is the 8th rank.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

// Mirror returns the square mirrored vertically (for black's perspective).
func (sq Square) Mirror() Square {
	return sq ^ 56
}
