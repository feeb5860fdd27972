package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a 64-bit set of squares. Bit 0 = A1, Bit 63 = H8.
type Bitboard uint64

// File masks
const (
	FileA Bitboard = 0x0101010101010101
	FileH Bitboard = 0x8080808080808080
)

// Rank masks
const (
	Rank1 Bitboard = 0x00000000000000FF
	Rank8 Bitboard = 0xFF00000000000000
)

// DarkSquares is the set of dark squares (a1 is dark).
const DarkSquares Bitboard = 0xAA55AA55AA55AA55

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the lowest square in the set, or NoSquare.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes and returns the lowest square.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// String renders the set as an 8x8 grid, rank 8 first.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteString("X ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Occupancy mirrors the mailbox as bitboards. It is only ever changed by the
// same primitive that changes a mailbox cell.
type Occupancy struct {
	ByColor [2]Bitboard
	ByKind  [2][6]Bitboard
	All     Bitboard
}

func (o *Occupancy) set(p Piece, sq Square) {
	bb := SquareBB(sq)
	c, pt := p.Color(), p.Type()
	o.ByColor[c] |= bb
	o.ByKind[c][pt] |= bb
	o.All |= bb
}

func (o *Occupancy) clear(p Piece, sq Square) {
	bb := SquareBB(sq)
	c, pt := p.Color(), p.Type()
	o.ByColor[c] &^= bb
	o.ByKind[c][pt] &^= bb
	o.All &^= bb
}

// Pieces returns the squares holding the given kind and color.
func (o *Occupancy) Pieces(c Color, pt PieceType) Bitboard {
	return o.ByKind[c][pt]
}
