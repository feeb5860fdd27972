package board

// Move packs a move into 32 bits:
//
//	bits 0-5:   from square
//	bits 6-11:  to square
//	bits 12-15: flag
//	bits 16-20: arena slot of the moving piece
type Move uint32

// Move flags. Bit 2 marks a capture and bit 3 a promotion; the low two bits of
// a promotion flag select the new kind (Knight..Queen).
const (
	FlagQuiet        uint8 = 0
	FlagDoublePush   uint8 = 1
	FlagKingCastle   uint8 = 2
	FlagQueenCastle  uint8 = 3
	FlagCapture      uint8 = 4
	FlagEnPassant    uint8 = 5
	FlagPromotion    uint8 = 8
	FlagPromoCapture uint8 = 12
)

// NoMove is the zero move. It never encodes a real move because from and to
// would both be a1.
const NoMove Move = 0

// NewMove builds a move from its parts.
func NewMove(from, to Square, flag uint8, slot Slot) Move {
	return Move(from) | Move(to)<<6 | Move(flag&0xF)<<12 | Move(slot&0x1F)<<16
}

func newPromotion(from, to Square, promo PieceType, capture bool, slot Slot) Move {
	flag := FlagPromotion | uint8(promo-Knight)
	if capture {
		flag |= FlagCapture
	}
	return NewMove(from, to, flag, slot)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag returns the 4-bit move flag.
func (m Move) Flag() uint8 {
	return uint8((m >> 12) & 0xF)
}

// Slot returns the arena slot of the moving piece.
func (m Move) Slot() Slot {
	return Slot((m >> 16) & 0x1F)
}

// IsCapture reports whether the move removes an enemy piece, en-passant included.
func (m Move) IsCapture() bool {
	return m.Flag()&FlagCapture != 0
}

// IsPromotion reports whether a pawn is promoted.
func (m Move) IsPromotion() bool {
	return m.Flag()&FlagPromotion != 0
}

// Promotion returns the promoted kind, or NoPieceType.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return Knight + PieceType(m.Flag()&3)
}

// IsEnPassant reports an en-passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsCastling reports either castle.
func (m Move) IsCastling() bool {
	f := m.Flag()
	return f == FlagKingCastle || f == FlagQueenCastle
}

// IsDoublePush reports a two-square pawn advance.
func (m Move) IsDoublePush() bool {
	return m.Flag() == FlagDoublePush
}

// IsQuiet reports a move that neither captures nor promotes.
func (m Move) IsQuiet() bool {
	return m.Flag()&(FlagCapture|FlagPromotion) == 0
}

// String returns the UCI text of the move (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// MoveList is a fixed-capacity move buffer that avoids allocation during search.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Truncate drops every move from index n on.
func (ml *MoveList) Truncate(n int) {
	ml.count = n
}

// Contains reports whether the list holds m.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
