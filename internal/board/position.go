package board

import (
	"fmt"
	"strings"
)

// DebugInvariants makes every Apply and Revert verify the full position
// invariant and panic on the first violation. Tests switch it on.
var DebugInvariants = false

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, ch := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	r := WhiteQueenSideCastle
	if kingSide {
		r = WhiteKingSideCastle
	}
	if c == Black {
		r <<= 2
	}
	return r
}

// castlingMask[sq] is ANDed into the rights whenever a move touches sq.
var castlingMask [64]CastlingRights

func init() {
	for sq := range castlingMask {
		castlingMask[sq] = AllCastling
	}
	castlingMask[E1] &^= WhiteKingSideCastle | WhiteQueenSideCastle
	castlingMask[H1] &^= WhiteKingSideCastle
	castlingMask[A1] &^= WhiteQueenSideCastle
	castlingMask[E8] &^= BlackKingSideCastle | BlackQueenSideCastle
	castlingMask[H8] &^= BlackKingSideCastle
	castlingMask[A8] &^= BlackQueenSideCastle
}

// cell is one mailbox entry: a piece slot, empty, or the off-board sentinel.
type cell int8

const (
	cellOff   cell = -2
	cellEmpty cell = -1
)

// Position is the single owned aggregate for one game: mailbox, piece arena,
// occupancy, material, hash, clocks and history. All mutation goes through
// the primitives below so that every view changes in the same operation.
type Position struct {
	mailbox  [mailboxSize]cell
	pieces   [MaxPieces]PieceRecord
	numSlots int

	occ      Occupancy
	material [2]int

	sideToMove Color
	castling   CastlingRights
	enPassant  Square
	halfMove   int
	fullMove   int
	hash       uint64

	history []HistoryEntry
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// newEmptyPosition returns a board with no pieces, white to move.
func newEmptyPosition() *Position {
	p := &Position{
		enPassant: NoSquare,
		fullMove:  1,
	}
	for i := range p.mailbox {
		p.mailbox[i] = cellOff
	}
	for sq := A1; sq <= H8; sq++ {
		p.mailbox[toMailbox[sq]] = cellEmpty
	}
	return p
}

// Copy returns a deep copy, history included, safe to hand to another goroutine.
func (p *Position) Copy() *Position {
	c := *p
	c.history = make([]HistoryEntry, len(p.history), cap(p.history))
	copy(c.history, p.history)
	return &c
}

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color { return p.sideToMove }

// CastlingRights returns the current castling rights.
func (p *Position) CastlingRights() CastlingRights { return p.castling }

// EnPassant returns the en-passant target square or NoSquare.
func (p *Position) EnPassant() Square { return p.enPassant }

// HalfMoveClock returns the half-moves since the last capture or pawn move.
func (p *Position) HalfMoveClock() int { return p.halfMove }

// FullMoveNumber returns the FEN full-move counter.
func (p *Position) FullMoveNumber() int { return p.fullMove }

// Hash returns the running Zobrist key.
func (p *Position) Hash() uint64 { return p.hash }

// Ply returns the number of half-moves played since the game's first move,
// derived from the full-move number and side to move.
func (p *Position) Ply() int {
	return 2*(p.fullMove-1) + int(p.sideToMove)
}

// HistoryLen returns the depth of the undo stack.
func (p *Position) HistoryLen() int { return len(p.history) }

// Occupancy returns a snapshot of the occupancy index.
func (p *Position) Occupancy() Occupancy { return p.occ }

// Material returns the material total of one side in centipawns.
func (p *Position) Material(c Color) int { return p.material[c] }

// MaterialBalance returns white's material minus black's.
func (p *Position) MaterialBalance() int {
	return p.material[White] - p.material[Black]
}

// KingSquare returns the square of c's king, or NoSquare if it has none.
func (p *Position) KingSquare(c Color) Square {
	return p.occ.ByKind[c][King].LSB()
}

// Pieces returns the arena records of all pieces currently on the board.
func (p *Position) Pieces() []PieceRecord {
	out := make([]PieceRecord, 0, p.numSlots)
	for i := 0; i < p.numSlots; i++ {
		if p.pieces[i].Active {
			out = append(out, p.pieces[i])
		}
	}
	return out
}

func (p *Position) slotAt(sq Square) Slot {
	c := p.mailbox[toMailbox[sq]]
	if c < 0 {
		return NoSlot
	}
	return Slot(c)
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	s := p.slotAt(sq)
	if s == NoSlot {
		return NoPiece
	}
	return p.pieces[s].Piece
}

// ColorAt returns the color of the piece on sq, or NoColor.
func (p *Position) ColorAt(sq Square) Color {
	return p.PieceAt(sq).Color()
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.occ.All&SquareBB(sq) == 0
}

// Put places a piece on an empty square. It is an editor operation: the undo
// history is discarded. It fails when the square is occupied or the arena is
// full.
func (p *Position) Put(piece Piece, sq Square) error {
	if piece >= NoPiece || !sq.IsValid() {
		return fmt.Errorf("put %v on %v: invalid argument", piece, sq)
	}
	if !p.IsEmpty(sq) {
		return fmt.Errorf("put %v on %v: square occupied", piece, sq)
	}
	if _, err := p.addSlot(piece, sq); err != nil {
		return err
	}
	p.history = p.history[:0]
	return nil
}

// Remove clears sq and returns the piece that stood there. Like Put, it
// discards the undo history.
func (p *Position) Remove(sq Square) Piece {
	s := p.slotAt(sq)
	if s == NoSlot {
		return NoPiece
	}
	piece := p.pieces[s].Piece
	p.lift(s)
	p.history = p.history[:0]
	return piece
}

// addSlot claims an arena slot for a new piece. Inactive slots are recycled
// once the arena is exhausted; that is only safe with an empty history, which
// callers guarantee.
func (p *Position) addSlot(piece Piece, sq Square) (Slot, error) {
	s := Slot(p.numSlots)
	if p.numSlots < MaxPieces {
		p.numSlots++
	} else {
		s = NoSlot
		for i := 0; i < MaxPieces; i++ {
			if !p.pieces[i].Active {
				s = Slot(i)
				break
			}
		}
		if s == NoSlot {
			return NoSlot, fmt.Errorf("piece arena full (%d pieces)", MaxPieces)
		}
	}
	p.pieces[s] = PieceRecord{Piece: piece, Square: sq}
	p.place(s, sq)
	return s, nil
}

// place puts slot s on sq, updating mailbox, arena, occupancy, material and hash.
func (p *Position) place(s Slot, sq Square) {
	rec := &p.pieces[s]
	rec.Square = sq
	rec.Active = true
	p.mailbox[toMailbox[sq]] = cell(s)
	p.occ.set(rec.Piece, sq)
	p.material[rec.Piece.Color()] += rec.Piece.Value()
	p.hash ^= pieceKey(rec.Piece, sq)
}

// lift takes slot s off the board and marks it inactive. The record keeps its
// last square so revert can re-place it.
func (p *Position) lift(s Slot) {
	rec := &p.pieces[s]
	p.mailbox[toMailbox[rec.Square]] = cellEmpty
	rec.Active = false
	p.occ.clear(rec.Piece, rec.Square)
	p.material[rec.Piece.Color()] -= rec.Piece.Value()
	p.hash ^= pieceKey(rec.Piece, rec.Square)
}

// shift moves slot s to an empty square.
func (p *Position) shift(s Slot, to Square) {
	rec := &p.pieces[s]
	from := rec.Square
	p.mailbox[toMailbox[from]] = cellEmpty
	p.mailbox[toMailbox[to]] = cell(s)
	p.occ.clear(rec.Piece, from)
	p.occ.set(rec.Piece, to)
	p.hash ^= pieceKey(rec.Piece, from) ^ pieceKey(rec.Piece, to)
	rec.Square = to
}

// retype changes the kind of an on-board slot (promotion and its undo).
func (p *Position) retype(s Slot, piece Piece) {
	rec := &p.pieces[s]
	p.occ.clear(rec.Piece, rec.Square)
	p.material[rec.Piece.Color()] -= rec.Piece.Value()
	p.hash ^= pieceKey(rec.Piece, rec.Square)
	rec.Piece = piece
	p.occ.set(rec.Piece, rec.Square)
	p.material[rec.Piece.Color()] += rec.Piece.Value()
	p.hash ^= pieceKey(rec.Piece, rec.Square)
}

func (p *Position) setCastling(cr CastlingRights) {
	p.hash ^= castlingKey(p.castling ^ cr)
	p.castling = cr
}

func (p *Position) setEnPassant(sq Square) {
	p.hash ^= enPassantKey(p.enPassant) ^ enPassantKey(sq)
	p.enPassant = sq
}

func (p *Position) flipSide() {
	p.sideToMove = p.sideToMove.Other()
	p.hash ^= zobristSideToMove
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.sideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.castling)
	fmt.Fprintf(&sb, "En passant: %s\n", p.enPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.halfMove)
	fmt.Fprintf(&sb, "Full move: %d\n", p.fullMove)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.hash)
	return sb.String()
}

// CheckInvariants cross-checks mailbox, arena, occupancy, material and hash.
// Any error is a programming defect.
func (p *Position) CheckInvariants() error {
	var occ Occupancy
	var material [2]int
	for sq := A1; sq <= H8; sq++ {
		s := p.slotAt(sq)
		if s == NoSlot {
			continue
		}
		if int(s) >= p.numSlots {
			return fmt.Errorf("%v: slot %d beyond arena size %d", sq, s, p.numSlots)
		}
		rec := p.pieces[s]
		if !rec.Active || rec.Square != sq {
			return fmt.Errorf("%v: slot %d records %+v", sq, s, rec)
		}
		occ.set(rec.Piece, sq)
		material[rec.Piece.Color()] += rec.Piece.Value()
	}
	for i := 0; i < p.numSlots; i++ {
		rec := p.pieces[i]
		if rec.Active && p.slotAt(rec.Square) != Slot(i) {
			return fmt.Errorf("slot %d active on %v but mailbox holds %d", i, rec.Square, p.slotAt(rec.Square))
		}
	}
	for i, c := range p.mailbox {
		if fromMailbox[i] == NoSquare && c != cellOff {
			return fmt.Errorf("sentinel cell %d overwritten with %d", i, c)
		}
	}
	if occ != p.occ {
		return fmt.Errorf("occupancy diverged from mailbox")
	}
	if material != p.material {
		return fmt.Errorf("material %v, recomputed %v", p.material, material)
	}
	if h := p.ComputeHash(); h != p.hash {
		return fmt.Errorf("hash %016x, recomputed %016x", p.hash, h)
	}
	return nil
}

func (p *Position) assertInvariants(op string) {
	if err := p.CheckInvariants(); err != nil {
		panic(fmt.Sprintf("board: %s broke invariant: %v\n%s", op, err, p))
	}
}
