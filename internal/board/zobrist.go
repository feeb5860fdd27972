package board

// Zobrist keys. Generated from a fixed seed so hashes are stable across runs.
var (
	zobristPiece      [2][6][64]uint64
	zobristCastling   [4]uint64 // one per right bit: K, Q, k, q
	zobristEnPassant  [8]uint64 // one per file
	zobristSideToMove uint64    // XORed in when black is to move
)

func init() {
	rng := prng{state: 0x98F107A2BEEF1234}

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	for file := range zobristEnPassant {
		zobristEnPassant[file] = rng.next()
	}
	zobristSideToMove = rng.next()
}

type prng struct {
	state uint64
}

// xorshift64*
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func pieceKey(p Piece, sq Square) uint64 {
	return zobristPiece[p.Color()][p.Type()][sq]
}

// castlingKey folds the keys of every right bit set in cr.
func castlingKey(cr CastlingRights) uint64 {
	var key uint64
	for i := range zobristCastling {
		if cr&(1<<i) != 0 {
			key ^= zobristCastling[i]
		}
	}
	return key
}

func enPassantKey(sq Square) uint64 {
	if sq == NoSquare {
		return 0
	}
	return zobristEnPassant[sq.File()]
}

// ComputeHash recomputes the hash from scratch. The incremental hash must
// always equal this value.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for i := range p.pieces {
		rec := &p.pieces[i]
		if rec.Active {
			h ^= pieceKey(rec.Piece, rec.Square)
		}
	}
	h ^= castlingKey(p.castling)
	h ^= enPassantKey(p.enPassant)
	if p.sideToMove == Black {
		h ^= zobristSideToMove
	}
	return h
}
