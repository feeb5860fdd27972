package board

import "testing"

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"4k3/8/8/8/8/8/8/4K3 b - - 37 90",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Errorf("ParseFEN(%q): %v", fen, err)
			continue
		}
		if got := pos.FEN(); got != fen {
			t.Errorf("FEN round trip:\n got %s\nwant %s", got, fen)
		}
		if err := pos.CheckInvariants(); err != nil {
			t.Errorf("%s: %v", fen, err)
		}
	}
}

func TestParseFENRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w kq - 0 1",
		"P3k3/8/8/8/8/8/8/4K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K2r b - - 0 1",
		"qqqqkqqq/qqqqqqqq/qqqqqqqq/qqqqqqqq/8/8/8/4K3 w - - 0 1",
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) accepted malformed input", fen)
		}
	}
}

func TestNewPositionFromFENFallsBackToEmptyBoard(t *testing.T) {
	pos := NewPositionFromFEN("not a fen")
	if pos.SideToMove() != White || pos.CastlingRights() != NoCastling || pos.EnPassant() != NoSquare {
		t.Errorf("fallback position has state: %s", pos.FEN())
	}
	if pos.Occupancy().All != 0 {
		t.Error("fallback board is not empty")
	}
	if pos.FEN() != "8/8/8/8/8/8/8/8 w - - 0 1" {
		t.Errorf("fallback FEN = %s", pos.FEN())
	}
	if pos.LegalMoves().Len() != 0 || pos.InCheck() {
		t.Error("empty board should have no moves and no check")
	}
	if err := pos.CheckInvariants(); err != nil {
		t.Error(err)
	}
}

func TestPutRemoveKeepViewsTogether(t *testing.T) {
	pos := NewPositionFromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if err := pos.Put(WhiteQueen, D4); err != nil {
		t.Fatal(err)
	}
	if err := pos.Put(BlackRook, D4); err == nil {
		t.Error("Put on an occupied square should fail")
	}
	if pos.PieceAt(D4) != WhiteQueen || pos.ColorAt(D4) != White {
		t.Errorf("PieceAt(d4) = %v", pos.PieceAt(D4))
	}
	if pos.Material(White) != 900 || pos.MaterialBalance() != 900 {
		t.Errorf("material after Put: %d / %d", pos.Material(White), pos.MaterialBalance())
	}
	if err := pos.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
	if got := pos.Remove(D4); got != WhiteQueen {
		t.Errorf("Remove(d4) = %v", got)
	}
	if pos.Remove(D4) != NoPiece {
		t.Error("second Remove should find nothing")
	}
	if pos.Material(White) != 0 || pos.Occupancy().ByColor[White] != SquareBB(E1) {
		t.Error("Remove left material or occupancy behind")
	}
	if err := pos.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestMaterialStartPosition(t *testing.T) {
	pos := NewPosition()
	if pos.Material(White) != 4000 || pos.Material(Black) != 4000 || pos.MaterialBalance() != 0 {
		t.Errorf("start material %d/%d", pos.Material(White), pos.Material(Black))
	}
	if n := len(pos.Pieces()); n != 32 {
		t.Errorf("Pieces() = %d records", n)
	}
}
