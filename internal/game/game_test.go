package game

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/C04L/chessgame/internal/board"
	"github.com/C04L/chessgame/internal/bot"
	"github.com/C04L/chessgame/internal/engine"
)

func play(t *testing.T, g *Game, moves ...string) Status {
	t.Helper()
	var st Status
	for _, m := range moves {
		var err error
		if st, err = g.PlayUCI(m); err != nil {
			t.Fatalf("%s: %v", m, err)
		}
	}
	return st
}

func TestIllegalMoveLeavesPositionUntouched(t *testing.T) {
	g := New()
	before := g.Position()

	tests := []struct{ from, to board.Square }{
		{board.E2, board.E5},
		{board.E7, board.E5}, // wrong side
		{board.D4, board.D5}, // empty square
		{board.E1, board.E2}, // own piece
	}
	for _, tc := range tests {
		if _, err := g.TryMove(tc.from, tc.to, board.NoPieceType); !errors.Is(err, ErrIllegalMove) {
			t.Errorf("%v%v: err = %v, want ErrIllegalMove", tc.from, tc.to, err)
		}
	}
	if _, err := g.PlayUCI("e2e9"); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("bad UCI text: err = %v", err)
	}

	after := g.Position()
	if after.FEN() != before.FEN() || after.Hash() != before.Hash() {
		t.Errorf("rejected moves changed the position to %s", after.FEN())
	}
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	g, err := NewFromFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	st, err := g.TryMove(board.A7, board.A8, board.NoPieceType)
	if err != nil {
		t.Fatal(err)
	}
	if p := g.Position().PieceAt(board.A8); p != board.WhiteQueen {
		t.Errorf("promoted to %v", p)
	}
	if !st.InCheck {
		t.Error("queen on a8 should give check")
	}
	if rec := g.Record(); rec.SAN[0] != "a8=Q+" {
		t.Errorf("SAN %q", rec.SAN[0])
	}

	g.Undo()
	if _, err := g.TryMove(board.A7, board.A8, board.Knight); err != nil {
		t.Fatal(err)
	}
	if p := g.Position().PieceAt(board.A8); p != board.WhiteKnight {
		t.Errorf("underpromotion gave %v", p)
	}
}

func TestCastleByDraggingKingOntoRook(t *testing.T) {
	g, err := NewFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.TryMove(board.E1, board.H1, board.NoPieceType); err != nil {
		t.Fatal(err)
	}
	if _, err := g.TryMove(board.E8, board.A8, board.NoPieceType); err != nil {
		t.Fatal(err)
	}
	pos := g.Position()
	want := map[board.Square]board.Piece{
		board.G1: board.WhiteKing, board.F1: board.WhiteRook,
		board.C8: board.BlackKing, board.D8: board.BlackRook,
	}
	for sq, p := range want {
		if pos.PieceAt(sq) != p {
			t.Errorf("%v holds %v, want %v", sq, pos.PieceAt(sq), p)
		}
	}
	if rec := g.Record(); rec.SAN[0] != "O-O" || rec.SAN[1] != "O-O-O" {
		t.Errorf("SAN %v", rec.SAN)
	}
}

func TestFoolsMate(t *testing.T) {
	g := New()
	st := play(t, g, "f2f3", "e7e5", "g2g4", "d8h4")

	if st.Outcome != BlackWins || st.Reason != Checkmate || !st.Over() {
		t.Fatalf("status %+v", st)
	}
	if st.String() != "Black wins by checkmate" {
		t.Errorf("String() = %q", st.String())
	}
	if _, err := g.PlayUCI("e1f2"); !errors.Is(err, ErrGameOver) {
		t.Errorf("move after mate: err = %v", err)
	}

	rec := g.Record()
	if got := rec.PGN(); got != "1. f3 e5 2. g4 Qh4# 0-1" {
		t.Errorf("PGN = %q", got)
	}
	if len(rec.UCI) != 4 || rec.UCI[3] != "d8h4" {
		t.Errorf("UCI record %v", rec.UCI)
	}
}

func TestThreefoldRepetitionEndsGame(t *testing.T) {
	g := New()
	cycle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	if st := play(t, g, cycle...); st.Over() {
		t.Fatal("over after one cycle")
	}
	st := play(t, g, cycle...)
	if st.Outcome != Drawn || st.Reason != ThreefoldRepetition || st.Result() != "1/2-1/2" {
		t.Errorf("status %+v", st)
	}
}

func TestUndoAndRestart(t *testing.T) {
	g := New()
	if err := g.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("undo at start: %v", err)
	}

	play(t, g, "e2e4", "e7e5")
	if err := g.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := g.FEN(); got != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Errorf("after undo: %s", got)
	}
	if rec := g.Record(); len(rec.SAN) != 1 || rec.SAN[0] != "e4" {
		t.Errorf("record after undo: %v", rec.SAN)
	}

	g.Restart()
	if g.FEN() != board.StartFEN || len(g.Record().SAN) != 0 {
		t.Errorf("restart left %s", g.FEN())
	}
}

func TestRestartReturnsToCustomStart(t *testing.T) {
	fen := "4k3/8/8/8/8/8/8/4K2R b K - 0 10"
	g, err := NewFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	play(t, g, "e8d7", "e1f1")

	want := "[SetUp \"1\"]\n[FEN \"" + fen + "\"]\n\n10... Kd7 11. Kf1 *"
	if got := g.Record().PGN(); got != want {
		t.Errorf("PGN =\n%s\nwant\n%s", got, want)
	}

	g.Restart()
	if g.FEN() != fen {
		t.Errorf("restart gave %s", g.FEN())
	}
}

func TestNewFromFENRejectsMalformed(t *testing.T) {
	if _, err := NewFromFEN("8/8/8 w - - 0 1"); err == nil {
		t.Error("malformed FEN accepted")
	}
}

func TestSnapshot(t *testing.T) {
	g := New()
	s := g.Snapshot()
	if s.LegalMoves != [2]int{20, 20} {
		t.Errorf("legal moves %v", s.LegalMoves)
	}
	if s.Material != [2]int{4000, 4000} {
		t.Errorf("material %v", s.Material)
	}
	if s.Board[board.E1] != board.WhiteKing || s.Board[board.D8] != board.BlackQueen || s.Board[board.E4] != board.NoPiece {
		t.Error("board contents wrong")
	}
	if s.LastMove != board.NoMove || s.SideToMove != board.White {
		t.Errorf("last move %v, side %v", s.LastMove, s.SideToMove)
	}

	play(t, g, "e2e4")
	s = g.Snapshot()
	if s.LastSAN != "e4" || s.LastMove.String() != "e2e4" || s.SideToMove != board.Black {
		t.Errorf("after e4: %q %v %v", s.LastSAN, s.LastMove, s.SideToMove)
	}
	if s.LegalMoves[board.Black] != 20 || s.LegalMoves[board.White] != 30 {
		t.Errorf("legal moves after e4: %v", s.LegalMoves)
	}
	if g.FEN() != s.FEN {
		t.Error("snapshot changed the position")
	}
}

func TestSnapshotInCheck(t *testing.T) {
	g, err := NewFromFEN("4k3/8/8/8/8/8/4r3/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	s := g.Snapshot()
	if !s.Status.InCheck {
		t.Fatal("white should be in check")
	}
	// Kd1, Kf1 and Kxe2.
	if s.LegalMoves != [2]int{3, 0} {
		t.Errorf("legal moves %v, want [3 0]", s.LegalMoves)
	}
}

func TestBotMovePlaysMate(t *testing.T) {
	g, err := NewFromFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	m, st, err := g.BotMove(context.Background(), engine.Limits{Depth: 2})
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "a1a8" || st.Outcome != WhiteWins {
		t.Errorf("bot played %v, status %+v", m, st)
	}
	if _, _, err := g.BotMove(context.Background(), engine.Limits{Depth: 2}); !errors.Is(err, ErrGameOver) {
		t.Errorf("bot move after mate: %v", err)
	}
}

func TestBotTurnFollowsSeats(t *testing.T) {
	bots := bot.NewController(bot.WithSeats(bot.Seat{}, bot.Seat{IsBot: true, Level: bot.Easy}))
	g := New(WithBots(bots))

	if _, _, played, err := g.BotTurn(context.Background()); played || err != nil {
		t.Fatalf("bot played for a human seat: %v", err)
	}
	play(t, g, "e2e4")
	m, _, played, err := g.BotTurn(context.Background())
	if err != nil || !played {
		t.Fatalf("bot did not play: %v", err)
	}
	if g.Position().SideToMove() != board.White || g.Position().LastMove() != m {
		t.Errorf("bot move %v not applied", m)
	}
}

func TestConcurrentBotMoves(t *testing.T) {
	bots := bot.NewController()
	games := []*Game{New(WithBots(bots)), New(WithBots(bots))}
	shared := New(WithBots(bots))

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i, g := range []*Game{games[0], games[1], shared, shared} {
		wg.Add(1)
		go func(i int, g *Game) {
			defer wg.Done()
			_, _, errs[i] = g.BotMove(context.Background(), engine.Limits{Depth: 4})
		}(i, g)
	}
	wg.Wait()

	for i, err := range errs[:2] {
		if err != nil {
			t.Errorf("game %d: %v", i, err)
		}
	}
	for _, g := range games {
		if g.Position().HistoryLen() != 1 {
			t.Errorf("want one move played, history %d", g.Position().HistoryLen())
		}
	}
	// A search that finishes after the shared game moved on is discarded.
	played := 0
	for _, err := range errs[2:] {
		switch {
		case err == nil:
			played++
		case !errors.Is(err, ErrPositionChanged):
			t.Errorf("shared game: %v", err)
		}
	}
	if played == 0 || shared.Position().HistoryLen() != played {
		t.Errorf("shared game: %d moves landed, history %d", played, shared.Position().HistoryLen())
	}
}
