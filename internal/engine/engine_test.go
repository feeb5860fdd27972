package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/C04L/chessgame/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestMateInOne(t *testing.T) {
	for _, depth := range []int{1, 2, 3} {
		for _, ext := range []ExtensionPolicy{ExtendChecks, NoExtensions} {
			pos := mustFEN(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
			res := NewSearcher().Search(context.Background(), pos, Limits{Depth: depth, Extensions: ext})

			if res.Move.String() != "a1a8" {
				t.Errorf("depth %d, extensions %d: best move %v, want a1a8", depth, ext, res.Move)
			}
			if res.Score != MateScore-1 {
				t.Errorf("depth %d, extensions %d: score %d, want %d", depth, ext, res.Score, MateScore-1)
			}
			if ScoreToString(res.Score) != "Mate in 1" {
				t.Errorf("ScoreToString = %q", ScoreToString(res.Score))
			}
		}
	}
}

func TestSearchWithoutLegalMoves(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		score int
	}{
		{"checkmate", "7k/6Q1/6K1/8/8/8/8/8 b - - 0 1", -MateScore},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			res := NewSearcher().Search(context.Background(), pos, Limits{Depth: 4})
			if res.Move != board.NoMove {
				t.Errorf("move %v, want none", res.Move)
			}
			if res.Score != tc.score {
				t.Errorf("score %d, want %d", res.Score, tc.score)
			}
		})
	}
}

func TestSearchTakesHangingQueen(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1")
	res := NewSearcher().Search(context.Background(), pos, Limits{Depth: 3})
	if res.Move.String() != "d2d5" {
		t.Errorf("best move %v, want d2d5", res.Move)
	}
	if res.Score < 300 {
		t.Errorf("score %d after winning a queen for a rook", res.Score)
	}
}

func TestSearchLeavesPositionUnchanged(t *testing.T) {
	pos := board.NewPosition()
	m, _ := pos.ParseMove("e2e4")
	pos.Apply(m)
	fen, hash, plies := pos.FEN(), pos.Hash(), pos.HistoryLen()

	res := NewSearcher().Search(context.Background(), pos, Limits{Depth: 4})
	if res.Move == board.NoMove || res.Depth != 4 {
		t.Fatalf("search returned %v at depth %d", res.Move, res.Depth)
	}
	if pos.FEN() != fen || pos.Hash() != hash || pos.HistoryLen() != plies {
		t.Errorf("position changed: %s (history %d)", pos.FEN(), pos.HistoryLen())
	}
	if err := pos.CheckInvariants(); err != nil {
		t.Error(err)
	}
	if len(res.PV) == 0 || res.PV[0] != res.Move {
		t.Errorf("PV %v does not start with %v", res.PV, res.Move)
	}
}

func TestSearchCancelledStillReturnsLegalMove(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pos := board.NewPosition()
	res := NewSearcher().Search(ctx, pos, Limits{})
	if !pos.LegalMoves().Contains(res.Move) {
		t.Errorf("cancelled search returned %v", res.Move)
	}
	if res.Depth != 0 {
		t.Errorf("cancelled search claims depth %d", res.Depth)
	}
}

func TestSearchNodeLimit(t *testing.T) {
	pos := board.NewPosition()
	res := NewSearcher().Search(context.Background(), pos, Limits{Nodes: 2000})
	if res.Nodes > 2200 {
		t.Errorf("searched %d nodes with a budget of 2000", res.Nodes)
	}
	if !pos.LegalMoves().Contains(res.Move) {
		t.Errorf("node-limited search returned %v", res.Move)
	}
}

func TestSearchMoveTime(t *testing.T) {
	pos := board.NewPosition()
	start := time.Now()
	res := NewSearcher().Search(context.Background(), pos, Limits{MoveTime: 100 * time.Millisecond})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("search ran %v with a 100ms budget", elapsed)
	}
	if res.Move == board.NoMove {
		t.Error("no move under a time limit")
	}
}

func TestInfoCallbackPerIteration(t *testing.T) {
	var depths []int
	s := NewSearcher(WithInfo(func(info Info) { depths = append(depths, info.Depth) }))
	s.Search(context.Background(), board.NewPosition(), Limits{Depth: 3})

	if len(depths) != 3 || depths[0] != 1 || depths[2] != 3 {
		t.Errorf("info depths %v", depths)
	}
}

func TestRepetitionIsDrawInsideTree(t *testing.T) {
	pos := board.NewPosition()
	for _, uci := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		m, err := pos.ParseMove(uci)
		if err != nil {
			t.Fatal(err)
		}
		pos.Apply(m)
	}
	s := NewSearcher()
	s.pos = pos
	if !s.isDraw() {
		t.Error("a position seen before should score as a draw")
	}
}

func TestEvaluateIsSideRelative(t *testing.T) {
	if got := Evaluate(board.NewPosition()); got != 0 {
		t.Errorf("start position evaluates to %d", got)
	}
	white := Evaluate(mustFEN(t, "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1"))
	black := Evaluate(mustFEN(t, "4k3/8/8/8/8/8/8/Q3K3 b - - 0 1"))
	if white <= 0 || black != -white {
		t.Errorf("queen up: %d to move white, %d to move black", white, black)
	}
}

func TestPerftAgreesWithParallelAndDivide(t *testing.T) {
	tests := []struct {
		fen   string
		depth int
		nodes uint64
	}{
		{board.StartFEN, 3, 8902},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 4, 43238},
	}
	for _, tc := range tests {
		pos := mustFEN(t, tc.fen)

		if got := Perft(pos, tc.depth); got != tc.nodes {
			t.Errorf("%s: Perft(%d) = %d, want %d", tc.fen, tc.depth, got, tc.nodes)
		}

		got, err := ParallelPerft(context.Background(), pos, tc.depth, 4)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.nodes {
			t.Errorf("%s: ParallelPerft(%d) = %d, want %d", tc.fen, tc.depth, got, tc.nodes)
		}

		var sum uint64
		for _, e := range Divide(pos, tc.depth) {
			sum += e.Nodes
		}
		if sum != tc.nodes {
			t.Errorf("%s: Divide(%d) sums to %d, want %d", tc.fen, tc.depth, sum, tc.nodes)
		}

		if pos.FEN() != tc.fen {
			t.Errorf("perft changed the position to %s", pos.FEN())
		}
	}
}

func TestParallelPerftCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParallelPerft(ctx, board.NewPosition(), 4, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
		uci   string
	}{
		{0, "0.00", "cp 0"},
		{45, "0.45", "cp 45"},
		{-145, "-1.45", "cp -145"},
		{MateScore - 1, "Mate in 1", "mate 1"},
		{MateScore - 5, "Mate in 3", "mate 3"},
		{-MateScore + 2, "Mated in 1", "mate -1"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
		if got := UCIScore(tc.score); got != tc.uci {
			t.Errorf("UCIScore(%d) = %q, want %q", tc.score, got, tc.uci)
		}
	}
}
