package board

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// squarePairs returns the sorted from-to text of each move. Promotions
// collapse onto one pair per piece choice, so counts still differ when a
// promotion kind is missing.
func squarePairs(moves []string) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m[:4]
	}
	sort.Strings(out)
	return out
}

func oracleMoves(fen string) []string {
	b := dragontoothmg.ParseFen(fen)
	var out []string
	for _, m := range b.GenerateLegalMoves() {
		out = append(out, m.String())
	}
	return out
}

func ourMoves(p *Position) []string {
	var out []string
	for _, m := range p.LegalMoves().Slice() {
		out = append(out, m.String())
	}
	return out
}

func sameMoveSets(t *testing.T, p *Position) {
	t.Helper()
	fen := p.FEN()
	got := squarePairs(ourMoves(p))
	want := squarePairs(oracleMoves(fen))
	if len(got) != len(want) {
		t.Fatalf("%s: %d legal moves, oracle has %d\nours:   %v\noracle: %v", fen, len(got), len(want), got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s: move sets differ at %d: %s vs %s\nours:   %v\noracle: %v", fen, i, got[i], want[i], got, want)
		}
	}
}

// Every position reached by random play must agree with an independent
// bitboard generator on the exact set of legal moves.
func TestLegalMovesMatchOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	starts := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	for _, fen := range starts {
		for game := 0; game < 10; game++ {
			pos, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", fen, err)
			}
			for ply := 0; ply < 80; ply++ {
				sameMoveSets(t, pos)
				moves := pos.LegalMoves().Slice()
				if len(moves) == 0 {
					break
				}
				pos.Apply(moves[rng.Intn(len(moves))])
			}
		}
	}
}

func TestAttackQueriesMatchGeneratedCaptures(t *testing.T) {
	// Every enemy piece a legal-or-not capture lands on must be reported as
	// attacked by the capturing side.
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var ml MoveList
	pos.GenerateCaptures(&ml)
	for _, m := range ml.Slice() {
		if m.IsEnPassant() {
			continue
		}
		if !pos.IsSquareAttacked(m.To(), White) {
			t.Errorf("%v captures on %v but the square is not reported attacked", m, m.To())
		}
		if pos.Attackers(m.To(), White)&SquareBB(m.From()) == 0 {
			t.Errorf("Attackers(%v) misses %v", m.To(), m.From())
		}
	}
}
