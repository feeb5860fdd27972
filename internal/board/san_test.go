package board

import (
	"math/rand"
	"testing"

	"github.com/notnil/chess"
)

func TestSANExamples(t *testing.T) {
	tests := []struct {
		fen  string
		uci  string
		want string
	}{
		{StartFEN, "e2e4", "e4"},
		{StartFEN, "g1f3", "Nf3"},
		{"4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", "e1g1", "O-O"},
		{"4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", "e1c1", "O-O-O"},
		{"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8", "Ra8#"},
		{"1n2k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7b8q", "axb8=Q+"},
		{"4k3/8/8/8/8/4K3/8/R6R w - - 0 1", "a1d1", "Rad1"},
		{"4k3/8/8/2N5/8/2N5/8/4K3 w - - 0 1", "c5e4", "N5e4"},
		{"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5d6", "exd6"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			m, err := pos.ParseMove(tc.uci)
			if err != nil {
				t.Fatal(err)
			}
			before := pos.FEN()
			if got := pos.SAN(m); got != tc.want {
				t.Errorf("SAN(%s) = %q, want %q", tc.uci, got, tc.want)
			}
			if pos.FEN() != before {
				t.Errorf("SAN changed the position: %s", pos.FEN())
			}
			back, err := pos.ParseSAN(tc.want)
			if err != nil || back != m {
				t.Errorf("ParseSAN(%q) = %v, %v; want %v", tc.want, back, err, m)
			}
		})
	}
}

func TestParseSANRejectsMalformed(t *testing.T) {
	pos := NewPosition()
	for _, s := range []string{"e9e5", "e7e5", "Nzf3", "Ngg1f3", "N11f3", "e", "Qh9"} {
		if m, err := pos.ParseSAN(s); err == nil {
			t.Errorf("ParseSAN(%q) = %v, want error", s, m)
		}
	}
	if pos.FEN() != StartFEN {
		t.Errorf("position changed to %s", pos.FEN())
	}
}

func TestMovesToSAN(t *testing.T) {
	pos := NewPosition()
	var line []Move
	scratch := pos.Copy()
	for _, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		m, err := scratch.ParseMove(uci)
		if err != nil {
			t.Fatal(err)
		}
		line = append(line, m)
		scratch.Apply(m)
	}

	got := MovesToSAN(pos, line)
	want := []string{"f3", "e5", "g4", "Qh4#"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MovesToSAN = %v, want %v", got, want)
			break
		}
	}
	if pos.FEN() != StartFEN || pos.HistoryLen() != 0 {
		t.Errorf("position not restored: %s", pos.FEN())
	}
}

// Random games cross-checked against an independent notation library.
func TestSANMatchesReferenceLibrary(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	notation := chess.AlgebraicNotation{}

	for game := 0; game < 20; game++ {
		pos := NewPosition()
		ref := chess.NewGame()

		for ply := 0; ply < 100; ply++ {
			valid := ref.Position().ValidMoves()
			if len(valid) == 0 {
				break
			}
			if len(valid) != pos.LegalMoves().Len() {
				t.Fatalf("%s: %d legal moves, reference has %d", pos.FEN(), pos.LegalMoves().Len(), len(valid))
			}
			for _, rm := range valid {
				m, err := pos.ParseMove(rm.String())
				if err != nil {
					t.Fatalf("%s: reference move %s not legal here: %v", pos.FEN(), rm, err)
				}
				if got, want := pos.SAN(m), notation.Encode(ref.Position(), rm); got != want {
					t.Fatalf("%s: SAN(%s) = %q, reference %q", pos.FEN(), rm, got, want)
				}
			}

			pick := valid[rng.Intn(len(valid))]
			m, _ := pos.ParseMove(pick.String())
			pos.Apply(m)
			if err := ref.Move(pick); err != nil {
				t.Fatal(err)
			}
		}
	}
}
