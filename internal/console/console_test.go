package console

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/C04L/chessgame/internal/bot"
	"github.com/C04L/chessgame/internal/game"
	"github.com/C04L/chessgame/internal/storage"
)

var plain = RenderOptions{}

func TestRenderPlain(t *testing.T) {
	var out bytes.Buffer
	Render(&out, game.New().Snapshot(), plain)
	lines := strings.Split(out.String(), "\n")

	if lines[0] != "8 r n b q k b n r" || lines[7] != "1 R N B Q K B N R" {
		t.Errorf("board:\n%s", out.String())
	}
	if lines[4] != "4 . . . . . . . ." || lines[8] != "  a b c d e f g h" {
		t.Errorf("board:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "legal moves: white 20, black 20") || !strings.Contains(out.String(), "White to move") {
		t.Errorf("status lines:\n%s", out.String())
	}
}

func TestRenderFlipped(t *testing.T) {
	var out bytes.Buffer
	Render(&out, game.New().Snapshot(), RenderOptions{Flipped: true})
	lines := strings.Split(out.String(), "\n")
	if lines[0] != "1 R N B K Q B N R" || lines[8] != "  h g f e d c b a" {
		t.Errorf("flipped board:\n%s", out.String())
	}
}

func TestRenderColorHighlightsLastMove(t *testing.T) {
	g := game.New()
	if _, err := g.PlayUCI("e2e4"); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	Render(&out, g.Snapshot(), RenderOptions{Color: true, Unicode: true})
	s := out.String()
	if strings.Count(s, ansiHighlight) != 2 {
		t.Errorf("want two highlighted squares, got %d", strings.Count(s, ansiHighlight))
	}
	if !strings.Contains(s, whiteKing) || !strings.Contains(s, blackQueen) {
		t.Error("figurines missing")
	}
	if !strings.Contains(s, "Last move: e4") {
		t.Error("last move line missing")
	}
}

func session(t *testing.T, g *game.Game, input string, opts ...Option) (string, []game.Record) {
	t.Helper()
	var out bytes.Buffer
	var finished []game.Record
	opts = append([]Option{WithRender(plain), OnFinished(func(r game.Record) { finished = append(finished, r) })}, opts...)
	c := New(g, strings.NewReader(input), &out, opts...)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String(), finished
}

func TestFoolsMateSession(t *testing.T) {
	out, finished := session(t, game.New(), "f3\ne7e5\ng2g4\nQh4#\ne1f2\nquit\n")

	if !strings.Contains(out, "Black wins by checkmate") {
		t.Errorf("no mate announced:\n%s", out)
	}
	if !strings.Contains(out, "The game is over") {
		t.Error("move after mate was not refused")
	}
	if len(finished) != 1 || finished[0].Result != "0-1" || finished[0].SAN[3] != "Qh4#" {
		t.Errorf("finished callbacks: %+v", finished)
	}
}

func TestCommands(t *testing.T) {
	out, finished := session(t, game.New(), "e2e4\ne9e5\nundo\nundo\nfen\nNf3\npgn\nmoves\nhelp\n")

	for _, want := range []string{
		"Illegal move: e9e5",
		"Nothing to undo.",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"1. Nf3 *",
		"a6 a5",
		"Commands:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q", want)
		}
	}
	// Input ran out mid-game with a move on the board.
	if len(finished) != 1 || finished[0].Result != "*" {
		t.Errorf("finished callbacks: %+v", finished)
	}
}

func TestBotAnswersHumanMove(t *testing.T) {
	bots := bot.NewController(bot.WithSeats(bot.Seat{}, bot.Seat{IsBot: true, Level: bot.Easy}))
	g := game.New(game.WithBots(bots))

	out, _ := session(t, g, "e2e4\nundo\nquit\n")
	if !strings.Contains(out, "Black plays ") {
		t.Errorf("bot did not reply:\n%s", out)
	}
	if g.FEN() != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" {
		t.Errorf("undo should take back both moves, got %s", g.FEN())
	}
}

func TestFlipReportsOrientation(t *testing.T) {
	var got []bool
	out, _ := session(t, game.New(), "flip\nflip\n", OnFlip(func(f bool) { got = append(got, f) }))
	if len(got) != 2 || !got[0] || got[1] {
		t.Errorf("flip callbacks %v", got)
	}
	if !strings.Contains(out, "1 R N B K Q B N R") {
		t.Error("flipped board not drawn")
	}
}

func TestArchiveCommands(t *testing.T) {
	store, err := storage.Open("", storage.InMemory())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	id, err := store.SaveGame(&storage.GameRecord{
		StartFEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		Moves:    []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		SAN:      []string{"f3", "e5", "g4", "Qh4#"},
		Result:   "0-1",
		White:    "ana",
		Black:    "chessgame (easy)",
	})
	if err != nil {
		t.Fatal(err)
	}

	input := "stats\ngames\nshow " + strconv.FormatUint(id, 10) + "\nshow 99\nquit\n"
	out, _ := session(t, game.New(), input, WithArchive(store))
	for _, want := range []string{
		"Games: 1  White wins: 0  Black wins: 1",
		"ana - chessgame (easy)  0-1  4 plies",
		"1. f3 e5 2. g4 Qh4# 0-1",
		"No saved game 99.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestArchiveCommandsWithoutStore(t *testing.T) {
	out, _ := session(t, game.New(), "stats\ngames\nshow 1\n")
	if strings.Count(out, "No saved game") != 3 {
		t.Errorf("output:\n%s", out)
	}
}
