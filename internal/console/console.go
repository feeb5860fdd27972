package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/C04L/chessgame/internal/game"
	"github.com/C04L/chessgame/internal/storage"
)

const helpText = `Enter moves as e2e4, e7e8q or SAN (Nf3, O-O).
Commands:
  undo     take back your last move
  new      start again from the first position
  flip     turn the board around
  moves    list the legal moves
  fen      print the position as FEN
  pgn      print the game so far
  games    list recently saved games
  show N   print saved game N
  stats    print totals over saved games
  quit     leave`

// recentLimit is how many games "games" lists.
const recentLimit = 10

// Archive is the read side of the game store.
type Archive interface {
	LoadStats() (*storage.GameStats, error)
	LoadGame(id uint64) (*storage.GameRecord, error)
	RecentGames(limit int) ([]*storage.GameRecord, error)
}

// Console runs one game on a terminal.
type Console struct {
	g   *game.Game
	in  io.Reader
	out io.Writer
	log zerolog.Logger

	render     RenderOptions
	onFinished func(game.Record)
	onFlip     func(flipped bool)
	archive    Archive
	reported   bool
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the console's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Console) { c.log = logger }
}

// WithRender sets the board drawing options.
func WithRender(o RenderOptions) Option {
	return func(c *Console) { c.render = o }
}

// OnFinished registers a callback run once per game when it ends, or when
// the console quits in the middle of a game with moves played.
func OnFinished(fn func(game.Record)) Option {
	return func(c *Console) { c.onFinished = fn }
}

// OnFlip registers a callback run with the new orientation after "flip".
func OnFlip(fn func(flipped bool)) Option {
	return func(c *Console) { c.onFlip = fn }
}

// WithArchive enables the saved-game commands.
func WithArchive(a Archive) Option {
	return func(c *Console) { c.archive = a }
}

// New creates a console driving g.
func New(g *game.Game, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		g:      g,
		in:     in,
		out:    out,
		log:    zerolog.Nop(),
		render: RenderOptions{Unicode: true, Color: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run plays until "quit", end of input, or ctx is cancelled. Bot seats move
// on their own; the prompt appears only when a human is to move.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	defer c.finish()

	c.draw()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		st := c.g.Status()
		if st.Over() {
			c.finish()
		} else {
			m, _, played, err := c.g.BotTurn(ctx)
			if err != nil {
				return fmt.Errorf("bot move: %w", err)
			}
			if played {
				fmt.Fprintf(c.out, "%s plays %s\n", st.SideToMove, c.g.Snapshot().LastSAN)
				c.log.Debug().Str("move", m.String()).Msg("bot moved")
				c.draw()
				continue
			}
		}

		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if !c.command(strings.TrimSpace(scanner.Text())) {
			return nil
		}
	}
}

// command handles one input line. It returns false on quit.
func (c *Console) command(line string) bool {
	switch strings.ToLower(line) {
	case "":
		return true
	case "quit", "exit", "q":
		return false
	case "help", "?":
		fmt.Fprintln(c.out, helpText)
	case "new":
		c.finish()
		c.g.Restart()
		c.reported = false
		c.draw()
	case "undo":
		c.undo()
	case "flip":
		c.render.Flipped = !c.render.Flipped
		if c.onFlip != nil {
			c.onFlip(c.render.Flipped)
		}
		c.draw()
	case "fen":
		fmt.Fprintln(c.out, c.g.FEN())
	case "pgn":
		fmt.Fprintln(c.out, c.g.Record().PGN())
	case "moves":
		pos := c.g.Position()
		var sans []string
		for _, m := range pos.LegalMoves().Slice() {
			sans = append(sans, pos.SAN(m))
		}
		fmt.Fprintln(c.out, strings.Join(sans, " "))
	case "stats":
		c.stats()
	case "games":
		c.games()
	default:
		if f := strings.Fields(line); len(f) == 2 && strings.EqualFold(f[0], "show") {
			c.show(f[1])
			return true
		}
		c.move(line)
	}
	return true
}

func (c *Console) stats() {
	if c.archive == nil {
		fmt.Fprintln(c.out, "No saved games.")
		return
	}
	st, err := c.archive.LoadStats()
	if err != nil {
		c.log.Error().Err(err).Msg("load stats")
		fmt.Fprintln(c.out, "Statistics unavailable.")
		return
	}
	fmt.Fprintf(c.out, "Games: %d  White wins: %d  Black wins: %d  Draws: %d  Unfinished: %d\n",
		st.GamesPlayed, st.WhiteWins, st.BlackWins, st.Draws, st.Unfinished)
	fmt.Fprintf(c.out, "Longest game: %d plies  Time played: %v\n", st.LongestGame, st.TotalPlayTime.Round(time.Second))
}

func (c *Console) games() {
	if c.archive == nil {
		fmt.Fprintln(c.out, "No saved games.")
		return
	}
	recs, err := c.archive.RecentGames(recentLimit)
	if err != nil {
		c.log.Error().Err(err).Msg("list games")
		fmt.Fprintln(c.out, "Saved games unavailable.")
		return
	}
	if len(recs) == 0 {
		fmt.Fprintln(c.out, "No saved games.")
		return
	}
	for _, r := range recs {
		fmt.Fprintf(c.out, "%4d  %s  %s - %s  %s  %d plies\n",
			r.ID, r.PlayedAt.Format("2006-01-02 15:04"), r.White, r.Black, r.Result, len(r.Moves))
	}
}

func (c *Console) show(arg string) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || c.archive == nil {
		fmt.Fprintf(c.out, "No saved game %s.\n", arg)
		return
	}
	r, err := c.archive.LoadGame(id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.Error().Err(err).Uint64("id", id).Msg("load game")
		}
		fmt.Fprintf(c.out, "No saved game %s.\n", arg)
		return
	}
	rec := game.Record{StartFEN: r.StartFEN, UCI: r.Moves, SAN: r.SAN, Result: r.Result}
	fmt.Fprintf(c.out, "%s - %s\n%s\n", r.White, r.Black, rec.PGN())
}

func (c *Console) move(text string) {
	_, err := c.g.PlayUCI(text)
	if errors.Is(err, game.ErrIllegalMove) {
		_, err = c.g.PlaySAN(text)
	}
	switch {
	case errors.Is(err, game.ErrGameOver):
		fmt.Fprintln(c.out, "The game is over. Type new to play again.")
	case err != nil:
		fmt.Fprintf(c.out, "Illegal move: %s\n", text)
	default:
		c.draw()
	}
}

// undo takes back the last move, and the bot's reply before it so the
// human is to move again.
func (c *Console) undo() {
	if err := c.g.Undo(); err != nil {
		fmt.Fprintln(c.out, "Nothing to undo.")
		return
	}
	if c.g.Bots().IsBotTurn(c.g.Position()) {
		if err := c.g.Undo(); err != nil {
			c.log.Debug().Err(err).Msg("no human move before the bot reply")
		}
	}
	c.reported = false
	c.draw()
}

func (c *Console) draw() {
	Render(c.out, c.g.Snapshot(), c.render)
}

// finish reports the game once if it ended or has moves in it.
func (c *Console) finish() {
	if c.reported || c.onFinished == nil {
		return
	}
	rec := c.g.Record()
	if len(rec.UCI) == 0 {
		return
	}
	c.reported = true
	c.onFinished(rec)
}
