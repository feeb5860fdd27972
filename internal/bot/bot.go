// Package bot maps difficulty levels onto search limits and decides which
// side of the board the engine plays.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/C04L/chessgame/internal/board"
	"github.com/C04L/chessgame/internal/engine"
)

// ErrNoMoves is returned by Choose when the side to move is mated or
// stalemated.
var ErrNoMoves = errors.New("bot: no legal moves")

// Level represents bot difficulty.
type Level int

const (
	Easy Level = iota
	Medium
	Hard
)

// levelLimits maps each level to its search constraints.
var levelLimits = map[Level]engine.Limits{
	Easy:   {Depth: 3, MoveTime: 500 * time.Millisecond, Extensions: engine.NoExtensions},
	Medium: {Depth: 5, MoveTime: 2 * time.Second},
	Hard:   {Depth: 7, MoveTime: 5 * time.Second},
}

func (l Level) String() string {
	switch l {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Limits returns the search limits for the level. Unknown levels play as
// Medium.
func (l Level) Limits() engine.Limits {
	if lim, ok := levelLimits[l]; ok {
		return lim
	}
	return levelLimits[Medium]
}

// ParseLevel accepts a level name or its number.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "0":
		return Easy, nil
	case "medium", "1":
		return Medium, nil
	case "hard", "2":
		return Hard, nil
	}
	return Medium, fmt.Errorf("bot: unknown level %q", s)
}

// Seat says who plays one color.
type Seat struct {
	IsBot bool
	Level Level
}

// Controller picks moves for the colors seated as bots.
type Controller struct {
	seats [2]Seat
	log   zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger. The search itself logs at debug
// level through the same logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.log = logger }
}

// WithSeats sets both seats at once.
func WithSeats(white, black Seat) Option {
	return func(c *Controller) { c.seats = [2]Seat{white, black} }
}

// NewController creates a controller with both colors played by humans
// unless configured otherwise.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		seats: [2]Seat{{Level: Medium}, {Level: Medium}},
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seat returns the seat of color c.
func (c *Controller) Seat(color board.Color) Seat {
	return c.seats[color]
}

// SetSeat changes who plays color.
func (c *Controller) SetSeat(color board.Color, s Seat) {
	c.seats[color] = s
}

// IsBotTurn reports whether the side to move in pos is seated as a bot.
func (c *Controller) IsBotTurn(pos *board.Position) bool {
	stm := pos.SideToMove()
	return stm < board.NoColor && c.seats[stm].IsBot
}

// Choose searches pos with the limits of the side to move's level. The
// position is searched in place and left unchanged.
func (c *Controller) Choose(ctx context.Context, pos *board.Position) (engine.Result, error) {
	return c.ChooseWithLimits(ctx, pos, c.seats[pos.SideToMove()].Level.Limits())
}

// ChooseWithLimits is Choose with explicit search limits. Each call runs its
// own Searcher, so concurrent calls on different positions do not share
// search state.
func (c *Controller) ChooseWithLimits(ctx context.Context, pos *board.Position, limits engine.Limits) (engine.Result, error) {
	if !pos.HasLegalMoves() {
		return engine.Result{}, ErrNoMoves
	}

	res := engine.NewSearcher(engine.WithLogger(c.log)).Search(ctx, pos, limits)
	c.log.Info().
		Str("side", pos.SideToMove().String()).
		Str("move", res.Move.String()).
		Strs("pv", board.MovesToSAN(pos, res.PV)).
		Str("score", engine.ScoreToString(res.Score)).
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", res.Time).
		Msg("bot move chosen")
	return res, nil
}
