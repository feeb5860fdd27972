// Package game is the boundary between a chess position and the outside
// world: it accepts player moves, asks the bot for its moves, and exposes
// read-only snapshots for whatever draws the board.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/C04L/chessgame/internal/board"
	"github.com/C04L/chessgame/internal/bot"
	"github.com/C04L/chessgame/internal/engine"
)

var (
	// ErrIllegalMove is returned when a submitted move is not legal. The
	// position is left untouched.
	ErrIllegalMove = errors.New("game: illegal move")
	// ErrGameOver is returned when a move is submitted after the game ended.
	ErrGameOver = errors.New("game: game is over")
	// ErrNothingToUndo is returned by Undo at the start of the game.
	ErrNothingToUndo = errors.New("game: nothing to undo")
	// ErrPositionChanged is returned by BotMove when the position moved on
	// while the bot was thinking.
	ErrPositionChanged = errors.New("game: position changed during search")
)

// Game owns one position and the record of how it was reached. It is safe
// for concurrent use; BotMove searches without holding the lock.
type Game struct {
	mu       sync.Mutex
	pos      *board.Position
	startFEN string
	san      []string

	bots *bot.Controller
	log  zerolog.Logger
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the game's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Game) { g.log = logger }
}

// WithBots sets the controller that plays the bot seats.
func WithBots(c *bot.Controller) Option {
	return func(g *Game) { g.bots = c }
}

// New starts a game from the standard position.
func New(opts ...Option) *Game {
	g := &Game{
		pos:      board.NewPosition(),
		startFEN: board.StartFEN,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.bots == nil {
		g.bots = bot.NewController(bot.WithLogger(g.log))
	}
	return g
}

// NewFromFEN starts a game from a FEN string.
func NewFromFEN(fen string, opts ...Option) (*Game, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	g := New(opts...)
	g.pos = pos
	g.startFEN = pos.FEN()
	return g, nil
}

// Restart returns to the game's starting position and clears the record.
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pos = board.NewPositionFromFEN(g.startFEN)
	g.san = nil
	g.log.Info().Str("fen", g.startFEN).Msg("game restarted")
}

// Bots returns the controller that plays the bot seats.
func (g *Game) Bots() *bot.Controller {
	return g.bots
}

// Position returns a copy of the current position.
func (g *Game) Position() *board.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.Copy()
}

// FEN returns the current position as FEN.
func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.FEN()
}

// Status returns the current game status.
func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return statusOf(g.pos)
}

// TryMove submits a player move by its squares. promo chooses the promotion
// kind and defaults to a queen. Dragging the king onto its own rook is
// accepted as castling on that side.
func (g *Game) TryMove(from, to board.Square, promo board.PieceType) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if st := statusOf(g.pos); st.Over() {
		return st, ErrGameOver
	}
	if promo == board.NoPieceType {
		promo = board.Queen
	}

	m := g.pos.FindMove(from, to, promo)
	if m == board.NoMove {
		m = g.castleByRook(from, to)
	}
	if m == board.NoMove {
		return statusOf(g.pos), fmt.Errorf("%w: %v%v", ErrIllegalMove, from, to)
	}
	return g.play(m), nil
}

// castleByRook maps a king dropped on its own rook to the castling move.
func (g *Game) castleByRook(from, to board.Square) board.Move {
	king, rook := g.pos.PieceAt(from), g.pos.PieceAt(to)
	if king.Type() != board.King || rook.Type() != board.Rook || king.Color() != rook.Color() {
		return board.NoMove
	}
	dest := from + 2
	if to < from {
		dest = from - 2
	}
	m := g.pos.FindMove(from, dest, board.NoPieceType)
	if !m.IsCastling() {
		return board.NoMove
	}
	return m
}

// PlayUCI submits a move in UCI notation ("e2e4", "e7e8q").
func (g *Game) PlayUCI(s string) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if st := statusOf(g.pos); st.Over() {
		return st, ErrGameOver
	}
	m, err := g.pos.ParseMove(s)
	if err != nil {
		return statusOf(g.pos), fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return g.play(m), nil
}

// PlaySAN submits a move in standard algebraic notation ("Nf3", "O-O").
func (g *Game) PlaySAN(s string) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if st := statusOf(g.pos); st.Over() {
		return st, ErrGameOver
	}
	m, err := g.pos.ParseSAN(s)
	if err != nil {
		return statusOf(g.pos), fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return g.play(m), nil
}

// play applies a legal move and records it. The caller holds the lock.
func (g *Game) play(m board.Move) Status {
	san := g.pos.SAN(m)
	g.pos.Apply(m)
	g.san = append(g.san, san)

	st := statusOf(g.pos)
	g.log.Debug().Str("move", m.String()).Str("san", san).Str("fen", g.pos.FEN()).Msg("move played")
	if st.Over() {
		g.log.Info().Str("result", st.Result()).Str("reason", st.Reason.String()).Int("plies", len(g.san)).Msg("game over")
	}
	return st
}

// Undo takes back the last move.
func (g *Game) Undo() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.pos.Revert() {
		return ErrNothingToUndo
	}
	g.san = g.san[:len(g.san)-1]
	return nil
}

// BotMove searches the current position with limits and plays the result.
// The search runs on a copy without holding the lock; if the position was
// changed meanwhile the move is discarded and ErrPositionChanged returned.
func (g *Game) BotMove(ctx context.Context, limits engine.Limits) (board.Move, Status, error) {
	g.mu.Lock()
	if st := statusOf(g.pos); st.Over() {
		g.mu.Unlock()
		return board.NoMove, st, ErrGameOver
	}
	pos := g.pos.Copy()
	g.mu.Unlock()

	res, err := g.bots.ChooseWithLimits(ctx, pos, limits)
	if err != nil {
		return board.NoMove, g.Status(), err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pos.Hash() != pos.Hash() || g.pos.HistoryLen() != pos.HistoryLen() {
		return board.NoMove, statusOf(g.pos), ErrPositionChanged
	}
	return res.Move, g.play(res.Move), nil
}

// BotTurn plays a bot move at the level of the side to move's seat. It
// reports false when the side to move is seated as a human.
func (g *Game) BotTurn(ctx context.Context) (board.Move, Status, bool, error) {
	g.mu.Lock()
	isBot := g.bots.IsBotTurn(g.pos)
	stm := g.pos.SideToMove()
	g.mu.Unlock()

	if !isBot {
		return board.NoMove, g.Status(), false, nil
	}
	m, st, err := g.BotMove(ctx, g.bots.Seat(stm).Level.Limits())
	return m, st, true, err
}
