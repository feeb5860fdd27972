// Package uci drives the engine over the Universal Chess Interface text
// protocol.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/C04L/chessgame/internal/board"
	"github.com/C04L/chessgame/internal/bot"
	"github.com/C04L/chessgame/internal/engine"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	in  io.Reader
	out io.Writer
	log zerolog.Logger

	outMu sync.Mutex

	position *board.Position
	level    bot.Level
	ext      engine.ExtensionPolicy
	workers  int

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// Option configures a UCI handler.
type Option func(*UCI)

// WithLogger sets the logger for diagnostics that do not belong on the
// protocol stream.
func WithLogger(logger zerolog.Logger) Option {
	return func(u *UCI) { u.log = logger }
}

// WithLevel sets the limits used by a bare "go".
func WithLevel(l bot.Level) Option {
	return func(u *UCI) { u.level = l }
}

// New creates a UCI protocol handler reading commands from in and writing
// replies to out.
func New(in io.Reader, out io.Writer, opts ...Option) *UCI {
	u := &UCI{
		in:       in,
		out:      out,
		log:      zerolog.Nop(),
		position: board.NewPosition(),
		level:    bot.Medium,
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Run reads commands until "quit", end of input, or ctx is cancelled. A
// running search is stopped before Run returns.
func (u *UCI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer u.handleStop()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(u.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			if !u.Handle(ctx, line) {
				return nil
			}
		}
	}
}

// Handle executes one command line. It returns false on "quit".
func (u *UCI) Handle(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		u.println("readyok")
	case "ucinewgame":
		u.handleStop()
		u.position = board.NewPosition()
	case "position":
		u.handleStop()
		u.handlePosition(args)
	case "go":
		u.handleGo(ctx, args)
	case "stop":
		u.handleStop()
	case "quit":
		return false
	case "setoption":
		u.handleSetOption(args)
	// Debug commands
	case "d":
		u.handleStop()
		u.println(u.position.String())
		u.println("Fen: " + u.position.FEN())
		u.printf("Hash: %016x\n", u.position.Hash())
	case "perft":
		u.handleStop()
		u.handlePerft(ctx, args)
	case "divide":
		u.handleStop()
		u.handleDivide(args)
	default:
		u.log.Debug().Str("command", cmd).Msg("unknown command ignored")
	}
	return true
}

func (u *UCI) println(s string) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintln(u.out, s)
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name chessgame")
	u.println("id author chessgame authors")
	u.println("")
	u.println("option name Level type combo default " + u.level.String() + " var easy var medium var hard")
	u.println("option name CheckExtension type check default true")
	u.printf("option name PerftThreads type spin default %d min 1 max 256\n", u.workers)
	u.println("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.printf("info string invalid fen: %v\n", err)
			u.log.Warn().Err(err).Msg("invalid fen")
			return
		}
	default:
		return
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := pos.ParseMove(s)
			if err != nil {
				u.printf("info string invalid move %s: %v\n", s, err)
				u.log.Warn().Str("move", s).Err(err).Msg("invalid move in position command")
				return
			}
			pos.Apply(m)
		}
	}
	u.position = pos
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool
}

// ParseGoOptions parses "go" command arguments. Clock arguments (wtime,
// btime and friends) are accepted and ignored.
func ParseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				opts.Nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime", "btime", "winc", "binc", "movestogo":
			i++
		}
	}

	return opts
}

// limits converts GoOptions to engine limits. With no constraint at all the
// configured level applies.
func (u *UCI) limits(opts GoOptions) engine.Limits {
	if opts.Infinite {
		return engine.Limits{Extensions: u.ext}
	}
	if opts.Depth == 0 && opts.Nodes == 0 && opts.MoveTime == 0 {
		lim := u.level.Limits()
		if u.ext == engine.NoExtensions {
			lim.Extensions = engine.NoExtensions
		}
		return lim
	}
	return engine.Limits{
		Depth:      opts.Depth,
		Nodes:      opts.Nodes,
		MoveTime:   opts.MoveTime,
		Extensions: u.ext,
	}
}

// handleGo starts a background search on a copy of the position.
func (u *UCI) handleGo(ctx context.Context, args []string) {
	u.handleStop()

	limits := u.limits(ParseGoOptions(args))
	pos := u.position.Copy()

	sctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.searchDone = make(chan struct{})

	searcher := engine.NewSearcher(
		engine.WithLogger(u.log),
		engine.WithInfo(u.sendInfo),
	)

	go func() {
		defer close(u.searchDone)

		res := searcher.Search(sctx, pos, limits)
		if res.Move == board.NoMove {
			u.println("bestmove 0000")
			return
		}
		u.println("bestmove " + res.Move.String())
	}()
}

// sendInfo outputs one iteration in UCI format.
func (u *UCI) sendInfo(info engine.Info) {
	parts := []string{
		"depth " + strconv.Itoa(info.Depth),
		"score " + engine.UCIScore(info.Score),
		"nodes " + strconv.FormatUint(info.Nodes, 10),
		"time " + strconv.FormatInt(info.Time.Milliseconds(), 10),
	}
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, "nps "+strconv.FormatUint(nps, 10))
	}
	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}
	u.println("info " + strings.Join(parts, " "))
}

// handleStop cancels the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	<-u.searchDone
	u.cancel = nil
}

// Wait blocks until the running search, if any, has reported its move.
func (u *UCI) Wait() {
	if u.searchDone != nil {
		<-u.searchDone
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value []string
	var cur *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			cur = &name
		case "value":
			cur = &value
		default:
			if cur != nil {
				*cur = append(*cur, arg)
			}
		}
	}
	v := strings.Join(value, " ")

	switch strings.ToLower(strings.Join(name, " ")) {
	case "level":
		l, err := bot.ParseLevel(v)
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
		u.level = l
	case "checkextension":
		u.ext = engine.ExtendChecks
		if strings.EqualFold(v, "false") {
			u.ext = engine.NoExtensions
		}
	case "perftthreads":
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			u.workers = n
		}
	}
}

// handlePerft counts leaf nodes in parallel.
func (u *UCI) handlePerft(ctx context.Context, args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes, err := engine.ParallelPerft(ctx, u.position, depth, u.workers)
	if err != nil {
		u.printf("info string perft: %v\n", err)
		return
	}
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

// handleDivide prints the perft count below each root move.
func (u *UCI) handleDivide(args []string) {
	depth := 1
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	entries := engine.Divide(u.position, depth)
	var total uint64
	for _, e := range entries {
		u.printf("%s: %d\n", e.Move, e.Nodes)
		total += e.Nodes
	}
	u.printf("\nMoves: %d\nNodes: %d\n", len(entries), total)
}
