// Package engine implements move search over a board.Position: iterative
// deepening negamax with alpha-beta pruning, capture ordering, check
// extension, quiescence, and the perft move-generation counters.
package engine

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/C04L/chessgame/internal/board"
)

// ExtensionPolicy selects which nodes are searched one ply deeper.
type ExtensionPolicy int

const (
	// ExtendChecks searches positions where the side to move is in check
	// one extra ply.
	ExtendChecks ExtensionPolicy = iota
	// NoExtensions searches to the nominal depth only.
	NoExtensions
)

// Limits specifies constraints on the search. Zero values mean no limit,
// except that a search with no limit at all stops at MaxDepth.
type Limits struct {
	Depth      int           // Maximum nominal depth
	Nodes      uint64        // Node budget
	MoveTime   time.Duration // Wall-clock budget
	Extensions ExtensionPolicy
}

// Result is what a finished search reports.
type Result struct {
	Move  board.Move
	Score int // centipawns from the side to move's point of view
	Depth int // deepest fully completed iteration
	Nodes uint64
	PV    []board.Move
	Time  time.Duration
}

// Info reports one completed iteration.
type Info struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger routes iteration traces to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Searcher) { s.log = logger }
}

// WithInfo registers a callback run after every completed iteration.
func WithInfo(fn func(Info)) Option {
	return func(s *Searcher) { s.onInfo = fn }
}

// ScoreToString renders a score for humans: "Mate in 3", "-0.45".
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		return "Mate in " + strconv.Itoa((MateScore-score+1)/2)
	}
	if score < -MateScore+MaxPly {
		return "Mated in " + strconv.Itoa((MateScore+score+1)/2)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	cents := strconv.Itoa(score % 100)
	if len(cents) == 1 {
		cents = "0" + cents
	}
	return sign + strconv.Itoa(score/100) + "." + cents
}

// UCIScore renders a score as a UCI "score" argument: "cp 34" or "mate -2".
func UCIScore(score int) string {
	switch {
	case score > MateScore-MaxPly:
		return "mate " + strconv.Itoa((MateScore-score+1)/2)
	case score < -MateScore+MaxPly:
		return "mate -" + strconv.Itoa((MateScore+score+1)/2)
	default:
		return "cp " + strconv.Itoa(score)
	}
}
