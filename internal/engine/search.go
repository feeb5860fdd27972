package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/C04L/chessgame/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
	MaxDepth  = 64

	// Quiescence plies below the horizon before it stands pat unconditionally.
	maxQuiescencePly = 16
)

// PVTable stores the principal variation as a triangular table.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	next := pv.length[ply+1]
	for j := ply + 1; j < next; j++ {
		pv.moves[ply][j] = pv.moves[ply+1][j]
	}
	pv.length[ply] = next
}

func (pv *PVTable) line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}

// Searcher runs iterative deepening alpha-beta on a position. A Searcher is
// not safe for concurrent use; give each goroutine its own.
type Searcher struct {
	log    zerolog.Logger
	onInfo func(Info)

	orderer MoveOrderer
	pv      PVTable

	pos      *board.Position
	limits   Limits
	ctx      context.Context
	deadline time.Time
	nodes    uint64
	stopped  bool

	// Root move to try first: the best move of the last finished iteration.
	rootBest board.Move
}

// NewSearcher creates a searcher.
func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search looks for the best move for the side to move in pos. The position
// is searched in place and is unchanged when Search returns. Cancelling ctx,
// exhausting the node budget or passing the move time stops the search; the
// result of the deepest finished iteration is returned. With no legal move
// the result carries NoMove and the terminal score.
func (s *Searcher) Search(ctx context.Context, pos *board.Position, limits Limits) Result {
	start := time.Now()
	s.pos = pos
	s.limits = limits
	s.ctx = ctx
	s.nodes = 0
	s.stopped = false
	s.rootBest = board.NoMove
	s.deadline = time.Time{}
	if limits.MoveTime > 0 {
		s.deadline = start.Add(limits.MoveTime)
	}
	s.orderer.Clear()

	var legal board.MoveList
	pos.GenerateLegal(&legal)
	if legal.Len() == 0 {
		score := 0
		if pos.InCheck() {
			score = -MateScore
		}
		return Result{Move: board.NoMove, Score: score, Time: time.Since(start)}
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}

	var result Result
	for depth := 1; depth <= maxDepth; depth++ {
		score := s.negamax(depth, 0, -Infinity, Infinity)

		if s.stopped {
			// A partial first iteration still beats having nothing.
			if result.Move == board.NoMove {
				result.Move = s.rootBest
				if result.Move == board.NoMove {
					result.Move = legal.Get(0)
				}
				result.PV = []board.Move{result.Move}
			}
			break
		}

		result = Result{
			Move:  s.pv.moves[0][0],
			Score: score,
			Depth: depth,
			PV:    s.pv.line(),
		}
		s.rootBest = result.Move

		elapsed := time.Since(start)
		s.log.Debug().
			Int("depth", depth).
			Int("score", score).
			Uint64("nodes", s.nodes).
			Dur("elapsed", elapsed).
			Str("best", result.Move.String()).
			Msg("iteration complete")
		if s.onInfo != nil {
			s.onInfo(Info{Depth: depth, Score: score, Nodes: s.nodes, Time: elapsed, PV: result.PV})
		}

		if score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}
		if limits.MoveTime > 0 && elapsed > limits.MoveTime/2 {
			break
		}
	}

	result.Nodes = s.nodes
	result.Time = time.Since(start)
	return result
}

// Nodes returns the node count of the current or last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// shouldStop polls the cancellation sources. It runs between sibling moves.
func (s *Searcher) shouldStop() bool {
	if s.stopped {
		return true
	}
	switch {
	case s.limits.Nodes > 0 && s.nodes >= s.limits.Nodes:
		s.stopped = true
	case s.ctx.Err() != nil:
		s.stopped = true
	case !s.deadline.IsZero() && time.Now().After(s.deadline):
		s.stopped = true
	}
	return s.stopped
}

// isDraw reports draws that end the line inside the tree. Any earlier
// occurrence of the position counts as a repetition.
func (s *Searcher) isDraw() bool {
	return s.pos.IsFiftyMoveDraw() ||
		s.pos.RepetitionCount() >= 1 ||
		s.pos.IsInsufficientMaterial()
}

func (s *Searcher) negamax(depth, ply int, alpha, beta int) int {
	s.pv.length[ply] = ply

	if ply > 0 && s.isDraw() {
		return 0
	}

	inCheck := s.pos.InCheck()
	if inCheck && s.limits.Extensions == ExtendChecks {
		depth++
	}

	if depth <= 0 {
		return s.quiescence(ply, 0, alpha, beta)
	}
	if ply >= MaxPly-1 {
		return Evaluate(s.pos)
	}

	s.nodes++

	var ml board.MoveList
	s.pos.GenerateLegal(&ml)
	if ml.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	pvMove := board.NoMove
	if ply == 0 {
		pvMove = s.rootBest
	}
	var scores [256]int
	s.orderer.ScoreMoves(s.pos, &ml, scores[:], ply, pvMove)

	for i := 0; i < ml.Len(); i++ {
		if s.shouldStop() {
			break
		}
		PickMove(&ml, scores[:], i)
		m := ml.Get(i)

		s.pos.Apply(m)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)
		s.pos.Revert()

		if s.stopped {
			break
		}

		if score >= beta {
			if !m.IsCapture() && !m.IsPromotion() {
				s.orderer.UpdateKillers(m, ply)
				s.orderer.UpdateHistory(m, depth)
			}
			return beta
		}
		if score > alpha {
			alpha = score
			s.pv.update(ply, m)
			if ply == 0 {
				s.rootBest = m
			}
		}
	}

	return alpha
}

// quiescence resolves captures below the horizon so the static evaluation
// is never taken in the middle of an exchange. In check it searches every
// evasion, which also finds mates at the horizon.
func (s *Searcher) quiescence(ply, qply int, alpha, beta int) int {
	s.pv.length[ply] = ply
	s.nodes++

	if ply >= MaxPly-1 || qply >= maxQuiescencePly {
		return Evaluate(s.pos)
	}

	inCheck := s.pos.InCheck()
	var ml board.MoveList
	if inCheck {
		s.pos.GenerateLegal(&ml)
		if ml.Len() == 0 {
			return -MateScore + ply
		}
	} else {
		standPat := Evaluate(s.pos)
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
		s.pos.GenerateLegalCaptures(&ml)
	}

	var scores [256]int
	s.orderer.ScoreMoves(s.pos, &ml, scores[:], ply, board.NoMove)

	for i := 0; i < ml.Len(); i++ {
		if s.shouldStop() {
			break
		}
		PickMove(&ml, scores[:], i)
		m := ml.Get(i)

		s.pos.Apply(m)
		score := -s.quiescence(ply+1, qply+1, -beta, -alpha)
		s.pos.Revert()

		if s.stopped {
			break
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}
