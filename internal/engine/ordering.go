package engine

import (
	"github.com/C04L/chessgame/internal/board"
)

// Move ordering priorities
const (
	PVMoveScore     = 10000000 // Best move of the previous iteration
	GoodCaptureBase = 1000000
	PromotionBase   = 950000
	KillerScore1    = 900000
	KillerScore2    = 800000
	historyMax      = 400000
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores.
// Higher score = search first.
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// MoveOrderer keeps the per-search ordering heuristics.
type MoveOrderer struct {
	// Quiet moves that caused a beta cutoff, two per ply
	killers [MaxPly][2]board.Move

	// Cutoff credit for quiet moves, indexed by [from][to]
	history [64][64]int
}

// Clear resets killers and ages the history table.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves fills scores for each move in ml: the PV move first, captures
// by MVV-LVA, promotions, killers, then quiets by history.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, ml *board.MoveList, scores []int, ply int, pvMove board.Move) {
	for i := 0; i < ml.Len(); i++ {
		scores[i] = mo.scoreMove(pos, ml.Get(i), ply, pvMove)
	}
}

func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, pvMove board.Move) int {
	if m == pvMove {
		return PVMoveScore
	}

	if m.IsCapture() {
		victim := board.Pawn
		if !m.IsEnPassant() {
			victim = pos.PieceAt(m.To()).Type()
		}
		attacker := pos.PieceAt(m.From()).Type()
		score := GoodCaptureBase + mvvLva[victim][attacker]*1000
		if m.IsPromotion() {
			score += board.PieceValue[m.Promotion()]
		}
		return score
	}

	if m.IsPromotion() {
		return PromotionBase + board.PieceValue[m.Promotion()]
	}

	if ply < MaxPly {
		if m == mo.killers[ply][0] {
			return KillerScore1
		}
		if m == mo.killers[ply][1] {
			return KillerScore2
		}
	}

	return mo.history[m.From()][m.To()]
}

// PickMove swaps the best-scored move among [index:] into index.
func PickMove(ml *board.MoveList, scores []int, index int) {
	best := index
	for i := index + 1; i < ml.Len(); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	if best != index {
		ml.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records a quiet cutoff move at ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || m == mo.killers[ply][0] {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory credits a quiet cutoff move with depth squared.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	from, to := m.From(), m.To()
	mo.history[from][to] += depth * depth

	if mo.history[from][to] > historyMax {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}
