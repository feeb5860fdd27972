package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/C04L/chessgame/internal/board"
)

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(pos *board.Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	var ml board.MoveList
	pos.GenerateLegal(&ml)
	if depth == 1 {
		return uint64(ml.Len())
	}

	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		pos.Apply(ml.Get(i))
		nodes += Perft(pos, depth-1)
		pos.Revert()
	}
	return nodes
}

// DivideEntry is the subtree size under one root move.
type DivideEntry struct {
	Move  board.Move
	Nodes uint64
}

// Divide returns the perft count below each legal root move, in generation
// order. The entries sum to Perft(pos, depth).
func Divide(pos *board.Position, depth int) []DivideEntry {
	if depth <= 0 {
		return nil
	}

	var ml board.MoveList
	pos.GenerateLegal(&ml)
	out := make([]DivideEntry, 0, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		pos.Apply(m)
		out = append(out, DivideEntry{Move: m, Nodes: Perft(pos, depth-1)})
		pos.Revert()
	}
	return out
}

// ParallelPerft splits the root moves across up to workers goroutines, each
// walking its own copy of pos. It returns ctx's error if cancelled before
// every root move was counted.
func ParallelPerft(ctx context.Context, pos *board.Position, depth, workers int) (uint64, error) {
	if depth <= 1 {
		return Perft(pos, depth), nil
	}

	var ml board.MoveList
	pos.GenerateLegal(&ml)

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	var total atomic.Uint64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			local := pos.Copy()
			local.Apply(m)
			total.Add(Perft(local, depth-1))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total.Load(), nil
}
