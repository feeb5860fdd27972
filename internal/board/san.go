package board

import (
	"fmt"
	"strings"
)

// SAN formats a legal move in Standard Algebraic Notation, including the
// check or mate suffix. The position is left unchanged.
func (p *Position) SAN(m Move) string {
	if m == NoMove {
		return "-"
	}

	from, to := m.From(), m.To()
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return m.String()
	}

	var sb strings.Builder
	switch {
	case m.Flag() == FlagKingCastle:
		sb.WriteString("O-O")
	case m.Flag() == FlagQueenCastle:
		sb.WriteString("O-O-O")
	default:
		pt := piece.Type()
		if pt != Pawn {
			sb.WriteByte("PNBRQK"[pt])
			sb.WriteString(p.disambiguation(m, pt))
		}
		if m.IsCapture() {
			if pt == Pawn {
				sb.WriteByte('a' + byte(from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[m.Promotion()])
		}
	}

	p.Apply(m)
	if p.InCheck() {
		if p.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	p.Revert()

	return sb.String()
}

// disambiguation returns the file, rank or square needed to tell m apart
// from other legal moves of the same kind to the same square.
func (p *Position) disambiguation(m Move, pt PieceType) string {
	from, to := m.From(), m.To()
	sameFile, sameRank, ambiguous := false, false, false

	for _, other := range p.LegalMoves().Slice() {
		of := other.From()
		if other.To() != to || of == from || p.PieceAt(of).Type() != pt {
			continue
		}
		ambiguous = true
		if of.File() == from.File() {
			sameFile = true
		}
		if of.Rank() == from.Rank() {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	default:
		return from.String()
	}
}

// ParseSAN resolves SAN text against the legal moves of the position.
func (p *Position) ParseSAN(s string) (Move, error) {
	orig := s
	s = strings.TrimRight(strings.TrimSpace(s), "+#!?")

	switch s {
	case "O-O", "0-0":
		return p.findCastle(FlagKingCastle, orig)
	case "O-O-O", "0-0-0":
		return p.findCastle(FlagQueenCastle, orig)
	}

	promo := NoPieceType
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		if idx+1 >= len(s) {
			return NoMove, fmt.Errorf("invalid SAN %q", orig)
		}
		promo = PieceFromChar(s[idx+1] | 0x20).Type()
		if promo < Knight || promo > Queen {
			return NoMove, fmt.Errorf("invalid SAN promotion %q", orig)
		}
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && strings.IndexByte("NBRQK", s[0]) >= 0 {
		pt = PieceFromChar(s[0]).Type()
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, fmt.Errorf("invalid SAN %q", orig)
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("invalid SAN %q: %w", orig, err)
	}

	hint := s[:len(s)-2]
	if len(hint) > 2 {
		return NoMove, fmt.Errorf("invalid SAN %q", orig)
	}
	file, rank := -1, -1
	for _, c := range hint {
		switch {
		case c >= 'a' && c <= 'h' && file < 0:
			file = int(c - 'a')
		case c >= '1' && c <= '8' && rank < 0:
			rank = int(c - '1')
		default:
			return NoMove, fmt.Errorf("invalid SAN %q", orig)
		}
	}

	for _, m := range p.LegalMoves().Slice() {
		from := m.From()
		switch {
		case m.To() != dest,
			p.PieceAt(from).Type() != pt,
			file >= 0 && from.File() != file,
			rank >= 0 && from.Rank() != rank,
			isCapture && !m.IsCapture(),
			m.IsPromotion() && m.Promotion() != promo,
			!m.IsPromotion() && promo != NoPieceType:
			continue
		}
		return m, nil
	}
	return NoMove, fmt.Errorf("no legal move matches SAN %q", orig)
}

func (p *Position) findCastle(flag uint8, orig string) (Move, error) {
	for _, m := range p.LegalMoves().Slice() {
		if m.Flag() == flag {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("castling %q not legal", orig)
}

// MovesToSAN converts a line of moves played from p into SAN.
func MovesToSAN(p *Position, moves []Move) []string {
	result := make([]string, len(moves))
	played := 0
	for i, m := range moves {
		result[i] = p.SAN(m)
		p.Apply(m)
		played++
	}
	for ; played > 0; played-- {
		p.Revert()
	}
	return result
}
