package chess

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Move is an origin/destination pair.
type Move struct {
	From Coordinate `json:"from"`
	To   Coordinate `json:"to"`
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// attacks lists the squares the piece on from could capture on. Pawns
// threaten their diagonals only; every other kind threatens its move set.
func (b Board) attacks(from Coordinate, p ActivePiece) []Coordinate {
	if p.Kind == Pawn {
		return pawnAttacks(from, p.Color)
	}
	moves, err := p.Kind.Moves(b, from)
	if err != nil {
		log.Error().Err(err).Str("square", from.String()).Msg("Attack generation failed")
		return nil
	}
	return moves
}

// IsAttacked reports whether any piece not of color threatens c. Threats are
// capture squares rather than move sets: a pawn attacks its two forward
// diagonals, empty or not, and never the square it would push to. Every other
// kind attacks exactly its pseudo-legal destinations.
func (b Board) IsAttacked(color Color, c Coordinate) bool {
	for _, sq := range b.Squares() {
		if sq.Piece.Color == color {
			continue
		}
		for _, target := range b.attacks(sq.Coordinate, sq.Piece) {
			if target == c {
				return true
			}
		}
	}
	return false
}

// FindKing returns the square of color's king, if one is on the board.
func (b Board) FindKing(color Color) (Coordinate, bool) {
	for _, sq := range b.Squares() {
		if sq.Piece.Color == color && sq.Piece.Kind == King {
			return sq.Coordinate, true
		}
	}
	return Coordinate{}, false
}

func (b Board) inCheck(color Color) (bool, error) {
	k, ok := b.FindKing(color)
	if !ok {
		return false, fmt.Errorf("check for %s: %w", color, ErrKingNotFound)
	}
	return b.IsAttacked(color, k), nil
}

// IsCheck reports whether color's king is attacked. A board without that king
// is a caller bug: it is logged and treated as not in check.
func (b Board) IsCheck(color Color) bool {
	checked, err := b.inCheck(color)
	if err != nil {
		log.Error().Err(err).Msg("Check requested on board without king")
	}
	return checked
}

// leavesKingInCheck plays from->to on a copy and asks whether the mover's
// king is attacked afterwards.
func (b Board) leavesKingInCheck(from, to Coordinate, color Color) bool {
	checked, _ := b.Move(from, to).inCheck(color)
	return checked
}

// LegalMovesFrom lists the destinations of the piece on from that neither
// land on a piece of its own color nor leave its own king in check. Castling
// and en passant are not included. An empty square yields nothing.
func (b Board) LegalMovesFrom(from Coordinate) []Coordinate {
	p, ok := b.Piece(from)
	if !ok {
		return nil
	}
	candidates, err := p.Kind.Moves(b, from)
	if err != nil {
		log.Error().Err(err).Msg("Move generation failed")
		return nil
	}

	var out []Coordinate
	for _, to := range candidates {
		if occupant, ok := b.Piece(to); ok && occupant.Color == p.Color {
			continue
		}
		if b.leavesKingInCheck(from, to, p.Color) {
			continue
		}
		out = append(out, to)
	}
	return out
}

// LegalMoves lists every legal origin/destination pair for color.
func (b Board) LegalMoves(color Color) []Move {
	var out []Move
	for _, sq := range b.PiecesOf(color) {
		for _, to := range b.LegalMovesFrom(sq.Coordinate) {
			out = append(out, Move{From: sq.Coordinate, To: to})
		}
	}
	return out
}

// HasLegalMove reports whether color has at least one legal move.
func (b Board) HasLegalMove(color Color) bool {
	for _, sq := range b.PiecesOf(color) {
		if len(b.LegalMovesFrom(sq.Coordinate)) > 0 {
			return true
		}
	}
	return false
}

// IsCheckMate reports check with no legal reply.
func (b Board) IsCheckMate(color Color) bool {
	return b.IsCheck(color) && !b.HasLegalMove(color)
}

// IsStalemate reports no legal move while not in check.
func (b Board) IsStalemate(color Color) bool {
	return !b.IsCheck(color) && !b.HasLegalMove(color)
}

// IsLegalMove reports whether to is a pseudo-legal destination of the piece
// on from, not occupied by its own side, and safe for its king.
func (b Board) IsLegalMove(from, to Coordinate) bool {
	p, ok := b.Piece(from)
	if !ok {
		return false
	}
	candidates, err := p.Kind.Moves(b, from)
	if err != nil {
		return false
	}

	reachable := false
	for _, c := range candidates {
		if c == to {
			reachable = true
			break
		}
	}
	if !reachable {
		return false
	}
	if occupant, ok := b.Piece(to); ok && occupant.Color == p.Color {
		return false
	}
	return !b.leavesKingInCheck(from, to, p.Color)
}

// IsPieceInWay reports whether any square strictly between from and to is
// occupied. Only rank, file and diagonal lines have squares in between; any
// other pair reports false.
func (b Board) IsPieceInWay(from, to Coordinate) bool {
	dRow, dColumn := to.Row-from.Row, to.Column-from.Column
	if (dRow == 0 && dColumn == 0) || (dRow != 0 && dColumn != 0 && abs(dRow) != abs(dColumn)) {
		return false
	}

	step := direction{row: sign(dRow), column: sign(dColumn)}
	for c := from.offset(step.row, step.column); c != to; c = c.offset(step.row, step.column) {
		if !c.IsOnBoard() {
			return false
		}
		if _, ok := b.Piece(c); ok {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
