package chess

import "fmt"

type direction struct {
	row, column int
}

var (
	straightDirections = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonalDirections = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	kingOffsets        = append(append([]direction{}, straightDirections...), diagonalDirections...)
	knightOffsets      = []direction{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

// Moves returns the pseudo-legal destinations of the piece of kind k standing
// on from. Self-check is not considered. Calling it on an empty square or on
// a piece of another kind is a contract violation.
func (k PieceKind) Moves(b Board, from Coordinate) ([]Coordinate, error) {
	p, ok := b.Piece(from)
	if !ok {
		return nil, fmt.Errorf("%s moves from %s: %w", k, from, ErrNoPiece)
	}
	if p.Kind != k {
		return nil, fmt.Errorf("%s moves from %s holding %s: %w", k, from, p.Kind, ErrKindMismatch)
	}

	switch k {
	case Pawn:
		return pawnMoves(b, from, p), nil
	case King:
		return stepMoves(from, kingOffsets), nil
	case Knight:
		return stepMoves(from, knightOffsets), nil
	case Rook:
		return rayMoves(b, from, p.Color, straightDirections), nil
	case Bishop:
		return rayMoves(b, from, p.Color, diagonalDirections), nil
	case Queen:
		return append(rayMoves(b, from, p.Color, straightDirections), rayMoves(b, from, p.Color, diagonalDirections)...), nil
	}
	return nil, fmt.Errorf("unknown piece kind %q: %w", k, ErrKindMismatch)
}

// PseudoLegalMoves dispatches to the move rule of whatever piece stands on from.
func (b Board) PseudoLegalMoves(from Coordinate) ([]Coordinate, error) {
	p, ok := b.Piece(from)
	if !ok {
		return nil, fmt.Errorf("moves from %s: %w", from, ErrNoPiece)
	}
	return p.Kind.Moves(b, from)
}

func stepMoves(from Coordinate, offsets []direction) []Coordinate {
	out := make([]Coordinate, 0, len(offsets))
	for _, d := range offsets {
		if to := from.offset(d.row, d.column); to.IsOnBoard() {
			out = append(out, to)
		}
	}
	return out
}

// rayMoves walks each direction until the edge, stopping on the first
// occupied square: included when it holds an opposing piece, excluded otherwise.
func rayMoves(b Board, from Coordinate, color Color, directions []direction) []Coordinate {
	var out []Coordinate
	for _, d := range directions {
		for to := from.offset(d.row, d.column); to.IsOnBoard(); to = to.offset(d.row, d.column) {
			occupant, ok := b.Piece(to)
			if !ok {
				out = append(out, to)
				continue
			}
			if occupant.Color != color {
				out = append(out, to)
			}
			break
		}
	}
	return out
}

// pawnMoves covers pushes and diagonal captures. En passant depends on the
// previous ply and is handled by Game.
func pawnMoves(b Board, from Coordinate, p ActivePiece) []Coordinate {
	var out []Coordinate
	dir := p.Color.forward()

	for _, to := range pawnAttacks(from, p.Color) {
		if occupant, ok := b.Piece(to); ok && occupant.Color != p.Color {
			out = append(out, to)
		}
	}

	one := from.offset(dir, 0)
	if !b.IsEmpty(one) {
		return out
	}
	out = append(out, one)

	two := from.offset(2*dir, 0)
	if from == p.StartingCoordinate && b.IsEmpty(two) {
		out = append(out, two)
	}
	return out
}

// pawnAttacks lists the on-board diagonal squares a pawn of color on from
// threatens, whether or not anything stands there.
func pawnAttacks(from Coordinate, color Color) []Coordinate {
	dir := color.forward()
	out := make([]Coordinate, 0, 2)
	for _, dc := range []int{1, -1} {
		if to := from.offset(dir, dc); to.IsOnBoard() {
			out = append(out, to)
		}
	}
	return out
}
