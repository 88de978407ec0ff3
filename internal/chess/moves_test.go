package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPieceMoves(t *testing.T) {
	tests := []struct {
		name   string
		pieces []ActivePiece
		from   Coordinate
		want   []Coordinate
	}{
		{
			name:   "King in the corner",
			pieces: []ActivePiece{piece(White, King, 1, 1)},
			from:   Sq(1, 1),
			want:   []Coordinate{Sq(2, 1), Sq(2, 2), Sq(1, 2)},
		},
		{
			name:   "King keeps squares held by its own side",
			pieces: []ActivePiece{piece(White, King, 1, 1), piece(White, Pawn, 2, 1)},
			from:   Sq(1, 1),
			want:   []Coordinate{Sq(2, 1), Sq(2, 2), Sq(1, 2)},
		},
		{
			name:   "Knight in the corner",
			pieces: []ActivePiece{piece(Black, Knight, 8, 8)},
			from:   Sq(8, 8),
			want:   []Coordinate{Sq(6, 7), Sq(7, 6)},
		},
		{
			name: "Knight jumps over a wall",
			pieces: []ActivePiece{
				piece(White, Knight, 4, 4),
				piece(White, Pawn, 3, 3), piece(White, Pawn, 3, 4), piece(White, Pawn, 3, 5),
				piece(White, Pawn, 4, 3), piece(White, Pawn, 4, 5),
				piece(White, Pawn, 5, 3), piece(White, Pawn, 5, 4), piece(White, Pawn, 5, 5),
			},
			from: Sq(4, 4),
			want: []Coordinate{
				Sq(6, 5), Sq(6, 3), Sq(2, 5), Sq(2, 3),
				Sq(5, 6), Sq(5, 2), Sq(3, 6), Sq(3, 2),
			},
		},
		{
			name: "Rook stops before its own piece and on an opposing one",
			pieces: []ActivePiece{
				piece(White, Rook, 4, 4),
				piece(White, Rook, 4, 6),
				piece(Black, Pawn, 6, 4),
			},
			from: Sq(4, 4),
			want: []Coordinate{
				Sq(4, 5),
				Sq(4, 3), Sq(4, 2), Sq(4, 1),
				Sq(5, 4), Sq(6, 4),
				Sq(3, 4), Sq(2, 4), Sq(1, 4),
			},
		},
		{
			name:   "Bishop on an empty board",
			pieces: []ActivePiece{piece(Black, Bishop, 4, 4)},
			from:   Sq(4, 4),
			want: []Coordinate{
				Sq(5, 5), Sq(6, 6), Sq(7, 7), Sq(8, 8),
				Sq(5, 3), Sq(6, 2), Sq(7, 1),
				Sq(3, 5), Sq(2, 6), Sq(1, 7),
				Sq(3, 3), Sq(2, 2), Sq(1, 1),
			},
		},
		{
			name:   "White pawn on its starting square",
			pieces: []ActivePiece{piece(White, Pawn, 2, 5)},
			from:   Sq(2, 5),
			want:   []Coordinate{Sq(3, 5), Sq(4, 5)},
		},
		{
			name:   "Black pawn advances down the board",
			pieces: []ActivePiece{piece(Black, Pawn, 7, 4)},
			from:   Sq(7, 4),
			want:   []Coordinate{Sq(6, 4), Sq(5, 4)},
		},
		{
			name: "Pawn captures diagonally but not its own side",
			pieces: []ActivePiece{
				piece(White, Pawn, 2, 5),
				piece(Black, Knight, 3, 6),
				piece(White, Knight, 3, 4),
			},
			from: Sq(2, 5),
			want: []Coordinate{Sq(3, 6), Sq(3, 5), Sq(4, 5)},
		},
		{
			name:   "Pawn blocked directly in front",
			pieces: []ActivePiece{piece(White, Pawn, 2, 5), piece(Black, Pawn, 3, 5)},
			from:   Sq(2, 5),
			want:   nil,
		},
		{
			name:   "Pawn blocked two squares ahead",
			pieces: []ActivePiece{piece(White, Pawn, 2, 5), piece(Black, Pawn, 4, 5)},
			from:   Sq(2, 5),
			want:   []Coordinate{Sq(3, 5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(tt.pieces...)
			got, err := b.PseudoLegalMoves(tt.from)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestQueenCoversRookAndBishopLines(t *testing.T) {
	b := NewBoard(piece(White, Queen, 4, 4))

	moves, err := Queen.Moves(b, Sq(4, 4))
	require.NoError(t, err)
	assert.Len(t, moves, 27)

	b = NewBoard(piece(White, Rook, 4, 4))
	rookMoves, err := Rook.Moves(b, Sq(4, 4))
	require.NoError(t, err)
	assert.Len(t, rookMoves, 14)
	assert.Subset(t, moves, rookMoves)
}

func TestPawnDoubleStepOnlyFromStartingSquare(t *testing.T) {
	b := NewBoard(piece(White, Pawn, 2, 5)).Move(Sq(2, 5), Sq(3, 5))

	moves, err := Pawn.Moves(b, Sq(3, 5))
	require.NoError(t, err)
	assert.Equal(t, []Coordinate{Sq(4, 5)}, moves)
}

func TestPawnOnLastRankHasNoMoves(t *testing.T) {
	b := NewBoard(piece(White, Pawn, 8, 1))

	moves, err := Pawn.Moves(b, Sq(8, 1))
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestMovesContractViolations(t *testing.T) {
	b := NewBoard(piece(White, Bishop, 1, 3))

	_, err := Rook.Moves(b, Sq(4, 4))
	assert.ErrorIs(t, err, ErrNoPiece)

	_, err = b.PseudoLegalMoves(Sq(4, 4))
	assert.ErrorIs(t, err, ErrNoPiece)

	_, err = Rook.Moves(b, Sq(1, 3))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestEveryKindHasMoveRule(t *testing.T) {
	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			b := NewBoard(piece(White, kind, 4, 4))
			moves, err := kind.Moves(b, Sq(4, 4))
			require.NoError(t, err)
			assert.NotEmpty(t, moves)
		})
	}
}
