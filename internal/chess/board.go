package chess

import (
	"strings"

	"github.com/rs/zerolog/log"
)

type cell struct {
	piece    ActivePiece
	occupied bool
}

// Board is an 8x8 grid holding at most one piece per square. It is a value:
// every operation that changes the position returns a new Board and leaves
// the receiver untouched, so past boards stay valid for history browsing and
// hypothetical moves.
type Board struct {
	cells [8][8]cell
}

// Square pairs a piece with the coordinate it currently occupies.
type Square struct {
	Coordinate Coordinate  `json:"coordinate"`
	Piece      ActivePiece `json:"piece"`
}

// NewBoard places each piece on its starting coordinate. Pieces with an
// off-board starting coordinate are dropped and reported.
func NewBoard(pieces ...ActivePiece) Board {
	var b Board
	for _, p := range pieces {
		if !p.StartingCoordinate.IsOnBoard() {
			log.Error().Err(ErrOffBoard).Str("piece", string(p.ID)).Msg("Skipping piece with off-board starting square")
			continue
		}
		b = b.Place(p.StartingCoordinate, p)
	}
	return b
}

// Piece returns the piece at c, if any.
func (b Board) Piece(c Coordinate) (ActivePiece, bool) {
	if !c.IsOnBoard() {
		return ActivePiece{}, false
	}
	sq := b.cells[c.Row-1][c.Column-1]
	return sq.piece, sq.occupied
}

// IsEmpty reports whether c is on the board and holds no piece.
func (b Board) IsEmpty(c Coordinate) bool {
	_, ok := b.Piece(c)
	return c.IsOnBoard() && !ok
}

// Place returns a board with p standing on c, replacing any occupant.
func (b Board) Place(c Coordinate, p ActivePiece) Board {
	if !c.IsOnBoard() {
		return b
	}
	b.cells[c.Row-1][c.Column-1] = cell{piece: p, occupied: true}
	return b
}

// Remove returns a board with c emptied.
func (b Board) Remove(c Coordinate) Board {
	if !c.IsOnBoard() {
		return b
	}
	b.cells[c.Row-1][c.Column-1] = cell{}
	return b
}

// Move relocates the piece on from to to, marking it as moved and replacing
// whatever stood on to. Legality is not checked: this is the primitive for
// both committed and simulated moves. An empty from leaves the board as is.
func (b Board) Move(from, to Coordinate) Board {
	p, ok := b.Piece(from)
	if !ok || !to.IsOnBoard() {
		return b
	}
	return b.Remove(from).Place(to, p.Moved())
}

// Squares lists every occupied square, row 1 first.
func (b Board) Squares() []Square {
	var out []Square
	for row := 1; row <= 8; row++ {
		for column := 1; column <= 8; column++ {
			c := Sq(row, column)
			if p, ok := b.Piece(c); ok {
				out = append(out, Square{Coordinate: c, Piece: p})
			}
		}
	}
	return out
}

// PiecesOf lists the occupied squares holding pieces of color.
func (b Board) PiecesOf(color Color) []Square {
	var out []Square
	for _, sq := range b.Squares() {
		if sq.Piece.Color == color {
			out = append(out, sq)
		}
	}
	return out
}

// Material sums piece values per side.
func (b Board) Material() MaterialCount {
	var m MaterialCount
	for _, sq := range b.Squares() {
		switch sq.Piece.Color {
		case White:
			m.White += sq.Piece.Kind.Value()
		case Black:
			m.Black += sq.Piece.Kind.Value()
		}
	}
	return m
}

// String draws the board with row 8 at the top. White pieces are upper case.
func (b Board) String() string {
	var sb strings.Builder
	for row := 8; row >= 1; row-- {
		sb.WriteByte(byte('0' + row))
		for column := 1; column <= 8; column++ {
			sb.WriteByte(' ')
			if p, ok := b.Piece(Sq(row, column)); ok {
				sb.WriteString(p.symbol())
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
