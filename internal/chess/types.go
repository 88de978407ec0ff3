package chess

import "strings"

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// forward is the row direction pawns of this color advance in.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

// backRank is the row the color's king and rooks start on.
func (c Color) backRank() int {
	if c == White {
		return 1
	}
	return 8
}

// promotionRank is the row a pawn of this color promotes on.
func (c Color) promotionRank() int {
	return c.Opponent().backRank()
}

type PieceKind string

const (
	Pawn   PieceKind = "pawn"
	King   PieceKind = "king"
	Queen  PieceKind = "queen"
	Rook   PieceKind = "rook"
	Bishop PieceKind = "bishop"
	Knight PieceKind = "knight"
)

// Kinds lists every piece kind.
var Kinds = []PieceKind{Pawn, King, Queen, Rook, Bishop, Knight}

// Value is the relative material value of the kind. The rules never consult it.
func (k PieceKind) Value() int {
	switch k {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	}
	return 0
}

// Letter is the upper-case algebraic letter for the kind.
func (k PieceKind) Letter() string {
	switch k {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return "?"
}

// CanPromoteTo reports whether a pawn may become this kind.
func (k PieceKind) CanPromoteTo() bool {
	switch k {
	case Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

// PieceID identifies a piece across moves. It is derived from the starting
// square, so it does not change when the piece moves.
type PieceID string

// ActivePiece is a piece on the board. Its current square is wherever the
// board holds it.
type ActivePiece struct {
	Color              Color      `json:"color"`
	Kind               PieceKind  `json:"kind"`
	ID                 PieceID    `json:"id"`
	StartingCoordinate Coordinate `json:"startingCoordinate"`
	HasMoved           bool       `json:"hasMoved"`
}

// NewPiece creates an unmoved piece whose id is derived from its starting square.
func NewPiece(color Color, kind PieceKind, start Coordinate) ActivePiece {
	return ActivePiece{
		Color:              color,
		Kind:               kind,
		ID:                 PieceID(start.String()),
		StartingCoordinate: start,
	}
}

// Moved returns a copy of the piece marked as having moved.
func (p ActivePiece) Moved() ActivePiece {
	p.HasMoved = true
	return p
}

// symbol is the board-diagram letter: upper case for White.
func (p ActivePiece) symbol() string {
	if p.Color == Black {
		return strings.ToLower(p.Kind.Letter())
	}
	return p.Kind.Letter()
}

type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusDraw     GameStatus = "draw"
	StatusWhiteWon GameStatus = "white_won"
	StatusBlackWon GameStatus = "black_won"
)

// MaterialCount represents the material count for both sides
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// Balance is White's material minus Black's.
func (m MaterialCount) Balance() int {
	return m.White - m.Black
}
