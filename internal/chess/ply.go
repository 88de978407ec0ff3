package chess

import "strings"

type SpecialMove string

const (
	NoSpecial       SpecialMove = ""
	CastleKingSide  SpecialMove = "castle_king_side"
	CastleQueenSide SpecialMove = "castle_queen_side"
	EnPassant       SpecialMove = "en_passant"
)

// Ply records one committed move. Piece is the mover as it stood before the
// move; Captured is set when a piece left the board.
type Ply struct {
	Piece     ActivePiece  `json:"piece"`
	From      Coordinate   `json:"from"`
	To        Coordinate   `json:"to"`
	Captured  *ActivePiece `json:"captured,omitempty"`
	Special   SpecialMove  `json:"special,omitempty"`
	Promotion PieceKind    `json:"promotion,omitempty"`
}

// String renders the ply in long algebraic form, e.g. "e2e4", "O-O",
// "e5d6 e.p." or "e7e8=Q".
func (p Ply) String() string {
	switch p.Special {
	case CastleKingSide:
		return "O-O"
	case CastleQueenSide:
		return "O-O-O"
	}

	var sb strings.Builder
	sb.WriteString(p.From.String())
	sb.WriteString(p.To.String())
	if p.Promotion != "" {
		sb.WriteString("=" + p.Promotion.Letter())
	}
	if p.Special == EnPassant {
		sb.WriteString(" e.p.")
	}
	return sb.String()
}
