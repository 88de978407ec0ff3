package chess

func piece(color Color, kind PieceKind, row, column int) ActivePiece {
	return NewPiece(color, kind, Sq(row, column))
}

// squaresOf collects the destinations of a move list.
func squaresOf(moves []Move) []Coordinate {
	out := make([]Coordinate, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.To)
	}
	return out
}
