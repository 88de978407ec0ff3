package chess

import (
	"fmt"
	"sort"
)

var backRankKinds = [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StandardBoard builds the standard starting arrangement.
func StandardBoard() Board {
	pieces := make([]ActivePiece, 0, 32)
	for i, kind := range backRankKinds {
		column := i + 1
		pieces = append(pieces,
			NewPiece(White, kind, Sq(1, column)),
			NewPiece(White, Pawn, Sq(2, column)),
			NewPiece(Black, Pawn, Sq(7, column)),
			NewPiece(Black, kind, Sq(8, column)),
		)
	}
	return NewBoard(pieces...)
}

var presets = map[string]func() Board{
	"standard": StandardBoard,
	"promotion": func() Board {
		return NewBoard(
			NewPiece(White, Pawn, Sq(7, 1)),
			NewPiece(White, King, Sq(1, 5)),
			NewPiece(Black, King, Sq(8, 5)),
		)
	},
	"castling": func() Board {
		return NewBoard(
			NewPiece(White, King, Sq(1, 5)),
			NewPiece(White, Rook, Sq(1, 1)),
			NewPiece(White, Rook, Sq(1, 8)),
			NewPiece(Black, King, Sq(8, 5)),
		)
	},
	"empty": func() Board {
		return NewBoard(
			NewPiece(White, King, Sq(1, 5)),
			NewPiece(Black, King, Sq(8, 5)),
		)
	},
}

// PresetBoard builds a named arrangement: standard, promotion, castling or empty.
func PresetBoard(name string) (Board, error) {
	build, ok := presets[name]
	if !ok {
		return Board{}, fmt.Errorf("preset %q: %w", name, ErrUnknownPreset)
	}
	return build(), nil
}

// PresetNames lists the known arrangement names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
