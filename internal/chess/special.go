package chess

const kingStartColumn = 5

// castleSide fixes the columns involved in one castling direction.
type castleSide struct {
	special    SpecialMove
	rookColumn int
	kingTarget int
	rookTarget int
}

var (
	kingSide  = castleSide{special: CastleKingSide, rookColumn: 8, kingTarget: 7, rookTarget: 6}
	queenSide = castleSide{special: CastleQueenSide, rookColumn: 1, kingTarget: 3, rookTarget: 4}
)

// CanCastleKingSide reports whether color may castle with the rook on column 8.
func (b Board) CanCastleKingSide(color Color) bool {
	return b.canCastle(color, kingSide)
}

// CanCastleQueenSide reports whether color may castle with the rook on column 1.
func (b Board) CanCastleQueenSide(color Color) bool {
	return b.canCastle(color, queenSide)
}

// CastleKingSide moves king and rook to columns 7 and 6, or returns the
// receiver when castling is not allowed.
func (b Board) CastleKingSide(color Color) Board {
	return b.castle(color, kingSide)
}

// CastleQueenSide moves king and rook to columns 3 and 4, or returns the
// receiver when castling is not allowed.
func (b Board) CastleQueenSide(color Color) Board {
	return b.castle(color, queenSide)
}

func (b Board) canCastle(color Color, side castleSide) bool {
	k, ok := b.FindKing(color)
	if !ok {
		return false
	}
	king, _ := b.Piece(k)
	if king.HasMoved || k != Sq(color.backRank(), kingStartColumn) {
		return false
	}

	rookSquare := Sq(k.Row, side.rookColumn)
	rook, ok := b.Piece(rookSquare)
	if !ok || rook.Kind != Rook || rook.Color != color || rook.HasMoved {
		return false
	}

	if b.IsPieceInWay(k, rookSquare) {
		return false
	}
	if b.IsAttacked(color, k) {
		return false
	}

	step := sign(side.kingTarget - k.Column)
	for column := k.Column + step; ; column += step {
		if b.IsAttacked(color, Sq(k.Row, column)) {
			return false
		}
		if column == side.kingTarget {
			break
		}
	}
	return true
}

func (b Board) castle(color Color, side castleSide) Board {
	if !b.canCastle(color, side) {
		return b
	}
	row := color.backRank()
	return b.
		Move(Sq(row, kingStartColumn), Sq(row, side.kingTarget)).
		Move(Sq(row, side.rookColumn), Sq(row, side.rookTarget))
}

// castleSideFor recognises a king move that asks to castle: from column 5 to
// column 7 or 3 on the same row.
func castleSideFor(p ActivePiece, from, to Coordinate) (castleSide, bool) {
	if p.Kind != King || from.Column != kingStartColumn || from.Row != to.Row {
		return castleSide{}, false
	}
	switch to.Column {
	case kingSide.kingTarget:
		return kingSide, true
	case queenSide.kingTarget:
		return queenSide, true
	}
	return castleSide{}, false
}

// CaptureEnPassant moves the pawn on from diagonally onto the empty square to
// and removes the opposing pawn beside it on from's row. The receiver is
// returned unchanged if the geometry does not fit or the capture would leave
// the mover in check. Whether the victim has just made its double step is
// tracked by Game, not by the board.
func (b Board) CaptureEnPassant(from, to Coordinate) Board {
	next, ok := b.captureEnPassant(from, to)
	if !ok {
		return b
	}
	return next
}

func (b Board) captureEnPassant(from, to Coordinate) (Board, bool) {
	pawn, ok := b.Piece(from)
	if !ok || pawn.Kind != Pawn || !b.IsEmpty(to) {
		return b, false
	}

	onDiagonal := false
	for _, c := range pawnAttacks(from, pawn.Color) {
		if c == to {
			onDiagonal = true
			break
		}
	}
	if !onDiagonal {
		return b, false
	}

	victimSquare := Sq(from.Row, to.Column)
	victim, ok := b.Piece(victimSquare)
	if !ok || victim.Kind != Pawn || victim.Color == pawn.Color {
		return b, false
	}

	next := b.Move(from, to).Remove(victimSquare)
	if checked, _ := next.inCheck(pawn.Color); checked {
		return b, false
	}
	return next, true
}

// PromotePawn replaces a pawn standing on its promotion rank with a new piece
// of kind. Anything else (no pawn, wrong rank, king or pawn as the target
// kind) returns the receiver unchanged.
func (b Board) PromotePawn(c Coordinate, kind PieceKind) Board {
	pawn, ok := b.Piece(c)
	if !ok || pawn.Kind != Pawn || c.Row != pawn.Color.promotionRank() || !kind.CanPromoteTo() {
		return b
	}

	return b.Place(c, ActivePiece{
		Color:              pawn.Color,
		Kind:               kind,
		ID:                 PieceID(string(pawn.ID) + "=" + kind.Letter()),
		StartingCoordinate: c,
		HasMoved:           true,
	})
}
