package chess

import (
	"github.com/rs/zerolog"
)

// Highlights marks squares on an 8x8 grid, indexed [row-1][column-1].
type Highlights [8][8]bool

// Has reports whether c is marked.
func (h Highlights) Has(c Coordinate) bool {
	return c.IsOnBoard() && h[c.Row-1][c.Column-1]
}

// Squares lists the marked squares, row 1 first.
func (h Highlights) Squares() []Coordinate {
	var out []Coordinate
	for row := 1; row <= 8; row++ {
		for column := 1; column <= 8; column++ {
			if h[row-1][column-1] {
				out = append(out, Sq(row, column))
			}
		}
	}
	return out
}

func highlightsOf(squares []Coordinate) Highlights {
	var h Highlights
	for _, c := range squares {
		if c.IsOnBoard() {
			h[c.Row-1][c.Column-1] = true
		}
	}
	return h
}

// Selection is the piece a caller has picked up together with the squares it
// may go to.
type Selection struct {
	Piece      ActivePiece
	Coordinate Coordinate
	Moves      Highlights
}

// Game is the state of one game: an append-only history of positions, the
// side to move, the en-passant target left by the last move, the browse
// cursor and the caller's current selection. Game is a value; every command
// returns a new Game, and a rejected command returns the receiver as is.
//
// Build games with NewGame or NewStandardGame. A zero Game has no history: it
// reads as an empty board with White to move and refuses every command.
type Game struct {
	history      []snapshot
	historyIndex int
	selected     *Selection
	logger       zerolog.Logger
}

// Option configures a Game
type Option func(*Game)

// WithLogger sets the logger rejected commands are reported to.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// NewGame starts a game from board with turn to move.
func NewGame(board Board, turn Color, opts ...Option) Game {
	g := Game{
		history: []snapshot{{board: board, turn: turn}},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

// NewStandardGame starts a game from the standard arrangement, White to move.
func NewStandardGame(opts ...Option) Game {
	return NewGame(StandardBoard(), White, opts...)
}

// Board is the play head: the position commands act on.
func (g Game) Board() Board {
	return g.head().board
}

// Viewed is the position under the browse cursor.
func (g Game) Viewed() Board {
	return g.viewed().board
}

// Turn is the side to move at the play head.
func (g Game) Turn() Color {
	return g.head().turn
}

// Piece looks c up on the play head.
func (g Game) Piece(c Coordinate) (ActivePiece, bool) {
	return g.Board().Piece(c)
}

// EnPassantTarget is the square skipped by a pawn's double step on the last
// move, valid for the next move only.
func (g Game) EnPassantTarget() (Coordinate, bool) {
	h := g.head()
	return h.enPassant, h.hasEnPassant
}

// Selection returns the current selection, if any.
func (g Game) Selection() (Selection, bool) {
	if g.selected == nil {
		return Selection{}, false
	}
	return *g.selected, true
}

// Status derives the outcome from the play head and the side to move.
func (g Game) Status() GameStatus {
	if len(g.history) == 0 {
		return StatusActive
	}
	b, turn := g.Board(), g.Turn()
	switch {
	case b.IsCheckMate(turn):
		if turn == White {
			return StatusBlackWon
		}
		return StatusWhiteWon
	case b.IsStalemate(turn):
		return StatusDraw
	}
	return StatusActive
}

// PendingPromotion reports a pawn standing on its promotion rank at the play
// head, waiting for PromotePawn.
func (g Game) PendingPromotion() (Coordinate, bool) {
	for _, sq := range g.Board().Squares() {
		if sq.Piece.Kind == Pawn && sq.Coordinate.Row == sq.Piece.Color.promotionRank() {
			return sq.Coordinate, true
		}
	}
	return Coordinate{}, false
}

// Move plays from->to for the side to move. Castling is recognised as a king
// moving from column 5 to column 7 or 3; en passant as a pawn moving onto the
// live en-passant target. Illegal requests return the receiver unchanged.
//
// Moving while the cursor is behind the play head forks the game: later
// entries are discarded and the viewed position becomes the play head.
func (g Game) Move(from, to Coordinate) Game {
	base := g
	if g.IsBrowsing() {
		base = g.fork()
	}
	head := base.head()
	logger := g.logger.With().Str("from", from.String()).Str("to", to.String()).Str("turn", string(head.turn)).Logger()

	p, ok := head.board.Piece(from)
	if !ok {
		logger.Debug().Msg("Cannot move: no piece on origin")
		return g
	}
	if p.Color != head.turn {
		logger.Debug().Msg("Cannot move piece on other player's turn")
		return g
	}
	if !to.IsOnBoard() {
		logger.Debug().Msg("Cannot move off the board")
		return g
	}

	if side, ok := castleSideFor(p, from, to); ok && head.board.canCastle(p.Color, side) {
		return base.commit(head.board.castle(p.Color, side), Ply{Piece: p, From: from, To: to, Special: side.special})
	}

	if p.Kind == Pawn && head.hasEnPassant && to == head.enPassant {
		if next, ok := head.board.captureEnPassant(from, to); ok {
			victim, _ := head.board.Piece(Sq(from.Row, to.Column))
			return base.commit(next, Ply{Piece: p, From: from, To: to, Captured: &victim, Special: EnPassant})
		}
	}

	if !head.board.IsLegalMove(from, to) {
		logger.Debug().Msg("Illegal move rejected")
		return g
	}

	ply := Ply{Piece: p, From: from, To: to}
	if captured, ok := head.board.Piece(to); ok {
		ply.Captured = &captured
	}
	return base.commit(head.board.Move(from, to), ply)
}

// commit appends next as the new play head, flips the turn, clears the
// selection and records the en-passant target created by ply, if any.
func (g Game) commit(next Board, ply Ply) Game {
	s := snapshot{board: next, turn: g.Turn().Opponent(), ply: &ply}
	if ply.Piece.Kind == Pawn && abs(ply.To.Row-ply.From.Row) == 2 {
		s.enPassant = Sq((ply.From.Row+ply.To.Row)/2, ply.From.Column)
		s.hasEnPassant = true
	}

	g = g.push(s)
	g.selected = nil
	g.logger.Debug().Str("ply", ply.String()).Int("history", len(g.history)).Msg("Move committed")
	return g
}

// SelectPiece picks up the piece on c in the viewed position and computes
// where it may go. Selecting an empty square clears the selection, and
// selecting the already selected piece again toggles it off.
func (g Game) SelectPiece(c Coordinate) Game {
	view := g.viewed()
	p, ok := view.board.Piece(c)
	if !ok {
		g.selected = nil
		return g
	}
	if g.selected != nil && g.selected.Piece.ID == p.ID {
		g.selected = nil
		return g
	}

	moves := view.board.LegalMovesFrom(c)
	switch p.Kind {
	case King:
		if view.board.CanCastleQueenSide(p.Color) {
			moves = append(moves, Sq(c.Row, queenSide.kingTarget))
		}
		if view.board.CanCastleKingSide(p.Color) {
			moves = append(moves, Sq(c.Row, kingSide.kingTarget))
		}
	case Pawn:
		if view.hasEnPassant {
			if _, ok := view.board.captureEnPassant(c, view.enPassant); ok {
				moves = append(moves, view.enPassant)
			}
		}
	}

	g.selected = &Selection{Piece: p, Coordinate: c, Moves: highlightsOf(moves)}
	return g
}

// PromotePawn replaces the pawn on c at the play head with a piece of kind,
// rewriting the play head in place: the turn does not change and no history
// entry is added. It is rejected while browsing the past, when c holds no
// pawn on its promotion rank, or when kind is not queen, rook, bishop or knight.
func (g Game) PromotePawn(c Coordinate, kind PieceKind) Game {
	logger := g.logger.With().Str("square", c.String()).Str("kind", string(kind)).Logger()
	if g.IsBrowsing() {
		logger.Debug().Msg("Cannot promote while browsing history")
		return g
	}

	head := g.head()
	next := head.board.PromotePawn(c, kind)
	if next == head.board {
		logger.Debug().Msg("Promotion rejected")
		return g
	}

	head.board = next
	if head.ply != nil && head.ply.To == c {
		ply := *head.ply
		ply.Promotion = kind
		head.ply = &ply
	}
	g = g.replaceHead(head)
	g.selected = nil
	return g
}
