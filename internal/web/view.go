package web

import (
	"github.com/lmorrow/chessrules/internal/chess"
)

// PieceView is one occupied square as sent to clients.
type PieceView struct {
	Square   string          `json:"square"`
	Color    chess.Color     `json:"color"`
	Kind     chess.PieceKind `json:"kind"`
	ID       chess.PieceID   `json:"id"`
	HasMoved bool            `json:"hasMoved"`
}

type SelectionView struct {
	Square string    `json:"square"`
	Piece  PieceView `json:"piece"`
	Moves  []string  `json:"moves"`
}

type MoveView struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GameView is the state clients render. Pieces, Diagram and Material show
// the position under the history cursor; Turn, Status and InCheck describe
// the play head.
type GameView struct {
	ID               string              `json:"id"`
	Pieces           []PieceView         `json:"pieces"`
	Diagram          string              `json:"diagram"`
	Material         chess.MaterialCount `json:"material"`
	Turn             chess.Color         `json:"turn"`
	Status           chess.GameStatus    `json:"status"`
	InCheck          bool                `json:"inCheck"`
	HistoryIndex     int                 `json:"historyIndex"`
	HistoryLength    int                 `json:"historyLength"`
	Browsing         bool                `json:"browsing"`
	EnPassant        string              `json:"enPassant,omitempty"`
	PendingPromotion string              `json:"pendingPromotion,omitempty"`
	Plies            []string            `json:"plies"`
	Selected         *SelectionView      `json:"selected,omitempty"`
}

func pieceView(sq chess.Square) PieceView {
	return PieceView{
		Square:   sq.Coordinate.String(),
		Color:    sq.Piece.Color,
		Kind:     sq.Piece.Kind,
		ID:       sq.Piece.ID,
		HasMoved: sq.Piece.HasMoved,
	}
}

func squareNames(cs []chess.Coordinate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	return out
}

func newGameView(id string, g chess.Game) GameView {
	viewed := g.Viewed()
	v := GameView{
		ID:            id,
		Pieces:        make([]PieceView, 0, 32),
		Diagram:       viewed.String(),
		Material:      viewed.Material(),
		Turn:          g.Turn(),
		Status:        g.Status(),
		InCheck:       g.Board().IsCheck(g.Turn()),
		HistoryIndex:  g.HistoryIndex(),
		HistoryLength: g.Len(),
		Browsing:      g.IsBrowsing(),
		Plies:         make([]string, 0, g.Len()),
	}
	for _, sq := range viewed.Squares() {
		v.Pieces = append(v.Pieces, pieceView(sq))
	}
	for _, p := range g.Plies() {
		v.Plies = append(v.Plies, p.String())
	}
	if c, ok := g.EnPassantTarget(); ok {
		v.EnPassant = c.String()
	}
	if c, ok := g.PendingPromotion(); ok {
		v.PendingPromotion = c.String()
	}
	if sel, ok := g.Selection(); ok {
		v.Selected = &SelectionView{
			Square: sel.Coordinate.String(),
			Piece:  pieceView(chess.Square{Coordinate: sel.Coordinate, Piece: sel.Piece}),
			Moves:  squareNames(sel.Moves.Squares()),
		}
	}
	return v
}

func legalMoveViews(b chess.Board, color chess.Color) []MoveView {
	moves := b.LegalMoves(color)
	out := make([]MoveView, 0, len(moves))
	for _, m := range moves {
		out = append(out, MoveView{From: m.From.String(), To: m.To.String()})
	}
	return out
}
