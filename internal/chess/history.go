package chess

// snapshot is one history entry. Besides the board it keeps the side to move
// and the en-passant target that were live at that point, so that forking from
// a browsed position restores them.
type snapshot struct {
	board        Board
	turn         Color
	enPassant    Coordinate
	hasEnPassant bool
	ply          *Ply
}

// head and viewed read an empty board with White to move from a zero Game.
func (g Game) head() snapshot {
	if len(g.history) == 0 {
		return snapshot{turn: White}
	}
	return g.history[len(g.history)-1]
}

func (g Game) viewed() snapshot {
	if len(g.history) == 0 {
		return snapshot{turn: White}
	}
	return g.history[g.historyIndex]
}

// History returns every board from the start of the game to the play head.
func (g Game) History() []Board {
	out := make([]Board, len(g.history))
	for i, s := range g.history {
		out[i] = s.board
	}
	return out
}

// Len is the number of history entries, including the starting board.
func (g Game) Len() int {
	return len(g.history)
}

// HistoryIndex is the browse cursor into History.
func (g Game) HistoryIndex() int {
	return g.historyIndex
}

// IsBrowsing reports whether the cursor is behind the play head.
func (g Game) IsBrowsing() bool {
	return len(g.history) > 0 && g.historyIndex != len(g.history)-1
}

// Plies lists the committed moves in order. Entry i produced History()[i+1].
func (g Game) Plies() []Ply {
	var out []Ply
	for _, s := range g.history {
		if s.ply != nil {
			out = append(out, *s.ply)
		}
	}
	return out
}

// Seek moves the browse cursor to i, clamped to the history bounds. The
// selection is cleared because it belonged to the previously viewed board.
func (g Game) Seek(i int) Game {
	if len(g.history) == 0 {
		return g
	}
	switch {
	case i < 0:
		i = 0
	case i > len(g.history)-1:
		i = len(g.history) - 1
	}
	if i == g.historyIndex {
		return g
	}
	g.historyIndex = i
	g.selected = nil
	return g
}

// Back steps the browse cursor one entry towards the start.
func (g Game) Back() Game {
	return g.Seek(g.historyIndex - 1)
}

// Forward steps the browse cursor one entry towards the play head.
func (g Game) Forward() Game {
	return g.Seek(g.historyIndex + 1)
}

// fork drops every entry after the browse cursor, making the viewed entry the
// play head.
func (g Game) fork() Game {
	n := g.historyIndex + 1
	g.history = g.history[:n:n]
	return g
}

// push appends s as the new play head and moves the cursor onto it. The
// three-index slice forces a fresh backing array so that other Game values
// sharing the old one never observe the append.
func (g Game) push(s snapshot) Game {
	n := len(g.history)
	g.history = append(g.history[:n:n], s)
	g.historyIndex = len(g.history) - 1
	return g
}

// replaceHead swaps the play head entry for s.
func (g Game) replaceHead(s snapshot) Game {
	history := make([]snapshot, len(g.history))
	copy(history, g.history)
	history[len(history)-1] = s
	g.history = history
	return g
}
