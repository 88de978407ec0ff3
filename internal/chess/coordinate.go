package chess

import (
	"fmt"
	"strings"
)

// Coordinate addresses a square by 1-based row and column. Row 1 is White's
// back rank, column 1 is the a-file.
type Coordinate struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Sq is shorthand for Coordinate{Row: row, Column: column}.
func Sq(row, column int) Coordinate {
	return Coordinate{Row: row, Column: column}
}

// IsOnBoard is the only validity check for a Coordinate.
func (c Coordinate) IsOnBoard() bool {
	return c.Row >= 1 && c.Row <= 8 && c.Column >= 1 && c.Column <= 8
}

func (c Coordinate) offset(dRow, dColumn int) Coordinate {
	return Coordinate{Row: c.Row + dRow, Column: c.Column + dColumn}
}

// String renders the square in algebraic form, e.g. "e2".
func (c Coordinate) String() string {
	if !c.IsOnBoard() {
		return fmt.Sprintf("(%d,%d)", c.Row, c.Column)
	}
	return fmt.Sprintf("%c%d", 'a'+c.Column-1, c.Row)
}

// ParseCoordinate parses an algebraic square name such as "e2" or "H8".
func ParseCoordinate(s string) (Coordinate, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Coordinate{}, fmt.Errorf("parse square %q: %w", s, ErrOffBoard)
	}

	c := Coordinate{Row: int(s[1]-'1') + 1, Column: int(s[0]-'a') + 1}
	if !c.IsOnBoard() {
		return Coordinate{}, fmt.Errorf("parse square %q: %w", s, ErrOffBoard)
	}
	return c, nil
}
