package chess

import "errors"

// Contract violations. Illegal game actions are never reported through these;
// they leave the state unchanged instead.
var (
	ErrNoPiece       = errors.New("no piece at square")
	ErrKindMismatch  = errors.New("piece kind does not match move rule")
	ErrKingNotFound  = errors.New("king not found")
	ErrOffBoard      = errors.New("square is off the board")
	ErrUnknownPreset = errors.New("unknown preset")
)
