package web

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lmorrow/chessrules/internal/chess"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStoreFull       = errors.New("session limit reached")
)

// Session holds one game. Games are immutable values, so a session only
// swaps the value it holds; the mutex serialises commands against it.
type Session struct {
	ID string

	mu         sync.Mutex
	game       chess.Game
	lastActive time.Time
}

// Game returns the current game value.
func (s *Session) Game() chess.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game
}

// View calls fn with the current game while no command can run.
func (s *Session) View(fn func(chess.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

// Apply runs cmd against the current game and stores the result. It reports
// the game before and after so callers can tell whether the command changed
// anything.
func (s *Session) Apply(cmd func(chess.Game) chess.Game) (before, after chess.Game) {
	return s.Commit(cmd, nil)
}

// Commit is Apply with publish, when set, called on the result before the
// next command can run.
func (s *Session) Commit(cmd func(chess.Game) chess.Game, publish func(before, after chess.Game)) (before, after chess.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before = s.game
	s.game = cmd(s.game)
	s.lastActive = time.Now()
	if publish != nil {
		publish(before, s.game)
	}
	return before, s.game
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Store keeps sessions in memory, bounded in number and evicted after a
// period without commands.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	idle     time.Duration
}

func NewStore(max int, idle time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		max:      max,
		idle:     idle,
	}
}

// Create starts a game from the named preset under a fresh id. When the
// store is full, idle sessions are evicted first.
func (st *Store) Create(preset string) (*Session, error) {
	board, err := chess.PresetBoard(preset)
	if err != nil {
		return nil, err
	}

	if st.Len() >= st.max {
		st.Reap()
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.sessions) >= st.max {
		return nil, fmt.Errorf("create %s game: %w", preset, ErrStoreFull)
	}

	id := uuid.New().String()
	s := &Session{
		ID:         id,
		game:       chess.NewGame(board, chess.White, chess.WithLogger(sessionLogger(id))),
		lastActive: time.Now(),
	}
	st.sessions[id] = s

	log.Info().Str("gameID", id).Str("preset", preset).Msg("Game session created")
	return s, nil
}

// Get looks a session up by id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("game %q: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Reap removes sessions idle for longer than the configured timeout and
// returns their ids.
func (st *Store) Reap() []string {
	cutoff := time.Now().Add(-st.idle)

	st.mu.Lock()
	defer st.mu.Unlock()
	var reaped []string
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			reaped = append(reaped, id)
		}
	}
	if len(reaped) > 0 {
		log.Info().Int("count", len(reaped)).Msg("Evicted idle game sessions")
	}
	return reaped
}

// Run reaps idle sessions every interval until ctx is done. Evicted ids are
// passed to onEvict, which may be nil.
func (st *Store) Run(ctx context.Context, interval time.Duration, onEvict func(id string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range st.Reap() {
				if onEvict != nil {
					onEvict(id)
				}
			}
		}
	}
}

// sessionLogger scopes the global logger to a session.
func sessionLogger(id string) zerolog.Logger {
	return log.Logger.With().Str("gameID", id).Logger()
}
