package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lmorrow/chessrules/internal/chess"
	"github.com/lmorrow/chessrules/internal/config"
	"github.com/rs/zerolog/log"
)

var errBadRequest = errors.New("bad request")

type Service struct {
	store  *Store
	hub    *Hub
	config *config.Config
}

func NewService(store *Store, hub *Hub, config *config.Config) *Service {
	return &Service{
		store:  store,
		hub:    hub,
		config: config,
	}
}

// CommandResponse answers a command that the rules may refuse. A refused
// command is not an HTTP error: Accepted is false and Game is unchanged.
type CommandResponse struct {
	Accepted bool     `json:"accepted"`
	Game     GameView `json:"game"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrStoreFull):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errBadRequest),
		errors.Is(err, chess.ErrOffBoard),
		errors.Is(err, chess.ErrUnknownPreset):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, errBadRequest)
	}
	return nil
}

func parseKind(s string) (chess.PieceKind, error) {
	kind := chess.PieceKind(s)
	if !kind.CanPromoteTo() {
		return "", fmt.Errorf("cannot promote to %q: %w", s, errBadRequest)
	}
	return kind, nil
}

func (s *Service) session(r *http.Request) (*Session, error) {
	return s.store.Get(mux.Vars(r)["id"])
}

// command runs cmd against session and, when the game changed, publishes the
// new state before the session accepts another command.
func (s *Service) command(w http.ResponseWriter, session *Session, updateType string, cmd func(chess.Game) chess.Game) {
	var (
		accepted bool
		view     GameView
	)
	session.Commit(cmd, func(before, after chess.Game) {
		accepted = !sameGame(before, after)
		view = newGameView(session.ID, after)
		if accepted {
			s.hub.BroadcastGameUpdate(GameUpdate{GameID: session.ID, Type: updateType, Data: view})
		}
	})
	writeJSON(w, http.StatusOK, CommandResponse{Accepted: accepted, Game: view})
}

// sameGame compares the parts of a game a command can change.
func sameGame(a, b chess.Game) bool {
	if a.Len() != b.Len() || a.HistoryIndex() != b.HistoryIndex() || a.Board() != b.Board() {
		return false
	}
	sa, okA := a.Selection()
	sb, okB := b.Selection()
	return okA == okB && sa == sb
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.store.Len(),
		"presets":  chess.PresetNames(),
	})
}

type CreateGameRequest struct {
	Preset string `json:"preset"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, fmt.Errorf("invalid request body: %v: %w", err, errBadRequest))
		return
	}
	if req.Preset == "" {
		req.Preset = s.config.Game.Preset
	}

	session, err := s.store.Create(req.Preset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGameView(session.ID, session.Game()))
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameView(session.ID, session.Game()))
}

func (s *Service) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.store.Delete(session.ID)
	s.hub.BroadcastGameUpdate(GameUpdate{GameID: session.ID, Type: UpdateClosed})
	w.WriteHeader(http.StatusNoContent)
}

type SelectRequest struct {
	Square string `json:"square"`
}

func (s *Service) SelectHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req SelectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := chess.ParseCoordinate(req.Square)
	if err != nil {
		writeError(w, err)
		return
	}

	s.command(w, session, UpdateSelection, func(g chess.Game) chess.Game {
		return g.SelectPiece(c)
	})
}

type MoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// MakeMoveHandler plays from->to. When the move leaves a pawn on its last
// rank and Promotion is set, the promotion is applied in the same request.
func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req MoveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	from, err := chess.ParseCoordinate(req.From)
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := chess.ParseCoordinate(req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	var promotion chess.PieceKind
	if req.Promotion != "" {
		if promotion, err = parseKind(req.Promotion); err != nil {
			writeError(w, err)
			return
		}
	}

	log.Debug().Str("gameID", session.ID).Str("from", req.From).Str("to", req.To).Msg("MakeMoveHandler called")
	s.command(w, session, UpdateMove, func(g chess.Game) chess.Game {
		next := g.Move(from, to)
		if promotion != "" && next.Len() != g.Len() {
			if c, ok := next.PendingPromotion(); ok && c == to {
				next = next.PromotePawn(to, promotion)
			}
		}
		return next
	})
}

type PromotionRequest struct {
	Square string `json:"square"`
	Kind   string `json:"kind"`
}

func (s *Service) PromoteHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req PromotionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := chess.ParseCoordinate(req.Square)
	if err != nil {
		writeError(w, err)
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}

	s.command(w, session, UpdatePromotion, func(g chess.Game) chess.Game {
		return g.PromotePawn(c, kind)
	})
}

type HistoryRequest struct {
	Action string `json:"action"` // "back", "forward" or "seek"
	Index  int    `json:"index,omitempty"`
}

func (s *Service) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req HistoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var cmd func(chess.Game) chess.Game
	switch req.Action {
	case "back":
		cmd = chess.Game.Back
	case "forward":
		cmd = chess.Game.Forward
	case "seek":
		index := req.Index
		cmd = func(g chess.Game) chess.Game { return g.Seek(index) }
	default:
		writeError(w, fmt.Errorf("unknown history action %q: %w", req.Action, errBadRequest))
		return
	}
	s.command(w, session, UpdateHistory, cmd)
}

// LegalMovesHandler lists every legal move at the play head for ?color=,
// defaulting to the side to move. Castling and en passant are not listed.
func (s *Service) LegalMovesHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	g := session.Game()

	color := g.Turn()
	switch q := r.URL.Query().Get("color"); q {
	case "":
	case string(chess.White), string(chess.Black):
		color = chess.Color(q)
	default:
		writeError(w, fmt.Errorf("unknown color %q: %w", q, errBadRequest))
		return
	}

	moves := legalMoveViews(g.Board(), color)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"color": color,
		"count": len(moves),
		"moves": moves,
	})
}
