package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmorrow/chessrules/internal/config"
	"github.com/lmorrow/chessrules/internal/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		showHelp   bool
		configPath string
	)
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.StringVar(&configPath, "config", "", "Path to a config file")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	level, err := cfg.Development.Level()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := web.NewStore(cfg.Sessions.Max, cfg.Sessions.IdleTimeout)
	hub := web.NewHub()
	go hub.Run(ctx)
	go store.Run(ctx, reapInterval(cfg.Sessions.IdleTimeout), func(id string) {
		hub.BroadcastGameUpdate(web.GameUpdate{GameID: id, Type: web.UpdateClosed})
	})

	service := web.NewService(store, hub, cfg)
	handler := web.NewRouter(service, cfg.Server.StaticDir)
	if cfg.Development.Debug {
		handler = web.WithAccessLog(handler)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("preset", cfg.Game.Preset).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// reapInterval checks for idle sessions a few times per idle timeout.
func reapInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

func showHelpMessage() {
	fmt.Println(`chessd - chess rules server

DESCRIPTION:
    Holds in-memory chess games and enforces the rules of play: legal
    moves, check, checkmate, stalemate, castling, en passant and pawn
    promotion. Every game keeps its full history, which can be browsed
    and forked. Watchers receive live updates over a WebSocket.

USAGE:
    chessd [OPTIONS]

OPTIONS:
    -h, --help         Show this help message
    -config <path>     Read configuration from <path> instead of config.yaml

CONFIGURATION:
    config.yaml is read from the current directory or ./config. Every key
    can be overridden with a CHESSD_ environment variable, for example
    CHESSD_SERVER_PORT=9090 or CHESSD_SESSIONS_IDLE_TIMEOUT=10m.

    Example config.yaml:
        server:
          host: localhost
          port: 8080
          static_dir: ./web/static

        development:
          debug: false
          log_level: info

        sessions:
          max: 64
          idle_timeout: 30m

        game:
          preset: standard     # standard, castling, promotion or empty

API ENDPOINTS:
    GET    /api/health                  - Service health check
    POST   /api/games                   - Create a game from a preset
    GET    /api/games/{id}              - Current game state
    DELETE /api/games/{id}              - Close a game
    POST   /api/games/{id}/select       - Select or deselect a piece
    POST   /api/games/{id}/moves        - Play a move
    POST   /api/games/{id}/promotion    - Promote a pawn on its last rank
    POST   /api/games/{id}/history      - Step back, forward or seek
    GET    /api/games/{id}/legal-moves  - Legal moves for a color
    GET    /api/ws?gameId={id}          - WebSocket stream of game updates

EXAMPLES:
    # Start with default configuration
    chessd

    # Create a game and play a move
    curl -X POST http://localhost:8080/api/games -d '{"preset": "standard"}'
    curl -X POST http://localhost:8080/api/games/<id>/moves \
      -H "Content-Type: application/json" \
      -d '{"from": "e2", "to": "e4"}'

SEE ALSO:
    chesswatch(1), config.yaml(5)`)
}
