package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lmorrow/chessrules/internal/watch"
	"github.com/lmorrow/chessrules/internal/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		server  string
		verbose bool
	)
	flag.StringVar(&server, "server", "http://localhost:8080", "Chess server base URL")
	flag.BoolVar(&verbose, "v", false, "Log connection events")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chesswatch [-server url] [-v] <game-id>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	client, err := watch.NewClient(server, flag.Arg(0), printUpdate, watch.WithLogger(logger))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.Run(ctx); err != nil {
		if errors.Is(err, watch.ErrGameClosed) {
			fmt.Println("game closed")
			return
		}
		log.Fatal().Err(err).Msg("Watch failed")
	}
}

func printUpdate(u watch.Update) error {
	g := u.Game
	fmt.Printf("== %s (%s) ==\n", u.GameID, u.Type)
	fmt.Print(g.Diagram)

	status := fmt.Sprintf("%s to move", g.Turn)
	if g.InCheck {
		status += ", check"
	}
	fmt.Printf("%s | status %s | material %d-%d\n", status, g.Status, g.Material.White, g.Material.Black)

	if g.Browsing {
		fmt.Printf("viewing ply %d of %d\n", g.HistoryIndex, g.HistoryLength-1)
	}
	if len(g.Plies) > 0 {
		fmt.Println(strings.Join(g.Plies, " "))
	}
	if g.Selected != nil && u.Type == web.UpdateSelection {
		fmt.Printf("selected %s: %s\n", g.Selected.Square, strings.Join(g.Selected.Moves, " "))
	}
	fmt.Println()
	return nil
}
