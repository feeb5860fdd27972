// Command chessgame plays chess on a terminal or speaks UCI to a GUI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/C04L/chessgame/internal/board"
	"github.com/C04L/chessgame/internal/bot"
	"github.com/C04L/chessgame/internal/console"
	"github.com/C04L/chessgame/internal/game"
	"github.com/C04L/chessgame/internal/storage"
	"github.com/C04L/chessgame/internal/uci"
)

var (
	mode       = flag.String("mode", "console", "interface: console or uci")
	fen        = flag.String("fen", "", "start position (console mode)")
	level      = flag.String("level", "", "bot level for both seats: easy, medium or hard")
	whiteBot   = flag.Bool("white-bot", false, "the engine plays white")
	blackBot   = flag.Bool("black-bot", true, "the engine plays black")
	dbPath     = flag.String("db", "", "database directory, or \"memory\" (default: $CHESSGAME_DB or the user data dir)")
	logLevel   = flag.String("log-level", "warn", "log level: trace, debug, info, warn, error")
	plain      = flag.Bool("plain", false, "draw the board with letters and no colours")
	checkBoard = flag.Bool("check-invariants", false, "verify board consistency after every move (slow)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	logger := newLogger(*logLevel)
	board.DebugInvariants = *checkBoard

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch *mode {
	case "uci":
		err = runUCI(ctx, logger)
	case "console":
		err = runConsole(ctx, logger)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("exiting")
		stop()
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func newLogger(lvl string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(lvl))
	if err != nil || lvl == "" {
		level = zerolog.WarnLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func runUCI(ctx context.Context, logger zerolog.Logger) error {
	opts := []uci.Option{uci.WithLogger(logger)}
	if *level != "" {
		l, err := bot.ParseLevel(*level)
		if err != nil {
			return err
		}
		opts = append(opts, uci.WithLevel(l))
	}
	return uci.New(os.Stdin, os.Stdout, opts...).Run(ctx)
}

func openStorage(logger zerolog.Logger) (*storage.Storage, error) {
	path := *dbPath
	if path == "" {
		path = os.Getenv("CHESSGAME_DB")
	}
	switch path {
	case "":
		return storage.NewStorage(storage.WithLogger(logger))
	case "memory":
		return storage.Open("", storage.InMemory(), storage.WithLogger(logger))
	default:
		return storage.Open(path, storage.WithLogger(logger))
	}
}

func runConsole(ctx context.Context, logger zerolog.Logger) error {
	store, err := openStorage(logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer store.Close()

	prefs, err := store.LoadPreferences()
	if err != nil {
		logger.Warn().Err(err).Msg("preferences unreadable, using defaults")
		prefs = storage.DefaultPreferences()
	}
	applyFlags(prefs)
	if err := store.SavePreferences(prefs); err != nil {
		logger.Warn().Err(err).Msg("save preferences")
	}

	seats, err := seatsFromPreferences(prefs)
	if err != nil {
		return err
	}
	bots := bot.NewController(bot.WithSeats(seats[board.White], seats[board.Black]), bot.WithLogger(logger))

	gopts := []game.Option{game.WithBots(bots), game.WithLogger(logger)}
	g := game.New(gopts...)
	if *fen != "" {
		g, err = game.NewFromFEN(*fen, gopts...)
		if err != nil {
			return err
		}
	}

	first, err := store.IsFirstLaunch()
	if err != nil {
		logger.Warn().Err(err).Msg("read first launch flag")
	}
	if first {
		fmt.Println("Welcome to chessgame. Type help for commands.")
		if err := store.MarkFirstLaunchComplete(); err != nil {
			logger.Warn().Err(err).Msg("mark first launch complete")
		}
	}

	started := time.Now()
	save := func(rec game.Record) {
		id, err := store.SaveGame(&storage.GameRecord{
			StartFEN: rec.StartFEN,
			Moves:    rec.UCI,
			SAN:      rec.SAN,
			Result:   rec.Result,
			Reason:   rec.Reason.String(),
			White:    seatName(prefs.Username, seats[board.White]),
			Black:    seatName(prefs.Username, seats[board.Black]),
			Duration: time.Since(started),
		})
		if err != nil {
			logger.Error().Err(err).Msg("save game")
			return
		}
		fmt.Printf("Game %d saved: %s\n", id, rec.PGN())
		started = time.Now()
	}

	render := console.RenderOptions{Flipped: prefs.Flipped, Color: !*plain, Unicode: !*plain}
	c := console.New(g, os.Stdin, os.Stdout,
		console.WithLogger(logger),
		console.WithRender(render),
		console.OnFinished(save),
		console.OnFlip(func(flipped bool) {
			prefs.Flipped = flipped
			if err := store.SavePreferences(prefs); err != nil {
				logger.Warn().Err(err).Msg("save preferences")
			}
		}),
		console.WithArchive(store),
	)
	return c.Run(ctx)
}

// applyFlags overrides stored preferences with flags given on the command
// line.
func applyFlags(prefs *storage.Preferences) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "white-bot":
			prefs.WhiteIsBot = *whiteBot
		case "black-bot":
			prefs.BlackIsBot = *blackBot
		case "level":
			prefs.WhiteLevel, prefs.BlackLevel = *level, *level
		}
	})
}

func seatsFromPreferences(prefs *storage.Preferences) ([2]bot.Seat, error) {
	wl, err := bot.ParseLevel(prefs.WhiteLevel)
	if err != nil {
		return [2]bot.Seat{}, err
	}
	bl, err := bot.ParseLevel(prefs.BlackLevel)
	if err != nil {
		return [2]bot.Seat{}, err
	}
	return [2]bot.Seat{
		{IsBot: prefs.WhiteIsBot, Level: wl},
		{IsBot: prefs.BlackIsBot, Level: bl},
	}, nil
}

func seatName(username string, s bot.Seat) string {
	if s.IsBot {
		return "chessgame (" + s.Level.String() + ")"
	}
	return username
}
