package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/anchal00/llmafia/internal/arbiter"
	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/db"
	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/anchal00/llmafia/internal/sim"
)

// prefixed keeps archived ids of different simulation runs apart.
type prefixed struct {
	prefix string
	arbiter.Recorder
}

func (p prefixed) RecordElimination(gameId string, e game.Elimination) error {
	return p.Recorder.RecordElimination(p.prefix+gameId, e)
}

func (p prefixed) RecordOutcome(gameId string, winner game.Faction, at time.Time) error {
	return p.Recorder.RecordOutcome(p.prefix+gameId, winner, at)
}

func main() {
	configFlag := flag.String("config", "config.yaml", "game config every simulated game uses")
	games := flag.Int("games", 10, "number of games to play")
	concurrent := flag.Int("concurrent", 4, "games played at the same time")
	out := flag.String("out", "", "directory for the game directories (default: a new folder under MAFIA_GAMES_DIR)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "base random seed")
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithOptions("simulate", os.Stdout, logger.ParseLevel(settings.LogLevel))
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Error("Failed to load game config", err)
		os.Exit(1)
	}
	gamesDir := *out
	if gamesDir == "" {
		gamesDir = filepath.Join(settings.GamesDir, "sim-"+time.Now().Format("20060102-150405"))
	}

	opts := sim.Options{
		Config:     cfg,
		GamesDir:   gamesDir,
		Games:      *games,
		Concurrent: *concurrent,
		Seed:       *seed,
		Poll:       settings.Poll(),
		Logger:     log,
	}
	if settings.Database != "" {
		repo, err := db.SetupDB(settings.Database)
		if err != nil {
			log.Error("Failed to open results database", err)
			os.Exit(1)
		}
		defer repo.CloseConnection()
		opts.Recorder = prefixed{prefix: filepath.Base(gamesDir) + "/", Recorder: repo}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	summary, err := sim.Run(ctx, opts)
	if err != nil {
		log.Error("Simulation failed", err)
		return
	}

	fmt.Printf("Played %d games in %s\n", len(summary.Results), gamesDir)
	factions := make([]string, 0, len(summary.Wins))
	for f := range summary.Wins {
		factions = append(factions, string(f))
	}
	sort.Strings(factions)
	for _, f := range factions {
		n := summary.Wins[game.Faction(f)]
		fmt.Printf("  %-12s %3d (%.0f%%)\n", f, n, 100*float64(n)/float64(len(summary.Results)))
	}
}
