package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anchal00/llmafia/internal/arbiter"
	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/db"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/anchal00/llmafia/internal/store"
)

func main() {
	dirFlag := flag.String("dir", "", "game directory")
	configFlag := flag.String("config", "", "prepare the game directory from this config first")
	gameID := flag.String("game-id", "", "id used when archiving results (default: directory name)")
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithOptions("arbiter", os.Stdout, logger.ParseLevel(settings.LogLevel))
	if *dirFlag == "" {
		fmt.Fprintln(os.Stderr, "-dir is required")
		flag.Usage()
		os.Exit(2)
	}
	dir := store.Open(*dirFlag)
	if *configFlag != "" {
		cfg, err := config.Load(*configFlag)
		if err != nil {
			log.Error("Failed to load game config", err)
			os.Exit(1)
		}
		if err := dir.Prepare(cfg); err != nil {
			log.Error("Failed to prepare game directory", err)
			os.Exit(1)
		}
		log.Info("Game directory prepared", "dir", dir.Root())
	}

	opts := []arbiter.Option{
		arbiter.WithLogger(log),
		arbiter.WithPoll(settings.Poll()),
		arbiter.WithGameID(*gameID),
	}
	if settings.Database != "" {
		repo, err := db.SetupDB(settings.Database)
		if err != nil {
			log.Error("Failed to open results database", err)
			os.Exit(1)
		}
		defer repo.CloseConnection()
		opts = append(opts, arbiter.WithRecorder(repo))
	}
	arb, err := arbiter.New(dir, opts...)
	if err != nil {
		log.Error("Failed to start arbiter", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	winner, err := arb.Run(ctx)
	if err != nil {
		log.Error("Game aborted", err)
		return
	}
	fmt.Println(winner.OutcomeMessage())
}
