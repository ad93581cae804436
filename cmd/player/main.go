package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anchal00/llmafia/internal/agent"
	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/anchal00/llmafia/internal/store"
)

func main() {
	dirFlag := flag.String("dir", "", "game directory")
	name := flag.String("name", "", "player name from the game config")
	human := flag.Bool("human", false, "play from this terminal instead of as a bot")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed for bot play and vote fallbacks")
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	if *dirFlag == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "-dir and -name are required")
		flag.Usage()
		os.Exit(2)
	}

	var decider agent.Decider = agent.NewScriptedDecider(*seed)
	var transcript io.Writer
	logOut := io.Writer(os.Stdout)
	if *human {
		decider = agent.NewHumanDecider(os.Stdin, os.Stdout)
		transcript = os.Stdout
		logOut = os.Stderr
	}
	log := logger.NewWithOptions("player", logOut, logger.ParseLevel(settings.LogLevel)).With("player", *name)

	a, err := agent.New(store.Open(*dirFlag), *name, decider,
		agent.WithLogger(log),
		agent.WithPoll(settings.Poll()),
		agent.WithRand(rand.New(rand.NewSource(*seed))),
		agent.WithTranscript(transcript),
	)
	if err != nil {
		log.Error("Failed to start player", err)
		os.Exit(1)
	}
	if err := a.Join(); err != nil {
		log.Error("Failed to join game", err)
		os.Exit(1)
	}
	log.Info("Joined game", "role", a.Self().Role())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	result, err := a.Run(ctx)
	if err != nil {
		log.Error("Player stopped", err)
		return
	}
	if result.Eliminated {
		fmt.Println("You were voted out.")
		return
	}
	fmt.Println(result.Winner.OutcomeMessage())
}
