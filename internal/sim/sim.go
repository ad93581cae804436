// Package sim plays whole games in-process: one arbiter and one scripted agent
// per player share a game directory, exactly as separate processes would.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	"github.com/anchal00/llmafia/internal/agent"
	"github.com/anchal00/llmafia/internal/arbiter"
	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/anchal00/llmafia/internal/poll"
	"github.com/anchal00/llmafia/internal/store"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Config     *config.GameConfig
	GamesDir   string
	Games      int
	Concurrent int
	Seed       int64
	Poll       poll.Settings
	Recorder   arbiter.Recorder
	Logger     logger.Logger
	// NewDecider builds a player's decider; scripted deciders by default.
	NewDecider func(p game.Player, seed int64) agent.Decider
}

type GameResult struct {
	GameId   string
	Dir      string
	Winner   game.Faction
	Duration time.Duration
}

type Summary struct {
	Results []GameResult
	Wins    map[game.Faction]int
}

func (o *Options) applyDefaults() {
	if o.Games <= 0 {
		o.Games = 1
	}
	if o.Concurrent <= 0 {
		o.Concurrent = 1
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	if o.NewDecider == nil {
		o.NewDecider = func(_ game.Player, seed int64) agent.Decider {
			return agent.NewScriptedDecider(seed)
		}
	}
	o.Poll = o.Poll.Normalized()
}

// GameId names the i-th game of a run.
func GameId(i int) string {
	return fmt.Sprintf("%04d", i)
}

// Run plays opts.Games games, at most opts.Concurrent at a time, and counts
// the winners.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("sim: a game config is required")
	}
	opts.applyDefaults()
	summary := &Summary{
		Results: make([]GameResult, opts.Games),
		Wins:    make(map[game.Faction]int),
	}
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrent)
	for i := 0; i < opts.Games; i++ {
		g.Go(func() error {
			id := GameId(i)
			dir := store.Open(filepath.Join(opts.GamesDir, id))
			result, err := RunGame(ctx, dir, id, opts.Seed+int64(i)*1000, opts)
			if err != nil {
				return fmt.Errorf("sim: game %s: %w", id, err)
			}
			mu.Lock()
			defer mu.Unlock()
			summary.Results[i] = result
			summary.Wins[result.Winner]++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

// RunGame prepares dir and plays one game in it.
func RunGame(ctx context.Context, dir *store.Dir, id string, seed int64, opts Options) (GameResult, error) {
	opts.applyDefaults()
	started := time.Now()
	log := opts.Logger.With("game", id)
	if err := dir.Prepare(opts.Config); err != nil {
		return GameResult{}, err
	}
	arb, err := arbiter.New(dir,
		arbiter.WithGameID(id),
		arbiter.WithLogger(log),
		arbiter.WithPoll(opts.Poll),
		arbiter.WithRecorder(opts.Recorder),
	)
	if err != nil {
		return GameResult{}, err
	}
	var agents []*agent.Agent
	for i, p := range opts.Config.GamePlayers() {
		playerSeed := seed + int64(i)
		a, err := agent.New(dir, p.Name, opts.NewDecider(p, playerSeed),
			agent.WithLogger(log),
			agent.WithPoll(opts.Poll),
			agent.WithRand(rand.New(rand.NewSource(playerSeed))),
		)
		if err != nil {
			return GameResult{}, err
		}
		if err := a.Join(); err != nil {
			return GameResult{}, err
		}
		agents = append(agents, a)
	}

	g, ctx := errgroup.WithContext(ctx)
	var winner game.Faction
	g.Go(func() error {
		w, err := arb.Run(ctx)
		winner = w
		return err
	})
	for _, a := range agents {
		g.Go(func() error {
			_, err := a.Run(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return GameResult{}, err
	}
	log.Info("game finished", "winner", winner, "duration", time.Since(started).String())
	return GameResult{GameId: id, Dir: dir.Root(), Winner: winner, Duration: time.Since(started)}, nil
}
