package sim

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/anchal00/llmafia/internal/agent"
	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/poll"
	"github.com/anchal00/llmafia/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.GameConfig {
	cfg := &config.GameConfig{
		DaytimeMinutes:   0.001,
		NighttimeMinutes: 0.001,
		Players: []config.PlayerConfig{
			{Name: "alice"}, {Name: "bob"}, {Name: "carol"}, {Name: "dave"},
			{Name: "mallory", IsMafia: true}, {Name: "mike", IsMafia: true},
		},
	}
	require.NoError(t, cfg.Prepare())
	return cfg
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	root := t.TempDir()
	summary, err := Run(ctx, Options{
		Config:     testConfig(t),
		GamesDir:   root,
		Games:      3,
		Concurrent: 2,
		Seed:       42,
		Poll:       poll.Settings{Interval: 2 * time.Millisecond, MaxInterval: 10 * time.Millisecond},
	})
	require.NoError(t, err)

	total := 0
	for faction, n := range summary.Wins {
		assert.NotEqual(t, game.FactionNone, faction)
		total += n
	}
	assert.Equal(t, 3, total)

	for i, result := range summary.Results {
		assert.Equal(t, GameId(i), result.GameId)
		dir := store.Open(result.Dir)
		outcome, err := dir.Outcome()
		require.NoError(t, err)
		assert.Equal(t, result.Winner, outcome)

		phase, err := dir.Phase()
		require.NoError(t, err)
		assert.False(t, phase.IsVoting(), "the voting suffix is stripped at the end")

		manager, err := dir.ManagerChat().Lines()
		require.NoError(t, err)
		require.NotEmpty(t, manager)
		assert.Contains(t, manager[0], "The game has started.")
		assert.True(t, strings.HasSuffix(manager[len(manager)-1], "The game is over. "+outcome.OutcomeMessage()))
	}
}

func TestRunGameAlternatesPhases(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	dir := store.Open(t.TempDir())
	// Bystanders always vote for a mafia player, mafia always for a bystander.
	opts := Options{
		Config: testConfig(t),
		Poll:   poll.Settings{Interval: 2 * time.Millisecond, MaxInterval: 10 * time.Millisecond},
		NewDecider: func(p game.Player, seed int64) agent.Decider {
			d := agent.NewScriptedDecider(seed)
			d.VoteFunc = func(_ agent.View, candidates []string) string {
				for _, c := range candidates {
					if strings.HasPrefix(c, "m") != p.IsMafia {
						return c
					}
				}
				return candidates[0]
			}
			return d
		},
	}
	result, err := RunGame(ctx, dir, "0000", 1, opts)
	require.NoError(t, err)
	assert.Equal(t, game.FactionBystanders, result.Winner)

	manager, err := dir.ManagerChat().Lines()
	require.NoError(t, err)
	var starts []string
	for _, line := range manager {
		msg, ok := game.ParseMessage(line)
		require.True(t, ok, line)
		switch {
		case strings.HasPrefix(msg.Text, "Now it's Daytime"):
			starts = append(starts, "day")
		case strings.HasPrefix(msg.Text, "Now it's Nighttime"):
			starts = append(starts, "night")
		}
	}
	assert.Equal(t, []string{"day", "night", "day"}, starts)

	remaining, err := dir.RemainingPlayers().ReadLines()
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol", "dave"}, remaining)
}

func TestLateVoteIsNotCountedInNextSubPhase(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	dir := store.Open(t.TempDir())
	cfg := &config.GameConfig{
		DaytimeMinutes:   0.001,
		NighttimeMinutes: 0.001,
		VotingTimeout:    config.Duration(250 * time.Millisecond),
		Players: []config.PlayerConfig{
			{Name: "alice"}, {Name: "bob"}, {Name: "carol"}, {Name: "dave"},
			{Name: "mallory", IsMafia: true},
		},
	}
	require.NoError(t, cfg.Prepare())

	opts := Options{
		Config: cfg,
		Poll:   poll.Settings{Interval: 2 * time.Millisecond, MaxInterval: 10 * time.Millisecond},
		NewDecider: func(p game.Player, seed int64) agent.Decider {
			d := agent.NewScriptedDecider(seed)
			if !p.IsMafia {
				d.VoteFunc = func(_ agent.View, candidates []string) string {
					for _, c := range candidates {
						if c == "bob" {
							return c
						}
					}
					return "mallory"
				}
				return d
			}
			calls := 0
			d.VoteFunc = func(_ agent.View, _ []string) string {
				calls++
				switch calls {
				case 1:
					// Outlasts the daytime voting timeout.
					time.Sleep(400 * time.Millisecond)
					return "bob"
				case 2:
					return "carol"
				}
				return "alice"
			}
			return d
		},
	}
	result, err := RunGame(ctx, dir, "0000", 1, opts)
	require.NoError(t, err)
	assert.Equal(t, game.FactionBystanders, result.Winner)

	manager, err := dir.ManagerChat().Lines()
	require.NoError(t, err)
	assert.True(t, containsSuffix(manager, fmt.Sprintf(game.AbstainedFormat, "mallory")))

	night, err := dir.NighttimeChat().Lines()
	require.NoError(t, err)
	assert.True(t, containsSuffix(night, "mallory voted for carol"), night)
	assert.False(t, containsSuffix(night, "mallory voted for bob"), night)

	day, err := dir.DaytimeChat().Lines()
	require.NoError(t, err)
	assert.False(t, containsSuffix(day, "mallory voted for carol"), day)

	diagnostics, err := dir.Mailbox("mallory").Diagnostics.Lines()
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0], "dropping vote for bob")

	remaining, err := dir.RemainingPlayers().ReadLines()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "dave"}, remaining)
}

func containsSuffix(lines []string, suffix string) bool {
	for _, line := range lines {
		if strings.HasSuffix(line, suffix) {
			return true
		}
	}
	return false
}
