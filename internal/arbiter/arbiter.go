// Package arbiter owns the authoritative side of a game: it opens and closes
// daytime and nighttime, moves player mailboxes into the public logs, resolves
// votes, eliminates players and records the winner.
package arbiter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/anchal00/llmafia/internal/poll"
	"github.com/anchal00/llmafia/internal/store"
	set "github.com/hashicorp/go-set/v3"
)

var ErrNoPlayers = errors.New("arbiter: no players configured")

// Recorder archives game results. Failures are logged and never stop a game.
type Recorder interface {
	RecordElimination(gameID string, e game.Elimination) error
	RecordOutcome(gameID string, winner game.Faction, at time.Time) error
}

type Arbiter struct {
	dir      *store.Dir
	cfg      *config.GameConfig
	gameID   string
	logger   logger.Logger
	clock    func() time.Time
	poll     poll.Settings
	recorder Recorder
	observer func(game.Phase)

	seats []*seat
	round int
}

// seat is the arbiter's view of one remaining player.
type seat struct {
	player  game.Player
	mailbox store.Mailbox
	chat    *store.Cursor
	vote    *store.Cursor
}

type Option func(*Arbiter)

func WithLogger(l logger.Logger) Option {
	return func(a *Arbiter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock sets the clock used for message timestamps.
func WithClock(clock func() time.Time) Option {
	return func(a *Arbiter) {
		if clock != nil {
			a.clock = clock
		}
	}
}

func WithPoll(s poll.Settings) Option {
	return func(a *Arbiter) {
		a.poll = s.Normalized()
	}
}

func WithRecorder(r Recorder) Option {
	return func(a *Arbiter) {
		a.recorder = r
	}
}

// WithPhaseObserver is told about every phase the arbiter enters.
func WithPhaseObserver(fn func(game.Phase)) Option {
	return func(a *Arbiter) {
		a.observer = fn
	}
}

// WithGameID overrides the id used for archiving, which defaults to the game
// directory name.
func WithGameID(id string) Option {
	return func(a *Arbiter) {
		if id = strings.TrimSpace(id); id != "" {
			a.gameID = id
		}
	}
}

// New loads the game's config from dir and seats every remaining player.
func New(dir *store.Dir, opts ...Option) (*Arbiter, error) {
	cfg, err := dir.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("arbiter: %w", err)
	}
	a := &Arbiter{
		dir:    dir,
		cfg:    cfg,
		gameID: filepath.Base(dir.Root()),
		logger: logger.Discard(),
		clock:  time.Now,
		poll:   poll.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(a)
	}
	remaining, err := dir.RemainingPlayers().ReadLines()
	if err != nil {
		return nil, fmt.Errorf("arbiter: %w", err)
	}
	for _, p := range cfg.GamePlayers() {
		if len(remaining) > 0 && !slices.Contains(remaining, p.Name) {
			continue
		}
		mb := dir.Mailbox(p.Name)
		a.seats = append(a.seats, &seat{
			player:  p,
			mailbox: mb,
			chat:    mb.Chat.Cursor(),
			vote:    mb.Vote.Cursor(),
		})
	}
	if len(a.seats) == 0 {
		return nil, ErrNoPlayers
	}
	return a, nil
}

// Run drives the game from waiting-for-join to a winner.
func (a *Arbiter) Run(ctx context.Context) (game.Faction, error) {
	a.enter(game.PhaseWaitingForJoin)
	if err := a.waitForPlayers(ctx); err != nil {
		return game.FactionNone, err
	}
	phase := game.PhaseDaytime
	for {
		if winner, over := game.Winner(a.players()); over {
			return winner, a.conclude(winner)
		}
		if phase == game.PhaseDaytime {
			a.round++
		}
		if err := a.runPhase(ctx, phase); err != nil {
			return game.FactionNone, err
		}
		phase = phase.Next().Next()
	}
}

// Players returns the remaining players in roster order.
func (a *Arbiter) Players() []game.Player {
	return a.players()
}

func (a *Arbiter) players() []game.Player {
	players := make([]game.Player, len(a.seats))
	for i, s := range a.seats {
		players[i] = s.player
	}
	return players
}

func (a *Arbiter) waitForPlayers(ctx context.Context) error {
	pending := set.From(game.Names(a.players()))
	a.logger.Info("waiting for players to join", "players", strings.Join(game.Names(a.players()), ", "))
	err := poll.Until(ctx, a.poll, func() (bool, error) {
		for _, s := range a.seats {
			if !pending.Contains(s.player.Name) {
				continue
			}
			status, err := s.mailbox.Status.Read()
			if err != nil {
				return false, err
			}
			if status != "" {
				pending.Remove(s.player.Name)
				a.logger.Info("player joined", "player", s.player.Name)
			}
		}
		return pending.Empty(), nil
	})
	if err != nil {
		return fmt.Errorf("arbiter: wait for players: %w", err)
	}
	if err := a.dir.GameStartTime().Write(a.now().Format(game.TimestampLayout)); err != nil {
		return err
	}
	return a.announce(fmt.Sprintf(game.GameStartFormat, strings.Join(game.Names(a.players()), ", ")))
}

// runPhase runs one speaking phase followed by its voting sub-phase.
func (a *Arbiter) runPhase(ctx context.Context, phase game.Phase) error {
	if err := a.setPhase(phase); err != nil {
		return err
	}
	length, minutes := a.cfg.DaytimeDuration(), a.cfg.DaytimeMinutes
	format := game.DaytimeStartFormat
	if phase.IsNighttime() {
		length, minutes = a.cfg.NighttimeDuration(), a.cfg.NighttimeMinutes
		format = game.NighttimeStartFormat
	}
	if err := a.announce(fmt.Sprintf(format, game.FormatMinutes(minutes))); err != nil {
		return err
	}
	speakers := 0
	for _, s := range a.seats {
		if s.player.CanSpeak(phase) {
			speakers++
		}
	}
	if speakers > 1 {
		if err := a.runChat(ctx, phase, length); err != nil {
			return err
		}
	} else if err := a.announce(game.CuttingToVoteMessage); err != nil {
		return err
	}
	return a.runVoting(ctx, phase.Voting())
}

// runChat keeps moving chat mailboxes into the phase's public log until the
// phase timer runs out.
func (a *Arbiter) runChat(ctx context.Context, phase game.Phase, length time.Duration) error {
	deadline := time.Now().Add(length)
	for {
		if err := a.drainChats(phase); err != nil {
			return err
		}
		left := time.Until(deadline)
		if left <= 0 {
			return nil
		}
		if err := poll.Sleep(ctx, min(a.poll.Interval, left)); err != nil {
			return err
		}
	}
}

// drainChats appends every pending chat line to the public log, visiting
// players in roster order. Lines from players who may not speak in phase are
// consumed and dropped.
func (a *Arbiter) drainChats(phase game.Phase) error {
	out := a.dir.PhaseChat(phase)
	for _, s := range a.seats {
		lines, err := s.chat.Next()
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			continue
		}
		if !s.player.CanSpeak(phase.Base()) {
			a.logger.Warn("dropping chat from ineligible player", "player", s.player.Name, "phase", phase, "lines", len(lines))
			continue
		}
		for _, line := range lines {
			if err := out.Append(line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Arbiter) setPhase(phase game.Phase) error {
	if err := a.dir.PhaseStatus().Write(string(phase)); err != nil {
		return err
	}
	a.enter(phase)
	return nil
}

func (a *Arbiter) enter(phase game.Phase) {
	a.logger.Info("entering phase", "phase", phase.String(), "round", a.round)
	if a.observer != nil {
		a.observer(phase)
	}
}

// announce appends a game manager line to the manager log.
func (a *Arbiter) announce(text string) error {
	return a.say(a.dir.ManagerChat(), text)
}

func (a *Arbiter) say(log *store.Log, text string) error {
	return log.Append(game.FormatMessage(a.now(), game.ManagerName, text))
}

func (a *Arbiter) conclude(winner game.Faction) error {
	a.logger.Info("game over", "winner", winner)
	if err := a.announce(fmt.Sprintf(game.WinnerFormat, winner.OutcomeMessage())); err != nil {
		return err
	}
	if err := a.dir.WhoWins().Write(winner.OutcomeMessage()); err != nil {
		return err
	}
	phase, err := a.dir.Phase()
	if err != nil {
		return err
	}
	if err := a.dir.PhaseStatus().Write(string(phase.Base())); err != nil {
		return err
	}
	a.enter(game.PhaseConcluded)
	if a.recorder != nil {
		if err := a.recorder.RecordOutcome(a.gameID, winner, a.now()); err != nil {
			a.logger.Error("failed to archive outcome", err, "game", a.gameID)
		}
	}
	return nil
}

func (a *Arbiter) now() time.Time {
	if a.clock == nil {
		return time.Now()
	}
	return a.clock()
}
