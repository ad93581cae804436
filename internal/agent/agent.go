// Package agent is the player side of a game: an independent poll loop that
// follows the public logs, and writes chat contributions and votes into the
// player's own mailbox when the player is allowed to.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/anchal00/llmafia/internal/poll"
	"github.com/anchal00/llmafia/internal/store"
)

var ErrUnknownPlayer = errors.New("agent: player is not in the game config")

// View is what a Decider gets to base a decision on.
type View struct {
	Self      game.Player
	Phase     game.Phase
	StartedAt string
	History   []string
	Remaining []string
	Roster    []RosterEntry
}

// RosterEntry is another player as seen by Self.
type RosterEntry struct {
	Name      string
	Role      game.Role
	Remaining bool
}

// Decider produces the content of a player's turns. Speak returns an empty
// string to pass. Vote may return free text; it is matched against the
// candidates afterwards.
type Decider interface {
	Speak(ctx context.Context, view View) (string, error)
	Vote(ctx context.Context, view View, candidates []string) (string, error)
}

// Result says how a player's game ended.
type Result struct {
	Eliminated bool
	Winner     game.Faction
}

type Agent struct {
	dir        *store.Dir
	self       game.Player
	roster     []game.Player
	decider    Decider
	logger     logger.Logger
	poll       poll.Settings
	rand       *rand.Rand
	clock      func() time.Time
	transcript io.Writer

	mailbox   store.Mailbox
	daytime   *store.Cursor
	manager   *store.Cursor
	nighttime *store.Cursor
	history   []string
	// notices counts the voting notices seen per base phase; voted is the
	// count at this player's last vote. A vote is due while they differ.
	notices map[game.Phase]int
	voted   map[game.Phase]int
}

type Option func(*Agent)

func WithLogger(l logger.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithPoll(s poll.Settings) Option {
	return func(a *Agent) {
		a.poll = s.Normalized()
	}
}

func WithRand(r *rand.Rand) Option {
	return func(a *Agent) {
		if r != nil {
			a.rand = r
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(a *Agent) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithTranscript echoes every new public line to w as it is read.
func WithTranscript(w io.Writer) Option {
	return func(a *Agent) {
		a.transcript = w
	}
}

func New(dir *store.Dir, name string, decider Decider, opts ...Option) (*Agent, error) {
	cfg, err := dir.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	return newAgent(dir, cfg, name, decider, opts...)
}

func newAgent(dir *store.Dir, cfg *config.GameConfig, name string, decider Decider, opts ...Option) (*Agent, error) {
	self, ok := cfg.Player(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
	}
	if decider == nil {
		return nil, fmt.Errorf("agent: decider is required")
	}
	a := &Agent{
		dir:       dir,
		self:      self,
		roster:    cfg.GamePlayers(),
		decider:   decider,
		logger:    logger.Discard(),
		poll:      poll.DefaultSettings(),
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:     time.Now,
		mailbox:   dir.Mailbox(self.Name),
		daytime:   dir.DaytimeChat().Cursor(),
		manager:   dir.ManagerChat().Cursor(),
		nighttime: dir.NighttimeChat().Cursor(),
		notices:   make(map[game.Phase]int),
		voted:     make(map[game.Phase]int),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Agent) Self() game.Player {
	return a.self
}

// Join marks the player as present. The arbiter starts once everyone joined.
func (a *Agent) Join() error {
	return a.mailbox.Status.Write(game.JoinedMarker)
}

// Run follows the game until the player is voted out or a winner is declared.
func (a *Agent) Run(ctx context.Context) (Result, error) {
	if err := a.waitForStart(ctx); err != nil {
		return Result{}, err
	}
	a.logger.Info("game started", "player", a.self.Name, "role", a.self.Role())
	p := poll.New(a.poll)
	for {
		progressed, err := a.pull()
		if err != nil {
			return Result{}, err
		}
		if result, done, err := a.finished(); err != nil || done {
			return result, err
		}
		phase, err := a.dir.Phase()
		if err != nil {
			return Result{}, err
		}
		if due := a.notices[phase.Base()]; a.self.CanVote(phase) && due > a.voted[phase.Base()] {
			if err := a.vote(ctx, phase); err != nil {
				return Result{}, err
			}
			a.voted[phase.Base()] = due
			p.Reset()
			continue
		}
		if a.self.CanSpeak(phase) {
			spoke, err := a.speak(ctx, phase)
			if err != nil {
				return Result{}, err
			}
			progressed = progressed || spoke
		}
		if progressed {
			p.Reset()
		}
		if err := p.Wait(ctx); err != nil {
			return Result{}, err
		}
	}
}

func (a *Agent) waitForStart(ctx context.Context) error {
	return poll.Until(ctx, a.poll, func() (bool, error) {
		started, err := a.dir.GameStartTime().Read()
		return started != "", err
	})
}

// finished reports elimination first, then a declared winner.
func (a *Agent) finished() (Result, bool, error) {
	status, err := a.mailbox.Status.Read()
	if err != nil {
		return Result{}, false, err
	}
	winner, err := a.dir.Outcome()
	if err != nil {
		return Result{}, false, err
	}
	if status == game.VotedOutMarker {
		a.logger.Info("player was eliminated", "player", a.self.Name)
		return Result{Eliminated: true, Winner: winner}, true, nil
	}
	if winner != game.FactionNone {
		a.logger.Info("game ended", "player", a.self.Name, "winner", winner)
		return Result{Winner: winner}, true, nil
	}
	return Result{}, false, nil
}

// pull appends everything new in the public logs this player can see to its
// history.
func (a *Agent) pull() (bool, error) {
	cursors := []*store.Cursor{a.daytime, a.manager}
	if a.self.IsMafia {
		cursors = append(cursors, a.nighttime)
	}
	progressed := false
	for _, c := range cursors {
		lines, err := c.Next()
		if err != nil {
			return false, err
		}
		if len(lines) == 0 {
			continue
		}
		progressed = true
		a.history = append(a.history, lines...)
		for _, line := range lines {
			a.countNotice(line)
		}
		if a.transcript != nil {
			for _, line := range lines {
				fmt.Fprintln(a.transcript, line)
			}
		}
	}
	return progressed, nil
}

func (a *Agent) countNotice(line string) {
	msg, ok := game.ParseMessage(line)
	if !ok || msg.Speaker != game.ManagerName {
		return
	}
	switch msg.Text {
	case game.DaytimeVotingMessage:
		a.notices[game.PhaseDaytime]++
	case game.NighttimeVotingMessage:
		a.notices[game.PhaseNighttime]++
	}
}

// speak asks the decider for a contribution. A contribution is dropped when
// the phase moved on while it was being composed.
func (a *Agent) speak(ctx context.Context, phase game.Phase) (bool, error) {
	view, err := a.view(phase)
	if err != nil {
		return false, err
	}
	message, err := a.decider.Speak(ctx, view)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		a.logger.Warn("decider failed to speak", "player", a.self.Name, "error", err.Error())
		return false, nil
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return false, nil
	}
	current, err := a.dir.Phase()
	if err != nil {
		return false, err
	}
	if current != phase {
		a.logger.Debug("dropping stale message", "player", a.self.Name, "composed_in", phase, "now", current)
		return false, nil
	}
	if err := a.mailbox.Chat.Append(game.FormatMessage(a.now(), a.self.Name, message)); err != nil {
		return false, err
	}
	return true, nil
}

// vote writes at most one vote for the current voting sub-phase. A vote
// decided after that sub-phase closed is dropped: the mailbox carries no
// sub-phase, so the arbiter would count it in the next one.
func (a *Agent) vote(ctx context.Context, phase game.Phase) error {
	notices := a.notices[phase.Base()]
	view, err := a.view(phase)
	if err != nil {
		return err
	}
	candidates := a.candidates(phase, view.Remaining)
	if len(candidates) == 0 {
		a.logger.Warn("nobody to vote for", "player", a.self.Name, "phase", phase)
		return nil
	}
	reply, err := a.decider.Vote(ctx, view, candidates)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn("decider failed to vote", "player", a.self.Name, "error", err.Error())
	}
	choice, ok := MatchCandidate(reply, candidates)
	if !ok {
		choice = candidates[a.rand.Intn(len(candidates))]
		a.diagnose(fmt.Sprintf("invalid vote %q, voting randomly for %s", reply, choice))
	}
	open, err := a.stillOpen(phase, notices)
	if err != nil {
		return err
	}
	if !open {
		a.diagnose(fmt.Sprintf("voting in %s closed before deciding, dropping vote for %s", phase, choice))
		return nil
	}
	a.logger.Info("voting", "player", a.self.Name, "phase", phase, "vote", choice)
	return a.mailbox.Vote.Append(choice)
}

// stillOpen reports whether the voting sub-phase announced by the notices-th
// notice is still the current one.
func (a *Agent) stillOpen(phase game.Phase, notices int) (bool, error) {
	if _, err := a.pull(); err != nil {
		return false, err
	}
	current, err := a.dir.Phase()
	if err != nil {
		return false, err
	}
	return current == phase && a.notices[phase.Base()] == notices, nil
}

// candidates is every remaining player except self; at night mafia leave
// their partners out since only bystanders can be killed.
func (a *Agent) candidates(phase game.Phase, remaining []string) []string {
	var out []string
	for _, name := range remaining {
		if name == a.self.Name {
			continue
		}
		if phase.IsNighttime() {
			if p, ok := a.player(name); ok && p.IsMafia {
				continue
			}
		}
		out = append(out, name)
	}
	return out
}

func (a *Agent) view(phase game.Phase) (View, error) {
	remaining, err := a.dir.RemainingPlayers().ReadLines()
	if err != nil {
		return View{}, err
	}
	started, err := a.dir.GameStartTime().Read()
	if err != nil {
		return View{}, err
	}
	roster := make([]RosterEntry, 0, len(a.roster))
	for _, p := range a.roster {
		if p.Name == a.self.Name {
			continue
		}
		roster = append(roster, RosterEntry{
			Name:      p.Name,
			Role:      game.VisibleRole(a.self, p, remaining),
			Remaining: slices.Contains(remaining, p.Name),
		})
	}
	return View{
		Self:      a.self,
		Phase:     phase,
		StartedAt: started,
		History:   slices.Clone(a.history),
		Remaining: remaining,
		Roster:    roster,
	}, nil
}

func (a *Agent) player(name string) (game.Player, bool) {
	for _, p := range a.roster {
		if p.Name == name {
			return p, true
		}
	}
	return game.Player{}, false
}

// diagnose records something worth inspecting after the game.
func (a *Agent) diagnose(text string) {
	a.logger.Warn(text, "player", a.self.Name)
	if err := a.mailbox.Diagnostics.Append(game.FormatMessage(a.now(), a.self.Name, text)); err != nil {
		a.logger.Error("failed to write diagnostics", err, "player", a.self.Name)
	}
}

func (a *Agent) now() time.Time {
	if a.clock == nil {
		return time.Now()
	}
	return a.clock()
}
