package arbiter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/poll"
	set "github.com/hashicorp/go-set/v3"
)

// runVoting opens the voting sub-phase, collects one vote per eligible player
// and eliminates the leading candidate.
func (a *Arbiter) runVoting(ctx context.Context, phase game.Phase) error {
	base := phase.Base()
	voters, candidates := a.ballot(phase)

	// Anything still in a vote mailbox predates this sub-phase.
	for _, s := range voters {
		if err := s.vote.Skip(); err != nil {
			return err
		}
	}
	notice := game.DaytimeVotingMessage
	if base.IsNighttime() {
		notice = game.NighttimeVotingMessage
	}
	if err := a.say(a.dir.PhaseChat(base), notice); err != nil {
		return err
	}
	if err := a.setPhase(phase); err != nil {
		return err
	}
	// Contributions that raced the phase flip still belong to the chat.
	if err := a.drainChats(base); err != nil {
		return err
	}

	tally, err := a.collectVotes(ctx, phase, voters, candidates)
	if err != nil {
		return err
	}
	leader, ok := tally.Leader()
	if !ok {
		return fmt.Errorf("arbiter: no candidates in %s", phase)
	}
	return a.eliminate(leader, phase, tally.Count(leader))
}

// ballot returns who votes in phase and who can be voted out. At night only
// mafia vote and only bystanders can be killed.
func (a *Arbiter) ballot(phase game.Phase) ([]*seat, []string) {
	var voters []*seat
	var candidates []string
	for _, s := range a.seats {
		if s.player.CanVote(phase) {
			voters = append(voters, s)
		}
		if !phase.IsNighttime() || !s.player.IsMafia {
			candidates = append(candidates, s.player.Name)
		}
	}
	return voters, candidates
}

// collectVotes drains vote mailboxes until every voter has voted. A voter is
// never polled again once its vote was read. With a voting timeout configured,
// voters still pending when it expires abstain.
func (a *Arbiter) collectVotes(ctx context.Context, phase game.Phase, voters []*seat, candidates []string) (*game.Tally, error) {
	tally := game.NewTally(candidates)
	eligible := set.From(candidates)
	pending := set.New[string](len(voters))
	for _, s := range voters {
		pending.Insert(s.player.Name)
	}
	out := a.dir.PhaseChat(phase.Base())
	timeout := a.cfg.VotingTimeout.Std()
	started := time.Now()
	p := poll.New(a.poll)
	for !pending.Empty() {
		progressed := false
		for _, s := range voters {
			if !pending.Contains(s.player.Name) {
				continue
			}
			lines, err := s.vote.Next()
			if err != nil {
				return nil, err
			}
			vote, ok := firstVote(lines)
			if !ok {
				continue
			}
			pending.Remove(s.player.Name)
			progressed = true
			if len(lines) > 1 {
				a.logger.Warn("ignoring extra votes", "player", s.player.Name, "votes", len(lines))
			}
			if vote == s.player.Name || !eligible.Contains(vote) {
				a.logger.Warn("invalid vote counted as abstention", "player", s.player.Name, "vote", vote, "phase", phase)
				continue
			}
			tally.Add(vote)
			if err := a.say(out, fmt.Sprintf(game.VoteFormat, s.player.Name, vote)); err != nil {
				return nil, err
			}
		}
		if pending.Empty() {
			break
		}
		if timeout > 0 && time.Since(started) >= timeout {
			for _, s := range voters {
				if !pending.Contains(s.player.Name) {
					continue
				}
				a.logger.Warn("voter timed out", "player", s.player.Name, "phase", phase)
				if err := a.announce(fmt.Sprintf(game.AbstainedFormat, s.player.Name)); err != nil {
					return nil, err
				}
			}
			break
		}
		if progressed {
			p.Reset()
		}
		if err := p.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return tally, nil
}

func firstVote(lines []string) (string, bool) {
	for _, line := range lines {
		if vote := strings.TrimSpace(line); vote != "" {
			return vote, true
		}
	}
	return "", false
}

// eliminate removes name from the game and announces it.
func (a *Arbiter) eliminate(name string, phase game.Phase, votes int) error {
	idx := -1
	for i, s := range a.seats {
		if s.player.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("arbiter: cannot eliminate %q: not in the game", name)
	}
	out := a.seats[idx]
	a.seats = append(a.seats[:idx], a.seats[idx+1:]...)

	if err := out.mailbox.Status.Write(game.VotedOutMarker); err != nil {
		return err
	}
	if err := a.dir.RemainingPlayers().WriteLines(game.Names(a.players())); err != nil {
		return err
	}
	mafiaLeft := len(game.Mafia(a.players()))
	a.logger.Info("player eliminated", "player", name, "role", out.player.Role(), "votes", votes, "mafia_left", mafiaLeft)
	if err := a.announce(fmt.Sprintf(game.VotedOutFormat, name, out.player.Role(), mafiaLeft)); err != nil {
		return err
	}
	if a.recorder != nil {
		e := game.Elimination{Round: a.round, Phase: phase, Player: out.player, Votes: votes, At: a.now()}
		if err := a.recorder.RecordElimination(a.gameID, e); err != nil {
			a.logger.Error("failed to archive elimination", err, "game", a.gameID, "player", name)
		}
	}
	return nil
}
