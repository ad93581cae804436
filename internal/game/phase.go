package game

import (
	"errors"
	"fmt"
	"strings"
)

// Phase is the value held by the shared phase register. Voting sub-phases are
// the base phase name followed by VotingSuffix.
type Phase string

const (
	PhaseWaitingForJoin  Phase = ""
	PhaseDaytime         Phase = "Daytime"
	PhaseDaytimeVoting   Phase = "Daytime" + VotingSuffix
	PhaseNighttime       Phase = "Nighttime"
	PhaseNighttimeVoting Phase = "Nighttime" + VotingSuffix
	// PhaseConcluded never reaches the register; the arbiter reports it to
	// observers once the outcome is written.
	PhaseConcluded Phase = "Concluded"

	VotingSuffix = " voting"
)

var ErrUnknownPhase = errors.New("game: unknown phase")

// ParsePhase reads a raw register value. An empty register means the game has
// not started yet.
func ParsePhase(raw string) (Phase, error) {
	p := Phase(strings.TrimSpace(raw))
	switch p {
	case PhaseWaitingForJoin, PhaseDaytime, PhaseDaytimeVoting,
		PhaseNighttime, PhaseNighttimeVoting, PhaseConcluded:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPhase, raw)
}

func (p Phase) IsVoting() bool {
	return strings.HasSuffix(string(p), VotingSuffix)
}

func (p Phase) IsNighttime() bool {
	return p.Base() == PhaseNighttime
}

// Base strips the voting suffix.
func (p Phase) Base() Phase {
	return Phase(strings.TrimSuffix(string(p), VotingSuffix))
}

// Voting returns the voting sub-phase of a speaking phase.
func (p Phase) Voting() Phase {
	if p.IsVoting() || p == PhaseWaitingForJoin || p == PhaseConcluded {
		return p
	}
	return p + VotingSuffix
}

// Next is the phase the state machine moves to once p is over, ignoring the
// win check.
func (p Phase) Next() Phase {
	switch p {
	case PhaseWaitingForJoin:
		return PhaseDaytime
	case PhaseDaytime:
		return PhaseDaytimeVoting
	case PhaseDaytimeVoting:
		return PhaseNighttime
	case PhaseNighttime:
		return PhaseNighttimeVoting
	case PhaseNighttimeVoting:
		return PhaseDaytime
	default:
		return PhaseConcluded
	}
}

func (p Phase) String() string {
	if p == PhaseWaitingForJoin {
		return "WaitingForJoin"
	}
	return string(p)
}
