package game

import (
	"fmt"
	"time"
)

type Faction string

const (
	FactionNone       Faction = ""
	FactionMafia      Faction = "mafia"
	FactionBystanders Faction = "bystanders"
)

const (
	MafiaWinsMessage      = "Mafia wins!"
	BystandersWinMessage  = "Bystanders win!"
	outcomeUnknownMessage = "No winner"
)

// Winner evaluates the win conditions over the remaining players. The
// bystander condition is checked first.
func Winner(remaining []Player) (Faction, bool) {
	mafia := len(Mafia(remaining))
	bystanders := len(remaining) - mafia
	if mafia == 0 {
		return FactionBystanders, true
	}
	if mafia >= bystanders {
		return FactionMafia, true
	}
	return FactionNone, false
}

// OutcomeMessage is the text stored in the outcome register.
func (f Faction) OutcomeMessage() string {
	switch f {
	case FactionMafia:
		return MafiaWinsMessage
	case FactionBystanders:
		return BystandersWinMessage
	}
	return outcomeUnknownMessage
}

// ParseOutcome maps outcome register contents back to a faction. Empty means
// the game is still running.
func ParseOutcome(raw string) (Faction, error) {
	switch raw {
	case "":
		return FactionNone, nil
	case MafiaWinsMessage:
		return FactionMafia, nil
	case BystandersWinMessage:
		return FactionBystanders, nil
	}
	return FactionNone, fmt.Errorf("game: unrecognized outcome %q", raw)
}

// Elimination records who left the game in a voting sub-phase.
type Elimination struct {
	Round  int
	Phase  Phase
	Player Player
	Votes  int
	At     time.Time
}
