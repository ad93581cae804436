package game

import "slices"

type Role string

const (
	RoleMafia     Role = "mafia"
	RoleBystander Role = "bystander"
	RoleUnknown   Role = "unknown"
)

func RoleOf(isMafia bool) Role {
	if isMafia {
		return RoleMafia
	}
	return RoleBystander
}

// Player is one participant. Role never changes during a game.
type Player struct {
	Name    string
	IsMafia bool
	IsLLM   bool
}

func (p Player) Role() Role {
	return RoleOf(p.IsMafia)
}

// CanSpeak reports whether p may contribute to the chat of phase.
func (p Player) CanSpeak(phase Phase) bool {
	if phase.IsVoting() || phase == PhaseWaitingForJoin || phase == PhaseConcluded {
		return false
	}
	return p.IsMafia || !phase.IsNighttime()
}

// CanVote reports whether p takes part in the voting sub-phase.
func (p Player) CanVote(phase Phase) bool {
	if !phase.IsVoting() {
		return false
	}
	return p.IsMafia || !phase.IsNighttime()
}

func Names(players []Player) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return names
}

func Mafia(players []Player) []Player {
	var out []Player
	for _, p := range players {
		if p.IsMafia {
			out = append(out, p)
		}
	}
	return out
}

func Bystanders(players []Player) []Player {
	var out []Player
	for _, p := range players {
		if !p.IsMafia {
			out = append(out, p)
		}
	}
	return out
}

// VisibleRole is what viewer may know about target: mafia know every role,
// and anyone's role is public once they are out of the game.
func VisibleRole(viewer, target Player, remaining []string) Role {
	if viewer.Name == target.Name || viewer.IsMafia || !slices.Contains(remaining, target.Name) {
		return target.Role()
	}
	return RoleUnknown
}
