package db

import (
	"time"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/game"
)

// NopRepository stands in when archiving is disabled. Writes are dropped and
// reads find nothing.
type NopRepository struct{}

var _ Repository = NopRepository{}

func (NopRepository) SetupConnection(string) error { return nil }

func (NopRepository) CloseConnection() {}

func (NopRepository) CreateGame(string, string, []config.PlayerConfig) error { return nil }

func (NopRepository) GetGameById(string) *Game { return nil }

func (NopRepository) GetGamePlayers(string) ([]Player, error) { return nil, nil }

func (NopRepository) GetEliminations(string) ([]Elimination, error) { return nil, nil }

func (NopRepository) RecordElimination(string, game.Elimination) error { return nil }

func (NopRepository) RecordOutcome(string, game.Faction, time.Time) error { return nil }

func (NopRepository) CountWins() (map[game.Faction]int, error) {
	return map[game.Faction]int{}, nil
}
