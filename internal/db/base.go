//go:generate mockery --name=Repository --output=./mocks
package db

import (
	"time"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

// Repository archives games and their results. Game directories stay the
// source of truth while a game runs.
type Repository interface {
	SetupConnection(database string) error
	CloseConnection()
	CreateGame(gameId, gameDir string, players []config.PlayerConfig) error
	GetGameById(gameId string) *Game
	GetGamePlayers(gameId string) ([]Player, error)
	GetEliminations(gameId string) ([]Elimination, error)
	RecordElimination(gameId string, e game.Elimination) error
	RecordOutcome(gameId string, winner game.Faction, at time.Time) error
	CountWins() (map[game.Faction]int, error)
}

func SetupDB(dbName string) (Repository, error) {
	var repository Repository = &SqliteStore{
		Logger: logger.New("database"),
	}
	err := repository.SetupConnection(dbName)
	return repository, err
}
