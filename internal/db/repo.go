package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/jmoiron/sqlx"
)

const memoryDB = ":memory:"

var schema = `CREATE TABLE IF NOT EXISTS games (
  game_id varchar(32) PRIMARY KEY,
  game_dir varchar NOT NULL DEFAULT '',
  player_count int NOT NULL DEFAULT 0,
  created_at varchar NOT NULL,
  winner varchar NOT NULL DEFAULT '',
  concluded_at varchar NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS players (
  name varchar(32) NOT NULL,
  game_id varchar(32) REFERENCES games(game_id) ON DELETE CASCADE,
  is_mafia boolean NOT NULL DEFAULT false,
  is_llm boolean NOT NULL DEFAULT false,
  PRIMARY KEY (name, game_id),

  CONSTRAINT non_empty_player CHECK (TRIM(name) <> '')
);

CREATE TABLE IF NOT EXISTS eliminations (
  game_id varchar(32) NOT NULL,
  player varchar(32) NOT NULL,
  role varchar(16) NOT NULL,
  round int NOT NULL,
  phase varchar(32) NOT NULL,
  votes int NOT NULL,
  eliminated_at varchar NOT NULL,
  PRIMARY KEY (game_id, player)
);`

type SqliteStore struct {
	Conn   *sqlx.DB
	Logger logger.Logger
}

// SetupConnection opens <dbname>.db, or a private in-memory database for
// ":memory:", and applies the schema.
func (s *SqliteStore) SetupConnection(dbname string) error {
	sqliteDBFile := dbname + ".db"
	if dbname == memoryDB {
		sqliteDBFile = dbname
	}
	db, err := sqlx.Connect("sqlite3", sqliteDBFile)
	if err != nil {
		s.Logger.Error("Database setup failed", err)
		return err
	}
	if dbname == memoryDB {
		db.SetMaxOpenConns(1)
	}
	s.Conn = db
	if _, err := s.Conn.Exec(schema); err != nil {
		s.Logger.Error("Failed to apply schema", err)
		return err
	}
	s.Logger.Info(fmt.Sprintf("Database %s setup successfully", sqliteDBFile))
	return nil
}

func (s *SqliteStore) CloseConnection() {
	s.Logger.Info("Closing database connection")
	if err := s.Conn.Close(); err != nil {
		s.Logger.Error("Failed to tear down database connection", err)
		return
	}
	s.Logger.Info("Database connection closed successfully")
}

func (s *SqliteStore) CreateGame(gameId, gameDir string, players []config.PlayerConfig) error {
	txn, err := s.Conn.Beginx()
	if err != nil {
		s.Logger.Error("Failed to create new game", err)
		return err
	}
	createGameSQL := `INSERT INTO games(game_id, game_dir, player_count, created_at) VALUES(?, ?, ?, ?);`
	_, err = txn.Exec(createGameSQL, gameId, gameDir, len(players), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		s.Logger.Error("Failed to create new game", err)
		return s.rollback(txn, "CreateGame", err)
	}
	insertPlayerSQL := `INSERT INTO players(name, game_id, is_mafia, is_llm) VALUES(?, ?, ?, ?);`
	for _, p := range players {
		if _, err := txn.Exec(insertPlayerSQL, p.Name, gameId, p.IsMafia, p.IsLLM); err != nil {
			s.Logger.Error("Failed to save player", err, "player", p.Name)
			return s.rollback(txn, "CreateGame", err)
		}
	}
	if err := txn.Commit(); err != nil {
		s.Logger.Error("Failed to Commit CreateGame txn", err)
		return err
	}
	s.Logger.Info(fmt.Sprintf("Game %s created successfully", gameId))
	return nil
}

func (s *SqliteStore) rollback(txn *sqlx.Tx, op string, cause error) error {
	if errRoll := txn.Rollback(); errRoll != nil {
		s.Logger.Error(fmt.Sprintf("Failed to rollback %s txn", op), errRoll)
		return errRoll
	}
	return cause
}

func (s *SqliteStore) GetGameById(gameId string) *Game {
	sql := `SELECT game_id, game_dir, player_count, created_at, winner, concluded_at FROM games WHERE game_id = ?;`
	s.Logger.Debug(fmt.Sprintf("Fetching game %s", gameId))
	record := &Game{}
	err := s.Conn.Get(record, sql, gameId)
	if err != nil {
		s.Logger.Error("Failed to fetch game", err, "game", gameId)
		return nil
	}
	return record
}

func (s *SqliteStore) GetGamePlayers(gameId string) ([]Player, error) {
	players := []Player{}
	sql := `SELECT name, game_id, is_mafia, is_llm FROM players WHERE game_id = ? ORDER BY rowid;`
	if err := s.Conn.Select(&players, sql, gameId); err != nil {
		return nil, err
	}
	return players, nil
}

func (s *SqliteStore) GetEliminations(gameId string) ([]Elimination, error) {
	eliminations := []Elimination{}
	sql := `SELECT game_id, player, role, round, phase, votes, eliminated_at
FROM eliminations WHERE game_id = ? ORDER BY eliminated_at, rowid;`
	if err := s.Conn.Select(&eliminations, sql, gameId); err != nil {
		return nil, err
	}
	return eliminations, nil
}

func (s *SqliteStore) RecordElimination(gameId string, e game.Elimination) error {
	sql := `INSERT INTO eliminations(game_id, player, role, round, phase, votes, eliminated_at)
VALUES(?, ?, ?, ?, ?, ?, ?);`
	_, err := s.Conn.Exec(sql, gameId, e.Player.Name, string(e.Player.Role()), e.Round, string(e.Phase), e.Votes,
		e.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		s.Logger.Error("Failed to record elimination", err, "game", gameId, "player", e.Player.Name)
		return err
	}
	return nil
}

// RecordOutcome stores the winner, creating the game row for games that were
// prepared without going through the server.
func (s *SqliteStore) RecordOutcome(gameId string, winner game.Faction, at time.Time) error {
	sql := `INSERT INTO games(game_id, created_at, winner, concluded_at) VALUES(?, ?, ?, ?)
ON CONFLICT(game_id) DO UPDATE SET winner = excluded.winner, concluded_at = excluded.concluded_at;`
	stamp := at.UTC().Format(time.RFC3339)
	if _, err := s.Conn.Exec(sql, gameId, stamp, string(winner), stamp); err != nil {
		s.Logger.Error("Failed to record outcome", err, "game", gameId)
		return err
	}
	s.Logger.Info(fmt.Sprintf("Game %s won by %s", gameId, winner))
	return nil
}

func (s *SqliteStore) CountWins() (map[game.Faction]int, error) {
	rows := []struct {
		Winner string `db:"winner"`
		Count  int    `db:"count"`
	}{}
	sql := `SELECT winner, COUNT(*) AS count FROM games WHERE winner <> '' GROUP BY winner;`
	if err := s.Conn.Select(&rows, sql); err != nil {
		return nil, err
	}
	wins := make(map[game.Faction]int, len(rows))
	for _, r := range rows {
		wins[game.Faction(strings.TrimSpace(r.Winner))] = r.Count
	}
	return wins, nil
}
