package db

import (
	"testing"
	"time"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/stretchr/testify/suite"
)

type RepositoryTestSuite struct {
	suite.Suite
	store *SqliteStore
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.store = &SqliteStore{Logger: logger.Discard()}
	suite.Require().NoError(suite.store.SetupConnection(memoryDB))
}

func (suite *RepositoryTestSuite) TearDownTest() {
	suite.store.CloseConnection()
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

var roster = []config.PlayerConfig{
	{Name: "alice", IsLLM: true},
	{Name: "bob"},
	{Name: "mallory", IsMafia: true, IsLLM: true},
}

func (suite *RepositoryTestSuite) TestCreateGame() {
	suite.Require().NoError(suite.store.CreateGame("abcdef", "/games/abcdef", roster))

	record := suite.store.GetGameById("abcdef")
	suite.Require().NotNil(record)
	suite.Equal("/games/abcdef", record.GameDir)
	suite.Equal(3, record.PlayerCount)
	suite.Empty(record.Winner)

	players, err := suite.store.GetGamePlayers("abcdef")
	suite.NoError(err)
	suite.Equal([]Player{
		{Name: "alice", GameId: "abcdef", IsLLM: true},
		{Name: "bob", GameId: "abcdef"},
		{Name: "mallory", GameId: "abcdef", IsMafia: true, IsLLM: true},
	}, players)
}

func (suite *RepositoryTestSuite) TestCreateGameRollsBack() {
	duplicate := append([]config.PlayerConfig{}, roster...)
	duplicate = append(duplicate, config.PlayerConfig{Name: "bob"})
	suite.Error(suite.store.CreateGame("abcdef", "/games/abcdef", duplicate))
	suite.Nil(suite.store.GetGameById("abcdef"))
}

func (suite *RepositoryTestSuite) TestUnknownGame() {
	suite.Nil(suite.store.GetGameById("nope"))
	players, err := suite.store.GetGamePlayers("nope")
	suite.NoError(err)
	suite.Empty(players)
}

func (suite *RepositoryTestSuite) TestRecordResults() {
	suite.Require().NoError(suite.store.CreateGame("abcdef", "/games/abcdef", roster))
	at := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.store.RecordElimination("abcdef", game.Elimination{
		Round: 1, Phase: game.PhaseDaytimeVoting, Player: game.Player{Name: "alice"}, Votes: 2, At: at,
	}))
	suite.Require().NoError(suite.store.RecordElimination("abcdef", game.Elimination{
		Round: 1, Phase: game.PhaseNighttimeVoting, Player: game.Player{Name: "bob"}, Votes: 1, At: at.Add(time.Minute),
	}))
	suite.Require().NoError(suite.store.RecordOutcome("abcdef", game.FactionMafia, at.Add(time.Minute)))

	eliminations, err := suite.store.GetEliminations("abcdef")
	suite.NoError(err)
	suite.Require().Len(eliminations, 2)
	suite.Equal("alice", eliminations[0].Player)
	suite.Equal("bystander", eliminations[0].Role)
	suite.Equal("Nighttime voting", eliminations[1].Phase)

	record := suite.store.GetGameById("abcdef")
	suite.Require().NotNil(record)
	suite.Equal("mafia", record.Winner)
	suite.Equal("2024-03-01T20:01:00Z", record.ConcludedAt)
	suite.Equal("/games/abcdef", record.GameDir, "the outcome keeps the existing row")
}

func (suite *RepositoryTestSuite) TestOutcomeForUnregisteredGame() {
	at := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.store.RecordOutcome("sim-0001", game.FactionBystanders, at))
	suite.Require().NoError(suite.store.RecordOutcome("sim-0002", game.FactionBystanders, at))
	suite.Require().NoError(suite.store.RecordOutcome("sim-0003", game.FactionMafia, at))
	suite.Require().NoError(suite.store.CreateGame("running", "/games/running", roster))

	wins, err := suite.store.CountWins()
	suite.NoError(err)
	suite.Equal(map[game.Faction]int{game.FactionBystanders: 2, game.FactionMafia: 1}, wins)
}
