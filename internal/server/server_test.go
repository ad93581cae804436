package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/db"
	dbMock "github.com/anchal00/llmafia/internal/db/mocks"
	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/anchal00/llmafia/internal/parser"
	"github.com/anchal00/llmafia/internal/poll"
	"github.com/anchal00/llmafia/internal/store"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var fastPoll = poll.Settings{Interval: 2 * time.Millisecond, MaxInterval: 10 * time.Millisecond}

type GameServerTestSuite struct {
	suite.Suite
	dbMock   *dbMock.Repository
	gamesDir string
	gs       *GameServer
	server   *httptest.Server
}

func (suite *GameServerTestSuite) SetupTest() {
	suite.dbMock = dbMock.NewRepository(suite.T())
	suite.gamesDir = suite.T().TempDir()
	suite.gs = newGameServer(suite.dbMock, logger.Discard(), "9999", suite.gamesDir, fastPoll)
	suite.server = httptest.NewServer(suite.gs.Router)
}

func (suite *GameServerTestSuite) TearDownTest() {
	suite.server.Close()
	suite.gs.cancel()
	suite.gs.watchers.Wait()
}

func TestGameServerSuite(t *testing.T) {
	suite.Run(t, new(GameServerTestSuite))
}

func ReadResponseBody(response *http.Response) ([]byte, error) {
	bodyReader := response.Body
	bytesRead, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, err
	}
	return bytesRead, nil
}

func (suite *GameServerTestSuite) post(path string, body []byte) *http.Response {
	resp, err := http.Post(suite.server.URL+HTTP_API_V1_PREFIX+path, "application/json", bytes.NewBuffer(body))
	suite.Require().NoError(err)
	return resp
}

func (suite *GameServerTestSuite) get(path string, into any) *http.Response {
	resp, err := http.Get(suite.server.URL + HTTP_API_V1_PREFIX + path)
	suite.Require().NoError(err)
	defer resp.Body.Close()
	if into != nil && resp.StatusCode == http.StatusOK {
		data, err := ReadResponseBody(resp)
		suite.Require().NoError(err)
		suite.Require().NoError(json.Unmarshal(data, into))
	}
	return resp
}

const validGame = `{"daytime_minutes": 2, "players": [
	{"name": "alice"}, {"name": "bob", "is_llm": true}, {"name": "mallory", "is_mafia": true}
]}`

func (suite *GameServerTestSuite) createGame() string {
	suite.dbMock.On("CreateGame", mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).Return(nil).Once()
	resp := suite.post("/game", []byte(validGame))
	defer resp.Body.Close()
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)
	data, err := ReadResponseBody(resp)
	suite.Require().NoError(err)
	created := parser.CreateGameResponse{}
	suite.Require().NoError(json.Unmarshal(data, &created))
	return created.GameId
}

func (suite *GameServerTestSuite) TestCreateNewGame() {
	tests := []struct {
		description        string
		body               string
		dbErr              error
		callsDb            bool
		expectedStatusCode int
	}{
		{"Test with valid new game request", validGame, nil, true, http.StatusCreated},
		{"Test with malformed body", `{"players": `, nil, false, http.StatusBadRequest},
		{"Test without mafia", `{"players": [{"name": "a"}, {"name": "b"}]}`, nil, false, http.StatusBadRequest},
		{"Test with duplicate players", `{"players": [{"name": "m", "is_mafia": true}, {"name": "a"}, {"name": "a"}]}`, nil, false, http.StatusBadRequest},
		{"Test with database failure", validGame, io.ErrUnexpectedEOF, true, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		suite.Run(tc.description, func() {
			if tc.callsDb {
				suite.dbMock.On("CreateGame", mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).Return(tc.dbErr).Once()
			}
			before, _ := os.ReadDir(suite.gamesDir)
			resp := suite.post("/game", []byte(tc.body))
			defer resp.Body.Close()
			suite.Equal(tc.expectedStatusCode, resp.StatusCode)
			after, _ := os.ReadDir(suite.gamesDir)
			if tc.expectedStatusCode != http.StatusCreated {
				suite.Len(after, len(before), "failed requests leave no game directory behind")
				return
			}
			data, err := ReadResponseBody(resp)
			suite.Require().NoError(err)
			created := parser.CreateGameResponse{}
			suite.Require().NoError(json.Unmarshal(data, &created))
			suite.Regexp(`^[a-z]{6}$`, created.GameId)
			suite.Equal(filepath.Join(suite.gamesDir, created.GameId), created.GameDir)
			suite.FileExists(filepath.Join(created.GameDir, config.FileName))
		})
	}
}

func (suite *GameServerTestSuite) TestGetGame() {
	gameId := suite.createGame()
	suite.dbMock.On("GetEliminations", gameId).Return([]db.Elimination{}, nil)

	status := parser.GameStatusResponse{}
	resp := suite.get("/game/"+gameId, &status)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("WaitingForJoin", status.Phase)
	suite.Equal([]string{"alice", "bob", "mallory"}, status.Remaining)
	for _, p := range status.Players {
		suite.Equal(string(game.RoleUnknown), p.Role)
	}

	dir := store.Open(filepath.Join(suite.gamesDir, gameId))
	suite.Require().NoError(dir.PhaseStatus().Write(string(game.PhaseNighttime)))
	suite.Require().NoError(dir.RemainingPlayers().WriteLines([]string{"bob", "mallory"}))
	suite.Require().NoError(dir.WhoWins().Write(game.MafiaWinsMessage))

	status = parser.GameStatusResponse{}
	suite.get("/game/"+gameId, &status)
	suite.Equal("Nighttime", status.Phase)
	suite.Equal("mafia", status.Winner)
	suite.Equal(parser.PlayerStatus{Name: "alice", Role: "bystander", Remaining: false}, status.Players[0])
	suite.Equal(parser.PlayerStatus{Name: "mallory", Role: "mafia", Remaining: true}, status.Players[2])
}

func (suite *GameServerTestSuite) TestGetUnknownGame() {
	resp := suite.get("/game/nosuch", nil)
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *GameServerTestSuite) TestGetStats() {
	suite.dbMock.On("CountWins").Return(map[game.Faction]int{game.FactionMafia: 3, game.FactionBystanders: 1}, nil).Once()
	stats := parser.StatsResponse{}
	resp := suite.get("/stats", &stats)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal(map[string]int{"mafia": 3, "bystanders": 1}, stats.Wins)
}

func (suite *GameServerTestSuite) dial(gameId string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(suite.server.URL, "http") + HTTP_API_V1_PREFIX + "/connect/game/" + gameId
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)
	return conn
}

func (suite *GameServerTestSuite) TestSpectate() {
	gameId := suite.createGame()
	dir := store.Open(filepath.Join(suite.gamesDir, gameId))
	suite.Require().NoError(dir.ManagerChat().Append("[10:00:00] Game-Manager: The game has started."))
	suite.Require().NoError(dir.NighttimeChat().Append("[10:01:00] mallory: kill alice"))

	conn := suite.dial(gameId)
	defer conn.Close()
	suite.Require().NoError(conn.WriteJSON(parser.SpectateRequest{Channels: []string{parser.ChannelManager}}))
	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	frame := parser.SpectatorFrame{}
	suite.Require().NoError(conn.ReadJSON(&frame))
	suite.Equal(parser.SpectatorFrame{Channel: "manager", Line: "[10:00:00] Game-Manager: The game has started."}, frame)

	suite.Require().NoError(dir.ManagerChat().Append("[10:02:00] Game-Manager: The game is over. Mafia wins!"))
	suite.Require().NoError(dir.WhoWins().Write(game.MafiaWinsMessage))
	suite.Require().NoError(conn.ReadJSON(&frame))
	suite.Equal("[10:02:00] Game-Manager: The game is over. Mafia wins!", frame.Line)

	err := conn.ReadJSON(&frame)
	suite.True(websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func (suite *GameServerTestSuite) TestSpectateRejectsUnknownChannel() {
	gameId := suite.createGame()
	conn := suite.dial(gameId)
	defer conn.Close()
	suite.Require().NoError(conn.WriteJSON(map[string]any{"channels": []string{"backstage"}}))
	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	_, _, err := conn.ReadMessage()
	suite.True(websocket.IsCloseError(err, websocket.CloseUnsupportedData), "got %v", err)
}

func (suite *GameServerTestSuite) TestSpectateUnknownGame() {
	url := "ws" + strings.TrimPrefix(suite.server.URL, "http") + HTTP_API_V1_PREFIX + "/connect/game/nosuch"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Error(err)
	suite.Require().NotNil(resp)
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}
