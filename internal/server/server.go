package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/db"
	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/anchal00/llmafia/internal/parser"
	"github.com/anchal00/llmafia/internal/poll"
	"github.com/anchal00/llmafia/internal/state"
	"github.com/anchal00/llmafia/internal/store"
	"github.com/anchal00/llmafia/internal/utils"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const HTTP_API_V1_PREFIX = "/api/v1"
const GAME_ID_LENGTH = 6

type GameServer struct {
	Db          db.Repository
	Logger      logger.Logger
	port        string
	gamesDir    string
	poll        poll.Settings
	wssUpgrader websocket.Upgrader
	Router      *mux.Router
	States      state.StateStore

	ctx      context.Context
	cancel   context.CancelFunc
	watchers sync.WaitGroup
}

func (s *GameServer) UpgradeToWebsocket(writer http.ResponseWriter, request *http.Request) *websocket.Conn {
	conn, err := s.wssUpgrader.Upgrade(writer, request, nil)
	if err != nil {
		s.Logger.Error("Failed to upgrade to WS connection", err)
		return nil
	}
	return conn
}

func (s *GameServer) ReadRequestBody(request *http.Request) ([]byte, error) {
	bodyReader := request.Body
	bytesRead, err := io.ReadAll(bodyReader)
	if err != nil {
		s.Logger.Error("Failed to read request body", err)
		return nil, err
	}
	return bytesRead, nil
}

func (s *GameServer) Run() {
	s.Logger.Info(fmt.Sprintf("Starting server on port %s", s.port))
	sigtermHandler := make(chan os.Signal, 1)
	signal.Notify(sigtermHandler, os.Interrupt)
	go func() {
		<-sigtermHandler
		s.Shutdown()
		os.Exit(0)
	}()
	if err := http.ListenAndServe(fmt.Sprintf(":%s", s.port), s.Router); err != nil {
		s.Logger.Error(fmt.Sprintf("Failed to start server on port %s", s.port), err)
		return
	}
}

func (s *GameServer) Shutdown() {
	s.Logger.Info("Shutting down server....")
	s.cancel()
	s.watchers.Wait()
	s.Db.CloseConnection()
	s.Logger.Info("Goodbye !")
}

func (s *GameServer) sendResponse(writer http.ResponseWriter, responseBody []byte, status int) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if responseBody == nil {
		return
	}
	if _, err := writer.Write(responseBody); err != nil {
		s.Logger.Error("Failed to write response body", err)
	}
}

func (s *GameServer) sendJSON(writer http.ResponseWriter, body any, status int) {
	respBody, err := json.Marshal(body)
	if err != nil {
		s.Logger.Error("Failed to encode response", err)
		s.sendResponse(writer, nil, http.StatusInternalServerError)
		return
	}
	s.sendResponse(writer, respBody, status)
}

func (s *GameServer) sendError(writer http.ResponseWriter, err error, status int) {
	s.sendJSON(writer, parser.ErrorResponse{Error: err.Error()}, status)
}

func (s *GameServer) gameDir(gameId string) *store.Dir {
	return store.Open(filepath.Join(s.gamesDir, gameId))
}

// CreateNewGame lays out a game directory from the posted config. Arbiter and
// player processes are started against that directory separately.
func (s *GameServer) CreateNewGame(writer http.ResponseWriter, request *http.Request) {
	s.Logger.Info("Creating a new game")
	data, err := s.ReadRequestBody(request)
	if err != nil {
		s.sendError(writer, err, http.StatusBadRequest)
		return
	}
	cfg, err := parser.ParseCreateGameRequest(data)
	if err != nil {
		s.Logger.Error("Failed to parse new game request", err)
		s.sendError(writer, err, http.StatusBadRequest)
		return
	}
	gameId, err := utils.GetUnusedGameId(GAME_ID_LENGTH, func(id string) bool {
		return s.gameDir(id).Exists()
	})
	if err != nil {
		s.Logger.Error("Failed to allocate game id", err)
		s.sendError(writer, err, http.StatusServiceUnavailable)
		return
	}
	dir := s.gameDir(gameId)
	if err := dir.Prepare(cfg); err != nil {
		s.Logger.Error("Failed to prepare game directory", err, "game", gameId)
		s.sendError(writer, err, http.StatusInternalServerError)
		return
	}
	if err := s.Db.CreateGame(gameId, dir.Root(), cfg.Players); err != nil {
		s.Logger.Error("CreateNewGame request failed", err, "game", gameId)
		if errRemove := os.RemoveAll(dir.Root()); errRemove != nil {
			s.Logger.Error("Failed to remove game directory", errRemove, "game", gameId)
		}
		s.sendError(writer, errors.New("failed to register game"), http.StatusInternalServerError)
		return
	}
	s.Logger.Info(fmt.Sprintf("game id %s", gameId))
	s.sendJSON(writer, parser.CreateGameResponse{GameId: gameId, GameDir: dir.Root()}, http.StatusCreated)
}

// GetGame reports a game's progress. Roles stay hidden until a player is out
// or the game is over.
func (s *GameServer) GetGame(writer http.ResponseWriter, request *http.Request) {
	gameId := mux.Vars(request)["gameId"]
	dir := s.gameDir(gameId)
	if !dir.Exists() {
		s.sendError(writer, fmt.Errorf("unknown game %s", gameId), http.StatusNotFound)
		return
	}
	status, err := s.gameStatus(gameId, dir)
	if err != nil {
		s.Logger.Error("Failed to read game status", err, "game", gameId)
		s.sendError(writer, err, http.StatusInternalServerError)
		return
	}
	s.sendJSON(writer, status, http.StatusOK)
}

func (s *GameServer) gameStatus(gameId string, dir *store.Dir) (*parser.GameStatusResponse, error) {
	cfg, err := dir.LoadConfig()
	if err != nil {
		return nil, err
	}
	phase, err := dir.Phase()
	if err != nil {
		return nil, err
	}
	remaining, err := dir.RemainingPlayers().ReadLines()
	if err != nil {
		return nil, err
	}
	startedAt, err := dir.GameStartTime().Read()
	if err != nil {
		return nil, err
	}
	winner, err := dir.Outcome()
	if err != nil {
		return nil, err
	}
	status := &parser.GameStatusResponse{
		GameId:    gameId,
		Phase:     phase.String(),
		StartedAt: startedAt,
		Winner:    string(winner),
		Remaining: remaining,
	}
	if status.Remaining == nil {
		status.Remaining = []string{}
	}
	for _, p := range cfg.GamePlayers() {
		in := slices.Contains(remaining, p.Name)
		role := game.RoleUnknown
		if !in || winner != game.FactionNone {
			role = p.Role()
		}
		status.Players = append(status.Players, parser.PlayerStatus{Name: p.Name, Role: string(role), Remaining: in})
	}
	eliminations, err := s.Db.GetEliminations(gameId)
	if err != nil {
		s.Logger.Warn("eliminations unavailable", "game", gameId, "error", err.Error())
	} else {
		status.Eliminations = eliminations
	}
	return status, nil
}

func (s *GameServer) GetStats(writer http.ResponseWriter, request *http.Request) {
	wins, err := s.Db.CountWins()
	if err != nil {
		s.Logger.Error("Failed to count wins", err)
		s.sendError(writer, err, http.StatusInternalServerError)
		return
	}
	response := parser.StatsResponse{Wins: make(map[string]int, len(wins))}
	for faction, count := range wins {
		response.Wins[string(faction)] = count
	}
	s.sendJSON(writer, response, http.StatusOK)
}

// NewGameServer archives games in settings.Database. Without one, games are
// served from their directories only and stats stay empty.
func NewGameServer(settings config.Settings) (*GameServer, error) {
	log := logger.NewWithOptions("api_server", os.Stdout, logger.ParseLevel(settings.LogLevel))
	var repo db.Repository = db.NopRepository{}
	if settings.Database != "" {
		var err error
		repo, err = db.SetupDB(settings.Database)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("MAFIA_DB not set, results will not be archived")
	}
	return newGameServer(repo, log, settings.Port, settings.GamesDir, settings.Poll()), nil
}

func newGameServer(repo db.Repository, log logger.Logger, port, gamesDir string, pollSettings poll.Settings) *GameServer {
	router := mux.NewRouter().PathPrefix(HTTP_API_V1_PREFIX).Subrouter()
	ctx, cancel := context.WithCancel(context.Background())
	gs := &GameServer{
		Db:       repo,
		Logger:   log,
		port:     port,
		gamesDir: gamesDir,
		poll:     pollSettings,
		wssUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		Router: router,
		States: state.NewInMemoryGameStore(),
		ctx:    ctx,
		cancel: cancel,
	}
	router.HandleFunc("/game", gs.CreateNewGame).Methods("POST")
	router.HandleFunc("/game/{gameId:[a-z0-9-]+}", gs.GetGame).Methods("GET")
	router.HandleFunc("/stats", gs.GetStats).Methods("GET")
	router.HandleFunc("/connect/game/{gameId:[a-z0-9-]+}", gs.Spectate)
	return gs
}
