package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anchal00/llmafia/internal/parser"
	"github.com/anchal00/llmafia/internal/state"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Spectate streams a game's public logs over a websocket. The client's first
// frame is a parser.SpectateRequest naming the channels it wants.
func (s *GameServer) Spectate(writer http.ResponseWriter, request *http.Request) {
	gameId := mux.Vars(request)["gameId"]
	dir := s.gameDir(gameId)
	if !dir.Exists() {
		s.sendError(writer, fmt.Errorf("unknown game %s", gameId), http.StatusNotFound)
		return
	}
	wssConn := s.UpgradeToWebsocket(writer, request)
	if wssConn == nil {
		return
	}
	defer wssConn.Close()

	_, data, err := wssConn.ReadMessage()
	if err != nil {
		s.Logger.Error("Cannot spectate game, no subscription received", err, "game", gameId)
		return
	}
	spectateRequest, err := parser.ParseSpectateRequest(data)
	if err != nil {
		s.Logger.Error("Cannot spectate game, bad payload", err, "game", gameId)
		msg := websocket.FormatCloseMessage(websocket.CloseUnsupportedData, err.Error())
		_ = wssConn.WriteMessage(websocket.CloseMessage, msg)
		return
	}

	session := uuid.NewString()
	gs, err := s.subscribe(gameId, session, wssConn, spectateRequest.Channels)
	if err != nil {
		s.Logger.Error("Failed to subscribe spectator", err, "game", gameId)
		return
	}
	s.Logger.Info("Spectator connected", "game", gameId, "session", session)
	for {
		if _, _, err := wssConn.ReadMessage(); err != nil {
			s.Logger.Info("Spectator disconnected", "game", gameId, "session", session)
			gs.RemoveConnection(session)
			return
		}
	}
}

// subscribe attaches conn to the game's shared state, starting a watcher for
// the first spectator.
func (s *GameServer) subscribe(gameId, session string, conn state.Conn, channels []string) (*state.GameState, error) {
	for attempt := 0; attempt < 2; attempt++ {
		gs, loaded := s.States.LoadOrStoreGameState(gameId, func() *state.GameState {
			return state.InitGameState(gameId, s.gameDir(gameId), s.Logger.With("game", gameId))
		})
		if !loaded {
			s.watch(gameId, gs)
		}
		err := gs.AddConnection(session, conn, channels)
		if errors.Is(err, state.ErrGameStateClosed) {
			s.forget(gameId, gs)
			continue
		}
		return gs, err
	}
	return nil, state.ErrGameStateClosed
}

func (s *GameServer) watch(gameId string, gs *state.GameState) {
	s.watchers.Add(1)
	go func() {
		defer s.watchers.Done()
		if err := gs.Watch(s.ctx, s.poll); err != nil && s.ctx.Err() == nil {
			s.Logger.Error("Spectator feed failed", err, "game", gameId)
		}
		s.forget(gameId, gs)
	}()
}

// forget drops gs from the store unless it was already replaced.
func (s *GameServer) forget(gameId string, gs *state.GameState) {
	if current, err := s.States.GetGameState(gameId); err == nil && current == gs {
		s.States.RemoveGameState(gameId)
	}
}
