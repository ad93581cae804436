package state

import (
	"context"
	"errors"
	"sync"

	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/logger"
	"github.com/anchal00/llmafia/internal/parser"
	"github.com/anchal00/llmafia/internal/poll"
	"github.com/anchal00/llmafia/internal/store"
	"github.com/gorilla/websocket"
	set "github.com/hashicorp/go-set/v3"
)

// ErrGameStateClosed is returned when subscribing to a feed whose game has
// already ended and whose spectators were let go.
var ErrGameStateClosed = errors.New("state: game feed is closed")

// Conn is the part of a websocket connection a GameState writes to.
type Conn interface {
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type subscriber struct {
	conn     Conn
	channels *set.Set[string]
}

// GameState follows one game directory's public logs and fans new lines out
// to spectator connections.
type GameState struct {
	gameId      string
	dir         *store.Dir
	logs        map[string]*store.Log
	cursors     map[string]*store.Cursor
	connections map[string]*subscriber
	logger      logger.Logger
	mut         *sync.Mutex
	closed      bool
}

func InitGameState(gameId string, dir *store.Dir, log logger.Logger) *GameState {
	logs := map[string]*store.Log{
		parser.ChannelDaytime:   dir.DaytimeChat(),
		parser.ChannelManager:   dir.ManagerChat(),
		parser.ChannelNighttime: dir.NighttimeChat(),
	}
	cursors := make(map[string]*store.Cursor, len(logs))
	for channel, l := range logs {
		cursors[channel] = l.Cursor()
	}
	return &GameState{
		gameId:      gameId,
		dir:         dir,
		logs:        logs,
		cursors:     cursors,
		connections: make(map[string]*subscriber),
		logger:      log,
		mut:         &sync.Mutex{},
	}
}

// AddConnection subscribes conn to channels and replays what those channels
// already broadcast.
func (g *GameState) AddConnection(session string, conn Conn, channels []string) error {
	g.mut.Lock()
	defer g.mut.Unlock()
	if g.closed {
		return ErrGameStateClosed
	}
	sub := &subscriber{conn: conn, channels: set.From(channels)}
	for _, channel := range parser.Channels {
		if !sub.channels.Contains(channel) {
			continue
		}
		lines, err := g.logs[channel].Lines()
		if err != nil {
			return err
		}
		sent := min(len(lines), g.cursors[channel].Offset())
		for _, line := range lines[:sent] {
			if err := conn.WriteJSON(parser.SpectatorFrame{Channel: channel, Line: line}); err != nil {
				return err
			}
		}
	}
	g.connections[session] = sub
	return nil
}

func (g *GameState) RemoveConnection(session string) {
	g.mut.Lock()
	defer g.mut.Unlock()
	delete(g.connections, session)
}

func (g *GameState) ConnectionCount() int {
	g.mut.Lock()
	defer g.mut.Unlock()
	return len(g.connections)
}

// Refresh reads every new public line and broadcasts it. It reports whether
// anything new was found.
func (g *GameState) Refresh() (bool, error) {
	g.mut.Lock()
	defer g.mut.Unlock()
	progressed := false
	for _, channel := range parser.Channels {
		lines, err := g.cursors[channel].Next()
		if err != nil {
			return progressed, err
		}
		for _, line := range lines {
			progressed = true
			g.broadcast(parser.SpectatorFrame{Channel: channel, Line: line})
		}
	}
	return progressed, nil
}

// broadcast must be called with mut held. Connections that fail are dropped.
func (g *GameState) broadcast(frame parser.SpectatorFrame) {
	for session, sub := range g.connections {
		if !sub.channels.Contains(frame.Channel) {
			continue
		}
		if err := sub.conn.WriteJSON(frame); err != nil {
			g.logger.Warn("dropping spectator", "game", g.gameId, "session", session, "error", err.Error())
			sub.conn.Close()
			delete(g.connections, session)
		}
	}
}

// Watch refreshes until the game has a winner and every line went out, or
// ctx ends. Spectators are then sent a close frame.
func (g *GameState) Watch(ctx context.Context, settings poll.Settings) error {
	p := poll.New(settings)
	for {
		progressed, err := g.Refresh()
		if err != nil {
			return err
		}
		outcome, err := g.dir.Outcome()
		if err != nil {
			return err
		}
		if outcome != game.FactionNone {
			// The final announcement lands before the outcome register.
			if _, err := g.Refresh(); err != nil {
				return err
			}
			g.closeAll(outcome.OutcomeMessage())
			return nil
		}
		if progressed {
			p.Reset()
		}
		if err := p.Wait(ctx); err != nil {
			g.closeAll("server shutting down")
			return err
		}
	}
}

func (g *GameState) closeAll(reason string) {
	g.mut.Lock()
	defer g.mut.Unlock()
	g.closed = true
	for session, sub := range g.connections {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		if err := sub.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
			g.logger.Debug("failed to send close frame", "session", session, "error", err.Error())
		}
		sub.conn.Close()
		delete(g.connections, session)
	}
}
