package spectator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/anchal00/llmafia/internal/game"
	"github.com/anchal00/llmafia/internal/parser"
	"github.com/anchal00/llmafia/internal/poll"
	"github.com/anchal00/llmafia/internal/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

// Source feeds a Model. Stream blocks until the feed ends.
type Source interface {
	Stream(ctx context.Context, send func(tea.Msg)) error
}

// DirSource reads a game directory on the local filesystem.
type DirSource struct {
	Dir      *store.Dir
	Poll     poll.Settings
	Channels []string
}

func (s DirSource) Stream(ctx context.Context, send func(tea.Msg)) error {
	channels := s.Channels
	if len(channels) == 0 {
		channels = parser.Channels
	}
	cursors := map[string]*store.Cursor{
		parser.ChannelDaytime:   s.Dir.DaytimeChat().Cursor(),
		parser.ChannelManager:   s.Dir.ManagerChat().Cursor(),
		parser.ChannelNighttime: s.Dir.NighttimeChat().Cursor(),
	}
	drain := func() (bool, error) {
		progressed := false
		for _, channel := range parser.Channels {
			if !slices.Contains(channels, channel) {
				continue
			}
			lines, err := cursors[channel].Next()
			if err != nil {
				return progressed, err
			}
			for _, line := range lines {
				progressed = true
				send(LineMsg{Channel: channel, Line: line})
			}
		}
		return progressed, nil
	}
	p := poll.New(s.Poll)
	var last StatusMsg
	for {
		progressed, err := drain()
		if err != nil {
			return err
		}
		status, err := ReadStatus(s.Dir)
		if err != nil {
			return err
		}
		if status.Phase != last.Phase || status.Winner != last.Winner || !slices.Equal(status.Remaining, last.Remaining) {
			send(status)
			last = status
		}
		if status.Winner != game.FactionNone {
			// The closing announcement is written before the outcome.
			if _, err := drain(); err != nil {
				return err
			}
			send(ClosedMsg{})
			return nil
		}
		if progressed {
			p.Reset()
		}
		if err := p.Wait(ctx); err != nil {
			return err
		}
	}
}

func ReadStatus(dir *store.Dir) (StatusMsg, error) {
	phase, err := dir.Phase()
	if err != nil {
		return StatusMsg{}, err
	}
	remaining, err := dir.RemainingPlayers().ReadLines()
	if err != nil {
		return StatusMsg{}, err
	}
	winner, err := dir.Outcome()
	if err != nil {
		return StatusMsg{}, err
	}
	return StatusMsg{Phase: phase, Remaining: remaining, Winner: winner}, nil
}

// RemoteSource follows a game through the server's websocket feed.
type RemoteSource struct {
	ServerURL string
	GameId    string
	Channels  []string
	Dialer    *websocket.Dialer
}

func (s RemoteSource) Stream(ctx context.Context, send func(tea.Msg)) error {
	endpoint, err := s.feedURL()
	if err != nil {
		return err
	}
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("spectator: connect to %s: %s", endpoint, resp.Status)
		}
		return fmt.Errorf("spectator: connect to %s: %w", endpoint, err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	if err := conn.WriteJSON(parser.SpectateRequest{Channels: s.Channels}); err != nil {
		return err
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				send(ClosedMsg{})
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		frame := parser.SpectatorFrame{}
		if err := json.Unmarshal(data, &frame); err != nil {
			return fmt.Errorf("spectator: bad frame: %w", err)
		}
		send(LineMsg{Channel: frame.Channel, Line: frame.Line})
		if status, ok := s.statusFrom(ctx, frame); ok {
			send(status)
		}
	}
}

// statusFrom refreshes the header after manager announcements, which is when
// the phase or the roster changes.
func (s RemoteSource) statusFrom(ctx context.Context, frame parser.SpectatorFrame) (StatusMsg, bool) {
	if frame.Channel != parser.ChannelManager {
		return StatusMsg{}, false
	}
	status, err := s.fetchStatus(ctx)
	if err != nil {
		return StatusMsg{}, false
	}
	return status, true
}

func (s RemoteSource) fetchStatus(ctx context.Context) (StatusMsg, error) {
	base := strings.TrimSuffix(s.ServerURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/v1/game/"+s.GameId, nil)
	if err != nil {
		return StatusMsg{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return StatusMsg{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return StatusMsg{}, fmt.Errorf("spectator: status: %s", resp.Status)
	}
	body := parser.GameStatusResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return StatusMsg{}, err
	}
	phase := game.Phase(body.Phase)
	if body.Phase == game.PhaseWaitingForJoin.String() {
		phase = game.PhaseWaitingForJoin
	}
	return StatusMsg{Phase: phase, Remaining: body.Remaining, Winner: game.Faction(body.Winner)}, nil
}

func (s RemoteSource) feedURL() (string, error) {
	u, err := url.Parse(s.ServerURL)
	if err != nil {
		return "", fmt.Errorf("spectator: server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1/connect/game/" + s.GameId
	return u.String(), nil
}
