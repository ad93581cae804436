package parser

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/db"
)

// Spectator channels, one per public log.
const (
	ChannelDaytime   = "daytime"
	ChannelManager   = "manager"
	ChannelNighttime = "nighttime"
)

var Channels = []string{ChannelDaytime, ChannelManager, ChannelNighttime}

type CreateGameResponse struct {
	GameId  string `json:"game_id"`
	GameDir string `json:"game_dir"`
}

type PlayerStatus struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Remaining bool   `json:"remaining"`
}

type GameStatusResponse struct {
	GameId       string           `json:"game_id"`
	Phase        string           `json:"phase"`
	StartedAt    string           `json:"started_at,omitempty"`
	Winner       string           `json:"winner,omitempty"`
	Remaining    []string         `json:"remaining"`
	Players      []PlayerStatus   `json:"players"`
	Eliminations []db.Elimination `json:"eliminations,omitempty"`
}

type StatsResponse struct {
	Wins map[string]int `json:"wins"`
}

// SpectateRequest is the first frame a spectator sends after connecting.
// No channels means every channel.
type SpectateRequest struct {
	Channels []string `json:"channels"`
}

// SpectatorFrame carries one public log line to spectators.
type SpectatorFrame struct {
	Channel string `json:"channel"`
	Line    string `json:"line"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ParseCreateGameRequest decodes and validates a game config sent as JSON.
func ParseCreateGameRequest(data []byte) (*config.GameConfig, error) {
	gameRequest := &config.GameConfig{}
	if err := json.Unmarshal(data, gameRequest); err != nil {
		return nil, err
	}
	if err := gameRequest.Prepare(); err != nil {
		return nil, err
	}
	return gameRequest, nil
}

func ParseSpectateRequest(data []byte) (*SpectateRequest, error) {
	request := &SpectateRequest{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, request); err != nil {
			return nil, err
		}
	}
	if len(request.Channels) == 0 {
		request.Channels = slices.Clone(Channels)
	}
	for _, c := range request.Channels {
		if !slices.Contains(Channels, c) {
			return nil, fmt.Errorf("unknown channel %q", c)
		}
	}
	return request, nil
}
