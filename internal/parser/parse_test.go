package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateGameRequest(t *testing.T) {
	cfg, err := ParseCreateGameRequest([]byte(`{
		"daytime_minutes": 3,
		"voting_timeout": "45s",
		"players": [{"name": "m", "is_mafia": true}, {"name": "a", "is_llm": true}, {"name": "b"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.DaytimeMinutes)
	assert.Equal(t, 1.0, cfg.NighttimeMinutes)
	assert.Equal(t, 45*time.Second, cfg.VotingTimeout.Std())
	assert.Len(t, cfg.Players, 3)

	_, err = ParseCreateGameRequest([]byte(`{"players": [{"name": "a"}, {"name": "b"}]}`))
	assert.Error(t, err)
	_, err = ParseCreateGameRequest([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseSpectateRequest(t *testing.T) {
	request, err := ParseSpectateRequest(nil)
	require.NoError(t, err)
	assert.Equal(t, Channels, request.Channels)

	request, err = ParseSpectateRequest([]byte(`{"channels": ["manager"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{ChannelManager}, request.Channels)

	_, err = ParseSpectateRequest([]byte(`{"channels": ["backstage"]}`))
	assert.Error(t, err)
}
