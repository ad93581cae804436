package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
daytime_minutes: 2
nighttime_minutes: 0.5
voting_timeout: 90s
players:
  - name: alice
    is_mafia: true
  - name: " bob "
    is_llm: true
  - name: carol
    is_llm: true
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.DaytimeDuration())
	assert.Equal(t, 30*time.Second, cfg.NighttimeDuration())
	assert.Equal(t, 90*time.Second, cfg.VotingTimeout.Std())
	assert.Equal(t, "bob", cfg.Players[1].Name)

	p, ok := cfg.Player("alice")
	require.True(t, ok)
	assert.True(t, p.IsMafia)
	_, ok = cfg.Player("zed")
	assert.False(t, ok)
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"players": [{"name": "m", "is_mafia": true}, {"name": "a"}, {"name": "b"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.DaytimeMinutes)
	assert.Equal(t, 1.0, cfg.NighttimeMinutes)
	assert.Zero(t, cfg.VotingTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		description string
		yaml        string
	}{
		{"no mafia", `players: [{name: a}, {name: b}]`},
		{"mafia not outnumbered", `players: [{name: a, is_mafia: true}, {name: b}]`},
		{"duplicate names", `players: [{name: m, is_mafia: true}, {name: a}, {name: a}]`},
		{"empty name", `players: [{name: m, is_mafia: true}, {name: a}, {name: "  "}]`},
		{"name with colon", `players: [{name: m, is_mafia: true}, {name: a}, {name: "b:c"}]`},
		{"manager name", `players: [{name: m, is_mafia: true}, {name: a}, {name: Game-Manager}]`},
		{"negative phase", `{daytime_minutes: -1, players: [{name: m, is_mafia: true}, {name: a}, {name: b}]}`},
		{"bad timeout", `{voting_timeout: soon, players: [{name: m, is_mafia: true}, {name: a}, {name: b}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	data, err := cfg.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("MAFIA_GAMES_DIR", "/tmp/mafia")
	t.Setenv("MAFIA_POLL_INTERVAL", "50ms")
	t.Setenv("MAFIA_POLL_MAX_INTERVAL", "10ms")

	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mafia", s.GamesDir)
	assert.Equal(t, "9000", s.Port)
	assert.Equal(t, 50*time.Millisecond, s.Poll().Interval)
	assert.Equal(t, 50*time.Millisecond, s.Poll().MaxInterval)
}

func TestLoadSettingsFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MAFIA_PORT=9100\nMAFIA_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("MAFIA_PORT", "")
	os.Unsetenv("MAFIA_PORT")
	t.Cleanup(func() { os.Unsetenv("MAFIA_LOG_LEVEL") })

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", s.Port)
	assert.Equal(t, "debug", s.LogLevel)
}
