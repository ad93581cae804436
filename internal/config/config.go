// Package config loads the per-game YAML configuration (roster and phase
// lengths) and the process-wide settings taken from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anchal00/llmafia/internal/game"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file kept inside every game directory.
	FileName = "config.yaml"

	defaultPhaseMinutes = 1.0
)

var ErrInvalidConfig = errors.New("config: invalid game config")

// PlayerConfig declares one roster entry.
type PlayerConfig struct {
	Name    string `yaml:"name" json:"name"`
	IsMafia bool   `yaml:"is_mafia" json:"is_mafia"`
	IsLLM   bool   `yaml:"is_llm" json:"is_llm"`
}

// GameConfig models config.yaml.
type GameConfig struct {
	DaytimeMinutes   float64        `yaml:"daytime_minutes" json:"daytime_minutes"`
	NighttimeMinutes float64        `yaml:"nighttime_minutes" json:"nighttime_minutes"`
	VotingTimeout    Duration       `yaml:"voting_timeout,omitempty" json:"voting_timeout,omitempty"`
	Players          []PlayerConfig `yaml:"players" json:"players"`
}

// Duration accepts Go duration strings ("90s", "5m") in YAML and JSON.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := parseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := parseDuration(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func parseDuration(value string) (Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return 0, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: parse duration %q: %w", value, err)
	}
	return Duration(parsed), nil
}

// Load reads and validates a game config file.
func Load(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML (JSON is valid YAML too) and validates the result.
func Parse(data []byte) (*GameConfig, error) {
	var parsed GameConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := parsed.Prepare(); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Prepare applies defaults, normalizes and validates a config built in code.
func (c *GameConfig) Prepare() error {
	c.applyDefaults()
	c.normalize()
	return c.validate()
}

// Marshal renders the config as YAML for the game directory.
func (c *GameConfig) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return data, nil
}

func (c *GameConfig) applyDefaults() {
	if c.DaytimeMinutes == 0 {
		c.DaytimeMinutes = defaultPhaseMinutes
	}
	if c.NighttimeMinutes == 0 {
		c.NighttimeMinutes = defaultPhaseMinutes
	}
}

func (c *GameConfig) normalize() {
	for i := range c.Players {
		c.Players[i].Name = strings.TrimSpace(c.Players[i].Name)
	}
}

func (c *GameConfig) validate() error {
	if c.DaytimeMinutes < 0 || c.NighttimeMinutes < 0 {
		return fmt.Errorf("%w: phase durations must be positive", ErrInvalidConfig)
	}
	if c.VotingTimeout < 0 {
		return fmt.Errorf("%w: voting_timeout must not be negative", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Players))
	for i, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("%w: players[%d]: name is required", ErrInvalidConfig, i)
		}
		if strings.ContainsAny(p.Name, ":/\\\t\r\n ") {
			return fmt.Errorf("%w: players[%d]: name %q has reserved characters", ErrInvalidConfig, i, p.Name)
		}
		if p.Name == game.ManagerName {
			return fmt.Errorf("%w: players[%d]: name %q is reserved", ErrInvalidConfig, i, p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: players[%d]: duplicate name %q", ErrInvalidConfig, i, p.Name)
		}
		seen[p.Name] = true
	}
	players := c.GamePlayers()
	mafia := len(game.Mafia(players))
	if mafia == 0 {
		return fmt.Errorf("%w: at least one mafia player is required", ErrInvalidConfig)
	}
	if mafia >= len(players)-mafia {
		return fmt.Errorf("%w: mafia (%d) must be outnumbered by bystanders (%d)", ErrInvalidConfig, mafia, len(players)-mafia)
	}
	return nil
}

// GamePlayers converts the roster into domain players, preserving order.
func (c *GameConfig) GamePlayers() []game.Player {
	players := make([]game.Player, len(c.Players))
	for i, p := range c.Players {
		players[i] = game.Player{Name: p.Name, IsMafia: p.IsMafia, IsLLM: p.IsLLM}
	}
	return players
}

// Player looks a roster entry up by name.
func (c *GameConfig) Player(name string) (game.Player, bool) {
	for _, p := range c.GamePlayers() {
		if p.Name == name {
			return p, true
		}
	}
	return game.Player{}, false
}

func (c *GameConfig) DaytimeDuration() time.Duration {
	return minutes(c.DaytimeMinutes)
}

func (c *GameConfig) NighttimeDuration() time.Duration {
	return minutes(c.NighttimeMinutes)
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
