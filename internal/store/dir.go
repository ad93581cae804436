// Package store is the shared game state: a directory of append-only logs,
// per-player mailboxes and single-value registers that independent arbiter and
// player processes coordinate through. Every file has one designated writer.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/game"
)

const (
	PlayerNamesFile      = "player_names.txt"
	MafiaNamesFile       = "mafia_names.txt"
	RemainingPlayersFile = "remaining_players.txt"
	PhaseStatusFile      = "phase_status.txt"
	GameStartTimeFile    = "game_start_time.txt"
	WhoWinsFile          = "who_wins.txt"

	PublicDaytimeChatFile   = "public_daytime_chat.txt"
	PublicManagerChatFile   = "public_manager_chat.txt"
	PublicNighttimeChatFile = "public_nighttime_chat.txt"

	personalChatFormat        = "%s_chat.txt"
	personalVoteFormat        = "%s_vote.txt"
	personalStatusFormat      = "%s_status.txt"
	personalDiagnosticsFormat = "%s_diagnostics.txt"
)

// Dir is one game's shared directory.
type Dir struct {
	root string
}

func Open(root string) *Dir {
	return &Dir{root: filepath.Clean(root)}
}

func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

func (d *Dir) ConfigPath() string {
	return d.Path(config.FileName)
}

// LoadConfig reads the game's config.yaml.
func (d *Dir) LoadConfig() (*config.GameConfig, error) {
	return config.Load(d.ConfigPath())
}

// Exists reports whether the directory has been prepared.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

func (d *Dir) PlayerNames() *Register      { return NewRegister(d.Path(PlayerNamesFile)) }
func (d *Dir) MafiaNames() *Register       { return NewRegister(d.Path(MafiaNamesFile)) }
func (d *Dir) RemainingPlayers() *Register { return NewRegister(d.Path(RemainingPlayersFile)) }
func (d *Dir) PhaseStatus() *Register      { return NewRegister(d.Path(PhaseStatusFile)) }
func (d *Dir) GameStartTime() *Register    { return NewRegister(d.Path(GameStartTimeFile)) }
func (d *Dir) WhoWins() *Register          { return NewRegister(d.Path(WhoWinsFile)) }

func (d *Dir) DaytimeChat() *Log   { return NewLog(d.Path(PublicDaytimeChatFile)) }
func (d *Dir) ManagerChat() *Log   { return NewLog(d.Path(PublicManagerChatFile)) }
func (d *Dir) NighttimeChat() *Log { return NewLog(d.Path(PublicNighttimeChatFile)) }

// PhaseChat is the public log a phase's conversation and votes go to.
func (d *Dir) PhaseChat(phase game.Phase) *Log {
	if phase.IsNighttime() {
		return d.NighttimeChat()
	}
	return d.DaytimeChat()
}

// Mailbox returns the private files owned by one player.
func (d *Dir) Mailbox(player string) Mailbox {
	return Mailbox{
		Chat:        NewLog(d.Path(fmt.Sprintf(personalChatFormat, player))),
		Vote:        NewLog(d.Path(fmt.Sprintf(personalVoteFormat, player))),
		Status:      NewRegister(d.Path(fmt.Sprintf(personalStatusFormat, player))),
		Diagnostics: NewLog(d.Path(fmt.Sprintf(personalDiagnosticsFormat, player))),
	}
}

// Mailbox groups a player's private channels. Chat and Vote are written only by
// the player and drained only by the arbiter.
type Mailbox struct {
	Chat        *Log
	Vote        *Log
	Status      *Register
	Diagnostics *Log
}

// Phase reads the phase register.
func (d *Dir) Phase() (game.Phase, error) {
	raw, err := d.PhaseStatus().Read()
	if err != nil {
		return "", err
	}
	return game.ParsePhase(raw)
}

// Outcome reads the outcome register; FactionNone while the game runs.
func (d *Dir) Outcome() (game.Faction, error) {
	raw, err := d.WhoWins().Read()
	if err != nil {
		return game.FactionNone, err
	}
	return game.ParseOutcome(raw)
}

// Prepare lays out a fresh game directory: the config, roster files, the
// initial remaining roster, and every register and log created empty.
func (d *Dir) Prepare(cfg *config.GameConfig) error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("store: create game dir: %w", err)
	}
	if _, err := os.Stat(d.PhaseStatus().Path()); err == nil {
		return fmt.Errorf("store: game dir %s is already prepared", d.root)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: inspect game dir: %w", err)
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(d.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("store: write config: %w", err)
	}
	players := cfg.GamePlayers()
	names := game.Names(players)
	if err := d.PlayerNames().WriteLines(names); err != nil {
		return err
	}
	if err := d.MafiaNames().WriteLines(game.Names(game.Mafia(players))); err != nil {
		return err
	}
	if err := d.RemainingPlayers().WriteLines(names); err != nil {
		return err
	}
	empty := []string{
		d.PhaseStatus().Path(), d.GameStartTime().Path(), d.WhoWins().Path(),
		d.DaytimeChat().Path(), d.ManagerChat().Path(), d.NighttimeChat().Path(),
	}
	for _, name := range names {
		mb := d.Mailbox(name)
		empty = append(empty, mb.Chat.Path(), mb.Vote.Path(), mb.Status.Path())
	}
	for _, path := range empty {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("store: create %s: %w", path, err)
		}
	}
	return nil
}
