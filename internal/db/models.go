package db

type Game struct {
	GameId      string `db:"game_id" json:"game_id"`
	GameDir     string `db:"game_dir" json:"game_dir"`
	PlayerCount int    `db:"player_count" json:"player_count"`
	CreatedAt   string `db:"created_at" json:"created_at"`
	Winner      string `db:"winner" json:"winner,omitempty"`
	ConcludedAt string `db:"concluded_at" json:"concluded_at,omitempty"`
}

type Player struct {
	Name    string `db:"name" json:"name"`
	GameId  string `db:"game_id" json:"game_id"`
	IsMafia bool   `db:"is_mafia" json:"is_mafia"`
	IsLLM   bool   `db:"is_llm" json:"is_llm"`
}

type Elimination struct {
	GameId       string `db:"game_id" json:"game_id"`
	Player       string `db:"player" json:"player"`
	Role         string `db:"role" json:"role"`
	Round        int    `db:"round" json:"round"`
	Phase        string `db:"phase" json:"phase"`
	Votes        int    `db:"votes" json:"votes"`
	EliminatedAt string `db:"eliminated_at" json:"eliminated_at"`
}
