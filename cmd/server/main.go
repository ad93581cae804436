package main

import (
	"log/slog"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/server"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		slog.Error("Failed to load settings", slog.String("error", err.Error()))
		return
	}
	gs, err := server.NewGameServer(settings)
	if err != nil {
		slog.Error("Failed to set up game server", slog.String("error", err.Error()))
		return
	}
	gs.Run()
}
