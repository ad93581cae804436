package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anchal00/llmafia/internal/config"
	"github.com/anchal00/llmafia/internal/spectator"
	"github.com/anchal00/llmafia/internal/store"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	dirFlag := flag.String("dir", "", "follow a local game directory")
	serverURL := flag.String("server", "", "follow a game through the server, e.g. http://localhost:9000")
	gameID := flag.String("game", "", "game id on the server")
	channels := flag.String("channels", "", "comma separated channels: daytime,manager,nighttime (default all)")
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	var selected []string
	if *channels != "" {
		selected = strings.Split(*channels, ",")
	}

	var source spectator.Source
	var title string
	switch {
	case *dirFlag != "":
		source = spectator.DirSource{Dir: store.Open(*dirFlag), Poll: settings.Poll(), Channels: selected}
		title = "game " + filepath.Base(*dirFlag)
	case *serverURL != "" && *gameID != "":
		source = spectator.RemoteSource{ServerURL: *serverURL, GameId: *gameID, Channels: selected}
		title = "game " + *gameID
	default:
		fmt.Fprintln(os.Stderr, "either -dir or both -server and -game are required")
		flag.Usage()
		os.Exit(2)
	}

	p := tea.NewProgram(spectator.NewModel(title), tea.WithAltScreen())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := source.Stream(ctx, p.Send)
		if ctx.Err() == nil {
			p.Send(spectator.ClosedMsg{Err: err})
		}
	}()
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running spectator: %v\n", err)
		os.Exit(1)
	}
}
