package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/warzone/internal/config"
	"github.com/vovakirdan/warzone/internal/platform/tui"
	"github.com/vovakirdan/warzone/internal/storage"
	"github.com/vovakirdan/warzone/internal/transport/ws"
)

var flagHistory bool

var watchCmd = &cobra.Command{
	Use:   "watch [url]",
	Short: "Spectate a running server",
	Long: `Open the spectator dashboard against a running server.

The URL defaults to the configured listen address on localhost.

Controls:
  Up/Down   - Scroll the leaderboard
  Tab       - Toggle match history (with --history)
  ?         - More keys
  Q/Ctrl+C  - Quit

Examples:
  warzone watch
  warzone watch ws://game.example.com:3000/ws
  warzone watch --history`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&flagHistory, "history", false, "Read match history from the local database")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	url := defaultURL(cfg.Server)
	if len(args) == 1 {
		url = args[0]
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	client, err := ws.Dial(ctx, url)
	cancel()
	if err != nil {
		return err
	}
	defer client.Close()

	// Get terminal size early so the first frame fits
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	opts := tui.SpectatorOptions{
		Title:      "WARZONE " + url,
		TickPeriod: time.Duration(cfg.Match.TickMS) * time.Millisecond,
		Width:      width,
		Height:     height,
	}
	if flagHistory {
		store, err := storage.Open(cfg.Server.DBPath)
		if err != nil {
			return fmt.Errorf("cannot open match history: %w", err)
		}
		defer store.Close()
		opts.History = store
	}

	model := tui.NewSpectatorModel(tui.NewWSFeed(client), opts)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// defaultURL points at the configured listener on localhost.
func defaultURL(srv config.ServerConfig) string {
	host := srv.Addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	path := srv.WSPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "ws://" + host + path
}
