// warzone is an authoritative real-time strategy server with terminal spectators.
//
// Usage:
//
//	warzone serve            - Run the match server (WebSocket + SSH spectators)
//	warzone watch [url]      - Spectate a running server in this terminal
//	warzone matches          - Show finished matches
//	warzone units            - Show the unit table
//	warzone config           - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Path to a warzone.yaml overlay
//	--db <path>         - Match history database (default: from config)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/warzone/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "warzone",
	Short: "Warzone - real-time strategy server",
	Long: `Warzone runs a shared real-time strategy match. Players connect over
WebSocket, spawn units and fight for the map; spectators watch over SSH
or from a local terminal.

Available commands:
  serve    - Run the match server
  watch    - Spectate a running server
  matches  - Show finished matches
  units    - Show the unit table
  config   - Print the effective configuration

Examples:
  warzone serve
  warzone serve --addr :8080 --no-ssh
  warzone watch ws://localhost:3000/ws
  warzone matches --player alice`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to warzone.yaml (default: search path, then built-in)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to match history database (default: from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger builds the root logger handed to every component.
func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "warzone",
		Level:           level,
	}), nil
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagDBPath != "" {
		cfg.Server.DBPath = flagDBPath
	}
	return cfg, nil
}
