package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/warzone/internal/storage"
)

var (
	flagLimit  int
	flagPlayer string
)

var matchesCmd = &cobra.Command{
	Use:   "matches [id]",
	Short: "Show finished matches",
	Long: `Display recent finished matches from the history database,
followed by win totals per team. With an id (or a unique prefix of one, as
printed in the list) show that match in detail.

Examples:
  warzone matches
  warzone matches --limit 5
  warzone matches --player alice
  warzone matches 3f2a9c1e`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatches,
}

func init() {
	matchesCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of matches to show")
	matchesCmd.Flags().StringVar(&flagPlayer, "player", "", "Only matches this player name took part in")
}

func runMatches(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("cannot open match history: %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		return showMatch(cmd.OutOrStdout(), store, args[0])
	}

	var recs []storage.MatchRecord
	if flagPlayer != "" {
		recs, err = store.PlayerHistory(flagPlayer, flagLimit)
	} else {
		recs, err = store.RecentMatches(flagLimit)
	}
	if err != nil {
		return err
	}

	if flagPlayer != "" {
		fmt.Printf("Matches - %s\n", flagPlayer)
	} else {
		fmt.Println("Recent matches")
	}
	fmt.Println()

	if len(recs) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Run 'warzone serve' and play one to the end!")
		return nil
	}

	fmt.Printf("  %-8s  %-7s  %-11s  %6s  %-16s  %s\n", "Match", "Winner", "Reason", "Time", "Date", "Players")
	fmt.Printf("  %-8s  %-7s  %-11s  %6s  %-16s  %s\n", "-----", "------", "------", "----", "----", "-------")
	for _, r := range recs {
		fmt.Printf("  %-8s  %-7s  %-11s  %6s  %-16s  %s\n",
			shortID(r.MatchID),
			r.Winner,
			r.Reason,
			fmt.Sprintf("%d:%02d", r.Duration/60, r.Duration%60),
			r.CreatedAt.Format("2006-01-02 15:04"),
			playerList(r.Players),
		)
	}

	stats, err := store.TeamStats()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return nil
	}

	teams := make([]*storage.TeamStats, 0, len(stats))
	for _, ts := range stats {
		teams = append(teams, ts)
	}
	slices.SortFunc(teams, func(a, b *storage.TeamStats) int {
		if a.Wins != b.Wins {
			return b.Wins - a.Wins
		}
		return strings.Compare(a.Team, b.Team)
	})

	fmt.Println()
	fmt.Printf("  %-8s  %4s  %12s  %8s  %5s\n", "Team", "Wins", "Eliminations", "Timeouts", "Kills")
	fmt.Printf("  %-8s  %4s  %12s  %8s  %5s\n", "----", "----", "------------", "--------", "-----")
	for _, ts := range teams {
		fmt.Printf("  %-8s  %4d  %12d  %8d  %5d\n", ts.Team, ts.Wins, ts.Eliminations, ts.Timeouts, ts.Kills)
	}
	return nil
}

func showMatch(w io.Writer, store *storage.Store, prefix string) error {
	id, err := store.ResolveMatchID(prefix)
	if err != nil {
		return err
	}
	rec, err := store.MatchByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no match with id %q", prefix)
	}
	printMatch(w, rec)
	return nil
}

// printMatch writes one match summary and its player table.
func printMatch(w io.Writer, rec *storage.MatchRecord) {
	fmt.Fprintf(w, "Match %s\n\n", rec.MatchID)
	fmt.Fprintf(w, "  Winner:   %s (%s)\n", rec.Winner, rec.Reason)
	fmt.Fprintf(w, "  Duration: %d:%02d (%d ticks)\n", rec.Duration/60, rec.Duration%60, rec.Ticks)
	fmt.Fprintf(w, "  Date:     %s\n", rec.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-12s  %-7s  %5s  %s\n", "Player", "Team", "Kills", "Status")
	fmt.Fprintf(w, "  %-12s  %-7s  %5s  %s\n", "------", "----", "-----", "------")
	for _, p := range rec.Players {
		status := "destroyed"
		if p.Alive {
			status = "alive"
		}
		fmt.Fprintf(w, "  %-12s  %-7s  %5d  %s\n", p.Name, p.Team, p.Kills, status)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// playerList renders "name(team) kills" entries, survivors marked with '*'.
func playerList(players []storage.PlayerRecord) string {
	parts := make([]string, len(players))
	for i, p := range players {
		mark := ""
		if p.Alive {
			mark = "*"
		}
		parts[i] = fmt.Sprintf("%s%s(%s) %d", p.Name, mark, p.Team, p.Kills)
	}
	return strings.Join(parts, ", ")
}
