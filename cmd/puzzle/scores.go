package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-puzzle/internal/platform/tui"
	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
	"github.com/vovakirdan/tui-puzzle/internal/storage"
)

var (
	flagScoresLimit int
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [level]",
	Short: "Show best results",
	Long: `Display the best results for a difficulty level, ranked by
fewest moves and then shortest time. Without a level, shows a summary
of every level.

Examples:
  puzzle scores
  puzzle scores easy
  puzzle scores hard --limit 20
  puzzle scores medium --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of results to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the stored results instead of showing them")
}

func runScores(_ *cobra.Command, args []string) {
	a, err := setup("puzzle", true)
	if err != nil {
		fail("%v", err)
	}
	defer a.close()

	path := flagDBPath
	if path == "" {
		path = a.cfg.Storage.DBPath
	}
	store, err := storage.Open(path)
	if err != nil {
		fail("opening scores database: %v", err)
	}
	a.store = store

	if len(args) == 0 {
		if flagClear {
			clearScores(store, "")
			return
		}
		printSummary(store, a.engine.Difficulties)
		return
	}

	level, err := puzzle.ParseLevel(args[0])
	if err != nil {
		level = puzzle.Level(args[0]) // custom tiers
	}
	d, ok := findTier(a.engine.Difficulties, level)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown difficulty %q\n", args[0])
		fmt.Fprintln(os.Stderr, "Run 'puzzle list' to see available difficulties.")
		os.Exit(1)
	}

	if flagClear {
		clearScores(store, level.ScoreLevel())
		return
	}
	printLevel(store, d)
}

func findTier(tiers []puzzle.Difficulty, level puzzle.Level) (puzzle.Difficulty, bool) {
	for _, d := range tiers {
		if d.Level == level {
			return d, true
		}
	}
	return puzzle.Difficulty{}, false
}

func clearScores(store *storage.Store, level string) {
	if err := store.ClearRecords(level); err != nil {
		fail("clearing scores: %v", err)
	}
	if level == "" {
		fmt.Println("All results cleared.")
		return
	}
	fmt.Printf("Results for %s cleared.\n", level)
}

func printLevel(store *storage.Store, d puzzle.Difficulty) {
	level := d.Level.ScoreLevel()

	entries, err := store.TopRecords(level, flagScoresLimit)
	if err != nil {
		fail("retrieving scores: %v", err)
	}

	// Display scores
	fmt.Printf("Best Results - %s\n", d.Label)
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No results recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'puzzle play --difficulty %s' to set the first one!\n", d.Level)
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-6s  %-6s  %s\n", "Rank", "Moves", "Time", "Date")
	fmt.Printf("  %-4s  %-6s  %-6s  %s\n", "----", "-----", "----", "----")

	for i, e := range entries {
		dateStr := e.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-6d  %-6s  %s\n", i+1, e.Movements, tui.FormatElapsed(e.Time), dateStr)
	}

	// Show best result
	fmt.Println()
	if best, err := store.BestRecord(level); err == nil && best != nil {
		fmt.Printf("Best: %d moves in %s\n", best.Movements, tui.FormatElapsed(best.Time))
	}
}

func printSummary(store *storage.Store, tiers []puzzle.Difficulty) {
	stats, err := store.GetAllLevelStats()
	if err != nil {
		fail("retrieving stats: %v", err)
	}

	fmt.Println("Results by difficulty:")
	fmt.Println()
	fmt.Printf("  %-16s  %-6s  %-10s  %-9s  %s\n", "Difficulty", "Games", "Best Moves", "Best Time", "Last Played")
	fmt.Printf("  %-16s  %-6s  %-10s  %-9s  %s\n", "----------", "-----", "----------", "---------", "-----------")

	for _, d := range tiers {
		st, ok := stats[d.Level.ScoreLevel()]
		if !ok || st.GamesCount == 0 {
			fmt.Printf("  %-16s  %-6d  %-10s  %-9s  %s\n", d.Label, 0, "-", "-", "-")
			continue
		}
		fmt.Printf("  %-16s  %-6d  %-10d  %-9s  %s\n",
			d.Label, st.GamesCount, st.BestMoves, tui.FormatElapsed(st.BestTime),
			st.LastPlayed.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	fmt.Println("Run 'puzzle scores <level>' for the full ranking.")
}
