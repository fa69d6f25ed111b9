package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-puzzle/internal/core"
	"github.com/vovakirdan/tui-puzzle/internal/platform/tui"
	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

var (
	flagDifficulty string
	flagImage      string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a single puzzle",
	Long: `Start a puzzle at the configured (or given) difficulty.

Controls:
  Arrows/hjkl/wasd - Move cursor
  Enter/Space      - Pick a tile, then pick another to swap them
  Esc              - Drop the picked tile
  Mouse click      - Pick or swap the clicked tile
  1/2/3            - Switch difficulty (starts a new board)
  Tab/Shift+Tab    - Next/previous image (starts a new board)
  R                - New shuffle
  Ctrl+S           - Save a screenshot
  Q/Ctrl+C         - Quit

Examples:
  puzzle play
  puzzle play --difficulty hard
  puzzle play --image assets/img/3.png --seed 42`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a difficulty picker menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to start a puzzle,
Tab to view the scoreboard. After a puzzle you return to the menu.`,
	Args: cobra.NoArgs,
	Run:  runMenu,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty: easy, medium, hard")
	playCmd.Flags().StringVar(&flagImage, "image", "", "Image to play (default: first catalog image)")
}

// terminalConfig sizes the renderer from the current terminal.
func terminalConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.Seed = flagSeed
	return cfg
}

func runPlay(_ *cobra.Command, _ []string) {
	a, err := setup("puzzle", true)
	if err != nil {
		fail("%v", err)
	}

	engine := a.engine
	if flagDifficulty != "" {
		level, err := puzzle.ParseLevel(flagDifficulty)
		if err != nil {
			level = puzzle.Level(flagDifficulty) // custom tiers
		}
		engine.Level = level
	}
	if flagImage != "" {
		engine.Image = flagImage
		a.assets.Preload(flagImage)
	}

	a.openStore()
	engine.Reporter = a.reporter()

	runErr := tui.Run(engine, terminalConfig())
	a.close()

	if runErr != nil {
		fail("running puzzle: %v", runErr)
	}
}

func runMenu(_ *cobra.Command, _ []string) {
	a, err := setup("puzzle", true)
	if err != nil {
		fail("%v", err)
	}

	a.openStore()
	engine := a.engine
	engine.Reporter = a.reporter()

	runErr := tui.RunSession(engine, a.store, terminalConfig())
	a.close()

	if runErr != nil {
		fail("running puzzle: %v", runErr)
	}
}
