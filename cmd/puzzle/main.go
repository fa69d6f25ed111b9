// puzzle is a swap picture puzzle playable in the terminal, over SSH and
// from a browser.
//
// Usage:
//
//	puzzle list              - List difficulty tiers and images
//	puzzle play              - Play a single puzzle
//	puzzle menu              - Start menu to pick a difficulty interactively
//	puzzle serve             - Start SSH server for remote play
//	puzzle web               - Start HTTP/WebSocket server for browser play
//	puzzle scores [level]    - Show best results
//
// Global flags:
//
//	--seed <value>    - Set RNG seed for reproducible shuffles
//	--db <path>       - Set database path (default: from config, ~/.puzzle/scores.db)
//	--config <path>   - Use a custom puzzle.yaml
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-puzzle/internal/assets"
	"github.com/vovakirdan/tui-puzzle/internal/config"
	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
	"github.com/vovakirdan/tui-puzzle/internal/scoring"
	"github.com/vovakirdan/tui-puzzle/internal/storage"
)

var (
	// Global flags
	flagSeed    int64
	flagDBPath  string
	flagConfig  string
	flagLogFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "puzzle",
	Short: "Swap Puzzle - Reassemble a shuffled picture",
	Long: `Swap Puzzle cuts a picture into a grid of tiles, shuffles them and
lets you put it back together by swapping tiles two at a time.

Available commands:
  list     - Show difficulty tiers and images
  play     - Play a single puzzle
  menu     - Interactive difficulty picker menu
  serve    - Start SSH server for remote play
  web      - Start HTTP/WebSocket server for browser play
  scores   - View best results

Examples:
  puzzle list
  puzzle play --difficulty hard
  puzzle menu
  puzzle serve --ssh :2222
  puzzle web --addr :8080
  puzzle scores medium`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom puzzle.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log", "", "Write logs to this file instead of stderr")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(scoresCmd)
}

// app bundles everything a command needs to build engines.
type app struct {
	cfg      config.Config
	engine   puzzle.Config
	logger   *log.Logger
	assets   *assets.Preloader
	remote   *scoring.HTTPReporter
	store    *storage.Store
	stored   *scoring.StoreReporter
	logClose func()
}

// setup loads the configuration and wires collaborators.
// Interactive commands pass quiet so logs do not draw over the board.
func setup(prefix string, quiet bool) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logClose: func() {}}
	a.logger, a.logClose, err = newLogger(prefix, quiet)
	if err != nil {
		return nil, err
	}

	a.engine, err = cfg.EngineConfig(flagSeed)
	if err != nil {
		a.logClose()
		return nil, err
	}
	a.engine.Logger = a.logger

	root, err := config.ExpandHome(cfg.Assets.Root)
	if err != nil {
		a.logClose()
		return nil, err
	}
	a.assets = assets.NewPreloader(root, cfg.Assets.Timeout, a.logger)
	a.engine.Preloader = a.assets

	if cfg.Scores.Endpoint != "" {
		a.remote, err = scoring.NewHTTPReporter(cfg.Scores.Endpoint, cfg.Scores.Path, cfg.Scores.Timeout, a.logger)
		if err != nil {
			a.logClose()
			return nil, err
		}
	}
	return a, nil
}

// openStore opens the score database. Failure is a warning: the puzzle
// still works without a leaderboard.
func (a *app) openStore() {
	path := flagDBPath
	if path == "" {
		path = a.cfg.Storage.DBPath
	}
	store, err := storage.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		return
	}
	a.store = store
}

// reporter returns the fan-out of every configured score destination.
// Servers that own a store build their own store reporter instead.
func (a *app) reporter() puzzle.Reporter {
	var m scoring.Multi
	if a.store != nil {
		if a.stored == nil {
			a.stored = scoring.NewStoreReporter(a.store, a.logger)
		}
		m = append(m, a.stored)
	}
	if a.remote != nil {
		m = append(m, a.remote)
	}
	return m
}

// close waits for in-flight submissions and releases resources.
func (a *app) close() {
	if a.remote != nil {
		a.remote.Wait()
	}
	if a.stored != nil {
		a.stored.Wait()
	}
	if a.store != nil {
		a.store.Close()
	}
	a.assets.Wait()
	a.logClose()
}

func newLogger(prefix string, quiet bool) (*log.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	switch {
	case flagLogFile != "":
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case quiet:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	return logger, closeFn, nil
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
