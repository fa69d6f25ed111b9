package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-puzzle/internal/platform/web"
	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

var flagWebAddr string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the HTTP and WebSocket server",
	Long: `Start the browser surface of the puzzle.

REST endpoints:
  GET /api/difficulties      - Difficulty tiers
  GET /api/images            - Image catalog with dimensions
  GET /api/scores/{level}    - Best results (?limit=1..100)
  GET /api/stats             - Per-level statistics

WebSocket:
  /ws?level=medium&image=... - One board per connection

Examples:
  puzzle web
  puzzle web --addr :9000`,
	Args: cobra.NoArgs,
	Run:  runWeb,
}

func init() {
	webCmd.Flags().StringVar(&flagWebAddr, "addr", "", "HTTP listen address (default from config)")
}

func runWeb(_ *cobra.Command, _ []string) {
	a, err := setup("puzzle-web", false)
	if err != nil {
		fail("%v", err)
	}
	a.openStore()
	defer a.close()

	srv := web.NewServer(web.Options{
		Engine:         a.engine,
		Store:          a.store,
		Reporter:       a.remoteReporter(),
		Assets:         a.assets,
		AllowedOrigins: a.cfg.Web.AllowedOrigins,
		Logger:         a.logger,
	})

	// Warm the catalog so /api/images answers from cache
	for _, ref := range a.engine.Images {
		a.assets.Preload(ref)
	}

	addr := firstNonEmpty(flagWebAddr, a.cfg.Web.Address, ":8080")
	fmt.Printf("Starting puzzle web server on %s\n", addr)
	if err := srv.ListenAndServe(addr); err != nil {
		fail("server: %v", err)
	}
}

// remoteReporter returns the HTTP reporter as an interface, nil when unset.
// The server adds the store reporter itself.
func (a *app) remoteReporter() puzzle.Reporter {
	if a.remote == nil {
		return nil
	}
	return a.remote
}
