package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-puzzle/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the puzzle SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session with a difficulty menu and
its own board. Scores are stored per-server (all users share the same
leaderboard).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise uses ssh.host_key_path from config, or ~/.puzzle/host_key

Examples:
  puzzle serve                           # Listen on the configured address
  puzzle serve --ssh :2222               # Listen on port 2222
  puzzle serve --host-key ./my_host_key  # Use specific host key
  puzzle serve --db ./scores.db          # Use specific database

Users can connect with:
  ssh localhost -p 23235`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (default from config)")
}

func runServe(_ *cobra.Command, _ []string) {
	a, err := setup("puzzle-ssh", false)
	if err != nil {
		fail("%v", err)
	}
	defer a.close()

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = firstNonEmpty(flagSSHAddr, a.cfg.SSH.Address, cfg.Address)
	cfg.HostKeyPath = firstNonEmpty(flagHostKey, a.cfg.SSH.HostKeyPath)
	cfg.DBPath = firstNonEmpty(flagDBPath, a.cfg.Storage.DBPath, cfg.DBPath)
	if a.cfg.SSH.IdleTimeout > 0 {
		cfg.IdleTimeout = a.cfg.SSH.IdleTimeout
	}
	if flagIdleTimeout > 0 {
		cfg.IdleTimeout = minutes(flagIdleTimeout)
	}
	cfg.Engine = a.engine
	if a.remote != nil {
		cfg.Reporter = a.remote
	}

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting puzzle SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fail("server: %v", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
