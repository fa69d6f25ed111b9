package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

//go:embed defaults/puzzle.yaml
var defaultPuzzleYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Game: GameConfig{
			Difficulty: string(puzzle.LevelEasy),
		},
		Images: []string{
			"assets/img/1.png",
			"assets/img/2.png",
			"assets/img/3.png",
			"assets/img/4.png",
			"assets/img/5.png",
		},
		Difficulties: append([]puzzle.Difficulty(nil), puzzle.Difficulties...),
		Assets: AssetsConfig{
			Root:    ".",
			Timeout: 5 * time.Second,
		},
		Scores: ScoresConfig{
			Path:    "games/score",
			Timeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			DBPath: "~/.puzzle/scores.db",
		},
		SSH: SSHConfig{
			Address:     ":23235",
			IdleTimeout: 30 * time.Minute,
		},
		Web: WebConfig{
			Address: ":8080",
		},
	}
}
