// Package config provides YAML-based configuration loading for the puzzle
// platform: difficulty tiers, the image catalog, score reporting and the
// network surfaces.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

// Config is the complete platform configuration.
type Config struct {
	Game         GameConfig          `yaml:"game"`
	Images       []string            `yaml:"images"`
	Difficulties []puzzle.Difficulty `yaml:"difficulties"`
	Assets       AssetsConfig        `yaml:"assets"`
	Scores       ScoresConfig        `yaml:"scores"`
	Storage      StorageConfig       `yaml:"storage"`
	SSH          SSHConfig           `yaml:"ssh"`
	Web          WebConfig           `yaml:"web"`
}

// GameConfig selects the initial difficulty and image.
type GameConfig struct {
	Difficulty string `yaml:"difficulty"`
	Image      string `yaml:"image"` // empty means the first catalog image
}

// AssetsConfig controls image preloading.
type AssetsConfig struct {
	Root    string        `yaml:"root"`    // base directory for relative image paths
	Timeout time.Duration `yaml:"timeout"` // per-image preload timeout
}

// ScoresConfig points at the score-reporting backend.
type ScoresConfig struct {
	Endpoint string        `yaml:"endpoint"` // base URL; empty disables remote reporting
	Path     string        `yaml:"path"`     // relative submission path
	Timeout  time.Duration `yaml:"timeout"`
}

// StorageConfig locates the local score database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// SSHConfig configures the SSH server.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// WebConfig configures the HTTP/WebSocket server.
type WebConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"` // empty allows any origin
}

// Level returns the configured initial difficulty.
func (c Config) Level() (puzzle.Level, error) {
	if len(c.Difficulties) == 0 {
		return "", errors.New("config: no difficulty tiers")
	}
	if c.Game.Difficulty == "" {
		return c.Difficulties[0].Level, nil
	}
	for _, d := range c.Difficulties {
		if string(d.Level) == c.Game.Difficulty {
			return d.Level, nil
		}
	}
	return puzzle.ParseLevel(c.Game.Difficulty)
}

// Validate checks the configuration for values the platform cannot run with.
func (c Config) Validate() error {
	if err := puzzle.ValidateDifficulties(c.Difficulties); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(c.Images) == 0 {
		return errors.New("config: image catalog is empty")
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("config: game.difficulty: %w", err)
	}
	if c.Scores.Timeout < 0 || c.Assets.Timeout < 0 || c.SSH.IdleTimeout < 0 {
		return errors.New("config: timeouts must not be negative")
	}
	return nil
}

// EngineConfig converts the configuration into engine settings.
// Scheduler, reporter, preloader and logger are wired by the caller.
func (c Config) EngineConfig(seed int64) (puzzle.Config, error) {
	level, err := c.Level()
	if err != nil {
		return puzzle.Config{}, fmt.Errorf("config: %w", err)
	}
	return puzzle.Config{
		Seed:         seed,
		Images:       append([]string(nil), c.Images...),
		Image:        c.Game.Image,
		Level:        level,
		Difficulties: append([]puzzle.Difficulty(nil), c.Difficulties...),
	}, nil
}
