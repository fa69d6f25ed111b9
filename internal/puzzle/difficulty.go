// Package puzzle implements the swap-puzzle board engine: tile generation,
// shuffling, move intake, completion detection, elapsed-time tracking and
// score emission. It knows nothing about pixels or terminals; renderers
// observe its state streams and feed player gestures back in.
package puzzle

import (
	"errors"
	"fmt"
	"strings"
)

// Level names a difficulty tier.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// ErrUnknownLevel is returned when a level has no configured tier.
var ErrUnknownLevel = errors.New("puzzle: unknown difficulty level")

// ScoreLevel returns the identifier used in score records (EASY, MEDIUM, HARD).
func (l Level) ScoreLevel() string {
	return strings.ToUpper(string(l))
}

// ParseLevel converts a user-supplied name into a Level.
// Matching is case-insensitive so "EASY" from a score record round-trips.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelEasy:
		return LevelEasy, nil
	case LevelMedium:
		return LevelMedium, nil
	case LevelHard:
		return LevelHard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Difficulty is the static configuration of one tier.
type Difficulty struct {
	Level     Level  `json:"level" yaml:"level"`
	BoardSize int    `json:"boardSize" yaml:"board_size"`
	TileCount int    `json:"tileCount" yaml:"tile_count"`
	Label     string `json:"label" yaml:"label"`
}

// Difficulties is the built-in tier table.
var Difficulties = []Difficulty{
	{Level: LevelEasy, BoardSize: 3, TileCount: 9, Label: "Easy (3x3)"},
	{Level: LevelMedium, BoardSize: 4, TileCount: 16, Label: "Medium (4x4)"},
	{Level: LevelHard, BoardSize: 5, TileCount: 25, Label: "Hard (5x5)"},
}

// ValidateDifficulties checks that a tier table is usable by the engine.
func ValidateDifficulties(tiers []Difficulty) error {
	if len(tiers) == 0 {
		return errors.New("puzzle: no difficulty tiers")
	}
	seen := make(map[Level]bool, len(tiers))
	for _, d := range tiers {
		if d.Level == "" {
			return errors.New("puzzle: difficulty tier without level")
		}
		if seen[d.Level] {
			return fmt.Errorf("puzzle: duplicate difficulty tier %q", d.Level)
		}
		seen[d.Level] = true
		if d.BoardSize < 1 {
			return fmt.Errorf("puzzle: tier %q: board size must be at least 1, got %d", d.Level, d.BoardSize)
		}
		if d.TileCount != d.BoardSize*d.BoardSize {
			return fmt.Errorf("puzzle: tier %q: tile count %d does not match %dx%d board",
				d.Level, d.TileCount, d.BoardSize, d.BoardSize)
		}
	}
	return nil
}

func findDifficulty(tiers []Difficulty, level Level) (Difficulty, bool) {
	for _, d := range tiers {
		if d.Level == level {
			return d, true
		}
	}
	return Difficulty{}, false
}
