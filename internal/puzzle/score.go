package puzzle

import "time"

// GameType is the game identifier sent with every score record.
const GameType = "PUZZLE"

// Record is the final result of a completed session.
// The JSON form is the payload accepted by the score backend.
type Record struct {
	GameType    string    `json:"gameType"`
	Level       string    `json:"level"`
	Movements   int       `json:"movements"`
	Time        int       `json:"time"`
	SessionID   string    `json:"-"`
	Image       string    `json:"-"`
	CompletedAt time.Time `json:"-"`
}

// Reporter receives finished-game records. Submit must not block the
// engine; implementations deliver asynchronously and log their own failures.
type Reporter interface {
	Submit(rec Record)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(rec Record)

// Submit calls f(rec).
func (f ReporterFunc) Submit(rec Record) {
	f(rec)
}

// Preloader warms an image so renderers are not asked to draw an image that
// is still loading. Preload must return immediately; its outcome does not
// affect the engine.
type Preloader interface {
	Preload(ref string)
}
