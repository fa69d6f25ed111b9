package puzzle

// State names the phase of the current session.
type State string

const (
	StatePlaying   State = "playing"
	StateCompleted State = "completed"
	StateAbandoned State = "abandoned"
)

// Snapshot captures the complete observable state of the engine.
type Snapshot struct {
	SessionID  string     `json:"sessionId"`
	Image      string     `json:"image"`
	Difficulty Difficulty `json:"difficulty"`
	Board      Board      `json:"board"`
	Moves      int        `json:"moves"`
	Elapsed    int        `json:"elapsed"`
	Completed  bool       `json:"completed"`
	Pending    *TileID    `json:"pending,omitempty"`
	InPlace    int        `json:"inPlace"`
	State      State      `json:"state"`
}

// Snapshot returns the current engine state.
func (e *Engine) Snapshot() Snapshot {
	s := e.cur

	state := StatePlaying
	switch {
	case s.completed:
		state = StateCompleted
	case s.abandoned:
		state = StateAbandoned
	}

	snap := Snapshot{
		SessionID:  s.id,
		Image:      e.image,
		Difficulty: e.CurrentDifficulty(),
		Board:      s.board.Clone(),
		Moves:      s.moves,
		Elapsed:    s.elapsed,
		Completed:  s.completed,
		InPlace:    s.board.InPlace(),
		State:      state,
	}
	if s.hasPending {
		id := s.pending
		snap.Pending = &id
	}
	return snap
}
