// Package web exposes the puzzle to browsers: a small REST API for static
// data and a WebSocket endpoint that runs one engine per connection.
//
// Message protocol:
//
// Every frame is a JSON object with a "type" field.
//
//   - Incoming commands: select {tileId}, select_at {row, col}, clear,
//     difficulty {level}, image {image}, reset, abandon, snapshot.
//   - Outgoing events: hello, board, moves, elapsed, completed, difficulty,
//     selection, snapshot, error.
//
// On connect the server sends hello followed by the current value of every
// state stream, then every change in the order the engine published it.
package web

import (
	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

// Command types accepted from clients.
const (
	CmdSelect     = "select"
	CmdSelectAt   = "select_at"
	CmdClear      = "clear"
	CmdDifficulty = "difficulty"
	CmdImage      = "image"
	CmdReset      = "reset"
	CmdAbandon    = "abandon"
	CmdSnapshot   = "snapshot"
)

// Event types sent to clients.
const (
	EvtHello      = "hello"
	EvtBoard      = "board"
	EvtMoves      = "moves"
	EvtElapsed    = "elapsed"
	EvtCompleted  = "completed"
	EvtDifficulty = "difficulty"
	EvtSelection  = "selection"
	EvtSnapshot   = "snapshot"
	EvtError      = "error"
)

// Command is a client request.
type Command struct {
	Type   string         `json:"type"`
	TileID *puzzle.TileID `json:"tileId,omitempty"`
	Row    int            `json:"row,omitempty"`
	Col    int            `json:"col,omitempty"`
	Level  string         `json:"level,omitempty"`
	Image  string         `json:"image,omitempty"`
}

// Envelope is a server event.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hello is sent once per connection.
type Hello struct {
	ConnectionID string              `json:"connectionId"`
	Difficulties []puzzle.Difficulty `json:"difficulties"`
	Images       []string            `json:"images"`
}

// SelectionResult answers select and select_at commands.
type SelectionResult struct {
	Outcome string         `json:"outcome"`
	Pending *puzzle.TileID `json:"pending,omitempty"`
}

// ErrorEvent reports a rejected command.
type ErrorEvent struct {
	Command string `json:"command"`
	Message string `json:"message"`
}
