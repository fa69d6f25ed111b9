package web

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Outgoing frames buffered per connection before it is dropped.
	sendBuffer = 256
)

// client is one WebSocket connection and the engine it drives.
//
// The engine is owned by the actor goroutine (run). readPump only decodes
// commands and hands them over; writePump only writes encoded frames.
type client struct {
	id     string
	conn   *websocket.Conn
	engine *puzzle.Engine
	loop   *puzzle.Loop
	logger *log.Logger

	cmds    chan Command
	send    chan []byte
	done    chan struct{} // closed when the reader exits
	cancels []func()
}

// subscribe wires every engine stream to the outgoing queue. Each
// subscription immediately emits the current value.
func (c *client) subscribe() {
	e := c.engine
	c.cancels = append(c.cancels,
		e.BoardStream().Subscribe(func(b puzzle.Board) { c.emit(EvtBoard, b) }),
		e.MovesStream().Subscribe(func(n int) { c.emit(EvtMoves, n) }),
		e.ElapsedStream().Subscribe(func(n int) { c.emit(EvtElapsed, n) }),
		e.CompletedStream().Subscribe(func(v bool) { c.emit(EvtCompleted, v) }),
		e.DifficultyStream().Subscribe(func(l puzzle.Level) { c.emit(EvtDifficulty, l) }),
	)
}

// emit queues an event. A connection that cannot keep up is closed.
func (c *client) emit(typ string, data any) {
	frame, err := json.Marshal(Envelope{Type: typ, Data: data})
	if err != nil {
		c.logger.Error("failed to encode event", "type", typ, "error", err)
		return
	}
	select {
	case c.send <- frame:
	default:
		c.logger.Warn("send buffer full, closing connection")
		c.conn.Close()
	}
}

// run is the actor loop. Every engine call and timer tick happens here.
func (c *client) run() {
	defer func() {
		for _, cancel := range c.cancels {
			cancel()
		}
		c.engine.Abandon()
		c.loop.Close()
		close(c.send)
	}()

	for {
		select {
		case cmd := <-c.cmds:
			c.handle(cmd)
		case fn := <-c.loop.C():
			fn()
		case <-c.done:
			return
		}
	}
}

// handle applies one command to the engine.
func (c *client) handle(cmd Command) {
	e := c.engine
	switch cmd.Type {
	case CmdSelect:
		if cmd.TileID == nil {
			c.reject(cmd, "tileId is required")
			return
		}
		t, ok := e.Board().Tile(*cmd.TileID)
		if !ok {
			// Stale tile from a previous board
			t = puzzle.Tile{ID: *cmd.TileID}
		}
		c.reportSelection(e.SelectPiece(t))

	case CmdSelectAt:
		c.reportSelection(e.SelectAt(cmd.Row, cmd.Col))

	case CmdClear:
		_, pending := e.Selected()
		e.ClearSelection()
		if pending {
			c.reportSelection(puzzle.SelectionCancelled)
		} else {
			c.reportSelection(puzzle.SelectionIgnored)
		}

	case CmdDifficulty:
		level, err := puzzle.ParseLevel(cmd.Level)
		if err != nil {
			level = puzzle.Level(cmd.Level) // custom tiers
		}
		if err := e.SetDifficulty(level); err != nil {
			c.reject(cmd, err.Error())
		}

	case CmdImage:
		if cmd.Image == "" {
			c.reject(cmd, "image is required")
			return
		}
		e.SetImage(cmd.Image)

	case CmdReset:
		e.Reset()

	case CmdAbandon:
		e.Abandon()
		c.emit(EvtSnapshot, e.Snapshot())

	case CmdSnapshot:
		c.emit(EvtSnapshot, e.Snapshot())

	default:
		c.reject(cmd, fmt.Sprintf("unknown command %q", cmd.Type))
	}
}

func (c *client) reportSelection(sel puzzle.Selection) {
	res := SelectionResult{Outcome: sel.String()}
	if t, ok := c.engine.Selected(); ok {
		id := t.ID
		res.Pending = &id
	}
	c.emit(EvtSelection, res)
}

func (c *client) reject(cmd Command, msg string) {
	c.logger.Debug("command rejected", "command", cmd.Type, "reason", msg)
	c.emit(EvtError, ErrorEvent{Command: cmd.Type, Message: msg})
}

// readPump decodes commands from the connection and forwards them to the actor.
func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket error", "error", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			cmd = Command{Type: "malformed"}
		}
		c.cmds <- cmd
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The actor closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
