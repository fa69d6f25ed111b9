package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
	"github.com/vovakirdan/tui-puzzle/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestServer(store *storage.Store) *Server {
	return NewServer(Options{
		Engine: puzzle.Config{
			Seed:   11,
			Images: []string{"assets/img/1.png", "assets/img/2.png"},
		},
		Store: store,
	})
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestGetDifficulties(t *testing.T) {
	s := newTestServer(nil)
	w := doRequest(s, "GET", "/api/difficulties")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var tiers []puzzle.Difficulty
	if err := json.Unmarshal(w.Body.Bytes(), &tiers); err != nil {
		t.Fatal(err)
	}
	if len(tiers) != 3 || tiers[2].BoardSize != 5 || tiers[0].Label != "Easy (3x3)" {
		t.Errorf("tiers = %+v", tiers)
	}
}

func TestGetImages(t *testing.T) {
	s := newTestServer(nil)
	w := doRequest(s, "GET", "/api/images")

	var images []imageEntry
	if err := json.Unmarshal(w.Body.Bytes(), &images); err != nil {
		t.Fatal(err)
	}
	if len(images) != 2 || images[1].Ref != "assets/img/2.png" {
		t.Errorf("images = %+v", images)
	}
}

func TestGetScores(t *testing.T) {
	store := newTestStore(t)
	store.SaveRecord(puzzle.Record{GameType: puzzle.GameType, Level: "MEDIUM", Movements: 30, Time: 90, SessionID: "a"})
	store.SaveRecord(puzzle.Record{GameType: puzzle.GameType, Level: "MEDIUM", Movements: 22, Time: 95, SessionID: "b"})
	s := newTestServer(store)

	tests := []struct {
		name   string
		path   string
		status int
		count  int
	}{
		{"by level", "/api/scores/medium", http.StatusOK, 2},
		{"score level spelling", "/api/scores/MEDIUM", http.StatusOK, 2},
		{"limit", "/api/scores/medium?limit=1", http.StatusOK, 1},
		{"empty level", "/api/scores/hard", http.StatusOK, 0},
		{"unknown level", "/api/scores/insane", http.StatusNotFound, 0},
		{"bad limit", "/api/scores/easy?limit=zero", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(s, "GET", tt.path)
			if w.Code != tt.status {
				t.Fatalf("status = %d, expected %d: %s", w.Code, tt.status, w.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var entries []scoreEntry
			if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
				t.Fatal(err)
			}
			if len(entries) != tt.count {
				t.Fatalf("got %d entries, expected %d", len(entries), tt.count)
			}
			if tt.count > 0 && (entries[0].Rank != 1 || entries[0].Movements != 22) {
				t.Errorf("first entry = %+v", entries[0])
			}
		})
	}
}

func TestScoresWithoutStore(t *testing.T) {
	s := newTestServer(nil)
	for _, path := range []string{"/api/scores/easy", "/api/stats"} {
		if w := doRequest(s, "GET", path); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d", path, w.Code)
		}
	}
}

func TestCheckOrigin(t *testing.T) {
	s := NewServer(Options{AllowedOrigins: []string{"https://puzzle.example.com"}})

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://puzzle.example.com", true},
		{"https://evil.example.com", false},
		{"", true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := s.checkOrigin(r); got != tt.want {
			t.Errorf("checkOrigin(%q) = %v", tt.origin, got)
		}
	}
}

// wsClient is a test helper around a dialed connection.
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server, query string) *wsClient {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(cmd Command) {
	c.t.Helper()
	if err := c.conn.WriteJSON(cmd); err != nil {
		c.t.Fatalf("WriteJSON() failed: %v", err)
	}
}

// next reads frames until one of the given type arrives and decodes its data into v.
func (c *wsClient) next(typ string, v any) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var frame struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := c.conn.ReadJSON(&frame); err != nil {
			c.t.Fatalf("waiting for %q: %v", typ, err)
		}
		if frame.Type != typ {
			continue
		}
		if v != nil {
			if err := json.Unmarshal(frame.Data, v); err != nil {
				c.t.Fatalf("decoding %q: %v", typ, err)
			}
		}
		return
	}
}

// selection reads the next selection event into a fresh value.
func (c *wsClient) selection() SelectionResult {
	c.t.Helper()
	var sel SelectionResult
	c.next(EvtSelection, &sel)
	return sel
}

func TestWebSocketHandshake(t *testing.T) {
	srv := httptest.NewServer(newTestServer(nil))
	defer srv.Close()

	c := dial(t, srv, "?level=medium")

	var hello Hello
	c.next(EvtHello, &hello)
	if hello.ConnectionID == "" || len(hello.Difficulties) != 3 || len(hello.Images) != 2 {
		t.Errorf("hello = %+v", hello)
	}

	var board puzzle.Board
	c.next(EvtBoard, &board)
	if board.Size != 4 || len(board.Tiles) != 16 || !board.Valid() {
		t.Errorf("initial board size=%d tiles=%d", board.Size, len(board.Tiles))
	}
	if board.Solved() {
		t.Error("initial board must not be solved")
	}

	// Zero values still carry a data field
	moves := -1
	c.next(EvtMoves, &moves)
	if moves != 0 {
		t.Errorf("moves = %d", moves)
	}
	completed := true
	c.next(EvtCompleted, &completed)
	if completed {
		t.Error("completed = true on a fresh board")
	}

	var level puzzle.Level
	c.next(EvtDifficulty, &level)
	if level != puzzle.LevelMedium {
		t.Errorf("difficulty = %q", level)
	}
}

func TestWebSocketRejectsUnknownLevel(t *testing.T) {
	srv := httptest.NewServer(newTestServer(nil))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?level=insane"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("response = %v", resp)
	}
}

func TestWebSocketCommands(t *testing.T) {
	srv := httptest.NewServer(newTestServer(nil))
	defer srv.Close()

	c := dial(t, srv, "")
	var board puzzle.Board
	c.next(EvtBoard, &board)

	// Arm and cancel
	a, _ := board.PieceAt(0, 0)
	c.send(Command{Type: CmdSelect, TileID: &a.ID})
	if sel := c.selection(); sel.Outcome != "armed" || sel.Pending == nil || *sel.Pending != a.ID {
		t.Errorf("selection = %+v", sel)
	}
	c.send(Command{Type: CmdSelect, TileID: &a.ID})
	if sel := c.selection(); sel.Outcome != "cancelled" || sel.Pending != nil {
		t.Errorf("selection = %+v", sel)
	}

	// Clear only cancels a pending tile
	c.send(Command{Type: CmdClear})
	if sel := c.selection(); sel.Outcome != "ignored" || sel.Pending != nil {
		t.Errorf("clear without pending = %+v", sel)
	}
	c.send(Command{Type: CmdSelect, TileID: &a.ID})
	c.selection()
	c.send(Command{Type: CmdClear})
	if sel := c.selection(); sel.Outcome != "cancelled" || sel.Pending != nil {
		t.Errorf("clear with pending = %+v", sel)
	}

	// Swap by position
	c.send(Command{Type: CmdSelectAt, Row: 0, Col: 0})
	c.selection()
	c.send(Command{Type: CmdSelectAt, Row: 2, Col: 2})
	var moves int
	c.next(EvtMoves, &moves)
	if moves != 1 {
		t.Errorf("moves = %d", moves)
	}
	if sel := c.selection(); sel.Outcome != "swapped" || sel.Pending != nil {
		t.Errorf("selection = %+v", sel)
	}

	// Difficulty change starts a new board
	c.send(Command{Type: CmdDifficulty, Level: "HARD"})
	c.next(EvtBoard, &board)
	if board.Size != 5 {
		t.Errorf("board size = %d after difficulty change", board.Size)
	}

	// Stale tile from the previous board is ignored
	c.send(Command{Type: CmdSelect, TileID: &a.ID})
	if sel := c.selection(); sel.Outcome != "ignored" {
		t.Errorf("stale select = %+v", sel)
	}

	// Errors
	c.send(Command{Type: CmdDifficulty, Level: "insane"})
	var evt ErrorEvent
	c.next(EvtError, &evt)
	if evt.Command != CmdDifficulty {
		t.Errorf("error = %+v", evt)
	}
	c.send(Command{Type: "fly"})
	c.next(EvtError, &evt)
	if !strings.Contains(evt.Message, "fly") {
		t.Errorf("error = %+v", evt)
	}

	// Image change
	c.send(Command{Type: CmdImage, Image: "assets/img/2.png"})
	c.send(Command{Type: CmdSnapshot})
	var snap puzzle.Snapshot
	c.next(EvtSnapshot, &snap)
	if snap.Image != "assets/img/2.png" || snap.Moves != 0 || snap.State != puzzle.StatePlaying {
		t.Errorf("snapshot = %+v", snap)
	}

	// Abandon
	c.send(Command{Type: CmdAbandon})
	c.next(EvtSnapshot, &snap)
	if snap.State != puzzle.StateAbandoned {
		t.Errorf("state = %q after abandon", snap.State)
	}
}

func TestWebSocketSolveRecordsScore(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(newTestServer(store))
	defer srv.Close()

	c := dial(t, srv, "?level=easy")
	var board puzzle.Board
	c.next(EvtBoard, &board)

	swaps := 0
	for !board.Solved() {
		for _, tile := range board.Tiles {
			if tile.InPlace() {
				continue
			}
			occupant, _ := board.PieceAt(tile.Correct.Row, tile.Correct.Col)
			c.send(Command{Type: CmdSelect, TileID: &tile.ID})
			c.selection()
			c.send(Command{Type: CmdSelect, TileID: &occupant.ID})
			c.next(EvtBoard, &board)
			c.selection()
			swaps++
			break
		}
		if swaps > 9 {
			t.Fatal("board did not converge")
		}
	}

	c.send(Command{Type: CmdSnapshot})
	var snap puzzle.Snapshot
	c.next(EvtSnapshot, &snap)
	if snap.State != puzzle.StateCompleted || snap.Moves != swaps {
		t.Errorf("snapshot state=%q moves=%d, expected completed with %d", snap.State, snap.Moves, swaps)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		best, err := store.BestRecord("EASY")
		if err != nil {
			t.Fatalf("BestRecord() failed: %v", err)
		}
		if best != nil {
			if best.Movements != swaps || best.SessionID != snap.SessionID {
				t.Errorf("stored record = %+v", best)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("completed game was not stored")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestShutdownFlushesRecordsAndClosesConnections(t *testing.T) {
	store := newTestStore(t)
	s := newTestServer(store)
	srv := httptest.NewServer(s)
	defer srv.Close()

	c := dial(t, srv, "")
	c.next(EvtHello, nil)

	s.reporter.Submit(puzzle.Record{
		GameType:  puzzle.GameType,
		Level:     "EASY",
		Movements: 6,
		Time:      20,
		SessionID: "finished-at-shutdown",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	best, err := store.BestRecord("EASY")
	if err != nil {
		t.Fatalf("BestRecord() failed: %v", err)
	}
	if best == nil || best.SessionID != "finished-at-shutdown" {
		t.Errorf("record was not flushed before Shutdown returned: %+v", best)
	}

	s.mu.Lock()
	open := len(s.clients)
	s.mu.Unlock()
	if open != 0 {
		t.Errorf("%d connections still open after Shutdown", open)
	}
}
