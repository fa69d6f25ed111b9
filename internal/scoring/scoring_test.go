package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

func sampleRecord() puzzle.Record {
	return puzzle.Record{
		GameType:  puzzle.GameType,
		Level:     "EASY",
		Movements: 14,
		Time:      37,
		SessionID: "s-1",
		Image:     "assets/img/2.png",
	}
}

func TestHTTPReporterPostsPayload(t *testing.T) {
	var (
		mu      sync.Mutex
		method  string
		path    string
		ctype   string
		payload map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method, path, ctype = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	r, err := NewHTTPReporter(srv.URL+"/api/", "", time.Second, nil)
	if err != nil {
		t.Fatalf("NewHTTPReporter() failed: %v", err)
	}
	r.Submit(sampleRecord())
	r.Wait()

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPost || path != "/api/games/score" {
		t.Errorf("request = %s %s", method, path)
	}
	if ctype != "application/json" {
		t.Errorf("content type = %q", ctype)
	}

	want := map[string]any{"gameType": "PUZZLE", "level": "EASY", "movements": 14.0, "time": 37.0}
	if len(payload) != len(want) {
		t.Errorf("payload has unexpected fields: %v", payload)
	}
	for k, v := range want {
		if payload[k] != v {
			t.Errorf("payload[%q] = %v, expected %v", k, payload[k], v)
		}
	}
}

func TestHTTPReporterErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r, err := NewHTTPReporter(srv.URL, "games/score", time.Second, nil)
	if err != nil {
		t.Fatalf("NewHTTPReporter() failed: %v", err)
	}
	if err := r.Send(context.Background(), sampleRecord()); err == nil {
		t.Error("expected error for 500 response")
	}

	// Submit swallows the failure
	r.Submit(sampleRecord())
	r.Wait()

	if _, err := NewHTTPReporter("", "games/score", time.Second, nil); err == nil {
		t.Error("expected error for empty endpoint")
	}
}

func TestHTTPReporterSkipsCustomLevels(t *testing.T) {
	var (
		mu   sync.Mutex
		hits int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
	}))
	defer srv.Close()

	r, err := NewHTTPReporter(srv.URL, "", time.Second, nil)
	if err != nil {
		t.Fatalf("NewHTTPReporter() failed: %v", err)
	}

	rec := sampleRecord()
	rec.Level = puzzle.Level("solo").ScoreLevel()
	if err := r.Send(context.Background(), rec); !errors.Is(err, ErrUnsupportedLevel) {
		t.Errorf("Send() error = %v, expected ErrUnsupportedLevel", err)
	}
	r.Submit(rec)
	r.Wait()

	for _, level := range []string{"EASY", "MEDIUM", "HARD"} {
		rec.Level = level
		if err := r.Send(context.Background(), rec); err != nil {
			t.Errorf("Send(%s) failed: %v", level, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if hits != 3 {
		t.Errorf("backend received %d requests, expected 3", hits)
	}
}

func TestHTTPReporterTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r, _ := NewHTTPReporter(srv.URL, "", 50*time.Millisecond, nil)

	done := make(chan struct{})
	go func() {
		r.Submit(sampleRecord())
		r.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("submission did not time out")
	}
}

type fakeSaver struct {
	mu   sync.Mutex
	recs []puzzle.Record
	err  error
}

func (f *fakeSaver) SaveRecord(rec puzzle.Record) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.recs = append(f.recs, rec)
	return int64(len(f.recs)), nil
}

func TestStoreReporter(t *testing.T) {
	saver := &fakeSaver{}
	r := NewStoreReporter(saver, nil)
	r.Submit(sampleRecord())
	r.Wait()

	if len(saver.recs) != 1 || saver.recs[0].SessionID != "s-1" {
		t.Errorf("saved = %+v", saver.recs)
	}

	failing := NewStoreReporter(&fakeSaver{err: errors.New("disk full")}, nil)
	failing.Submit(sampleRecord())
	failing.Wait()
}

func TestMultiFansOut(t *testing.T) {
	var got []string
	m := Multi{
		puzzle.ReporterFunc(func(rec puzzle.Record) { got = append(got, "a:"+rec.Level) }),
		nil,
		Nop{},
		puzzle.ReporterFunc(func(rec puzzle.Record) { got = append(got, "b:"+rec.Level) }),
	}
	m.Submit(sampleRecord())

	if len(got) != 2 || got[0] != "a:EASY" || got[1] != "b:EASY" {
		t.Errorf("got %v", got)
	}
}
