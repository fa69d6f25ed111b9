package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

// DefaultPath is the submission path relative to the backend base URL.
const DefaultPath = "games/score"

// ErrUnsupportedLevel is returned for records whose level the backend does
// not know, such as custom tiers from the configuration.
var ErrUnsupportedLevel = errors.New("scoring: level not accepted by backend")

// backendLevels are the level identifiers the score backend accepts.
var backendLevels = map[string]bool{
	puzzle.LevelEasy.ScoreLevel():   true,
	puzzle.LevelMedium.ScoreLevel(): true,
	puzzle.LevelHard.ScoreLevel():   true,
}

// HTTPReporter posts records to the score backend.
// Delivery is fire-and-forget: there is no retry and no authentication.
type HTTPReporter struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  *log.Logger
	wg      sync.WaitGroup
}

// NewHTTPReporter creates a reporter that posts to path under endpoint.
func NewHTTPReporter(endpoint, path string, timeout time.Duration, logger *log.Logger) (*HTTPReporter, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("scoring: empty endpoint")
	}
	if path == "" {
		path = DefaultPath
	}
	target, err := url.JoinPath(endpoint, path)
	if err != nil {
		return nil, fmt.Errorf("scoring: invalid endpoint %q: %w", endpoint, err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &HTTPReporter{
		url:     target,
		client:  &http.Client{},
		timeout: timeout,
		logger:  logger,
	}, nil
}

// URL returns the submission URL.
func (r *HTTPReporter) URL() string {
	return r.url
}

// Submit implements puzzle.Reporter.
// Records of custom tiers are logged and skipped.
func (r *HTTPReporter) Submit(rec puzzle.Record) {
	if !backendLevels[rec.Level] {
		r.logger.Warn("skipping score submission", "session", rec.SessionID, "level", rec.Level, "error", ErrUnsupportedLevel)
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.Send(ctx, rec); err != nil {
			r.logger.Warn("failed to submit score", "session", rec.SessionID, "error", err)
			return
		}
		r.logger.Debug("score submitted", "level", rec.Level, "moves", rec.Movements, "time", rec.Time)
	}()
}

// Send posts one record and waits for the response.
func (r *HTTPReporter) Send(ctx context.Context, rec puzzle.Record) error {
	if !backendLevels[rec.Level] {
		return fmt.Errorf("%w: %q", ErrUnsupportedLevel, rec.Level)
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("scoring: cannot encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("scoring: cannot build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("scoring: request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("scoring: backend returned %s", resp.Status)
	}
	return nil
}

// Wait blocks until every submitted record has been delivered or has failed.
func (r *HTTPReporter) Wait() {
	r.wg.Wait()
}
