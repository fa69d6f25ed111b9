package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-puzzle/internal/assets"
	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
	"github.com/vovakirdan/tui-puzzle/internal/scoring"
	"github.com/vovakirdan/tui-puzzle/internal/storage"
)

// Options configures a Server.
type Options struct {
	// Engine is the template for every connection's engine. Scheduler,
	// Reporter and Logger are set per connection.
	Engine puzzle.Config

	// Store backs the score endpoints and records finished games. Optional.
	Store *storage.Store

	// Reporter receives finished games in addition to the store. Optional.
	Reporter puzzle.Reporter

	// Assets describes catalog images. Optional.
	Assets *assets.Preloader

	// AllowedOrigins restricts WebSocket origins. Empty allows any origin.
	AllowedOrigins []string

	Logger *log.Logger
}

// Server is the HTTP and WebSocket surface of the puzzle.
type Server struct {
	opts     Options
	router   *mux.Router
	upgrader websocket.Upgrader
	stored   *scoring.StoreReporter
	reporter puzzle.Reporter
	logger   *log.Logger
	http     *http.Server

	mu      sync.Mutex
	clients map[*client]struct{}
	wg      sync.WaitGroup
}

// NewServer creates a server and registers its routes.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		opts:    opts,
		router:  mux.NewRouter(),
		logger:  logger,
		clients: make(map[*client]struct{}),
	}

	reporters := scoring.Multi{}
	if opts.Store != nil {
		s.stored = scoring.NewStoreReporter(opts.Store, logger)
		reporters = append(reporters, s.stored)
	}
	if opts.Reporter != nil {
		reporters = append(reporters, opts.Reporter)
	}
	s.reporter = reporters
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/difficulties", s.handleDifficulties).Methods("GET")
	api.HandleFunc("/images", s.handleImages).Methods("GET")
	api.HandleFunc("/scores/{level}", s.handleScores).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting web server", "address", addr)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}

	s.logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops accepting requests, closes every open connection and
// waits until finished games have been written to the store. The store
// itself belongs to the caller and stays open.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}

	// Hijacked WebSocket connections are not tracked by http.Server
	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()

	if s.stored != nil {
		s.stored.Wait()
	}
	return err
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.opts.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) tiers() []puzzle.Difficulty {
	if len(s.opts.Engine.Difficulties) > 0 {
		return s.opts.Engine.Difficulties
	}
	return puzzle.Difficulties
}

func (s *Server) handleDifficulties(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.tiers())
}

// imageEntry is one catalog image, with dimensions when they could be read.
type imageEntry struct {
	Ref    string `json:"ref"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	entries := make([]imageEntry, 0, len(s.opts.Engine.Images))
	for _, ref := range s.opts.Engine.Images {
		entry := imageEntry{Ref: ref}
		if s.opts.Assets != nil {
			if info, err := s.opts.Assets.Load(r.Context(), ref); err == nil {
				entry.Format, entry.Width, entry.Height = info.Format, info.Width, info.Height
			}
		}
		entries = append(entries, entry)
	}
	respondJSON(w, http.StatusOK, entries)
}

// scoreEntry is the public form of a stored record.
type scoreEntry struct {
	Rank      int       `json:"rank"`
	Level     string    `json:"level"`
	Movements int       `json:"movements"`
	Time      int       `json:"time"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		respondError(w, http.StatusServiceUnavailable, "score storage is disabled")
		return
	}

	level, err := puzzle.ParseLevel(mux.Vars(r)["level"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	records, err := s.opts.Store.TopRecords(level.ScoreLevel(), limit)
	if err != nil {
		s.logger.Error("failed to load scores", "level", level, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load scores")
		return
	}

	out := make([]scoreEntry, len(records))
	for i, rec := range records {
		out[i] = scoreEntry{
			Rank:      i + 1,
			Level:     rec.Level,
			Movements: rec.Movements,
			Time:      rec.Time,
			Image:     rec.Image,
			CreatedAt: rec.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Store == nil {
		respondError(w, http.StatusServiceUnavailable, "score storage is disabled")
		return
	}
	stats, err := s.opts.Store.GetAllLevelStats()
	if err != nil {
		s.logger.Error("failed to load stats", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// handleWebSocket upgrades the request and starts a fresh engine for it.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	logger := s.logger.With("conn", id)

	cfg := s.opts.Engine
	if lv := r.URL.Query().Get("level"); lv != "" {
		if level, err := puzzle.ParseLevel(lv); err == nil {
			cfg.Level = level
		} else {
			cfg.Level = puzzle.Level(lv)
		}
	}
	if img := r.URL.Query().Get("image"); img != "" {
		cfg.Image = img
	}

	loop := puzzle.NewLoop()
	cfg.Scheduler = loop
	cfg.Reporter = s.reporter
	cfg.Logger = logger

	engine, err := puzzle.New(cfg)
	if err != nil {
		loop.Close()
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		engine.Abandon()
		loop.Close()
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	logger.Info("connection opened", "remote", r.RemoteAddr)

	c := &client{
		id:     id,
		conn:   conn,
		engine: engine,
		loop:   loop,
		logger: logger,
		cmds:   make(chan Command),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}

	c.emit(EvtHello, Hello{
		ConnectionID: id,
		Difficulties: engine.Difficulties(),
		Images:       engine.Images(),
	})
	c.subscribe()

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go c.writePump()
	go c.readPump()
	go func() {
		defer s.wg.Done()
		c.run()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		logger.Info("connection closed")
	}()
}
