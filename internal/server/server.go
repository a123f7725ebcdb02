// Package server exposes the summarization pipeline as a Slack slash
// command endpoint with signature verification and async responses.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"

	"recap/internal/recap"
)

// Service runs one summarization request. Satisfied by *recap.Service.
type Service interface {
	Run(ctx context.Context, req recap.Request) (recap.Result, error)
}

// Server handles the /slack/summarize slash command. Each accepted command
// is acknowledged immediately and processed in a background goroutine that
// posts the result to the command's response URL.
type Server struct {
	service       Service
	signingSecret string
	log           *slog.Logger
	httpClient    *http.Client

	// wg tracks in-flight background summaries for graceful shutdown.
	wg sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithHTTPClient overrides the client used for response URL posts (useful
// for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) {
		s.httpClient = client
	}
}

// NewLogger builds the server's default colorized slog logger.
func NewLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
}

// New creates a Server. The signing secret is required: every slash command
// request is verified before it is parsed.
func New(service Service, signingSecret string, opts ...Option) *Server {
	s := &Server{
		service:       service,
		signingSecret: signingSecret,
		log:           NewLogger(false),
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler for the server.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /slack/summarize", s.handleSummarize)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withAccessLog(mux)
}

// Wait blocks until all in-flight background summaries have finished
// posting. Called during shutdown after the listener has stopped.
func (s *Server) Wait() {
	s.wg.Wait()
}

// withAccessLog tags each request with an id and logs its outcome.
func (s *Server) withAccessLog(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		r = r.WithContext(withRequestID(r.Context(), requestID))
		h.ServeHTTP(w, r)

		s.log.Debug("request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
