package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/sitechat"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before the server is shut down.
const ShutdownTimeout = 10 * time.Second

// maxRequestBody limits the size of JSON request bodies.
const maxRequestBody = 1 << 20

// Server serves the chat and ingest API.
type Server struct {
	ln     net.Listener
	server *http.Server
	mux    *http.ServeMux

	// Addr is the bind address, e.g. ":3000".
	Addr string

	Asker    sitechat.Asker
	Ingester sitechat.Ingester

	// Metrics, when set, is served at /metrics.
	Metrics http.Handler

	// Middleware, when set, wraps every route.
	Middleware func(http.Handler) http.Handler

	Logger *slog.Logger
}

// NewServer creates a Server. Services must be set before Open.
func NewServer() *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		Logger: slog.New(slog.DiscardHandler),
	}

	s.mux.HandleFunc("/api/chat", s.handleChat)
	s.mux.HandleFunc("/api/ingest", s.handleIngest)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)

	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ServeHTTP routes the request through the optional middleware.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var h http.Handler = s.mux
	if s.Middleware != nil {
		h = s.Middleware(h)
	}
	h.ServeHTTP(w, r)
}

// Open binds Addr and begins serving in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("serve", "err", err)
		}
	}()
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Question string                 `json:"question"`
	History  []sitechat.ChatMessage `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "No question in the request")
		return
	}

	answer, err := s.Asker.Ask(r.Context(), req.Question, req.History)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// ingestRequest is the body of POST /api/ingest.
type ingestRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.Ingester == nil {
		writeError(w, http.StatusNotImplemented, "Ingestion is disabled")
		return
	}

	var req ingestRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "No url in the request")
		return
	}

	result, err := s.Ingester.Ingest(r.Context(), req.URL)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.Metrics == nil {
		http.NotFound(w, r)
		return
	}
	s.Metrics.ServeHTTP(w, r)
}

// Error writes err as a JSON error response with the status matching its
// code. Internal errors are logged.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := sitechat.ErrorCode(err), sitechat.ErrorMessage(err)
	if code == sitechat.EINTERNAL {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	if message == "" {
		message = "Something went wrong"
	}
	writeError(w, ErrorStatusCode(code), message)
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	sitechat.EINVALID:     http.StatusBadRequest,
	sitechat.ENOTFOUND:    http.StatusNotFound,
	sitechat.EUNAVAILABLE: http.StatusServiceUnavailable,
	sitechat.EINTERNAL:    http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
