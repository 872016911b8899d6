package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"dictparser/internal/dump"
	"dictparser/pkg/dictparser"
)

// DefaultAddr is used when neither --addr nor $DICTPARSE_ADDR is set.
const DefaultAddr = "localhost:22124"

// DefaultMaxBodySize limits the size of one dictionary sent to the server.
const DefaultMaxBodySize = 10 << 20

// Options configure a Server.
type Options struct {
	// MaxBodySize caps request bodies and WebSocket messages.
	MaxBodySize int64

	// MaxValueSize is passed to dictparser.WithMaxValueSize. Zero means no
	// limit beyond MaxBodySize.
	MaxValueSize uint64
}

type Server struct {
	opts Options
}

func New(opts Options) *Server {
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	return &Server{opts: opts}
}

// GetAddr returns the listen address, using the provided value, or falling
// back to $DICTPARSE_ADDR, or DefaultAddr.
func GetAddr(addr string) string {
	if addr != "" {
		return addr
	}
	if env := os.Getenv("DICTPARSE_ADDR"); env != "" {
		return env
	}
	return DefaultAddr
}

// Run serves the parse API on addr until the listener fails.
func Run(addr string, opts Options) error {
	srv := &http.Server{
		Addr:              GetAddr(addr),
		Handler:           New(opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Starting server", "addr", "http://"+srv.Addr)
	return srv.ListenAndServe()
}

// parseResponse is the JSON body returned for a successfully parsed dictionary.
type parseResponse struct {
	Properties []dump.Property `json:"properties"`
}

// errorResponse is the JSON body returned when parsing fails.
type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Offset *int64 `json:"offset,omitempty"`
}

// statusError carries a status code and JSON body through a handlerFunc.
type statusError struct {
	statusCode int
	body       errorResponse
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%d: %s", e.statusCode, e.body.Error)
}

// handlerFunc is the signature for all JSON handlers
type handlerFunc func(context.Context, *http.Request) ([]byte, error)

// wrapHandler adapts a handlerFunc to http.HandlerFunc
func (s *Server) wrapHandler(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h(r.Context(), r)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			var se *statusError
			if !errors.As(err, &se) {
				se = &statusError{
					statusCode: http.StatusInternalServerError,
					body:       errorResponse{Error: err.Error()},
				}
			}
			slog.Error("HTTP handler error",
				"method", r.Method,
				"path", r.URL.Path,
				"status", se.statusCode,
				"error", se.body.Error)
			w.WriteHeader(se.statusCode)
			_ = json.NewEncoder(w).Encode(se.body)
			return
		}
		_, _ = w.Write(data)
	}
}

// loggingMiddleware logs each HTTP request
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker to support WebSocket upgrades
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.wrapHandler(s.handleHealthz))
	mux.HandleFunc("POST /parse", s.wrapHandler(s.handleParse))
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s.loggingMiddleware(mux)
}

func (s *Server) handleHealthz(ctx context.Context, r *http.Request) ([]byte, error) {
	return []byte("{\"status\":\"ok\"}\n"), nil
}

func (s *Server) handleParse(ctx context.Context, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(nil, r.Body, s.opts.MaxBodySize)
	defer body.Close()

	resp, err := s.parse(body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, &statusError{
				statusCode: http.StatusRequestEntityTooLarge,
				body:       errorResponse{Error: fmt.Sprintf("request body exceeds %d bytes", mbe.Limit)},
			}
		}
		return nil, err
	}
	return json.Marshal(resp)
}

// parse reads one dictionary from r. Grammar violations are returned as a
// *statusError with status 422.
func (s *Server) parse(r io.Reader) (parseResponse, error) {
	var opts []dictparser.Option
	if s.opts.MaxValueSize > 0 {
		opts = append(opts, dictparser.WithMaxValueSize(s.opts.MaxValueSize))
	}

	props, err := dictparser.Parse(r, opts...)
	if err != nil {
		var perr *dictparser.ParseError
		if errors.As(err, &perr) {
			offset := perr.Offset
			return parseResponse{}, &statusError{
				statusCode: http.StatusUnprocessableEntity,
				body: errorResponse{
					Error:  perr.Error(),
					Kind:   perr.Kind.String(),
					Offset: &offset,
				},
			}
		}
		return parseResponse{}, err
	}
	return parseResponse{Properties: dump.NewProperties(props)}, nil
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  8192,
	WriteBufferSize: 8192,
	CheckOrigin: func(r *http.Request) bool {
		// Only same-origin browsers and clients without Origin header
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if origin == "http://"+r.Host || origin == "https://"+r.Host {
			return true
		}
		slog.Warn("Rejected WebSocket connection from unauthorized origin", "origin", origin, "host", r.Host)
		return false
	},
}

// handleWebSocket parses every incoming message as one dictionary and
// answers with a JSON frame holding either the properties or the error.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade to WebSocket", "error", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close WebSocket connection", "error", err)
		}
	}()

	conn.SetReadLimit(s.opts.MaxBodySize)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket read error", "error", err)
			}
			return
		}

		var reply any
		resp, err := s.parse(bytes.NewReader(msg))
		if err != nil {
			var se *statusError
			if errors.As(err, &se) {
				reply = se.body
			} else {
				reply = errorResponse{Error: err.Error()}
			}
			slog.Debug("WebSocket message rejected", "error", err, "size", len(msg))
		} else {
			reply = resp
		}

		if err := conn.WriteJSON(reply); err != nil {
			slog.Error("Failed to write WebSocket message", "error", err)
			return
		}
	}
}
