package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-progressive-gltracer/pkg/core"
	"github.com/df07/go-progressive-gltracer/pkg/input"
)

const (
	writeWait    = 5 * time.Second
	pingInterval = 30 * time.Second
)

// Server exposes viewer telemetry and remote commands over HTTP
type Server struct {
	addr       string
	hub        *Hub
	queue      *input.Queue
	logger     core.Logger
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// NewServer creates a telemetry server. Commands posted to it are pushed
// onto queue for the render loop.
func NewServer(addr string, hub *Hub, queue *input.Queue, logger core.Logger) *Server {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Server{
		addr:   addr,
		hub:    hub,
		queue:  queue,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/commands", s.handleCommands)
	mux.HandleFunc("/api/command", s.handleCommand)
	mux.HandleFunc("/api/stream", s.handleStream)
	return mux
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: telemetry listen on %s: %v", core.ErrConfigurationFault, s.addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on an existing listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("Telemetry server on http://%s/api/stats\n", listener.Addr())
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"subscribers": s.hub.Subscribers(),
	})
}

// handleStats returns the latest frame stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := s.hub.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no frame rendered yet")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleCommands lists the accepted command names
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"commands": input.KindNames()})
}

// handleCommand queues a remote command for the render loop
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	cmd, repeat, err := parseCommandRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	queued := 0
	for i := 0; i < repeat; i++ {
		if !s.queue.Push(cmd) {
			break
		}
		queued++
	}
	if queued == 0 {
		writeError(w, http.StatusServiceUnavailable, "command queue full")
		return
	}

	s.logger.Printf("Remote command %s x%d\n", cmd.Kind, queued)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"command": cmd.Kind.String(),
		"queued":  queued,
	})
}

// parseCommandRequest builds a command from query parameters:
// name (required), dt for movement, dx/dy for look, repeat count.
func parseCommandRequest(values url.Values) (input.Command, int, error) {
	name := values.Get("name")
	if name == "" {
		return input.Command{}, 0, fmt.Errorf("missing name")
	}
	kind, err := input.ParseKind(name)
	if err != nil {
		return input.Command{}, 0, err
	}

	repeat, err := parseIntParam(values, "repeat", 1, 1, 100)
	if err != nil {
		return input.Command{}, 0, err
	}

	switch kind {
	case input.MoveForward, input.MoveBackward, input.StrafeLeft, input.StrafeRight:
		dt, err := parseFloatParam(values, "dt", 0.1, 0, 10)
		if err != nil {
			return input.Command{}, 0, err
		}
		return input.Move(kind, dt), repeat, nil
	case input.Look:
		dx, err := parseFloatParam(values, "dx", 0, -10000, 10000)
		if err != nil {
			return input.Command{}, 0, err
		}
		dy, err := parseFloatParam(values, "dy", 0, -10000, 10000)
		if err != nil {
			return input.Command{}, 0, err
		}
		return input.LookDelta(dx, dy), repeat, nil
	}
	return input.Key(kind), repeat, nil
}

// handleStream upgrades to a websocket and streams stats and console events
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("Stream upgrade failed: %v\n", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	// Reader goroutine only detects the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if stats, ok := s.hub.Latest(); ok {
		if err := writeEvent(conn, StreamEvent{Type: "stats", Stats: &stats}); err != nil {
			return
		}
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, event); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, event StreamEvent) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(event)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if !(parsed >= min && parsed <= max) {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
