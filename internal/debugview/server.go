package debugview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait   = 30 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  256,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server exposes the hub over HTTP:
//
//	GET /debug/time    latest snapshot as JSON
//	GET /debug/stream  websocket feed of snapshots
type Server struct {
	hub          *Hub
	srv          *http.Server
	writeTimeout time.Duration
	log          *zap.Logger
}

func NewServer(addr string, hub *Hub, writeTimeout time.Duration, log *zap.Logger) *Server {
	s := &Server{hub: hub, writeTimeout: writeTimeout, log: log}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/time", s.handleTime)
	mux.HandleFunc("/debug/stream", s.handleStream)
	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("debug server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("debug server shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	data := s.hub.Last()
	if data == nil {
		http.Error(w, "no snapshot published yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(data)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("debug stream upgrade failed", zap.Error(err))
		return
	}
	ch := s.hub.Subscribe()
	s.log.Debug("debug stream connected", zap.String("remote", r.RemoteAddr))

	go s.readPump(conn, ch)
	s.writePump(conn, ch)
}

// readPump discards client frames and unsubscribes once the client goes away.
func (s *Server) readPump(conn *websocket.Conn, ch chan []byte) {
	defer s.hub.Unsubscribe(ch)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, ch chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := conn.Close(); err != nil {
			s.log.Debug("close debug stream", zap.Error(err))
		}
	}()

	if last := s.hub.Last(); last != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, last); err != nil {
			return
		}
	}
	for {
		select {
		case data, ok := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
