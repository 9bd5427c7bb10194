// Package server serves the event monitor: the embedded page and the
// websocket it talks to.
package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/soar/padmux/internal/hub"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	remote      hub.RemoteInput
	assets      *Assets
	addr        string
	httpServer  *http.Server
	log         *slog.Logger
}

// New prepares a server for the frontend in frontendFS. The frontend is
// minified here, so errors in it surface before anything listens.
func New(h *hub.Hub, b *hub.Broadcaster, remote hub.RemoteInput, frontendFS fs.FS, addr string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	assets, err := LoadAssets(frontendFS, NewMinifier())
	if err != nil {
		return nil, err
	}
	s := &Server{
		hub:         h,
		broadcaster: b,
		remote:      remote,
		assets:      assets,
		addr:        addr,
		log:         logger.With("component", "server"),
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Debug("frontend loaded", "files", len(assets.files), "minified_bytes", assets.Saved())
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.remote, s.log))
	mux.Handle("/", s.assets)
	return mux
}

// ListenAndServe binds addr and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("HTTP server listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
