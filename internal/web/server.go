// Package web serves the collector API and dashboard.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/cloudscope/internal/provider"
	"github.com/user/cloudscope/internal/storage"
	"github.com/user/cloudscope/internal/util"
)

// Server is the collector web server.
type Server struct {
	db     *storage.DB
	config *util.Config
	port   int
	srv    *http.Server
}

// NewServer creates a new web server.
func NewServer(db *storage.DB, cfg *util.Config, port int) *Server {
	return &Server{
		db:     db,
		config: cfg,
		port:   port,
	}
}

// Start starts the web server and blocks until shutdown.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	h := NewHandlers(s.db, provider.Default(), s.config.APIKey)

	mux.HandleFunc("/", h.Dashboard)
	mux.HandleFunc("/api/results", h.APIAddResults)
	mux.HandleFunc("/api/hosts", h.APIGetHosts)
	mux.HandleFunc("/api/stats", h.APIGetStats)
	mux.HandleFunc("/api/toggle/", h.APIToggleHost)
	mux.HandleFunc("/api/export", h.APIExport)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.srv.Shutdown(ctx)
	}()

	util.Info("Collector listening on port %d", s.port)

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the web server.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}
