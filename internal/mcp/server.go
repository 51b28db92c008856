package mcp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/listing-watch/internal/config"
	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/domain/run"
	"github.com/honeycarbs/listing-watch/internal/domain/snapshot"
	"github.com/honeycarbs/listing-watch/internal/mcp/tools"
	"github.com/honeycarbs/listing-watch/pkg/logging"
)

const serverVersion = "0.2.0"

// Deps are the domain services exposed as tools
type Deps struct {
	RunService run.Service
	Listings   []domain.Listing
	Codec      snapshot.Codec
	JobReader  tools.JobReader // optional; enables recent_jobs
}

// Server wraps an MCP SDK server with an HTTP listener
type Server struct {
	logger *logging.Logger
	config config.Config

	srv     *http.Server
	started atomic.Bool
}

// NewServer constructs a new MCP HTTP server
func NewServer(log *logging.Logger, cfg config.Config, deps Deps) *Server {
	impl := &sdkmcp.Implementation{
		Name:    "listing-watch",
		Version: serverVersion,
	}

	mcpServer := sdkmcp.NewServer(impl, nil)

	tools.Register(mcpServer, log.Named("tools"),
		tools.WithRunListing(deps.RunService, deps.Listings),
		tools.WithListListings(deps.Listings),
		tools.WithDiffSnapshots(deps.Codec),
		tools.WithRecentJobs(deps.JobReader),
	)

	handler := sdkmcp.NewStreamableHTTPHandler(func(req *http.Request) *sdkmcp.Server {
		return mcpServer
	}, nil)

	httpSrv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           newMux(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		logger: log,
		config: cfg,
		srv:    httpSrv,
	}
}

func newMux(stream http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/mcp/stream", stream)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Handler exposes the HTTP routes, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run starts the HTTP server and blocks until shutdown
func (s *Server) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info("MCP HTTP server listening", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutdown requested for MCP HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("MCP HTTP server shutdown with error", "err", err)
		return err
	}

	s.logger.Info("MCP HTTP server shutdown complete")
	return nil
}
