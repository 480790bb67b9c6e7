package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethpandaops/reportoor/pkg/config"
	"github.com/ethpandaops/reportoor/pkg/indexstore"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Server exposes generated reports over HTTP.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// Compile-time interface check.
var _ Server = (*server)(nil)

type server struct {
	log        logrus.FieldLogger
	cfg        *config.APIConfig
	outputsDir string
	indexStore indexstore.Store
	httpServer *http.Server
}

// NewServer creates an API server serving files from outputsDir. The
// index store may be nil, in which case the index endpoints are not
// registered.
func NewServer(
	log logrus.FieldLogger,
	cfg *config.APIConfig,
	outputsDir string,
	indexStore indexstore.Store,
) Server {
	return &server{
		log:        log.WithField("component", "api"),
		cfg:        cfg,
		outputsDir: outputsDir,
		indexStore: indexStore,
	}
}

// Start begins listening. The HTTP server runs until Stop is called.
func (s *server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Give the listener a moment to fail fast on a bad address.
	select {
	case err := <-errCh:
		return fmt.Errorf("starting http server: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	s.log.WithField("listen", s.cfg.Listen).Info("API server started")

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}
