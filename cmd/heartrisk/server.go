package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"heartrisk/internal/api"
	"heartrisk/internal/artifacts"
	"heartrisk/internal/config"
	"heartrisk/internal/logs"
	"heartrisk/internal/metrics"
	"heartrisk/internal/predict"
)

// ErrArtifactsChanged ends serve when an artifact file is modified.
var ErrArtifactsChanged = errors.New("artifacts changed")

type server struct {
	cfg     config.Config
	logger  *logs.Logger
	metrics *metrics.Registry
	set     *artifacts.Set
	http    *http.Server
}

func newServer(cfg config.Config) (*server, error) {
	logger := logs.NewLogger(cfg.LogBufferSize, cfg.Level())

	set, err := artifacts.Load(cfg.ScalerPath, cfg.ModelPath)
	if err != nil {
		logger.Error("failed to load artifacts", "err", err)
		return nil, err
	}

	reg := metrics.NewRegistry()
	engine := predict.NewEngine(set)
	handler := api.NewHandler(engine, reg, logger, cfg)
	mux := http.NewServeMux()

	return &server{
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		set:     set,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           api.RegisterRoutes(mux, handler),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *server) run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.serve(ctx, ln)
}

// serve blocks until ctx is done or the listener fails, then shuts the
// server down within the configured timeout.
func (s *server) serve(ctx context.Context, ln net.Listener) error {
	watched := false
	if s.cfg.ExitOnArtifactChange {
		wctx, cancel, err := artifacts.UntilModified(ctx, s.set.Paths()...)
		if err != nil {
			ln.Close()
			return fmt.Errorf("watch artifacts: %w", err)
		}
		defer cancel()
		ctx, watched = wctx, true
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		args := []any{"name", s.cfg.AppName, "version", s.cfg.Version, "addr", ln.Addr().String()}
		for _, info := range s.set.Info() {
			args = append(args, string(info.Role), info.Kind+" "+info.Path)
		}
		s.logger.Info("server started", args...)

		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		var changed error
		if cause := context.Cause(ctx); watched && cause != nil && !errors.Is(cause, context.Canceled) {
			s.metrics.Inc(metrics.ArtifactChangesTotal)
			s.logger.Warn("artifact changed, shutting down", "reason", cause)
			changed = fmt.Errorf("%w: %v", ErrArtifactsChanged, cause)
		}

		sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(sctx); err != nil {
			s.logger.Error("shutdown failed", "err", err)
			return err
		}
		s.logger.Info("server stopped")
		return changed
	})

	return g.Wait()
}
