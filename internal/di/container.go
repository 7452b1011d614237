package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/beerlens/backend/config"
	httpDelivery "github.com/beerlens/backend/internal/delivery/http"
	"github.com/beerlens/backend/internal/domain"
	"github.com/beerlens/backend/internal/infrastructure/bierjp"
	"github.com/beerlens/backend/internal/infrastructure/metrics"
	"github.com/beerlens/backend/internal/infrastructure/session"
	"github.com/beerlens/backend/internal/logging"
	"github.com/beerlens/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds how long Serve waits for in-flight requests
const ShutdownTimeout = 10 * time.Second

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	SelectionStore    domain.SelectionStore
	SelectionService  *usecase.SelectionService
	ComparisonService *usecase.ComparisonService

	closers []func() error
}

// BuildContainer wires stores, remote clients, metrics and services from cfg.
// Metrics are registered with reg, or the default registerer when reg is nil.
func BuildContainer(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Container, error) {
	logger = logging.OrNop(logger)
	c := &Container{Config: cfg, Logger: logger}

	// Infrastructure Layer
	store, err := c.buildStore()
	if err != nil {
		return nil, err
	}
	c.SelectionStore = store

	repairer, err := bierjp.NewRepairer(cfg.Remote.Repair)
	if err != nil {
		c.Cleanup()
		return nil, err
	}
	client := bierjp.NewClient(bierjp.ClientConfig{
		ProxyBase:         cfg.Remote.ProxyBase,
		DetailEndpoint:    cfg.Remote.DetailEndpoint,
		Timeout:           cfg.Remote.Timeout,
		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
		Burst:             cfg.Remote.Burst,
		Repairer:          repairer,
	}, logger)

	observer, err := metrics.NewPrometheusObserver(metrics.DefaultNamespace, reg)
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	// Usecase Layer
	c.SelectionService = usecase.NewSelectionService(
		store,
		usecase.SelectionServiceConfig{MaxSelection: cfg.Compare.MaxSelection},
		observer,
		logger,
	)
	c.ComparisonService = usecase.NewComparisonService(
		client,
		client,
		usecase.ComparisonServiceConfig{EntryConcurrency: cfg.Compare.EntryConcurrency},
		observer,
		logger,
	)

	logger.Debug("container built",
		zap.String("session_store", cfg.Session.Store),
		zap.String("detail_endpoint", cfg.Remote.DetailEndpoint),
		zap.Bool("proxied", cfg.Remote.ProxyBase != ""),
		zap.String("repair", cfg.Remote.Repair),
		zap.Int("entry_concurrency", cfg.Compare.EntryConcurrency))

	return c, nil
}

func (c *Container) buildStore() (domain.SelectionStore, error) {
	switch c.Config.Session.Store {
	case "sqlite":
		store, err := session.NewSQLiteStore(c.Config.Session.SQLitePath, c.Config.Session.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to open selection store: %w", err)
		}
		c.closers = append(c.closers, store.Close)

		stop := store.StartSweeper(store.TTL()/4, func(deleted int64, err error) {
			if err != nil {
				c.Logger.Warn("session sweep failed", zap.Error(err))
				return
			}
			if deleted > 0 {
				c.Logger.Debug("expired sessions swept", zap.Int64("entries", deleted))
			}
		})
		// Runs before Close since closers unwind in reverse
		c.closers = append(c.closers, func() error {
			stop()
			return nil
		})
		return store, nil
	case "memory", "":
		return session.NewMemoryStore(c.Config.Session.MaxSessions, c.Config.Session.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session store: %s", c.Config.Session.Store)
	}
}

// Router builds the HTTP router serving the container's services
func (c *Container) Router() *gin.Engine {
	handler := httpDelivery.NewHandler(c.SelectionService, c.ComparisonService, c.Logger)
	return httpDelivery.SetupRouter(c.Config, handler)
}

// Serve runs the HTTP API on the configured port until ctx is done,
// then shuts the server down gracefully.
func (c *Container) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", c.Config.Server.Port),
		Handler:           c.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return <-errCh
}

// Cleanup gracefully shuts down all resources
func (c *Container) Cleanup() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
