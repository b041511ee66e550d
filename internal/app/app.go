package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/code-challenge/internal/config"
	"github.com/riskibarqy/code-challenge/internal/infrastructure/account/anubis"
	cacherepo "github.com/riskibarqy/code-challenge/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/code-challenge/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/code-challenge/internal/platform/cache"
	idgen "github.com/riskibarqy/code-challenge/internal/platform/id"
	"github.com/riskibarqy/code-challenge/internal/platform/logging"
	"github.com/riskibarqy/code-challenge/internal/platform/resilience"
	"github.com/riskibarqy/code-challenge/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// App owns the HTTP server, the completion sweeper and the storage handles.
type App struct {
	Server *http.Server

	sweeper *CompletionSweeper
	storage *storage
	logger  *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	directory := store.users
	if cfg.CacheEnabled {
		directory = cacherepo.NewUserDirectory(directory, basecache.NewStore(cfg.CacheTTL))
	}

	service := usecase.NewChallengeService(
		store.challenges,
		directory,
		idgen.NewUUIDGenerator(),
		logger,
		usecase.ChallengeServiceConfig{
			LeaderboardFetchConcurrency: cfg.LeaderboardFetchConcurrency,
			CompletionWorkers:           cfg.CompletionWorkers,
		},
	)

	var principals *basecache.Store
	if cfg.CacheEnabled {
		principals = basecache.NewStore(cfg.CacheTTL)
	}
	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		anubis.ClientConfig{
			BaseURL:        cfg.AnubisBaseURL,
			IntrospectPath: cfg.AnubisIntrospectURL,
			AdminKey:       cfg.AnubisAdminKey,
			Timeout:        cfg.AnubisTimeout,
		},
		resilience.FromConfig(cfg.AnubisCircuit),
		principals,
		logger,
	)

	handler := httpapi.NewHandler(service, logger)
	router := httpapi.NewRouter(handler, anubisClient, logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	a := &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		storage: store,
		logger:  logger,
	}
	if cfg.CompletionSweepEnabled {
		a.sweeper = NewCompletionSweeper(service, cfg.CompletionSweepInterval, logger)
	}
	return a, nil
}

// Run serves HTTP until ctx is done, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		if a.sweeper != nil {
			a.sweeper.Run(sweepCtx)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	stopSweep()
	<-sweepDone

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("graceful shutdown failed: %w", err))
	}

	a.logger.Info("http server stopped")
	return runErr
}

func (a *App) Close() error {
	if a == nil || a.storage == nil {
		return nil
	}
	return a.storage.Close()
}
