package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/teamboard/popcache/internal/adapters/cache"
	eventadapter "github.com/teamboard/popcache/internal/adapters/events"
	httpadapter "github.com/teamboard/popcache/internal/adapters/http"
	"github.com/teamboard/popcache/internal/adapters/jobs"
	metricsadapter "github.com/teamboard/popcache/internal/adapters/metrics"
	"github.com/teamboard/popcache/internal/adapters/postgres"
	"github.com/teamboard/popcache/internal/application"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	decay      *jobs.DecayWorker
	rebuild    *jobs.RebuildWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping popularity cache service", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	posts := postgres.NewPostRepository(db)
	listings := cacheadapter.NewRedisListingStore(redisClient)
	scores := cacheadapter.NewRedisScoreStore(redisClient)
	leases := cacheadapter.NewRedisLeaseStore(redisClient)
	snapshots := cacheadapter.NewLocalSnapshotCache(cfg.SnapshotSize, cfg.SnapshotTTL)
	recorder := metricsadapter.NewRecorder()

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			WeeklyTTL:               cfg.WeeklyTTL,
			LegendTTL:               cfg.LegendTTL,
			FirstPageTTL:            cfg.FirstPageTTL,
			ListingSize:             cfg.ListingSize,
			RealtimeSize:            cfg.RealtimeSize,
			FallbackLimit:           cfg.FallbackLimit,
			MaxPageSize:             cfg.MaxPageSize,
			CacheReadTimeout:        cfg.CacheReadTimeout,
			LeaseWait:               cfg.LeaseWait,
			LeaseDuration:           cfg.LeaseDuration,
			RebuildMaxAttempts:      cfg.RebuildMaxAttempts,
			RebuildBackoffBase:      cfg.RebuildBackoffBase,
			RefreshWorkers:          cfg.RefreshWorkers,
			RefreshQueueSize:        cfg.RefreshQueueSize,
			BreakerFailureThreshold: cfg.BreakerFailureThreshold,
			BreakerMinRequests:      cfg.BreakerMinRequests,
			BreakerCoolDown:         cfg.BreakerCoolDown,
			BreakerHalfOpenCalls:    cfg.BreakerHalfOpenCalls,
			BreakerCountingWindow:   cfg.BreakerCountingWindow,
		},
		Listings:  listings,
		Scores:    scores,
		Leases:    leases,
		Posts:     posts,
		Snapshots: snapshots,
		Metrics:   recorder,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler, recorder.Handler())
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	decay := jobs.NewDecayWorker(logger, scores, recorder, cfg.DecayInterval, cfg.DecayFactor, cfg.DecayFloor)
	rebuild := jobs.NewRebuildWorker(logger, posts, listings, eventadapter.NewLoggingPublisher(logger), jobs.RebuildConfig{
		Interval:     cfg.RebuildInterval,
		WeeklyWindow: time.Duration(cfg.WeeklyWindowDays) * 24 * time.Hour,
		LegendLikes:  cfg.LegendMinLikes,
		ListingSize:  cfg.ListingSize,
		WeeklyTTL:    cfg.WeeklyTTL,
		LegendTTL:    cfg.LegendTTL,
	})

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    svc,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		decay:      decay,
		rebuild:    rebuild,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("refresh worker pool started", "workers", r.cfg.RefreshWorkers)
		_ = r.service.RunRefreshWorkers(ctx)
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

// RunWorker runs the periodic jobs without the API surface: the score decay
// loop and the daily membership rebuild.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("decay worker started")
		errCh <- r.decay.Run(ctx)
	}()
	go func() {
		r.logger.Info("daily rebuild worker started")
		errCh <- r.rebuild.Run(ctx)
	}()

	err := <-errCh
	stop()
	<-errCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
