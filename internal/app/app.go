package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tikko-events/checkout-go/internal/checkout"
	"github.com/tikko-events/checkout-go/internal/config"
	"github.com/tikko-events/checkout-go/internal/pixwatch"
	"github.com/tikko-events/checkout-go/internal/postgres"
	"github.com/tikko-events/checkout-go/internal/receipts"
	"github.com/tikko-events/checkout-go/internal/redis"
	postgresrepo "github.com/tikko-events/checkout-go/internal/repository/postgres"
	redisrepo "github.com/tikko-events/checkout-go/internal/repository/redis"
	"github.com/tikko-events/checkout-go/internal/tikko"
	httpgin "github.com/tikko-events/checkout-go/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	watcher    *pixwatch.Watcher
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := cfg.Postgres.DSN()

	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(dsn, cfg.Postgres.MigrationsDir); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redis.New(context.Background(), redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	receiptStore := receipts.NewStore(store)
	sessionStore := redisrepo.NewSessionStore(rdb, cfg.Checkout.SessionTTL)
	cache := redisrepo.NewCache(rdb)
	pubsub := redisrepo.NewCheckoutPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "coupon", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Initialize upstream client
	tikkoClient := tikko.NewClient(tikko.Config{
		BaseURL:      cfg.Tikko.BaseURL,
		RefreshToken: cfg.Tikko.RefreshToken,
		Timeout:      cfg.Tikko.Timeout,
	}, logger)

	couponGateway := redisrepo.NewCachingCouponGateway(tikkoClient, cache, 60*time.Second)

	// Initialize service
	svc := checkout.New(
		sessionStore,
		couponGateway,
		tikkoClient,
		receiptStore,
		limiter,
		pubsub,
		logger,
		checkout.Config{
			ServiceFeePercent: cfg.Checkout.ServiceFeePercent,
			CallbackURL:       cfg.Checkout.CallbackURL,
		},
	)

	// Initialize Gin router
	router := httpgin.NewRouter(svc, idempotencyStore, logger)

	watcher := pixwatch.New(svc, cfg.Checkout.PixSweepInterval, 100, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		watcher: watcher,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Start pending-PIX watcher
	g.Go(func() error {
		if err := a.watcher.Run(gCtx); err != nil && err != context.Canceled {
			return fmt.Errorf("pix watcher failed: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
