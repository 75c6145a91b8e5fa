package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexusmart/storefront/internal/cartstore"
	"github.com/nexusmart/storefront/internal/catalog"
	"github.com/nexusmart/storefront/internal/config"
	h "github.com/nexusmart/storefront/internal/http"
	"github.com/nexusmart/storefront/internal/logger"
	"github.com/nexusmart/storefront/internal/publisher"
	"github.com/nexusmart/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type orderPublisher interface {
	service.OrderPublisher
	Close() error
}

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{Mode: cfg.LogMode, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	for _, w := range cfg.Warnings {
		log.Warn("config", zap.String("warning", w))
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	repo, err := catalog.NewRepository(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("catalog ready", zap.String("driver", cfg.DBDriver))

	if cfg.SeedOnStart {
		if err := seedIfEmpty(ctx, repo, log); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.CartBackend == config.CartBackendRedis || cfg.ProductCache {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	carts, err := buildCartStore(ctx, cfg, redisClient, log)
	if err != nil {
		return err
	}

	var lookup service.ProductLookup = repo
	var invalidator service.CacheInvalidator
	if cfg.ProductCache {
		cached := catalog.NewCachedCatalog(repo, catalog.NewRedisCache(redisClient), log)
		lookup = cached
		invalidator = cached
		log.Info("product cache enabled")
	}

	pub := buildPublisher(cfg, log)
	defer pub.Close()

	rules := cfg.PricingRules()
	cartSvc := service.NewCartService(carts, lookup, rules, log)
	checkoutSvc := service.NewCheckoutService(carts, lookup, rules, pub, cfg.Currency, log)
	productSvc := service.NewProductService(repo, lookup)
	adminSvc, err := service.NewAdminService(repo, invalidator, cfg.AdminPassword, log)
	if err != nil {
		return err
	}

	sessions := h.NewSessionManager([]byte(cfg.SessionSecret), cfg.SessionMaxAge, cfg.SessionSecure, log)
	router := h.NewRouter(h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, sessions, h.Handlers{
		Products: h.NewProductHandler(productSvc, cartSvc, sessions, cfg.RequestTimeout, log),
		Cart:     h.NewCartHandler(cartSvc, sessions, cfg.RequestTimeout, log),
		Checkout: h.NewCheckoutHandler(checkoutSvc, sessions, cfg.RequestTimeout, log),
		Admin:    h.NewAdminHandler(adminSvc, sessions, cfg.RequestTimeout, log),
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront starting", zap.String("addr", srv.Addr), zap.String("cart_backend", cfg.CartBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func buildCartStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, log *zap.Logger) (cartstore.Repository, error) {
	switch cfg.CartBackend {
	case config.CartBackendRedis:
		return cartstore.NewRedisRepository(redisClient, cfg.SessionMaxAge), nil
	case config.CartBackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoConnectTimeout+5*time.Second)
		defer cancel()
		db, err := cartstore.ConnectMongoDB(connectCtx, cartstore.MongoOptions{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDBName,
			MaxPoolSize:    cfg.MongoMaxPoolSize,
			MinPoolSize:    cfg.MongoMinPoolSize,
			ConnectTimeout: cfg.MongoConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		repo := cartstore.NewMongoRepository(db, cfg.SessionMaxAge)
		if err := repo.CreateIndexes(connectCtx); err != nil {
			return nil, err
		}
		log.Info("mongo cart store ready", zap.String("database", cfg.MongoDBName))
		return repo, nil
	default:
		return cartstore.NewMemoryRepository(cfg.SessionMaxAge), nil
	}
}

func buildPublisher(cfg *config.Config, log *zap.Logger) orderPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("no kafka brokers configured, orders are logged only")
		return publisher.NewLogPublisher(log)
	}
	log.Info("publishing orders to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	return publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
}

func seedIfEmpty(ctx context.Context, repo *catalog.Repository, log *zap.Logger) error {
	n, err := repo.CountProducts(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	res, err := catalog.Seed(ctx, repo, log)
	if err != nil {
		return err
	}
	log.Info("seeded demo catalog", zap.Int("created", res.Created))
	return nil
}
