package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/rl1809/beer-stock/internal/adapter/handler"
	"github.com/rl1809/beer-stock/internal/adapter/messaging"
	"github.com/rl1809/beer-stock/internal/adapter/storage"
	"github.com/rl1809/beer-stock/internal/config"
	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/core/service"
	"github.com/rl1809/beer-stock/internal/logging"
	"github.com/rl1809/beer-stock/internal/metrics"
	"github.com/rl1809/beer-stock/internal/port"
)

const publishTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize store
	repo, closeStore := openStore(ctx, cfg, log)
	breaker := storage.NewBreakerRepository(repo, storage.BreakerSettings{
		Name:        "items-store",
		MaxFailures: cfg.Breaker.MaxFailures,
		OpenTimeout: cfg.Breaker.OpenTimeout,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
			metrics.BreakerState.Set(float64(to))
		},
	})

	// Initialize Redis
	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.Cache.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		cache = storage.NewRedisAdapter(rdb, cfg.Cache.ItemTTL, cfg.Cache.IdempotencyTTL)
		log.Info("connected to redis")
	} else {
		log.Info("redis not configured, cache and idempotency keys disabled")
	}

	// Initialize event publisher
	var publisher port.EventPublisher
	if len(cfg.Events.Brokers) > 0 {
		publisher = messaging.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		log.Infof("publishing events to kafka topic %s", cfg.Events.Topic)
	} else {
		publisher = messaging.NewLogPublisher(log)
	}

	// Initialize service
	itemService := service.NewItemService(breaker, cache, cfg.Events.QueueSize, service.WithLogger(log))

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.Events.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, itemService.Events(), publisher, log)
		}(i)
	}
	log.Infof("started %d event workers", cfg.Events.Workers)

	// Initialize gRPC server
	grpcServer := handler.NewGRPCServer(handler.NewGRPCHandler(itemService), log)
	if _, err := handler.ServeGRPC(grpcServer, cfg.GRPCAddr, log); err != nil {
		log.Fatalf("failed to start gRPC server: %v", err)
	}

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(itemService, log, cfg.RequestTimeout)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	// Stop HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown incomplete")
	}
	log.Info("HTTP server stopped")

	// Stop gRPC server
	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	// Close event queue and wait for workers
	itemService.Close()
	wg.Wait()
	log.Info("workers stopped")

	// Close connections
	if err := publisher.Close(); err != nil {
		log.WithError(err).Warn("failed to close publisher")
	}
	if rdb != nil {
		rdb.Close()
	}
	closeStore()
	log.Info("connections closed")
}

// openStore connects the configured item store, ensures its schema and returns it with
// a function releasing its connections.
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (port.ItemRepository, func()) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.Store.PostgresURL)
		if err != nil {
			log.Fatalf("failed to connect postgres: %v", err)
		}
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("failed to ping postgres: %v", err)
		}
		adapter := storage.NewPostgresAdapter(pool)
		if err := adapter.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare postgres schema: %v", err)
		}
		log.Info("connected to postgres")
		return adapter, pool.Close

	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return storage.NewMemoryAdapter(), func() {}

	default:
		db, err := sql.Open("mysql", cfg.Store.MySQLDSN)
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}
		db.SetMaxOpenConns(cfg.Store.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Store.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Store.ConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("failed to ping mysql: %v", err)
		}
		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare mysql schema: %v", err)
		}
		log.Info("connected to mysql")
		return adapter, func() { db.Close() }
	}
}

func workerLoop(id int, queue <-chan domain.ItemEvent, publisher port.EventPublisher, log logrus.FieldLogger) {
	for event := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)

		err := publisher.Publish(ctx, event)
		metrics.ObserveEvent(event, err)

		entry := log.WithFields(logrus.Fields{
			"worker":   id,
			"event_id": event.ID,
			"kind":     event.Kind,
			"item_id":  event.Item.ID,
		})
		if err != nil {
			entry.WithError(err).Error("failed to publish event")
		} else {
			entry.Debug("published event")
		}

		cancel()
	}
}
