package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/Karim-ezzedine/MultiCart/internal/analytics"
	"github.com/Karim-ezzedine/MultiCart/internal/config"
	"github.com/Karim-ezzedine/MultiCart/internal/conflict"
	"github.com/Karim-ezzedine/MultiCart/internal/db"
	"github.com/Karim-ezzedine/MultiCart/internal/domain"
	"github.com/Karim-ezzedine/MultiCart/internal/httpserver"
	cartrepo "github.com/Karim-ezzedine/MultiCart/internal/repository/cart"
	catalogrepo "github.com/Karim-ezzedine/MultiCart/internal/repository/catalog"
	cartsvc "github.com/Karim-ezzedine/MultiCart/internal/service/cart"
	"github.com/Karim-ezzedine/MultiCart/internal/validation"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var store cartrepo.Store = cartrepo.NewPostgres(dbpool)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		store = cartrepo.NewCachedStore(store, client, cfg.CacheTTL, logger)
		logger.Printf("cart cache enabled via %s", cfg.RedisAddr)
	}

	var sink analytics.Sink = analytics.NewNoopSink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := analytics.NewKafkaSink(cfg.KafkaTopic, logger, cfg.KafkaBrokers...)
		defer kafkaSink.Close()
		sink = kafkaSink
		logger.Printf("kafka sink enabled on topic %s", cfg.KafkaTopic)
	}

	validationCfg := validation.Config{MaxItemCount: cfg.MaxItemCount}
	if cfg.MinSubtotal > 0 {
		min := domain.MoneyFromFloat(cfg.MinSubtotal, cfg.Currency)
		validationCfg.MinSubtotal = &min
	}

	var detector conflict.Detector = conflict.NewNoopDetector()
	var resolver conflict.Resolver
	if cfg.CatalogConflicts {
		catalog := catalogrepo.NewPostgres(dbpool, logger)
		detector = conflict.NewCatalogDetector(catalog)
		resolver = conflict.NewPruneResolver(catalog)
		logger.Printf("catalog conflict detection enabled")
	}

	manager, err := cartsvc.New(cartsvc.Config{
		Store:            store,
		Validation:       validation.NewDefaultEngine(validationCfg),
		ConflictDetector: detector,
		ConflictResolver: resolver,
		Analytics:        sink,
		Logger:           logger,
	})
	if err != nil {
		logger.Fatalf("init cart manager: %v", err)
	}

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, manager)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
