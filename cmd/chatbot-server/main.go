// cmd/chatbot-server/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"product-chatbot/internal/api"
	"product-chatbot/internal/catalog"
	"product-chatbot/internal/common/config"
	"product-chatbot/internal/common/database"
	"product-chatbot/internal/common/logger"
	"product-chatbot/internal/common/observability"
	productsearch "product-chatbot/internal/services/catalog/product-search"
	geminidelegate "product-chatbot/internal/services/chat/gemini-delegate"
	intentrouter "product-chatbot/internal/services/chat/intent-router"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting product chatbot...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Catalog ---
	cat := loadCatalog(ctx, cfg, zapLog, log)

	// --- Optional reply cache ---
	var rdb *redis.Client
	if cfg.Cache.Enabled() {
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.OpenRedis(ctx, cfg.Cache.Redis)
			return err
		}, 3, time.Second, zapLog, "Redis connection")
		if err != nil {
			// the cache is an optimisation; serve without it
			zapLog.Warn("reply cache disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
			zapLog.Info("Reply cache connected", zap.String("address", cfg.Cache.Redis.Address))
		}
	}

	// --- Services ---
	delegateCfg := geminidelegate.LoadConfig()
	delegateCfg.BaseURL = cfg.APIs.Gemini.BaseURL
	delegateCfg.APIKey = cfg.APIs.Gemini.APIKey
	delegateCfg.Model = cfg.APIs.Gemini.Model
	delegateCfg.Timeout = config.GetDuration(cfg.APIs.Gemini.Timeout)
	delegateCfg.CacheTTL = config.GetDuration(cfg.Cache.TTL)
	delegate := geminidelegate.NewHandler(delegateCfg, rdb, &geminiDelegateLoggerAdapter{log})
	if !delegate.Configured() {
		zapLog.Warn("GEMINI_API_KEY is not set; general questions will fail until it is configured")
	}

	routerCfg := intentrouter.LoadConfig()
	routerCfg.Timeout = delegateCfg.Timeout + 5*time.Second
	router := intentrouter.NewHandler(routerCfg, cat, delegate, &intentRouterLoggerAdapter{log})

	search := productsearch.NewHandler(productsearch.LoadConfig(), cat, &productSearchLoggerAdapter{log})

	srv := api.NewServer(api.Options{
		Config:   cfg.Server,
		Catalog:  cat,
		Search:   search,
		Router:   router,
		Delegate: delegate,
		Obs:      obs,
		Logger:   log,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Product chatbot stopped gracefully")
}

// loadCatalog never fails startup: every error path ends in an empty catalog.
func loadCatalog(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, log logger.Logger) *catalog.Catalog {
	catLog := log.With(map[string]interface{}{"component": "catalog"})

	if cfg.Catalog.Source != config.SourcePostgres {
		return catalog.Load(cfg.Catalog.Path, catLog)
	}

	var db *sql.DB
	err := retryWithBackoff(func() error {
		var err error
		db, err = database.OpenPostgres(ctx, cfg.Database.Postgres)
		return err
	}, 5, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Error("postgres unavailable, serving empty catalog", zap.Error(err))
		return catalog.Empty()
	}
	// the catalog is read once; the connection is not needed afterwards
	defer db.Close()

	return catalog.LoadFromPostgres(ctx, db, cfg.Catalog.Table, catLog)
}

// Logger adapters for services that declare their own Logger interfaces
type productSearchLoggerAdapter struct {
	logger.Logger
}

func (a *productSearchLoggerAdapter) With(fields map[string]interface{}) productsearch.Logger {
	return &productSearchLoggerAdapter{a.Logger.With(fields)}
}

type intentRouterLoggerAdapter struct {
	logger.Logger
}

func (a *intentRouterLoggerAdapter) With(fields map[string]interface{}) intentrouter.Logger {
	return &intentRouterLoggerAdapter{a.Logger.With(fields)}
}

type geminiDelegateLoggerAdapter struct {
	logger.Logger
}

func (a *geminiDelegateLoggerAdapter) With(fields map[string]interface{}) geminidelegate.Logger {
	return &geminiDelegateLoggerAdapter{a.Logger.With(fields)}
}
