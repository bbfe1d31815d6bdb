package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stwalsh4118/underwriter/internal/analysis"
	"github.com/stwalsh4118/underwriter/internal/config"
	"github.com/stwalsh4118/underwriter/internal/database"
	"github.com/stwalsh4118/underwriter/internal/handlers"
	"github.com/stwalsh4118/underwriter/internal/logger"
	"github.com/stwalsh4118/underwriter/internal/middleware"
	"github.com/stwalsh4118/underwriter/internal/report"
	"github.com/stwalsh4118/underwriter/internal/repository"
	"github.com/stwalsh4118/underwriter/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

// storage bundles the repositories for the configured backend. db is nil for
// in-memory storage.
type storage struct {
	db       *database.Database
	deals    repository.DealRepository
	buyBoxes repository.BuyBoxRepository
}

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting underwriter API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"storage":     cfg.Server.Storage,
	})

	ctx := context.Background()
	store := openStorage(ctx, cfg, log)
	if store.db != nil {
		defer store.db.Close()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	var pinger handlers.Pinger
	if store.db != nil {
		pinger = store.db
	}
	healthHandler := handlers.NewHealthHandler(pinger, cfg.Server.Env, cfg.Server.Storage)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	generator := report.NewGenerator(report.WithAssumptions(cfg.Assumptions))
	provider := analysis.NewStaticProvider(cfg.Analysis.Delay)
	underwritingService := services.NewUnderwritingService(store.deals, store.buyBoxes, provider, generator, log)

	dealHandler := handlers.NewDealHandler(underwritingService, cfg.Analysis.MaxUploadBytes())
	buyBoxHandler := handlers.NewBuyBoxHandler(underwritingService)

	v1 := router.Group("/api/v1")
	{
		deals := v1.Group("/deals")
		{
			deals.POST("", middleware.MaxBodySize(cfg.Analysis.MaxUploadBytes()), dealHandler.Create)
			deals.GET("", dealHandler.List)
			deals.GET("/:id", dealHandler.Get)
			deals.GET("/:id/export/:format", dealHandler.Export)
		}
		v1.GET("/buy-box", buyBoxHandler.Get)
		v1.PUT("/buy-box", buyBoxHandler.Update)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}

// openStorage connects the configured backend. Connection and schema failures
// are fatal.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage {
	if cfg.Server.Storage != config.StoragePostgres {
		log.Info("Using in-memory storage; deals are lost on restart", nil)
		return storage{
			deals:    repository.NewMemoryDealRepository(),
			buyBoxes: repository.NewMemoryBuyBoxRepository(),
		}
	}

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		log.Fatal("Failed to prepare database schema", err, nil)
	}

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	return storage{
		db:       db,
		deals:    repository.NewDealRepository(db),
		buyBoxes: repository.NewBuyBoxRepository(db),
	}
}
