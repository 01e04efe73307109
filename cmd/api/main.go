package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/star-temple/starprint/internal/application/service"
	"github.com/star-temple/starprint/internal/config"
	"github.com/star-temple/starprint/internal/domain/repository"
	"github.com/star-temple/starprint/internal/infrastructure/database"
	infraRepo "github.com/star-temple/starprint/internal/infrastructure/repository"
	"github.com/star-temple/starprint/internal/presentation/http/handler"
	"github.com/star-temple/starprint/internal/presentation/http/routes"
	"github.com/star-temple/starprint/pkg/logger"
	"github.com/star-temple/starprint/pkg/printer"
	"github.com/star-temple/starprint/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const idempotencySweepInterval = time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.App.Env, cfg.App.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	transactionRepo := infraRepo.NewTransactionRepository(db)
	printJobRepo := infraRepo.NewPrintJobRepository(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(printer.Options{
		Type:          cfg.Printer.Type,
		USBPath:       cfg.Printer.USBPath,
		Address:       cfg.Printer.Address,
		BridgeURL:     cfg.Printer.BridgeURL,
		BridgeTimeout: cfg.Printer.BridgeTimeout,
	})
	if err != nil {
		log.Warn("Failed to initialize printer, printing disabled", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
		cfg.Printer.Type = printer.TypeNone
	}
	defer thermalPrinter.Close()

	header := service.ReceiptHeader{
		TempleName: cfg.Receipt.TempleName,
		Address:    cfg.Receipt.Address,
		Footer:     cfg.Receipt.Footer,
	}
	printerService := service.NewPrinterService(thermalPrinter, cfg.Printer.Type, header, transactionRepo, printJobRepo, log)

	rateLimiter := routes.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	router := routes.Setup(&routes.Handlers{
		Printer: handler.NewPrinterHandler(printerService),
	}, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Log:             log,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8000"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server",
			zap.String("name", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("printer", cfg.Printer.Type),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sweepIdempotencyKeys(ctx, idempotencyRepo, log)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

// sweepIdempotencyKeys removes expired keys until ctx is done.
func sweepIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository, log *zap.Logger) {
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				log.Warn("Failed to delete expired idempotency keys", zap.Error(err))
			}
		}
	}
}
