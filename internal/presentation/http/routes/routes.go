package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/star-temple/starprint/internal/config"
	domainRepo "github.com/star-temple/starprint/internal/domain/repository"
	"github.com/star-temple/starprint/internal/presentation/http/handler"
	"github.com/star-temple/starprint/internal/presentation/http/middleware"
	"github.com/star-temple/starprint/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.StationRateLimiter
	Log             *zap.Logger
}

// NewRateLimiter builds the per-station limiter from the rate limit config.
func NewRateLimiter(cfg *config.RateLimitConfig) *middleware.StationRateLimiter {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rlCfg.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rlCfg.BurstSize = cfg.Requests
	}
	rlCfg.CleanupInterval = 5 * time.Minute
	rlCfg.EntryTTL = 10 * time.Minute
	return middleware.NewStationRateLimiter(rlCfg)
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerPrinterRoutes(protected, h, deps, log)
	}

	return router
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps, log *zap.Logger) {
	printerGroup := protected.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/preview", h.Printer.Preview)
		printerGroup.POST("/test", h.Printer.TestPrint)

		// A double click on the counter must not print two receipts
		idem := middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  log,
		})
		if deps.IdempotencyRepo != nil {
			printerGroup.POST("/receipt", idem, h.Printer.PrintReceipt)
			printerGroup.POST("/transactions/:id/reprint", idem, h.Printer.ReprintTransaction)
		} else {
			printerGroup.POST("/receipt", h.Printer.PrintReceipt)
			printerGroup.POST("/transactions/:id/reprint", h.Printer.ReprintTransaction)
		}

		printerGroup.GET("/jobs", middleware.RequireRole(utils.RoleAdmin), h.Printer.ListJobs)
	}
}
