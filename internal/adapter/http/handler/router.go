package handler

import (
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc        ports.WalletService
	IdempotencyCache ports.IdempotencyCache // nil = Idempotency-Key ignored
	IdempotencyTTL   time.Duration
	RateLimitStore   ports.RateLimitStore // nil = rate limiting disabled
	RateLimit        middleware.RateLimitRule
	HealthCheckers   []ports.HealthChecker
	Server           config.ServerConfig
	OpenAPISpec      []byte // served at /docs/spec when Server.EnableDocs
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	if len(deps.Server.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(deps.Server.CORSOrigins)))
	}
	r.Use(middleware.MaxBodySize(deps.Server.MaxBodyBytes))
	r.Use(middleware.Timeout(deps.Server.RequestTimeout))

	// Health check pings every configured dependency
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	if deps.Server.EnableDocs {
		docs := r.Group("/docs")
		{
			docs.GET("", DocsUI)
			docs.GET("/spec", DocsSpec(deps.OpenAPISpec))
		}
	}

	// Write endpoints share one rate limit group.
	var rl gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.RateLimitStore != nil {
		rl = middleware.RateLimiter(deps.RateLimitStore, "wallet_writes", deps.RateLimit, deps.Logger)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc, deps.IdempotencyCache, deps.IdempotencyTTL, deps.Logger)
	wallets := r.Group("/wallet")
	{
		wallets.GET("/:id", walletHandler.GetWallet)
		wallets.POST("/:id/credit", rl, walletHandler.Credit)
		wallets.POST("/:id/debit", rl, walletHandler.Debit)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID, middleware.HeaderSource, HeaderIdempotencyKey},
		ExposeHeaders: []string{middleware.HeaderRequestID, HeaderReplayed, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
