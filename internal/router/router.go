package router

import (
	"fmt"
	"strings"

	"github.com/telelink-next/internal/cache"
	"github.com/telelink-next/internal/config"
	adminhandlers "github.com/telelink-next/internal/http/handlers/admin"
	publichandlers "github.com/telelink-next/internal/http/handlers/public"
	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires middleware and routes
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "tl"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Payment webhook. Authenticated by HMAC signature, not the
		// gateway key, because the payment provider calls it directly.
		apiV1.POST("/webhooks/payment", publicHandler.PaymentWebhook)

		// Bot gateway surface. The gateway is the only caller and
		// authenticates with a shared key.
		gateway := apiV1.Group("")
		gateway.Use(GatewayKeyMiddleware(cfg.Security.GatewayKey))
		{
			gateway.POST("/creators", publicHandler.RegisterCreator)
			gateway.GET("/creators/:id", publicHandler.GetCreator)
			gateway.PUT("/creators/:id/payout-method", publicHandler.SetPayoutMethod)
			gateway.GET("/creators/:id/links", publicHandler.ListCreatorLinks)
			gateway.GET("/creators/:id/wallet", publicHandler.GetWallet)
			gateway.GET("/creators/:id/stats", publicHandler.GetCreatorStats)
			gateway.GET("/creators/:id/transactions", publicHandler.ListWalletTransactions)
			gateway.GET("/creators/:id/withdrawals", publicHandler.ListCreatorWithdrawals)

			gateway.POST("/links", publicHandler.CreateLink)
			gateway.GET("/links/:code", publicHandler.GetLink)
			gateway.POST("/links/:code/deactivate", publicHandler.DeactivateLink)

			gateway.POST("/withdrawals", publicHandler.RequestWithdrawal)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/auth/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.Login)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.ChangePassword)

				authorized.GET("/withdrawals", adminHandler.ListWithdrawals)
				authorized.GET("/withdrawals/:id", adminHandler.GetWithdrawal)
				authorized.POST("/withdrawals/:id/review", adminHandler.ReviewWithdrawal)

				authorized.GET("/platform/stats", adminHandler.GetPlatformStats)
				authorized.GET("/unlocks", adminHandler.ListUnlocks)

				authorized.GET("/creators", adminHandler.ListCreators)
				authorized.GET("/creators/:id", adminHandler.GetCreator)

				authorized.GET("/links", adminHandler.ListLinks)
				authorized.GET("/links/:id", adminHandler.GetLink)
				authorized.POST("/links/:id/deactivate", adminHandler.DeactivateLink)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
