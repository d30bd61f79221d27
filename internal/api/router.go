package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/api/handlers"
	"github.com/agrobridge/tradeapi/internal/api/middleware"
	"github.com/agrobridge/tradeapi/internal/config"
	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
	"github.com/agrobridge/tradeapi/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, services *service.Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.POST("/auth/login", handlers.HandleLogin(repos, cfg.JWT.Secret, cfg.JWT.TokenTTL, logger))

		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(cfg.JWT.Secret, logger))
		{
			offers := authed.Group("/offers")
			{
				offers.GET("", handlers.HandleListOffers(services.Offers, logger))
				offers.POST("", handlers.HandleCreateOffer(services.Offers, logger))
				offers.GET("/:id", handlers.HandleGetOffer(services.Offers, logger))
				offers.PUT("/:id", handlers.HandleUpdateOffer(services.Offers, logger))
				offers.DELETE("/:id", handlers.HandleDeleteOffer(services.Offers, logger))
				offers.POST("/:id/request-approval", handlers.HandleRequestApproval(services.Offers, logger))
				offers.POST("/:id/review",
					middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager),
					handlers.HandleReviewOffer(services.Offers, logger))
			}

			orders := authed.Group("/orders")
			{
				orders.GET("", handlers.HandleListOrders(services.Orders, logger))
				orders.POST("",
					middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager),
					handlers.HandleCreateOrder(services.Orders, logger))
				orders.GET("/:id", handlers.HandleGetOrder(services.Orders, logger))
				orders.PUT("/:id",
					middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager),
					handlers.HandleUpdateOrder(services.Orders, logger))
				orders.POST("/:id/status", handlers.HandleTransitionOrder(services.Orders, logger))
				orders.POST("/:id/cancel",
					middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager),
					handlers.HandleCancelOrder(services.Orders, logger))
				orders.POST("/:id/documents", handlers.HandleAddOrderDocument(services.Orders, logger))
			}

			notifications := authed.Group("/notifications")
			{
				notifications.GET("", handlers.HandleListNotifications(services.Notifications, logger))
				notifications.GET("/unread-count", handlers.HandleUnreadCount(services.Notifications, logger))
				notifications.POST("/read-all", handlers.HandleMarkAllNotificationsRead(services.Notifications, logger))
				notifications.POST("/:id/read", handlers.HandleMarkNotificationRead(services.Notifications, logger))
			}

			authed.GET("/activities",
				middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager),
				handlers.HandleListActivities(services.Activities, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
