// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campolink/campolink-backend/internal/config"
	"github.com/campolink/campolink-backend/internal/handlers"
	"github.com/campolink/campolink-backend/internal/middleware"
	"github.com/campolink/campolink-backend/internal/repository"
	"github.com/campolink/campolink-backend/internal/services"
	"github.com/campolink/campolink-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	store := repository.NewGormStore(db)
	notificationService := services.NewNotificationService(db, cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	userService := services.NewUserService(db)
	cooperativeService := services.NewCooperativeService(db)
	matchingService := services.NewMatchingService(store)
	requestService := services.NewRequestService(store, notificationService)
	adminService := services.NewAdminService(db, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, notificationService)
	cooperativeHandler := handlers.NewCooperativeHandler(cooperativeService)
	matchingHandler := handlers.NewMatchingHandler(matchingService)
	requestHandler := handlers.NewRequestHandler(requestService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/verify-email", middleware.AuthRequired(), authHandler.VerifyEmail)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:id", middleware.OptionalAuth(), userHandler.GetPublicProfile)

			// Authenticated user routes
			protected := users.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.PUT("/profile", userHandler.UpdateProfile)
				protected.GET("/producer-profile", userHandler.GetProducerProfile)
				protected.PUT("/producer-profile", userHandler.UpsertProducerProfile)
				protected.GET("/memberships", userHandler.GetMemberships)
				protected.GET("/notifications", userHandler.GetNotifications)
				protected.PUT("/notifications/read-all", userHandler.MarkAllNotificationsRead)
				protected.PUT("/notifications/:id/read", userHandler.MarkNotificationRead)
			}
		}

		// Cooperative directory routes
		cooperatives := v1.Group("/cooperatives")
		{
			cooperatives.GET("", middleware.OptionalAuth(), cooperativeHandler.SearchCooperatives)
			cooperatives.GET("/:id", middleware.OptionalAuth(), cooperativeHandler.GetCooperative)
			cooperatives.GET("/:id/members", cooperativeHandler.GetMembers)

			// Authenticated routes
			protected := cooperatives.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.PUT("/:id", cooperativeHandler.UpdateCooperative)
				protected.DELETE("/:id", cooperativeHandler.DeactivateCooperative)
			}
		}

		// Matching routes
		matching := v1.Group("/matching")
		matching.Use(middleware.AuthRequired())
		{
			matching.GET("/recommendations", matchingHandler.GetRecommendations)
			matching.GET("/score/:cooperativeId", matchingHandler.GetScore)
		}

		// Request workflow routes
		requests := v1.Group("/requests")
		requests.Use(middleware.AuthRequired())
		{
			requests.POST("/create-cooperative", middleware.SubmitRateLimit(), requestHandler.SubmitCreate)
			requests.POST("/join-cooperative", middleware.SubmitRateLimit(), requestHandler.SubmitJoin)
			requests.GET("/mine", requestHandler.ListMine)
			requests.GET("/:id", requestHandler.GetRequest)
			requests.PUT("/:id/review", requestHandler.MarkInReview)
			requests.PUT("/:id/approve", requestHandler.Approve)
			requests.PUT("/:id/reject", requestHandler.Reject)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)
			admin.GET("/requests", adminHandler.GetRequestQueue)

			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", adminHandler.GetUsers)
				adminUsers.PUT("/:id/status", adminHandler.UpdateUserStatus)
			}

			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}

		// Category routes (public)
		categories := v1.Group("/categories")
		{
			categories.GET("", getCategoriesHandler)
		}
	}

	return r
}

// Helper handlers for simple endpoints
func getCategoriesHandler(c *gin.Context) {
	categories := []map[string]interface{}{
		{"id": "cafe", "name": "Café", "icon": "coffee"},
		{"id": "cacao", "name": "Cacao", "icon": "seedling"},
		{"id": "miel", "name": "Miel", "icon": "droplet"},
		{"id": "granos", "name": "Granos y cereales", "icon": "wheat"},
		{"id": "frutas", "name": "Frutas", "icon": "apple"},
		{"id": "hortalizas", "name": "Hortalizas", "icon": "carrot"},
		{"id": "lacteos", "name": "Lácteos", "icon": "milk"},
		{"id": "artesanias", "name": "Artesanías", "icon": "hand"},
	}

	utils.SuccessResponse(c, gin.H{
		"categories": categories,
	})
}
