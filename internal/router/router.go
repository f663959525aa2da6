package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/portal-backend/config"
	"github.com/volunteerhub/portal-backend/internal/app/controller"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/middleware"
)

// Controllers groups the HTTP handlers mounted by the router.
type Controllers struct {
	Auth    *controller.AuthController
	Account *controller.AccountController
	Article *controller.ArticleController
	NGO     *controller.NGOController
	Support *controller.SupportController
	Upload  *controller.UploadController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(controllers Controllers, authMiddleware *middleware.AuthMiddleware, cfg *config.Config) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": r.config.App.Name + " API is running",
		})
	})

	authenticate := r.authMiddleware.Authenticate()
	optionalAuth := r.authMiddleware.OptionalAuthenticate()
	staffOnly := r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleModerator)
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			ctrl := r.controllers.Auth
			auth.POST("/signup", ctrl.Signup)
			auth.POST("/verify-email", ctrl.VerifyEmail)
			auth.POST("/login", ctrl.Login)
			auth.POST("/vk-signin", ctrl.VKSignIn)
			auth.POST("/forgot-password", ctrl.ForgotPassword)
			auth.POST("/reset-password", ctrl.ResetPassword)
			auth.POST("/refresh", ctrl.Refresh)
			auth.GET("/providers", ctrl.Providers)
			auth.GET("/me", authenticate, ctrl.GetMe)
		}

		user := v1.Group("/user", authenticate)
		{
			ctrl := r.controllers.Account
			user.GET("/profile", ctrl.GetProfile)
			user.PATCH("/profile", ctrl.UpdateProfile)
			user.POST("/request-password-change", ctrl.RequestPasswordChange)
			user.POST("/change-password", ctrl.ChangePassword)
			user.POST("/request-email-change", ctrl.RequestEmailChange)
			user.POST("/confirm-email-change", ctrl.ConfirmEmailChange)
		}

		articles := v1.Group("/articles")
		{
			ctrl := r.controllers.Article
			articles.GET("", optionalAuth, ctrl.List)
			articles.GET("/:slug", optionalAuth, ctrl.GetBySlug)
			articles.POST("", authenticate, staffOnly, ctrl.Create)
			// numeric ids live under /id so they never shadow slugs
			articles.PATCH("/id/:id", authenticate, staffOnly, ctrl.Update)
			articles.DELETE("/id/:id", authenticate, staffOnly, ctrl.Delete)
		}

		ngos := v1.Group("/ngos")
		{
			ctrl := r.controllers.NGO
			ngos.GET("", optionalAuth, ctrl.List)
			ngos.GET("/:id", optionalAuth, ctrl.Get)
			ngos.POST("", authenticate, r.authMiddleware.RequireRole(model.RoleNGO), ctrl.Register)
			ngos.PATCH("/:id", authenticate, ctrl.Update)
			ngos.DELETE("/:id", authenticate, adminOnly, ctrl.Delete)
			ngos.POST("/:id/approve", authenticate, staffOnly, ctrl.Approve)
			ngos.POST("/:id/reject", authenticate, staffOnly, ctrl.Reject)
			ngos.POST("/:id/events", authenticate, ctrl.AddEvent)
			ngos.POST("/:id/projects", authenticate, ctrl.AddProject)
		}

		v1.GET("/events", r.controllers.NGO.UpcomingEvents)

		support := v1.Group("/support/tickets", authenticate)
		{
			ctrl := r.controllers.Support
			support.GET("", ctrl.ListTickets)
			support.POST("", ctrl.CreateTicket)
			support.GET("/:id", ctrl.GetTicket)
			support.POST("/:id", ctrl.AddMessage)
			support.PATCH("/:id", ctrl.UpdateStatus)
			support.GET("/:id/ws", ctrl.Stream)
		}

		v1.POST("/uploads/presign", authenticate, r.controllers.Upload.Presign)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// cors.New panics on an empty origin list
	cfg.AllowAllOrigins = len(allowedOrigins) == 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			break
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}
