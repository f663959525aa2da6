package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/volunteerhub/portal-backend/config"
	"github.com/volunteerhub/portal-backend/internal/app/controller"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"github.com/volunteerhub/portal-backend/internal/app/service"
	"github.com/volunteerhub/portal-backend/internal/db"
	"github.com/volunteerhub/portal-backend/internal/middleware"
	"github.com/volunteerhub/portal-backend/internal/router"
	"github.com/volunteerhub/portal-backend/internal/scheduler"
	"github.com/volunteerhub/portal-backend/internal/storage"
	"github.com/volunteerhub/portal-backend/internal/websocket"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"github.com/volunteerhub/portal-backend/pkg/mailer"
	redisclient "github.com/volunteerhub/portal-backend/pkg/redis"
	"github.com/volunteerhub/portal-backend/pkg/vkid"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting volunteer portal backend", map[string]interface{}{
		"environment":        cfg.Server.Environment,
		"port":               cfg.Server.Port,
		"log_level":          logLevel,
		"verification_store": cfg.Verification.Store,
		"providers":          cfg.OAuth.Names(),
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Verification codes live in postgres or redis
	var tokenRepo repository.VerificationTokenRepository
	switch cfg.Verification.Store {
	case config.VerificationStoreRedis:
		if err := redisclient.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to connect to redis", err)
		}
		defer func() {
			if err := redisclient.Close(); err != nil {
				logger.Error("Failed to close redis connection", err)
			}
		}()
		tokenRepo = repository.NewVerificationTokenRedisRepository(redisclient.GetClient(), cfg.Verification.Retention)
	default:
		tokenRepo = repository.NewVerificationTokenRepository(db.GetDB())
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	articleRepo := repository.NewArticleRepository(db.GetDB())
	ngoRepo := repository.NewNGORepository(db.GetDB())
	supportRepo := repository.NewSupportRepository(db.GetDB())

	mail := mailer.New(cfg.SMTP)
	templates := mailer.Templates{
		AppName:   cfg.App.Name,
		PublicURL: cfg.App.PublicURL,
		CodeTTL:   cfg.Verification.CodeTTL,
	}

	var vkClient service.VKProfileFetcher
	if cfg.OAuth.Enabled(config.ProviderVK) {
		vkClient = vkid.NewClient(vkid.Config{Timeout: 10 * time.Second})
	}

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Initialize services
	verificationService := service.NewVerificationService(tokenRepo, cfg.Verification.CodeTTL, cfg.Verification.Retention)
	authService := service.NewAuthService(userRepo, verificationService, mail, templates, vkClient, cfg.OAuth, cfg.JWT)
	accountService := service.NewAccountService(userRepo, verificationService, mail, templates)
	articleService := service.NewArticleService(articleRepo)
	ngoService := service.NewNGOService(ngoRepo, userRepo, mail, templates)
	supportService := service.NewSupportService(supportRepo, userRepo, hub, mail, templates)

	s3Storage, err := storage.NewS3Storage(context.Background(), cfg.S3)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", err)
	}

	cleanup := scheduler.NewVerificationCleanupScheduler(verificationService, cfg.Verification.CleanupSchedule)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start verification cleanup scheduler", err)
	}
	defer cleanup.Stop()

	// Initialize controllers
	controllers := router.Controllers{
		Auth:    controller.NewAuthController(authService),
		Account: controller.NewAccountController(accountService),
		Article: controller.NewArticleController(articleService),
		NGO:     controller.NewNGOController(ngoService),
		Support: controller.NewSupportController(supportService, hub, websocket.NewUpgrader(cfg.CORS.AllowedOrigins)),
		Upload:  controller.NewUploadController(s3Storage),
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	engine := router.NewRouter(controllers, authMiddleware, cfg).Setup()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": server.Addr,
			"pid":     os.Getpid(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// a signal or a failed listener cancels gctx
		<-gctx.Done()
		logger.Info("Shutting down server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", err)
		return
	}
	logger.Info("Server stopped successfully")
}
