package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"mindhaven/internal/caching"
	"mindhaven/internal/config"
	"mindhaven/internal/handlers"
	"mindhaven/internal/jobs"
	"mindhaven/internal/jobs/background"
	"mindhaven/internal/middleware"
	"mindhaven/internal/models"
	"mindhaven/internal/repositories"
	"mindhaven/internal/services"
	"mindhaven/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	planCatalog, err := config.LoadPlanCatalog(cfg.PlansFile)
	if err != nil {
		log.Fatalf("Failed to load plan catalog: %v", err)
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Cache service
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Object storage for meditation audio
	storageSvc, err := services.NewMinioStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(context.Background(), cfg.AudioBucket); err != nil {
		log.Printf("Failed to ensure audio bucket exists: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	subscriptionRepo := repositories.NewSubscriptionRepo(pool)
	paymentRepo := repositories.NewProcessedPaymentRepo(pool)
	journalRepo := repositories.NewJournalRepo(pool)
	moodRepo := repositories.NewMoodRepo(pool)
	meditationRepo := repositories.NewMeditationRepo(pool)
	achievementRepo := repositories.NewAchievementRepo(pool)

	// Services
	razorpaySvc := services.NewRazorpayService(services.RazorpayConfig{
		KeyID:         cfg.RazorpayKeyID,
		KeySecret:     cfg.RazorpayKeySecret,
		WebhookSecret: cfg.RazorpayWebhookSecret,
	})
	authSvc := services.NewAuthService(cfg.JWTSecret, cacheSvc)
	subscriptionSvc := services.NewSubscriptionService(subscriptionRepo, paymentRepo, cacheSvc)
	achievementSvc := services.NewAchievementService(achievementRepo)
	journalSvc := services.NewJournalService(journalRepo, subscriptionSvc, achievementSvc)
	moodSvc := services.NewMoodService(moodRepo, achievementSvc)
	meditationSvc := services.NewMeditationService(meditationRepo, subscriptionSvc, achievementSvc, storageSvc, cfg.AudioBucket)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo)
	paymentHandlers := handlers.NewPaymentHandlers(razorpaySvc, subscriptionSvc, planCatalog, cacheSvc)
	webhookHandlers := handlers.NewWebhookHandlers(razorpaySvc, subscriptionSvc)
	subscriptionHandlers := handlers.NewSubscriptionHandlers(subscriptionSvc, planCatalog)
	journalHandlers := handlers.NewJournalHandlers(journalSvc)
	moodHandlers := handlers.NewMoodHandlers(moodSvc)
	meditationHandlers := handlers.NewMeditationHandlers(meditationSvc)
	achievementHandlers := handlers.NewAchievementHandlers(achievementSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Middleware
	jwtMiddleware := middleware.JWTMiddleware(cfg.JWTSecret, cfg.JWKSURL, cacheSvc)
	planGate := middleware.NewPlanGateMiddleware(subscriptionSvc)

	// Background jobs
	expirer := jobs.NewSubscriptionExpirer(subscriptionRepo, moodRepo, moodSvc, achievementSvc)
	scheduler := background.NewJobScheduler(expirer)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Public routes
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/ready", healthHandlers.Readiness)
	e.POST("/v1/auth/signup", authHandlers.Signup)
	e.POST("/v1/auth/login", authHandlers.Login)
	e.GET("/v1/plans", subscriptionHandlers.ListPlans)
	e.POST("/webhooks/razorpay", webhookHandlers.RazorpayWebhook)

	// Authenticated routes
	v1 := e.Group("/v1", jwtMiddleware)
	v1.GET("/auth/me", authHandlers.Me)
	v1.POST("/auth/logout", authHandlers.Logout)

	v1.POST("/payments/checkout", paymentHandlers.CreateCheckout)
	v1.POST("/payments/verify", paymentHandlers.VerifyPayment)

	v1.GET("/subscriptions/current", subscriptionHandlers.GetCurrent)
	v1.POST("/subscriptions/cancel", subscriptionHandlers.Cancel)

	v1.POST("/journal", journalHandlers.Create)
	v1.GET("/journal", journalHandlers.List)
	v1.GET("/journal/:id", journalHandlers.Get)
	v1.PUT("/journal/:id", journalHandlers.Update)
	v1.DELETE("/journal/:id", journalHandlers.Delete)

	v1.POST("/moods", moodHandlers.Record)
	v1.GET("/moods", moodHandlers.History)
	v1.GET("/moods/streak", moodHandlers.Streak)

	v1.GET("/meditations", meditationHandlers.List)
	v1.GET("/meditations/:id", meditationHandlers.Get)
	v1.GET("/meditations/:id/play", meditationHandlers.Play)

	v1.GET("/achievements", achievementHandlers.List)
	v1.GET("/achievements/catalog", achievementHandlers.Definitions)

	// Premium-only insights endpoint exercises the plan gate directly.
	v1.GET("/insights/moods", moodHandlers.History, planGate.RequirePlan(models.PlanPremium))

	// Catalog management, guarded by the shared admin key
	admin := e.Group("/admin", middleware.AdminKeyMiddleware(cfg.AdminAPIKey))
	admin.POST("/meditations", meditationHandlers.Create)
	admin.DELETE("/meditations/:id", meditationHandlers.Delete)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
}
