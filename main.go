package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"zealAPI/handlers"
	"zealAPI/internal/clock"
	"zealAPI/internal/config"
	"zealAPI/internal/database"
	"zealAPI/internal/notification"
	"zealAPI/internal/sweep"
	"zealAPI/middleware"
	"zealAPI/services"
	"zealAPI/utils"

	_ "net/http/pprof"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := utils.InitLogger(cfg); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer utils.Logger.Sync()
	logger := utils.Logger

	clerk.SetKey(cfg.ClerkSecretKey)
	logger.Info("Clerk initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbPool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.EnsureSchema(ctx, dbPool); err != nil {
		cancel()
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}
	cancel()
	defer func() {
		logger.Info("Closing database connection pool...")
		dbPool.Close()
	}()

	clk := clock.Real{Location: cfg.SweepLocation}

	notificationService := services.NewNotificationService(dbPool, cfg.DispatchWorkers, logger)
	fcmService, err := notification.NewFCMService(context.Background(), cfg.FCMCredentials, logger)
	if err != nil {
		logger.Warn("Could not initialize FCM, push delivery is logged only", zap.Error(err))
		notificationService.SetPushProvider(&services.MockPushProvider{Log: logger})
	} else {
		notificationService.SetPushProvider(fcmService)
		logger.Info("FCM Push Provider initialized successfully")
	}

	leaderboardCache, err := services.NewLeaderboardCache(cfg.RedisURL, cfg.LeaderboardTTL, logger)
	if err != nil {
		logger.Warn("Leaderboard cache disabled", zap.Error(err))
		leaderboardCache = nil
	}

	userService := services.NewUserService(dbPool)
	challengeService := services.NewChallengeService(dbPool, notificationService, clk, logger)
	progressService := services.NewProgressService(dbPool, clk, logger)
	leaderboardService := services.NewLeaderboardService(dbPool, leaderboardCache)
	badgeService := services.NewBadgeService(dbPool)

	sweeper := sweep.New(services.NewSweepRepository(dbPool), notificationService, clk, logger)
	scheduler, err := services.NewSweepScheduler(sweeper, cfg.SweepCron, cfg.SweepLocation, logger)
	if err != nil {
		logger.Fatal("Failed to schedule sweep", zap.Error(err))
	}
	scheduler.Start()

	middleware.InitPrometheus()
	services.RegisterMetrics(prometheus.DefaultRegisterer)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, progressService, leaderboardService)
	badgeHandler := handlers.NewBadgeHandler(badgeService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(userService, cfg.WebhookSecret)

	r := mux.NewRouter()

	limiter := middleware.NewRateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst)
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go limiter.CleanupVisitors(cleanupCtx)

	r.Use(limiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := dbPool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "zeal-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")

	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges", challengeHandler.ListChallenges).Methods("GET")
	protected.HandleFunc("/challenges/{id}", challengeHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{id}", challengeHandler.DeleteChallenge).Methods("DELETE")
	protected.HandleFunc("/challenges/{id}/schedule", challengeHandler.UpdateSchedule).Methods("PUT")
	protected.HandleFunc("/challenges/{id}/join", challengeHandler.JoinChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}/progress", challengeHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/challenges/{id}/leaderboard", challengeHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/challenges/{id}/exercises/{exerciseId}/complete", challengeHandler.CompleteExercise).Methods("POST")

	protected.HandleFunc("/badges", badgeHandler.ListBadges).Methods("GET")
	protected.HandleFunc("/badges", badgeHandler.CreateBadge).Methods("POST")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Error starting server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Got signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
	notificationService.Stop()
	if err := leaderboardCache.Close(); err != nil {
		logger.Warn("Leaderboard cache close error", zap.Error(err))
	}

	logger.Info("Server shutdown complete")
}
