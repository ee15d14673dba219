package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Coder-vibhi/baua-lms/internal/assistant"
	"github.com/Coder-vibhi/baua-lms/internal/auth"
	"github.com/Coder-vibhi/baua-lms/internal/catalog"
	"github.com/Coder-vibhi/baua-lms/internal/chat"
	"github.com/Coder-vibhi/baua-lms/internal/config"
	"github.com/Coder-vibhi/baua-lms/internal/db"
	"github.com/Coder-vibhi/baua-lms/internal/notify"
	"github.com/Coder-vibhi/baua-lms/internal/progress"
	"github.com/Coder-vibhi/baua-lms/internal/ratelimit"
	"github.com/Coder-vibhi/baua-lms/internal/storage"
	"github.com/Coder-vibhi/baua-lms/pkg/handlers"
)

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	database, err := db.New(db.Options{
		DatabaseURL:   cfg.DatabaseURL,
		RedisURL:      cfg.RedisURL,
		RedisPassword: cfg.RedisPassword,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close()

	if err := database.RunMigrations("migrations"); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	// Services
	authService := auth.NewService(cfg.JWTSecret, cfg.AdminKeyHash)
	catalogService := catalog.NewService(database.Postgres, database.Redis, logger)
	progressService := progress.NewService(database.Postgres, logger)
	assistantService := assistant.NewService(cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	notifyService := notify.NewService(database.Postgres,
		cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.AdminPhoneNumber, logger)
	limiter := ratelimit.NewLimiter(database.Redis)

	var uploader handlers.Uploader
	storageService, err := storage.NewService(storage.Options{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		UseSSL:    cfg.S3UseSSL,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("media storage unavailable, admin uploads disabled")
	} else {
		uploader = storageService
	}

	// Chat relay. One hub instance owns all room membership for the
	// lifetime of the process.
	hub := chat.NewHub(logger)

	router := setupRouter(routerDeps{
		logger:    logger,
		database:  database,
		auth:      authService,
		catalog:   catalogService,
		progress:  progressService,
		assistant: assistantService,
		notify:    notifyService,
		uploader:  uploader,
		limiter:   limiter,
		limits:    ratelimit.DefaultAssistantLimits(cfg.AssistantLimitPerMinute),
		hub:       hub,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting baua-lms server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited gracefully")
}

type routerDeps struct {
	logger    zerolog.Logger
	database  *db.DB
	auth      *auth.Service
	catalog   *catalog.Service
	progress  *progress.Service
	assistant *assistant.Service
	notify    *notify.Service
	uploader  handlers.Uploader
	limiter   *ratelimit.Limiter
	limits    ratelimit.AssistantLimits
	hub       *chat.Hub
}

func setupRouter(deps routerDeps) *mux.Router {
	router := mux.NewRouter()

	router.Use(handlers.CORSMiddleware)
	router.Use(handlers.MetricsMiddleware)

	// Handle OPTIONS preflight requests for all routes
	router.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	catalogHandler := handlers.NewCatalogHandler(deps.catalog, deps.logger)
	progressHandler := handlers.NewProgressHandler(deps.progress, deps.logger)
	assistantHandler := handlers.NewAssistantHandler(deps.assistant, deps.limiter, deps.limits, deps.logger)
	contactHandler := handlers.NewContactHandler(deps.notify, deps.logger)
	uploadHandler := handlers.NewUploadHandler(deps.uploader, deps.logger)

	// Health and metrics
	router.HandleFunc("/health", healthHandler(deps.database)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public catalog
	router.HandleFunc("/courses", catalogHandler.ListCourses).Methods("GET")
	router.HandleFunc("/courses/{id}", catalogHandler.GetCourse).Methods("GET")
	router.HandleFunc("/chapters/{id}/videos", catalogHandler.ListChapterVideos).Methods("GET")

	// Contact page
	router.HandleFunc("/contact", contactHandler.Submit).Methods("POST")

	// Course chat relay (websocket)
	router.HandleFunc("/ws", chat.Handler(deps.hub, deps.logger)).Methods("GET")

	// Progress & profile (protected)
	router.HandleFunc("/mark-complete", deps.auth.Middleware(progressHandler.MarkComplete)).Methods("POST")
	router.HandleFunc("/mark-roadmap-viewed", deps.auth.Middleware(progressHandler.MarkRoadmapViewed)).Methods("POST")
	router.HandleFunc("/user-profile/{userId}", deps.auth.Middleware(progressHandler.GetUserProfile)).Methods("GET")

	// AI assistant (protected)
	router.HandleFunc("/assistant/chat", deps.auth.Middleware(assistantHandler.Chat)).Methods("POST")
	router.HandleFunc("/assistant/models", deps.auth.Middleware(assistantHandler.ListModels)).Methods("GET")

	// Admin content entry (protected + admin key)
	router.HandleFunc("/admin/add-course", deps.auth.AdminMiddleware(catalogHandler.CreateCourse)).Methods("POST")
	router.HandleFunc("/admin/add-chapter", deps.auth.AdminMiddleware(catalogHandler.CreateChapter)).Methods("POST")
	router.HandleFunc("/admin/add-video", deps.auth.AdminMiddleware(catalogHandler.CreateVideo)).Methods("POST")
	router.HandleFunc("/admin/uploads", deps.auth.AdminMiddleware(uploadHandler.RequestUpload)).Methods("POST")

	return router
}

func healthHandler(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := database.Health(ctx); err != nil {
			http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
}
