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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"flowfit-backend/internal/config"
	"flowfit-backend/internal/database"
	"flowfit-backend/internal/handlers"
	"flowfit-backend/internal/logging"
	"flowfit-backend/internal/metrics"
	"flowfit-backend/internal/router"
	"flowfit-backend/internal/services"
	"flowfit-backend/internal/session"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Configuration error: %v\n", err)
		fmt.Fprintln(os.Stderr, "  Set GEMINI_API_KEY in the environment or a .env file and restart.")
		os.Exit(1)
	}

	logging.Setup(logging.SetupParams{
		Level:       cfg.LogLevel,
		FormatJSON:  cfg.LogFormatJSON,
		LogFileName: cfg.LogFile,
		LogToStdout: cfg.LogToStdout,
	})
	log.Println("🚀 Starting Flow Fit AI...")
	log.Println("✓ Environment variables loaded")
	if cfg.IsProduction() && cfg.CORSAllowedOrigin == "" {
		log.Warn("CORS_ALLOWED_ORIGIN is not set; the JSON API accepts any origin")
	}

	// ──── Step 2: Metrics ────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("flowfit", "server", reg)

	// ──── Step 3: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(services.GeminiOptions{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		Temperature:    cfg.GeminiTemperature,
		Timeout:        cfg.GeminiTimeout,
		ConcurrentReqs: cfg.GeminiConcurrentReqs,
	}, metricsManager)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Printf("✓ Gemini client initialized (model %s)", cfg.GeminiModel)

	// ──── Step 4: Session Store ────
	var (
		store       session.Store
		redisClient *redis.Client
		memoryStore *session.MemoryStore
	)
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		store = session.NewRedisStore(redisClient, cfg.SessionTTL)
		log.Println("✓ Redis session store connected")
	} else {
		memoryStore = session.NewMemoryStore(cfg.SessionTTL)
		store = memoryStore
		log.Println("✓ In-memory session store ready")
	}

	// ──── Initialize Services ────
	routineGenerator := services.NewRoutineGenerator(geminiService, metricsManager)
	chatCoach := services.NewChatCoach(geminiService, metricsManager)
	workoutService := services.NewWorkoutService(store, routineGenerator, chatCoach, metricsManager)

	// ──── Initialize Handlers ────
	sessionHandler := handlers.NewSessionHandler(workoutService)
	pageHandler, err := handlers.NewPageHandler(workoutService)
	if err != nil {
		log.Fatalf("✗ Template parsing failed: %v", err)
	}

	// ──── Step 5: Start HTTP Server ────
	r, aiLimiter := router.New(router.Params{
		Sessions:       sessionHandler,
		Pages:          pageHandler,
		Metrics:        metricsManager,
		Registry:       reg,
		AllowedOrigin:  cfg.CORSAllowedOrigin,
		AIRateLimitMin: cfg.AIRateLimitPerMin,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GeminiTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := server.Shutdown(ctx)
		aiLimiter.Stop()
		if memoryStore != nil {
			memoryStore.Close()
		}
		if redisClient != nil {
			err = multierr.Append(err, redisClient.Close())
		}
		if err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Printf("✓ Flow Fit AI ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
	<-done
}
