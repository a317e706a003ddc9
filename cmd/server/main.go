package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/lyricframe/api/internal/animation"
	"github.com/lyricframe/api/internal/config"
	"github.com/lyricframe/api/internal/handler"
	"github.com/lyricframe/api/internal/middleware"
	"github.com/lyricframe/api/internal/service"
	"github.com/lyricframe/api/internal/taskstore"
	"github.com/lyricframe/api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Shared state
	registry := animation.NewRegistry()
	store := taskstore.New()

	// Initialize services
	videoService := service.NewVideoService(store, asynqClient, registry, cfg.Render)

	// Initialize handlers
	videoHandler := handler.NewVideoHandler(videoService, validate)
	mediaHandler := handler.NewMediaHandler(videoService, validate)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    50 * 1024 * 1024, // 50MB
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rendered previews and videos
	app.Static("/output", cfg.Render.OutputDir)

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	api.Post("/generate", rateLimiter.SubmitLimit(cfg.RateLimit.SubmitPerHour), videoHandler.Generate)
	api.Post("/preview", rateLimiter.SubmitLimit(cfg.RateLimit.SubmitPerHour), videoHandler.Preview)
	api.Get("/tasks/:taskId", rateLimiter.StatusLimit(cfg.RateLimit.StatusPerMin), videoHandler.Status)

	api.Post("/extract-colors", rateLimiter.ColorsLimit(cfg.RateLimit.ColorsPerMin), mediaHandler.ExtractColors)
	api.Get("/audio-duration", mediaHandler.AudioDuration)
	api.Get("/lrc-metadata", mediaHandler.LrcMetadata)
	api.Get("/config", mediaHandler.Catalog)

	// Start Asynq worker server
	go startWorkerServer(cfg, store, registry)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, store *taskstore.Store, registry *animation.Registry) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// Rendering saturates the machine; one job at a time unless
			// configured otherwise.
			Concurrency: cfg.Render.Concurrency,
			Queues: map[string]int{
				"video": 10,
			},
		},
	)

	videoWorker := worker.NewVideoWorker(store, registry, cfg.Render)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeVideo, videoWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
