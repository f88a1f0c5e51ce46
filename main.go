package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/trackhub-campus/trackhub-backend/database"
	"github.com/trackhub-campus/trackhub-backend/internal/config"
	"github.com/trackhub-campus/trackhub-backend/internal/handlers"
	"github.com/trackhub-campus/trackhub-backend/internal/jobs"
	"github.com/trackhub-campus/trackhub-backend/internal/models"
	"github.com/trackhub-campus/trackhub-backend/internal/routes"
	"github.com/trackhub-campus/trackhub-backend/internal/services"
	"github.com/trackhub-campus/trackhub-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	cfg := config.Load()

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.Post{},
			&models.Message{},
			&models.Claim{},
			&models.OTP{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Email is the primary OTP and notification channel
	emailService, err := services.NewEmailService()
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}
	log.Println("✅ Email service initialized")

	// SMS is the fallback channel for phones without a registered account
	var sms services.SMSSender
	twilioService, err := services.NewTwilioService()
	if err != nil {
		log.Println("⚠️  Twilio credentials not found - SMS fallback disabled")
	} else {
		sms = twilioService
		log.Println("✅ Twilio service initialized")
	}

	// Bounded worker pool for all fire-and-forget notification sends
	dispatcher := services.NewDispatcher(4, 64)
	dispatcher.Start()

	// Initialize all services
	otpService := services.NewOTPService(store, emailService, sms, cfg.OTP)
	userService := services.NewUserService(store, cfg.JWTSecret, cfg.AllowedEmailDomain)
	postService := services.NewPostService(store, emailService, dispatcher)

	// Initialize and start the OTP cleanup job
	cleanupJob := jobs.NewCleanupJob(store, time.Hour, 24*time.Hour)
	cleanupJob.Start()

	log.Println("✅ All services initialized and scheduled jobs started")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "TrackHub Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"message": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Setup routes
	authHandler := handlers.NewAuthHandler(userService, otpService, dispatcher)
	postHandler := handlers.NewPostHandler(postService, otpService, dispatcher)
	routes.SetupRoutes(app, authHandler, postHandler, cfg.JWTSecret)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping cleanup job...")
		cleanupJob.Stop()
		log.Println("⏹️  Draining notification dispatcher...")
		dispatcher.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 TrackHub Backend starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🔢 OTP: %d digits, %d minute expiry", cfg.OTP.Digits, cfg.OTP.ExpiryMinutes)
	log.Printf("📱 SMS fallback: %s", getSMSStatus(sms))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getSMSStatus(sms services.SMSSender) string {
	if sms == nil {
		return "Not configured"
	}
	return "Configured"
}
