package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trackhub-campus/trackhub-backend/internal/handlers"
	"github.com/trackhub-campus/trackhub-backend/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, auth *handlers.AuthHandler, posts *handlers.PostHandler, jwtSecret string) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to TrackHub Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health": "/health",
				"auth":   "/api/auth",
				"posts":  "/api/posts",
			},
		})
	})

	app.Get("/health", handlers.Health)

	api := app.Group("/api")

	// Auth + OTP routes
	authGroup := api.Group("/auth")
	authGroup.Post("/send-otp", auth.SendOTP)
	authGroup.Post("/verify-otp", auth.VerifyOTP)
	authGroup.Post("/register", auth.Register)
	authGroup.Post("/login", auth.Login)
	authGroup.Get("/profile", auth.Profile)
	authGroup.Get("/phone-by-email", auth.PhoneByEmail)

	// Post routes
	postGroup := api.Group("/posts")
	postGroup.Post("/create", posts.Create)
	postGroup.Get("/all", posts.GetAll)
	postGroup.Get("/user/:userId", posts.GetByUser)
	postGroup.Get("/:id", posts.GetDetail)
	postGroup.Put("/:id", middleware.RequireAuth(jwtSecret), posts.Update)
	postGroup.Delete("/:id", middleware.RequireAuth(jwtSecret), posts.Delete)

	// Gated actions
	postGroup.Post("/:id/contact/initiate", posts.InitiateContact)
	postGroup.Post("/:id/contact/verify", posts.VerifyContact)
	postGroup.Post("/:id/claim", posts.SubmitClaim)
}
