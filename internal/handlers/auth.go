package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/trackhub-campus/trackhub-backend/internal/models"
	"github.com/trackhub-campus/trackhub-backend/internal/services"
	"github.com/trackhub-campus/trackhub-backend/internal/storage"
)

// AuthHandler handles registration, login and the OTP issue/verify endpoints.
type AuthHandler struct {
	users      *services.UserService
	otp        *services.OTPService
	dispatcher *services.Dispatcher
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *services.UserService, otp *services.OTPService, dispatcher *services.Dispatcher) *AuthHandler {
	return &AuthHandler{users: users, otp: otp, dispatcher: dispatcher}
}

// SendOTP issues a code and queues delivery. The code itself is never
// returned to the caller.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req models.SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
		})
	}

	purpose, ok := models.ParseOTPPurpose(req.Purpose)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Purpose is required (REGISTER, LOGIN or CONTACT)",
		})
	}

	phone := strings.TrimSpace(req.Phone)
	switch purpose {
	case models.PurposeLogin:
		// LOGIN resolves the phone server-side from the account email.
		if req.Email == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Email is required for login OTP",
			})
		}
		resolved, err := h.users.GetPhoneByEmail(req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"status":  "error",
				"message": "No user found with this email.",
			})
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Error sending OTP")
		}
		if resolved == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "User does not have a registered phone.",
			})
		}
		phone = resolved

	default:
		if phone == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Phone number is required.",
			})
		}
	}

	code, err := h.otp.IssueForTarget(phone, purpose)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error sending OTP")
	}

	// Delivery is fire-and-forget; a failed send leaves the code valid and
	// is visible only in logs.
	h.dispatcher.Submit("otp-deliver", func() error {
		if !h.otp.Deliver(phone, code, purpose) {
			return fmt.Errorf("OTP delivery failed for %s", phone)
		}
		return nil
	})

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "OTP sent to your registered phone number.",
	})
}

// VerifyOTP checks a submitted code. The response never distinguishes a
// wrong code from an expired or never-issued one.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req models.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": validationMessage(err),
		})
	}

	purpose, ok := models.ParseOTPPurpose(req.Purpose)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Unknown purpose",
		})
	}

	valid, err := h.otp.Verify(req.Phone, req.OTP, purpose)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error verifying OTP")
	}
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid or expired OTP.",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "OTP verified successfully.",
	})
}

// Register creates a new account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": validationMessage(err),
		})
	}

	user, err := h.users.Register(&req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   user,
	})
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": validationMessage(err),
		})
	}
	if !h.users.AllowedEmail(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Only college emails are allowed.",
		})
	}

	token, user, err := h.users.Login(req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid email or password.",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error during login")
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"token":  token,
		"data":   user,
	})
}

// Profile returns the public profile for an email.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "email query parameter is required",
		})
	}

	profile, err := h.users.GetProfileByEmail(email)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "User not found",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error fetching profile")
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   profile,
	})
}

// PhoneByEmail returns the registered phone for an email, used by the
// frontend to auto-trigger a login OTP.
func (h *AuthHandler) PhoneByEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "email query parameter is required",
		})
	}

	phone, err := h.users.GetPhoneByEmail(email)
	if errors.Is(err, storage.ErrNotFound) || phone == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "No phone found for this email.",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error fetching phone")
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"phone": phone},
	})
}
