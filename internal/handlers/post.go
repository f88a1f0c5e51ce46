package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/trackhub-campus/trackhub-backend/internal/models"
	"github.com/trackhub-campus/trackhub-backend/internal/services"
	"github.com/trackhub-campus/trackhub-backend/internal/storage"
)

// PostHandler handles post CRUD and the OTP-gated contact/claim endpoints.
type PostHandler struct {
	posts      *services.PostService
	otp        *services.OTPService
	dispatcher *services.Dispatcher
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts *services.PostService, otp *services.OTPService, dispatcher *services.Dispatcher) *PostHandler {
	return &PostHandler{posts: posts, otp: otp, dispatcher: dispatcher}
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}

// Create handles new post creation.
func (h *PostHandler) Create(c *fiber.Ctx) error {
	var req models.PostRequest
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

	post, err := h.posts.CreatePost(&req)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": err.Error(),
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Error creating post")
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Post created successfully!",
		"data":    post,
	})
}

// GetAll returns every post, newest first.
func (h *PostHandler) GetAll(c *fiber.Ctx) error {
	posts, err := h.posts.GetAllPosts()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error fetching all posts")
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   posts,
	})
}

// GetByUser returns all posts by one user.
func (h *PostHandler) GetByUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	posts, err := h.posts.GetUserPosts(userID)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "User not found",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error fetching user posts")
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   posts,
	})
}

// GetDetail returns the full detail view of a post.
func (h *PostHandler) GetDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	detail, err := h.posts.GetPostDetail(id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Post not found",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error fetching post")
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   detail,
	})
}

// Update applies a partial update to a post.
func (h *PostHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	var req models.PostUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
		})
	}

	post, err := h.posts.UpdatePost(id, &req)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Post not found",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error updating post")
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Post updated successfully!",
		"data":    post,
	})
}

// Delete removes a post.
func (h *PostHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	if err := h.posts.DeletePost(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"status":  "error",
				"message": "Post not found",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Error deleting post")
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Post deleted successfully!",
	})
}

// InitiateContact is step 1 of the gated contact flow: issue an OTP against
// the sender's phone and queue delivery.
func (h *PostHandler) InitiateContact(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	var req models.ContactRequest
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

	exists, err := h.posts.Exists(id)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error initiating contact")
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Post not found",
		})
	}

	phone := req.SenderPhone
	code, err := h.otp.IssueForTarget(phone, models.PurposeContact)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error initiating contact")
	}

	h.dispatcher.Submit("otp-deliver", func() error {
		if !h.otp.Deliver(phone, code, models.PurposeContact) {
			return fmt.Errorf("OTP delivery failed for %s", phone)
		}
		return nil
	})

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "OTP sent to your registered phone number.",
	})
}

// VerifyContact is step 2 of the gated contact flow: verify the OTP, then
// relay the message only if verification succeeded.
func (h *PostHandler) VerifyContact(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	var req models.ContactVerifyRequest
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

	valid, err := h.otp.Verify(req.SenderPhone, req.OTP, models.PurposeContact)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error verifying OTP")
	}
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid or expired OTP.",
		})
	}

	sent, err := h.posts.ContactPoster(id, &req)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error contacting poster")
	}
	if !sent {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Post not found.",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Message sent successfully to post owner.",
	})
}

// SubmitClaim registers an ownership claim. Claims are gated only by
// knowledge of the post, not by OTP.
func (h *PostHandler) SubmitClaim(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	var req models.ClaimRequest
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

	claim, err := h.posts.CreateClaim(id, &req)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Post not found",
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error creating claim")
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Claim submitted successfully!",
		"data":    claim,
	})
}
