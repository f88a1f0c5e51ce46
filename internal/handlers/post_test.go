package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/trackhub-campus/trackhub-backend/internal/config"
	"github.com/trackhub-campus/trackhub-backend/internal/handlers"
	"github.com/trackhub-campus/trackhub-backend/internal/models"
	"github.com/trackhub-campus/trackhub-backend/internal/routes"
	"github.com/trackhub-campus/trackhub-backend/internal/services"
	"github.com/trackhub-campus/trackhub-backend/internal/storage"
)

type stubNotifier struct {
	mu   sync.Mutex
	sent int
}

func (s *stubNotifier) Notify(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent++
	return nil
}

type testEnv struct {
	app        *fiber.App
	store      *storage.MemoryStore
	dispatcher *services.Dispatcher
	notifier   *stubNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := storage.NewMemoryStore()
	notifier := &stubNotifier{}
	dispatcher := services.NewDispatcher(1, 16)
	dispatcher.Start()
	t.Cleanup(dispatcher.Stop)

	cfg := config.OTPConfig{Digits: 6, ExpiryMinutes: 5}
	otpService := services.NewOTPService(store, notifier, nil, cfg)
	userService := services.NewUserService(store, "test-secret", "srkrec.ac.in")
	postService := services.NewPostService(store, notifier, dispatcher)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"status": "error", "message": err.Error()})
		},
	})
	auth := handlers.NewAuthHandler(userService, otpService, dispatcher)
	posts := handlers.NewPostHandler(postService, otpService, dispatcher)
	routes.SetupRoutes(app, auth, posts, "test-secret")

	return &testEnv{app: app, store: store, dispatcher: dispatcher, notifier: notifier}
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) (int, map[string]any) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, decoded
}

func (e *testEnv) seedPostWithOwner(t *testing.T, visibility models.ContactMethod) *models.Post {
	t.Helper()

	user, err := e.store.CreateUser(&models.User{
		FirstName:    "Ravi",
		Email:        "ravi@srkrec.ac.in",
		Phone:        "9876543210",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatal(err)
	}
	post, err := e.store.CreatePost(&models.Post{
		UserID:        user.ID,
		Title:         "Black wallet",
		Description:   "Found near the library",
		Location:      "Library",
		Category:      "Accessories",
		Status:        models.StatusFound,
		ContactPublic: visibility,
	})
	if err != nil {
		t.Fatal(err)
	}
	return post
}

func TestContactFlow(t *testing.T) {
	t.Run("InitiateMissingPost", func(t *testing.T) {
		env := newTestEnv(t)

		status, body := env.postJSON(t, "/api/posts/99/contact/initiate", fiber.Map{
			"sender_phone": "9999999999",
		})
		if status != fiber.StatusNotFound {
			t.Fatalf("expected 404, got %d (%v)", status, body)
		}
	})

	t.Run("FullGatedFlow", func(t *testing.T) {
		env := newTestEnv(t)
		post := env.seedPostWithOwner(t, models.ContactEmail)

		status, body := env.postJSON(t, fmt.Sprintf("/api/posts/%d/contact/initiate", post.ID), fiber.Map{
			"sender_phone": "9999999999",
		})
		if status != fiber.StatusOK {
			t.Fatalf("expected 200, got %d (%v)", status, body)
		}

		// The acknowledgement never carries the code; pull it from the store.
		otp, err := env.store.GetActiveOTP("9999999999", models.PurposeContact)
		if err != nil {
			t.Fatalf("expected an issued token after initiate, got %v", err)
		}

		verifyPayload := func(code string) fiber.Map {
			return fiber.Map{
				"sender_name":  "Priya",
				"sender_email": "priya@srkrec.ac.in",
				"sender_phone": "9999999999",
				"otp":          code,
				"message":      "I think that's my wallet",
			}
		}

		// Wrong code is rejected and persists nothing.
		status, _ = env.postJSON(t, fmt.Sprintf("/api/posts/%d/contact/verify", post.ID), verifyPayload("000000"))
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected 400 for wrong code, got %d", status)
		}
		if msgs, _ := env.store.GetMessagesByPost(post.ID); len(msgs) != 0 {
			t.Fatalf("wrong code must not persist a message, got %d", len(msgs))
		}

		// Correct code passes the gate.
		status, _ = env.postJSON(t, fmt.Sprintf("/api/posts/%d/contact/verify", post.ID), verifyPayload(otp.Code))
		if status != fiber.StatusOK {
			t.Fatalf("expected 200 for correct code, got %d", status)
		}
		if msgs, _ := env.store.GetMessagesByPost(post.ID); len(msgs) != 1 {
			t.Fatalf("expected 1 persisted message, got %d", len(msgs))
		}

		// Replay of the consumed code is rejected.
		status, _ = env.postJSON(t, fmt.Sprintf("/api/posts/%d/contact/verify", post.ID), verifyPayload(otp.Code))
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected 400 for replayed code, got %d", status)
		}
	})

	t.Run("MalformedVerifyRejected", func(t *testing.T) {
		env := newTestEnv(t)
		post := env.seedPostWithOwner(t, models.ContactEmail)

		status, _ := env.postJSON(t, fmt.Sprintf("/api/posts/%d/contact/verify", post.ID), fiber.Map{
			"sender_phone": "9999999999",
		})
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected 400 for missing fields, got %d", status)
		}
	})
}

func TestClaimEndpoint(t *testing.T) {
	t.Run("MissingPost", func(t *testing.T) {
		env := newTestEnv(t)

		status, _ := env.postJSON(t, "/api/posts/7/claim", fiber.Map{
			"claimer_name":  "Anil",
			"claimer_email": "a@x.com",
		})
		if status != fiber.StatusNotFound {
			t.Fatalf("expected 404, got %d", status)
		}
	})

	t.Run("ReturnsPendingClaim", func(t *testing.T) {
		env := newTestEnv(t)
		post := env.seedPostWithOwner(t, models.ContactEmail)

		status, body := env.postJSON(t, fmt.Sprintf("/api/posts/%d/claim", post.ID), fiber.Map{
			"claimer_name":  "Anil",
			"claimer_email": "a@x.com",
			"claim_reason":  "Lost it last Tuesday",
		})
		if status != fiber.StatusOK {
			t.Fatalf("expected 200, got %d (%v)", status, body)
		}

		data, ok := body["data"].(map[string]any)
		if !ok {
			t.Fatalf("expected claim data, got %v", body)
		}
		if data["status"] != string(models.ClaimPending) {
			t.Fatalf("expected PENDING, got %v", data["status"])
		}
		if data["ID"] == nil && data["id"] == nil {
			t.Fatal("expected a generated claim id")
		}
	})
}

func TestVerifyOTPEndpoint(t *testing.T) {
	t.Run("MissingFields", func(t *testing.T) {
		env := newTestEnv(t)

		status, _ := env.postJSON(t, "/api/auth/verify-otp", fiber.Map{"phone": "9999999999"})
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
	})

	t.Run("UnknownPurpose", func(t *testing.T) {
		env := newTestEnv(t)

		status, _ := env.postJSON(t, "/api/auth/verify-otp", fiber.Map{
			"phone":   "9999999999",
			"otp":     "123456",
			"purpose": "ADMIN_OVERRIDE",
		})
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected 400 for unknown purpose, got %d", status)
		}
	})
}

func TestSendOTPEndpoint(t *testing.T) {
	t.Run("LoginUnknownEmail", func(t *testing.T) {
		env := newTestEnv(t)

		status, _ := env.postJSON(t, "/api/auth/send-otp", fiber.Map{
			"email":   "ghost@srkrec.ac.in",
			"purpose": "LOGIN",
		})
		if status != fiber.StatusNotFound {
			t.Fatalf("expected 404, got %d", status)
		}
	})

	t.Run("RegisterRequiresPhone", func(t *testing.T) {
		env := newTestEnv(t)

		status, _ := env.postJSON(t, "/api/auth/send-otp", fiber.Map{
			"purpose": "REGISTER",
		})
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
	})

	t.Run("AcknowledgementNeverContainsCode", func(t *testing.T) {
		env := newTestEnv(t)

		status, body := env.postJSON(t, "/api/auth/send-otp", fiber.Map{
			"phone":   "9999999999",
			"purpose": "REGISTER",
		})
		if status != fiber.StatusOK {
			t.Fatalf("expected 200, got %d (%v)", status, body)
		}

		otp, err := env.store.GetActiveOTP("9999999999", models.PurposeRegister)
		if err != nil {
			t.Fatalf("expected issued token, got %v", err)
		}
		raw, _ := json.Marshal(body)
		if bytes.Contains(raw, []byte(otp.Code)) {
			t.Fatal("response must never contain the code")
		}
	})
}
