package services

import (
	"errors"
	"testing"

	"github.com/trackhub-campus/trackhub-backend/internal/models"
	"github.com/trackhub-campus/trackhub-backend/internal/storage"
)

func seedPoster(t *testing.T, store *storage.MemoryStore) *models.User {
	t.Helper()
	user, err := store.CreateUser(&models.User{
		FirstName:    "Ravi",
		LastName:     "Kumar",
		Email:        "ravi@srkrec.ac.in",
		Phone:        "9876543210",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatal(err)
	}
	return user
}

func seedPost(t *testing.T, store *storage.MemoryStore, userID uint, visibility models.ContactMethod) *models.Post {
	t.Helper()
	post, err := store.CreatePost(&models.Post{
		UserID:        userID,
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

func contactReq() *models.ContactVerifyRequest {
	return &models.ContactVerifyRequest{
		SenderName:  "Priya",
		SenderEmail: "priya@srkrec.ac.in",
		SenderPhone: "9999999999",
		OTP:         "482913",
		Message:     "I think that's my wallet",
	}
}

func TestContactPoster(t *testing.T) {
	t.Run("MissingPostNoSideEffects", func(t *testing.T) {
		store := storage.NewMemoryStore()
		notifier := &fakeNotifier{}
		dispatcher := NewDispatcher(1, 8)
		dispatcher.Start()
		svc := NewPostService(store, notifier, dispatcher)

		ok, err := svc.ContactPoster(42, contactReq())
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("expected false for a nonexistent post")
		}

		dispatcher.Stop()
		msgs, _ := store.GetMessagesByPost(42)
		if len(msgs) != 0 {
			t.Fatalf("expected no persisted messages, got %d", len(msgs))
		}
		if notifier.count() != 0 {
			t.Fatal("expected no notification")
		}
	})

	t.Run("EmailVisibilityNotifiesOwner", func(t *testing.T) {
		store := storage.NewMemoryStore()
		user := seedPoster(t, store)
		post := seedPost(t, store, user.ID, models.ContactEmail)

		notifier := &fakeNotifier{}
		dispatcher := NewDispatcher(1, 8)
		dispatcher.Start()
		svc := NewPostService(store, notifier, dispatcher)

		ok, err := svc.ContactPoster(post.ID, contactReq())
		if err != nil || !ok {
			t.Fatalf("expected success, ok=%v err=%v", ok, err)
		}

		dispatcher.Stop()
		if notifier.count() != 1 {
			t.Fatalf("expected 1 owner notification, got %d", notifier.count())
		}
		if notifier.sent[0].to != user.Email {
			t.Fatalf("notification went to %s, want %s", notifier.sent[0].to, user.Email)
		}

		msgs, _ := store.GetMessagesByPost(post.ID)
		if len(msgs) != 1 {
			t.Fatalf("expected 1 persisted message, got %d", len(msgs))
		}
	})

	t.Run("PhoneVisibilitySkipsEmailButPersists", func(t *testing.T) {
		store := storage.NewMemoryStore()
		user := seedPoster(t, store)
		post := seedPost(t, store, user.ID, models.ContactPhone)

		notifier := &fakeNotifier{}
		dispatcher := NewDispatcher(1, 8)
		dispatcher.Start()
		svc := NewPostService(store, notifier, dispatcher)

		ok, err := svc.ContactPoster(post.ID, contactReq())
		if err != nil || !ok {
			t.Fatalf("expected success even without email, ok=%v err=%v", ok, err)
		}

		dispatcher.Stop()
		if notifier.count() != 0 {
			t.Fatal("PHONE visibility must not trigger email")
		}
		msgs, _ := store.GetMessagesByPost(post.ID)
		if len(msgs) != 1 {
			t.Fatalf("expected 1 persisted message, got %d", len(msgs))
		}
	})

	t.Run("NotifierFailureDoesNotAffectResult", func(t *testing.T) {
		store := storage.NewMemoryStore()
		user := seedPoster(t, store)
		post := seedPost(t, store, user.ID, models.ContactBoth)

		notifier := &fakeNotifier{fail: true}
		dispatcher := NewDispatcher(1, 8)
		dispatcher.Start()
		defer dispatcher.Stop()
		svc := NewPostService(store, notifier, dispatcher)

		ok, err := svc.ContactPoster(post.ID, contactReq())
		if err != nil || !ok {
			t.Fatalf("notify failure must not fail the action, ok=%v err=%v", ok, err)
		}
	})
}

func TestCreateClaim(t *testing.T) {
	t.Run("MissingPost", func(t *testing.T) {
		store := storage.NewMemoryStore()
		dispatcher := NewDispatcher(1, 8)
		dispatcher.Start()
		defer dispatcher.Stop()
		svc := NewPostService(store, &fakeNotifier{}, dispatcher)

		_, err := svc.CreateClaim(7, &models.ClaimRequest{
			ClaimerName:  "Anil",
			ClaimerEmail: "a@x.com",
		})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PendingClaimWithNotification", func(t *testing.T) {
		store := storage.NewMemoryStore()
		user := seedPoster(t, store)
		post := seedPost(t, store, user.ID, models.ContactEmail)

		notifier := &fakeNotifier{}
		dispatcher := NewDispatcher(1, 8)
		dispatcher.Start()
		svc := NewPostService(store, notifier, dispatcher)

		claim, err := svc.CreateClaim(post.ID, &models.ClaimRequest{
			ClaimerName:  "Anil",
			ClaimerEmail: "a@x.com",
			ClaimReason:  "Lost it last Tuesday",
		})
		if err != nil {
			t.Fatal(err)
		}
		if claim.ID == 0 {
			t.Fatal("expected a generated claim id")
		}
		if claim.Status != models.ClaimPending {
			t.Fatalf("expected PENDING, got %s", claim.Status)
		}
		if claim.Reference == "" {
			t.Fatal("expected a claim reference")
		}

		dispatcher.Stop()
		if notifier.count() != 1 {
			t.Fatalf("expected owner notification, got %d", notifier.count())
		}
	})

	t.Run("PhoneVisibilitySkipsNotification", func(t *testing.T) {
		store := storage.NewMemoryStore()
		user := seedPoster(t, store)
		post := seedPost(t, store, user.ID, models.ContactPhone)

		notifier := &fakeNotifier{}
		dispatcher := NewDispatcher(1, 8)
		dispatcher.Start()
		svc := NewPostService(store, notifier, dispatcher)

		claim, err := svc.CreateClaim(post.ID, &models.ClaimRequest{
			ClaimerName:  "Anil",
			ClaimerEmail: "a@x.com",
		})
		if err != nil {
			t.Fatal(err)
		}
		if claim.Status != models.ClaimPending {
			t.Fatalf("expected PENDING, got %s", claim.Status)
		}

		dispatcher.Stop()
		if notifier.count() != 0 {
			t.Fatal("PHONE visibility must not trigger email")
		}
	})
}

func TestPostDetail(t *testing.T) {
	store := storage.NewMemoryStore()
	user := seedPoster(t, store)
	post := seedPost(t, store, user.ID, models.ContactEmail)

	claimed := seedPost(t, store, user.ID, models.ContactEmail)
	claimed.IsClaimed = true
	if err := store.UpdatePost(claimed); err != nil {
		t.Fatal(err)
	}

	dispatcher := NewDispatcher(1, 8)
	dispatcher.Start()
	defer dispatcher.Stop()
	svc := NewPostService(store, &fakeNotifier{}, dispatcher)

	detail, err := svc.GetPostDetail(post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.User == nil {
		t.Fatal("expected poster info")
	}
	if detail.User.ItemsPosted != 2 {
		t.Fatalf("expected 2 items posted, got %d", detail.User.ItemsPosted)
	}
	if detail.User.ItemsReturned != 1 {
		t.Fatalf("expected 1 item returned, got %d", detail.User.ItemsReturned)
	}
}
