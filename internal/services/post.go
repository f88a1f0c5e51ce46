package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/trackhub-campus/trackhub-backend/internal/models"
	"github.com/trackhub-campus/trackhub-backend/internal/storage"
)

// PostService handles post CRUD plus the two gated actions: contacting a
// poster and registering an ownership claim. Owner notifications are handed
// to the dispatcher and never affect the caller-visible result.
type PostService struct {
	store      storage.Store
	notifier   Notifier
	dispatcher *Dispatcher
}

// NewPostService creates a new post service
func NewPostService(store storage.Store, notifier Notifier, dispatcher *Dispatcher) *PostService {
	return &PostService{store: store, notifier: notifier, dispatcher: dispatcher}
}

// decodePhoto strips an optional data-URI prefix and decodes the Base64 payload.
func decodePhoto(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if idx := strings.Index(s, "base64,"); idx >= 0 && strings.HasPrefix(s, "data:image/") {
		s = s[idx+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid Base64 image data: %w", err)
	}
	return data, nil
}

// CreatePost validates the poster and persists a new listing.
func (s *PostService) CreatePost(req *models.PostRequest) (*models.Post, error) {
	user, err := s.store.GetUserByID(req.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("user not found with ID %d: %w", req.UserID, storage.ErrNotFound)
		}
		return nil, err
	}

	photo, err := decodePhoto(req.Photo)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:          user.ID,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Category:        req.Category,
		Photo:           photo,
		Status:          models.StatusFound,
		ContactPublic:   models.ContactEmail,
		AdditionalNotes: req.AdditionalNotes,
	}
	if req.Status != "" {
		post.Status = models.PostStatus(strings.ToUpper(req.Status))
	}
	if req.ContactPublic != "" {
		post.ContactPublic = models.ContactMethod(strings.ToUpper(req.ContactPublic))
	}

	saved, err := s.store.CreatePost(post)
	if err != nil {
		return nil, err
	}
	log.Printf("Created post id=%d by userId=%d", saved.ID, user.ID)
	return saved, nil
}

// GetAllPosts returns every listing, newest first.
func (s *PostService) GetAllPosts() ([]*models.Post, error) {
	return s.store.GetAllPosts()
}

// GetUserPosts returns all listings by one user.
func (s *PostService) GetUserPosts(userID uint) ([]*models.Post, error) {
	if _, err := s.store.GetUserByID(userID); err != nil {
		return nil, err
	}
	return s.store.GetPostsByUser(userID)
}

// Exists reports whether a post is present.
func (s *PostService) Exists(id uint) (bool, error) {
	_, err := s.store.GetPost(id)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetPostDetail builds the full detail view, including poster stats.
func (s *PostService) GetPostDetail(id uint) (*models.PostDetailResponse, error) {
	post, err := s.store.GetPost(id)
	if err != nil {
		return nil, err
	}

	dto := &models.PostDetailResponse{
		ID:              post.ID,
		Title:           post.Title,
		Description:     post.Description,
		Location:        post.Location,
		Category:        post.Category,
		Status:          post.Status,
		IsClaimed:       post.IsClaimed,
		ContactPublic:   post.ContactPublic,
		AdditionalNotes: post.AdditionalNotes,
		CreatedAt:       post.CreatedAt,
		UpdatedAt:       post.UpdatedAt,
	}
	if len(post.Photo) > 0 {
		dto.PhotoBase64 = base64.StdEncoding.EncodeToString(post.Photo)
	}

	if post.User != nil {
		info := &models.PosterInfo{
			ID:        post.User.ID,
			FirstName: post.User.FirstName,
			LastName:  post.User.LastName,
			Email:     post.User.Email,
			Phone:     post.User.Phone,
			CreatedAt: post.User.CreatedAt,
		}
		if posted, err := s.store.CountPostsByUser(post.User.ID); err == nil {
			info.ItemsPosted = posted
		} else {
			log.Printf("Unable to compute post count for userId=%d: %v", post.User.ID, err)
		}
		if returned, err := s.store.CountReturnedPostsByUser(post.User.ID); err == nil {
			info.ItemsReturned = returned
		} else {
			log.Printf("Unable to compute returned count for userId=%d: %v", post.User.ID, err)
		}
		dto.User = info
	}
	return dto, nil
}

// UpdatePost applies a partial update to an existing listing.
func (s *PostService) UpdatePost(id uint, req *models.PostUpdateRequest) (*models.Post, error) {
	post, err := s.store.GetPost(id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Description != "" {
		post.Description = req.Description
	}
	if req.Location != "" {
		post.Location = req.Location
	}
	if req.Category != "" {
		post.Category = req.Category
	}
	if req.AdditionalNotes != "" {
		post.AdditionalNotes = req.AdditionalNotes
	}
	if req.Photo != "" {
		photo, err := decodePhoto(req.Photo)
		if err != nil {
			return nil, err
		}
		post.Photo = photo
	}
	if req.Status != "" {
		post.Status = models.PostStatus(strings.ToUpper(req.Status))
	}
	if req.ContactPublic != "" {
		post.ContactPublic = models.ContactMethod(strings.ToUpper(req.ContactPublic))
	}

	if err := s.store.UpdatePost(post); err != nil {
		return nil, err
	}
	log.Printf("Updated post id=%d", post.ID)
	return post, nil
}

// DeletePost removes a listing.
func (s *PostService) DeletePost(id uint) error {
	if err := s.store.DeletePost(id); err != nil {
		return err
	}
	log.Printf("Deleted post id=%d", id)
	return nil
}

// ContactPoster relays a verified sender's message to the post owner.
// Precondition: the caller already obtained true from Verify for
// (senderPhone, CONTACT). Returns false only when the post does not exist;
// the message save and the owner email are both best-effort.
func (s *PostService) ContactPoster(postID uint, req *models.ContactVerifyRequest) (bool, error) {
	post, err := s.store.GetPost(postID)
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("contactPoster: post not found id=%d", postID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	msg := &models.Message{
		PostID:      post.ID,
		SenderName:  req.SenderName,
		SenderEmail: req.SenderEmail,
		SenderPhone: req.SenderPhone,
		Body:        req.Message,
	}
	if _, err := s.store.CreateMessage(msg); err != nil {
		log.Printf("Failed to save message for postId=%d: %v", postID, err)
	} else {
		log.Printf("Saved message id=%d for postId=%d", msg.ID, postID)
	}

	if !post.ContactPublic.AllowsEmail() || post.User == nil || post.User.Email == "" {
		log.Printf("Email not allowed or poster has no email for postId=%d", postID)
		return true, nil
	}

	to := post.User.Email
	subject, body := buildContactEmail(post, req)
	s.dispatcher.Submit("contact-notify", func() error {
		return s.notifier.Notify(to, subject, body)
	})
	log.Printf("Queued verified email to poster for postId=%d", postID)
	return true, nil
}

func buildContactEmail(post *models.Post, req *models.ContactVerifyRequest) (string, string) {
	subject := fmt.Sprintf("TrackHub: Message about your item %q", post.Title)

	message := req.Message
	if strings.TrimSpace(message) == "" {
		message = "(no message provided)"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hi %s,\n\n", post.User.FirstName))
	sb.WriteString(fmt.Sprintf("You have a new verified message regarding your post: %s\n\n", post.Title))
	sb.WriteString(fmt.Sprintf("Sender: %s\n", req.SenderName))
	sb.WriteString(fmt.Sprintf("Email: %s\n", req.SenderEmail))
	if strings.TrimSpace(req.SenderPhone) != "" {
		sb.WriteString(fmt.Sprintf("Phone: %s\n", req.SenderPhone))
	}
	sb.WriteString(fmt.Sprintf("\nMessage:\n%s\n\n--\nTrackHub", message))
	return subject, sb.String()
}

// CreateClaim registers an ownership claim against a post and notifies the
// owner best-effort. Claims start PENDING; moderation happens elsewhere.
func (s *PostService) CreateClaim(postID uint, req *models.ClaimRequest) (*models.Claim, error) {
	post, err := s.store.GetPost(postID)
	if err != nil {
		return nil, err
	}

	claim := &models.Claim{
		PostID:       post.ID,
		ClaimerName:  req.ClaimerName,
		ClaimerEmail: req.ClaimerEmail,
		ClaimerPhone: req.ClaimerPhone,
		Reason:       req.ClaimReason,
		Status:       models.ClaimPending,
	}
	saved, err := s.store.CreateClaim(claim)
	if err != nil {
		return nil, err
	}
	log.Printf("Saved claim id=%d for postId=%d", saved.ID, postID)

	if post.ContactPublic.AllowsEmail() && post.User != nil && post.User.Email != "" {
		to := post.User.Email
		subject, body := buildClaimEmail(post, req)
		s.dispatcher.Submit("claim-notify", func() error {
			return s.notifier.Notify(to, subject, body)
		})
		log.Printf("Queued claim notification email for postId=%d", postID)
	}
	return saved, nil
}

func buildClaimEmail(post *models.Post, req *models.ClaimRequest) (string, string) {
	subject := fmt.Sprintf("TrackHub: Claim submitted for your item %q", post.Title)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hi %s,\n\n", post.User.FirstName))
	sb.WriteString(fmt.Sprintf("Someone has submitted a claim for your post: %s\n\n", post.Title))
	sb.WriteString(fmt.Sprintf("Claimer: %s\n", req.ClaimerName))
	sb.WriteString(fmt.Sprintf("Email: %s\n", req.ClaimerEmail))
	if strings.TrimSpace(req.ClaimerPhone) != "" {
		sb.WriteString(fmt.Sprintf("Phone: %s\n", req.ClaimerPhone))
	}
	if strings.TrimSpace(req.ClaimReason) != "" {
		sb.WriteString(fmt.Sprintf("\nClaim reason:\n%s\n", req.ClaimReason))
	}
	sb.WriteString("\nPlease review this claim and contact the claimer to verify ownership.\n\n--\nTrackHub")
	return subject, sb.String()
}
