package storage

import (
	"errors"
	"time"

	"github.com/trackhub-campus/trackhub-backend/internal/models"
)

// ErrNotFound is returned when a lookup matches no row. Absence is a normal
// outcome for callers, distinct from a storage failure.
var ErrNotFound = errors.New("not found")

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)

	// Post operations
	CreatePost(post *models.Post) (*models.Post, error)
	GetPost(id uint) (*models.Post, error)
	GetAllPosts() ([]*models.Post, error)
	GetPostsByUser(userID uint) ([]*models.Post, error)
	UpdatePost(post *models.Post) error
	DeletePost(id uint) error
	CountPostsByUser(userID uint) (int64, error)
	CountReturnedPostsByUser(userID uint) (int64, error)

	// Message operations
	CreateMessage(msg *models.Message) (*models.Message, error)
	GetMessagesByPost(postID uint) ([]*models.Message, error)

	// Claim operations
	CreateClaim(claim *models.Claim) (*models.Claim, error)

	// OTP operations
	CreateOTP(otp *models.OTP) (*models.OTP, error)
	GetActiveOTP(phone string, purpose models.OTPPurpose) (*models.OTP, error)
	ConsumeOTP(id uint) (bool, error)
	VoidActiveOTPs(phone string, purpose models.OTPPurpose) (int64, error)
	DeleteExpiredOTPs(olderThan time.Time) (int64, error)
}
