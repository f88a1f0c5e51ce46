package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/trackhub-campus/trackhub-backend/internal/models"
	"github.com/trackhub-campus/trackhub-backend/internal/storage"
)

// ErrInvalidCredentials is returned when an email/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService handles registration, password login and profile lookups.
// Hash-and-compare plus a signed token is all the depth this layer carries.
type UserService struct {
	store       storage.Store
	jwtSecret   []byte
	emailDomain string
}

// NewUserService creates a new user service
func NewUserService(store storage.Store, jwtSecret, emailDomain string) *UserService {
	return &UserService{
		store:       store,
		jwtSecret:   []byte(jwtSecret),
		emailDomain: strings.ToLower(emailDomain),
	}
}

// AllowedEmail reports whether the address belongs to the campus domain.
func (s *UserService) AllowedEmail(email string) bool {
	if s.emailDomain == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+s.emailDomain)
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(req *models.RegistrationRequest) (*models.UserResponse, error) {
	if !s.AllowedEmail(req.Email) {
		return nil, fmt.Errorf("please use your %s college email", s.emailDomain)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
	}
	saved, err := s.store.CreateUser(user)
	if err != nil {
		return nil, err
	}

	log.Printf("Registered user id=%d email=%s", saved.ID, saved.Email)
	return saved.ToResponse(), nil
}

// Login verifies the password and returns a signed access token.
func (s *UserService) Login(email, password string) (string, *models.UserResponse, error) {
	user, err := s.store.GetUserByEmail(email)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   fmt.Sprintf("%d", user.ID),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	log.Printf("User id=%d logged in", user.ID)
	return token, user.ToResponse(), nil
}

// GetProfileByEmail returns the public profile for an account.
func (s *UserService) GetProfileByEmail(email string) (*models.UserResponse, error) {
	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// GetPhoneByEmail resolves the registered phone for an email. Used by the
// frontend to trigger a login OTP, and server-side for LOGIN issuance.
func (s *UserService) GetPhoneByEmail(email string) (string, error) {
	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return "", err
	}
	return user.Phone, nil
}
