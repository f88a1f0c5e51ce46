package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trackhub-campus/trackhub-backend/internal/models"
)

// MemoryStore holds all data in memory. Used for tests and local runs with
// USE_MEMORY_STORE=true; the production path is the gorm-backed DatabaseStore.
type MemoryStore struct {
	users    map[uint]*models.User
	posts    map[uint]*models.Post
	messages map[uint]*models.Message
	claims   map[uint]*models.Claim
	otps     map[uint]*models.OTP

	// Mutexes for thread safety
	userMu    sync.RWMutex
	postMu    sync.RWMutex
	messageMu sync.RWMutex
	claimMu   sync.RWMutex
	otpMu     sync.RWMutex

	// Counters for ID generation
	userCounter    uint
	postCounter    uint
	messageCounter uint
	claimCounter   uint
	otpCounter     uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint]*models.User),
		posts:    make(map[uint]*models.Post),
		messages: make(map[uint]*models.Message),
		claims:   make(map[uint]*models.Claim),
		otps:     make(map[uint]*models.OTP),
	}
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range m.users {
		if u.Email == email {
			return nil, fmt.Errorf("email already registered")
		}
		if u.Phone == user.Phone {
			return nil, fmt.Errorf("phone already registered")
		}
	}

	m.userCounter++
	user.ID = m.userCounter
	user.Email = email
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryStore) GetUserByID(id uint) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByPhone(phone string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.Phone == phone {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

// Post operations

func (m *MemoryStore) CreatePost(post *models.Post) (*models.Post, error) {
	m.postMu.Lock()
	defer m.postMu.Unlock()

	m.postCounter++
	post.ID = m.postCounter
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt

	m.posts[post.ID] = post
	return post, nil
}

func (m *MemoryStore) GetPost(id uint) (*models.Post, error) {
	m.postMu.RLock()
	post, exists := m.posts[id]
	m.postMu.RUnlock()
	if !exists {
		return nil, ErrNotFound
	}

	// Attach the poster the way the database store preloads it.
	if post.User == nil {
		if user, err := m.GetUserByID(post.UserID); err == nil {
			post.User = user
		}
	}
	return post, nil
}

func (m *MemoryStore) GetAllPosts() ([]*models.Post, error) {
	m.postMu.RLock()
	defer m.postMu.RUnlock()

	posts := make([]*models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		posts = append(posts, post)
	}
	// Newest first
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *MemoryStore) GetPostsByUser(userID uint) ([]*models.Post, error) {
	m.postMu.RLock()
	defer m.postMu.RUnlock()

	var posts []*models.Post
	for _, post := range m.posts {
		if post.UserID == userID {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (m *MemoryStore) UpdatePost(post *models.Post) error {
	m.postMu.Lock()
	defer m.postMu.Unlock()

	if _, exists := m.posts[post.ID]; !exists {
		return ErrNotFound
	}
	post.UpdatedAt = time.Now()
	m.posts[post.ID] = post
	return nil
}

func (m *MemoryStore) DeletePost(id uint) error {
	m.postMu.Lock()
	defer m.postMu.Unlock()

	if _, exists := m.posts[id]; !exists {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *MemoryStore) CountPostsByUser(userID uint) (int64, error) {
	m.postMu.RLock()
	defer m.postMu.RUnlock()

	var count int64
	for _, post := range m.posts {
		if post.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) CountReturnedPostsByUser(userID uint) (int64, error) {
	m.postMu.RLock()
	defer m.postMu.RUnlock()

	var count int64
	for _, post := range m.posts {
		if post.UserID == userID && post.IsClaimed {
			count++
		}
	}
	return count, nil
}

// Message operations

func (m *MemoryStore) CreateMessage(msg *models.Message) (*models.Message, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	m.messageCounter++
	msg.ID = m.messageCounter
	msg.CreatedAt = time.Now()

	m.messages[msg.ID] = msg
	return msg, nil
}

func (m *MemoryStore) GetMessagesByPost(postID uint) ([]*models.Message, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	var msgs []*models.Message
	for _, msg := range m.messages {
		if msg.PostID == postID {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// Claim operations

func (m *MemoryStore) CreateClaim(claim *models.Claim) (*models.Claim, error) {
	m.claimMu.Lock()
	defer m.claimMu.Unlock()

	m.claimCounter++
	claim.ID = m.claimCounter
	claim.CreatedAt = time.Now()
	claim.UpdatedAt = claim.CreatedAt
	if claim.Reference == "" {
		// BeforeCreate hooks only run under gorm.
		claim.Reference = fmt.Sprintf("CLM%05d", claim.ID)
	}

	m.claims[claim.ID] = claim
	return claim, nil
}

// OTP operations

func (m *MemoryStore) CreateOTP(otp *models.OTP) (*models.OTP, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	m.otpCounter++
	otp.ID = m.otpCounter
	otp.CreatedAt = time.Now()
	otp.UpdatedAt = otp.CreatedAt

	m.otps[otp.ID] = otp
	return otp, nil
}

// GetActiveOTP returns the most recently created unconsumed OTP for the
// (phone, purpose) pair. Older unconsumed rows are never returned once a
// newer one exists.
func (m *MemoryStore) GetActiveOTP(phone string, purpose models.OTPPurpose) (*models.OTP, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	var newest *models.OTP
	for _, otp := range m.otps {
		if otp.Phone != phone || otp.Purpose != purpose || otp.Consumed {
			continue
		}
		if newest == nil ||
			otp.CreatedAt.After(newest.CreatedAt) ||
			(otp.CreatedAt.Equal(newest.CreatedAt) && otp.ID > newest.ID) {
			newest = otp
		}
	}
	if newest == nil {
		return nil, ErrNotFound
	}
	return newest, nil
}

// ConsumeOTP atomically flips Consumed from false to true. It reports whether
// this call performed the transition, so concurrent verifications of the same
// code can have at most one winner.
func (m *MemoryStore) ConsumeOTP(id uint) (bool, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	otp, exists := m.otps[id]
	if !exists {
		return false, ErrNotFound
	}
	if otp.Consumed {
		return false, nil
	}
	otp.Consumed = true
	otp.UpdatedAt = time.Now()
	return true, nil
}

func (m *MemoryStore) VoidActiveOTPs(phone string, purpose models.OTPPurpose) (int64, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	var voided int64
	for _, otp := range m.otps {
		if otp.Phone == phone && otp.Purpose == purpose && !otp.Consumed {
			otp.Consumed = true
			otp.UpdatedAt = time.Now()
			voided++
		}
	}
	return voided, nil
}

func (m *MemoryStore) DeleteExpiredOTPs(olderThan time.Time) (int64, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	var deleted int64
	for id, otp := range m.otps {
		if otp.ExpiresAt.Before(olderThan) {
			delete(m.otps, id)
			deleted++
		}
	}
	return deleted, nil
}
