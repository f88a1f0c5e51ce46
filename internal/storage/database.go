package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/trackhub-campus/trackhub-backend/internal/models"
)

// DatabaseStore is the PostgreSQL-backed Store implementation.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given gorm connection.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// User operations

func (d *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if err := d.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (d *DatabaseStore) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (d *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (d *DatabaseStore) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// Post operations

func (d *DatabaseStore) CreatePost(post *models.Post) (*models.Post, error) {
	if err := d.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (d *DatabaseStore) GetPost(id uint) (*models.Post, error) {
	var post models.Post
	if err := d.db.Preload("User").First(&post, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &post, nil
}

func (d *DatabaseStore) GetAllPosts() ([]*models.Post, error) {
	var posts []*models.Post
	if err := d.db.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (d *DatabaseStore) GetPostsByUser(userID uint) ([]*models.Post, error) {
	var posts []*models.Post
	if err := d.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (d *DatabaseStore) UpdatePost(post *models.Post) error {
	return d.db.Save(post).Error
}

func (d *DatabaseStore) DeletePost(id uint) error {
	res := d.db.Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) CountPostsByUser(userID uint) (int64, error) {
	var count int64
	err := d.db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (d *DatabaseStore) CountReturnedPostsByUser(userID uint) (int64, error) {
	var count int64
	err := d.db.Model(&models.Post{}).
		Where("user_id = ? AND is_claimed = ?", userID, true).
		Count(&count).Error
	return count, err
}

// Message operations

func (d *DatabaseStore) CreateMessage(msg *models.Message) (*models.Message, error) {
	if err := d.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (d *DatabaseStore) GetMessagesByPost(postID uint) ([]*models.Message, error) {
	var msgs []*models.Message
	if err := d.db.Where("post_id = ?", postID).Order("created_at DESC").Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// Claim operations

func (d *DatabaseStore) CreateClaim(claim *models.Claim) (*models.Claim, error) {
	if err := d.db.Create(claim).Error; err != nil {
		return nil, err
	}
	return claim, nil
}

// OTP operations

func (d *DatabaseStore) CreateOTP(otp *models.OTP) (*models.OTP, error) {
	if err := d.db.Create(otp).Error; err != nil {
		return nil, err
	}
	return otp, nil
}

func (d *DatabaseStore) GetActiveOTP(phone string, purpose models.OTPPurpose) (*models.OTP, error) {
	var otp models.OTP
	err := d.db.
		Where("phone = ? AND purpose = ? AND consumed = ?", phone, purpose, false).
		Order("created_at DESC, id DESC").
		First(&otp).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &otp, nil
}

// ConsumeOTP flips Consumed with a conditional update so two concurrent
// verifications of the same code cannot both win.
func (d *DatabaseStore) ConsumeOTP(id uint) (bool, error) {
	res := d.db.Model(&models.OTP{}).
		Where("id = ? AND consumed = ?", id, false).
		Update("consumed", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (d *DatabaseStore) VoidActiveOTPs(phone string, purpose models.OTPPurpose) (int64, error) {
	res := d.db.Model(&models.OTP{}).
		Where("phone = ? AND purpose = ? AND consumed = ?", phone, purpose, false).
		Update("consumed", true)
	return res.RowsAffected, res.Error
}

func (d *DatabaseStore) DeleteExpiredOTPs(olderThan time.Time) (int64, error) {
	res := d.db.Unscoped().
		Where("expires_at < ?", olderThan).
		Delete(&models.OTP{})
	return res.RowsAffected, res.Error
}
