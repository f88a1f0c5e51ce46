package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus marks whether an item was lost or found.
type PostStatus string

const (
	StatusLost  PostStatus = "LOST"
	StatusFound PostStatus = "FOUND"
)

// ContactMethod is the poster's contact-visibility setting. It controls
// whether gated actions may email the poster.
type ContactMethod string

const (
	ContactEmail ContactMethod = "EMAIL"
	ContactPhone ContactMethod = "PHONE"
	ContactBoth  ContactMethod = "BOTH"
)

// AllowsEmail reports whether the poster may be reached over email.
func (c ContactMethod) AllowsEmail() bool {
	return c == "" || c == ContactEmail || c == ContactBoth
}

// Post is a lost-or-found item listing.
type Post struct {
	gorm.Model
	UserID          uint          `json:"user_id" gorm:"not null;index"`
	User            *User         `json:"user,omitempty"`
	Title           string        `json:"title" gorm:"not null"`
	Description     string        `json:"description" gorm:"type:text;not null"`
	Location        string        `json:"location" gorm:"not null"`
	Category        string        `json:"category" gorm:"not null"`
	Photo           []byte        `json:"-" gorm:"type:bytea"`
	Status          PostStatus    `json:"status" gorm:"not null;default:FOUND"`
	IsClaimed       bool          `json:"is_claimed" gorm:"default:false"`
	ContactPublic   ContactMethod `json:"contact_public" gorm:"not null;default:EMAIL"`
	AdditionalNotes string        `json:"additional_notes" gorm:"type:text"`
}

// PostRequest is the create/update payload. Photo arrives as a Base64 string,
// optionally wrapped in a data URI.
type PostRequest struct {
	UserID          uint   `json:"user_id" validate:"required"`
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Location        string `json:"location" validate:"required"`
	Category        string `json:"category" validate:"required"`
	Photo           string `json:"photo"`
	Status          string `json:"status"`
	ContactPublic   string `json:"contact_public"`
	AdditionalNotes string `json:"additional_notes"`
}

// PostUpdateRequest carries optional fields for partial updates.
type PostUpdateRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	Category        string `json:"category"`
	Photo           string `json:"photo"`
	Status          string `json:"status"`
	ContactPublic   string `json:"contact_public"`
	AdditionalNotes string `json:"additional_notes"`
}

// PosterInfo is the poster summary embedded in a post detail view.
type PosterInfo struct {
	ID            uint      `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CreatedAt     time.Time `json:"created_at"`
	ItemsPosted   int64     `json:"items_posted"`
	ItemsReturned int64     `json:"items_returned"`
}

// PostDetailResponse is the full detail view of a post.
type PostDetailResponse struct {
	ID              uint        `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Location        string      `json:"location"`
	Category        string      `json:"category"`
	Status          PostStatus  `json:"status"`
	IsClaimed       bool        `json:"is_claimed"`
	ContactPublic   ContactMethod `json:"contact_public"`
	AdditionalNotes string      `json:"additional_notes"`
	PhotoBase64     string      `json:"photo_base64,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	User            *PosterInfo `json:"user,omitempty"`
}
