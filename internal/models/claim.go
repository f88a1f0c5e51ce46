package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimStatus tracks moderation of an ownership claim. Only PENDING is ever
// written here; approval/rejection belongs to the moderation workflow.
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "PENDING"
	ClaimApproved ClaimStatus = "APPROVED"
	ClaimRejected ClaimStatus = "REJECTED"
)

// Claim is an ownership claim registered against a post.
type Claim struct {
	gorm.Model
	PostID       uint        `json:"post_id" gorm:"not null;index"`
	Reference    string      `json:"reference" gorm:"uniqueIndex"`
	ClaimerName  string      `json:"claimer_name" gorm:"not null"`
	ClaimerEmail string      `json:"claimer_email" gorm:"not null"`
	ClaimerPhone string      `json:"claimer_phone"`
	Reason       string      `json:"reason" gorm:"type:text"`
	Status       ClaimStatus `json:"status" gorm:"not null;default:PENDING"`
}

// BeforeCreate assigns a public tracking reference.
func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.Reference == "" {
		c.Reference = uuid.NewString()
	}
	return nil
}

// ClaimRequest is the payload for submitting a claim.
type ClaimRequest struct {
	ClaimerName  string `json:"claimer_name" validate:"required"`
	ClaimerEmail string `json:"claimer_email" validate:"required,email"`
	ClaimerPhone string `json:"claimer_phone"`
	ClaimReason  string `json:"claim_reason"`
}
