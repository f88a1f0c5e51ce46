package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// OTPPurpose is the closed set of actions a one-time code can authorize.
// A code issued for one purpose never validates another.
type OTPPurpose string

const (
	PurposeRegister    OTPPurpose = "REGISTER"
	PurposeLogin       OTPPurpose = "LOGIN"
	PurposeContact     OTPPurpose = "CONTACT"
	PurposeEmailVerify OTPPurpose = "EMAIL_VERIFY"
)

// ParseOTPPurpose maps a request string onto the closed purpose set.
// Anything outside the set is rejected so a typo can never open a gate.
func ParseOTPPurpose(s string) (OTPPurpose, bool) {
	switch p := OTPPurpose(strings.ToUpper(strings.TrimSpace(s))); p {
	case PurposeRegister, PurposeLogin, PurposeContact, PurposeEmailVerify:
		return p, true
	default:
		return "", false
	}
}

// OTP is one issued one-time code. Code and Purpose are immutable after
// creation; Consumed transitions false->true exactly once and never reverses.
type OTP struct {
	gorm.Model
	Phone     string     `json:"phone" gorm:"not null;index"`
	Code      string     `json:"-" gorm:"not null"`
	Purpose   OTPPurpose `json:"purpose" gorm:"not null;index"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	Consumed  bool       `json:"consumed" gorm:"default:false"`
	UserID    *uint      `json:"user_id,omitempty" gorm:"index"`
}

// Expired reports whether the code's validity window has passed.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// SendOTPRequest asks for a code to be issued and delivered.
// For LOGIN the phone is resolved server-side from the email; for
// REGISTER and CONTACT the phone is supplied directly.
type SendOTPRequest struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Purpose string `json:"purpose" validate:"required"`
}

// VerifyOTPRequest submits a code for verification.
type VerifyOTPRequest struct {
	Phone   string `json:"phone" validate:"required"`
	OTP     string `json:"otp" validate:"required"`
	Purpose string `json:"purpose" validate:"required"`
}
