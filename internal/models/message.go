package models

import "gorm.io/gorm"

// Message is a verified contact message left for a poster.
type Message struct {
	gorm.Model
	PostID      uint   `json:"post_id" gorm:"not null;index"`
	SenderName  string `json:"sender_name" gorm:"not null"`
	SenderEmail string `json:"sender_email" gorm:"not null"`
	SenderPhone string `json:"sender_phone"`
	Body        string `json:"body" gorm:"type:text;not null"`
}

// ContactRequest starts the contact flow: it only identifies the sender's
// phone so an OTP can be issued against it.
type ContactRequest struct {
	SenderPhone string `json:"sender_phone" validate:"required"`
}

// ContactVerifyRequest completes the contact flow: the submitted code plus
// the message to relay once verification succeeds.
type ContactVerifyRequest struct {
	SenderName  string `json:"sender_name" validate:"required"`
	SenderEmail string `json:"sender_email" validate:"required,email"`
	SenderPhone string `json:"sender_phone" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	Message     string `json:"message"`
}
