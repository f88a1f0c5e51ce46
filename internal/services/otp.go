package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/trackhub-campus/trackhub-backend/internal/config"
	"github.com/trackhub-campus/trackhub-backend/internal/models"
	"github.com/trackhub-campus/trackhub-backend/internal/storage"
	"github.com/trackhub-campus/trackhub-backend/internal/utils"
)

// OTPService orchestrates one-time code issuance, delivery and verification.
// Issuance and delivery are separate calls so a database write and a network
// send can fail independently; a delivery failure never invalidates an
// issued code.
type OTPService struct {
	store    storage.Store
	notifier Notifier
	sms      SMSSender
	cfg      config.OTPConfig
}

// NewOTPService creates the OTP workflow. sms may be nil when no SMS channel
// is configured; the email path still works.
func NewOTPService(store storage.Store, notifier Notifier, sms SMSSender, cfg config.OTPConfig) *OTPService {
	return &OTPService{store: store, notifier: notifier, sms: sms, cfg: cfg}
}

// IssueForTarget generates a fresh code for the (phone, purpose) pair,
// persists it and returns the plaintext code for delivery. Previously active
// codes for the same pair are voided so only the newest can ever verify.
func (s *OTPService) IssueForTarget(phone string, purpose models.OTPPurpose) (string, error) {
	code, err := utils.GenerateOTPCode(s.cfg.Digits)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	voided, err := s.store.VoidActiveOTPs(phone, purpose)
	if err != nil {
		return "", fmt.Errorf("failed to void previous OTPs: %w", err)
	}
	if voided > 0 {
		log.Printf("Voided %d superseded OTP(s) for %s (%s)", voided, phone, purpose)
	}

	otp := &models.OTP{
		Phone:     phone,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.ExpiryMinutes) * time.Minute),
		Consumed:  false,
	}
	if user, err := s.store.GetUserByPhone(phone); err == nil {
		otp.UserID = &user.ID
	}

	if _, err := s.store.CreateOTP(otp); err != nil {
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	log.Printf("📱 Created OTP for phone %s (purpose %s, expires %s)", phone, purpose, otp.ExpiresAt.Format(time.RFC3339))
	return code, nil
}

// Deliver resolves the phone into a deliverable address and sends the code.
// Registered users get the code on their account email; unregistered phones
// (the registration flow) fall back to SMS. Returns false on any resolution
// or delivery failure; the issued code stays valid either way.
func (s *OTPService) Deliver(phone, code string, purpose models.OTPPurpose) bool {
	body := fmt.Sprintf(
		"Your OTP for TrackHub is: %s\nThis OTP is valid for %d minutes.\n\n-- TrackHub Team",
		code, s.cfg.ExpiryMinutes,
	)

	user, err := s.store.GetUserByPhone(phone)
	switch {
	case err == nil:
		if err := s.notifier.Notify(user.Email, "TrackHub OTP Verification", body); err != nil {
			log.Printf("❌ Failed to email OTP for phone %s: %v", phone, err)
			return false
		}
		log.Printf("✅ OTP sent to email: %s", user.Email)
		return true

	case errors.Is(err, storage.ErrNotFound):
		// No account owns this phone yet, so there is no email to resolve.
		if s.sms == nil {
			log.Printf("❌ No user found with phone %s and no SMS channel configured", phone)
			return false
		}
		if err := s.sms.SendSMS(phone, body); err != nil {
			log.Printf("❌ Failed to send OTP SMS to %s: %v", phone, err)
			return false
		}
		log.Printf("✅ OTP sent via SMS to %s", phone)
		return true

	default:
		log.Printf("❌ Failed to resolve delivery address for phone %s: %v", phone, err)
		return false
	}
}

// Verify checks a submitted code against the active token for the pair.
// It returns false for a missing, expired or mismatched code without
// consuming anything; a correct submission consumes the token so it can
// produce exactly one true result ever. The error is non-nil only for
// storage failures.
func (s *OTPService) Verify(phone, code string, purpose models.OTPPurpose) (bool, error) {
	otp, err := s.store.GetActiveOTP(phone, purpose)
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("No OTP found for %s purpose %s", phone, purpose)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up OTP: %w", err)
	}

	if otp.Expired(time.Now()) {
		log.Printf("OTP expired for %s", phone)
		return false, nil
	}

	if otp.Code != code {
		log.Printf("OTP mismatch for %s", phone)
		return false, nil
	}

	won, err := s.store.ConsumeOTP(otp.ID)
	if err != nil {
		return false, fmt.Errorf("failed to consume OTP: %w", err)
	}
	if !won {
		// A concurrent verification beat us to it.
		log.Printf("OTP for %s already consumed", phone)
		return false, nil
	}

	log.Printf("✅ OTP verified successfully for %s", phone)
	return true, nil
}
