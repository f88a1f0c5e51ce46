package config

import (
	"os"
	"strconv"
)

// OTPConfig carries the one-time code settings. It is injected into the OTP
// service at construction so there is no ambient global workflow state.
type OTPConfig struct {
	Digits        int // length of generated codes
	ExpiryMinutes int // validity window for a freshly issued code
}

// Config holds all application settings resolved from the environment.
type Config struct {
	Port               string
	JWTSecret          string
	AllowedEmailDomain string // college email domain enforced at registration
	OTP                OTPConfig
}

// Load reads configuration from environment variables with sane defaults.
// godotenv is expected to have populated the environment already (see main.go).
func Load() *Config {
	return &Config{
		Port:               envString("PORT", "8080"),
		JWTSecret:          envString("JWT_SECRET", "trackhub-dev-secret"),
		AllowedEmailDomain: envString("ALLOWED_EMAIL_DOMAIN", "srkrec.ac.in"),
		OTP: OTPConfig{
			Digits:        envInt("OTP_DIGITS", 6),
			ExpiryMinutes: envInt("OTP_EXPIRY_MINUTES", 5),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
