package services

// Notifier is the abstract delivery capability used for OTP codes and
// post-owner notifications. Implementations report failure but do not retry;
// everything in this core treats delivery as best-effort.
type Notifier interface {
	Notify(to, subject, body string) error
}

// SMSSender delivers a short text message to a phone number. Used as the
// fallback OTP channel when the target phone has no registered account email.
type SMSSender interface {
	SendSMS(to, body string) error
}
