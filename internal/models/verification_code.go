package models

import "time"

// VerificationPurpose distinguishes what a pending code unlocks.
type VerificationPurpose string

const (
	VerificationPurposeRegistration  VerificationPurpose = "registration"
	VerificationPurposePasswordReset VerificationPurpose = "password_reset"
)

// VerificationCode is a durable, time-boxed email verification entry.
// One row per (email, purpose); re-requesting a code replaces the row.
// Keeping these in the store instead of a process-wide map bounds their
// growth and lets pending verifications survive restarts.
type VerificationCode struct {
	Base
	Email   string              `gorm:"not null;index;uniqueIndex:idx_verification_email_purpose" json:"email"`
	Purpose VerificationPurpose `gorm:"not null;uniqueIndex:idx_verification_email_purpose" json:"purpose"`
	Code    string              `gorm:"not null;size:6" json:"-"`
	// PasswordHash carries the staged bcrypt hash for pending
	// registrations; empty for password resets.
	PasswordHash string    `json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
}

// Expired reports whether the code is past its expiry at the given time.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
