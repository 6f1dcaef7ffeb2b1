package model

import "time"

// Role is the privilege level stored on an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the durable credential record.
//
// Locked implies FailedAttempts has reached the configured threshold.
type Account struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      string
	Role              Role
	FailedAttempts    int
	Locked            bool
	Active            bool
	VerificationToken string
	CreatedAt         time.Time
	LastUpdated       time.Time
}

// ResetToken is a single-use password recovery credential.
type ResetToken struct {
	Token     string
	AccountID string
	ExpiresAt time.Time
}

// Live reports whether the token can still be redeemed at now.
func (t ResetToken) Live(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

// AttemptState is the lockout counter after a conditional update.
type AttemptState struct {
	FailedAttempts int
	Locked         bool
}

// Activity is one row of the persistent activity log.
type Activity struct {
	Table     string
	Operation string
	RecordID  string
	IP        string
	At        time.Time
}

// Principal is the identity carried by a verified session token.
type Principal struct {
	AccountID string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
