package security

import "time"

type PasswordReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Report is a read-only posture snapshot of a built engine.
type Report struct {
	SigningAlgorithm     string
	SessionTTL           time.Duration
	PreviousSecrets      int
	Argon2               PasswordReport
	LegacyBcryptAccepted bool
	UpgradeOnLogin       bool
	LockoutThreshold     int
	ResetTokenTTL        time.Duration
	ResetTokenBits       int
	VerificationBits     int
	PolicyMinLength      int
	PolicyRequiresUpper  bool
	PolicyRequiresDigit  bool
	StoreTimeout         time.Duration
	AuditEnabled         bool
	MetricsEnabled       bool
	Warnings             []string
}

type ReportInput struct {
	SigningAlgorithm     string
	SessionTTL           time.Duration
	PreviousSecrets      int
	Password             PasswordReport
	LegacyBcryptAccepted bool
	UpgradeOnLogin       bool
	LockoutThreshold     int
	ResetTokenTTL        time.Duration
	ResetTokenBytes      int
	VerificationBytes    int
	PolicyMinLength      int
	PolicyRequiresUpper  bool
	PolicyRequiresDigit  bool
	StoreTimeout         time.Duration
	AuditEnabled         bool
	MetricsEnabled       bool
}

// BuildReport copies the input and derives warnings for settings that are
// legal but weaker than recommended.
func BuildReport(input ReportInput) Report {
	r := Report{
		SigningAlgorithm:     input.SigningAlgorithm,
		SessionTTL:           input.SessionTTL,
		PreviousSecrets:      input.PreviousSecrets,
		Argon2:               input.Password,
		LegacyBcryptAccepted: input.LegacyBcryptAccepted,
		UpgradeOnLogin:       input.UpgradeOnLogin,
		LockoutThreshold:     input.LockoutThreshold,
		ResetTokenTTL:        input.ResetTokenTTL,
		ResetTokenBits:       input.ResetTokenBytes * 8,
		VerificationBits:     input.VerificationBytes * 8,
		PolicyMinLength:      input.PolicyMinLength,
		PolicyRequiresUpper:  input.PolicyRequiresUpper,
		PolicyRequiresDigit:  input.PolicyRequiresDigit,
		StoreTimeout:         input.StoreTimeout,
		AuditEnabled:         input.AuditEnabled,
		MetricsEnabled:       input.MetricsEnabled,
	}

	if input.Password.Memory < 64*1024 {
		r.Warnings = append(r.Warnings, "argon2 memory below 64 MiB")
	}
	if input.LegacyBcryptAccepted && !input.UpgradeOnLogin {
		r.Warnings = append(r.Warnings, "legacy bcrypt hashes accepted but never upgraded")
	}
	if input.SessionTTL > 24*time.Hour {
		r.Warnings = append(r.Warnings, "session lifetime exceeds 24h")
	}
	if input.ResetTokenTTL > time.Hour {
		r.Warnings = append(r.Warnings, "reset token lifetime exceeds 1h")
	}
	if input.LockoutThreshold > 10 {
		r.Warnings = append(r.Warnings, "lockout threshold above 10 attempts")
	}
	if input.StoreTimeout <= 0 {
		r.Warnings = append(r.Warnings, "store calls have no timeout")
	}

	return r
}
