package authcore

import (
	"github.com/MrEthical07/authcore/internal/security"
)

type (
	SecurityReport       = security.Report
	PasswordConfigReport = security.PasswordReport
)

// SecurityReport summarises the security-relevant settings of the engine
// and lists any that are weaker than recommended.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return security.BuildReport(security.ReportInput{
		SigningAlgorithm: "HS256",
		SessionTTL:       e.config.Session.TTL,
		PreviousSecrets:  len(e.config.Session.PreviousSecrets),
		Password: security.PasswordReport{
			Memory:      e.config.Password.Memory,
			Time:        e.config.Password.Time,
			Parallelism: e.config.Password.Parallelism,
			SaltLength:  e.config.Password.SaltLength,
			KeyLength:   e.config.Password.KeyLength,
		},
		LegacyBcryptAccepted: e.config.Password.AcceptLegacyBcrypt,
		UpgradeOnLogin:       e.config.Password.UpgradeOnLogin,
		LockoutThreshold:     e.lockout.Threshold(),
		ResetTokenTTL:        e.config.PasswordReset.TokenTTL,
		ResetTokenBytes:      e.config.PasswordReset.TokenBytes,
		VerificationBytes:    e.config.EmailVerification.TokenBytes,
		PolicyMinLength:      e.config.PasswordPolicy.MinLength,
		PolicyRequiresUpper:  e.config.PasswordPolicy.RequireUpper,
		PolicyRequiresDigit:  e.config.PasswordPolicy.RequireDigit,
		StoreTimeout:         e.config.Store.OperationTimeout,
		AuditEnabled:         e.config.Audit.Enabled,
		MetricsEnabled:       e.config.Metrics.Enabled,
	})
}
