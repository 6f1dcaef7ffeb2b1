package authcore

import "testing"

func TestEngineSecurityReport(t *testing.T) {
	te := newTestEngine(t, func(c *Config) {
		c.Password.AcceptLegacyBcrypt = true
	})

	r := te.SecurityReport()
	if r.SigningAlgorithm != "HS256" {
		t.Fatalf("unexpected algorithm %q", r.SigningAlgorithm)
	}
	if r.LockoutThreshold != 4 {
		t.Fatalf("expected threshold 4, got %d", r.LockoutThreshold)
	}
	if r.ResetTokenBits != 256 {
		t.Fatalf("expected 256 reset token bits, got %d", r.ResetTokenBits)
	}
	if !r.LegacyBcryptAccepted || !r.MetricsEnabled || r.AuditEnabled {
		t.Fatalf("unexpected flags %+v", r)
	}
	if len(r.Warnings) == 0 {
		t.Fatal("expected warnings for test argon parameters and legacy bcrypt")
	}
}
