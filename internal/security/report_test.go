package security

import (
	"testing"
	"time"
)

func TestBuildReportDefaultsHaveNoWarnings(t *testing.T) {
	r := BuildReport(ReportInput{
		SigningAlgorithm: "HS256",
		SessionTTL:       time.Hour,
		Password:         PasswordReport{Memory: 64 * 1024, Time: 3, Parallelism: 2, SaltLength: 16, KeyLength: 32},
		UpgradeOnLogin:   true,
		LockoutThreshold: 4,
		ResetTokenTTL:    15 * time.Minute,
		ResetTokenBytes:  32,
		StoreTimeout:     5 * time.Second,
	})
	if len(r.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", r.Warnings)
	}
	if r.ResetTokenBits != 256 {
		t.Fatalf("ResetTokenBits = %d", r.ResetTokenBits)
	}
}

func TestBuildReportWarnsOnWeakSettings(t *testing.T) {
	r := BuildReport(ReportInput{
		SessionTTL:           48 * time.Hour,
		Password:             PasswordReport{Memory: 8 * 1024},
		LegacyBcryptAccepted: true,
		LockoutThreshold:     50,
		ResetTokenTTL:        2 * time.Hour,
	})
	if len(r.Warnings) != 6 {
		t.Fatalf("expected 6 warnings, got %v", r.Warnings)
	}
}
