package internaldefs

import (
	"github.com/MrEthical07/authcore"
)

type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in export order.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful logins."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Logins rejected for a wrong password or unknown user."},
	{ID: authcore.MetricLoginLocked, Name: "authcore_login_locked_total", Help: "Logins rejected because the account is locked."},
	{ID: authcore.MetricLoginInactive, Name: "authcore_login_inactive_total", Help: "Logins rejected because the email is not verified."},
	{ID: authcore.MetricAccountLocked, Name: "authcore_account_locked_total", Help: "Accounts that reached the failed-attempt threshold."},
	{ID: authcore.MetricPasswordUpgraded, Name: "authcore_password_upgraded_total", Help: "Password hashes rehashed with current parameters on login."},
	{ID: authcore.MetricSessionVerified, Name: "authcore_session_verified_total", Help: "Session tokens that verified."},
	{ID: authcore.MetricSessionRejected, Name: "authcore_session_rejected_total", Help: "Session tokens that were missing, malformed or badly signed."},
	{ID: authcore.MetricSessionExpired, Name: "authcore_session_expired_total", Help: "Session tokens presented after expiry."},
	{ID: authcore.MetricForbidden, Name: "authcore_forbidden_total", Help: "Requests denied by a role check."},
	{ID: authcore.MetricAccountCreated, Name: "authcore_account_created_total", Help: "Registered accounts."},
	{ID: authcore.MetricAccountDuplicate, Name: "authcore_account_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: authcore.MetricEmailVerificationSuccess, Name: "authcore_email_verification_success_total", Help: "Successful email verifications."},
	{ID: authcore.MetricEmailVerificationFailure, Name: "authcore_email_verification_failure_total", Help: "Failed email verifications."},
	{ID: authcore.MetricEmailUpdated, Name: "authcore_email_updated_total", Help: "Email address changes."},
	{ID: authcore.MetricPasswordChangeSuccess, Name: "authcore_password_change_success_total", Help: "Successful password changes."},
	{ID: authcore.MetricPasswordChangeInvalidOld, Name: "authcore_password_change_invalid_old_total", Help: "Password changes with a wrong current password."},
	{ID: authcore.MetricPasswordResetRequest, Name: "authcore_password_reset_request_total", Help: "Issued reset tokens."},
	{ID: authcore.MetricPasswordResetConfirmSuccess, Name: "authcore_password_reset_confirm_success_total", Help: "Redeemed reset tokens."},
	{ID: authcore.MetricPasswordResetConfirmFailure, Name: "authcore_password_reset_confirm_failure_total", Help: "Reset attempts with an unknown, used or expired token."},
	{ID: authcore.MetricRoleChanged, Name: "authcore_role_changed_total", Help: "Role changes made by an admin."},
	{ID: authcore.MetricAccountUnlocked, Name: "authcore_account_unlocked_total", Help: "Accounts unlocked by an admin."},
	{ID: authcore.MetricMailFailure, Name: "authcore_mail_failure_total", Help: "Mail sends that failed."},
	{ID: authcore.MetricStorageFailure, Name: "authcore_storage_failure_total", Help: "Store calls that failed or timed out."},
}

var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricSessionVerifyLatency, Name: "authcore_session_verify_latency_seconds", Help: "Session token verification latency."},
}

// HistogramBounds are the bucket upper bounds in seconds, matching the
// engine's millisecond buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets pads or truncates raw to the eight engine buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
