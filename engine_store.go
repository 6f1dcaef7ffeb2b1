package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// timedStore bounds every backend call with Store.OperationTimeout and
// turns backend failures into ErrStorageUnavailable. The underlying error
// is logged here and never returned to callers.
type timedStore struct {
	e *Engine
}

func (s timedStore) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.e.config.Store.OperationTimeout)
}

func (s timedStore) fail(ctx context.Context, op string, err error) error {
	if err == nil || errors.Is(err, ErrAccountExists) {
		return err
	}
	s.e.metricInc(MetricStorageFailure)
	s.e.logger.Error(ctx, "store operation failed", "op", op, "err", err)
	return fmt.Errorf("%w: %s", ErrStorageUnavailable, op)
}

func (s timedStore) GetByUsername(ctx context.Context, username string) (Account, bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	acct, ok, err := s.e.store.GetByUsername(ctx, username)
	return acct, ok, s.fail(ctx, "get_by_username", err)
}

func (s timedStore) GetByID(ctx context.Context, id string) (Account, bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	acct, ok, err := s.e.store.GetByID(ctx, id)
	return acct, ok, s.fail(ctx, "get_by_id", err)
}

func (s timedStore) Insert(ctx context.Context, acct Account) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.fail(ctx, "insert", s.e.store.Insert(ctx, acct))
}

func (s timedStore) ActivateByVerificationToken(ctx context.Context, token string) (string, bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	id, ok, err := s.e.store.ActivateByVerificationToken(ctx, token)
	return id, ok, s.fail(ctx, "activate", err)
}

func (s timedStore) IncrementFailedAttempts(ctx context.Context, id string, threshold int) (AttemptState, bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	state, ok, err := s.e.store.IncrementFailedAttempts(ctx, id, threshold)
	return state, ok, s.fail(ctx, "increment_failed_attempts", err)
}

func (s timedStore) ResetFailedAttempts(ctx context.Context, id string) (bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	ok, err := s.e.store.ResetFailedAttempts(ctx, id)
	return ok, s.fail(ctx, "reset_failed_attempts", err)
}

func (s timedStore) ClearLockout(ctx context.Context, id string) (bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	ok, err := s.e.store.ClearLockout(ctx, id)
	return ok, s.fail(ctx, "clear_lockout", err)
}

func (s timedStore) UpdatePassword(ctx context.Context, id, hash string) (bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	ok, err := s.e.store.UpdatePassword(ctx, id, hash)
	return ok, s.fail(ctx, "update_password", err)
}

func (s timedStore) UpdateEmail(ctx context.Context, id, email string) (bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	ok, err := s.e.store.UpdateEmail(ctx, id, email)
	return ok, s.fail(ctx, "update_email", err)
}

func (s timedStore) SetRole(ctx context.Context, id string, role Role) (bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	ok, err := s.e.store.SetRole(ctx, id, role)
	return ok, s.fail(ctx, "set_role", err)
}

func (s timedStore) SaveResetToken(ctx context.Context, token ResetToken) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.fail(ctx, "save_reset_token", s.e.resetStore.SaveResetToken(ctx, token))
}

// redeemResetToken consumes the token and stores the new hash. A store that
// implements ResetRedeemer does both in one transaction; otherwise the
// consume is the single-use gate and the update follows it. When that update
// fails the consumed token is saved back with its original expiry, so the
// caller can retry with the same token.
func (s timedStore) redeemResetToken(ctx context.Context, token string, now time.Time, hash string) (string, bool, error) {
	opCtx, cancel := s.ctx(ctx)
	defer cancel()

	if s.e.redeemer != nil {
		id, ok, err := s.e.redeemer.RedeemResetToken(opCtx, token, now, hash)
		return id, ok, s.fail(opCtx, "redeem_reset_token", err)
	}

	rec, ok, err := s.e.resetStore.ConsumeResetToken(opCtx, token, now)
	if err != nil || !ok {
		return "", false, s.fail(opCtx, "consume_reset_token", err)
	}
	updated, err := s.e.store.UpdatePassword(opCtx, rec.AccountID, hash)
	if err != nil {
		s.restoreResetToken(ctx, rec)
		return "", false, s.fail(opCtx, "update_password", err)
	}
	if !updated {
		s.e.logger.Warn(opCtx, "reset token owner no longer exists", "account_id", rec.AccountID)
		return "", false, nil
	}
	return rec.AccountID, true, nil
}

// restoreResetToken runs on a fresh deadline: the operation's own may be the
// reason the update failed.
func (s timedStore) restoreResetToken(parent context.Context, rec ResetToken) {
	if !rec.Live(s.e.now()) {
		return
	}
	ctx, cancel := s.ctx(context.WithoutCancel(parent))
	defer cancel()

	if err := s.e.resetStore.SaveResetToken(ctx, rec); err != nil {
		s.e.metricInc(MetricStorageFailure)
		s.e.logger.Error(ctx, "reset token could not be restored", "account_id", rec.AccountID, "err", err)
	}
}

func (s timedStore) recordActivity(ctx context.Context, operation, recordID string) {
	if s.e.activityLog == nil {
		return
	}
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	err := s.e.activityLog.RecordActivity(ctx, Activity{
		Table:     "accounts",
		Operation: operation,
		RecordID:  recordID,
		IP:        clientIPFromContext(ctx),
		At:        s.e.now().UTC(),
	})
	if err != nil {
		s.e.metricInc(MetricStorageFailure)
		s.e.logger.Warn(ctx, "activity log write failed", "op", operation, "err", err)
	}
}
