package limiters

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/authcore/internal/model"
)

// DefaultMaxFailedAttempts is the lock threshold when none is configured.
const DefaultMaxFailedAttempts = 4

var (
	// ErrLockoutUnavailable indicates the attempt counter could not be read or written.
	ErrLockoutUnavailable = errors.New("lockout backend unavailable")
	// ErrAlreadyLocked is returned when the conditional update matched no
	// unlocked row, meaning another request locked the account first.
	ErrAlreadyLocked = errors.New("account already locked")
)

// AttemptStore is the slice of the credential store the tracker needs. Each
// method must be a single atomic conditional update; ok reports whether an
// unlocked row for id was matched.
type AttemptStore interface {
	IncrementFailedAttempts(ctx context.Context, id string, threshold int) (model.AttemptState, bool, error)
	ResetFailedAttempts(ctx context.Context, id string) (bool, error)
	ClearLockout(ctx context.Context, id string) (bool, error)
}

// Outcome is the result of one failed attempt.
type Outcome struct {
	Attempts  int
	Remaining int
	Locked    bool
}

// LockoutTracker drives the Active/Locked state machine of an account.
// It holds no state of its own; the counter lives in the store.
type LockoutTracker struct {
	store     AttemptStore
	threshold int
}

// NewLockoutTracker creates a tracker. A threshold <= 0 uses the default.
func NewLockoutTracker(store AttemptStore, threshold int) *LockoutTracker {
	if threshold <= 0 {
		threshold = DefaultMaxFailedAttempts
	}
	return &LockoutTracker{store: store, threshold: threshold}
}

// Threshold returns the number of consecutive failures that locks an account.
func (l *LockoutTracker) Threshold() int {
	return l.threshold
}

// RecordFailure applies the failing transition.
func (l *LockoutTracker) RecordFailure(ctx context.Context, accountID string) (Outcome, error) {
	state, ok, err := l.store.IncrementFailedAttempts(ctx, accountID, l.threshold)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	if !ok {
		return Outcome{}, ErrAlreadyLocked
	}

	remaining := l.threshold - state.FailedAttempts
	if remaining < 0 || state.Locked {
		remaining = 0
	}
	return Outcome{
		Attempts:  state.FailedAttempts,
		Remaining: remaining,
		Locked:    state.Locked,
	}, nil
}

// RecordSuccess zeroes the counter of an unlocked account. A lock that
// landed between the password check and this call wins.
func (l *LockoutTracker) RecordSuccess(ctx context.Context, accountID string) error {
	ok, err := l.store.ResetFailedAttempts(ctx, accountID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	if !ok {
		return ErrAlreadyLocked
	}
	return nil
}

// Unlock clears both the lock and the counter. It reports false when the
// account does not exist.
func (l *LockoutTracker) Unlock(ctx context.Context, accountID string) (bool, error) {
	ok, err := l.store.ClearLockout(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return ok, nil
}
