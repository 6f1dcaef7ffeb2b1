package authcore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process implementation of every store
// interface. It is meant for tests, examples and the load driver; each
// method holds the lock for its whole read-modify-write, which gives the
// same atomicity the SQL statements give.
type MemoryStore struct {
	mu sync.Mutex

	accounts     map[string]Account
	byUsername   map[string]string
	byEmail      map[string]string
	byVerify     map[string]string
	resetTokens  map[string]ResetToken
	resetByOwner map[string]string
	activity     []Activity

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[string]Account),
		byUsername:   make(map[string]string),
		byEmail:      make(map[string]string),
		byVerify:     make(map[string]string),
		resetTokens:  make(map[string]ResetToken),
		resetByOwner: make(map[string]string),
		now:          time.Now,
	}
}

func (s *MemoryStore) GetByUsername(_ context.Context, username string) (Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[username]
	if !ok {
		return Account{}, false, nil
	}
	return s.accounts[id], true, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	return acct, ok, nil
}

func (s *MemoryStore) Insert(_ context.Context, acct Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acct.ID]; ok {
		return ErrAccountExists
	}
	if _, ok := s.byUsername[acct.Username]; ok {
		return ErrAccountExists
	}
	if _, ok := s.byEmail[acct.Email]; ok {
		return ErrAccountExists
	}

	s.accounts[acct.ID] = acct
	s.byUsername[acct.Username] = acct.ID
	s.byEmail[acct.Email] = acct.ID
	if acct.VerificationToken != "" {
		s.byVerify[acct.VerificationToken] = acct.ID
	}
	return nil
}

func (s *MemoryStore) ActivateByVerificationToken(_ context.Context, token string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byVerify[token]
	if !ok {
		return "", false, nil
	}
	delete(s.byVerify, token)

	acct := s.accounts[id]
	acct.Active = true
	acct.VerificationToken = ""
	acct.LastUpdated = s.now().UTC()
	s.accounts[id] = acct
	return id, true, nil
}

func (s *MemoryStore) IncrementFailedAttempts(_ context.Context, id string, threshold int) (AttemptState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok || acct.Locked {
		return AttemptState{}, false, nil
	}

	acct.FailedAttempts++
	if acct.FailedAttempts >= threshold {
		acct.FailedAttempts = threshold
		acct.Locked = true
	}
	acct.LastUpdated = s.now().UTC()
	s.accounts[id] = acct
	return AttemptState{FailedAttempts: acct.FailedAttempts, Locked: acct.Locked}, true, nil
}

func (s *MemoryStore) ResetFailedAttempts(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok || acct.Locked {
		return false, nil
	}
	if acct.FailedAttempts != 0 {
		acct.FailedAttempts = 0
		s.accounts[id] = acct
	}
	return true, nil
}

func (s *MemoryStore) ClearLockout(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	acct.FailedAttempts = 0
	acct.Locked = false
	acct.LastUpdated = s.now().UTC()
	s.accounts[id] = acct
	return true, nil
}

func (s *MemoryStore) UpdatePassword(_ context.Context, id, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatePasswordLocked(id, hash), nil
}

func (s *MemoryStore) updatePasswordLocked(id, hash string) bool {
	acct, ok := s.accounts[id]
	if !ok {
		return false
	}
	acct.PasswordHash = hash
	acct.FailedAttempts = 0
	acct.Locked = false
	acct.LastUpdated = s.now().UTC()
	s.accounts[id] = acct
	return true
}

func (s *MemoryStore) UpdateEmail(_ context.Context, id, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	if owner, taken := s.byEmail[email]; taken && owner != id {
		return false, ErrAccountExists
	}

	delete(s.byEmail, acct.Email)
	acct.Email = email
	acct.LastUpdated = s.now().UTC()
	s.accounts[id] = acct
	s.byEmail[email] = id
	return true, nil
}

func (s *MemoryStore) SetRole(_ context.Context, id string, role Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	acct.Role = role
	acct.LastUpdated = s.now().UTC()
	s.accounts[id] = acct
	return true, nil
}

func (s *MemoryStore) SaveResetToken(_ context.Context, token ResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.resetByOwner[token.AccountID]; ok {
		delete(s.resetTokens, prev)
	}
	s.resetTokens[token.Token] = token
	s.resetByOwner[token.AccountID] = token.Token
	return nil
}

func (s *MemoryStore) ConsumeResetToken(_ context.Context, token string, now time.Time) (ResetToken, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumeLocked(token, now)
}

func (s *MemoryStore) consumeLocked(token string, now time.Time) (ResetToken, bool, error) {
	rec, ok := s.resetTokens[token]
	if !ok {
		return ResetToken{}, false, nil
	}
	delete(s.resetTokens, token)
	if s.resetByOwner[rec.AccountID] == token {
		delete(s.resetByOwner, rec.AccountID)
	}
	if !rec.Live(now) {
		return ResetToken{}, false, nil
	}
	return rec, true, nil
}

// RedeemResetToken consumes token and stores hash under one lock.
func (s *MemoryStore) RedeemResetToken(_ context.Context, token string, now time.Time, hash string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok, err := s.consumeLocked(token, now)
	if err != nil || !ok {
		return "", false, err
	}
	if !s.updatePasswordLocked(rec.AccountID, hash) {
		return "", false, nil
	}
	return rec.AccountID, true, nil
}

func (s *MemoryStore) RecordActivity(_ context.Context, activity Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activity = append(s.activity, activity)
	return nil
}

// Activity returns a copy of the recorded activity rows in insertion order.
func (s *MemoryStore) Activity() []Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Activity, len(s.activity))
	copy(out, s.activity)
	return out
}

var (
	_ CredentialStore = (*MemoryStore)(nil)
	_ ResetTokenStore = (*MemoryStore)(nil)
	_ ResetRedeemer   = (*MemoryStore)(nil)
	_ ActivityLog     = (*MemoryStore)(nil)
)
