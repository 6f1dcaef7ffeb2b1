package flows

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/authcore/internal/limiters"
	"github.com/MrEthical07/authcore/internal/model"
)

// fakeStore is a minimal in-memory account table for flow tests. Hashes are
// "h:" + plaintext so no real hashing runs.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
	tokens   map[string]model.ResetToken
	activity []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: map[string]*model.Account{}, tokens: map[string]model.ResetToken{}}
}

func (s *fakeStore) add(a model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := a
	s.accounts[a.ID] = &cp
}

func (s *fakeStore) get(id string) model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.accounts[id]
}

func (s *fakeStore) GetByUsername(_ context.Context, username string) (model.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username == username {
			return *a, true, nil
		}
	}
	return model.Account{}, false, nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (model.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.Account{}, false, nil
	}
	return *a, true, nil
}

func (s *fakeStore) Insert(_ context.Context, a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.accounts {
		if cur.Username == a.Username || cur.Email == a.Email {
			return model.ErrAccountExists
		}
	}
	cp := a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *fakeStore) IncrementFailedAttempts(_ context.Context, id string, threshold int) (model.AttemptState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.Locked {
		return model.AttemptState{}, false, nil
	}
	a.FailedAttempts++
	if a.FailedAttempts >= threshold {
		a.FailedAttempts = threshold
		a.Locked = true
	}
	return model.AttemptState{FailedAttempts: a.FailedAttempts, Locked: a.Locked}, true, nil
}

func (s *fakeStore) ResetFailedAttempts(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.Locked {
		return false, nil
	}
	a.FailedAttempts = 0
	return true, nil
}

func (s *fakeStore) ClearLockout(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	a.FailedAttempts, a.Locked = 0, false
	return true, nil
}

func (s *fakeStore) UpdatePassword(_ context.Context, id, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	a.PasswordHash = hash
	a.FailedAttempts, a.Locked = 0, false
	return true, nil
}

func (s *fakeStore) SaveResetToken(_ context.Context, t model.ResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, cur := range s.tokens {
		if cur.AccountID == t.AccountID {
			delete(s.tokens, k)
		}
	}
	s.tokens[t.Token] = t
	return nil
}

func (s *fakeStore) Redeem(_ context.Context, token string, now time.Time, hash string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok {
		return "", false, nil
	}
	delete(s.tokens, token)
	if !t.Live(now) {
		return "", false, nil
	}
	a := s.accounts[t.AccountID]
	a.PasswordHash = hash
	a.FailedAttempts, a.Locked = 0, false
	return t.AccountID, true, nil
}

func (s *fakeStore) recordActivity(_ context.Context, op, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = append(s.activity, op+":"+id)
}

func fakeHash(pw string) (string, error) { return "h:" + pw, nil }

func fakeVerify(pw, hash string) (bool, error) { return hash == "h:"+pw, nil }

func fakePolicy(pw string) error {
	if len(pw) < 8 || strings.ToLower(pw) == pw || !strings.ContainsAny(pw, "0123456789") {
		return errWeak
	}
	return nil
}

var errWeak = &model.ValidationError{Field: "password", Reason: "too weak"}

func counter() (func(int), map[int]int) {
	var mu sync.Mutex
	counts := map[int]int{}
	return func(id int) {
		mu.Lock()
		counts[id]++
		mu.Unlock()
	}, counts
}

func loginDeps(store *fakeStore, threshold int) LoginDeps {
	tracker := limiters.NewLockoutTracker(store, threshold)
	return LoginDeps{
		Hooks:              Hooks{RecordActivity: store.recordActivity},
		GetByUsername:      store.GetByUsername,
		VerifyPassword:     fakeVerify,
		HashPassword:       fakeHash,
		UpdatePasswordHash: store.UpdatePassword,
		RecordFailure:      tracker.RecordFailure,
		RecordSuccess:      tracker.RecordSuccess,
		IssueSession: func(id, username string) (string, time.Time, error) {
			return "session-" + id, time.Unix(3600, 0), nil
		},
		Metrics: LoginMetrics{LoginSuccess: 1, LoginFailure: 2, LoginLocked: 3, LoginInactive: 4, AccountLocked: 5, PasswordUpgraded: 6},
	}
}
