package authcore

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/authcore/password"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Session.Secret = bytes.Repeat([]byte("s"), 32)
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.KeyLength = 16
	return cfg
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingMailer struct {
	mu           sync.Mutex
	verification map[string]string
	reset        map[string]string
	err          error
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{
		verification: make(map[string]string),
		reset:        make(map[string]string),
	}
}

func (m *recordingMailer) SendVerification(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verification[to] = token
	return m.err
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[to] = token
	return m.err
}

func (m *recordingMailer) resetTokenFor(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset[to]
}

type testEngine struct {
	*Engine
	store  *MemoryStore
	clock  *testClock
	mailer *recordingMailer
}

func newTestEngine(t *testing.T, mutate func(*Config)) *testEngine {
	t.Helper()

	cfg := testConfig()
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	store := NewMemoryStore()
	clock := newTestClock()
	store.now = clock.Now
	mailer := newRecordingMailer()

	engine, err := New().
		WithConfig(cfg).
		WithCredentialStore(store).
		WithMailer(mailer).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEngine{Engine: engine, store: store, clock: clock, mailer: mailer}
}

// activeAccount registers and verifies username, returning its id.
func (te *testEngine) activeAccount(t *testing.T, username, pw string) string {
	t.Helper()

	res, err := te.Register(context.Background(), username, pw, username+"@example.com")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	if err := te.VerifyEmail(context.Background(), res.VerificationToken); err != nil {
		t.Fatalf("verify %s: %v", username, err)
	}
	return res.AccountID
}

func (te *testEngine) account(t *testing.T, id string) Account {
	t.Helper()

	acct, ok, err := te.store.GetByID(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("get account %s: ok=%v err=%v", id, ok, err)
	}
	return acct
}

func bcryptFixture(pw string) (string, error) {
	b, err := password.NewBcrypt(4)
	if err != nil {
		return "", err
	}
	return b.Hash(pw)
}
