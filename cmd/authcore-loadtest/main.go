// Command authcore-loadtest drives concurrent logins and reset redemptions
// against one engine and checks the lockout and single-use guarantees.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/store/postgres"
)

type options struct {
	concurrency int
	rounds      int
	maxFail     int
	redisAddr   string
	dsn         string
	memoryKB    uint
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "authcore-loadtest: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var opts options
	fs := flag.NewFlagSet("authcore-loadtest", flag.ContinueOnError)
	fs.IntVar(&opts.concurrency, "concurrency", 64, "concurrent workers per round")
	fs.IntVar(&opts.rounds, "rounds", 20, "rounds per phase")
	fs.IntVar(&opts.maxFail, "max-fail", 4, "lockout threshold")
	fs.StringVar(&opts.redisAddr, "redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	fs.StringVar(&opts.dsn, "dsn", "", "PostgreSQL DSN; if empty, the in-memory store is used")
	fs.UintVar(&opts.memoryKB, "argon-memory", 8*1024, "Argon2 memory in KiB")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.concurrency <= 0 || opts.rounds <= 0 || opts.maxFail <= 0 {
		return errors.New("concurrency, rounds, and max-fail must be > 0")
	}

	client, cleanup, err := redisClient(opts.redisAddr, out)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := authcore.DefaultConfig()
	cfg.Session.Secret = []byte(strings.Repeat("l", 32))
	cfg.Password.Memory = uint32(opts.memoryKB)
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Lockout.MaxFailedAttempts = opts.maxFail
	cfg.Metrics.Enabled = true

	builder := authcore.New().
		WithConfig(cfg).
		WithResetTokenStore(authcore.NewRedisResetTokenStore(client, "loadtest:reset:"))

	if opts.dsn != "" {
		store, err := postgres.Open(ctx, opts.dsn)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		builder.WithCredentialStore(store)
		fmt.Fprintln(out, "using postgres credential store")
	} else {
		builder.WithCredentialStore(authcore.NewMemoryStore())
		fmt.Fprintln(out, "using in-memory credential store")
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	lockout, err := runLockoutPhase(ctx, engine, opts)
	if err != nil {
		return err
	}
	redeem, err := runRedeemPhase(ctx, engine, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "lockout", lockout)
	printStats(out, "redeem", redeem)
	return nil
}

func redisClient(addr string, out io.Writer) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Fprintf(out, "using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Fprintf(out, "using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

// signup registers and verifies a fresh account for one round.
func signup(ctx context.Context, engine *authcore.Engine, username, pw string) error {
	reg, err := engine.Register(ctx, username, pw, username+"@loadtest.invalid")
	if err != nil {
		return fmt.Errorf("register %s: %w", username, err)
	}
	return engine.VerifyEmail(ctx, reg.VerificationToken)
}

// runLockoutPhase fires concurrency wrong-password logins at one account
// per round. Exactly maxFail of them may count as failed attempts; every
// other one must see the lock.
func runLockoutPhase(ctx context.Context, engine *authcore.Engine, opts options) (phaseStats, error) {
	var samples []time.Duration
	start := time.Now()

	for round := 0; round < opts.rounds; round++ {
		username := fmt.Sprintf("lock-%d-%d", time.Now().UnixNano(), round)
		if err := signup(ctx, engine, username, "Password1"); err != nil {
			return phaseStats{}, err
		}

		results := hammer(opts.concurrency, func() error {
			_, err := engine.Login(ctx, username, "Wrong-password-1")
			return err
		})

		var counted, locked, lockedNow int
		for _, r := range results {
			samples = append(samples, r.latency)
			var attemptErr *authcore.AttemptError
			switch {
			case errors.As(r.err, &attemptErr):
				counted++
				if attemptErr.Locked {
					lockedNow++
				}
			case errors.Is(r.err, authcore.ErrAccountLocked):
				locked++
			default:
				return phaseStats{}, fmt.Errorf("round %d: unexpected login result: %v", round, r.err)
			}
		}

		want := min(opts.maxFail, opts.concurrency)
		if counted != want {
			return phaseStats{}, fmt.Errorf("round %d: %d failures counted, want %d", round, counted, want)
		}
		if opts.concurrency >= opts.maxFail && lockedNow != 1 {
			return phaseStats{}, fmt.Errorf("round %d: %d logins reported the lock, want 1", round, lockedNow)
		}
		if counted+locked != opts.concurrency {
			return phaseStats{}, fmt.Errorf("round %d: lost %d results", round, opts.concurrency-counted-locked)
		}
	}

	return computeStats(time.Since(start), samples, 0), nil
}

// runRedeemPhase redeems one reset token from every worker at once.
// Exactly one redemption may succeed.
func runRedeemPhase(ctx context.Context, engine *authcore.Engine, opts options) (phaseStats, error) {
	var samples []time.Duration
	start := time.Now()

	for round := 0; round < opts.rounds; round++ {
		username := fmt.Sprintf("reset-%d-%d", time.Now().UnixNano(), round)
		if err := signup(ctx, engine, username, "Password1"); err != nil {
			return phaseStats{}, err
		}
		forgot, err := engine.ForgotPassword(ctx, username)
		if err != nil {
			return phaseStats{}, fmt.Errorf("forgot %s: %w", username, err)
		}

		results := hammer(opts.concurrency, func() error {
			return engine.ResetPassword(ctx, forgot.Token, "Redeemed99")
		})

		var wins int
		for _, r := range results {
			samples = append(samples, r.latency)
			switch {
			case r.err == nil:
				wins++
			case errors.Is(r.err, authcore.ErrInvalidToken):
			default:
				return phaseStats{}, fmt.Errorf("round %d: unexpected reset result: %v", round, r.err)
			}
		}
		if wins != 1 {
			return phaseStats{}, fmt.Errorf("round %d: %d redemptions succeeded, want 1", round, wins)
		}
	}

	return computeStats(time.Since(start), samples, 0), nil
}

type result struct {
	err     error
	latency time.Duration
}

// hammer releases n goroutines at once and collects their results.
func hammer(n int, fn func() error) []result {
	var (
		wg      sync.WaitGroup
		release = make(chan struct{})
		out     = make([]result, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-release
			t0 := time.Now()
			err := fn()
			out[i] = result{err: err, latency: time.Since(t0)}
		}(i)
	}
	close(release)
	wg.Wait()
	return out
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(w io.Writer, name string, s phaseStats) {
	fmt.Fprintf(w, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
