package authcore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricSessionVerifyLatency, time.Millisecond)
	if m.Value(MetricLoginSuccess) != 0 || len(m.Snapshot().Counters) != 0 {
		t.Fatal("nil metrics must record nothing")
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricLoginFailure)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricLoginFailure); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}
	for _, d := range observations {
		m.Observe(MetricSessionVerifyLatency, d)
	}
	m.Observe(MetricLoginSuccess, time.Millisecond)

	buckets := m.Snapshot().Histograms[MetricSessionVerifyLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
	if _, ok := m.Snapshot().Histograms[MetricLoginSuccess]; ok {
		t.Fatal("only session verification carries a histogram")
	}
}

func TestEngineCountsOutcomes(t *testing.T) {
	te := newTestEngine(t, func(c *Config) {
		c.Metrics.EnableLatencyHistograms = true
	})
	ctx := context.Background()
	te.activeAccount(t, "alice", "Password1")

	login, err := te.Login(ctx, "alice", "Password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	_, _ = te.Login(ctx, "alice", "wrong")
	if _, err := te.Authenticate(login.SessionToken); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	snap := te.MetricsSnapshot()
	checks := map[MetricID]uint64{
		MetricAccountCreated:           1,
		MetricEmailVerificationSuccess: 1,
		MetricLoginSuccess:             1,
		MetricLoginFailure:             1,
		MetricSessionVerified:          1,
	}
	for id, want := range checks {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("metric %d: expected %d, got %d", id, want, got)
		}
	}

	var observed uint64
	for _, v := range snap.Histograms[MetricSessionVerifyLatency] {
		observed += v
	}
	if observed != 1 {
		t.Fatalf("expected one latency observation, got %d", observed)
	}
}
