package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSmallLoadAgainstMiniredis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	var out bytes.Buffer
	err := run(context.Background(), []string{"-concurrency", "6", "-rounds", "2", "-max-fail", "3"}, &out)
	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), "using miniredis")
	assert.Contains(t, out.String(), "lockout: ops=12")
	assert.Contains(t, out.String(), "redeem: ops=12")
}

func TestRunRejectsBadFlags(t *testing.T) {
	err := run(context.Background(), []string{"-rounds", "0"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(1), percentile(samples, 0))
	assert.Equal(t, time.Duration(5), percentile(samples, 50))
	assert.Equal(t, time.Duration(10), percentile(samples, 100))
}
