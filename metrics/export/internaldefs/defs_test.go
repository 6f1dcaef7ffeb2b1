package internaldefs

import (
	"strings"
	"testing"

	"github.com/MrEthical07/authcore"
)

func TestCounterDefsCoverEveryCounter(t *testing.T) {
	seen := make(map[authcore.MetricID]bool, len(CounterDefs))
	names := make(map[string]bool, len(CounterDefs))
	for _, def := range CounterDefs {
		if seen[def.ID] {
			t.Fatalf("metric id %d defined twice", def.ID)
		}
		if names[def.Name] {
			t.Fatalf("metric name %s defined twice", def.Name)
		}
		if !strings.HasPrefix(def.Name, "authcore_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("unexpected counter name %s", def.Name)
		}
		seen[def.ID] = true
		names[def.Name] = true
	}

	// Every id except the histogram must be exported as a counter.
	if want := authcore.MetricCount - len(HistogramDefs); len(CounterDefs) != want {
		t.Fatalf("expected %d counter defs, got %d", want, len(CounterDefs))
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if len(HistogramBounds) != len(got) {
		t.Fatalf("expected %d bounds, got %d", len(got), len(HistogramBounds))
	}
}
