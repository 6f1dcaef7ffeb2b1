package prometheus

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/metrics/export/internaldefs"
)

const contentType = "text/plain; version=0.0.4; charset=utf-8"

// Source is what the exporter reads on each scrape. *authcore.Engine
// satisfies it.
type Source interface {
	MetricsSnapshot() authcore.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter renders engine metrics in the Prometheus text exposition format.
type Exporter struct {
	source Source
}

func New(engine *authcore.Engine) *Exporter {
	if engine == nil {
		return &Exporter{}
	}
	return &Exporter{source: engine}
}

func NewFromSource(source Source) *Exporter {
	return &Exporter{source: source}
}

// Handler serves the current snapshot on every request.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_ = e.Encode(w)
	})
}

// Render returns the exposition as a string, or "" when metrics are
// disabled and no audit events were dropped.
func (e *Exporter) Render() string {
	var b strings.Builder
	_ = e.Encode(&b)
	return b.String()
}

// Encode streams the exposition to w.
func (e *Exporter) Encode(w io.Writer) error {
	if e == nil || e.source == nil {
		return nil
	}
	snap := e.source.MetricsSnapshot()
	dropped := e.source.AuditDropped()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 && dropped == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)
	for _, def := range internaldefs.CounterDefs {
		counter(bw, def.Name, def.Help, snap.Counters[def.ID])
	}
	for _, def := range internaldefs.HistogramDefs {
		histogram(bw, def.Name, def.Help,
			internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[def.ID])))
	}
	counter(bw, "authcore_audit_dropped_total", "Audit events dropped because the dispatcher buffer was full.", dropped)
	return bw.Flush()
}

func header(w *bufio.Writer, name, help, kind string) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, escapeHelp(help), name, kind)
}

func counter(w *bufio.Writer, name, help string, v uint64) {
	header(w, name, help, "counter")
	fmt.Fprintf(w, "%s %d\n", name, v)
}

// histogram writes cumulative buckets and the count. The engine keeps no
// running sum, so _sum is always 0.
func histogram(w *bufio.Writer, name, help string, cumulative [8]uint64) {
	header(w, name, help, "histogram")
	for i, le := range internaldefs.HistogramBounds {
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", name, le, cumulative[i])
	}
	fmt.Fprintf(w, "%s_count %d\n%s_sum 0\n", name, cumulative[len(cumulative)-1], name)
}

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

func escapeHelp(help string) string {
	return helpEscaper.Replace(help)
}
