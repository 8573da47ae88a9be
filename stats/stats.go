// Package stats counts named events during a run and reports them.
//
// Counts are kept in a prometheus counter vector labelled by event name,
// on a registry private to each Events value, so that they can be exported
// along with the other metrics of a process if needed.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const metricName = "brentup_events_total"

// Events counts occurrences of events denoted by a message string.
// It is safe for concurrent use.
type Events struct {
	reg     *prometheus.Registry
	counter *prometheus.CounterVec
}

// New returns an Events without any event registered.
func New() *Events {
	e := &Events{
		reg: prometheus.NewRegistry(),
		counter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricName,
			Help: "Number of occurrences of each event.",
		}, []string{"event"}),
	}
	e.reg.MustRegister(e.counter)
	return e
}

// Register counts one occurrence of event.
func (e *Events) Register(event string) {
	e.counter.WithLabelValues(event).Inc()
}

// Add counts n occurrences of event.
func (e *Events) Add(event string, n int) {
	e.counter.WithLabelValues(event).Add(float64(n))
}

// Registry returns the prometheus registry holding the counters.
func (e *Events) Registry() *prometheus.Registry {
	return e.reg
}

// Snapshot returns the current count of every registered event.
func (e *Events) Snapshot() map[string]int {
	res := make(map[string]int)
	families, err := e.reg.Gather()
	if err != nil {
		// Only a single, consistently labelled collector is registered.
		panic(err)
	}
	for _, mf := range families {
		if mf.GetName() != metricName {
			continue
		}
		for _, m := range mf.GetMetric() {
			res[eventLabel(m)] = int(m.GetCounter().GetValue())
		}
	}
	return res
}

func eventLabel(m *dto.Metric) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == "event" {
			return lp.GetValue()
		}
	}
	return ""
}

// Count returns the number of occurrences of event.
func (e *Events) Count(event string) int {
	return e.Snapshot()[event]
}

// Report writes every event with its count to w, sorted case-insensitively
// by name. Every line starts with prefix.
func (e *Events) Report(w io.Writer, purpose, prefix string) {
	fmt.Fprintf(w, "%s%s\n%s%s\n", prefix, purpose, prefix, strings.Repeat("=", len(purpose)))
	snap := e.Snapshot()
	if len(snap) == 0 {
		fmt.Fprintf(w, "%sNo events to report\n%s\n", prefix, prefix)
		return
	}
	keys := make([]string, 0, len(snap))
	width := 0
	for k := range snap {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := strings.ToLower(keys[i]), strings.ToLower(keys[j])
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		fmt.Fprintf(w, "%s%-*s x%s\n", prefix, width+4, k, prettyNum(snap[k]))
	}
	fmt.Fprintln(w, prefix)
}

// prettyNum renders n with thousands separators.
func prettyNum(n int) string {
	s := fmt.Sprint(n)
	if n < 0 {
		return "-" + prettyNum(-n)
	}
	var sb strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
