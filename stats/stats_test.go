package stats

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents(t *testing.T) {
	e := New()
	assert.Empty(t, e.Snapshot())
	e.Register("b event")
	e.Register("b event")
	e.Add("A event", 1234567)
	e.Register("c event")
	assert.Equal(t, 2, e.Count("b event"))
	assert.Equal(t, 0, e.Count("missing"))
	assert.Equal(t, map[string]int{"b event": 2, "A event": 1234567, "c event": 1}, e.Snapshot())

	var buf bytes.Buffer
	e.Report(&buf, "Statistics", "# ")
	want := "# Statistics\n" +
		"# ==========\n" +
		"# A event     x1,234,567\n" +
		"# b event     x2\n" +
		"# c event     x1\n" +
		"# \n"
	assert.Equal(t, want, buf.String())
}

func TestReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	New().Report(&buf, "Run", "")
	assert.Equal(t, "Run\n===\nNo events to report\n\n", buf.String())
}

func TestConcurrentRegister(t *testing.T) {
	e := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				e.Register("tick")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, e.Count("tick"))
}

func TestPrettyNum(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{-12345, "-12,345"},
		{100000, "100,000"},
	}
	for _, test := range tests {
		if got := prettyNum(test.n); got != test.want {
			t.Errorf("invalid rendering of %d: expected %q, got %q", test.n, test.want, got)
		}
	}
}
