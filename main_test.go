package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a1880/matrix-multiplication/brent"
	"github.com/a1880/matrix-multiplication/config"
	"github.com/a1880/matrix-multiplication/direct"
	"github.com/a1880/matrix-multiplication/scheme"
	"github.com/a1880/matrix-multiplication/stats"
)

func execute(t *testing.T, args ...string) (*app, error) {
	t.Helper()
	a := &app{events: stats.New()}
	cmd := a.root()
	cmd.SetArgs(append(args, "--log-level", "error"))
	return a, cmd.ExecuteContext(context.Background())
}

func loadLifted(t *testing.T, path string) *scheme.Scheme {
	t.Helper()
	s, err := scheme.LoadBini(path)
	require.NoError(t, err)
	require.NoError(t, brent.Validate(s).Err())
	return s
}

func TestLiftCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "strassen.bini")
	a, err := execute(t, "lift", "-o", out, "testdata/strassen_mod2.bini")
	require.NoError(t, err)
	s := loadLifted(t, out)
	assert.Equal(t, 8, s.Negatives())
	assert.Equal(t, 1, a.events.Count("lift succeeded in tier 1"))
}

func TestSolveCommand(t *testing.T) {
	for _, backend := range direct.Backends() {
		out := filepath.Join(t.TempDir(), backend+".bini")
		a, err := execute(t, "solve", "--backend", backend, "-o", out, "testdata/strassen_mod2.bini")
		require.NoError(t, err, backend)
		loadLifted(t, out)
		assert.Equal(t, 1, a.events.Count(backend+" lifting found"), backend)
		assert.Equal(t, backend, a.strategy())
	}
}

func TestArchiveCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "one.bini")
	args := []string{"lift", "--archive", filepath.Join(dir, "archive"), "-o", out, "testdata/one.bini"}

	a, err := execute(t, args...)
	require.NoError(t, err)
	assert.Zero(t, a.events.Count("archive hits"))
	first := loadLifted(t, out)

	a, err = execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, 1, a.events.Count("archive hits"))
	assert.True(t, loadLifted(t, out).Equal(first))

	a, err = execute(t, append(args, "--force")...)
	require.NoError(t, err)
	assert.Zero(t, a.events.Count("archive hits"))

	// Settings changing the result are part of the key.
	for _, extra := range [][]string{{"--beautify"}, {"--tiers", "1,2"}} {
		a, err = execute(t, append(args, extra...)...)
		require.NoError(t, err, extra)
		assert.Zero(t, a.events.Count("archive hits"), extra)
		a, err = execute(t, append(args, extra...)...)
		require.NoError(t, err, extra)
		assert.Equal(t, 1, a.events.Count("archive hits"), extra)
	}
}

func TestTimeout(t *testing.T) {
	for _, cmd := range []string{"lift", "solve"} {
		_, err := execute(t, cmd, "--timeout", "1ns", "-o", filepath.Join(t.TempDir(), "x.bini"), "testdata/strassen_mod2.bini")
		require.Error(t, err, cmd)
		assert.True(t, errors.Is(err, context.DeadlineExceeded), "unexpected error %v", err)
		assert.Contains(t, diagnostic(err), "raise it with --timeout")
	}

	a, err := execute(t, "lift", "--timeout", "1m", "-o", filepath.Join(t.TempDir(), "x.bini"), "testdata/one.bini")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, a.cfg.Timeout)

	_, err = execute(t, "lift", "--timeout=-1s", "testdata/one.bini")
	assert.EqualError(t, err, "invalid configuration: Config.Timeout: invalid value -1s (gte)")
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	opb := filepath.Join(dir, "strassen.opb")
	_, err := execute(t, "export", "-o", opb, "testdata/strassen_mod2.bini")
	require.NoError(t, err)
	data, err := os.ReadFile(opb)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "* #variable= 80 #constraint= "))

	cnf := filepath.Join(dir, "strassen.cnf")
	_, err = execute(t, "export", "--format", "cnf", "-o", cnf, "testdata/strassen_mod2.bini")
	require.NoError(t, err)
	f, err := os.Open(cnf)
	require.NoError(t, err)
	defer f.Close()
	sc := bufio.NewScanner(f)
	require.True(t, sc.Scan())
	assert.True(t, strings.HasPrefix(sc.Text(), "p cnf "), sc.Text())

	_, err = execute(t, "export", "--format", "smt", "-o", filepath.Join(dir, "x"), "testdata/strassen_mod2.bini")
	assert.EqualError(t, err, `invalid format "smt", expected opb or cnf`)
}

func TestCheckCommand(t *testing.T) {
	a, err := execute(t, "check", "testdata/strassen.bini")
	require.NoError(t, err)
	assert.Zero(t, a.events.Count("equations violated"))

	_, err = execute(t, "check", "testdata/strassen_mod2.bini")
	var ve *brent.ValidationError
	assert.True(t, errors.As(err, &ve), "unexpected error %v", err)

	_, err = execute(t, "check", "--mod2", "testdata/strassen_mod2.bini")
	assert.NoError(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brentup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategy: direct\ndirect:\n  backend: gini\nsearch:\n  tiers: [2]\n"), 0600))
	out := filepath.Join(dir, "strassen.bini")

	a, err := execute(t, "solve", "--config", path, "--backend", "pb", "--timeout", "5m", "-o", out, "testdata/strassen_mod2.bini")
	require.NoError(t, err)
	assert.Equal(t, "pb", a.cfg.Direct.Backend)
	assert.Equal(t, 5*time.Minute, a.cfg.Timeout)
	assert.Equal(t, []int{2}, a.cfg.Search.Tiers)
	assert.Equal(t, out, a.cfg.Output)

	_, err = execute(t, "solve", "--backend", "z3", "testdata/strassen_mod2.bini")
	assert.EqualError(t, err, "invalid configuration: Config.Direct.Backend: invalid value z3 (oneof)")
}

func TestParse(t *testing.T) {
	_, err := parse("strassen.cnf")
	assert.EqualError(t, err, `invalid file format for "strassen.cnf"`)
	_, err = parse("testdata/missing.bini")
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), `could not parse scheme "testdata/missing.bini": `), err.Error())
	s, err := parse("testdata/one_5.bini")
	require.NoError(t, err)
	assert.Equal(t, "1x1x1_05", s.Dims.Signature())
}

func TestDiagnostic(t *testing.T) {
	_, err := execute(t, "lift", "testdata/broken_mod2.bini")
	require.Error(t, err)
	msg := diagnostic(err)
	assert.True(t, strings.HasPrefix(msg, err.Error()+"\n"), msg)
	assert.Contains(t, msg, "the input is not a valid modulo-2 scheme")

	err = errors.Wrap(direct.ErrUnsatisfiable, "gini backend failed")
	assert.Equal(t, err.Error()+": the modulo-2 scheme has no ±1 lifting", diagnostic(err))

	err = errors.New("plain")
	assert.Equal(t, "plain", diagnostic(err))
}

func TestStrategy(t *testing.T) {
	a := &app{cfg: config.Default()}
	assert.Equal(t, "lift-1.2.4", a.strategy())
	a.cfg.Search.Tiers = []int{1, 2, 4, 8}
	a.cfg.Beautify = true
	assert.Equal(t, "lift-1.2.4.8-beautify", a.strategy())
	a.cfg.Strategy = config.StrategyDirect
	assert.Equal(t, "maxsat-beautify", a.strategy())
	a.cfg.Beautify = false
	assert.Equal(t, direct.BackendMaxSAT, a.strategy())
}
