// Command brentup lifts modulo-2 matrix multiplication schemes to schemes
// with coefficients in {-1, 0, +1}.
//
// Usage:
//
//	brentup lift strassen_mod2.bini
//	brentup solve --backend gini strassen_mod2.bini
//	brentup export --format opb strassen_mod2.bini > strassen.opb
//	brentup check strassen.bini
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/a1880/matrix-multiplication/brent"
	"github.com/a1880/matrix-multiplication/config"
	"github.com/a1880/matrix-multiplication/direct"
	"github.com/a1880/matrix-multiplication/lift"
	"github.com/a1880/matrix-multiplication/stats"
)

// app is the state shared by every command of a run.
type app struct {
	cfgPath string
	verbose bool
	stats   bool
	cfg     *config.Config
	log     *logrus.Logger
	events  *stats.Events
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	a := &app{events: stats.New()}
	err := a.root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "brentup: %s\n", diagnostic(err))
		os.Exit(1)
	}
}

func (a *app) root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "brentup",
		Short:         "Lift modulo-2 matrix multiplication schemes to ±1 schemes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.stats {
				a.events.Report(os.Stderr, "Statistics", "# ")
			}
		},
	}
	a.cfg = config.Default()
	f := cmd.PersistentFlags()
	f.StringVar(&a.cfgPath, "config", "", "YAML configuration file")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "sets verbose mode on")
	f.BoolVar(&a.stats, "stats", false, "prints event statistics at the end of the run")
	f.StringVarP(&a.cfg.Output, "output", "o", "", "output Bini file (default stdout)")
	f.StringVar(&a.cfg.Archive.Path, "archive", "", "directory of the solution archive")
	f.BoolVar(&a.cfg.Archive.Force, "force", false, "lifts schemes even if they are archived")
	f.StringVar(&a.cfg.Log.Level, "log-level", a.cfg.Log.Level, "log level")
	f.DurationVarP(&a.cfg.Timeout, "timeout", "T", 0, "time limit of a lifting run, 0 for none")
	cmd.AddCommand(a.liftCmd(), a.solveCmd(), a.exportCmd(), a.checkCmd())
	return cmd
}

// setup loads the configuration file under the flags explicitly set on
// the command line, and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	if a.cfgPath != "" {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return err
		}
		overlay(cmd.Flags(), a.cfg, cfg)
		a.cfg = cfg
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	a.log = logrus.New()
	a.log.SetOutput(os.Stderr)
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	a.log.SetLevel(a.cfg.LogLevel())
	if a.verbose && a.log.GetLevel() < logrus.DebugLevel {
		a.log.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// overlay copies into to the settings of from whose flag was set on the
// command line.
func overlay(flags *pflag.FlagSet, from, to *config.Config) {
	copies := map[string]func(){
		"output":         func() { to.Output = from.Output },
		"archive":        func() { to.Archive.Path = from.Archive.Path },
		"force":          func() { to.Archive.Force = from.Archive.Force },
		"log-level":      func() { to.Log.Level = from.Log.Level },
		"tiers":          func() { to.Search.Tiers = from.Search.Tiers },
		"workers":        func() { to.Search.Workers = from.Search.Workers },
		"progress-every": func() { to.Search.ProgressEvery = from.Search.ProgressEvery },
		"beautify":       func() { to.Beautify = from.Beautify },
		"backend":        func() { to.Direct.Backend = from.Direct.Backend },
		"timeout":        func() { to.Timeout = from.Timeout },
	}
	flags.Visit(func(f *pflag.Flag) {
		if fn, ok := copies[f.Name]; ok {
			fn()
		}
	})
}

// diagnostic renders err along with the details the error kinds carry.
func diagnostic(err error) string {
	var (
		si *brent.StructuralInconsistencyError
		ns *lift.NoNullSpaceSolutionError
		se *lift.SearchExhaustedError
		vm *lift.ValidationMismatchError
		ve *brent.ValidationError
	)
	switch {
	case errors.As(err, &si):
		return fmt.Sprintf("%v\nthe input is not a valid modulo-2 scheme: tuple %s needs an %s number of non-zero products",
			err, si.Tuple, parity(si.Tuple.Odd()))
	case errors.As(err, &ns), errors.As(err, &se):
		return fmt.Sprintf("%v\ntry deeper search tiers (--tiers) or the direct strategy (brentup solve)", err)
	case errors.As(err, &vm):
		return fmt.Sprintf("%v\nthis is a bug, please report it along with the input scheme", err)
	case errors.As(err, &ve):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("%v\nthe time limit was reached, raise it with --timeout", err)
	case errors.Is(err, direct.ErrUnsatisfiable):
		return fmt.Sprintf("%v: the modulo-2 scheme has no ±1 lifting", err)
	}
	return err.Error()
}

func parity(odd bool) string {
	if odd {
		return "odd"
	}
	return "even"
}
