package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/a1880/matrix-multiplication/archive"
	"github.com/a1880/matrix-multiplication/brent"
	"github.com/a1880/matrix-multiplication/config"
	"github.com/a1880/matrix-multiplication/direct"
	"github.com/a1880/matrix-multiplication/lift"
	"github.com/a1880/matrix-multiplication/scheme"
)

func (a *app) liftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lift <scheme.bini>",
		Short: "Lift a modulo-2 scheme by searching the solutions of its sign parity system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Strategy = config.StrategyLift
			return a.run(cmd.Context(), args[0])
		},
	}
	f := cmd.Flags()
	f.IntSliceVar(&a.cfg.Search.Tiers, "tiers", a.cfg.Search.Tiers, "number of basis vectors combined in each search tier")
	f.IntVar(&a.cfg.Search.Workers, "workers", 0, "number of concurrent validations (default GOMAXPROCS)")
	f.IntVar(&a.cfg.Search.ProgressEvery, "progress-every", a.cfg.Search.ProgressEvery, "outer iterations between progress logs")
	f.BoolVar(&a.cfg.Beautify, "beautify", false, "rearranges the signs of each product of the result")
	return cmd
}

func (a *app) solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <scheme.bini>",
		Short: "Lift a modulo-2 scheme with an external solver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Strategy = config.StrategyDirect
			return a.run(cmd.Context(), args[0])
		},
	}
	cmd.Flags().StringVar(&a.cfg.Direct.Backend, "backend", a.cfg.Direct.Backend,
		"solver backend, one of "+strings.Join(direct.Backends(), ", "))
	cmd.Flags().BoolVar(&a.cfg.Beautify, "beautify", false, "rearranges the signs of each product of the result")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <scheme.bini>",
		Short: "Write the sign problem of a modulo-2 scheme in OPB or DIMACS CNF format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			known, err := parse(args[0])
			if err != nil {
				return err
			}
			sys, err := brent.Build(known)
			if err != nil {
				return err
			}
			sys.Record(a.events)
			m := direct.Encode(sys)
			return a.output(func(w io.Writer) error {
				switch format {
				case "opb":
					return direct.WriteOPB(w, m)
				case "cnf":
					return direct.WriteDIMACS(w, m)
				}
				return errors.Errorf("invalid format %q, expected opb or cnf", format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "opb", "output format, opb or cnf")
	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	var mod2 bool
	cmd := &cobra.Command{
		Use:   "check <scheme.bini>",
		Short: "Check Brent's equations for a scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parse(args[0])
			if err != nil {
				return err
			}
			rep := brent.Validate(s)
			if mod2 {
				rep = brent.ValidateMod2(s)
			}
			a.events.Add("equations checked", rep.Checked)
			a.events.Add("equations violated", rep.Errors)
			if err := rep.Err(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s: all %d Brent equations hold\n", s.Dims.Signature(), rep.Checked)
			return nil
		},
	}
	cmd.Flags().BoolVar(&mod2, "mod2", false, "checks the equations modulo 2")
	return cmd
}

// parse reads the scheme at path, or stdin if path is "-".
func parse(path string) (*scheme.Scheme, error) {
	if path == "-" {
		s, err := scheme.ReadBini(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("could not parse scheme on stdin: %v", err)
		}
		return s, nil
	}
	if !strings.HasSuffix(path, ".bini") && !strings.HasSuffix(path, ".txt") {
		return nil, fmt.Errorf("invalid file format for %q", path)
	}
	s, err := scheme.LoadBini(path)
	if err != nil {
		return nil, fmt.Errorf("could not parse scheme %q: %v", path, err)
	}
	return s, nil
}

// output calls write with the configured output.
func (a *app) output(write func(w io.Writer) error) error {
	if a.cfg.Output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(a.cfg.Output)
	if err != nil {
		return fmt.Errorf("could not create %q: %v", a.cfg.Output, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// strategy returns the archive name of the configured strategy. It holds
// every setting that changes the lifted scheme.
func (a *app) strategy() string {
	name := config.StrategyLift
	if a.cfg.Strategy == config.StrategyDirect {
		name = a.cfg.Direct.Backend
	} else {
		tiers := make([]string, len(a.cfg.Search.Tiers))
		for i, t := range a.cfg.Search.Tiers {
			tiers[i] = strconv.Itoa(t)
		}
		name += "-" + strings.Join(tiers, ".")
	}
	if a.cfg.Beautify {
		name += "-beautify"
	}
	return name
}

// run lifts the scheme at path with the configured strategy and writes
// the result.
func (a *app) run(ctx context.Context, path string) error {
	known, err := parse(path)
	if err != nil {
		return err
	}
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}
	log := a.log.WithFields(logrus.Fields{"file": path, "strategy": a.strategy()})
	log.Info("lifting scheme")
	if rep := brent.ValidateMod2(known); !rep.OK() {
		log.WithField("errors", rep.Errors).Warn("scheme violates Brent's equations modulo 2")
	}

	var arch *archive.Archive
	if a.cfg.Archive.Path != "" {
		if arch, err = archive.Open(archive.Config{Path: a.cfg.Archive.Path, Log: a.log.WithField("component", "archive")}); err != nil {
			return err
		}
		defer arch.Close()
		if !a.cfg.Archive.Force {
			rec, err := arch.Get(known, a.strategy())
			switch {
			case err == nil:
				log.WithFields(logrus.Fields{"run": rec.RunID, "created": rec.Created}).Info("scheme found in archive")
				a.events.Register("archive hits")
				return a.output(func(w io.Writer) error {
					_, err := io.WriteString(w, rec.Bini)
					return err
				})
			case !errors.Is(err, archive.ErrNotFound):
				return err
			}
		}
	}

	lifted, weight, tier, err := a.lift(ctx, known, log)
	if err != nil {
		return err
	}
	if arch != nil {
		rec, err := archive.NewRecord(known, lifted, a.strategy(), weight, tier)
		if err != nil {
			return err
		}
		if err := arch.Put(rec); err != nil {
			return err
		}
		log.WithField("run", rec.RunID).Debug("scheme archived")
	}
	comment := fmt.Sprintf("lifted by %s, %d negative coefficients", a.strategy(), lifted.Negatives())
	return a.output(func(w io.Writer) error {
		return scheme.WriteBini(w, lifted, comment)
	})
}

func (a *app) lift(ctx context.Context, known *scheme.Scheme, log logrus.FieldLogger) (lifted *scheme.Scheme, weight, tier int, err error) {
	if a.cfg.Strategy == config.StrategyDirect {
		s := &direct.Solver{Backend: a.cfg.Direct.Backend, Log: log, Events: a.events}
		res, err := s.Lift(ctx, known)
		if err != nil {
			return nil, 0, 0, err
		}
		if a.cfg.Beautify {
			a.events.Add("products beautified", lift.Beautify(res.Scheme))
		}
		return res.Scheme, res.Weight, 0, nil
	}
	l := lift.New(a.cfg.LiftOptions(log), a.events)
	l.Beautify = a.cfg.Beautify
	sol, err := l.Lift(ctx, known)
	if err != nil {
		return nil, 0, 0, err
	}
	return sol.Scheme, sol.Weight, sol.Tier, nil
}
