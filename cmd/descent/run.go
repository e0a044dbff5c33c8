package main

import (
	"fmt"
	"io"

	"github.com/drakos74/free-descent/internal/descent"
	"github.com/drakos74/free-descent/internal/metrics"
	"github.com/drakos74/free-descent/internal/report"
	"github.com/drakos74/free-descent/internal/storage"
	"github.com/rs/zerolog/log"
)

// options collects the command line arguments.
type options struct {
	scenario   string
	sample     descent.Sample
	weight     float64
	config     descent.Config
	iterations int
	threshold  float64
	table      bool
	plot       int
}

// execute runs either the named scenario or the ad hoc run described by the options
// and writes the records to out.
func execute(opts options, scenarios map[string]descent.Scenario, store storage.Persistence, out io.Writer) ([]report.Report, error) {
	var reports []report.Report
	if opts.scenario != "" {
		s, ok := scenarios[opts.scenario]
		if !ok {
			return nil, fmt.Errorf("unknown scenario '%s' (available %v)", opts.scenario, descent.Names(scenarios))
		}
		results, err := s.Run()
		if err != nil {
			return nil, err
		}
		reports = report.FromScenario(s, results)
	} else {
		trainer, err := descent.NewTrainer(opts.sample, opts.weight, opts.config, opts.iterations)
		if err != nil {
			return nil, err
		}
		var records []descent.StepRecord
		if opts.threshold > 0 {
			records = trainer.Until(opts.threshold)
		} else {
			records = trainer.All()
		}
		reports = []report.Report{report.New(opts.sample, opts.weight, opts.config, records)}
	}

	for _, r := range reports {
		if r.Phase != "" {
			fmt.Fprintf(out, "# %s\n", r.Phase)
		}
		if opts.table {
			r.Table(out)
		} else {
			for _, line := range r.Lines() {
				fmt.Fprintln(out, line)
			}
		}
		if opts.plot > 0 {
			fmt.Fprintln(out, r.Plot(opts.plot))
		}
		fmt.Fprintln(out, r.Format())

		metrics.Observer.Observe(r)
		err := store.Store(storage.Key{Scenario: r.Scenario, Phase: r.Phase, ID: r.ID}, r)
		if err != nil {
			return reports, fmt.Errorf("could not store report %s: %w", r.ID, err)
		}
		log.Debug().
			Str("id", r.ID).
			Str("config", r.Config.String()).
			Float64("initial", r.Summary.Initial).
			Float64("final", r.Summary.Final).
			Str("regime", string(r.Summary.Regime)).
			Bool("oscillating", r.Summary.Oscillating).
			Msg("run completed")
	}
	return reports, nil
}
