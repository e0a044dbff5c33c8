package main

import (
	"flag"
	"os"

	"github.com/drakos74/free-descent/infra/config"
	"github.com/drakos74/free-descent/internal/descent"
	"github.com/drakos74/free-descent/internal/metrics"
	"github.com/drakos74/free-descent/internal/server"
	"github.com/drakos74/free-descent/internal/storage"
	json_storage "github.com/drakos74/free-descent/internal/storage/file/json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func main() {

	dir := flag.String("config", config.Path, "config directory holding scenarios.json")
	scenario := flag.String("scenario", "", "name of the scenario to run")
	list := flag.Bool("list", false, "list the available scenarios")
	input := flag.Float64("input", 0.5, "sample input")
	target := flag.Float64("target", 0.8, "sample target")
	weight := flag.Float64("weight", 0.5, "initial weight")
	rate := flag.Float64("rate", 1, "learning rate")
	damping := flag.Float64("damping", 1, "multiplier on the raw gradient, within (0,1]")
	method := flag.String("method", string(descent.AnalyticGradient), "analytic-gradient or finite-difference")
	step := flag.Float64("step", 0.001, "probe step for the finite-difference method")
	iterations := flag.Int("iterations", 20, "number of iterations")
	threshold := flag.Float64("threshold", 0, "stop once the error falls below this value")
	table := flag.Bool("table", false, "print the records as a table")
	plot := flag.Int("plot", 0, "plot the error curve with the given height")
	save := flag.String("save", "", "directory to store the reports in")
	serve := flag.Int("serve", 0, "serve the api on the given port instead of running once")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		log.Fatal().Err(err).Str("level", *level).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(lvl)
	debug := lvl <= zerolog.DebugLevel

	var scenarios []descent.Scenario
	if _, err := config.Load(*dir, "scenarios", &scenarios); err != nil {
		log.Warn().Err(err).Msg("running without scenarios")
	}
	index := descent.Index(scenarios)

	if *list {
		for _, name := range descent.Names(index) {
			log.Info().Str("scenario", name).Str("description", index[name].Description).Msg("available")
		}
		return
	}

	var store storage.Persistence = storage.NewVoidStorage()
	if *save != "" {
		storage.DefaultDir = *save
		store, err = json_storage.BlobShard(storage.ReportDir)("cli")
		if err != nil {
			log.Fatal().Err(err).Str("dir", *save).Msg("could not create storage")
		}
	}

	if *serve > 0 {
		if err := metrics.Observer.Register(prometheus.DefaultRegisterer); err != nil {
			log.Fatal().Err(err).Msg("could not register metrics")
		}
		d := server.NewDescent(scenarios, store, metrics.Observer)
		srv := server.NewServer("descent", *serve).
			Add(d.Routes()...).
			Mount("/metrics", promhttp.Handler())
		if debug {
			srv.Debug()
			d.Debug()
		}
		if err := srv.Run(); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
		return
	}

	cfg := descent.NewConfig(*rate).WithDamping(*damping)
	if descent.Method(*method) == descent.FiniteDifference {
		cfg = cfg.WithFiniteDifference(*step)
	} else {
		cfg.Method = descent.Method(*method)
	}

	_, err = execute(options{
		scenario:   *scenario,
		sample:     descent.Sample{Input: *input, Target: *target},
		weight:     *weight,
		config:     cfg,
		iterations: *iterations,
		threshold:  *threshold,
		table:      *table,
		plot:       *plot,
	}, index, store, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("could not run")
	}
}
