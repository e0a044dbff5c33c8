package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/drakos74/free-descent/internal/descent"
	"github.com/drakos74/free-descent/internal/metrics"
	"github.com/drakos74/free-descent/internal/report"
	"github.com/drakos74/free-descent/internal/storage"
	"github.com/rs/zerolog/log"
)

// RunRequest is the payload for a single run.
type RunRequest struct {
	Sample     descent.Sample `json:"sample"`
	Weight     float64        `json:"weight"`
	Config     descent.Config `json:"config"`
	Iterations int            `json:"iterations"`
}

// Descent serves the optimizer runs and the configured scenarios.
type Descent struct {
	scenarios map[string]descent.Scenario
	store     storage.Persistence
	observer  *metrics.Metrics
	debug     bool
}

// NewDescent creates the descent handlers.
func NewDescent(scenarios []descent.Scenario, store storage.Persistence, observer *metrics.Metrics) *Descent {
	if store == nil {
		store = storage.NewVoidStorage()
	}
	if observer == nil {
		observer = metrics.Observer
	}
	return &Descent{
		scenarios: descent.Index(scenarios),
		store:     store,
		observer:  observer,
	}
}

// Debug logs the incoming payloads.
func (d *Descent) Debug() *Descent {
	d.debug = true
	return d
}

// Routes returns the routes of the descent api.
func (d *Descent) Routes() []Route {
	return []Route{
		Live(),
		{Action: Api, Path: "run", Method: POST, Exec: d.run},
		{Action: Api, Path: "scenario", Method: POST, Exec: d.scenario},
		{Action: Api, Path: "scenarios", Method: GET, Exec: d.names},
	}
}

func (d *Descent) run(r *http.Request) ([]byte, int, error) {
	request := RunRequest{Config: descent.DefaultConfig()}
	if err := ReadJson(r, d.debug, &request); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("could not read request: %w", err)
	}

	records, err := descent.Run(request.Sample, request.Weight, request.Config, request.Iterations)
	if err != nil {
		return nil, statusFor(err), err
	}

	rr := report.New(request.Sample, request.Weight, request.Config, records)
	d.track(rr)
	return marshal(rr)
}

func (d *Descent) scenario(r *http.Request) ([]byte, int, error) {
	name := r.URL.Query().Get("name")
	s, ok := d.scenarios[name]
	if !ok {
		return nil, http.StatusNotFound, fmt.Errorf("unknown scenario '%s'", name)
	}

	results, err := s.Run()
	if err != nil {
		return nil, statusFor(err), err
	}

	reports := report.FromScenario(s, results)
	for _, rr := range reports {
		d.track(rr)
	}
	return marshal(reports)
}

func (d *Descent) names(_ *http.Request) ([]byte, int, error) {
	return marshal(descent.Names(d.scenarios))
}

func (d *Descent) track(rr report.Report) {
	d.observer.Observe(rr)
	err := d.store.Store(storage.Key{Scenario: rr.Scenario, Phase: rr.Phase, ID: rr.ID}, rr)
	if err != nil {
		log.Error().Err(err).Str("id", rr.ID).Msg("could not store report")
	}
}

func statusFor(err error) int {
	if errors.Is(err, descent.InvalidArgumentErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func marshal(v interface{}) ([]byte, int, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("could not encode response: %w", err)
	}
	return b, http.StatusOK, nil
}
