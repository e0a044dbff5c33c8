package descent

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// Phase is one training run within a scenario.
type Phase struct {
	Name       string `json:"name"`
	Config     Config `json:"config"`
	Iterations int    `json:"iterations"`
}

// Scenario chains phases on the same sample.
// Each phase continues from the weight the previous one ended with,
// unless its config asks for a reset to the scenario weight.
type Scenario struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Sample      Sample  `json:"sample"`
	Weight      float64 `json:"weight"`
	Phases      []Phase `json:"phases"`
}

// Result is the outcome of a phase.
type Result struct {
	Phase   Phase        `json:"phase"`
	Start   float64      `json:"start"`
	Final   float64      `json:"final"`
	Records []StepRecord `json:"records"`
}

// Run runs all phases in order.
func (s Scenario) Run() ([]Result, error) {
	results := make([]Result, 0, len(s.Phases))
	weight := s.Weight
	for i, phase := range s.Phases {
		if i == 0 || phase.Config.ResetWeight {
			weight = s.Weight
		}
		trainer, err := NewTrainer(s.Sample, weight, phase.Config, phase.Iterations)
		if err != nil {
			return nil, fmt.Errorf("could not start phase '%s' of '%s': %w", phase.Name, s.Name, err)
		}
		records := trainer.All()
		results = append(results, Result{
			Phase:   phase,
			Start:   weight,
			Final:   trainer.Weight(),
			Records: records,
		})
		log.Debug().
			Str("scenario", s.Name).
			Str("phase", phase.Name).
			Str("config", phase.Config.String()).
			Float64("start", weight).
			Float64("final", trainer.Weight()).
			Int("iterations", len(records)).
			Msg("phase completed")
		weight = trainer.Weight()
	}
	return results, nil
}

// Index maps the scenarios by name.
func Index(scenarios []Scenario) map[string]Scenario {
	index := make(map[string]Scenario, len(scenarios))
	for _, s := range scenarios {
		index[s.Name] = s
	}
	return index
}

// Names returns the sorted names of the indexed scenarios.
func Names(index map[string]Scenario) []string {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
