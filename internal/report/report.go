package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/drakos74/free-descent/internal/descent"
	dmath "github.com/drakos74/free-descent/internal/math"
	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"
)

// Regime describes where the error of a run is heading.
type Regime string

const (
	Converging Regime = "converging"
	Diverging  Regime = "diverging"
	Flat       Regime = "flat"
)

// Report is the outcome of a single run.
type Report struct {
	ID       string               `json:"id"`
	Time     time.Time            `json:"time"`
	Scenario string               `json:"scenario"`
	Phase    string               `json:"phase"`
	Sample   descent.Sample       `json:"sample"`
	Weight   dmath.Float          `json:"weight"`
	Config   descent.Config       `json:"config"`
	Records  []descent.StepRecord `json:"records"`
	Summary  Summary              `json:"summary"`
}

// Summary holds the diagnostics of the error and weight traces.
// Rate is the slope of log(error) per iteration.
// Stable refers to the analytic update condition and is always true for the finite-difference method.
// Oscillating means the weight keeps jumping over the fixed point.
type Summary struct {
	Initial     float64 `json:"initial"`
	Final       float64 `json:"final"`
	Min         float64 `json:"min"`
	Mean        float64 `json:"mean"`
	Rate        float64 `json:"rate"`
	Regime      Regime  `json:"regime"`
	Stable      bool    `json:"stable"`
	Oscillating bool    `json:"oscillating"`
	FixedPoint  float64 `json:"fixed_point"`
}

// New creates a new report for the records produced from the given arguments.
func New(sample descent.Sample, weight float64, config descent.Config, records []descent.StepRecord) Report {
	return Report{
		ID:      uuid.New().String(),
		Time:    time.Now(),
		Sample:  sample,
		Weight:  dmath.Float(weight),
		Config:  config,
		Records: records,
		Summary: Summarize(sample, config, records),
	}
}

// FromScenario creates one report per phase result of the scenario.
func FromScenario(scenario descent.Scenario, results []descent.Result) []Report {
	reports := make([]Report, len(results))
	for i, result := range results {
		r := New(scenario.Sample, result.Start, result.Phase.Config, result.Records)
		r.Scenario = scenario.Name
		r.Phase = result.Phase.Name
		reports[i] = r
	}
	return reports
}

// Summarize computes the diagnostics for the given records.
func Summarize(sample descent.Sample, config descent.Config, records []descent.StepRecord) Summary {
	summary := Summary{
		Regime:     Flat,
		Stable:     config.Method == descent.FiniteDifference || dmath.Stable(sample.Input, config.LearningRate, config.Damping),
		FixedPoint: dmath.FixedPoint(sample.Input, sample.Target),
	}
	if len(records) == 0 {
		return summary
	}

	ee := descent.Errors(records)
	summary.Initial = ee[0]
	summary.Final = ee[len(ee)-1]
	summary.Min = ee[0]
	for _, e := range ee {
		if e < summary.Min {
			summary.Min = e
		}
	}
	summary.Mean = stat.Mean(ee, nil)

	switch {
	case math.IsNaN(summary.Final) || summary.Final > summary.Initial:
		summary.Regime = Diverging
	case summary.Final < summary.Initial:
		summary.Regime = Converging
	}

	rate, err := dmath.Rate(ee)
	if err != nil && !errors.Is(err, dmath.NotEnoughDataErr) {
		rate = math.NaN()
	}
	summary.Rate = rate

	if !math.IsNaN(summary.FixedPoint) {
		summary.Oscillating = dmath.Oscillating(dmath.Shift(descent.Weights(records), -summary.FixedPoint))
	}

	return summary
}

type summary struct {
	Initial     dmath.Float `json:"initial"`
	Final       dmath.Float `json:"final"`
	Min         dmath.Float `json:"min"`
	Mean        dmath.Float `json:"mean"`
	Rate        dmath.Float `json:"rate"`
	Regime      Regime      `json:"regime"`
	Stable      bool        `json:"stable"`
	Oscillating bool        `json:"oscillating"`
	FixedPoint  dmath.Float `json:"fixed_point"`
}

// MarshalJSON keeps diverged summaries encodable.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summary{
		Initial:     dmath.Float(s.Initial),
		Final:       dmath.Float(s.Final),
		Min:         dmath.Float(s.Min),
		Mean:        dmath.Float(s.Mean),
		Rate:        dmath.Float(s.Rate),
		Regime:      s.Regime,
		Stable:      s.Stable,
		Oscillating: s.Oscillating,
		FixedPoint:  dmath.Float(s.FixedPoint),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Summary) UnmarshalJSON(b []byte) error {
	var ss summary
	if err := json.Unmarshal(b, &ss); err != nil {
		return err
	}
	*s = Summary{
		Initial:     float64(ss.Initial),
		Final:       float64(ss.Final),
		Min:         float64(ss.Min),
		Mean:        float64(ss.Mean),
		Rate:        float64(ss.Rate),
		Regime:      ss.Regime,
		Stable:      ss.Stable,
		Oscillating: ss.Oscillating,
		FixedPoint:  float64(ss.FixedPoint),
	}
	return nil
}

// Line formats the record the way the step by step walk-through prints it.
func Line(r descent.StepRecord) string {
	return fmt.Sprintf("Iteration: %d Error: %s Prediction: %s", r.Iteration, dmath.Precise(r.Error), dmath.Precise(r.Prediction))
}

// Lines formats all records of the report.
func (r Report) Lines() []string {
	lines := make([]string, len(r.Records))
	for i, record := range r.Records {
		lines[i] = Line(record)
	}
	return lines
}

// Table renders the records as a table.
func (r Report) Table(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"iteration", "weight", "prediction", "error"})
	for _, record := range r.Records {
		table.Append([]string{
			fmt.Sprintf("%d", record.Iteration),
			dmath.Precise(record.Weight),
			dmath.Precise(record.Prediction),
			dmath.Precise(record.Error),
		})
	}
	table.Render()
}

// Plot draws the error curve up to the first non-finite error.
func (r Report) Plot(height int) string {
	ee := dmath.Finite(descent.Errors(r.Records))
	if len(ee) == 0 {
		return ""
	}
	return asciigraph.Plot(ee,
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("error %s %s", r.Config.String(), r.Summary.Regime)))
}

// Format returns a one line description of the report.
func (r Report) Format() string {
	name := r.Phase
	if r.Scenario != "" {
		name = fmt.Sprintf("%s/%s", r.Scenario, r.Phase)
	}
	return fmt.Sprintf("%s %s | %d iterations | error %s -> %s | %s (rate %s)",
		name,
		r.Config.String(),
		len(r.Records),
		dmath.Precise(r.Summary.Initial),
		dmath.Precise(r.Summary.Final),
		r.Summary.Regime,
		dmath.Format(r.Summary.Rate))
}
