package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/drakos74/free-descent/internal/descent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	small = descent.Sample{Input: 0.5, Target: 0.8}
	large = descent.Sample{Input: 2, Target: 0.8}
)

func run(t *testing.T, sample descent.Sample, weight float64, config descent.Config, iterations int) Report {
	records, err := descent.Run(sample, weight, config, iterations)
	require.NoError(t, err)
	return New(sample, weight, config, records)
}

func TestSummarize(t *testing.T) {

	type test struct {
		sample      descent.Sample
		weight      float64
		config      descent.Config
		iterations  int
		regime      Regime
		stable      bool
		oscillating bool
		rate        float64
	}

	tests := map[string]test{
		"stable": {
			sample:     small,
			weight:     0.5,
			config:     descent.NewConfig(1),
			iterations: 20,
			regime:     Converging,
			stable:     true,
			rate:       math.Log(0.5625),
		},
		"diverging": {
			sample:      large,
			weight:      0,
			config:      descent.NewConfig(1),
			iterations:  50,
			regime:      Diverging,
			oscillating: true,
			rate:        math.Log(9),
		},
		"damped": {
			sample:      large,
			weight:      0,
			config:      descent.NewConfig(1).WithDamping(0.1),
			iterations:  50,
			regime:      Converging,
			stable:      true,
			oscillating: false,
			rate:        math.Log(0.36),
		},
		"damped-overshoot": {
			sample:      large,
			weight:      0,
			config:      descent.NewConfig(1).WithDamping(0.4),
			iterations:  50,
			regime:      Converging,
			stable:      true,
			oscillating: true,
			rate:        math.Log(0.36),
		},
		"no-op": {
			sample:     small,
			weight:     0.5,
			config:     descent.NewConfig(0),
			iterations: 10,
			regime:     Flat,
			stable:     true,
			rate:       0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := run(t, tt.sample, tt.weight, tt.config, tt.iterations)
			assert.NotEmpty(t, r.ID)
			assert.Equal(t, tt.regime, r.Summary.Regime)
			assert.Equal(t, tt.stable, r.Summary.Stable)
			assert.Equal(t, tt.oscillating, r.Summary.Oscillating)
			assert.InDelta(t, tt.rate, r.Summary.Rate, 1e-4)
			assert.Equal(t, r.Records[0].Error, r.Summary.Initial)
			assert.Equal(t, r.Records[len(r.Records)-1].Error, r.Summary.Final)
			assert.LessOrEqual(t, r.Summary.Min, r.Summary.Final)
			assert.InDelta(t, tt.sample.Target/tt.sample.Input, r.Summary.FixedPoint, 1e-12)
		})
	}
}

func TestSummarize_HotCold(t *testing.T) {
	r := run(t, small, 0.5, descent.NewConfig(1).WithFiniteDifference(0.001), 1101)
	assert.Equal(t, Converging, r.Summary.Regime)
	assert.True(t, r.Summary.Stable)
	assert.Less(t, r.Summary.Rate, 0.0)
	assert.Less(t, r.Summary.Final, 1e-6)
}

func TestSummarize_Edge(t *testing.T) {
	s := Summarize(small, descent.DefaultConfig(), nil)
	assert.Equal(t, Flat, s.Regime)
	assert.Equal(t, 0.0, s.Initial)
	assert.True(t, s.Stable)

	// no fixed point to oscillate around
	r := run(t, descent.Sample{Input: 0, Target: 1}, 0.5, descent.DefaultConfig(), 10)
	assert.False(t, r.Summary.Oscillating)
	assert.True(t, math.IsNaN(r.Summary.FixedPoint))
	assert.Equal(t, Flat, r.Summary.Regime)

	r = run(t, large, 0, descent.NewConfig(3), 1000)
	assert.Equal(t, Diverging, r.Summary.Regime)
	assert.False(t, r.Summary.Stable)
	assert.Greater(t, r.Summary.Rate, 0.0)
}

func TestFromScenario(t *testing.T) {
	scenario := descent.Scenario{
		Name:   "regularization",
		Sample: large,
		Phases: []descent.Phase{
			{Name: "breaking", Config: descent.NewConfig(1), Iterations: 50},
			{Name: "regularization", Config: descent.NewConfig(1).WithDamping(0.1), Iterations: 50},
		},
	}
	results, err := scenario.Run()
	require.NoError(t, err)

	reports := FromScenario(scenario, results)
	require.Equal(t, 2, len(reports))
	assert.Equal(t, "regularization", reports[0].Scenario)
	assert.Equal(t, "breaking", reports[0].Phase)
	assert.Equal(t, "regularization", reports[1].Phase)
	assert.Equal(t, results[1].Start, float64(reports[1].Weight))
	assert.Equal(t, Diverging, reports[0].Summary.Regime)
	assert.Equal(t, Converging, reports[1].Summary.Regime)
	assert.NotEqual(t, reports[0].ID, reports[1].ID)
	assert.True(t, strings.HasPrefix(reports[1].Format(), "regularization/regularization"))
}

func TestLines(t *testing.T) {
	assert.Equal(t, "Iteration: 3 Error: 0.09 Prediction: 0.5",
		Line(descent.StepRecord{Iteration: 3, Weight: 1, Prediction: 0.5, Error: 0.09}))

	r := run(t, small, 0.5, descent.DefaultConfig(), 20)
	lines := r.Lines()
	require.Equal(t, 20, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "Iteration: 0 Error: 0.302"))
	assert.True(t, strings.HasPrefix(lines[19], "Iteration: 19 Error: "))
}

func TestTable(t *testing.T) {
	r := run(t, small, 0.5, descent.DefaultConfig(), 5)

	buffer := new(bytes.Buffer)
	r.Table(buffer)

	out := buffer.String()
	assert.Contains(t, out, "ITERATION")
	assert.Contains(t, out, "PREDICTION")
	assert.Contains(t, out, "0.25")
}

func TestPlot(t *testing.T) {
	r := run(t, large, 0, descent.DefaultConfig(), 50)
	plot := r.Plot(10)
	assert.NotEmpty(t, plot)
	assert.Contains(t, plot, string(Diverging))

	r.Records = []descent.StepRecord{{Error: math.NaN()}}
	assert.Equal(t, "", r.Plot(10))
}

func TestReport_JSON(t *testing.T) {
	r := run(t, large, 0, descent.NewConfig(3), 1000)

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded Report
	err = json.Unmarshal(b, &decoded)
	require.NoError(t, err)
	assert.Equal(t, r.ID, decoded.ID)
	assert.Equal(t, r.Config, decoded.Config)
	assert.Equal(t, len(r.Records), len(decoded.Records))
	assert.Equal(t, r.Summary.Regime, decoded.Summary.Regime)
	assert.Equal(t, r.Records[10], decoded.Records[10])
}
