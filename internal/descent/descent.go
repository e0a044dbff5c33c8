package descent

import (
	"fmt"

	"github.com/drakos74/free-descent/internal/buffer"
	"github.com/drakos74/go-ex-machina/xmachina/ml"
)

// rule returns the raw update for the current weight,
// the weight moves against it scaled by the learning rate and the damping.
type rule interface {
	delta(sample Sample, weight float64) float64
}

// analytic follows the gradient of the squared error.
type analytic struct{}

func (a analytic) delta(sample Sample, weight float64) float64 {
	return sample.Gradient(weight)
}

// finiteDifference is the hot and cold search.
// It probes one step on each side and heads to the colder one.
// NOTE : ties move the weight up.
type finiteDifference struct {
	step float64
}

func (f finiteDifference) delta(sample Sample, weight float64) float64 {
	high := sample.Error(sample.Predict(weight + f.step))
	low := sample.Error(sample.Predict(weight - f.step))
	if low < high {
		return f.step
	}
	return -f.step
}

func newRule(config Config) rule {
	if config.Method == FiniteDifference {
		return finiteDifference{step: config.Step}
	}
	return analytic{}
}

// Trainer runs the update loop one iteration at a time.
// It owns its weight, so independent trainers never interfere.
type Trainer struct {
	sample     Sample
	rule       rule
	rate       *ml.Learning
	damping    float64
	weight     float64
	iteration  int
	iterations int
}

// NewTrainer creates a new trainer for the given number of iterations.
func NewTrainer(sample Sample, weight float64, config Config, iterations int) (*Trainer, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("negative iterations %d: %w", iterations, InvalidArgumentErr)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("could not create trainer: %w", err)
	}
	return &Trainer{
		sample:     sample,
		rule:       newRule(config),
		rate:       ml.Rate(config.LearningRate),
		damping:    config.Damping,
		weight:     weight,
		iterations: iterations,
	}, nil
}

// Next runs one iteration and returns its record.
// It returns false once all iterations are consumed.
func (t *Trainer) Next() (StepRecord, bool) {
	if t.iteration >= t.iterations {
		return StepRecord{}, false
	}
	prediction := t.sample.Predict(t.weight)
	record := StepRecord{
		Iteration:  t.iteration,
		Weight:     t.weight,
		Prediction: prediction,
		Error:      t.sample.Error(prediction),
	}
	t.weight -= t.rate.WRate() * t.rule.delta(t.sample, t.weight) * t.damping
	t.iteration++
	return record, true
}

// Weight returns the current weight e.g. after the last consumed update.
func (t *Trainer) Weight() float64 {
	return t.weight
}

// Remaining returns the number of iterations left.
func (t *Trainer) Remaining() int {
	return t.iterations - t.iteration
}

// All consumes the remaining iterations.
func (t *Trainer) All() []StepRecord {
	records := make([]StepRecord, 0, t.Remaining())
	for {
		record, ok := t.Next()
		if !ok {
			return records
		}
		records = append(records, record)
	}
}

// Until consumes iterations until the error falls below the threshold.
// The record that crossed the threshold is the last one returned.
func (t *Trainer) Until(threshold float64) []StepRecord {
	records := make([]StepRecord, 0)
	for {
		record, ok := t.Next()
		if !ok {
			return records
		}
		records = append(records, record)
		if record.Error < threshold {
			return records
		}
	}
}

// Converge consumes iterations until the last window errors lie within the given tolerance.
func (t *Trainer) Converge(window int, tolerance float64) []StepRecord {
	ring := buffer.NewRing(window)
	records := make([]StepRecord, 0)
	for {
		record, ok := t.Next()
		if !ok {
			return records
		}
		records = append(records, record)
		ring.Push(record.Error)
		if ring.Full() && ring.Spread() <= tolerance {
			return records
		}
	}
}

// Run trains the weight on the sample for the given iterations and returns one record per iteration.
// Identical arguments always produce identical records.
func Run(sample Sample, weight float64, config Config, iterations int) ([]StepRecord, error) {
	trainer, err := NewTrainer(sample, weight, config, iterations)
	if err != nil {
		return nil, err
	}
	return trainer.All(), nil
}
