package descent

import (
	"encoding/json"
	"errors"
	"fmt"

	dmath "github.com/drakos74/free-descent/internal/math"
	"github.com/drakos74/go-ex-machina/xmachina/ml"
	"github.com/drakos74/go-ex-machina/xmath"
)

// InvalidArgumentErr is returned for arguments no run can start from.
var InvalidArgumentErr = errors.New("invalid argument")

// Method defines how the update direction is found.
type Method string

const (
	// AnalyticGradient follows the derivative of the squared error.
	AnalyticGradient Method = "analytic-gradient"
	// FiniteDifference probes the error on both sides of the weight and moves towards the lower one.
	FiniteDifference Method = "finite-difference"
)

// Sample is the single input and target pair the network learns.
type Sample struct {
	Input  float64 `json:"input"`
	Target float64 `json:"target"`
}

// Predict returns the network output for the given weight.
func (s Sample) Predict(weight float64) float64 {
	return s.Input * weight
}

// Error returns the squared error of the prediction.
func (s Sample) Error(prediction float64) float64 {
	d := prediction - s.Target
	return d * d
}

// Gradient returns the derivative of the squared error with respect to the weight,
// with the factor of 2 folded into the learning rate.
func (s Sample) Gradient(weight float64) float64 {
	return ml.GradientDescent{}.Grad(s.Predict(weight)-s.Target, s.Input)
}

// Config defines the update rule.
// LearningRate scales every update.
// Damping is applied on top of the raw gradient to tame large inputs, it must be within (0,1].
// Step is the probe distance for the finite-difference method.
// ResetWeight makes a phase start from the initial weight instead of where the previous one ended.
type Config struct {
	Method       Method  `json:"method"`
	LearningRate float64 `json:"learning_rate"`
	Damping      float64 `json:"damping"`
	Step         float64 `json:"step"`
	ResetWeight  bool    `json:"reset_weight"`
}

// DefaultConfig returns the plain analytic gradient config with a unit learning rate.
func DefaultConfig() Config {
	return NewConfig(1)
}

// NewConfig creates a new analytic gradient config for the given learning rate.
func NewConfig(rate float64) Config {
	return Config{
		Method:       AnalyticGradient,
		LearningRate: rate,
		Damping:      1,
	}
}

// WithDamping sets the damping factor.
func (c Config) WithDamping(damping float64) Config {
	c.Damping = damping
	return c
}

// WithFiniteDifference switches to the finite-difference method with the given probe step.
func (c Config) WithFiniteDifference(step float64) Config {
	c.Method = FiniteDifference
	c.Step = step
	return c
}

// WithReset makes the config start from the initial weight when used in a phase.
func (c Config) WithReset() Config {
	c.ResetWeight = true
	return c
}

// Validate checks that a run can start with this config.
// NOTE : a zero learning rate or a zero step is a valid no-op.
func (c Config) Validate() error {
	switch c.Method {
	case AnalyticGradient, FiniteDifference:
	default:
		return fmt.Errorf("unknown method '%s': %w", c.Method, InvalidArgumentErr)
	}
	if !(c.Damping > 0 && c.Damping <= 1) {
		return fmt.Errorf("damping %v outside (0,1]: %w", c.Damping, InvalidArgumentErr)
	}
	return nil
}

// UnmarshalJSON fills in the defaults for the fields missing from the payload.
func (c *Config) UnmarshalJSON(b []byte) error {
	type config Config
	cfg := config(DefaultConfig())
	if err := json.Unmarshal(b, &cfg); err != nil {
		return err
	}
	*c = Config(cfg)
	return nil
}

func (c Config) String() string {
	if c.Method == FiniteDifference {
		return fmt.Sprintf("%s[rate:%v|damping:%v|step:%v]", c.Method, c.LearningRate, c.Damping, c.Step)
	}
	return fmt.Sprintf("%s[rate:%v|damping:%v]", c.Method, c.LearningRate, c.Damping)
}

// StepRecord is the state of one iteration, before the weight gets updated.
type StepRecord struct {
	Iteration  int     `json:"iteration"`
	Weight     float64 `json:"weight"`
	Prediction float64 `json:"prediction"`
	Error      float64 `json:"error"`
}

type stepRecord struct {
	Iteration  int         `json:"iteration"`
	Weight     dmath.Float `json:"weight"`
	Prediction dmath.Float `json:"prediction"`
	Error      dmath.Float `json:"error"`
}

// MarshalJSON keeps diverged records encodable.
func (r StepRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(stepRecord{
		Iteration:  r.Iteration,
		Weight:     dmath.Float(r.Weight),
		Prediction: dmath.Float(r.Prediction),
		Error:      dmath.Float(r.Error),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *StepRecord) UnmarshalJSON(b []byte) error {
	var s stepRecord
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = StepRecord{
		Iteration:  s.Iteration,
		Weight:     float64(s.Weight),
		Prediction: float64(s.Prediction),
		Error:      float64(s.Error),
	}
	return nil
}

// Errors extracts the error trace of the given records.
func Errors(records []StepRecord) xmath.Vector {
	ee := xmath.Vec(len(records))
	for i, r := range records {
		ee[i] = r.Error
	}
	return ee
}

// Weights extracts the weight trace of the given records.
func Weights(records []StepRecord) xmath.Vector {
	ww := xmath.Vec(len(records))
	for i, r := range records {
		ww[i] = r.Weight
	}
	return ww
}
