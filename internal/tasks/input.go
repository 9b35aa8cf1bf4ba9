package tasks

import (
	"sync"

	"rflink/internal/models"
)

// InputSource supplies the control input for each cycle
type InputSource interface {
	Next() models.ControlInput
}

// ThrottleRamp holds the sticks centered and opens the throttle by a fixed
// step every cycle until it is full
type ThrottleRamp struct {
	mu    sync.Mutex
	input models.ControlInput
	step  float64
}

// NewThrottleRamp starts from idle throttle, flaps up and gear down
func NewThrottleRamp(step float64) *ThrottleRamp {
	return &ThrottleRamp{
		input: models.NeutralInput(),
		step:  step,
	}
}

// Next returns the current input and advances the throttle
func (r *ThrottleRamp) Next() models.ControlInput {
	r.mu.Lock()
	defer r.mu.Unlock()

	in := r.input
	if r.input.Throttle < 1 {
		r.input.Throttle = min(r.input.Throttle+r.step, 1)
	}
	return in
}
