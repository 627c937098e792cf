// Package control contains the feedback controllers and power helpers the mechanisms use to
// turn goals into motor setpoints.
package control

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/frcbot/utils"
)

// Gains is one set of PIDF constants. IZone and MaxIAccum bound the integral term when
// non-zero.
type Gains struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`
	F float64 `json:"f"`

	// error is only accumulated while its magnitude is below IZone; outside it the
	// accumulator is cleared
	IZone float64 `json:"i_zone,omitempty"`
	// the accumulated error is clamped to [-MaxIAccum, MaxIAccum]
	MaxIAccum float64 `json:"max_i_accum,omitempty"`
}

// PIDHandler is a discrete PID controller with velocity feed forward. A handler keeps integral
// and derivative history, so a new one is built whenever the gains in use change instead of
// mutating the gains of a running handler.
type PIDHandler struct {
	gains     Gains
	minOutput float64
	maxOutput float64
	clock     clock.Clock

	started   bool
	lastTime  time.Time
	lastError float64
	integral  float64
}

// NewPIDHandler returns a handler whose output is bounded to [minOutput, maxOutput]. The clock
// is used to measure the time between calculations.
func NewPIDHandler(gains Gains, minOutput, maxOutput float64, clk clock.Clock) *PIDHandler {
	if clk == nil {
		clk = clock.New()
	}
	return &PIDHandler{
		gains:     gains,
		minOutput: minOutput,
		maxOutput: maxOutput,
		clock:     clk,
	}
}

// Gains returns the constants the handler was built with.
func (h *PIDHandler) Gains() Gains {
	return h.gains
}

// CalculatePosition returns the output that moves measured towards setpoint. F is not used.
func (h *PIDHandler) CalculatePosition(setpoint, measured float64) float64 {
	return h.calculate(setpoint-measured, 0)
}

// CalculateVelocity returns the output for a velocity setpoint given as a fraction of
// maxVelocity, feeding forward F*setpoint. measured is in the same units as maxVelocity.
func (h *PIDHandler) CalculateVelocity(setpoint, measured, maxVelocity float64) float64 {
	normalized := 0.0
	if maxVelocity != 0 {
		normalized = measured / maxVelocity
	}
	return h.calculate(setpoint-normalized, h.gains.F*setpoint)
}

// Reset clears the integral and derivative history.
func (h *PIDHandler) Reset() {
	h.started = false
	h.integral = 0
	h.lastError = 0
}

func (h *PIDHandler) calculate(err, feedForward float64) float64 {
	now := h.clock.Now()
	dt := 0.0
	if h.started {
		dt = now.Sub(h.lastTime).Seconds()
	}

	derivative := 0.0
	if dt > 0 {
		h.accumulate(err, dt)
		derivative = (err - h.lastError) / dt
	}

	h.started = true
	h.lastTime = now
	h.lastError = err

	output := feedForward + h.gains.P*err + h.gains.I*h.integral + h.gains.D*derivative
	return utils.Clamp(output, h.minOutput, h.maxOutput)
}

func (h *PIDHandler) accumulate(err, dt float64) {
	if h.gains.IZone > 0 && math.Abs(err) >= h.gains.IZone {
		h.integral = 0
		return
	}
	h.integral += err * dt
	if h.gains.MaxIAccum > 0 {
		h.integral = utils.Clamp(h.integral, -h.gains.MaxIAccum, h.gains.MaxIAccum)
	}
}
