package control

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/frcbot/logging"
	"go.viam.com/frcbot/utils"
)

// Power levels are fractions of full output.
const (
	MinPowerLevel = -1.0
	MaxPowerLevel = 1.0
)

// ErrPowerLevelOutOfRange is returned by a strict PowerRangeAssertion.
var ErrPowerLevelOutOfRange = errors.New("power level out of range")

// ApplyPowerLevelRange clamps value into [MinPowerLevel, MaxPowerLevel].
func ApplyPowerLevelRange(value float64) float64 {
	return utils.Clamp(value, MinPowerLevel, MaxPowerLevel)
}

// PowerRangeAssertion checks setpoints after clamping. Only a logic error can trip it. When
// Strict is false violations are logged and control continues.
type PowerRangeAssertion struct {
	Strict bool
	Logger logging.Logger
}

// Check verifies that value is a legal power level.
func (a PowerRangeAssertion) Check(name string, value float64) error {
	return a.CheckRange(name, value, MinPowerLevel, MaxPowerLevel)
}

// CheckRange verifies that min <= value <= max. NaN is always out of range.
func (a PowerRangeAssertion) CheckRange(name string, value, minValue, maxValue float64) error {
	if !math.IsNaN(value) && value >= minValue && value <= maxValue {
		return nil
	}
	err := errors.Wrapf(ErrPowerLevelOutOfRange, "%s is %v, expected [%v, %v]", name, value, minValue, maxValue)
	if a.Strict {
		return err
	}
	if a.Logger != nil {
		a.Logger.Errorw("setpoint out of range", "setpoint", name, "value", value, "min", minValue, "max", maxValue)
	}
	return nil
}
