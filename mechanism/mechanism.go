// Package mechanism defines the lifecycle every mechanism on the robot follows once per control
// cycle: read sensors, update outputs, and stop.
package mechanism

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"go.viam.com/frcbot/utils"
)

// Mode is the robot mode reported by the field for a cycle.
type Mode uint8

// Robot modes.
const (
	Disabled Mode = iota
	Autonomous
	Teleop
	Test
	numModes
)

var modeNames = [numModes]string{"disabled", "autonomous", "teleop", "test"}

func (m Mode) String() string {
	if m >= numModes {
		return fmt.Sprintf("Mode(%d)", m)
	}
	return modeNames[m]
}

// Enabled reports whether outputs may move in this mode.
func (m Mode) Enabled() bool {
	return m != Disabled && m < numModes
}

// ParseMode looks up a mode by name.
func ParseMode(name string) (Mode, error) {
	idx := lo.IndexOf(modeNames[:], name)
	if idx < 0 {
		return 0, utils.NewUnknownNameError("robot mode", name)
	}
	return Mode(idx), nil
}

// A Mechanism is driven by the robot loop. Every cycle ReadSensors is called on all mechanisms
// before Update is called on any of them, so all sensor readings of a cycle are consistent.
// Implementations must not block.
type Mechanism interface {
	// ReadSensors captures this cycle's sensor readings.
	ReadSensors(ctx context.Context) error
	// Update computes and applies outputs from the latest readings and operation values.
	Update(ctx context.Context, mode Mode) error
	// Stop brings every output to rest.
	Stop(ctx context.Context) error
}
