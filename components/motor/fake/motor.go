// Package fake implements a fake motor with a simulated encoder.
package fake

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/frcbot/components/motor"
	"go.viam.com/frcbot/control"
	"go.viam.com/frcbot/logging"
	"go.viam.com/frcbot/utils"
)

const (
	defaultMaxVelocity  = 20000.0
	defaultTimeConstant = 50 * time.Millisecond
	numSlots            = 4
)

// Config describes a fake motor.
type Config struct {
	// ticks per second at full power
	MaxVelocity   float64       `json:"max_velocity,omitempty"`
	TimeConstant  time.Duration `json:"time_constant,omitempty"`
	DirectionFlip bool          `json:"direction_flip,omitempty"`
}

var _ motor.Motor = &Motor{}

// A Motor pretends to be a motor controller. Its velocity follows the commanded velocity as a
// first order lag and its encoder integrates the velocity, both advanced by the clock.
type Motor struct {
	Name   string
	Logger logging.Logger

	mu           sync.Mutex
	clock        clock.Clock
	maxVelocity  float64
	timeConstant time.Duration
	dirFlip      bool
	lastUpdate   time.Time

	mode      motor.ControlMode
	value     float64
	position  float64
	velocity  float64
	gains     [numSlots]control.Gains
	followers []*Motor
}

// NewMotor returns a stopped motor at position zero.
func NewMotor(name string, cfg Config, clk clock.Clock, logger logging.Logger) *Motor {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.NewBlankLogger(name)
	}
	m := &Motor{
		Name:         name,
		Logger:       logger,
		clock:        clk,
		maxVelocity:  cfg.MaxVelocity,
		timeConstant: cfg.TimeConstant,
		dirFlip:      cfg.DirectionFlip,
		lastUpdate:   clk.Now(),
	}
	if m.maxVelocity == 0 {
		logger.Debugf("max velocity not provided to fake motor %s, defaulting to %v", name, defaultMaxVelocity)
		m.maxVelocity = defaultMaxVelocity
	}
	if m.timeConstant <= 0 {
		m.timeConstant = defaultTimeConstant
	}
	return m
}

// Set commands the motor.
func (m *Motor) Set(ctx context.Context, mode motor.ControlMode, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.setInLock(mode, value); err != nil {
		return err
	}
	for _, f := range m.followers {
		if err := f.mirror(mode, value); err != nil {
			return err
		}
	}
	return nil
}

// mirror applies a leader's command.
func (m *Motor) mirror(mode motor.ControlMode, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setInLock(mode, value)
}

func (m *Motor) setInLock(mode motor.ControlMode, value float64) error {
	switch mode {
	case motor.PercentOutput, motor.Velocity, motor.Position:
	default:
		return motor.NewUnsupportedModeError(m.Name, mode)
	}
	m.advanceInLock()
	m.mode = mode
	m.value = value
	return nil
}

// Position returns the encoder position in ticks.
func (m *Motor) Position(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceInLock()
	return m.position, nil
}

// Velocity returns the encoder velocity in ticks per second.
func (m *Motor) Velocity(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceInLock()
	return m.velocity, nil
}

// Error returns the closed loop error, which is zero when running open loop.
func (m *Motor) Error(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceInLock()
	switch m.mode {
	case motor.Velocity:
		return m.value - m.velocity, nil
	case motor.Position:
		return m.value - m.position, nil
	default:
		return 0, nil
	}
}

// SetPIDF stores gains for a slot. Slot 0 is used for position control.
func (m *Motor) SetPIDF(ctx context.Context, gains control.Gains, slot int) error {
	if slot < 0 || slot >= numSlots {
		return motor.NewInvalidSlotError(m.Name, slot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gains[slot] = gains
	return nil
}

// Follow mirrors every command given to leader, which must also be a fake motor.
func (m *Motor) Follow(ctx context.Context, leader motor.Motor) error {
	l, ok := leader.(*Motor)
	if !ok {
		return motor.NewFollowUnsupportedError(m.Name, leader)
	}
	if l == m {
		return errors.Errorf("motor %s cannot follow itself", m.Name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.followers = append(l.followers, m)
	return nil
}

// ResetPosition zeroes the encoder.
func (m *Motor) ResetPosition(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceInLock()
	m.position = 0
	return nil
}

// Stop commands zero output.
func (m *Motor) Stop(ctx context.Context) error {
	return m.Set(ctx, motor.PercentOutput, 0)
}

// Command returns the last mode and value the motor was given.
func (m *Motor) Command() (motor.ControlMode, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode, m.value
}

// SetPosition moves the encoder to ticks, as if the mechanism were pushed.
func (m *Motor) SetPosition(ticks float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceInLock()
	m.position = ticks
}

// targetVelocityInLock is the velocity the current command settles at.
func (m *Motor) targetVelocityInLock() float64 {
	var target float64
	switch m.mode {
	case motor.PercentOutput:
		target = control.ApplyPowerLevelRange(m.value) * m.maxVelocity
	case motor.Velocity:
		target = utils.Clamp(m.value, -m.maxVelocity, m.maxVelocity)
	case motor.Position:
		// the position loop closes on the encoder, so the direction flip does not apply
		power := control.ApplyPowerLevelRange(m.gains[0].P * (m.value - m.position))
		return power * m.maxVelocity
	}
	if m.dirFlip {
		target = -target
	}
	return target
}

func (m *Motor) advanceInLock() {
	now := m.clock.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	m.lastUpdate = now
	if dt <= 0 {
		return
	}
	target := m.targetVelocityInLock()
	alpha := 1 - math.Exp(-dt/m.timeConstant.Seconds())
	next := m.velocity + (target-m.velocity)*alpha
	m.position += (m.velocity + next) / 2 * dt
	m.velocity = next
}
