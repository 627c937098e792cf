package fake

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/frcbot/components/motor"
	"go.viam.com/frcbot/control"
	"go.viam.com/frcbot/logging"
)

func TestMotorOpenLoop(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	m := NewMotor("left", Config{MaxVelocity: 1000, TimeConstant: time.Millisecond}, clk, logging.NewTestLogger(t))

	pos, err := m.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldEqual, 0.0)

	test.That(t, m.Set(ctx, motor.PercentOutput, 0.5), test.ShouldBeNil)
	clk.Add(time.Second)
	vel, err := m.Velocity(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vel, test.ShouldAlmostEqual, 500, 1)
	pos, err = m.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldAlmostEqual, 250, 1)

	// power beyond full is clamped
	test.That(t, m.Set(ctx, motor.PercentOutput, 4), test.ShouldBeNil)
	clk.Add(time.Second)
	vel, err = m.Velocity(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vel, test.ShouldAlmostEqual, 1000, 1)

	test.That(t, m.ResetPosition(ctx), test.ShouldBeNil)
	pos, err = m.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldEqual, 0.0)

	test.That(t, m.Stop(ctx), test.ShouldBeNil)
	mode, value := m.Command()
	test.That(t, mode, test.ShouldEqual, motor.PercentOutput)
	test.That(t, value, test.ShouldEqual, 0.0)
}

func TestMotorClosedLoop(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	m := NewMotor("steer", Config{MaxVelocity: 1000, TimeConstant: time.Millisecond}, clk, nil)

	test.That(t, m.SetPIDF(ctx, control.Gains{P: 0.01}, 0), test.ShouldBeNil)
	test.That(t, m.SetPIDF(ctx, control.Gains{}, numSlots), test.ShouldNotBeNil)

	test.That(t, m.Set(ctx, motor.Position, 100), test.ShouldBeNil)
	for i := 0; i < 100; i++ {
		clk.Add(20 * time.Millisecond)
		_, err := m.Position(ctx)
		test.That(t, err, test.ShouldBeNil)
	}
	pos, err := m.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldAlmostEqual, 100, 1)
	e, err := m.Error(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, e, test.ShouldAlmostEqual, 0, 1)

	test.That(t, m.Set(ctx, motor.Velocity, 300), test.ShouldBeNil)
	clk.Add(time.Second)
	vel, err := m.Velocity(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vel, test.ShouldAlmostEqual, 300, 1)

	test.That(t, m.Set(ctx, motor.ControlMode(7), 1), test.ShouldNotBeNil)
}

func TestMotorFollow(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	leader := NewMotor("leader", Config{}, clk, nil)
	follower := NewMotor("follower", Config{}, clk, nil)

	test.That(t, follower.Follow(ctx, leader), test.ShouldBeNil)
	test.That(t, leader.Follow(ctx, leader), test.ShouldNotBeNil)

	test.That(t, leader.Set(ctx, motor.PercentOutput, -0.25), test.ShouldBeNil)
	mode, value := follower.Command()
	test.That(t, mode, test.ShouldEqual, motor.PercentOutput)
	test.That(t, value, test.ShouldEqual, -0.25)
}
