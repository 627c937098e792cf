package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/components/drivetrain/swerve"
	"go.viam.com/frcbot/components/input"
	inputfake "go.viam.com/frcbot/components/input/fake"
	"go.viam.com/frcbot/components/motor"
	motorfake "go.viam.com/frcbot/components/motor/fake"
	imufake "go.viam.com/frcbot/components/movementsensor/fake"
	"go.viam.com/frcbot/config"
	"go.viam.com/frcbot/logging"
	"go.viam.com/frcbot/mechanism"
	"go.viam.com/frcbot/robot"
)

// SimulateAction runs the configured robot against fake motors for a number of cycles, holding
// the driver's sticks where the flags put them, and prints the pose and outputs as it goes.
// Sticks are bound as in the built-in button map.
func SimulateAction(c *cli.Context) error {
	cfg, err := config.Read(c.String(flagConfig))
	if err != nil {
		return err
	}
	mode, err := mechanism.ParseMode(c.String(flagMode))
	if err != nil {
		return err
	}
	cycles := c.Int(flagCycles)
	if cycles <= 0 {
		return errors.Errorf("%s must be positive, got %d", flagCycles, cycles)
	}
	every := c.Int(flagEvery)
	if every <= 0 {
		every = 1
	}

	logger := newLogger(c, "simulate")
	if !c.Bool(flagDebug) {
		logger.SetLevel(cfg.Robot.Level())
	}
	clk := clock.NewMock()
	js := inputfake.NewJoystick()
	js.SetAxis(input.AxisLeftY, -c.Float64(flagForward))
	js.SetAxis(input.AxisLeftX, c.Float64(flagRight))
	js.SetAxis(input.AxisRightX, c.Float64(flagTurn))
	hw := simulatedHardware(cfg, clk, logger)
	hw.Joysticks = input.Joysticks{input.DeviceDriver: js}

	r, err := robot.New(c.Context, cfg, hw, robot.Options{
		Clock:     clk,
		Telemetry: logging.NewMemoryTelemetry(),
	}, logger)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Cycle", "Time", "Mode", "X", "Y", "Angle", "Outputs"})
	var cycleErr error
	for i := 1; i <= cycles; i++ {
		clk.Add(cfg.Robot.Period())
		if err := r.Cycle(c.Context, mode); err != nil {
			cycleErr = errors.Wrapf(err, "cycle %d", i)
			break
		}
		if i%every == 0 || i == cycles {
			dt := r.DriveTrain()
			pose := dt.Pose()
			t.AppendRow(table.Row{
				i,
				(cfg.Robot.Period() * time.Duration(i)).String(),
				dt.ControlMode().String(),
				fmt.Sprintf("%.2f", pose.X()),
				fmt.Sprintf("%.2f", pose.Y()),
				fmt.Sprintf("%.1f", pose.Angle),
				outputs(dt),
			})
		}
	}
	printf(c.App.Writer, "%s", t.Render())
	return multierr.Combine(cycleErr, r.Close(c.Context))
}

// simulatedHardware makes a fake motor for every motor the config names. Swerve robots get a
// disconnected IMU so the heading comes from the wheels.
func simulatedHardware(cfg *config.Config, clk clock.Clock, logger logging.Logger) robot.Hardware {
	hw := robot.Hardware{Motors: map[string]motor.Motor{}}
	add := func(name string, maxVelocity float64) {
		hw.Motors[name] = motorfake.NewMotor(name, motorfake.Config{MaxVelocity: maxVelocity}, clk, logger.Sublogger(name))
	}
	switch cfg.Robot.DriveTrain {
	case config.TankDriveTrain:
		names := lo.Flatten([][]string{
			{cfg.Tank.LeftMotor, cfg.Tank.RightMotor},
			cfg.Tank.LeftFollowers,
			cfg.Tank.RightFollowers,
		})
		for _, name := range names {
			add(name, cfg.Tank.VelocityMax)
		}
	case config.SwerveDriveTrain:
		for _, m := range cfg.Swerve.Modules {
			add(m.DriveMotor, cfg.Swerve.MaxVelocity*cfg.Swerve.DriveTicksPerInch)
			// a module turns a full circle in a second
			add(m.SteerMotor, 360*cfg.Swerve.SteerTicksPerDegree)
		}
		imu := &imufake.IMU{}
		imu.SetConnected(false)
		hw.IMU = imu
	}
	return hw
}

func outputs(dt drivetrain.DriveTrain) string {
	switch dt := dt.(type) {
	case interface{ Setpoints() (float64, float64) }:
		left, right := dt.Setpoints()
		return fmt.Sprintf("L %.2f R %.2f", left, right)
	case *swerve.DriveTrain:
		parts := make([]string, 0, drivetrain.NumSwerveModules)
		for _, m := range dt.ModuleStates() {
			parts = append(parts, fmt.Sprintf("%s %.0f° %.2f", m.Name, m.AngleSetpoint, m.DriveSetpoint))
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
