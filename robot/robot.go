// Package robot runs the robot loop. Every cycle it reads all sensors, decodes the operations
// for the cycle and updates every mechanism.
package robot

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/frcbot/buttonmap"
	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/components/drivetrain/swerve"
	"go.viam.com/frcbot/components/drivetrain/tank"
	"go.viam.com/frcbot/components/input"
	"go.viam.com/frcbot/components/motor"
	"go.viam.com/frcbot/components/movementsensor"
	"go.viam.com/frcbot/config"
	"go.viam.com/frcbot/driver"
	"go.viam.com/frcbot/logging"
	"go.viam.com/frcbot/mechanism"
	"go.viam.com/frcbot/utils"
)

// Hardware is what the robot is plugged into. Motors are looked up by the names the config uses.
type Hardware struct {
	Motors    map[string]motor.Motor
	IMU       movementsensor.IMU
	Joysticks input.Joysticks
}

// Options are the collaborators of a Robot. All may be nil.
type Options struct {
	Telemetry logging.Telemetry
	Clock     clock.Clock
	// replaces the config's button map
	Schema *buttonmap.Schema
	// run after the drivetrain, in order
	Mechanisms []mechanism.Mechanism
}

// A Robot owns the driver and every mechanism and runs them in a fixed order.
type Robot struct {
	cfg        *config.Config
	clock      clock.Clock
	logger     logging.Logger
	telemetry  logging.Telemetry
	driver     *driver.Driver
	driveTrain drivetrain.DriveTrain
	mechanisms []mechanism.Mechanism
	stats      *LoopStats

	mu      sync.Mutex
	mode    mechanism.Mode
	workers *utils.StoppableWorkers
}

// New builds the robot described by cfg. The button map must verify without conflicts.
func New(ctx context.Context, cfg *config.Config, hw Hardware, opts Options, logger logging.Logger) (*Robot, error) {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = logging.NewLoggerTelemetry(logger.Sublogger("telemetry"))
	}
	r := &Robot{
		cfg:       cfg,
		clock:     opts.Clock,
		logger:    logger,
		telemetry: opts.Telemetry,
		stats:     NewLoopStats(cfg.Robot.Period()),
	}

	macros, err := r.Macros()
	if err != nil {
		return nil, err
	}
	var schema buttonmap.Schema
	switch {
	case opts.Schema != nil:
		schema = *opts.Schema
	case cfg.ButtonMap != "":
		schema, err = buttonmap.ReadSchemaFile(cfg.ButtonMap, macros)
		if err != nil {
			return nil, err
		}
	default:
		schema = DefaultButtonMap(macros)
	}
	if err := buttonmap.Verify(schema, buttonmap.VerifyOptions{FailOnError: true, Logger: logger}); err != nil {
		return nil, errors.Wrap(err, "invalid button map")
	}

	r.driver, err = driver.New(schema, driver.Options{
		Joysticks: hw.Joysticks,
		Telemetry: opts.Telemetry,
		Clock:     opts.Clock,
	}, logger.Sublogger("driver"))
	if err != nil {
		return nil, err
	}

	r.driveTrain, err = r.newDriveTrain(ctx, hw)
	if err != nil {
		return nil, err
	}
	r.mechanisms = append([]mechanism.Mechanism{r.driveTrain}, opts.Mechanisms...)

	routine, err := r.AutonomousRoutine()
	if err != nil {
		return nil, err
	}
	r.driver.SetAutonomousRoutine(routine)
	return r, nil
}

func (r *Robot) newDriveTrain(ctx context.Context, hw Hardware) (drivetrain.DriveTrain, error) {
	logger := r.logger.Sublogger("drivetrain")
	switch r.cfg.Robot.DriveTrain {
	case config.TankDriveTrain:
		motors, err := tankMotors(r.cfg.Tank, hw.Motors)
		if err != nil {
			return nil, err
		}
		dt, err := tank.New(ctx, *r.cfg.Tank, motors, tank.Options{
			Operations:       r.driver,
			Telemetry:        r.telemetry,
			Clock:            r.clock,
			FailOnPowerRange: r.cfg.Robot.FailOnPowerRange,
		}, logger)
		if err != nil {
			return nil, err
		}
		return dt, nil
	case config.SwerveDriveTrain:
		modules, err := swerveModules(r.cfg.Swerve, hw.Motors)
		if err != nil {
			return nil, err
		}
		dt, err := swerve.New(ctx, *r.cfg.Swerve, modules, swerve.Options{
			Operations:       r.driver,
			IMU:              hw.IMU,
			Telemetry:        r.telemetry,
			Clock:            r.clock,
			FailOnPowerRange: r.cfg.Robot.FailOnPowerRange,
		}, logger)
		if err != nil {
			return nil, err
		}
		return dt, nil
	default:
		return nil, errors.Errorf("unknown drivetrain %q", r.cfg.Robot.DriveTrain)
	}
}

func lookupMotors(motors map[string]motor.Motor, names ...string) ([]motor.Motor, error) {
	found := make([]motor.Motor, 0, len(names))
	for _, name := range names {
		m, ok := motors[name]
		if !ok || m == nil {
			return nil, motor.NewNotFoundError(name)
		}
		found = append(found, m)
	}
	return found, nil
}

func tankMotors(cfg *drivetrain.TankConfig, motors map[string]motor.Motor) (tank.Motors, error) {
	leaders, err := lookupMotors(motors, cfg.LeftMotor, cfg.RightMotor)
	if err != nil {
		return tank.Motors{}, err
	}
	leftFollowers, err := lookupMotors(motors, cfg.LeftFollowers...)
	if err != nil {
		return tank.Motors{}, err
	}
	rightFollowers, err := lookupMotors(motors, cfg.RightFollowers...)
	if err != nil {
		return tank.Motors{}, err
	}
	return tank.Motors{
		Left:           leaders[0],
		Right:          leaders[1],
		LeftFollowers:  leftFollowers,
		RightFollowers: rightFollowers,
	}, nil
}

func swerveModules(cfg *drivetrain.SwerveConfig, motors map[string]motor.Motor) ([]swerve.Module, error) {
	modules := make([]swerve.Module, 0, len(cfg.Modules))
	for _, mc := range cfg.Modules {
		found, err := lookupMotors(motors, mc.DriveMotor, mc.SteerMotor)
		if err != nil {
			return nil, errors.Wrapf(err, "swerve module %s", mc.Name)
		}
		modules = append(modules, swerve.Module{Drive: found[0], Steer: found[1]})
	}
	return modules, nil
}

// Driver returns the robot's operation source.
func (r *Robot) Driver() *driver.Driver {
	return r.driver
}

// DriveTrain returns the robot's drivetrain.
func (r *Robot) DriveTrain() drivetrain.DriveTrain {
	return r.driveTrain
}

// Stats returns the loop statistics.
func (r *Robot) Stats() *LoopStats {
	return r.stats
}

// SetMode sets the mode the loop runs cycles in.
func (r *Robot) SetMode(mode mechanism.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mode != r.mode {
		r.logger.Infow("robot mode changed", "from", r.mode.String(), "to", mode.String())
	}
	r.mode = mode
}

// Mode returns the mode the loop runs cycles in.
func (r *Robot) Mode() mechanism.Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Cycle runs one cycle in mode: every ReadSensors, then the driver, then every Update. A
// mechanism whose sensors could not be read is stopped for the cycle instead of updated.
func (r *Robot) Cycle(ctx context.Context, mode mechanism.Mode) error {
	var err error
	stale := make([]bool, len(r.mechanisms))
	for i, m := range r.mechanisms {
		if readErr := m.ReadSensors(ctx); readErr != nil {
			stale[i] = true
			err = multierr.Combine(err, readErr)
		}
	}
	err = multierr.Combine(err, r.driver.Update(ctx, mode))
	for i, m := range r.mechanisms {
		if stale[i] {
			err = multierr.Combine(err, m.Stop(ctx))
			continue
		}
		err = multierr.Combine(err, m.Update(ctx, mode))
	}
	return err
}

// Start runs cycles in the background at the configured frequency until Close.
func (r *Robot) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.workers != nil {
		return
	}
	r.workers = utils.NewStoppableWorkers(ctx, r.loop)
}

func (r *Robot) loop(ctx context.Context) {
	ticker := r.clock.Ticker(r.cfg.Robot.Period())
	defer ticker.Stop()
	lastReport := r.clock.Now()
	r.logger.CInfow(ctx, "robot loop started", "period", r.cfg.Robot.Period())
	var cycle uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		cycle++
		cycleCtx := logging.WithCycle(ctx, cycle)
		start := r.clock.Now()
		if err := r.Cycle(cycleCtx, r.Mode()); err != nil {
			r.logger.CErrorw(cycleCtx, "cycle failed", "error", err)
		}
		r.stats.Record(r.clock.Since(start))
		if r.clock.Since(lastReport) >= r.cfg.Robot.StatsInterval {
			r.stats.Report(ctx, r.telemetry, r.logger)
			lastReport = r.clock.Now()
		}
	}
}

// Close stops the loop, cancels everything the driver runs and stops every mechanism.
func (r *Robot) Close(ctx context.Context) error {
	r.mu.Lock()
	workers := r.workers
	r.workers = nil
	r.mu.Unlock()
	if workers != nil {
		workers.Stop()
	}

	err := r.driver.Update(ctx, mechanism.Disabled)
	for _, m := range r.mechanisms {
		err = multierr.Combine(err, m.Stop(ctx))
	}
	return err
}
