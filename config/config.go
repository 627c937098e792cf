// Package config defines the structures to configure a robot and reads them from files.
package config

import (
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/logging"
)

// DriveTrainKind selects which drivetrain the robot carries.
type DriveTrainKind string

// Drivetrain kinds.
const (
	TankDriveTrain   DriveTrainKind = "tank"
	SwerveDriveTrain DriveTrainKind = "swerve"
)

// Defaults applied to zero config values.
const (
	DefaultFrequency     = 50.0
	DefaultStatsInterval = 10 * time.Second
)

// Config describes a robot: its loop, its drivetrain and its button map.
type Config struct {
	Robot  RobotConfig              `json:"robot"`
	Tank   *drivetrain.TankConfig   `json:"tank,omitempty"`
	Swerve *drivetrain.SwerveConfig `json:"swerve,omitempty"`

	// path to a button map file, relative to the config file. Empty uses the built-in map.
	ButtonMap string `json:"button_map,omitempty"`
}

// RobotConfig configures the robot loop.
type RobotConfig struct {
	Name string `json:"name,omitempty"`
	// cycles per second
	Frequency        float64        `json:"frequency_hz,omitempty"`
	FailOnPowerRange bool           `json:"fail_on_power_range,omitempty"`
	DriveTrain       DriveTrainKind `json:"drivetrain"`
	// how often loop statistics are logged
	StatsInterval time.Duration `json:"stats_interval,omitempty"`
	LogLevel      string        `json:"log_level,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (rc *RobotConfig) Validate(path string) error {
	if rc.Frequency < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("frequency_hz cannot be negative, got %v", rc.Frequency))
	}
	if rc.StatsInterval < 0 {
		return utils.NewConfigValidationError(path, errors.New("stats_interval cannot be negative"))
	}
	switch rc.DriveTrain {
	case TankDriveTrain, SwerveDriveTrain:
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "drivetrain")
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown drivetrain %q", rc.DriveTrain))
	}
	if rc.LogLevel != "" {
		if _, err := logging.LevelFromString(rc.LogLevel); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	return nil
}

// Period returns the time between two cycles.
func (rc RobotConfig) Period() time.Duration {
	return time.Duration(float64(time.Second) / rc.Frequency)
}

// Level returns the configured log level, Info if none.
func (rc RobotConfig) Level() logging.Level {
	level, err := logging.LevelFromString(rc.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// Ensure validates the config and fills in defaults. It is called by every reader.
func (c *Config) Ensure() error {
	if err := c.Robot.Validate("robot"); err != nil {
		return err
	}
	switch c.Robot.DriveTrain {
	case TankDriveTrain:
		if c.Tank == nil {
			return utils.NewConfigValidationFieldRequiredError("", "tank")
		}
		if err := c.Tank.Validate("tank"); err != nil {
			return err
		}
		tank := c.Tank.WithDefaults()
		c.Tank = &tank
	case SwerveDriveTrain:
		if c.Swerve == nil {
			return utils.NewConfigValidationFieldRequiredError("", "swerve")
		}
		if err := c.Swerve.Validate("swerve"); err != nil {
			return err
		}
		swerve := c.Swerve.WithDefaults()
		c.Swerve = &swerve
	}

	if c.Robot.Frequency == 0 {
		c.Robot.Frequency = DefaultFrequency
	}
	if c.Robot.StatsInterval == 0 {
		c.Robot.StatsInterval = DefaultStatsInterval
	}
	return nil
}
