package drivetrain

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/frcbot/control"
)

// Defaults applied to zero config values.
const (
	DefaultMaxPowerLevel     = 1.0
	DefaultForwardWeight     = 1.0
	DefaultTurnWeight        = 1.0
	DefaultHeadingCorrection = 1.0
)

// Gains are the constants of one control mode.
type Gains struct {
	P              float64 `json:"p"`
	I              float64 `json:"i"`
	D              float64 `json:"d"`
	F              float64 `json:"f"`
	IZone          float64 `json:"i_zone,omitempty"`
	MaxIAccum      float64 `json:"max_i_accum,omitempty"`
	CrossCouplingK float64 `json:"cross_coupling_k"`
}

// IsZero reports whether no PIDF constant is set.
func (g Gains) IsZero() bool {
	return g.P == 0 && g.I == 0 && g.D == 0 && g.F == 0
}

// PIDF returns the PID handler constants.
func (g Gains) PIDF() control.Gains {
	return control.Gains{P: g.P, I: g.I, D: g.D, F: g.F, IZone: g.IZone, MaxIAccum: g.MaxIAccum}
}

// ModeGains is the gain table, one set per control mode.
type ModeGains struct {
	Velocity Gains `json:"velocity"`
	Position Gains `json:"position"`
	Brake    Gains `json:"brake"`
	Path     Gains `json:"path"`
}

// For returns the gains used in mode.
func (mg ModeGains) For(mode ControlMode) Gains {
	switch mode {
	case PositionMode:
		return mg.Position
	case BrakeMode:
		return mg.Brake
	case PathMode:
		return mg.Path
	default:
		return mg.Velocity
	}
}

// TankConfig describes a tank drivetrain.
type TankConfig struct {
	LeftMotor      string   `json:"left_motor"`
	RightMotor     string   `json:"right_motor"`
	LeftFollowers  []string `json:"left_followers,omitempty"`
	RightFollowers []string `json:"right_followers,omitempty"`

	// encoder ticks per inch of travel
	TicksPerInch float64 `json:"ticks_per_inch"`
	// inches between the left and right wheels
	TrackWidth float64 `json:"track_width"`
	// encoder ticks per second at full speed
	VelocityMax float64 `json:"velocity_max"`

	MaxPowerLevel         float64   `json:"max_power_level,omitempty"`
	ForwardWeight         float64   `json:"k1,omitempty"`
	TurnWeight            float64   `json:"k2,omitempty"`
	HeadingCorrection     float64   `json:"heading_correction,omitempty"`
	CrossCouplingDeadband float64   `json:"cross_coupling_deadband,omitempty"`
	Gains                 ModeGains `json:"gains"`
	// start with closed loop control; EnablePID and DisablePID change it at runtime
	UsePID bool `json:"use_pid,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *TankConfig) Validate(path string) error {
	if cfg.LeftMotor == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "left_motor")
	}
	if cfg.RightMotor == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "right_motor")
	}
	if cfg.TicksPerInch <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "ticks_per_inch")
	}
	if cfg.TrackWidth <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "track_width")
	}
	if cfg.VelocityMax <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "velocity_max")
	}
	if cfg.MaxPowerLevel < 0 || cfg.MaxPowerLevel > control.MaxPowerLevel {
		return utils.NewConfigValidationError(path,
			errors.Errorf("max_power_level must be in (0, %v], got %v", control.MaxPowerLevel, cfg.MaxPowerLevel))
	}
	if cfg.CrossCouplingDeadband < 0 {
		return utils.NewConfigValidationError(path, errors.New("cross_coupling_deadband cannot be negative"))
	}
	return validatePIDGains(path, cfg.UsePID, cfg.Gains)
}

// validatePIDGains rejects starting closed loop with no velocity gains, which would command
// zero power for every stick input.
func validatePIDGains(path string, usePID bool, gains ModeGains) error {
	if usePID && gains.Velocity.IsZero() {
		return utils.NewConfigValidationError(path, errors.New("use_pid needs gains.velocity"))
	}
	return nil
}

// WithDefaults returns a copy with zero optional values replaced by their defaults.
func (cfg TankConfig) WithDefaults() TankConfig {
	if cfg.MaxPowerLevel == 0 {
		cfg.MaxPowerLevel = DefaultMaxPowerLevel
	}
	if cfg.ForwardWeight == 0 {
		cfg.ForwardWeight = DefaultForwardWeight
	}
	if cfg.TurnWeight == 0 {
		cfg.TurnWeight = DefaultTurnWeight
	}
	if cfg.HeadingCorrection == 0 {
		cfg.HeadingCorrection = DefaultHeadingCorrection
	}
	return cfg
}

// ModuleConfig describes one swerve module.
type ModuleConfig struct {
	Name       string `json:"name"`
	DriveMotor string `json:"drive_motor"`
	SteerMotor string `json:"steer_motor"`
	// inches from the robot centre, x forward and y left
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SwerveConfig describes a swerve drivetrain.
type SwerveConfig struct {
	Modules []ModuleConfig `json:"modules"`

	// drive encoder ticks per inch of travel
	DriveTicksPerInch float64 `json:"drive_ticks_per_inch"`
	// steer encoder ticks per degree of module rotation
	SteerTicksPerDegree float64 `json:"steer_ticks_per_degree"`
	// fastest a module may drive, inches per second
	MaxVelocity float64 `json:"max_velocity"`
	// turn rate at full turn input, degrees per second
	MaxAngularVelocity float64 `json:"max_angular_velocity"`

	HeadingCorrection float64 `json:"heading_correction,omitempty"`
	// Velocity gains run the drive motors; Position and Path gains drive x and y.
	Gains ModeGains `json:"gains"`
	// turns the robot towards a heading goal, output in degrees per second
	HeadingGains Gains `json:"heading_gains"`
	// closed loop gains loaded into the steer motor controllers
	SteerGains Gains `json:"steer_gains"`
	// start with closed loop control; EnablePID and DisablePID change it at runtime
	UsePID bool `json:"use_pid,omitempty"`
}

// NumSwerveModules is the number of modules a swerve drivetrain has.
const NumSwerveModules = 4

// Validate ensures all parts of the config are valid.
func (cfg *SwerveConfig) Validate(path string) error {
	if len(cfg.Modules) != NumSwerveModules {
		return utils.NewConfigValidationError(path,
			errors.Errorf("swerve drivetrain needs %d modules, got %d", NumSwerveModules, len(cfg.Modules)))
	}
	seen := map[string]bool{}
	for i, m := range cfg.Modules {
		modulePath := fmt.Sprintf("%s.modules.%d", path, i)
		if m.Name == "" {
			return utils.NewConfigValidationFieldRequiredError(modulePath, "name")
		}
		if seen[m.Name] {
			return utils.NewConfigValidationError(modulePath, errors.Errorf("duplicate module name %q", m.Name))
		}
		seen[m.Name] = true
		if m.DriveMotor == "" {
			return utils.NewConfigValidationFieldRequiredError(modulePath, "drive_motor")
		}
		if m.SteerMotor == "" {
			return utils.NewConfigValidationFieldRequiredError(modulePath, "steer_motor")
		}
		if m.X == 0 && m.Y == 0 {
			return utils.NewConfigValidationError(modulePath, errors.New("module cannot sit at the robot centre"))
		}
	}
	if cfg.DriveTicksPerInch <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "drive_ticks_per_inch")
	}
	if cfg.SteerTicksPerDegree <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "steer_ticks_per_degree")
	}
	if cfg.MaxVelocity <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "max_velocity")
	}
	if cfg.MaxAngularVelocity <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "max_angular_velocity")
	}
	return validatePIDGains(path, cfg.UsePID, cfg.Gains)
}

// WithDefaults returns a copy with zero optional values replaced by their defaults.
func (cfg SwerveConfig) WithDefaults() SwerveConfig {
	if cfg.HeadingCorrection == 0 {
		cfg.HeadingCorrection = DefaultHeadingCorrection
	}
	return cfg
}
