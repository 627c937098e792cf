package drivetrain

// Telemetry keys.
const (
	KeyMode          = "DriveTrainMode"
	KeyUsePID        = "DriveTrainUsePID"
	KeyLeftVelocity  = "DriveTrainLeftVelocity"
	KeyRightVelocity = "DriveTrainRightVelocity"
	KeyLeftPosition  = "DriveTrainLeftPosition"
	KeyRightPosition = "DriveTrainRightPosition"
	KeyLeftError     = "DriveTrainLeftError"
	KeyRightError    = "DriveTrainRightError"
	KeyLeftSetpoint  = "DriveTrainLeftSetpoint"
	KeyRightSetpoint = "DriveTrainRightSetpoint"
	KeyXPosition     = "DriveTrainXPosition"
	KeyYPosition     = "DriveTrainYPosition"
	KeyAngle         = "DriveTrainAngle"
	KeyIMUConnected  = "DriveTrainIMUConnected"
)
