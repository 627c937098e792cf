package motor

import "github.com/pkg/errors"

// NewUnsupportedModeError returns an error for a control mode a motor cannot run in.
func NewUnsupportedModeError(motorName string, mode ControlMode) error {
	return errors.Errorf("motor %s does not support control mode %s", motorName, mode)
}

// NewFollowUnsupportedError returns an error for a leader a motor cannot follow.
func NewFollowUnsupportedError(motorName string, leader Motor) error {
	return errors.Errorf("motor %s cannot follow a %T", motorName, leader)
}

// NewInvalidSlotError returns an error for a PIDF slot outside the controller's slots.
func NewInvalidSlotError(motorName string, slot int) error {
	return errors.Errorf("motor %s has no PIDF slot %d", motorName, slot)
}

// NewNotFoundError returns an error for a motor name nothing is plugged in as.
func NewNotFoundError(motorName string) error {
	return errors.Errorf("motor %q not found", motorName)
}
