package utils

import (
	"github.com/pkg/errors"
)

// NewUnknownNameError is used when a name does not match any member of a closed set, e.g. an
// operation name in a button map file.
func NewUnknownNameError(kind, name string) error {
	return errors.Errorf("unknown %s %q", kind, name)
}
