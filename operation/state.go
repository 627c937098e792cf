package operation

// Reader is the read surface every mechanism uses once per cycle.
type Reader interface {
	GetDigital(op DigitalOperation) bool
	GetAnalog(op AnalogOperation) float64
}

// Writer is handed to whoever produces operation values for a cycle: the teleop decoder or a
// running task.
type Writer interface {
	SetDigital(op DigitalOperation, value bool)
	SetAnalog(op AnalogOperation, value float64)
}

// ReadWriter groups Reader and Writer.
type ReadWriter interface {
	Reader
	Writer
}

// State is the table of current operation values. The zero State has every digital operation
// false and every analog operation 0.
type State struct {
	digital [numDigitalOperations]bool
	analog  [numAnalogOperations]float64
}

// GetDigital returns the value of a digital operation.
func (s *State) GetDigital(op DigitalOperation) bool {
	if op >= numDigitalOperations {
		return false
	}
	return s.digital[op]
}

// GetAnalog returns the value of an analog operation.
func (s *State) GetAnalog(op AnalogOperation) float64 {
	if op >= numAnalogOperations {
		return 0
	}
	return s.analog[op]
}

// SetDigital sets the value of a digital operation.
func (s *State) SetDigital(op DigitalOperation, value bool) {
	if op < numDigitalOperations {
		s.digital[op] = value
	}
}

// SetAnalog sets the value of an analog operation.
func (s *State) SetAnalog(op AnalogOperation, value float64) {
	if op < numAnalogOperations {
		s.analog[op] = value
	}
}

// Reset returns every operation to its zero value.
func (s *State) Reset() {
	*s = State{}
}

// restrictedWriter only lets writes to owned operations through.
type restrictedWriter struct {
	target Writer
	owned  map[Operation]struct{}
}

// RestrictWriter returns a Writer that silently drops writes to any operation outside owned.
// Running macros write through one of these so they cannot touch operations they did not
// declare.
func RestrictWriter(target Writer, owned []Operation) Writer {
	rw := &restrictedWriter{target: target, owned: make(map[Operation]struct{}, len(owned))}
	for _, op := range owned {
		rw.owned[op] = struct{}{}
	}
	return rw
}

func (rw *restrictedWriter) SetDigital(op DigitalOperation, value bool) {
	if _, ok := rw.owned[op]; ok {
		rw.target.SetDigital(op, value)
	}
}

func (rw *restrictedWriter) SetAnalog(op AnalogOperation, value float64) {
	if _, ok := rw.owned[op]; ok {
		rw.target.SetAnalog(op, value)
	}
}
