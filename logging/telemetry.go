package logging

import (
	"sort"
	"sync"
)

// Telemetry is a fire-and-forget sink for per-cycle robot state. Values are never read back by
// the control code.
type Telemetry interface {
	LogNumber(key string, value float64)
	LogBoolean(key string, value bool)
	LogString(key, value string)
}

// NewLoggerTelemetry returns a Telemetry that writes every value as a debug log line on the
// given logger.
func NewLoggerTelemetry(logger Logger) Telemetry {
	return &loggerTelemetry{logger: logger}
}

type loggerTelemetry struct {
	logger Logger
}

func (lt *loggerTelemetry) LogNumber(key string, value float64) {
	lt.logger.Debugw("telemetry", "key", key, "value", value)
}

func (lt *loggerTelemetry) LogBoolean(key string, value bool) {
	lt.logger.Debugw("telemetry", "key", key, "value", value)
}

func (lt *loggerTelemetry) LogString(key, value string) {
	lt.logger.Debugw("telemetry", "key", key, "value", value)
}

// MemoryTelemetry keeps the most recent value written for every key.
type MemoryTelemetry struct {
	mu       sync.Mutex
	numbers  map[string]float64
	booleans map[string]bool
	strings  map[string]string
}

// NewMemoryTelemetry returns an empty MemoryTelemetry.
func NewMemoryTelemetry() *MemoryTelemetry {
	return &MemoryTelemetry{
		numbers:  map[string]float64{},
		booleans: map[string]bool{},
		strings:  map[string]string{},
	}
}

// LogNumber records a number.
func (mt *MemoryTelemetry) LogNumber(key string, value float64) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.numbers[key] = value
}

// LogBoolean records a boolean.
func (mt *MemoryTelemetry) LogBoolean(key string, value bool) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.booleans[key] = value
}

// LogString records a string.
func (mt *MemoryTelemetry) LogString(key, value string) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.strings[key] = value
}

// Number returns the last number logged under key.
func (mt *MemoryTelemetry) Number(key string) (float64, bool) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	v, ok := mt.numbers[key]
	return v, ok
}

// Boolean returns the last boolean logged under key.
func (mt *MemoryTelemetry) Boolean(key string) (bool, bool) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	v, ok := mt.booleans[key]
	return v, ok
}

// String returns the last string logged under key.
func (mt *MemoryTelemetry) String(key string) (string, bool) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	v, ok := mt.strings[key]
	return v, ok
}

// Keys returns every key that has been logged, sorted.
func (mt *MemoryTelemetry) Keys() []string {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	keys := make([]string, 0, len(mt.numbers)+len(mt.booleans)+len(mt.strings))
	for k := range mt.numbers {
		keys = append(keys, k)
	}
	for k := range mt.booleans {
		keys = append(keys, k)
	}
	for k := range mt.strings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TeeTelemetry fans every value out to all of the given sinks.
func TeeTelemetry(sinks ...Telemetry) Telemetry {
	return teeTelemetry(sinks)
}

type teeTelemetry []Telemetry

func (tt teeTelemetry) LogNumber(key string, value float64) {
	for _, s := range tt {
		s.LogNumber(key, value)
	}
}

func (tt teeTelemetry) LogBoolean(key string, value bool) {
	for _, s := range tt {
		s.LogBoolean(key, value)
	}
}

func (tt teeTelemetry) LogString(key, value string) {
	for _, s := range tt {
		s.LogString(key, value)
	}
}
