package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender that writes through tb.Log, so each line shows up under
// the test that produced it.
func NewTestAppender(tb testing.TB) Appender {
	return testAppender{tb}
}

func (app testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	app.tb.Helper()
	app.tb.Log(formatEntry(entry, fields))
	return nil
}

func (app testAppender) Sync() error {
	return nil
}
