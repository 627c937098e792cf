package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TimeFormat is the timestamp layout of console lines.
const TimeFormat = "2006-01-02T15:04:05.000Z0700"

// Appender receives every entry a logger writes. Any zapcore.Core satisfies it.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes one tab separated line per entry.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender returns a ConsoleAppender on stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender returns a ConsoleAppender on w.
func NewWriterAppender(w io.Writer) ConsoleAppender {
	return ConsoleAppender{w}
}

// Write writes the entry as a single line.
func (app ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	_, err := fmt.Fprintln(app.Writer, formatEntry(entry, fields))
	return err
}

// Sync does nothing; lines are not buffered.
func (app ConsoleAppender) Sync() error {
	return nil
}

// formatEntry lays out time, level, logger name, caller, message and the fields as one json
// object in the order they were given.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) string {
	parts := []string{
		entry.Time.Format(TimeFormat),
		strings.ToUpper(entry.Level.String()),
		entry.LoggerName,
	}
	if entry.Caller.Defined {
		parts = append(parts, entry.Caller.TrimmedPath())
	}
	parts = append(parts, entry.Message)
	if len(fields) > 0 {
		enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
		if buf, err := enc.EncodeEntry(zapcore.Entry{}, fields); err == nil {
			parts = append(parts, buf.String())
			buf.Free()
		}
	}
	return strings.Join(parts, "\t")
}
