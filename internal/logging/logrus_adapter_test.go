package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	logrusLogger := logrus.New()
	var buf bytes.Buffer
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetLevel(level)
	logrusLogger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return NewLogrusAdapterFromLogger(logrusLogger), &buf
}

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{
			name:        "debug level with text format",
			level:       "debug",
			format:      "text",
			expectLevel: logrus.DebugLevel,
		},
		{
			name:        "info level with json format",
			level:       "info",
			format:      "json",
			expectLevel: logrus.InfoLevel,
		},
		{
			name:        "upper case level is accepted",
			level:       "WARN",
			format:      "text",
			expectLevel: logrus.WarnLevel,
		},
		{
			name:        "invalid level defaults to info",
			level:       "invalid",
			format:      "text",
			expectLevel: logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			require.NotNil(t, logger)

			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			if tt.format == "json" {
				_, ok := adapter.logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "formatter should be JSONFormatter")
			} else {
				_, ok := adapter.logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "formatter should be TextFormatter")
			}
		})
	}
}

func TestNewLogrusAdapterFromLogger(t *testing.T) {
	t.Run("with existing logger", func(t *testing.T) {
		existingLogger := logrus.New()
		existingLogger.SetLevel(logrus.DebugLevel)

		logger := NewLogrusAdapterFromLogger(existingLogger)
		adapter, ok := logger.(*LogrusAdapter)
		require.True(t, ok)
		assert.Equal(t, existingLogger, adapter.logger)
	})

	t.Run("with nil logger creates new one", func(t *testing.T) {
		logger := NewLogrusAdapterFromLogger(nil)
		adapter, ok := logger.(*LogrusAdapter)
		require.True(t, ok)
		assert.NotNil(t, adapter.logger)
	})
}

func TestLogrusAdapter_LoggingMethods(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(Logger, string, ...Field)
		message string
		fields  []Field
	}{
		{
			name:    "Debug with fields",
			logFunc: func(l Logger, msg string, fields ...Field) { l.Debug(msg, fields...) },
			message: "refreshing catalog",
			fields:  []Field{{Key: FieldKind, Value: "task"}},
		},
		{
			name:    "Info with fields",
			logFunc: func(l Logger, msg string, fields ...Field) { l.Info(msg, fields...) },
			message: "task recorded",
			fields:  []Field{{Key: FieldActor, Value: "Nathan"}},
		},
		{
			name:    "Warn with fields",
			logFunc: func(l Logger, msg string, fields ...Field) { l.Warn(msg, fields...) },
			message: "bounty row not removed",
			fields:  []Field{{Key: FieldBounty, Value: "Clean kitchen"}},
		},
		{
			name:    "Error with fields",
			logFunc: func(l Logger, msg string, fields ...Field) { l.Error(msg, fields...) },
			message: "append failed",
			fields:  []Field{{Key: FieldTable, Value: "Transactions"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferedAdapter(logrus.DebugLevel)

			tt.logFunc(logger, tt.message, tt.fields...)

			output := buf.String()
			assert.Contains(t, output, tt.message)
			assert.Contains(t, output, tt.fields[0].Key)
		})
	}
}

func TestLogrusAdapter_ChainedCalls(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)
	testErr := errors.New("sheet unavailable")

	logger.
		WithField(FieldActor, "alice").
		WithFields(F(FieldOperation, "spend")).
		WithError(testErr).
		Error("operation failed")

	output := buf.String()
	assert.Contains(t, output, "operation failed")
	assert.Contains(t, output, "alice")
	assert.Contains(t, output, "spend")
	assert.Contains(t, output, "sheet unavailable")
}

func TestLogrusAdapter_SetLevel(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)
	setter, ok := logger.(LevelSetter)
	require.True(t, ok, "LogrusAdapter should implement LevelSetter")

	logger.Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	require.NoError(t, setter.SetLevel("debug"))
	assert.Equal(t, "debug", setter.Level())

	// derived loggers share the level
	logger.WithField(FieldCommand, "record").Debug("visible")
	assert.Contains(t, buf.String(), "visible")

	assert.Error(t, setter.SetLevel("loud"))
	assert.Equal(t, "debug", setter.Level())
}

func TestLogrusAdapter_Fatalf(t *testing.T) {
	logrusLogger := logrus.New()
	var buf bytes.Buffer
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	exitCode := -1
	logrusLogger.ExitFunc = func(code int) { exitCode = code }

	NewLogrusAdapterFromLogger(logrusLogger).Fatalf("taskmaster: %v", errors.New("boom"))

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, buf.String(), "level=fatal")
	assert.Contains(t, buf.String(), "taskmaster: boom")
}

func TestConvertFields(t *testing.T) {
	logrusFields := convertFields([]Field{
		{Key: "key1", Value: "value1"},
		{Key: "key2", Value: 42},
	})

	assert.Len(t, logrusFields, 2)
	assert.Equal(t, "value1", logrusFields["key1"])
	assert.Equal(t, 42, logrusFields["key2"])
	assert.Len(t, convertFields(nil), 0)
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("nothing to see") })
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ LevelSetter = (*LogrusAdapter)(nil)
}
