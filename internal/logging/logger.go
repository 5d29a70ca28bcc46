// Package logging builds the zap loggers used by the commands.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New initializes the logger with the specified level and log file names.
// Without file names the log goes to stderr.
func New(level string, logfileName ...string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))

	outputPath := []string{"stderr"}
	for _, item := range logfileName {
		if item != "" {
			outputPath = append(outputPath, item)
		}
	}

	config.OutputPaths = outputPath
	config.ErrorOutputPaths = outputPath
	config.EncoderConfig.TimeKey = "t"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	config.DisableCaller = false

	return config.Build()
}

// Must is New that never fails: when the configured outputs cannot be
// opened it logs to stderr only and says why.
func Must(level string, logfileName ...string) *zap.Logger {
	logger, err := New(level, logfileName...)
	if err != nil {
		return fallback(level, zapcore.Lock(os.Stderr), err)
	}
	return logger
}

func fallback(level string, out zapcore.WriteSyncer, cause error) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "t"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), out, parseLevel(level))
	logger := zap.New(core, zap.AddCaller())
	logger.Warn("Failed to open log outputs, logging to stderr only", zap.Error(cause))
	return logger
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
