package main

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Log(format string, args ...any)
}

// moduleLogger adapts a zap logger to the printf-style Logger the workflow uses.
type moduleLogger struct {
	s *zap.SugaredLogger
}

func newModuleLogger(zl *zap.Logger) *moduleLogger {
	return &moduleLogger{s: zl.Sugar()}
}

func (m *moduleLogger) Log(format string, args ...any) {
	m.s.Infof(format, args...)
}

// jobLogger wraps a logger with a job ID prefix.
type jobLogger struct {
	id   string
	base Logger
}

func (j *jobLogger) Log(format string, args ...any) {
	j.base.Log("[%s] "+format, append([]any{j.id}, args...)...)
}

type nopLogger struct{}

func (nopLogger) Log(string, ...any) {}

// setupLogging tees structured console output to stderr and an append-only log file.
func setupLogging(path string, verbose bool) (*zap.Logger, *os.File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(io.MultiWriter(os.Stderr, file)),
		level,
	)
	return zap.New(core), file, nil
}
