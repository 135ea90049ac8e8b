package logger

import (
	"fmt"
	"os"
	"strings"

	"perfmon-dashboard/src/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// -----------------------------------------------------------------------------

// Logger provides named, levelled logging on top of zap.
type Logger struct {
	name   string
	logger *zap.SugaredLogger
	level  zap.AtomicLevel
	exit   func(int)
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. config may be nil, in which case
// INFO is used.
func NewLogger(config *models.MConfig, name string) *Logger {
	levelName := ""
	if config != nil {
		levelName = config.LogLevel
	}
	level := zap.NewAtomicLevelAt(ParseLevel(levelName))

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		level,
	)

	return &Logger{
		name:   name,
		logger: zap.New(core).Named(name).Sugar(),
		level:  level,
		exit:   os.Exit,
	}
}

// -----------------------------------------------------------------------------

// NewNop returns a Logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{
		name:   "nop",
		logger: zap.NewNop().Sugar(),
		level:  zap.NewAtomicLevelAt(zapcore.FatalLevel),
		exit:   os.Exit,
	}
}

// -----------------------------------------------------------------------------

// ParseLevel maps the config log_level onto a zap level. Unknown values are INFO.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARNING", "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// -----------------------------------------------------------------------------

// Named returns a child logger sharing the same level.
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		name:   name,
		logger: l.logger.Desugar().Named(name).Sugar(),
		level:  l.level,
		exit:   l.exit,
	}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Errorw("CRITICAL: "+msg, "component", l.name)
	_ = l.logger.Sync()
	l.exit(1)
}

// -----------------------------------------------------------------------------

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.logger.Sync()
}
