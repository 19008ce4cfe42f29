// Package stride provides lazy, depth-first file tree traversal with symbolic link
// loop detection. A single stack-based Walker backs two consumption styles: pull
// based sequences (Walk, Find, List) and visitor callbacks (WalkTree).
package stride

import (
	"math"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Unlimited is the max depth that never cuts a traversal short.
const Unlimited = math.MaxInt

// LogLevel defines the verbosity of logging.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// WalkOptions configures a traversal. The zero value walks the host file system
// without following symbolic links and logs errors only.
type WalkOptions struct {
	FollowLinks bool       // Follow symbolic links, with loop detection
	FS          FileSystem // Storage to traverse; defaults to OSFS
	Logger      *zap.Logger
	LogLevel    LogLevel // Used when Logger is nil
}

func (o WalkOptions) fileSystem() FileSystem {
	if o.FS == nil {
		return OSFS{}
	}
	return o.FS
}

func (o WalkOptions) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return createLogger(o.LogLevel)
}

// createLogger creates a zap logger with the specified log level.
func createLogger(level LogLevel) *zap.Logger {
	var config zap.Config

	switch level {
	case LogLevelError:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case LogLevelWarn:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case LogLevelInfo:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case LogLevelDebug:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// NewLogger exposes createLogger for callers that want to share one logger
// across several traversals.
func NewLogger(level LogLevel) *zap.Logger {
	return createLogger(level)
}
