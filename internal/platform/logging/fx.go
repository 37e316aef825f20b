package logging

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FxLogger routes fx lifecycle events into zap. Routine events are logged at debug level so they
// only show up with the development logger; failures are always logged at error level.
func FxLogger(logger *zap.Logger) fxevent.Logger {
	if logger == nil {
		logger = Logger()
	}
	l := &fxevent.ZapLogger{Logger: logger.Named("fx")}
	l.UseLogLevel(zapcore.DebugLevel)
	return l
}
