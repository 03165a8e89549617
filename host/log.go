package host

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLog opens (truncating) the proxy log next to the client executable
// and installs it as the global zap logger. Logging must never be the
// reason the client fails to start, so an unopenable log file silently
// degrades to a nop logger.
func InitLog(path string) *zap.Logger {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		logger := zap.NewNop()
		zap.ReplaceGlobals(logger)
		return logger
	}

	encCfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "",
		NameKey:          "name",
		TimeKey:          "ts",
		EncodeTime:       bracketTimeEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(f)),
		zap.DebugLevel,
	)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)
	return logger
}

// bracketTimeEncoder writes the timestamp the log readers are used to:
// [2025-01-02 15:04:05].
func bracketTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("[2006-01-02 15:04:05]"))
}
