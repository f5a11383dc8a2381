package logger

import (
	"AuthService/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"os"
)

func levelFromString(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New создает zap логгер: в dev режиме человекочитаемый, иначе json в stdout
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	level := levelFromString(cfg.Level)
	if cfg.Dev {
		developmentConfig := zap.NewDevelopmentConfig()
		developmentConfig.Level = zap.NewAtomicLevelAt(level)
		return developmentConfig.Build()
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
