package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/princinho/catalogviewer/config"
)

// New builds the application logger. Development mode gets a console encoder
// with debug level regardless of LOGGER_LEVEL.
func New(cfg *config.Config) *zap.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Logger.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = cfg.Logger.Encoding
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Encoding = "console"
		level.SetLevel(zapcore.DebugLevel)
	}
	if zcfg.Encoding != "json" && zcfg.Encoding != "console" {
		zcfg.Encoding = "json"
	}
	zcfg.Level = level
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
