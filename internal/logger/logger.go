package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Init builds the global logger. Local and development environments get human readable
// console output; everything else logs JSON.
func Init(environment string) error {
	var conf zap.Config
	switch environment {
	case "local", "development", "test":
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		level.SetLevel(zapcore.DebugLevel)
	default:
		conf = zap.NewProductionConfig()
		level.SetLevel(zapcore.InfoLevel)
		conf.EncoderConfig.TimeKey = "timestamp"
		conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	conf.Level = level

	l, err := conf.Build()
	if err != nil {
		return fmt.Errorf("conf.Build -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}

// SetLevel changes the level of the global logger at runtime.
func SetLevel(text string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(text)); err != nil {
		return fmt.Errorf("lvl.UnmarshalText -> %w", err)
	}

	level.SetLevel(lvl)

	return nil
}

// Level returns the current level of the global logger.
func Level() zapcore.Level {
	return level.Level()
}

func Named(name string) *zap.Logger {
	return zap.L().Named(name)
}
