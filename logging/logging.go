package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the logger flavour.
type Options struct {
	Dev   bool
	Level string
	// File enables JSON output to a rotated file in addition to the console.
	File string
}

// Setup builds the process logger and installs it as the zap global.
func Setup(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	var logger *zap.Logger
	if opts.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
		}
		consoleEnc := zap.NewProductionEncoderConfig()
		if opts.Dev {
			consoleEnc = zap.NewDevelopmentEncoderConfig()
		}
		core := zapcore.NewTee(
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotated), level),
			zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.Lock(os.Stdout), level),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		cfg := zap.NewProductionConfig()
		if opts.Dev {
			cfg = zap.NewDevelopmentConfig()
		}
		cfg.Level = level
		var err error
		logger, err = cfg.Build(zap.AddCaller())
		if err != nil {
			return nil, err
		}
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
