package logger

import (
	"go.uber.org/zap"
)

var Logger *zap.SugaredLogger

// Init sets up the global logger. Debug mode switches to the development
// encoder with DEBUG level enabled.
func Init(debug bool) {
	var base *zap.Logger
	var err error

	if debug {
		base, err = zap.NewDevelopment()
	} else {
		base, err = zap.NewProduction()
	}
	if err != nil {
		base = zap.NewNop()
	}

	Logger = base.Sugar()
	zap.ReplaceGlobals(base)
}

func Info(msg string, args ...any) {
	l().Infow(msg, args...)
}

func Error(msg string, args ...any) {
	l().Errorw(msg, args...)
}

func Debug(msg string, args ...any) {
	l().Debugw(msg, args...)
}

func Warn(msg string, args ...any) {
	l().Warnw(msg, args...)
}

func Sync() {
	_ = l().Sync()
}

func l() *zap.SugaredLogger {
	if Logger == nil {
		Init(false)
	}
	return Logger
}
