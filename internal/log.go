package internal

import (
	"sync"

	"go.uber.org/zap"
)

type logger struct {
	debug bool
	*zap.SugaredLogger
}

var (
	Logger *logger
	once   sync.Once
)

// InitLogger builds the process logger. Only the first call has an effect.
func InitLogger(debug bool) *logger {
	once.Do(func() {
		Logger = newLogger(debug)
	})
	return Logger
}

// SetLogger replaces the process logger, typically with an observing one in
// tests. Later InitLogger calls keep it.
func SetLogger(base *zap.Logger, debug bool) {
	once.Do(func() {})
	Logger = &logger{
		debug:         debug,
		SugaredLogger: base.Sugar(),
	}
}

func GetLogger() *logger {
	return InitLogger(false)
}

func newLogger(debug bool) *logger {
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
	return &logger{
		debug:         debug,
		SugaredLogger: base.Sugar(),
	}
}

func (l *logger) IsDebug() bool {
	return l.debug
}
