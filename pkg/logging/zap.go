/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"fmt"

	"go.uber.org/zap"
)

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger adapts a *zap.Logger to the Logger interface. Key/value pairs
// are passed through as structured fields.
func NewZapLogger(logger *zap.Logger) Logger {
	return &zapLogger{
		sugar: logger.Sugar(),
	}
}

func (zl *zapLogger) Log(level LogLevel, text string, args ...interface{}) {
	kvs := make([]interface{}, 0, len(args)+1)
	for i := 0; i < len(args); i += 2 {
		kvs = append(kvs, fmt.Sprint(args[i]))
		if i+1 < len(args) {
			kvs = append(kvs, args[i+1])
		} else {
			kvs = append(kvs, "%MISSING%")
		}
	}

	switch level {
	case LevelDebug:
		zl.sugar.Debugw(text, kvs...)
	case LevelInfo:
		zl.sugar.Infow(text, kvs...)
	case LevelWarn:
		zl.sugar.Warnw(text, kvs...)
	default:
		zl.sugar.Errorw(text, kvs...)
	}
}

// NewZapConfig returns a development zap configuration at the given level.
func NewZapConfig(level LogLevel) zap.Config {
	cfg := zap.NewDevelopmentConfig()
	switch level {
	case LevelDebug:
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case LevelInfo:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case LevelWarn:
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return cfg
}
