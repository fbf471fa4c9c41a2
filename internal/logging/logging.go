// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging configures the global zap logger.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel is the environment variable that overrides the level passed
// to Init.
const EnvLevel = "BENCHMEASURE_LOG_LEVEL"

// ParseLevel converts a level name such as "debug" or "WARN" to a
// zapcore.Level. "V<n>" selects verbosity n below debug. Unknown names
// select info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	}
	if v, ok := strings.CutPrefix(strings.ToUpper(level), "V"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return zapcore.Level(-n)
		}
	}
	return zapcore.InfoLevel
}

// Init replaces the global logger with one writing errors to stderr
// and everything else to stdout. Output is human-readable when stdout
// is a terminal and JSON otherwise. Entries at error level and above
// carry a stack trace. It returns a function that flushes the logger.
func Init(level string, stdout, stderr io.Writer) func() {
	if env := os.Getenv(EnvLevel); env != "" {
		level = env
	}
	logger := New(ParseLevel(level), stdout, stderr)
	undo := zap.ReplaceGlobals(logger.Named("benchmeasure"))
	return func() {
		_ = logger.Sync()
		undo()
	}
}

// New returns a logger as described for Init.
func New(minLevel zapcore.Level, stdout, stderr io.Writer) *zap.Logger {
	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.TimeKey = "@timestamp"
	encoderConf.MessageKey = "message"
	encoderConf.LevelKey = "log.level"
	encoderConf.NameKey = "log.logger"
	encoderConf.StacktraceKey = "error.stack_trace"
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if isTerminal(stdout) {
		encoderConf.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConf)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConf)
	}

	level := zap.NewAtomicLevelAt(minLevel)
	errorPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return level.Enabled(lvl) && lvl >= zapcore.ErrorLevel
	})
	infoPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return level.Enabled(lvl) && lvl < zapcore.ErrorLevel
	})
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(stderr)), errorPriority),
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(stdout)), infoPriority),
	)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
