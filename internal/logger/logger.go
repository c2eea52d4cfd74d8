// Copyright 2026 The Mirrorfs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the structured diagnostics stream used for both
// the per-operation log (when log_operations is enabled) and the
// equivalence-divergence diagnostics emitted by the equivalence checker.
//
// It layers five severities (TRACE, DEBUG, INFO, WARNING, ERROR) on top of
// log/slog, which only defines four, and writes to stderr as either
// human-readable text or JSON.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Severity levels, ordered least to most severe. DEBUG, INFO, WARNING and
// ERROR are slog's built-in levels; TRACE is the one custom level, placed
// below slog.LevelDebug with the same spacing of 4 that slog uses between
// its own levels.
const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
)

const (
	TRACE   = "TRACE"
	DEBUG   = "DEBUG"
	INFO    = "INFO"
	WARNING = "WARNING"
	ERROR   = "ERROR"
	OFF     = "OFF"
)

var severityNames = map[slog.Level]string{
	LevelTrace: TRACE,
	LevelDebug: DEBUG,
	LevelInfo:  INFO,
	LevelWarn:  WARNING,
	LevelError: ERROR,
}

type loggerFactory struct {
	format string // "text" or "json"
}

func (f *loggerFactory) createJSONOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.LevelKey:
				lvl, _ := a.Value.Any().(slog.Level)
				name, ok := severityNames[lvl]
				if !ok {
					name = lvl.String()
				}
				return slog.String("severity", name)
			case slog.MessageKey:
				return slog.String("message", prefix+a.Value.String())
			case slog.TimeKey:
				return slog.String(a.Key, a.Value.Time().Format("01/02 15:04:05.000000"))
			}
			return a
		},
	}
	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

var (
	mu                   sync.Mutex
	defaultLoggerFactory = &loggerFactory{format: "text"}
	defaultLevel         = new(slog.LevelVar)
	defaultLogger        = slog.New(defaultLoggerFactory.createJSONOrTextHandler(os.Stderr, defaultLevel, ""))
)

// SetLogFormat selects "text" or "json" output for every subsequent log
// line. Anything else is treated as "text".
func SetLogFormat(format string) {
	mu.Lock()
	defer mu.Unlock()
	defaultLoggerFactory.format = format
	defaultLogger = slog.New(defaultLoggerFactory.createJSONOrTextHandler(os.Stderr, defaultLevel, ""))
}

// SetLevel sets the minimum severity that is actually emitted. Valid values
// are TRACE, DEBUG, INFO, WARNING, ERROR, OFF; anything else is treated as
// INFO.
func SetLevel(severity string) {
	mu.Lock()
	defer mu.Unlock()
	setLoggingLevel(severity, defaultLevel)
}

func setLoggingLevel(severity string, level *slog.LevelVar) {
	switch severity {
	case TRACE:
		level.Set(LevelTrace)
	case DEBUG:
		level.Set(LevelDebug)
	case INFO:
		level.Set(LevelInfo)
	case WARNING:
		level.Set(LevelWarn)
	case ERROR:
		level.Set(LevelError)
	case OFF:
		// One above ERROR so nothing at all is emitted.
		level.Set(LevelError + 1)
	default:
		level.Set(LevelInfo)
	}
}

func log(ctx context.Context, level slog.Level, format string, v ...any) {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if !l.Enabled(ctx, level) {
		return
	}
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}
	l.Log(ctx, level, msg)
}

// Tracef logs at TRACE severity.
func Tracef(format string, v ...any) { log(context.Background(), LevelTrace, format, v...) }

// Debugf logs at DEBUG severity.
func Debugf(format string, v ...any) { log(context.Background(), LevelDebug, format, v...) }

// Infof logs at INFO severity.
func Infof(format string, v ...any) { log(context.Background(), LevelInfo, format, v...) }

// Info logs a single message at INFO severity with no formatting.
func Info(msg string) { log(context.Background(), LevelInfo, msg) }

// Warnf logs at WARNING severity.
func Warnf(format string, v ...any) { log(context.Background(), LevelWarn, format, v...) }

// Errorf logs at ERROR severity.
func Errorf(format string, v ...any) { log(context.Background(), LevelError, format, v...) }
