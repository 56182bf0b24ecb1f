// Package logging provides the pipeline's explicit logger contract.
//
// The original tool kept a thread-static "current logger"; this port
// passes a Logger explicitly into the orchestrator and every component
// that can emit a warning, per the design note in SPEC_FULL.md.
package logging

import (
	"fmt"
	"log"
	"os"
)

// Level is a log record severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Record is a single structured log entry.
type Record struct {
	Category string // e.g. "smoothing", "junction", "codec"
	Message  string
	EntityID string // optional: spline id, junction id, material name
	Level    Level
}

// Logger receives structured records from pipeline components.
type Logger interface {
	Log(r Record)
}

// StdLogger writes records to a stdlib *log.Logger, one line per record.
// This is the default sink; the pack carries no structured-logging
// dependency, so the default logger stays on the standard library (see
// DESIGN.md).
type StdLogger struct {
	out *log.Logger
}

// NewStdLogger builds a StdLogger writing to os.Stderr.
func NewStdLogger() *StdLogger {
	return &StdLogger{out: log.New(os.Stderr, "", log.LstdFlags)}
}

func (l *StdLogger) Log(r Record) {
	if r.EntityID != "" {
		l.out.Printf("[%s] %s: %s (%s)", r.Level, r.Category, r.Message, r.EntityID)
		return
	}
	l.out.Printf("[%s] %s: %s", r.Level, r.Category, r.Message)
}

// Nop discards every record. Useful in tests.
type Nop struct{}

func (Nop) Log(Record) {}

// Warnf is a convenience helper used throughout the pipeline to emit a
// warn-level record without constructing a Record literal at every call site.
func Warnf(l Logger, category, entityID, format string, args ...any) {
	if l == nil {
		return
	}
	l.Log(Record{Level: LevelWarn, Category: category, EntityID: entityID, Message: fmt.Sprintf(format, args...)})
}

// Infof is the info-level equivalent of Warnf.
func Infof(l Logger, category, entityID, format string, args ...any) {
	if l == nil {
		return
	}
	l.Log(Record{Level: LevelInfo, Category: category, EntityID: entityID, Message: fmt.Sprintf(format, args...)})
}
