// Package ulogger is the leveled logger shared by the dump tool and its packages.
package ulogger

import (
	"io"
	"os"
)

// Logger is the logging surface every component depends on.
type Logger interface {
	LogLevel() string
	SetLogLevel(level string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	New(service string, options ...Option) Logger
}

// Options holds logger construction settings.
type Options struct {
	logLevel string
	writer   io.Writer
	pretty   bool
}

// Option changes one logger setting.
type Option func(*Options)

// DefaultOptions logs at INFO to stderr with the console format.
func DefaultOptions() *Options {
	return &Options{
		logLevel: "INFO",
		writer:   os.Stderr,
		pretty:   true,
	}
}

// WithLevel sets the minimum level (DEBUG, INFO, WARN, ERROR, FATAL).
func WithLevel(level string) Option {
	return func(o *Options) {
		o.logLevel = level
	}
}

// WithWriter sets the log destination.
func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.writer = w
	}
}

// WithPretty switches between the console format and JSON lines.
func WithPretty(pretty bool) Option {
	return func(o *Options) {
		o.pretty = pretty
	}
}

// New returns a zerolog backed Logger for service.
func New(service string, options ...Option) Logger {
	return NewZeroLogger(service, options...)
}
