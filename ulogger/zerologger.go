package ulogger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const (
	colorRed    = 31
	colorGreen  = 32
	colorYellow = 33
	colorBlue   = 34
	colorWhite  = 37
)

// ZLoggerWrapper adapts a zerolog.Logger to Logger.
type ZLoggerWrapper struct {
	zerolog.Logger
	service string
	opts    Options
}

// NewZeroLogger builds a zerolog logger tagged with service.
func NewZeroLogger(service string, options ...Option) *ZLoggerWrapper {
	if service == "" {
		service = "utxodump"
	}

	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	var zl zerolog.Logger
	if opts.pretty {
		zl = zerolog.New(consoleWriter(opts, service)).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(opts.writer).With().Timestamp().Str("service", service).Logger()
	}

	z := &ZLoggerWrapper{Logger: zl, service: service, opts: *opts}
	z.SetLogLevel(opts.logLevel)

	return z
}

func consoleWriter(opts *Options, service string) zerolog.ConsoleWriter {
	noColor := true
	if f, ok := opts.writer.(*os.File); ok {
		noColor = !term.IsTerminal(int(f.Fd()))
	}

	output := zerolog.ConsoleWriter{
		Out:        opts.writer,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}

	output.FormatTimestamp = func(i interface{}) string {
		s, _ := i.(string)
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return s
		}
		return parsed.Format("15:04:05")
	}

	output.FormatLevel = func(i interface{}) string {
		l := strings.ToUpper(fmt.Sprintf("%-6s", i))

		switch i {
		case "debug":
			l = colorize(l, colorBlue, noColor)
		case "info":
			l = colorize(l, colorGreen, noColor)
		case "warn":
			l = colorize(l, colorYellow, noColor)
		case "error", "fatal", "panic":
			l = colorize(l, colorRed, noColor)
		default:
			l = colorize(l, colorWhite, noColor)
		}

		return fmt.Sprintf("| %s|", l)
	}

	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("| %-8s| %s", service, i)
	}

	return output
}

func colorize(s string, c int, disabled bool) string {
	if disabled {
		return s
	}

	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, s)
}

// New returns a logger for another service with the same settings.
func (z *ZLoggerWrapper) New(service string, options ...Option) Logger {
	opts := []Option{
		WithWriter(z.opts.writer),
		WithPretty(z.opts.pretty),
		WithLevel(z.LogLevel()),
	}

	return NewZeroLogger(service, append(opts, options...)...)
}

func (z *ZLoggerWrapper) SetLogLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		z.Logger = z.Logger.Level(zerolog.DebugLevel)
	case "WARN":
		z.Logger = z.Logger.Level(zerolog.WarnLevel)
	case "ERROR":
		z.Logger = z.Logger.Level(zerolog.ErrorLevel)
	case "FATAL":
		z.Logger = z.Logger.Level(zerolog.FatalLevel)
	default:
		z.Logger = z.Logger.Level(zerolog.InfoLevel)
	}
}

func (z *ZLoggerWrapper) LogLevel() string {
	return strings.ToUpper(z.Logger.GetLevel().String())
}

func (z *ZLoggerWrapper) Debugf(format string, args ...interface{}) {
	z.Logger.Debug().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Infof(format string, args ...interface{}) {
	z.Logger.Info().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Warnf(format string, args ...interface{}) {
	z.Logger.Warn().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Errorf(format string, args ...interface{}) {
	z.Logger.Error().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Fatalf(format string, args ...interface{}) {
	z.Logger.Fatal().Msgf(format, args...)
}
