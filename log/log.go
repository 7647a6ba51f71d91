package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// The log levels accepted by Init.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"
)

// logTestWriterName is the magic output name which selects logTestWriter.
// Only meant to be used in tests and benchmarks.
const logTestWriterName = "_testWriter"

var (
	log zerolog.Logger = zerolog.Nop()

	logTestWriter io.Writer = io.Discard

	// panicOnInvalidChars helps catch binary data or invalid utf8 making it
	// into the logs. Only enabled via $LOG_PANIC_ON_INVALIDCHARS, since the
	// extra formatting pass is not free.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"
)

// Logger returns the global logger.
func Logger() *zerolog.Logger { return &log }

// levelWriter forwards entries at warning level or above to a secondary
// writer. Used for the errorOutput parameter of Init.
type levelWriter struct {
	w io.Writer
}

func (lw *levelWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

func (lw *levelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l >= zerolog.WarnLevel {
		return lw.w.Write(p)
	}
	return len(p), nil
}

// Init initializes the global logger. Output can be "stdout", "stderr" or a
// file path. Level must be one of the LogLevel constants. If errorOutput is
// not nil, entries at warning level or above are also written to it. Init can
// be called multiple times, the last call wins.
func Init(level, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot open log output %q: %v", output, err))
		}
		out = f
	}
	if output == "stdout" || output == "stderr" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if errorOutput != nil {
		out = zerolog.MultiLevelWriter(out, &levelWriter{w: errorOutput})
	}
	log = zerolog.New(out).With().Timestamp().CallerWithSkipFrameCount(3).Logger()
	switch level {
	case LogLevelDebug:
		log = log.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		log = log.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		log = log.Level(zerolog.WarnLevel)
	case LogLevelError:
		log = log.Level(zerolog.ErrorLevel)
	case LogLevelFatal:
		log = log.Level(zerolog.FatalLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", level))
	}
	Infof("logger initialized on output %s with level %s", output, level)
}

// Level returns the current log level as one of the LogLevel constants.
func Level() string {
	switch log.GetLevel() {
	case zerolog.DebugLevel:
		return LogLevelDebug
	case zerolog.InfoLevel:
		return LogLevelInfo
	case zerolog.WarnLevel:
		return LogLevelWarn
	case zerolog.ErrorLevel:
		return LogLevelError
	case zerolog.FatalLevel:
		return LogLevelFatal
	}
	return ""
}

func checkInvalidChars(p []byte) {
	if bytes.ContainsRune(p, utf8.RuneError) {
		panic(fmt.Sprintf("log message with invalid chars: %q", p))
	}
}

// Debug logs a message at debug level.
func Debug(args ...any) {
	if panicOnInvalidChars {
		checkInvalidChars([]byte(fmt.Sprint(args...)))
	}
	log.Debug().Msg(fmt.Sprint(args...))
}

// Info logs a message at info level.
func Info(args ...any) {
	if panicOnInvalidChars {
		checkInvalidChars([]byte(fmt.Sprint(args...)))
	}
	log.Info().Msg(fmt.Sprint(args...))
}

// Warn logs a message at warning level.
func Warn(args ...any) {
	if panicOnInvalidChars {
		checkInvalidChars([]byte(fmt.Sprint(args...)))
	}
	log.Warn().Msg(fmt.Sprint(args...))
}

// Error logs a message at error level. If the only argument is an error, it
// is logged in the structured error field.
func Error(args ...any) {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			log.Error().Err(err).Msg("")
			return
		}
	}
	log.Error().Msg(fmt.Sprint(args...))
}

// Fatal logs a message at fatal level and exits the program.
func Fatal(args ...any) {
	log.Fatal().Msg(fmt.Sprint(args...))
}

// Debugf logs a formatted message at debug level.
func Debugf(template string, args ...any) {
	if panicOnInvalidChars {
		checkInvalidChars([]byte(fmt.Sprintf(template, args...)))
	}
	log.Debug().Msgf(template, args...)
}

// Infof logs a formatted message at info level.
func Infof(template string, args ...any) {
	if panicOnInvalidChars {
		checkInvalidChars([]byte(fmt.Sprintf(template, args...)))
	}
	log.Info().Msgf(template, args...)
}

// Warnf logs a formatted message at warning level.
func Warnf(template string, args ...any) {
	if panicOnInvalidChars {
		checkInvalidChars([]byte(fmt.Sprintf(template, args...)))
	}
	log.Warn().Msgf(template, args...)
}

// Errorf logs a formatted message at error level.
func Errorf(template string, args ...any) {
	if panicOnInvalidChars {
		checkInvalidChars([]byte(fmt.Sprintf(template, args...)))
	}
	log.Error().Msgf(template, args...)
}

// Fatalf logs a formatted message at fatal level and exits the program.
func Fatalf(template string, args ...any) {
	log.Fatal().Msgf(template, args...)
}

// Debugw logs a message at debug level with key-value pairs.
func Debugw(msg string, keyvaluepairs ...any) {
	log.Debug().Fields(keyvaluepairs).Msg(msg)
}

// Infow logs a message at info level with key-value pairs.
func Infow(msg string, keyvaluepairs ...any) {
	log.Info().Fields(keyvaluepairs).Msg(msg)
}

// Warnw logs a message at warning level with key-value pairs.
func Warnw(msg string, keyvaluepairs ...any) {
	log.Warn().Fields(keyvaluepairs).Msg(msg)
}

// Errorw logs an error at error level with a prefix message.
func Errorw(err error, msg string) {
	log.Error().Err(err).Msg(msg)
}
