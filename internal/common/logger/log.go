package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const defaultHexLimit = 64

// Logger wraps a zerolog logger with printf-style leveled methods and a
// bounded hex-dump helper for protocol payloads.
type Logger struct {
	logger   zerolog.Logger
	hexLimit int
}

// InitLogger builds a console logger at the given level with static fields
// attached to every line (e.g. mod, rnti). An empty or unknown level falls
// back to info.
func InitLogger(level string, fields map[string]string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: true,
	}
	ctx := zerolog.New(writer).Level(lvl).With().Timestamp()
	for k, v := range fields {
		ctx = ctx.Str(k, v)
	}

	return &Logger{
		logger:   ctx.Logger(),
		hexLimit: defaultHexLimit,
	}
}

// SetHexLimit bounds the number of payload bytes included in hex dumps.
func (l *Logger) SetHexLimit(n int) {
	if n > 0 {
		l.hexLimit = n
	}
}

// HexDebug logs a debug line with a truncated hex dump of data attached.
func (l *Logger) HexDebug(data []byte, format string, args ...any) {
	dump := data
	if len(dump) > l.hexLimit {
		dump = dump[:l.hexLimit]
	}
	l.logger.Debug().Hex("payload", dump).Int("len", len(data)).Msgf(format, args...)
}

func (l *Logger) Trace(format string, args ...any) {
	l.logger.Trace().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.logger.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.logger.Error().Msgf(format, args...)
}

func (l *Logger) Fatal(format string, args ...any) {
	l.logger.Fatal().Msgf(format, args...)
}

// DebugEnabled reports whether debug lines would be emitted, so callers can
// skip expensive message formatting.
func (l *Logger) DebugEnabled() bool {
	return l.logger.GetLevel() <= zerolog.DebugLevel
}
