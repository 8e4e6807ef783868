package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// BaseLogger -- обертка над zerolog с префиксом компонента.
// Префикс пишется в поле component, чтобы логи было удобно фильтровать.
type BaseLogger struct {
	mu     sync.Mutex
	prefix string
	writer io.Writer
	zl     zerolog.Logger
}

func NewLogger(writer io.Writer, prefix string) *BaseLogger {
	if writer == nil {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	l := &BaseLogger{writer: writer, prefix: prefix}
	l.rebuild()
	return l
}

// ParseLevel переводит LOG_LEVEL в уровень zerolog, по умолчанию info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func SetGlobalLevel(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
}

func (l *BaseLogger) rebuild() {
	ctx := zerolog.New(l.writer).With().Timestamp()
	if l.prefix != "" {
		ctx = ctx.Str("component", l.prefix)
	}
	l.zl = ctx.Logger()
}

func (l *BaseLogger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl.Info().Msgf(format, v...)
}

func (l *BaseLogger) Warn(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl.Warn().Msgf(format, v...)
}

func (l *BaseLogger) Debug(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl.Debug().Msgf(format, v...)
}

func (l *BaseLogger) Error(err error, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl.Error().Err(err).Msgf(format, v...)
}

func (l *BaseLogger) WithPrefix(extraPrefix string) *BaseLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	prefix := extraPrefix
	if l.prefix != "" {
		prefix = l.prefix + " " + extraPrefix
	}
	return NewLogger(l.writer, prefix)
}
