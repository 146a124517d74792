package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger - обертка над logrus с поддержкой префиксов компонентов
type Logger struct {
	base   *logrus.Logger
	prefix string
}

// NewLogger создает новый логгер с указанным уровнем и префиксом
func NewLogger(level, prefix string) *Logger {
	base := logrus.New()

	if level == "off" || level == "none" {
		base.SetOutput(io.Discard)
	} else {
		parsed, err := logrus.ParseLevel(strings.ToLower(level))
		if err != nil {
			parsed = logrus.InfoLevel
		}
		base.SetLevel(parsed)
		base.SetOutput(os.Stdout)
	}

	// Настраиваем форматтер с понятным форматом времени
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &Logger{base: base, prefix: prefix}
}

// WithPrefix возвращает дочерний логгер с дополнительным префиксом
func (l *Logger) WithPrefix(prefix string) *Logger {
	newPrefix := l.prefix
	if newPrefix != "" {
		newPrefix += " "
	}
	newPrefix += "[" + prefix + "]"

	return &Logger{base: l.base, prefix: newPrefix}
}

func (l *Logger) entry(fields ...interface{}) *logrus.Entry {
	e := logrus.NewEntry(l.base)
	if l.prefix != "" {
		e = e.WithField("component", l.prefix)
	}
	for i := 0; i+1 < len(fields); i += 2 {
		e = e.WithField(toString(fields[i]), fields[i+1])
	}
	return e
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "?"
}

func (l *Logger) Debug(msg string, fields ...interface{}) { l.entry(fields...).Debug(msg) }
func (l *Logger) Info(msg string, fields ...interface{})  { l.entry(fields...).Info(msg) }
func (l *Logger) Warn(msg string, fields ...interface{})  { l.entry(fields...).Warn(msg) }
func (l *Logger) Error(msg string, fields ...interface{}) { l.entry(fields...).Error(msg) }
