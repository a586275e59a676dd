package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger обертка над logrus с полем service
type Logger struct {
	*logrus.Entry
}

// New создает логгер для сервиса с указанным уровнем и форматом (json или text)
func New(serviceName, level, format string) *Logger {
	return NewWithOutput(serviceName, level, format, os.Stdout)
}

// NewWithOutput создает логгер, пишущий в out
func NewWithOutput(serviceName, level, format string, out io.Writer) *Logger {
	log := logrus.New()
	log.SetOutput(out)

	if strings.EqualFold(format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return &Logger{Entry: log.WithField("service", serviceName)}
}

// Discard логгер для тестов, ничего не пишет
func Discard() *Logger {
	return NewWithOutput("test", "panic", "json", io.Discard)
}

// WithRequestID добавляет идентификатор запроса
func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.WithField("request_id", requestID)
}
