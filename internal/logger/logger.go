package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log  *logrus.Logger
	once sync.Once
)

// Init инициализирует глобальный логгер
// env: "development" - читаемый текст и debug-уровень, иначе JSON для сборщика логов
func Init(env string) {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if env == "development" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	log = l
}

// Get возвращает глобальный логгер
func Get() *logrus.Logger {
	once.Do(func() {
		if log == nil {
			Init("development")
		}
	})
	return log
}

// With создает запись с дополнительными полями
// Пример: logger.With(logrus.Fields{"barter_id": id}).Info("barter approved")
func With(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}

// WithError создает запись с полем error
func WithError(err error) *logrus.Entry {
	return Get().WithError(err)
}
