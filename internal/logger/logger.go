package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu            sync.Mutex
	defaultLogger *logrus.Logger
)

// Init replaces the process logger. Unknown levels fall back to info.
func Init(level string, json bool) {
	InitWithOutput(os.Stdout, level, json)
}

func InitWithOutput(out io.Writer, level string, json bool) {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(parseLevel(level))
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Get returns the process logger, creating an info level text logger on
// first use.
func Get() *logrus.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		Init("info", false)
		return Get()
	}
	return l
}

// With returns an entry carrying the given fields.
func With(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}

func Fatal(msg string, err error) {
	Get().WithError(err).Fatal(msg)
}
