package logging

import (
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// New builds the process logger. Production logs are JSON; everything
// else uses the text formatter with full timestamps.
func New(env, level string) *logrus.Logger {
	return NewWithOutput(env, level, os.Stdout)
}

func NewWithOutput(env, level string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	if env == "production" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		l.Warnf("unknown log level %q, falling back to info", level)
	}
	l.SetLevel(lvl)

	// set Gin log
	gin.DefaultWriter = l.Writer()
	gin.DefaultErrorWriter = l.WriterLevel(logrus.ErrorLevel)

	return l
}

// For scopes a logger to one component.
func For(l *logrus.Logger, service string) *logrus.Entry {
	return l.WithField("service", service)
}

// Discard is a logger for tests and tools that should stay quiet.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
