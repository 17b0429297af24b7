// Package logging provides component-scoped loggers for grove-stack.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	base     *logrus.Logger
	baseOnce sync.Once
)

func baseLogger() *logrus.Logger {
	baseOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stderr)
		base.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
		base.SetLevel(levelFromEnv())
	})
	return base
}

func levelFromEnv() logrus.Level {
	switch strings.ToLower(os.Getenv("GSTACK_LOG_LEVEL")) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// NewLogger returns a logger tagged with the given component name.
func NewLogger(component string) *logrus.Entry {
	return baseLogger().WithField("component", component)
}
