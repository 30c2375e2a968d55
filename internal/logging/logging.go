package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cidbot/backend/config"
)

// Init configures the shared logrus logger. Production uses JSON output so
// log aggregation can parse fields; everywhere else stays human readable.
func Init() {
	if config.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level := logrus.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := logrus.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)
}

// Component returns a logger entry tagged with the originating component
func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
