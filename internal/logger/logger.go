package logger

import (
	"github.com/sirupsen/logrus"
)

// Init builds a structured logger for one engine component.
func Init(logLevel string, component string) *logrus.Entry {
	formattedLogger := logrus.New()
	formattedLogger.Formatter = &logrus.TextFormatter{FullTimestamp: true}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.WithError(err).Error("Error parsing log level, using: info")
		level = logrus.InfoLevel
	}
	formattedLogger.Level = level

	return logrus.NewEntry(formattedLogger).WithField("component", component)
}
