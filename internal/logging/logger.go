// Package logging holds the logrus loggers shared across the service.
package logging

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var (
	API    logrus.FieldLogger = logrus.New()
	Store  logrus.FieldLogger = logrus.New()
	Worker logrus.FieldLogger = logrus.New()
)

// Setup rebuilds the package loggers. An empty outputFile keeps stderr.
func Setup(outputFile, environment string, json bool) {
	API = Logger(newLogger(json), outputFile, "api", environment)
	Store = Logger(newLogger(json), outputFile, "store", environment)
	Worker = Logger(newLogger(json), outputFile, "worker", environment)
}

func newLogger(json bool) *logrus.Logger {
	logger := logrus.New()
	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// Logger points logger at outputFile (when set) and tags every entry with
// the component and environment.
func Logger(logger *logrus.Logger, outputFile string,
	component, environment string) logrus.FieldLogger {

	if outputFile != "" {
		if file, err := os.OpenFile(filepath.Clean(outputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err == nil {
			logger.SetOutput(file)
		} else {
			logger.Infof("Failed to open output file %s. Will use stderr. %s",
				outputFile, err.Error())
		}
	}

	return logger.WithFields(logrus.Fields{
		"application": component,
		"environment": environment})
}
