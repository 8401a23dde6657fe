package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// InitLogger builds the process logger. An empty logLevel falls back to
// LOG_LEVEL, then to debug in development and info elsewhere.
func InitLogger(logLevel string, isDevelopment bool) *logrus.Logger {
	log := logrus.New()

	// Override with environment if not provided
	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			if isDevelopment {
				logLevel = "debug"
			} else {
				logLevel = "info"
			}
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if !isDevelopment || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	log.SetOutput(os.Stdout)

	return log
}

// WithService tags log lines with the emitting service
func WithService(log *logrus.Logger, serviceName string) *logrus.Entry {
	return log.WithField("service", serviceName)
}

// WithRequestContext creates a logger with request context
func WithRequestContext(log *logrus.Logger, requestID, method, path string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})
}

// WithDraftContext creates a logger scoped to a draft session. An empty
// playerID is left out.
func WithDraftContext(log *logrus.Logger, sessionID, playerID string) *logrus.Entry {
	fields := logrus.Fields{"session_id": sessionID}
	if playerID != "" {
		fields["player_id"] = playerID
	}
	return log.WithFields(fields)
}

// WithLeagueContext creates a logger scoped to a Yahoo league
func WithLeagueContext(log *logrus.Logger, leagueKey string) *logrus.Entry {
	return log.WithField("league_key", leagueKey)
}
