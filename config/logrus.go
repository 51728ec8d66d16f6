package config

import (
	"net/http"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logrusInstance *logrus.Logger

func GetLogrusInstance() *logrus.Logger {
	if logrusInstance == nil {
		logrusInstance = logrus.New()
		logrusInstance.SetFormatter(&logrus.JSONFormatter{})
		if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
			logrusInstance.SetLevel(lvl)
		}
	}
	return logrusInstance
}

func PrintLogInfo(username *string, statusCode int, functionName string) {
	// Handle a nil `username` by using a placeholder
	user := "Unknown"
	if username != nil && *username != "" {
		user = *username
	}

	entry := GetLogrusInstance().WithFields(logrus.Fields{
		"user":     user,
		"function": functionName,
		"status":   statusCode,
	})

	switch {
	case statusCode >= fiber.StatusInternalServerError:
		entry.Error(http.StatusText(statusCode))
	case statusCode >= fiber.StatusBadRequest:
		entry.Warn(http.StatusText(statusCode))
	default:
		entry.Info(http.StatusText(statusCode))
	}
}
