// Package utils provides helpers shared across handlers and middleware:
// trace-aware logging, error funneling, id parsing and payload sanitation.
package utils

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// GenerateTraceId returns a fresh trace id for an inbound request.
func GenerateTraceId() string {
	return uuid.New().String()
}

// SetLogLevel configures the global logrus level from a config string.
func SetLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetOutput(os.Stdout)
}

// LogEntry dispatches a message to the entry at the given level.
func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	default:
		entry.Info(message)
	}
}

// LogMessageWithFields logs a message enriched with the request's trace id.
func LogMessageWithFields(ctx *gin.Context, level, message string) {
	entry := log.WithFields(log.Fields{
		"traceId": traceId(ctx),
	})
	LogEntry(entry, level, message)
}

// LogMessageWithFieldsAndError logs a message and the underlying error with
// the request's trace id. The error detail stays in the logs; it is never
// part of the response body.
func LogMessageWithFieldsAndError(ctx *gin.Context, level, message string, err error) {
	entry := log.WithFields(log.Fields{
		"traceId": traceId(ctx),
		"error":   err,
	})
	LogEntry(entry, level, message)
}

func traceId(ctx *gin.Context) string {
	if id, ok := ctx.Value(TraceIdKey.String()).(string); ok {
		return id
	}
	return ""
}
