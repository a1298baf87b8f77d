package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Logger is the shared application logger. InitLogger must run before the
// server starts serving.
var Logger = logrus.New()

func InitLogger() {
	env := os.Getenv("APP_ENV")

	Logger.SetReportCaller(true)

	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		PrettyPrint:     false,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			filename := filepath.Base(f.File)
			return "", filename + ":" + strconv.Itoa(f.Line)
		},
	})

	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
	case "warn":
		Logger.SetLevel(logrus.WarnLevel)
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
	default:
		Logger.SetLevel(logrus.InfoLevel)
	}

	if env != "production" {
		Logger.Out = os.Stdout
		return
	}

	// In production, write to logs/app.log under the project root. Any
	// failure along the way falls back to stdout rather than dropping logs.
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		Logger.Out = os.Stdout
		Logger.Warn("Could not determine caller location, logging to stdout")
		return
	}
	projectRoot, err := filepath.Abs(filepath.Join(filepath.Dir(currentFile), "../.."))
	if err != nil {
		Logger.Out = os.Stdout
		Logger.WithError(err).Warn("Could not resolve project root, logging to stdout")
		return
	}

	logDir := filepath.Join(projectRoot, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		Logger.Out = os.Stdout
		Logger.WithError(err).Warn("Could not create log directory, logging to stdout")
		return
	}

	file, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		Logger.Out = os.Stdout
		Logger.WithError(err).Warn("Could not open log file, logging to stdout")
		return
	}
	Logger.Out = file
}
