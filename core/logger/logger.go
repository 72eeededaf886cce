package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Environment variables configuring the logger.
const (
	EnvLoggingLevel  = "MSC_LOGGING_LEVEL"
	EnvLoggingFormat = "MSC_LOGGING_FORMAT"
)

const (
	defaultLevel = logrus.WarnLevel

	// FormatJSON selects the logrus JSON formatter; any other format selects text.
	FormatJSON = "json"
	FormatText = "text"
)

var (
	lg   *logrus.Logger
	once sync.Once
)

// Logger returns the logger for value resolution. It is configured on first use from
// the MSC_LOGGING_LEVEL (default "warning") and MSC_LOGGING_FORMAT environment variables.
func Logger() *logrus.Logger {
	once.Do(func() {
		lg = logrus.New()
		lg.SetOutput(os.Stderr)
		lg.SetFormatter(formatter(os.Getenv(EnvLoggingFormat)))

		level, err := logrus.ParseLevel(os.Getenv(EnvLoggingLevel))
		if err != nil {
			level = defaultLevel
		}
		lg.SetLevel(level)
	})
	return lg
}

// Configure sets the level and the format of the logger. An empty level keeps the
// current one.
func Configure(levelStr, format string) error {
	l := Logger()
	if levelStr != "" {
		level, err := logrus.ParseLevel(levelStr)
		if err != nil {
			return err
		}
		l.SetLevel(level)
	}
	if format != "" {
		l.SetFormatter(formatter(format))
	}
	return nil
}

func formatter(format string) logrus.Formatter {
	if format == FormatJSON {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
}
