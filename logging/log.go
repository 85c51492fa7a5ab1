// Package logging provides leveled console logging shared by client and server.
package logging

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Timestamped progress lines.
var logger = pterm.DefaultLogger.
	WithTime(true).
	WithTimeFormat("02 Jan 15:04:05").
	WithMaxWidth(1000)

// Round results carry their own prefix so they stand out between progress lines.
var success = pterm.Success.WithWriter(logger.Writer)

func LogDebug(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...))
}

func LogInfo(format string, args ...interface{}) {
	logger.Info(fmt.Sprintf(format, args...))
}

// LogSuccess prints a result line with the SUCCESS prefix
func LogSuccess(format string, args ...interface{}) {
	success.Println(fmt.Sprintf(format, args...))
}

func LogWarning(format string, args ...interface{}) {
	logger.Warn(fmt.Sprintf(format, args...))
}

func LogError(format string, args ...interface{}) {
	logger.Error(fmt.Sprintf(format, args...))
}

// EnableDebug lets debug lines through
func EnableDebug() {
	logger.Level = pterm.LogLevelDebug
}
