// Package logging wires up the daemon's logger and colorized status
// helpers, in the style krd uses for its own op/go-logging setup.
package logging

import (
	"os"

	"github.com/fatih/color"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("blewisd")

var stderrFormat = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{level:.6s} ▶ %{message}%{color:reset}`,
)

// Setup configures the package logger to write to stderr at defaultLevel,
// or at the level named by the BLEWIS_LOG_LEVEL environment variable when
// it is set.
func Setup(defaultLevel logging.Level) *logging.Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	logging.SetFormatter(stderrFormat)

	leveled := logging.AddModuleLevel(backend)
	switch os.Getenv("BLEWIS_LOG_LEVEL") {
	case "CRITICAL":
		leveled.SetLevel(logging.CRITICAL, "")
	case "ERROR":
		leveled.SetLevel(logging.ERROR, "")
	case "WARNING":
		leveled.SetLevel(logging.WARNING, "")
	case "NOTICE":
		leveled.SetLevel(logging.NOTICE, "")
	case "INFO":
		leveled.SetLevel(logging.INFO, "")
	case "DEBUG":
		leveled.SetLevel(logging.DEBUG, "")
	default:
		leveled.SetLevel(defaultLevel, "")
	}

	logging.SetBackend(leveled)
	return log
}

// Log returns the package logger. Setup must run first.
func Log() *logging.Logger { return log }

// Cyan, Green, and Red mirror krd's small colored-status helpers: a
// SprintFunc wrapper per color, used for CLI banners rather than for
// structured log lines.
func Cyan(s string) string  { return colorize(color.FgHiCyan, s) }
func Green(s string) string { return colorize(color.FgHiGreen, s) }
func Red(s string) string   { return colorize(color.FgHiRed, s) }

func colorize(attr color.Attribute, s string) string {
	c := color.New(attr)
	c.EnableColor()
	return c.SprintFunc()(s)
}
