package internal

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// InitLogger initializes the logger with optional file output. Logs go to
// stderr so stdout only carries match output.
func InitLogger(logfile, level string) {
	InitLoggerTo(os.Stderr, logfile, level)
}

// InitLoggerTo is InitLogger with an explicit console writer.
func InitLoggerTo(console io.Writer, logfile, level string) {
	colors := false
	if f, ok := console.(*os.File); ok {
		colors = isatty.IsTerminal(f.Fd())
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   colors,
		DisableColors: !colors,
		FullTimestamp: true,
		DisableQuote:  true,
		PadLevelText:  true,
	})
	logrus.SetOutput(console)
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logrus.SetLevel(lvl)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
		logrus.Warnf("Unknown log level %q, using warn", level)
	}
	if logfile != "" {
		file, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			logrus.SetOutput(file)
		} else {
			logrus.Warn("Failed to open log file, logging to stderr")
		}
	}
}
